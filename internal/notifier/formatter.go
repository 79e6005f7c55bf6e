package notifier

import (
	"fmt"
	"strings"
	"time"

	"NoteValuator/internal/model"

	"github.com/shopspring/decimal"
)

// money rounds a value to cents for display.
func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// FormatValuation formats one valuation into an HTML Telegram message.
func FormatValuation(v *model.Valuation) string {
	var b strings.Builder
	p := v.Params
	est := v.Estimate

	b.WriteString(fmt.Sprintf("📊 <b>%s</b> | %s\n\n", v.Name, v.ValuationDate.Format("2006-01-02")))
	if v.Symbol != "" {
		b.WriteString(fmt.Sprintf("Underlying: %s\n", v.Symbol))
	}
	if v.Observations > 0 {
		b.WriteString(fmt.Sprintf("Calibration: %s → %s (%d obs)\n",
			dateOrOpen(v.CalibrationFrom), dateOrOpen(v.CalibrationTo), v.Observations))
	}
	if v.Excluded > 0 {
		b.WriteString(fmt.Sprintf("⚠️ %d days without a close excluded\n", v.Excluded))
	}
	b.WriteString(fmt.Sprintf("S0: %s | T: %.4fy | r: %.4f\n", money(p.S0), p.T, p.R))
	b.WriteString(fmt.Sprintf("σ: %.4f | barrier: %s (not monitored)\n", p.Sigma, money(p.Barrier)))
	b.WriteString(fmt.Sprintf("Paths: %d × %d steps | seed %d\n\n", p.Paths, p.Steps, est.Seed))

	b.WriteString(fmt.Sprintf("💰 <b>Fair value: %s</b> (±%s)\n", money(est.PresentValue), money(1.96*est.StdError)))
	b.WriteString(fmt.Sprintf("   Mean payoff: %s | discount: %.6f\n", money(est.MeanPayoff), est.Discount))
	if v.ClosedForm > 0 {
		diff := est.PresentValue - v.ClosedForm
		b.WriteString(fmt.Sprintf("   Closed form: %s (MC diff %+.4f)\n", money(v.ClosedForm), diff))
	}
	if p.S0 > 0 {
		b.WriteString(fmt.Sprintf("   Price: %.2f%% of S0\n", est.PresentValue/p.S0*100))
	}
	if v.ForwardTier != "" {
		b.WriteString(fmt.Sprintf("   Forward tier: %s\n", v.ForwardTier))
	}
	if v.HasPrevious {
		b.WriteString(fmt.Sprintf("   vs previous: %s (%+.4f)\n", money(v.PreviousValue), est.PresentValue-v.PreviousValue))
	}
	return b.String()
}

// FormatFailure formats a failed valuation run.
func FormatFailure(name string, err error) string {
	return fmt.Sprintf("❌ <b>%s</b> valuation failed: %v", name, err)
}

func dateOrOpen(t time.Time) string {
	if t.IsZero() {
		return "open"
	}
	return t.Format("2006-01-02")
}
