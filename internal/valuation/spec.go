package valuation

import (
	"fmt"
	"time"

	"NoteValuator/internal/config"
)

// Spec is one fully resolved valuation run.
type Spec struct {
	Name            string
	ValuationDate   time.Time
	CalibrationFrom time.Time
	CalibrationTo   time.Time
	S0              float64
	T               float64
	R               float64
	Barrier         float64
	Sigma           *float64 // nil: estimate from the calibration window
	Paths           int
	Steps           int
	Seed            *uint64 // nil: seed from the clock
}

const daysPerYear = 365.0

// SpecsFromConfig resolves every configured valuation against the shared note
// terms as of now. A "today" valuation date and a calibration_days lookback are
// resolved relative to now, so repeated calls move the valuation forward.
// Maturity is taken, in order, from the valuation's t, the note maturity date
// (ACT/365 from the valuation date), then the note's t.
func SpecsFromConfig(cfg *config.Config, now time.Time) ([]Spec, error) {
	if cfg.Note.Rate == nil {
		return nil, fmt.Errorf("note.r is required")
	}
	var maturity time.Time
	if cfg.Note.Maturity != "" {
		m, err := time.Parse(config.DateLayout, cfg.Note.Maturity)
		if err != nil {
			return nil, fmt.Errorf("note.maturity: %w", err)
		}
		maturity = m
	}

	specs := make([]Spec, 0, len(cfg.Valuations))
	for i, v := range cfg.Valuations {
		valDate, err := resolveDate(v.ValuationDate, now)
		if err != nil {
			return nil, fmt.Errorf("valuations[%d].valuation_date: %w", i, err)
		}
		from, err := parseOptionalDate(v.CalibrationFrom)
		if err != nil {
			return nil, fmt.Errorf("valuations[%d].calibration_from: %w", i, err)
		}
		to, err := parseOptionalDate(v.CalibrationTo)
		if err != nil {
			return nil, fmt.Errorf("valuations[%d].calibration_to: %w", i, err)
		}
		if v.CalibrationDays > 0 {
			if to.IsZero() {
				to = valDate
			}
			from = to.AddDate(0, 0, -v.CalibrationDays)
		}

		spec := Spec{
			Name:            v.Name,
			ValuationDate:   valDate,
			CalibrationFrom: from,
			CalibrationTo:   to,
			S0:              cfg.Note.S0,
			R:               *cfg.Note.Rate,
			Barrier:         cfg.Note.Barrier,
			Sigma:           cfg.Note.Sigma,
			Paths:           cfg.Simulation.Paths,
			Steps:           cfg.Simulation.Steps,
			Seed:            cfg.Simulation.Seed,
		}
		if v.S0 != 0 {
			spec.S0 = v.S0
		}
		if v.Sigma != nil {
			spec.Sigma = v.Sigma
		}
		switch {
		case v.T != 0:
			spec.T = v.T
		case !maturity.IsZero():
			spec.T = maturity.Sub(valDate).Hours() / 24 / daysPerYear
		default:
			spec.T = cfg.Note.T
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func resolveDate(s string, now time.Time) (time.Time, error) {
	if s == config.Today {
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	return time.Parse(config.DateLayout, s)
}

func parseOptionalDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(config.DateLayout, s)
}
