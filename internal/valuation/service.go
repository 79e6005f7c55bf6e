package valuation

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"time"

	"NoteValuator/internal/calculator"
	"NoteValuator/internal/collector"
	"NoteValuator/internal/model"
	"NoteValuator/internal/notifier"
	"NoteValuator/internal/pricing"
	"NoteValuator/internal/recorder"
	"NoteValuator/internal/report"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Service runs the calibrate-then-price pipeline for configured valuations.
// The numerical work lives in calculator and pricing; Service only moves data
// between them and the I/O adapters.
type Service struct {
	Collector     *collector.Collector
	Pricer        *pricing.MonteCarloPricer
	Payoff        *pricing.TieredPayoff
	Recorder      recorder.Recorder
	Notifier      *notifier.TelegramNotifier
	ChartDir      string
	RollingWindow int
}

// NewService creates a Service. rec may be nil (no-op) and tn may be nil (no
// notifications).
func NewService(col *collector.Collector, pricer *pricing.MonteCarloPricer, payoff *pricing.TieredPayoff, rec recorder.Recorder, tn *notifier.TelegramNotifier) *Service {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Service{
		Collector:     col,
		Pricer:        pricer,
		Payoff:        payoff,
		Recorder:      rec,
		Notifier:      tn,
		RollingWindow: 30,
	}
}

// Run executes one valuation. Any failure aborts the run; nothing partial is
// recorded.
func (s *Service) Run(ctx context.Context, spec Spec) (*model.Valuation, error) {
	start := time.Now()
	runID := uuid.NewString()
	logger := log.WithFields(log.Fields{"valuation": spec.Name, "run_id": runID})

	v := &model.Valuation{
		RunID:           runID,
		Name:            spec.Name,
		ValuationDate:   spec.ValuationDate,
		CalibrationFrom: spec.CalibrationFrom,
		CalibrationTo:   spec.CalibrationTo,
	}

	sigma := 0.0
	if spec.Sigma == nil {
		series, err := s.collect(ctx, spec)
		if err != nil {
			return nil, err
		}
		v.Symbol = series.Symbol
		v.Observations = len(series.Points)
		v.Excluded = series.Excluded
		sigma, err = calculator.AnnualizedVolatility(series.Points)
		if err != nil {
			return nil, fmt.Errorf("estimate volatility: %w", err)
		}
		logger.WithField("sigma", sigma).Info("volatility calibrated")
		if s.ChartDir != "" {
			s.renderChart(logger, spec, series)
		}
	} else if s.ChartDir != "" {
		// history only feeds the chart here
		if series, err := s.collect(ctx, spec); err != nil {
			logger.Warnf("price history unavailable, chart skipped: %v", err)
		} else {
			v.Symbol = series.Symbol
			v.Observations = len(series.Points)
			v.Excluded = series.Excluded
			s.renderChart(logger, spec, series)
		}
	}
	if spec.Sigma != nil {
		sigma = *spec.Sigma
	}

	var seed uint64
	if spec.Seed != nil {
		seed = *spec.Seed
	} else {
		seed = uint64(time.Now().UnixNano())
		logger.WithField("seed", seed).Info("no seed configured, using clock seed")
	}

	v.Params = model.SimulationParameters{
		S0:      spec.S0,
		T:       spec.T,
		R:       spec.R,
		Sigma:   sigma,
		Barrier: spec.Barrier,
		Paths:   spec.Paths,
		Steps:   spec.Steps,
	}
	est, err := s.Pricer.Price(ctx, v.Params, seed)
	if err != nil {
		return nil, fmt.Errorf("price %s: %w", spec.Name, err)
	}
	v.Estimate = est

	if s.Payoff != nil {
		if cf, err := s.Payoff.ClosedFormValue(v.Params); err != nil {
			logger.Warnf("closed-form reference unavailable: %v", err)
		} else {
			v.ClosedForm = cf
		}
		forward := v.Params.S0 * math.Exp(v.Params.R*v.Params.T)
		v.ForwardTier = s.Payoff.TierLabel(forward, v.Params.S0)
	}
	v.Elapsed = time.Since(start)
	v.CreatedAt = time.Now()

	logger.WithFields(log.Fields{
		"pv":      est.PresentValue,
		"stderr":  est.StdError,
		"paths":   est.Paths,
		"seed":    est.Seed,
		"elapsed": v.Elapsed.Round(time.Millisecond),
	}).Info("valuation complete")

	if prev, ok, err := s.Recorder.LatestValue(spec.Name); err != nil {
		logger.Warnf("read previous valuation: %v", err)
	} else if ok {
		v.PreviousValue, v.HasPrevious = prev, true
	}
	if err := s.Recorder.RecordValuation(v); err != nil {
		logger.Errorf("record valuation: %v", err)
	}
	s.notify(ctx, logger, notifier.FormatValuation(v))
	return v, nil
}

// RunAll runs each spec in order and stops at the first failure, returning the
// valuations completed before it.
func (s *Service) RunAll(ctx context.Context, specs []Spec) ([]*model.Valuation, error) {
	out := make([]*model.Valuation, 0, len(specs))
	for _, spec := range specs {
		v, err := s.Run(ctx, spec)
		if err != nil {
			log.WithField("valuation", spec.Name).Errorf("valuation failed: %v", err)
			s.notify(ctx, log.WithField("valuation", spec.Name), notifier.FormatFailure(spec.Name, err))
			return out, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *Service) collect(ctx context.Context, spec Spec) (*model.PriceSeries, error) {
	if s.Collector == nil {
		return nil, fmt.Errorf("%w: no price source configured", model.ErrInvalidParameter)
	}
	return s.Collector.Collect(ctx, spec.CalibrationFrom, spec.CalibrationTo)
}

func (s *Service) renderChart(logger *log.Entry, spec Spec, series *model.PriceSeries) {
	vol, err := calculator.RollingVolatility(series.Points, s.RollingWindow)
	if err != nil {
		logger.Warnf("rolling volatility: %v", err)
		return
	}
	path := filepath.Join(s.ChartDir, fmt.Sprintf("%s_rolling_volatility.png", spec.Name))
	title := fmt.Sprintf("Annualized Rolling Volatility (%d-day) %s", s.RollingWindow, series.Symbol)
	if err := report.RenderVolatilityChart(vol, title, path); err != nil {
		logger.Warnf("render chart: %v", err)
		return
	}
	logger.WithField("path", path).Info("volatility chart written")
}

func (s *Service) notify(ctx context.Context, logger *log.Entry, text string) {
	if !s.Notifier.Enabled() {
		return
	}
	if err := s.Notifier.SendWithRetry(ctx, text, 3); err != nil {
		logger.Errorf("send notification: %v", err)
	}
}
