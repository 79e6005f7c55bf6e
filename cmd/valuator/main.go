package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"NoteValuator/internal/collector"
	"NoteValuator/internal/config"
	"NoteValuator/internal/notifier"
	"NoteValuator/internal/pricing"
	"NoteValuator/internal/recorder"
	"NoteValuator/internal/scheduler"
	"NoteValuator/internal/valuation"

	log "github.com/sirupsen/logrus"
)

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.Info("NoteValuator starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config validation: %v", err)
	}
	if level, err := log.ParseLevel(cfg.Log.Level); err != nil {
		log.Warnf("unknown log level %q, keeping info", cfg.Log.Level)
	} else {
		log.SetLevel(level)
	}

	resolve := func(now time.Time) ([]valuation.Spec, error) {
		return valuation.SpecsFromConfig(cfg, now)
	}
	if _, err := resolve(time.Now()); err != nil {
		log.Fatalf("resolve valuations: %v", err)
	}

	// Init fetcher
	var fetcher collector.Fetcher
	switch cfg.DataSource.Type {
	case "csv":
		fetcher = collector.NewCSVFetcher(cfg.DataSource.CSVPath, cfg.DataSource.DateLayout)
	default:
		fetcher = collector.NewYahooFetcher(cfg.Proxy)
	}
	log.WithField("source", fetcher.Name()).Info("data source ready")
	col := collector.NewCollector(fetcher, cfg.DataSource.Symbol)

	// Init pricer
	payoff := pricing.NewTieredPayoff(pricing.DefaultTerms())
	pricer := pricing.NewMonteCarloPricer(pricing.PathSimulator{}, payoff, cfg.Simulation.Workers, cfg.Simulation.ChunkSize)

	// Init Telegram notifier
	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Warnf("init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}
	defer rec.Close()

	svc := valuation.NewService(col, pricer, payoff, rec, tn)
	svc.ChartDir = cfg.Report.ChartDir
	svc.RollingWindow = cfg.Report.RollingWindow

	// Context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if cfg.Schedule.Cron == "" {
		specs, err := resolve(time.Now())
		if err != nil {
			log.Fatalf("resolve valuations: %v", err)
		}
		out, err := svc.RunAll(ctx, specs)
		for _, v := range out {
			fmt.Println(notifier.FormatValuation(v))
		}
		if err != nil {
			log.Errorf("valuation failed: %v", err)
			rec.Close()
			os.Exit(1)
		}
		return
	}

	sched := scheduler.NewScheduler(ctx, svc, resolve)
	if err := sched.Register(cfg.Schedule.Cron); err != nil {
		log.Fatalf("register cron task: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	if os.Getenv("RUN_ON_START") == "true" {
		log.Info("RUN_ON_START enabled, executing valuations now")
		go sched.RunNow()
	}

	log.Info("NoteValuator is running. Press Ctrl+C to stop.")
	<-ctx.Done()
	log.Info("shutdown signal received, stopping...")
}
