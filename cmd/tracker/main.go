package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"SpreadSentinel/internal/collector"
	"SpreadSentinel/internal/config"
	"SpreadSentinel/internal/forecast"
	"SpreadSentinel/internal/ledger"
	"SpreadSentinel/internal/model"
	"SpreadSentinel/internal/notifier"
	"SpreadSentinel/internal/options"
	"SpreadSentinel/internal/recorder"
	"SpreadSentinel/internal/scheduler"
	"SpreadSentinel/internal/screener"
	"SpreadSentinel/internal/web"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] SpreadSentinel starting...")

	// .env is optional, env vars still override config either way
	if err := godotenv.Load(); err == nil {
		log.Println("[INFO] loaded .env")
	}

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Init fetcher
	var fetcher collector.Fetcher
	if cfg.DataSource.Provider == "alpaca" {
		fetcher = collector.NewAlpacaFetcher(cfg.DataSource.AlpacaKey, cfg.DataSource.AlpacaSecret)
	} else {
		fetcher = collector.NewYahooFetcher(cfg.Proxy)
	}
	log.Printf("[INFO] data source: %s", fetcher.Name())

	// Init collector
	col := collector.NewCollector(fetcher, cfg.DataSource.LookbackDays)

	// Init forecast layer
	pred := forecast.NewPredictor(cfg.Forecast.BiasMultiplier, model.RangeMethod(cfg.Forecast.RangeMethod))
	cache, err := forecast.NewCache(cfg.Ledger.PredictionsFile)
	if err != nil {
		log.Fatalf("[FATAL] init prediction cache: %v", err)
	}

	// Init spread suggester
	sug := options.NewSuggester(cfg.Options.ShortOTMPct, cfg.Options.LongOTMPct, cfg.Options.MinProfitTarget)

	// Init trade ledger
	lg, err := ledger.NewManager(cfg.Ledger.TradesFile)
	if err != nil {
		log.Fatalf("[FATAL] init trade ledger: %v", err)
	}

	// Init momentum screener
	scr := screener.NewScreener(fetcher, cfg.Screener.Tickers, cfg.Screener.MinRSScore,
		cfg.Screener.WeeklyTarget, cfg.Screener.MaxResults, cfg.Screener.MinMarketCap)

	// Init Telegram notifier
	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, col, pred, cache, sug, lg, scr, tn, rec,
		cfg.Watchlist, cfg.Options.ExpiryMinDays)
	if err := sched.RegisterAll(cfg.Schedule.WatchlistCron, cfg.Schedule.ScreeningCron, cfg.Schedule.HealthCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Start dashboard API
	srv := web.NewServer(cfg.Web.ListenAddr, sched, lg, rec)
	go func() {
		if err := srv.ListenAndServe(); err != nil {
			log.Fatalf("[FATAL] dashboard server: %v", err)
		}
	}()

	// Start Telegram polling when credentials are present
	if tn.Enabled() {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Println("[INFO] Telegram polling started")
	} else {
		log.Println("[INFO] Telegram disabled, dashboard only")
	}

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, refreshing watchlist and screening now")
		go func() {
			sched.RefreshWatchlist()
			sched.RunScreeningNow()
		}()
	}

	log.Println("[INFO] SpreadSentinel is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	log.Println("[INFO] SpreadSentinel stopped")
}
