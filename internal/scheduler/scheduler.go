package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"SpreadSentinel/internal/collector"
	"SpreadSentinel/internal/forecast"
	"SpreadSentinel/internal/ledger"
	"SpreadSentinel/internal/model"
	"SpreadSentinel/internal/notifier"
	"SpreadSentinel/internal/options"
	"SpreadSentinel/internal/recorder"
	"SpreadSentinel/internal/screener"
)

// Scheduler manages all cron tasks and serves as the orchestration layer for
// commands arriving over Telegram or the dashboard.
type Scheduler struct {
	Cron          *cron.Cron
	Collector     *collector.Collector
	Predictor     *forecast.Predictor
	Cache         *forecast.Cache
	Suggester     *options.Suggester
	Ledger        *ledger.Manager
	Screener      *screener.Screener
	Notifier      *notifier.TelegramNotifier
	Recorder      recorder.Recorder
	Watchlist     []string
	ExpiryMinDays int
	Ctx           context.Context

	mu         sync.Mutex
	lastRegime model.MarketRegime
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, col *collector.Collector, pred *forecast.Predictor,
	cache *forecast.Cache, sug *options.Suggester, lg *ledger.Manager, scr *screener.Screener,
	tn *notifier.TelegramNotifier, rec recorder.Recorder, watchlist []string, expiryMinDays int) *Scheduler {
	return &Scheduler{
		Cron:          cron.New(cron.WithSeconds()),
		Collector:     col,
		Predictor:     pred,
		Cache:         cache,
		Suggester:     sug,
		Ledger:        lg,
		Screener:      scr,
		Notifier:      tn,
		Recorder:      rec,
		Watchlist:     watchlist,
		ExpiryMinDays: expiryMinDays,
		Ctx:           ctx,
	}
}

// RegisterAll registers the watchlist refresh, screening and health tasks.
func (s *Scheduler) RegisterAll(watchlistCron, screeningCron, healthCron string) error {
	if _, err := s.Cron.AddFunc(watchlistCron, s.watchlistTask); err != nil {
		return fmt.Errorf("register watchlist task: %w", err)
	}
	if _, err := s.Cron.AddFunc(screeningCron, s.screeningTask); err != nil {
		return fmt.Errorf("register screening task: %w", err)
	}
	if _, err := s.Cron.AddFunc(healthCron, s.healthTask); err != nil {
		return fmt.Errorf("register health task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// RefreshWatchlist regenerates the forecast for every watchlist ticker and
// swaps the cache wholesale. Failed tickers are skipped with a warning.
func (s *Scheduler) RefreshWatchlist() []model.Prediction {
	log.Printf("[INFO] refreshing watchlist (%d tickers)", len(s.Watchlist))
	expiration := options.NextExpiration(time.Now(), s.ExpiryMinDays)

	preds := make([]model.Prediction, 0, len(s.Watchlist))
	for _, symbol := range s.Watchlist {
		ind, _, err := s.Collector.Snapshot(symbol)
		if err != nil {
			log.Printf("[WARN] snapshot %s: %v, skipping", symbol, err)
			continue
		}
		chain := s.chainFor(symbol, expiration)
		p, err := s.Predictor.Predict(ind, chain)
		if err != nil {
			log.Printf("[WARN] predict %s: %v, skipping", symbol, err)
			continue
		}
		preds = append(preds, *p)
		if err := s.Recorder.RecordPrediction(p); err != nil {
			log.Printf("[ERROR] record prediction %s: %v", symbol, err)
		}
	}

	if err := s.Cache.Replace(preds); err != nil {
		log.Printf("[ERROR] save prediction cache: %v", err)
	}
	return preds
}

// RefreshTicker regenerates the forecast for a single ticker and stores it
// without touching the rest of the cache.
func (s *Scheduler) RefreshTicker(symbol string) (*model.Prediction, error) {
	expiration := options.NextExpiration(time.Now(), s.ExpiryMinDays)

	ind, _, err := s.Collector.Snapshot(symbol)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", symbol, err)
	}
	chain := s.chainFor(symbol, expiration)
	p, err := s.Predictor.Predict(ind, chain)
	if err != nil {
		return nil, fmt.Errorf("predict %s: %w", symbol, err)
	}
	if err := s.Recorder.RecordPrediction(p); err != nil {
		log.Printf("[ERROR] record prediction %s: %v", symbol, err)
	}
	if err := s.Cache.Put(p); err != nil {
		log.Printf("[ERROR] save prediction cache: %v", err)
	}
	return p, nil
}

// Suggestions builds spread proposals for every cached forecast, dropping
// tickers whose priced spread misses the profit target.
func (s *Scheduler) Suggestions() []model.TradeSuggestion {
	expiration := options.NextExpiration(time.Now(), s.ExpiryMinDays)

	out := make([]model.TradeSuggestion, 0)
	for _, symbol := range s.Watchlist {
		pred, ok := s.Cache.Get(symbol)
		if !ok {
			continue
		}
		ind, _, err := s.Collector.Snapshot(symbol)
		if err != nil {
			log.Printf("[WARN] snapshot %s: %v, skipping suggestion", symbol, err)
			continue
		}
		chain := s.chainFor(symbol, expiration)
		sug, err := s.Suggester.Suggest(&pred, ind, chain, expiration)
		if err != nil {
			if errors.Is(err, options.ErrBelowProfitTarget) {
				log.Printf("[INFO] %v", err)
			} else {
				log.Printf("[WARN] suggest %s: %v", symbol, err)
			}
			continue
		}
		out = append(out, *sug)
	}
	return out
}

// ReviewTrades evaluates every open trade against the latest price.
func (s *Scheduler) ReviewTrades() ([]model.Trade, []model.TradeAdvice) {
	open := s.Ledger.Open()
	advice := make([]model.TradeAdvice, 0, len(open))
	now := time.Now()
	for i := range open {
		price, err := s.Collector.Fetcher.FetchCurrentPrice(open[i].Symbol)
		if err != nil {
			log.Printf("[WARN] price for %s: %v, holding", open[i].Symbol, err)
			advice = append(advice, model.TradeAdvice{
				TradeID: open[i].ID, Action: "HOLD", Reason: "No current price, re-check later",
			})
			continue
		}
		advice = append(advice, options.Evaluate(&open[i], price, now))
	}
	return open, advice
}

// RunScreeningNow executes the screening task immediately (manual trigger /
// RUN_ON_START).
func (s *Scheduler) RunScreeningNow() *model.ScreeningRun {
	return s.screeningRun()
}

// chainFor fetches the option chain, treating unavailability as a normal
// degradation to analytic pricing.
func (s *Scheduler) chainFor(symbol string, expiration time.Time) *model.OptionChain {
	chain, err := s.Collector.Fetcher.FetchOptionChain(symbol, expiration)
	if err != nil {
		if !errors.Is(err, collector.ErrChainUnavailable) {
			log.Printf("[WARN] option chain %s: %v, using analytic pricing", symbol, err)
		}
		return nil
	}
	return chain
}

func (s *Scheduler) watchlistTask() {
	preds := s.RefreshWatchlist()
	log.Printf("[INFO] watchlist refreshed: %d forecasts", len(preds))
}

func (s *Scheduler) screeningTask() {
	run := s.screeningRun()
	s.trySend(notifier.FormatScreeningReport(run))
	s.trySend(notifier.FormatPnLReport(s.Ledger.WeeklyPnL()))
}

func (s *Scheduler) screeningRun() *model.ScreeningRun {
	log.Println("[INFO] running momentum screen")
	run := s.Screener.Run()
	if err := s.Recorder.RecordScreening(run); err != nil {
		log.Printf("[ERROR] record screening: %v", err)
	}
	return run
}

func (s *Scheduler) healthTask() {
	health := screener.MarketHealth(s.Collector.Fetcher)

	s.mu.Lock()
	changed := s.lastRegime != "" && s.lastRegime != health.Regime
	s.lastRegime = health.Regime
	s.mu.Unlock()

	if changed || health.AutoAdjust {
		s.trySend(notifier.FormatHealthReport(health))
	}
	log.Printf("[INFO] market health: %s (score %.0f)", health.Regime, health.DefensiveScore)
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	switch command {
	case "/watchlist":
		return notifier.FormatWatchlist(s.Cache.Watchlist())
	case "/suggest":
		sugs := s.Suggestions()
		if len(sugs) == 0 {
			return "No spreads clear the profit target right now."
		}
		parts := make([]string, 0, len(sugs))
		for i := range sugs {
			parts = append(parts, notifier.FormatSuggestion(&sugs[i]))
		}
		return strings.Join(parts, "\n")
	case "/screen":
		return notifier.FormatScreeningReport(s.screeningRun())
	case "/pnl":
		return notifier.FormatPnLReport(s.Ledger.WeeklyPnL())
	case "/health":
		return notifier.FormatHealthReport(screener.MarketHealth(s.Collector.Fetcher))
	case "/review":
		open, advice := s.ReviewTrades()
		return notifier.FormatAdvice(open, advice)
	default:
		return "Commands:\n/watchlist\n/suggest\n/screen\n/pnl\n/health\n/review"
	}
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
