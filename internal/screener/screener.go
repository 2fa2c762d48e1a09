package screener

import (
	"log"
	"sort"
	"time"

	"SpreadSentinel/internal/collector"
	"SpreadSentinel/internal/model"
)

// Two-tier allocation weights, percent of portfolio per position.
const (
	strongBuyWeight   = 12.0
	moderateBuyWeight = 6.0
)

// Screener runs the momentum screen over a ticker universe.
type Screener struct {
	Fetcher      collector.Fetcher
	Tickers      []string
	MinRSScore   float64
	WeeklyTarget float64 // pct
	MaxResults   int
	MinMarketCap float64

	healthFn func(collector.Fetcher) *model.MarketHealth
}

// NewScreener creates a Screener.
func NewScreener(f collector.Fetcher, tickers []string, minRS, weeklyTarget float64, maxResults int, minMarketCap float64) *Screener {
	return &Screener{
		Fetcher:      f,
		Tickers:      tickers,
		MinRSScore:   minRS,
		WeeklyTarget: weeklyTarget,
		MaxResults:   maxResults,
		MinMarketCap: minMarketCap,
		healthFn:     MarketHealth,
	}
}

// Run screens the universe and returns the ranked, regime-adjusted snapshot.
// Stressed regimes raise the entry requirements and shrink the result count.
func (s *Screener) Run() *model.ScreeningRun {
	health := s.healthFn(s.Fetcher)

	minRS, weeklyTarget, maxResults := s.MinRSScore, s.WeeklyTarget, s.MaxResults
	switch health.Regime {
	case model.RegimeDefensive:
		minRS += 10
		maxResults /= 2
	case model.RegimeHighlyDefensive:
		minRS += 20
		weeklyTarget += 0.5
		maxResults /= 4
	}
	if maxResults < 1 {
		maxResults = 1
	}

	qualified := make([]model.MomentumAnalysis, 0, len(s.Tickers))
	rejected := 0
	for _, symbol := range s.Tickers {
		a, err := AnalyzeTicker(s.Fetcher, symbol, minRS, weeklyTarget)
		if err != nil {
			log.Printf("[WARN] screening %s failed: %v", symbol, err)
			rejected++
			continue
		}
		// An unknown cap is not grounds for rejection; only a known small cap is.
		if a.CapKnown && a.MarketCap < s.MinMarketCap {
			rejected++
			continue
		}
		if !a.Qualified {
			rejected++
			continue
		}
		a.Score = momentumScore(a)
		qualified = append(qualified, *a)
	}

	sort.Slice(qualified, func(i, j int) bool { return qualified[i].Score > qualified[j].Score })
	if len(qualified) > maxResults {
		qualified = qualified[:maxResults]
	}

	return &model.ScreeningRun{
		RunAt:      time.Now(),
		Health:     *health,
		Candidates: qualified,
		Rejected:   rejected,
		Allocation: buildAllocation(qualified, health.Regime),
	}
}

// momentumScore blends average weekly return, relative strength, consistency
// and the latest session's direction.
func momentumScore(a *model.MomentumAnalysis) float64 {
	recent := -2.0
	if a.DailyChange > 0 {
		recent = 1.0
	}
	return a.AvgWeeklyReturn*0.4 +
		a.RSScore*0.3 +
		float64(a.WeeksAboveTarget)*5*0.2 +
		recent*0.1
}

// buildAllocation splits the portfolio across strong and moderate buys with a
// defensive cash buffer sized by regime, normalizing position weights to the
// investable remainder.
func buildAllocation(candidates []model.MomentumAnalysis, regime model.MarketRegime) model.Allocation {
	alloc := model.Allocation{
		Weights: make(map[string]float64),
		Regime:  regime,
	}
	switch regime {
	case model.RegimeHighlyDefensive:
		alloc.CashPct = 30
	case model.RegimeDefensive:
		alloc.CashPct = 15
	case model.RegimeCautious:
		alloc.CashPct = 5
	}

	raw := 0.0
	for _, c := range candidates {
		if c.Score > 15 && c.AvgWeeklyReturn > 2.0 {
			alloc.StrongBuys = append(alloc.StrongBuys, c.Symbol)
			alloc.Weights[c.Symbol] = strongBuyWeight
			raw += strongBuyWeight
		} else if c.Score > 10 {
			alloc.ModerateBuys = append(alloc.ModerateBuys, c.Symbol)
			alloc.Weights[c.Symbol] = moderateBuyWeight
			raw += moderateBuyWeight
		}
	}
	if raw == 0 {
		alloc.CashPct = 100
		return alloc
	}

	investable := 100 - alloc.CashPct
	for sym, w := range alloc.Weights {
		alloc.Weights[sym] = w / raw * investable
	}
	return alloc
}
