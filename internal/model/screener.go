package model

import "time"

// MarketRegime labels overall market stress.
type MarketRegime string

const (
	RegimeAggressive      MarketRegime = "AGGRESSIVE"
	RegimeCautious        MarketRegime = "CAUTIOUS"
	RegimeDefensive       MarketRegime = "DEFENSIVE"
	RegimeHighlyDefensive MarketRegime = "HIGHLY_DEFENSIVE"
)

// MarketHealth summarizes the defensive signals used to gate screening.
type MarketHealth struct {
	VIX              float64      `json:"vix"`
	VIXTrend         string       `json:"vix_trend"` // "RISING", "FALLING", "NORMAL"
	SPYAboveMA20     bool         `json:"spy_above_ma20"`
	SPYAboveMA50     bool         `json:"spy_above_ma50"`
	MomentumPositive bool         `json:"momentum_positive"` // MA10 > MA30
	RealizedVol      float64      `json:"realized_vol"`      // 10-day, pct
	Breadth          float64      `json:"breadth"`           // pct of sectors above MA10
	DefensiveScore   float64      `json:"defensive_score"`   // 0-100
	Regime           MarketRegime `json:"regime"`
	AutoAdjust       bool         `json:"auto_adjust"`
	CheckedAt        time.Time    `json:"checked_at"`
}

// MomentumAnalysis is the per-ticker screening result.
type MomentumAnalysis struct {
	Symbol           string    `json:"symbol"`
	ShortName        string    `json:"short_name"`
	CurrentPrice     float64   `json:"current_price"`
	DailyChange      float64   `json:"daily_change"` // pct
	MarketCap        float64   `json:"market_cap"`
	CapKnown         bool      `json:"cap_known"` // false when the quote API had nothing
	WeeklyReturns    []float64 `json:"weekly_returns"` // last 4, pct, oldest first
	AvgWeeklyReturn  float64   `json:"avg_weekly_return"`
	WeeksAboveTarget int       `json:"weeks_above_target"`
	RSScore          float64   `json:"rs_score"` // 0-100
	Score            float64   `json:"score"`
	Qualified        bool      `json:"qualified"`
	Reason           string    `json:"reason"`
	PositionStatus   string    `json:"position_status"` // "STRONG", "HOLD", "WATCH", "EXIT"
}

// Allocation is a two-tier percent split across picks plus defensive cash.
type Allocation struct {
	StrongBuys   []string           `json:"strong_buys"`
	ModerateBuys []string           `json:"moderate_buys"`
	Weights      map[string]float64 `json:"weights"` // symbol -> pct of portfolio
	CashPct      float64            `json:"cash_pct"`
	Regime       MarketRegime       `json:"regime"`
}

// ScreeningRun is one screening execution snapshot.
type ScreeningRun struct {
	RunAt      time.Time          `json:"run_at"`
	Health     MarketHealth       `json:"health"`
	Candidates []MomentumAnalysis `json:"candidates"` // qualified, ranked desc by score
	Rejected   int                `json:"rejected"`
	Allocation Allocation         `json:"allocation"`
}
