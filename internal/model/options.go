package model

import "time"

// RangeMethod selects how the prediction half-width is derived.
type RangeMethod string

const (
	RangeVolatility RangeMethod = "volatility"
	RangeATR        RangeMethod = "atr"
)

// Prediction is a one-week-ahead price range forecast for a ticker.
type Prediction struct {
	Symbol       string      `json:"symbol"`
	CurrentPrice float64     `json:"current_price"`
	TargetPrice  float64     `json:"target_price"`
	RangeLow     float64     `json:"range_low"`
	RangeHigh    float64     `json:"range_high"`
	Bias         float64     `json:"bias"`
	BullishProb  float64     `json:"bullish_prob"`
	WeeklyVol    float64     `json:"weekly_vol"`
	Method       RangeMethod `json:"method"`
	CreatedAt    time.Time   `json:"created_at"`
}

// OptionQuote is a single listed contract from a provider chain.
type OptionQuote struct {
	Strike     float64
	Bid        float64
	Ask        float64
	LastPrice  float64
	ImpliedVol float64 // annualized fraction, 0 when the provider omits it
}

// OptionChain holds the call and put quotes for one expiration.
type OptionChain struct {
	Symbol     string
	Expiration time.Time
	Calls      []OptionQuote
	Puts       []OptionQuote
}

// OptionSide distinguishes puts from calls.
type OptionSide string

const (
	SidePut  OptionSide = "PUT"
	SideCall OptionSide = "CALL"
)

// LegAction is the direction of a single spread leg.
type LegAction string

const (
	ActionSell LegAction = "SELL"
	ActionBuy  LegAction = "BUY"
)

// Leg is one contract within a spread.
type Leg struct {
	Action  LegAction  `json:"action"`
	Side    OptionSide `json:"side"`
	Strike  float64    `json:"strike"`
	Premium float64    `json:"premium"`
}

// Strategy names the supported spread structures.
type Strategy string

const (
	BullPutSpread  Strategy = "Bull Put Spread"
	BearCallSpread Strategy = "Bear Call Spread"
	IronCondor     Strategy = "Iron Condor"
)

// TradeSuggestion is a fully priced spread proposal.
type TradeSuggestion struct {
	Symbol         string    `json:"symbol"`
	Strategy       Strategy  `json:"strategy"`
	Legs           []Leg     `json:"legs"`
	Expiration     time.Time `json:"expiration"`
	Credit         float64   `json:"credit"`
	MaxLoss        float64   `json:"max_loss"`
	ProfitTarget   float64   `json:"profit_target"`
	Confidence     float64   `json:"confidence"`
	Bias           float64   `json:"bias"`
	OptionStratURL string    `json:"optionstrat_url"`
	CreatedAt      time.Time `json:"created_at"`
}

// TradeStatus is the lifecycle state of a ledger entry.
type TradeStatus string

const (
	TradeOpen   TradeStatus = "Open"
	TradeClosed TradeStatus = "Closed"
)

// Trade is a recorded position in the ledger.
type Trade struct {
	ID         string      `json:"id"`
	Symbol     string      `json:"symbol"`
	Strategy   Strategy    `json:"strategy"`
	Legs       []Leg       `json:"legs"`
	Expiration time.Time   `json:"expiration"`
	Credit     float64     `json:"credit"`
	MaxLoss    float64     `json:"max_loss"`
	Status     TradeStatus `json:"status"`
	EntryDate  time.Time   `json:"entry_date"`
	ExitDate   time.Time   `json:"exit_date,omitempty"`
	ExitPrice  float64     `json:"exit_price,omitempty"`
	ExitReason string      `json:"exit_reason,omitempty"`
	PnL        float64     `json:"pnl,omitempty"`
	Notes      string      `json:"notes,omitempty"`
}

// TradeAdvice is a hold/close/adjust recommendation for an open trade.
type TradeAdvice struct {
	TradeID string `json:"trade_id"`
	Action  string `json:"action"` // "HOLD", "CLOSE", "ADJUST"
	Reason  string `json:"reason"`
}

// WatchlistEntry is a dashboard row with the latest forecast per ticker.
type WatchlistEntry struct {
	Symbol       string    `json:"symbol"`
	CurrentPrice float64   `json:"current_price"`
	RangeLow     float64   `json:"range_low"`
	RangeHigh    float64   `json:"range_high"`
	TargetPrice  float64   `json:"target_price"`
	BullishProb  float64   `json:"bullish_prob"`
	UpdatedAt    time.Time `json:"updated_at"`
}
