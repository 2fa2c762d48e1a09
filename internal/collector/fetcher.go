package collector

import (
	"errors"
	"time"

	"SpreadSentinel/internal/model"
)

// ErrNoData means the provider answered but had nothing for the symbol.
var ErrNoData = errors.New("no data for symbol")

// ErrChainUnavailable means the provider cannot serve option chains at all.
// Callers fall back to the analytic pricing model.
var ErrChainUnavailable = errors.New("option chain unavailable")

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	FetchDailyBars(symbol string, days int) ([]model.OHLCV, error)
	FetchWeeklyBars(symbol string, weeks int) ([]model.OHLCV, error)
	FetchCurrentPrice(symbol string) (float64, error)
	FetchOptionChain(symbol string, target time.Time) (*model.OptionChain, error)
	FetchQuoteInfo(symbol string) (*model.QuoteInfo, error)
	Name() string
}
