package collector

import (
	"fmt"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"SpreadSentinel/internal/calculator"
	"SpreadSentinel/internal/model"
)

// AlpacaFetcher implements Fetcher on the Alpaca market data API. It serves
// bars and latest trades only: the stocks data plan has no option chains and
// no fundamentals, so FetchOptionChain and FetchQuoteInfo report that and let
// callers degrade.
type AlpacaFetcher struct {
	client *marketdata.Client
}

// NewAlpacaFetcher creates an Alpaca market data fetcher.
func NewAlpacaFetcher(apiKey, apiSecret string) *AlpacaFetcher {
	return &AlpacaFetcher{
		client: marketdata.NewClient(marketdata.ClientOpts{
			APIKey:    apiKey,
			APISecret: apiSecret,
		}),
	}
}

func (f *AlpacaFetcher) Name() string { return "alpaca" }

func (f *AlpacaFetcher) fetchBars(symbol string, tf marketdata.TimeFrame, start time.Time) ([]model.OHLCV, error) {
	raw, err := f.client.GetBars(symbol, marketdata.GetBarsRequest{
		TimeFrame: tf,
		Start:     start,
		End:       time.Now(),
	})
	if err != nil {
		return nil, fmt.Errorf("alpaca bars %s: %w", symbol, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("alpaca bars %s: %w", symbol, ErrNoData)
	}

	bars := make([]model.OHLCV, len(raw))
	for i, b := range raw {
		bars[i] = model.OHLCV{
			Time:   b.Timestamp,
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: float64(b.Volume),
		}
	}
	return bars, nil
}

func (f *AlpacaFetcher) FetchDailyBars(symbol string, days int) ([]model.OHLCV, error) {
	// Pad for weekends and holidays, then trim to the requested count.
	start := time.Now().AddDate(0, 0, -(days*7/5 + 10))
	bars, err := f.fetchBars(symbol, marketdata.OneDay, start)
	if err != nil {
		return nil, err
	}
	if len(bars) > days {
		bars = bars[len(bars)-days:]
	}
	return bars, nil
}

func (f *AlpacaFetcher) FetchWeeklyBars(symbol string, weeks int) ([]model.OHLCV, error) {
	start := time.Now().AddDate(0, 0, -(weeks*7 + 14))
	bars, err := f.fetchBars(symbol, marketdata.NewTimeFrame(1, marketdata.Week), start)
	if err != nil {
		// Some feeds reject weekly timeframes; aggregate dailies instead.
		daily, derr := f.FetchDailyBars(symbol, weeks*5+10)
		if derr != nil {
			return nil, err
		}
		bars = calculator.AggregateDailyToWeekly(daily)
	}
	if len(bars) > weeks {
		bars = bars[len(bars)-weeks:]
	}
	return bars, nil
}

func (f *AlpacaFetcher) FetchCurrentPrice(symbol string) (float64, error) {
	trade, err := f.client.GetLatestTrade(symbol, marketdata.GetLatestTradeRequest{})
	if err != nil {
		return 0, fmt.Errorf("alpaca latest trade %s: %w", symbol, err)
	}
	return trade.Price, nil
}

func (f *AlpacaFetcher) FetchOptionChain(symbol string, _ time.Time) (*model.OptionChain, error) {
	return nil, fmt.Errorf("alpaca %s: %w", symbol, ErrChainUnavailable)
}

func (f *AlpacaFetcher) FetchQuoteInfo(symbol string) (*model.QuoteInfo, error) {
	return nil, fmt.Errorf("alpaca %s: %w", symbol, ErrNoData)
}
