package collector

import (
	"fmt"
	"log"
	"time"

	"SpreadSentinel/internal/calculator"
	"SpreadSentinel/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price      float64
	DailyData  []model.OHLCV
	WeeklyData []model.OHLCV
	Chain      *model.OptionChain
	Info       *model.QuoteInfo
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyBars(_ string, days int) ([]model.OHLCV, error) {
	if m.DailyData != nil {
		return m.DailyData, nil
	}
	return generateMockBars(m.Price, days), nil
}

func (m *MockFetcher) FetchWeeklyBars(_ string, weeks int) ([]model.OHLCV, error) {
	if m.WeeklyData != nil {
		return m.WeeklyData, nil
	}
	return generateMockBars(m.Price, weeks), nil
}

func (m *MockFetcher) FetchCurrentPrice(_ string) (float64, error) {
	return m.Price, nil
}

func (m *MockFetcher) FetchOptionChain(symbol string, _ time.Time) (*model.OptionChain, error) {
	if m.Chain == nil {
		return nil, fmt.Errorf("mock %s: %w", symbol, ErrChainUnavailable)
	}
	return m.Chain, nil
}

func (m *MockFetcher) FetchQuoteInfo(symbol string) (*model.QuoteInfo, error) {
	if m.Info == nil {
		return nil, fmt.Errorf("mock %s: %w", symbol, ErrNoData)
	}
	return m.Info, nil
}

func generateMockBars(basePrice float64, count int) []model.OHLCV {
	bars := make([]model.OHLCV, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.OHLCV{
			Time:   time.Now().AddDate(0, 0, -(count - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}

// Collector orchestrates data fetching and indicator computation.
type Collector struct {
	Fetcher  Fetcher
	Lookback int // daily bars to fetch, default 63 (~3 months)
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, lookback int) *Collector {
	if lookback <= 0 {
		lookback = 63
	}
	return &Collector{Fetcher: fetcher, Lookback: lookback}
}

// Series fetches daily bars and the current price for one ticker.
func (c *Collector) Series(symbol string) (*model.PriceSeries, error) {
	dailyBars, err := c.Fetcher.FetchDailyBars(symbol, c.Lookback)
	if err != nil {
		return nil, fmt.Errorf("fetch daily bars: %w", err)
	}
	if len(dailyBars) == 0 {
		return nil, fmt.Errorf("fetch daily bars %s: %w", symbol, ErrNoData)
	}
	currentPrice, err := c.Fetcher.FetchCurrentPrice(symbol)
	if err != nil {
		log.Printf("[WARN] current price for %s failed: %v, using last close", symbol, err)
		currentPrice = dailyBars[len(dailyBars)-1].Close
	}
	return &model.PriceSeries{
		Symbol:       symbol,
		DailyBars:    dailyBars,
		CurrentPrice: currentPrice,
		FetchedAt:    time.Now(),
	}, nil
}

// Snapshot fetches market data and computes the full indicator set. A failed
// sub-calculation degrades to a neutral value rather than aborting.
func (c *Collector) Snapshot(symbol string) (*model.IndicatorSet, *model.PriceSeries, error) {
	series, err := c.Series(symbol)
	if err != nil {
		return nil, nil, err
	}

	closes := calculator.ExtractCloses(series.DailyBars)
	volumes := calculator.ExtractVolumes(series.DailyBars)

	ind := &model.IndicatorSet{
		Symbol:       symbol,
		CurrentPrice: series.CurrentPrice,
	}

	for _, ma := range []struct {
		period int
		dst    *float64
	}{
		{5, &ind.MA5},
		{10, &ind.MA10},
		{20, &ind.MA20},
	} {
		if v, err := calculator.CalculateSMA(closes, ma.period); err != nil {
			log.Printf("[WARN] MA%d for %s failed: %v, using current price", ma.period, symbol, err)
			*ma.dst = series.CurrentPrice
		} else {
			*ma.dst = v
		}
	}

	if rsi, err := calculator.CalculateRSI(closes, 14); err != nil {
		log.Printf("[WARN] RSI for %s failed: %v, defaulting to 50", symbol, err)
		ind.RSI = 50
	} else {
		ind.RSI = rsi
	}

	if macd, signal, err := calculator.CalculateMACD(closes); err != nil {
		log.Printf("[WARN] MACD for %s failed: %v, defaulting to 0", symbol, err)
	} else {
		ind.MACD = macd
		ind.MACDSignal = signal
	}

	if upper, lower, err := calculator.CalculateBollinger(closes); err != nil {
		log.Printf("[WARN] Bollinger for %s failed: %v", symbol, err)
		ind.BollUpper = series.CurrentPrice
		ind.BollLower = series.CurrentPrice
	} else {
		ind.BollUpper = upper
		ind.BollLower = lower
	}

	if ratio, err := calculator.CalculateVolumeRatio(volumes); err != nil {
		log.Printf("[WARN] volume ratio for %s failed: %v, defaulting to 1", symbol, err)
		ind.VolumeRatio = 1
	} else {
		ind.VolumeRatio = ratio
	}

	if atr, err := calculator.CalculateATR(series.DailyBars, 14); err != nil {
		log.Printf("[WARN] ATR for %s failed: %v, using 2%% of price", symbol, err)
		ind.ATR = series.CurrentPrice * 0.02
	} else {
		ind.ATR = atr
	}

	if mom, err := calculator.CalculateMomentum(closes, 5); err != nil {
		log.Printf("[WARN] momentum for %s failed: %v, defaulting to 0", symbol, err)
	} else {
		ind.Momentum = mom
	}

	if vol, err := calculator.CalculateAnnualVolatility(closes); err != nil {
		log.Printf("[WARN] volatility for %s failed: %v, defaulting to 25%%", symbol, err)
		ind.AnnualVol = 0.25
	} else {
		ind.AnnualVol = vol
	}

	return ind, series, nil
}
