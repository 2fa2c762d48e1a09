package collector

import (
	"errors"
	"testing"
	"time"

	"SpreadSentinel/internal/model"
)

func TestSnapshot_FullHistory(t *testing.T) {
	f := &MockFetcher{Price: 100}
	c := NewCollector(f, 63)

	ind, series, err := c.Snapshot("SPY")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(series.DailyBars) != 63 {
		t.Fatalf("expected 63 bars, got %d", len(series.DailyBars))
	}
	if ind.MA5 <= 0 || ind.MA20 <= 0 {
		t.Errorf("expected computed MAs, got MA5=%.2f MA20=%.2f", ind.MA5, ind.MA20)
	}
	if ind.RSI < 0 || ind.RSI > 100 {
		t.Errorf("RSI out of range: %.2f", ind.RSI)
	}
	if ind.BollUpper < ind.BollLower {
		t.Errorf("band inversion: upper %.2f below lower %.2f", ind.BollUpper, ind.BollLower)
	}
	if ind.ATR <= 0 {
		t.Errorf("expected positive ATR, got %.4f", ind.ATR)
	}
	if ind.AnnualVol < 0 {
		t.Errorf("expected non-negative volatility, got %.4f", ind.AnnualVol)
	}
}

func TestSnapshot_ShortHistoryDegrades(t *testing.T) {
	bars := make([]model.OHLCV, 5)
	day := time.Now().AddDate(0, 0, -5)
	for i := range bars {
		bars[i] = model.OHLCV{
			Time: day.AddDate(0, 0, i), Open: 100, High: 101, Low: 99, Close: 100, Volume: 1e6,
		}
	}
	f := &MockFetcher{Price: 100, DailyData: bars}
	c := NewCollector(f, 63)

	ind, _, err := c.Snapshot("SPY")
	if err != nil {
		t.Fatalf("short history must degrade, not fail: %v", err)
	}
	if ind.RSI != 50 {
		t.Errorf("expected neutral RSI fallback, got %.2f", ind.RSI)
	}
	if ind.BollUpper != 100 || ind.BollLower != 100 {
		t.Errorf("expected bands pinned to price, got [%.2f, %.2f]", ind.BollLower, ind.BollUpper)
	}
	if ind.ATR != 100*0.02 {
		t.Errorf("expected 2%% ATR fallback, got %.4f", ind.ATR)
	}
	if ind.VolumeRatio != 1 {
		t.Errorf("expected neutral volume ratio, got %.2f", ind.VolumeRatio)
	}
}

func TestSeries_EmptyHistory(t *testing.T) {
	// All-null provider responses filter down to zero bars with no error;
	// Series must surface that as missing data instead of indexing into it.
	f := &MockFetcher{Price: 100, DailyData: []model.OHLCV{}}
	c := NewCollector(f, 63)

	if _, err := c.Series("SPY"); !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData for empty bar history, got %v", err)
	}
	if _, _, err := c.Snapshot("SPY"); err == nil {
		t.Error("Snapshot should fail on empty bar history")
	}
}

func TestMockFetcher_ChainAndQuoteSentinels(t *testing.T) {
	f := &MockFetcher{Price: 100}

	if _, err := f.FetchOptionChain("SPY", time.Now()); !errors.Is(err, ErrChainUnavailable) {
		t.Errorf("expected ErrChainUnavailable, got %v", err)
	}
	if _, err := f.FetchQuoteInfo("SPY"); !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData, got %v", err)
	}

	f.Chain = &model.OptionChain{Symbol: "SPY"}
	if _, err := f.FetchOptionChain("SPY", time.Now()); err != nil {
		t.Errorf("unexpected error with chain set: %v", err)
	}
}

func TestCollector_DefaultLookback(t *testing.T) {
	c := NewCollector(&MockFetcher{Price: 100}, 0)
	if c.Lookback != 63 {
		t.Errorf("expected default lookback 63, got %d", c.Lookback)
	}
}
