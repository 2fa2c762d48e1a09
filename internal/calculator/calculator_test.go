package calculator

import (
	"math"
	"testing"
	"time"

	"SpreadSentinel/internal/model"
)

func almostEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func TestCalculateSMA(t *testing.T) {
	prices := []float64{1, 2, 3, 4, 5, 6}
	sma, err := CalculateSMA(prices, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(sma, 5.0, 1e-9) {
		t.Errorf("expected SMA 5.0, got %.4f", sma)
	}

	if _, err := CalculateSMA(prices, 10); err == nil {
		t.Error("expected error for short series")
	}
	if _, err := CalculateSMA(prices, 0); err == nil {
		t.Error("expected error for zero period")
	}
}

func TestCalculateEMA_ConstantSeries(t *testing.T) {
	prices := []float64{50, 50, 50, 50, 50, 50, 50, 50}
	ema, err := CalculateEMA(prices, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(ema, 50.0, 1e-9) {
		t.Errorf("EMA of constant series should equal the constant, got %.4f", ema)
	}
}

func TestCalculateEMASeries_FirstValue(t *testing.T) {
	prices := []float64{10, 20, 30}
	series, err := CalculateEMASeries(prices, 12)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(series) != 3 {
		t.Fatalf("expected 3 values, got %d", len(series))
	}
	if !almostEqual(series[0], 10.0, 1e-9) {
		t.Errorf("first EMA value should equal first price, got %.4f", series[0])
	}
	if series[2] <= series[0] || series[2] >= 30 {
		t.Errorf("EMA of rising series should lie between first and last price, got %.4f", series[2])
	}
}

func TestCalculateRSI(t *testing.T) {
	// Strictly rising window has no losses.
	rising := []float64{100, 101, 102, 103, 104, 105, 106, 107, 108, 109, 110, 111, 112, 113, 114}
	rsi, err := CalculateRSI(rising, 14)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rsi != 100.0 {
		t.Errorf("expected RSI 100 for all-gain window, got %.2f", rsi)
	}

	// Alternating equal gains and losses balance out to 50.
	alternating := make([]float64, 15)
	for i := range alternating {
		if i%2 == 0 {
			alternating[i] = 100
		} else {
			alternating[i] = 101
		}
	}
	rsi, err = CalculateRSI(alternating, 14)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(rsi, 50.0, 1e-9) {
		t.Errorf("expected RSI 50 for balanced window, got %.2f", rsi)
	}

	if _, err := CalculateRSI([]float64{1, 2, 3}, 14); err == nil {
		t.Error("expected error for short series")
	}
}

func TestCalculateMACD_Direction(t *testing.T) {
	rising := make([]float64, 40)
	for i := range rising {
		rising[i] = 100 + float64(i)
	}
	macd, _, err := CalculateMACD(rising)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if macd <= 0 {
		t.Errorf("expected positive MACD for rising series, got %.4f", macd)
	}

	falling := make([]float64, 40)
	for i := range falling {
		falling[i] = 140 - float64(i)
	}
	macd, _, err = CalculateMACD(falling)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if macd >= 0 {
		t.Errorf("expected negative MACD for falling series, got %.4f", macd)
	}

	if _, _, err := CalculateMACD(rising[:20]); err == nil {
		t.Error("expected error for series shorter than slow period")
	}
}

func TestCalculateBollinger_ConstantSeries(t *testing.T) {
	prices := make([]float64, 25)
	for i := range prices {
		prices[i] = 200
	}
	upper, lower, err := CalculateBollinger(prices)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(upper, 200, 1e-9) || !almostEqual(lower, 200, 1e-9) {
		t.Errorf("bands of constant series should collapse to the mean, got [%.2f, %.2f]", lower, upper)
	}
}

func TestCalculateATR_ConstantRange(t *testing.T) {
	bars := make([]model.OHLCV, 15)
	day := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	for i := range bars {
		bars[i] = model.OHLCV{
			Time:  day.AddDate(0, 0, i),
			Open:  100,
			High:  101,
			Low:   99,
			Close: 100,
		}
	}
	atr, err := CalculateATR(bars, 14)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(atr, 2.0, 1e-9) {
		t.Errorf("expected ATR 2.0 for constant 2-point ranges, got %.4f", atr)
	}

	if _, err := CalculateATR(bars[:10], 14); err == nil {
		t.Error("expected error for short series")
	}
}

func TestCalculateATR_GapDominatesRange(t *testing.T) {
	day := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	bars := []model.OHLCV{
		{Time: day, Open: 100, High: 101, Low: 99, Close: 100},
		// Gap up: high-prevClose (10) exceeds the bar's own range (1).
		{Time: day.AddDate(0, 0, 1), Open: 109, High: 110, Low: 109, Close: 109.5},
	}
	atr, err := CalculateATR(bars, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(atr, 10.0, 1e-9) {
		t.Errorf("expected gap to dominate true range, got %.4f", atr)
	}
}

func TestAggregateDailyToWeekly(t *testing.T) {
	// Two ISO weeks: Mon-Fri then Mon-Wed.
	mon := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)
	var daily []model.OHLCV
	for i := 0; i < 5; i++ {
		daily = append(daily, model.OHLCV{
			Time: mon.AddDate(0, 0, i), Open: 100 + float64(i), High: 105 + float64(i),
			Low: 95 + float64(i), Close: 101 + float64(i), Volume: 1000,
		})
	}
	for i := 0; i < 3; i++ {
		daily = append(daily, model.OHLCV{
			Time: mon.AddDate(0, 0, 7+i), Open: 110, High: 120,
			Low: 108, Close: 112, Volume: 2000,
		})
	}

	weekly := AggregateDailyToWeekly(daily)
	if len(weekly) != 2 {
		t.Fatalf("expected 2 weekly bars, got %d", len(weekly))
	}
	w1 := weekly[0]
	if w1.Open != 100 || w1.Close != 105 {
		t.Errorf("week 1: expected open 100 close 105, got open %.1f close %.1f", w1.Open, w1.Close)
	}
	if w1.High != 109 || w1.Low != 95 {
		t.Errorf("week 1: expected high 109 low 95, got high %.1f low %.1f", w1.High, w1.Low)
	}
	if w1.Volume != 5000 {
		t.Errorf("week 1: expected volume 5000, got %.0f", w1.Volume)
	}
}

func TestWeeklyReturns(t *testing.T) {
	mon := time.Date(2026, 7, 6, 0, 0, 0, 0, time.UTC)
	var daily []model.OHLCV
	closes := []float64{100, 102, 110, 99} // weekly closes
	for w, c := range closes {
		for i := 0; i < 5; i++ {
			daily = append(daily, model.OHLCV{
				Time: mon.AddDate(0, 0, w*7+i), Open: c, High: c, Low: c, Close: c,
			})
		}
	}

	returns, err := WeeklyReturns(daily, 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(returns) != 3 {
		t.Fatalf("expected 3 returns, got %d", len(returns))
	}
	expected := []float64{2.0, (110.0 - 102.0) / 102.0 * 100, -10.0}
	for i, want := range expected {
		if !almostEqual(returns[i], want, 1e-6) {
			t.Errorf("return %d: expected %.4f, got %.4f", i, want, returns[i])
		}
	}

	// Truncation keeps the most recent returns.
	returns, err = WeeklyReturns(daily, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(returns) != 2 || !almostEqual(returns[1], -10.0, 1e-6) {
		t.Errorf("expected the 2 most recent returns ending at -10%%, got %v", returns)
	}

	if _, err := WeeklyReturns(daily[:3], 8); err == nil {
		t.Error("expected error for a single week of data")
	}
}
