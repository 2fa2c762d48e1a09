package screener

import (
	"log"
	"time"

	"SpreadSentinel/internal/calculator"
	"SpreadSentinel/internal/collector"
	"SpreadSentinel/internal/model"
)

const (
	vixThreshold     = 20.0
	breadthThreshold = 60.0
)

// sectorProxies approximate market breadth: tech, finance, health, energy,
// industrial.
var sectorProxies = []string{"XLK", "XLF", "XLV", "XLE", "XLI"}

// MarketHealth derives the defensive regime from VIX, SPY trend, realized
// volatility and sector breadth. Missing inputs degrade to neutral readings
// rather than failing the whole check.
func MarketHealth(f collector.Fetcher) *model.MarketHealth {
	h := &model.MarketHealth{
		VIX:              20,
		VIXTrend:         "NORMAL",
		SPYAboveMA20:     true,
		SPYAboveMA50:     true,
		MomentumPositive: true,
		RealizedVol:      1.0,
		Breadth:          breadthThreshold, // neutral default
		CheckedAt:        time.Now(),
	}

	vixMA5 := h.VIX
	if bars, err := f.FetchDailyBars("VIX", 10); err != nil || len(bars) == 0 {
		log.Printf("[WARN] VIX fetch failed: %v, assuming neutral", err)
	} else {
		closes := calculator.ExtractCloses(bars)
		h.VIX = closes[len(closes)-1]
		vixMA5 = h.VIX
		if ma, err := calculator.CalculateSMA(closes, 5); err == nil {
			vixMA5 = ma
		}
		if h.VIX > vixMA5*1.05 {
			h.VIXTrend = "RISING"
		} else {
			h.VIXTrend = "FALLING"
		}
	}

	if bars, err := f.FetchDailyBars("SPY", 100); err != nil || len(bars) == 0 {
		log.Printf("[WARN] SPY fetch failed: %v, assuming healthy trend", err)
	} else {
		closes := calculator.ExtractCloses(bars)
		current := closes[len(closes)-1]
		if ma20, err := calculator.CalculateSMA(closes, 20); err == nil {
			h.SPYAboveMA20 = current > ma20
		}
		if ma50, err := calculator.CalculateSMA(closes, 50); err == nil {
			h.SPYAboveMA50 = current > ma50
		}
		ma10, err10 := calculator.CalculateSMA(closes, 10)
		ma30, err30 := calculator.CalculateSMA(closes, 30)
		if err10 == nil && err30 == nil {
			h.MomentumPositive = ma10 > ma30
		}
		if vol, err := calculator.CalculateRealizedVolatility(closes, 10); err == nil {
			h.RealizedVol = vol
		}
	}

	h.Breadth = sectorBreadth(f)

	signals := 0
	if h.VIX > vixThreshold {
		signals++
	}
	if h.VIX > vixMA5*1.1 {
		signals++
	}
	if !h.SPYAboveMA20 {
		signals++
	}
	if h.Breadth < breadthThreshold {
		signals++
	}
	if h.RealizedVol > 2.5 {
		signals++
	}
	if !h.MomentumPositive {
		signals++
	}

	h.DefensiveScore = float64(signals) / 6 * 100
	switch {
	case h.DefensiveScore >= 66:
		h.Regime = model.RegimeHighlyDefensive
	case h.DefensiveScore >= 50:
		h.Regime = model.RegimeDefensive
	case h.DefensiveScore >= 33:
		h.Regime = model.RegimeCautious
	default:
		h.Regime = model.RegimeAggressive
	}
	h.AutoAdjust = h.DefensiveScore >= 70

	return h
}

// sectorBreadth counts the sector ETFs trading above their 10-day MA, as a
// percentage. Returns the neutral default when no sector data comes back.
func sectorBreadth(f collector.Fetcher) float64 {
	strong, checked := 0, 0
	for _, sector := range sectorProxies {
		bars, err := f.FetchDailyBars(sector, 20)
		if err != nil || len(bars) < 10 {
			continue
		}
		closes := calculator.ExtractCloses(bars)
		ma10, err := calculator.CalculateSMA(closes, 10)
		if err != nil {
			continue
		}
		checked++
		if closes[len(closes)-1] > ma10 {
			strong++
		}
	}
	if checked == 0 {
		return breadthThreshold
	}
	return float64(strong) / float64(len(sectorProxies)) * 100
}
