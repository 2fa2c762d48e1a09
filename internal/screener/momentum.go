package screener

import (
	"fmt"
	"log"

	"SpreadSentinel/internal/calculator"
	"SpreadSentinel/internal/collector"
	"SpreadSentinel/internal/model"
)

// Position status thresholds on daily change, in percent.
const (
	dropThreshold     = -3.0
	watchThreshold    = -1.5
	momentumThreshold = 2.0
)

// AnalyzeTicker computes the momentum profile for one ticker and runs it
// through the qualification cascade.
func AnalyzeTicker(f collector.Fetcher, symbol string, minRS, weeklyTarget float64) (*model.MomentumAnalysis, error) {
	bars, err := f.FetchDailyBars(symbol, 35)
	if err != nil {
		return nil, fmt.Errorf("analyze %s: %w", symbol, err)
	}
	closes := calculator.ExtractCloses(bars)
	if len(closes) == 0 {
		return nil, fmt.Errorf("analyze %s: %w", symbol, collector.ErrNoData)
	}
	current := closes[len(closes)-1]

	a := &model.MomentumAnalysis{
		Symbol:       symbol,
		ShortName:    symbol,
		CurrentPrice: current,
		MarketCap:    1e9, // default when the quote API has nothing
	}

	if info, err := f.FetchQuoteInfo(symbol); err != nil {
		log.Printf("[WARN] quote info for %s failed: %v, using defaults", symbol, err)
	} else {
		if info.ShortName != "" {
			a.ShortName = info.ShortName
		}
		if info.MarketCap > 0 {
			a.MarketCap = info.MarketCap
			a.CapKnown = true
		}
	}

	if len(closes) >= 2 {
		prev := closes[len(closes)-2]
		if prev != 0 {
			a.DailyChange = (current - prev) / prev * 100
		}
	}

	returns, err := calculator.WeeklyReturns(bars, 4)
	if err != nil {
		// Single trailing-week fallback
		if len(closes) >= 7 {
			weekAgo := closes[len(closes)-7]
			if weekAgo != 0 {
				returns = []float64{(current - weekAgo) / weekAgo * 100}
			}
		}
	}
	a.WeeklyReturns = returns
	for _, r := range returns {
		a.AvgWeeklyReturn += r
		if r >= weeklyTarget {
			a.WeeksAboveTarget++
		}
	}
	if len(returns) > 0 {
		a.AvgWeeklyReturn /= float64(len(returns))
	}

	a.RSScore = rsScore(closes, current)
	a.PositionStatus = positionStatus(a.DailyChange)
	a.Qualified = passesFilters(a, minRS, weeklyTarget)
	return a, nil
}

// rsScore grades price-vs-MA strength on a 0-100 scale where 50 sits at the
// moving average. Short histories fall back to a tighter MA, then to neutral.
func rsScore(closes []float64, current float64) float64 {
	if ma20, err := calculator.CalculateSMA(closes, 20); err == nil && ma20 > 0 {
		return clampScore(50 + (current-ma20)/ma20*100*2)
	}
	if ma10, err := calculator.CalculateSMA(closes, 10); err == nil && ma10 > 0 {
		return clampScore(50 + (current-ma10)/ma10*100*3)
	}
	return 50
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func positionStatus(dailyChange float64) string {
	switch {
	case dailyChange <= dropThreshold:
		return "EXIT"
	case dailyChange <= watchThreshold:
		return "WATCH"
	case dailyChange >= momentumThreshold:
		return "STRONG"
	default:
		return "HOLD"
	}
}

// passesFilters runs the qualification cascade: user thresholds first, then
// bypass exceptions for special patterns below the weekly target, then the
// ordered qualification paths. Sets the reason on the analysis either way.
func passesFilters(a *model.MomentumAnalysis, minRS, weeklyTarget float64) bool {
	if a.RSScore < minRS {
		a.Reason = fmt.Sprintf("RS score too low: %.1f < %.1f", a.RSScore, minRS)
		return false
	}

	if a.AvgWeeklyReturn < weeklyTarget {
		if len(a.WeeklyReturns) != 4 {
			a.Reason = fmt.Sprintf("Weekly return too low: %.1f%% < %.1f%%", a.AvgWeeklyReturn, weeklyTarget)
			return false
		}
		maxRet, total, positive, above3 := stats(a.WeeklyReturns)

		// High-quality stock that simply digested a move
		if a.RSScore >= 55 && a.AvgWeeklyReturn >= 0.8 && positive >= 2 && maxRet >= 6.0 {
			a.Reason = fmt.Sprintf("High-quality momentum: RS %.1f, avg %.1f%%, max %.1f%%", a.RSScore, a.AvgWeeklyReturn, maxRet)
			return true
		}
		// One explosive week carrying the month
		if maxRet >= 7.0 && total >= 3.0 && positive >= 2 {
			a.Reason = fmt.Sprintf("Explosive week: max %.1f%%, total %.1f%%", maxRet, total)
			return true
		}
		// Sector rotation pattern
		if above3 >= 1 && maxRet >= 3.0 && positive >= 2 && a.RSScore >= 40 {
			a.Reason = fmt.Sprintf("Sector play: max %.1f%%, %d/4 weeks >3%%", maxRet, above3)
			return true
		}

		a.Reason = fmt.Sprintf("Weekly return too low: %.1f%% < %.1f%%", a.AvgWeeklyReturn, weeklyTarget)
		return false
	}

	if len(a.WeeklyReturns) != 4 {
		a.Reason = "Incomplete weekly history"
		return false
	}

	maxRet, total, positive, above3 := stats(a.WeeklyReturns)
	minRet := a.WeeklyReturns[0]
	above1, strongNegative := 0, 0
	for _, r := range a.WeeklyReturns {
		if r < minRet {
			minRet = r
		}
		if r > 1.0 {
			above1++
		}
		if r < -4.0 {
			strongNegative++
		}
	}
	aboveTarget := a.WeeksAboveTarget

	switch {
	case aboveTarget >= 3 && a.AvgWeeklyReturn >= 2.5 && minRet > -2.0:
		a.Reason = fmt.Sprintf("Elite momentum: %d/4 weeks above target, avg %.1f%%", aboveTarget, a.AvgWeeklyReturn)
	case aboveTarget >= 2 && a.AvgWeeklyReturn >= 2.0 && maxRet >= 4.0 && minRet > -3.0:
		a.Reason = fmt.Sprintf("Strong leader: %d/4 weeks above target, avg %.1f%%, max %.1f%%", aboveTarget, a.AvgWeeklyReturn, maxRet)
	case above1 >= 3 && a.AvgWeeklyReturn >= 1.8 && total >= 7.0 && minRet > -2.0:
		a.Reason = fmt.Sprintf("Consistent performer: %d/4 weeks >1%%, avg %.1f%%", above1, a.AvgWeeklyReturn)
	case maxRet >= 6.0 && a.AvgWeeklyReturn >= 1.5 && positive >= 3:
		a.Reason = fmt.Sprintf("Explosive breakout: max %.1f%%, avg %.1f%%", maxRet, a.AvgWeeklyReturn)
	case above1 >= 4 && a.AvgWeeklyReturn >= 1.5 && total >= 6.0:
		a.Reason = fmt.Sprintf("Sustained growth: %d/4 weeks >1%%, avg %.1f%%", above1, a.AvgWeeklyReturn)
	case above3 >= 2 && a.AvgWeeklyReturn >= 1.5 && minRet > -4.0:
		a.Reason = fmt.Sprintf("High velocity: %d/4 weeks >3%%, avg %.1f%%", above3, a.AvgWeeklyReturn)
	case aboveTarget >= 2 && a.AvgWeeklyReturn >= 1.5 && total >= 5.0 && minRet > -3.0:
		a.Reason = fmt.Sprintf("Strong momentum: %d/4 weeks above target, avg %.1f%%", aboveTarget, a.AvgWeeklyReturn)
	case positive >= 3 && a.AvgWeeklyReturn >= 1.5 && maxRet >= 3.0 && strongNegative == 0:
		a.Reason = fmt.Sprintf("Quality growth: %d/4 positive weeks, avg %.1f%%", positive, a.AvgWeeklyReturn)
	case a.RSScore >= 45 && a.AvgWeeklyReturn >= 1.2 && positive >= 2 && minRet > -5.0:
		a.Reason = fmt.Sprintf("RS leader: RS %.1f, avg %.1f%%, %d/4 positive", a.RSScore, a.AvgWeeklyReturn, positive)
	case total >= 4.0 && minRet > -4.0 && positive >= 2 && maxRet >= 2.5:
		a.Reason = fmt.Sprintf("Sector strength: total %.1f%%, max %.1f%%, min %.1f%%", total, maxRet, minRet)
	case above3 >= 1 && a.AvgWeeklyReturn >= 1.0 && total >= 3.0 && maxRet >= 4.0:
		a.Reason = fmt.Sprintf("Momentum emergence: %d/4 weeks >3%%, avg %.1f%%", above3, a.AvgWeeklyReturn)
	default:
		switch {
		case a.AvgWeeklyReturn < -1.0:
			a.Reason = fmt.Sprintf("Too negative: avg %.1f%%", a.AvgWeeklyReturn)
		case maxRet < 2.0:
			a.Reason = fmt.Sprintf("No significant moves: max %.1f%%", maxRet)
		case strongNegative >= 3:
			a.Reason = fmt.Sprintf("Too many disasters: %d/4 weeks <-4%%", strongNegative)
		case positive <= 1:
			a.Reason = fmt.Sprintf("Too few positive weeks: %d/4", positive)
		default:
			a.Reason = fmt.Sprintf("Weak signals: %d/4 weeks above target, avg %.1f%%", aboveTarget, a.AvgWeeklyReturn)
		}
		return false
	}
	return true
}

func stats(returns []float64) (maxRet, total float64, positive, above3 int) {
	maxRet = returns[0]
	for _, r := range returns {
		if r > maxRet {
			maxRet = r
		}
		total += r
		if r > 0 {
			positive++
		}
		if r > 3.0 {
			above3++
		}
	}
	return maxRet, total, positive, above3
}
