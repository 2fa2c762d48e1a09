package calculator

import (
	"errors"
	"sort"

	"SpreadSentinel/internal/model"
)

// AggregateDailyToWeekly groups daily bars by ISO calendar week and collapses
// each group into a single bar (first open, max high, min low, last close,
// summed volume). Used when a provider has no weekly interval.
func AggregateDailyToWeekly(daily []model.OHLCV) []model.OHLCV {
	if len(daily) == 0 {
		return nil
	}

	type weekKey struct {
		year int
		week int
	}
	groups := make(map[weekKey][]model.OHLCV)
	order := make([]weekKey, 0)
	for _, b := range daily {
		y, w := b.Time.ISOWeek()
		k := weekKey{y, w}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], b)
	}

	sort.Slice(order, func(i, j int) bool {
		if order[i].year != order[j].year {
			return order[i].year < order[j].year
		}
		return order[i].week < order[j].week
	})

	weekly := make([]model.OHLCV, 0, len(order))
	for _, k := range order {
		bars := groups[k]
		wb := model.OHLCV{
			Time: bars[0].Time,
			Open: bars[0].Open,
			High: bars[0].High,
			Low:  bars[0].Low,
		}
		for _, b := range bars {
			if b.High > wb.High {
				wb.High = b.High
			}
			if b.Low < wb.Low {
				wb.Low = b.Low
			}
			wb.Volume += b.Volume
		}
		wb.Close = bars[len(bars)-1].Close
		weekly = append(weekly, wb)
	}
	return weekly
}

// WeeklyReturns derives percent week-over-week returns from daily bars and
// returns the most recent `count` of them, oldest first.
func WeeklyReturns(daily []model.OHLCV, count int) ([]float64, error) {
	weekly := AggregateDailyToWeekly(daily)
	if len(weekly) < 2 {
		return nil, errors.New("not enough weekly data for returns")
	}

	returns := make([]float64, 0, len(weekly)-1)
	for i := 1; i < len(weekly); i++ {
		prev := weekly[i-1].Close
		if prev == 0 {
			continue
		}
		returns = append(returns, (weekly[i].Close-prev)/prev*100)
	}
	if len(returns) == 0 {
		return nil, errors.New("no usable weekly returns")
	}
	if len(returns) > count {
		returns = returns[len(returns)-count:]
	}
	return returns, nil
}
