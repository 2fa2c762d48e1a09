package options

import (
	"github.com/shopspring/decimal"

	"SpreadSentinel/internal/model"
)

// SnapStrike rounds a price to the nearest listed-style strike: whole dollars
// at $25 and above, half dollars between $10 and $25, quarter dollars below.
func SnapStrike(price float64) float64 {
	d := decimal.NewFromFloat(price)
	switch {
	case price >= 25:
		return d.Round(0).InexactFloat64()
	case price >= 10:
		return d.Mul(decimal.NewFromInt(2)).Round(0).Div(decimal.NewFromInt(2)).InexactFloat64()
	default:
		return d.Mul(decimal.NewFromInt(4)).Round(0).Div(decimal.NewFromInt(4)).InexactFloat64()
	}
}

// strikeIncrement returns the ladder spacing typical for the price level.
func strikeIncrement(price float64) decimal.Decimal {
	switch {
	case price >= 100:
		return decimal.NewFromInt(5)
	case price >= 25:
		return decimal.NewFromFloat(2.5)
	case price >= 10:
		return decimal.NewFromInt(1)
	default:
		return decimal.NewFromFloat(0.5)
	}
}

// StrikeLadder generates a synthetic strike chain of count+1 strikes centered
// on the snapped price, sorted ascending. Used when no live chain exists.
func StrikeLadder(price float64, count int) []float64 {
	base := decimal.NewFromFloat(SnapStrike(price))
	inc := strikeIncrement(price)

	strikes := make([]float64, 0, count+1)
	for i := -count / 2; i <= count/2; i++ {
		s := base.Add(inc.Mul(decimal.NewFromInt(int64(i))))
		if s.IsPositive() {
			strikes = append(strikes, s.InexactFloat64())
		}
	}
	return strikes
}

// FindOTMStrike picks an out-of-the-money strike roughly distancePct away
// from the current price. Live chain strikes are preferred; with none listed
// it falls back to the synthetic ladder.
func FindOTMStrike(chain *model.OptionChain, currentPrice, distancePct float64, side model.OptionSide) float64 {
	var target float64
	if side == model.SidePut {
		target = currentPrice * (1 - distancePct)
	} else {
		target = currentPrice * (1 + distancePct)
	}

	strikes := chainStrikes(chain, side)
	if len(strikes) == 0 {
		strikes = StrikeLadder(currentPrice, 10)
	}

	best := strikes[0]
	for _, s := range strikes[1:] {
		if abs(s-target) < abs(best-target) {
			best = s
		}
	}
	return ensureOTM(best, currentPrice, side, strikes)
}

func chainStrikes(chain *model.OptionChain, side model.OptionSide) []float64 {
	if chain == nil {
		return nil
	}
	quotes := chain.Puts
	if side == model.SideCall {
		quotes = chain.Calls
	}
	strikes := make([]float64, 0, len(quotes))
	for _, q := range quotes {
		strikes = append(strikes, q.Strike)
	}
	return strikes
}

// ensureOTM pushes a strike to the right side of the current price when the
// nearest-to-target pick landed in the money.
func ensureOTM(strike, currentPrice float64, side model.OptionSide, strikes []float64) float64 {
	if side == model.SidePut && strike >= currentPrice {
		best, found := 0.0, false
		for _, s := range strikes {
			if s < currentPrice && s > best {
				best, found = s, true
			}
		}
		if found {
			return best
		}
		return SnapStrike(currentPrice * 0.98)
	}
	if side == model.SideCall && strike <= currentPrice {
		best, found := 0.0, false
		for _, s := range strikes {
			if s > currentPrice && (!found || s < best) {
				best, found = s, true
			}
		}
		if found {
			return best
		}
		return SnapStrike(currentPrice * 1.02)
	}
	return strike
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
