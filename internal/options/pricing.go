package options

import (
	"time"

	"SpreadSentinel/internal/model"
)

// fallbackVols are per-ticker annualized volatility estimates used by the
// analytic pricing model when no measured volatility is supplied.
var fallbackVols = map[string]float64{
	"SPY":  0.15,
	"QQQ":  0.20,
	"AAPL": 0.25,
	"MSFT": 0.22,
	"NVDA": 0.35,
	"TECL": 0.45,
	"XLE":  0.25,
	"SMH":  0.30,
}

const defaultVol = 0.25

// FallbackVol returns the assumed annualized volatility for a ticker.
func FallbackVol(symbol string) float64 {
	if v, ok := fallbackVols[symbol]; ok {
		return v
	}
	return defaultVol
}

// MidPrice derives a usable premium from a chain quote: bid/ask midpoint when
// both sides are live, otherwise the last trade, floored at a cent.
func MidPrice(q model.OptionQuote) float64 {
	if q.Bid > 0 && q.Ask > 0 {
		return (q.Bid + q.Ask) / 2
	}
	if q.LastPrice > 0 {
		return q.LastPrice
	}
	return 0.01
}

// EstimatePremium prices a contract with the analytic fallback model:
// intrinsic value plus a time value scaled by moneyness, volatility and time
// to expiration. Close-dated contracts decay linearly inside 30 days. When no
// measured volatility is supplied the per-ticker assumed volatility is used.
func EstimatePremium(symbol string, currentPrice, strike float64, side model.OptionSide, annualVol float64, expiration time.Time) float64 {
	if annualVol <= 0 {
		annualVol = FallbackVol(symbol)
	}

	days := int(time.Until(expiration).Hours() / 24)
	if days < 1 {
		days = 1
	}
	timeFactor := float64(days) / 365
	if timeFactor < 0.1 {
		timeFactor = 0.1
	}

	var intrinsic float64
	itm := false
	if side == model.SidePut {
		if strike > currentPrice {
			intrinsic = strike - currentPrice
		}
		itm = strike >= currentPrice
	} else {
		if currentPrice > strike {
			intrinsic = currentPrice - strike
		}
		itm = strike <= currentPrice
	}

	moneyness := abs(strike-currentPrice) / currentPrice
	factor := 0.1
	switch {
	case itm:
		factor = 0.4
	case moneyness <= 0.02:
		factor = 0.7
	case moneyness <= 0.05:
		factor = 0.5
	case moneyness <= 0.10:
		factor = 0.3
	}

	timeValue := currentPrice * annualVol * timeFactor * factor
	if days <= 30 {
		timeValue *= float64(days) / 30
	}

	premium := intrinsic + timeValue
	if premium < 0.01 {
		premium = 0.01
	}
	return premium
}

// PremiumFor prices a strike from the live chain when the contract is listed,
// falling back to the analytic model otherwise.
func PremiumFor(symbol string, chain *model.OptionChain, currentPrice, strike float64, side model.OptionSide, annualVol float64, expiration time.Time) float64 {
	if chain != nil {
		quotes := chain.Puts
		if side == model.SideCall {
			quotes = chain.Calls
		}
		for _, q := range quotes {
			if q.Strike == strike {
				return MidPrice(q)
			}
		}
	}
	return EstimatePremium(symbol, currentPrice, strike, side, annualVol, expiration)
}
