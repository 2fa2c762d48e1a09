package forecast

import (
	"errors"
	"math"
	"time"

	"SpreadSentinel/internal/model"
)

// Predictor builds one-week-ahead price range forecasts from indicators.
type Predictor struct {
	BiasMultiplier float64
	Method         model.RangeMethod
}

// NewPredictor creates a Predictor.
func NewPredictor(biasMultiplier float64, method model.RangeMethod) *Predictor {
	return &Predictor{BiasMultiplier: biasMultiplier, Method: method}
}

// BiasScore converts indicator readings into a directional bias in
// [-0.4, +0.4], stepping by 0.1. Overbought RSI and fading momentum pull the
// score down, oversold RSI and positive MACD crossovers pull it up.
func BiasScore(ind *model.IndicatorSet) float64 {
	bias := 0.0

	if ind.RSI > 70 {
		bias -= 0.2
	} else if ind.RSI < 30 {
		bias += 0.2
	}

	if ind.MACD > ind.MACDSignal {
		bias += 0.1
	} else {
		bias -= 0.1
	}

	if ind.Momentum > 2 {
		bias += 0.1
	} else if ind.Momentum < -2 {
		bias -= 0.1
	}

	return bias
}

// BullishProbability maps a bias score to a probability, clamped to
// [0.1, 0.9] so a single week's indicators never read as certainty.
func BullishProbability(bias float64) float64 {
	p := 0.5 + bias*0.5
	if p < 0.1 {
		p = 0.1
	}
	if p > 0.9 {
		p = 0.9
	}
	return p
}

// ImpliedWeeklyVol averages the implied volatility of near-the-money
// contracts (strikes within 5% of spot) and scales it to one week. Returns an
// error when the chain carries no usable IV.
func ImpliedWeeklyVol(chain *model.OptionChain, spot float64) (float64, error) {
	if chain == nil || spot <= 0 {
		return 0, errors.New("no chain data")
	}
	sum, n := 0.0, 0
	for _, side := range [][]model.OptionQuote{chain.Calls, chain.Puts} {
		for _, q := range side {
			if q.ImpliedVol <= 0 {
				continue
			}
			if math.Abs(q.Strike-spot)/spot <= 0.05 {
				sum += q.ImpliedVol
				n++
			}
		}
	}
	if n == 0 {
		return 0, errors.New("no near-the-money IV in chain")
	}
	return sum / float64(n) / math.Sqrt(52), nil
}

// Predict produces the price range forecast. The chain is optional: with no
// usable chain IV the weekly volatility falls back to the historical
// annualized volatility scaled to one week.
func (p *Predictor) Predict(ind *model.IndicatorSet, chain *model.OptionChain) (*model.Prediction, error) {
	if ind == nil || ind.CurrentPrice <= 0 {
		return nil, errors.New("no indicator data")
	}

	bias := BiasScore(ind)
	target := ind.CurrentPrice * (1 + bias*p.BiasMultiplier)

	weeklyVol, err := ImpliedWeeklyVol(chain, ind.CurrentPrice)
	if err != nil {
		weeklyVol = ind.AnnualVol / math.Sqrt(52)
	}

	var halfWidth float64
	method := p.Method
	switch method {
	case model.RangeATR:
		halfWidth = ind.ATR
	default:
		method = model.RangeVolatility
		halfWidth = ind.CurrentPrice * weeklyVol
	}

	return &model.Prediction{
		Symbol:       ind.Symbol,
		CurrentPrice: ind.CurrentPrice,
		TargetPrice:  target,
		RangeLow:     target - halfWidth,
		RangeHigh:    target + halfWidth,
		Bias:         bias,
		BullishProb:  BullishProbability(bias),
		WeeklyVol:    weeklyVol,
		Method:       method,
		CreatedAt:    time.Now(),
	}, nil
}
