package calculator

import "errors"

// CalculateMACD computes the MACD line (EMA12 - EMA26) and its 9-period
// signal line from a close-price series.
func CalculateMACD(prices []float64) (macd, signal float64, err error) {
	if len(prices) < 26 {
		return 0, 0, errors.New("not enough data for MACD calculation")
	}

	ema12, err := CalculateEMASeries(prices, 12)
	if err != nil {
		return 0, 0, err
	}
	ema26, err := CalculateEMASeries(prices, 26)
	if err != nil {
		return 0, 0, err
	}

	macdSeries := make([]float64, len(prices))
	for i := range prices {
		macdSeries[i] = ema12[i] - ema26[i]
	}

	signalSeries, err := CalculateEMASeries(macdSeries, 9)
	if err != nil {
		return 0, 0, err
	}
	return macdSeries[len(macdSeries)-1], signalSeries[len(signalSeries)-1], nil
}
