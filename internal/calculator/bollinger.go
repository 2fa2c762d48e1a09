package calculator

import (
	"errors"
	"math"
)

// CalculateBollinger computes 20-period Bollinger Bands: the middle SMA plus
// and minus two sample standard deviations.
func CalculateBollinger(prices []float64) (upper, lower float64, err error) {
	const period = 20
	if len(prices) < period {
		return 0, 0, errors.New("not enough data for Bollinger calculation")
	}

	mid, err := CalculateSMA(prices, period)
	if err != nil {
		return 0, 0, err
	}

	window := prices[len(prices)-period:]
	sd := sampleStdDev(window, mid)
	return mid + 2*sd, mid - 2*sd, nil
}

// sampleStdDev computes the sample standard deviation around a known mean.
func sampleStdDev(values []float64, mean float64) float64 {
	if len(values) < 2 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)-1))
}
