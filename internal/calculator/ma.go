package calculator

import (
	"errors"

	"SpreadSentinel/internal/model"
)

// CalculateSMA computes the simple moving average of the last `period` prices.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period), nil
}

// CalculateEMASeries computes the exponentially weighted mean for every point
// in the series, using span-based weighting (alpha = 2/(span+1)) with the
// weights normalized over the observed history.
func CalculateEMASeries(prices []float64, span int) ([]float64, error) {
	if span <= 0 {
		return nil, errors.New("span must be positive")
	}
	if len(prices) == 0 {
		return nil, errors.New("no prices provided")
	}
	alpha := 2.0 / (float64(span) + 1.0)
	out := make([]float64, len(prices))
	num, den := 0.0, 0.0
	for i, p := range prices {
		decay := 1.0 - alpha
		num = num*decay + p
		den = den*decay + 1.0
		out[i] = num / den
	}
	return out, nil
}

// CalculateEMA returns the latest exponentially weighted mean of the series.
func CalculateEMA(prices []float64, span int) (float64, error) {
	series, err := CalculateEMASeries(prices, span)
	if err != nil {
		return 0, err
	}
	return series[len(series)-1], nil
}

// ExtractCloses returns the close prices from a bar slice.
func ExtractCloses(bars []model.OHLCV) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}

// ExtractVolumes returns the volumes from a bar slice.
func ExtractVolumes(bars []model.OHLCV) []float64 {
	vols := make([]float64, len(bars))
	for i, b := range bars {
		vols[i] = b.Volume
	}
	return vols
}
