package calculator

import (
	"errors"
	"math"
)

// CalculateAnnualVolatility computes the standard deviation of daily percent
// returns annualized over 252 trading days. Returned as a fraction (0.25 =
// 25% annualized).
func CalculateAnnualVolatility(prices []float64) (float64, error) {
	returns, err := pctReturns(prices)
	if err != nil {
		return 0, err
	}
	return stdDev(returns) * math.Sqrt(252), nil
}

// CalculateRealizedVolatility computes the standard deviation of daily percent
// returns over the trailing `days` sessions, in percent.
func CalculateRealizedVolatility(prices []float64, days int) (float64, error) {
	if len(prices) < days+1 {
		return 0, errors.New("not enough data for realized volatility")
	}
	returns, err := pctReturns(prices[len(prices)-days-1:])
	if err != nil {
		return 0, err
	}
	return stdDev(returns) * 100, nil
}

// CalculateMomentum returns the percent change over the trailing `sessions`
// closes.
func CalculateMomentum(prices []float64, sessions int) (float64, error) {
	if sessions <= 0 {
		return 0, errors.New("sessions must be positive")
	}
	if len(prices) < sessions+1 {
		return 0, errors.New("not enough data for momentum calculation")
	}
	base := prices[len(prices)-sessions-1]
	if base == 0 {
		return 0, errors.New("zero base price")
	}
	return (prices[len(prices)-1] - base) / base * 100, nil
}

// CalculateVolumeRatio returns the last volume relative to its 10-period
// simple moving average.
func CalculateVolumeRatio(volumes []float64) (float64, error) {
	ma, err := CalculateSMA(volumes, 10)
	if err != nil {
		return 0, err
	}
	if ma == 0 {
		return 0, errors.New("zero average volume")
	}
	return volumes[len(volumes)-1] / ma, nil
}

func pctReturns(prices []float64) ([]float64, error) {
	if len(prices) < 2 {
		return nil, errors.New("not enough data for returns")
	}
	returns := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] == 0 {
			continue
		}
		returns = append(returns, (prices[i]-prices[i-1])/prices[i-1])
	}
	if len(returns) == 0 {
		return nil, errors.New("no usable returns")
	}
	return returns, nil
}

func stdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	return sampleStdDev(values, mean)
}
