package model

// IndicatorSet holds all computed technical indicators for one ticker.
type IndicatorSet struct {
	Symbol       string
	CurrentPrice float64
	MA5          float64
	MA10         float64
	MA20         float64
	RSI          float64
	MACD         float64
	MACDSignal   float64
	BollUpper    float64
	BollLower    float64
	VolumeRatio  float64
	ATR          float64
	Momentum     float64 // pct change over trailing 5 sessions
	AnnualVol    float64 // stdev of daily returns, annualized
}
