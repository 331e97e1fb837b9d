package models

import "time"

// MarketObservation is a single point-in-time record for a symbol as served
// by the market data provider. Series are chronological, most-recent-last.
type MarketObservation struct {
	Timestamp time.Time `json:"timestamp"`
	Price     float64   `json:"price"`
	Volume    float64   `json:"volume"`
	Bid       float64   `json:"bid,omitempty"`
	Ask       float64   `json:"ask,omitempty"`
}

// TechnicalIndicators carries the indicator snapshot computed over a series.
type TechnicalIndicators struct {
	RSI            float64 `json:"rsi"`
	MACDLine       float64 `json:"macd_line"`
	MACDSignal     float64 `json:"macd_signal"`
	SMA20          float64 `json:"sma20"`
	BollingerUpper float64 `json:"bollinger_upper"`
	BollingerLower float64 `json:"bollinger_lower"`
}

// MarketFeatures is the collector's output and the input contract for every
// downstream pipeline stage.
type MarketFeatures struct {
	Symbol       string              `json:"symbol"`
	CurrentPrice float64             `json:"current_price"`
	Indicators   TechnicalIndicators `json:"indicators"`
	Condition    MarketCondition     `json:"condition"`
	Volatility   VolatilityAnalysis  `json:"volatility"`
	History      []MarketObservation `json:"-"`
}
