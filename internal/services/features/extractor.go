package features

import (
	"fmt"
	"math"
	"time"

	"SignalQuest/internal/domain/models"
)

// LabelHorizon is the forward-looking step count used when labeling
// training samples.
const LabelHorizon = 5

// labelThreshold is the forward-return cutoff (+/-) separating BUY/SELL
// from HOLD.
const labelThreshold = 0.02

// Return computes the period-return at index: (p[i] - p[i-period]) / p[i-period].
// Returns 0 when there is insufficient history or the past price is zero.
func Return(series []models.MarketObservation, index, period int) float64 {
	if index < period || index >= len(series) {
		return 0
	}
	past := series[index-period].Price
	if past == 0 {
		return 0
	}
	return (series[index].Price - past) / past
}

// MovingAverageRatio is current price over the trailing period mean ending
// at index. Defaults to 1 with insufficient history.
func MovingAverageRatio(series []models.MarketObservation, index, period int) float64 {
	if index < period || index >= len(series) {
		return 1
	}
	sum := 0.0
	for i := 0; i < period; i++ {
		sum += series[index-i].Price
	}
	ma := sum / float64(period)
	if ma == 0 {
		return 1
	}
	return series[index].Price / ma
}

// Volatility is the standard deviation of the period-1 daily returns over
// the trailing window ending at index. Returns 0 with insufficient history.
func Volatility(series []models.MarketObservation, index, period int) float64 {
	if index < period || index >= len(series) {
		return 0
	}
	rets := make([]float64, 0, period-1)
	for i := 1; i < period; i++ {
		if index-i >= 0 {
			rets = append(rets, Return(series, index-i+1, 1))
		}
	}
	if len(rets) == 0 {
		return 0
	}
	mean := 0.0
	for _, r := range rets {
		mean += r
	}
	mean /= float64(len(rets))
	variance := 0.0
	for _, r := range rets {
		d := r - mean
		variance += d * d
	}
	variance /= float64(len(rets))
	return math.Sqrt(variance)
}

// VolumeRatio is current volume over the trailing period mean. Defaults to 1.
func VolumeRatio(series []models.MarketObservation, index, period int) float64 {
	if index < period || index >= len(series) {
		return 1
	}
	avg := 0.0
	n := 0
	for i := 0; i < period && index-i >= 0; i++ {
		avg += series[index-i].Volume
		n++
	}
	avg /= float64(n)
	if avg <= 0 {
		return 1
	}
	return series[index].Volume / avg
}

// RSI computes the relative strength index over the trailing period using
// average gain/loss. Defaults to 50 with insufficient history and to 100
// when average loss is zero.
func RSI(series []models.MarketObservation, index, period int) float64 {
	if index < period+1 || index >= len(series) {
		return 50
	}
	gains, losses := 0.0, 0.0
	for i := 1; i <= period && index-i >= 0; i++ {
		change := series[index-i+1].Price - series[index-i].Price
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}
	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// EMA computes the exponential moving average ending at index. With
// insufficient history it falls back to the price at index.
func EMA(series []models.MarketObservation, index, period int) float64 {
	if index >= len(series) {
		return 0
	}
	if index < period-1 {
		return series[index].Price
	}
	multiplier := 2.0 / float64(period+1)
	ema := series[index-period+1].Price
	for i := index - period + 2; i <= index; i++ {
		ema = series[i].Price*multiplier + ema*(1-multiplier)
	}
	return ema
}

// MACD is EMA(12) minus EMA(26), 0 before index 26.
func MACD(series []models.MarketObservation, index int) float64 {
	if index < 26 {
		return 0
	}
	return EMA(series, index, 12) - EMA(series, index, 26)
}

// BollingerPosition places the price at index inside its 20-period +/-2
// sigma bands: 0 at the lower band, 1 at the upper. 0.5 when the bands
// degenerate or history is short.
func BollingerPosition(series []models.MarketObservation, index int) float64 {
	const period = 20
	if index < period || index >= len(series) {
		return 0.5
	}
	sma := 0.0
	for i := 0; i < period; i++ {
		sma += series[index-i].Price
	}
	sma /= period
	variance := 0.0
	for i := 0; i < period; i++ {
		d := series[index-i].Price - sma
		variance += d * d
	}
	stdDev := math.Sqrt(variance / period)
	upper := sma + 2*stdDev
	lower := sma - 2*stdDev
	if upper == lower {
		return 0.5
	}
	return (series[index].Price - lower) / (upper - lower)
}

func spread(obs models.MarketObservation) float64 {
	if obs.Bid > 0 && obs.Ask > obs.Bid && obs.Price > 0 {
		return (obs.Ask - obs.Bid) / obs.Price
	}
	return 0.01
}

func priceImpact(series []models.MarketObservation, index int) float64 {
	if index < 1 || index >= len(series) {
		return 0
	}
	prev := series[index-1].Price
	vol := series[index].Volume
	if prev == 0 || vol == 0 {
		return 0
	}
	change := math.Abs(series[index].Price-prev) / prev
	return change / math.Log(1+vol)
}

// Extract builds the fixed-width feature vector for the observation at
// index. It is a pure function of (series, index). On invalid input it
// returns the all-zero vector and an error; callers degrade rather than
// fail.
func Extract(series []models.MarketObservation, index int) (models.FeatureVector, error) {
	var v models.FeatureVector
	if index < 0 || index >= len(series) {
		return v, fmt.Errorf("extract features: index %d out of range (len %d)", index, len(series))
	}
	current := series[index]

	v[models.FeatReturn1] = Return(series, index, 1)
	v[models.FeatReturn5] = Return(series, index, 5)
	v[models.FeatReturn10] = Return(series, index, 10)

	v[models.FeatMARatio5] = MovingAverageRatio(series, index, 5)
	v[models.FeatMARatio20] = MovingAverageRatio(series, index, 20)

	v[models.FeatVolatility5] = Volatility(series, index, 5)
	v[models.FeatVolatility20] = Volatility(series, index, 20)

	v[models.FeatVolumeRatio5] = VolumeRatio(series, index, 5)
	v[models.FeatVolumeRatio20] = VolumeRatio(series, index, 20)

	v[models.FeatRSI] = RSI(series, index, 14)
	v[models.FeatMACD] = MACD(series, index)
	v[models.FeatBollinger] = BollingerPosition(series, index)

	v[models.FeatSpread] = spread(current)
	v[models.FeatPriceImpact] = priceImpact(series, index)

	v[models.FeatHourOfDay] = float64(current.Timestamp.Hour())
	v[models.FeatDayOfWeek] = float64(isoWeekday(current.Timestamp.Weekday()))

	v[models.FeatRelPerformance] = relativePerformance(series, index)
	v[models.FeatMomentum] = MomentumScore(series, index)

	// Remaining slots stay zero-filled. Guard against non-finite values so
	// the vector-shape contract holds for any input series.
	for i := range v {
		if math.IsNaN(v[i]) || math.IsInf(v[i], 0) {
			v[i] = 0
		}
	}
	return v, nil
}

// MomentumScore is the 5-period return minus the 20-period return, in
// percent. 0 before index 10.
func MomentumScore(series []models.MarketObservation, index int) float64 {
	if index < 10 {
		return 0
	}
	return (Return(series, index, 5) - Return(series, index, 20)) * 100
}

func isoWeekday(d time.Weekday) int {
	if d == time.Sunday {
		return 7
	}
	return int(d)
}

func relativePerformance(series []models.MarketObservation, index int) float64 {
	if index < 20 {
		return 0
	}
	return Return(series, index, 20) * 100
}

// GenerateLabel classifies the observation at index by its forward
// LabelHorizon-step return: above +2% BUY, below -2% SELL, otherwise HOLD.
// Insufficient future data defaults to HOLD.
func GenerateLabel(series []models.MarketObservation, index int) models.Label {
	if index < 0 || index+LabelHorizon >= len(series) {
		return models.LabelHold
	}
	current := series[index].Price
	if current <= 0 {
		return models.LabelHold
	}
	future := series[index+LabelHorizon].Price
	futureReturn := (future - current) / current
	switch {
	case futureReturn > labelThreshold:
		return models.LabelBuy
	case futureReturn < -labelThreshold:
		return models.LabelSell
	default:
		return models.LabelHold
	}
}
