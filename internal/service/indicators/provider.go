package indicators

import (
	"math"

	"SignalQuest/internal/domain/models"
	"SignalQuest/internal/domain/repository"
	"SignalQuest/internal/services/features"
)

const (
	rsiPeriod        = 14
	smaPeriod        = 20
	macdSignalPeriod = 9
	bollingerStdDev  = 2.0
)

// Provider computes the indicator snapshot locally from a price series.
type Provider struct{}

// New creates an indicator provider.
func New() *Provider { return &Provider{} }

// ComputeIndicators returns the snapshot for the latest observation in series.
func (p *Provider) ComputeIndicators(_ string, series []models.MarketObservation) models.TechnicalIndicators {
	if len(series) == 0 {
		return models.TechnicalIndicators{RSI: 50}
	}

	last := len(series) - 1
	macdLine := features.MACD(series, last)

	ind := models.TechnicalIndicators{
		RSI:        features.RSI(series, last, rsiPeriod),
		MACDLine:   macdLine,
		MACDSignal: macdSignal(series, last),
		SMA20:      sma(series, last, smaPeriod),
	}

	mean, dev := bollingerBands(series, last, smaPeriod)
	ind.BollingerUpper = mean + bollingerStdDev*dev
	ind.BollingerLower = mean - bollingerStdDev*dev

	return ind
}

func sma(series []models.MarketObservation, index, period int) float64 {
	if index+1 < period {
		period = index + 1
	}
	if period <= 0 {
		return 0
	}

	sum := 0.0
	for i := index - period + 1; i <= index; i++ {
		sum += series[i].Price
	}
	return sum / float64(period)
}

// macdSignal approximates the signal line as an EMA of the MACD value over
// the trailing window.
func macdSignal(series []models.MarketObservation, index int) float64 {
	start := index - macdSignalPeriod + 1
	if start < 0 {
		start = 0
	}

	multiplier := 2.0 / float64(macdSignalPeriod+1)
	signal := features.MACD(series, start)
	for i := start + 1; i <= index; i++ {
		signal = (features.MACD(series, i)-signal)*multiplier + signal
	}
	return signal
}

func bollingerBands(series []models.MarketObservation, index, period int) (mean, stddev float64) {
	if index+1 < period {
		period = index + 1
	}
	if period <= 0 {
		return 0, 0
	}

	sum := 0.0
	for i := index - period + 1; i <= index; i++ {
		sum += series[i].Price
	}
	mean = sum / float64(period)

	variance := 0.0
	for i := index - period + 1; i <= index; i++ {
		d := series[i].Price - mean
		variance += d * d
	}
	stddev = math.Sqrt(variance / float64(period))
	return mean, stddev
}

var _ repository.IndicatorProvider = (*Provider)(nil)
