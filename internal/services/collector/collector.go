package collector

import (
	"context"
	"math"

	"SignalQuest/internal/domain/models"
	"SignalQuest/internal/domain/repository"
	"SignalQuest/internal/services/features"
	"SignalQuest/pkg/logger"
	"SignalQuest/pkg/util"
)

// DefaultHistoryWindow is the observation count requested from the provider.
const DefaultHistoryWindow = 50

const regimeWindow = 20

// Collector assembles the per-symbol MarketFeatures snapshot consumed by
// every downstream stage. Provider failures are fatal for the run; this is
// the one stage that cannot degrade to defaults.
type Collector struct {
	market     repository.MarketDataProvider
	indicators repository.IndicatorProvider
	log        *logger.Logger
	window     int
}

// Option configures a Collector.
type Option func(*Collector)

// WithHistoryWindow overrides the history size requested from the provider.
func WithHistoryWindow(n int) Option {
	return func(c *Collector) {
		if n > 0 {
			c.window = n
		}
	}
}

func New(market repository.MarketDataProvider, indicators repository.IndicatorProvider, log *logger.Logger, opts ...Option) *Collector {
	c := &Collector{
		market:     market,
		indicators: indicators,
		log:        log,
		window:     DefaultHistoryWindow,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Collect fetches the current observation and history for symbol and derives
// indicators, market condition and volatility analysis from them.
func (c *Collector) Collect(ctx context.Context, symbol string) (models.MarketFeatures, error) {
	current, err := c.market.GetCurrent(ctx, symbol)
	if err != nil {
		return models.MarketFeatures{}, repository.MarketDataError("get current", symbol, err)
	}
	history, err := c.market.GetHistory(ctx, symbol, c.window)
	if err != nil {
		return models.MarketFeatures{}, repository.MarketDataError("get history", symbol, err)
	}

	c.log.Debug("market features collected",
		logger.String("symbol", symbol),
		logger.Int("observations", len(history)))

	return models.MarketFeatures{
		Symbol:       symbol,
		CurrentPrice: current.Price,
		Indicators:   c.indicators.ComputeIndicators(symbol, history),
		Condition:    AnalyzeCondition(history),
		Volatility:   AnalyzeVolatility(history),
		History:      history,
	}, nil
}

// AnalyzeCondition classifies the market condition from the trailing series.
// Volatility thresholds pre-empt the return-based regime checks, so a
// volatile bull run still reads HIGH_VOLATILITY.
func AnalyzeCondition(series []models.MarketObservation) models.MarketCondition {
	return models.MarketCondition{
		Regime:          classifyRegime(series),
		Volatility:      volatilityLevel(trailingVolatility(series)),
		Liquidity:       models.LiquidityNormal,
		Sentiment:       Sentiment(series),
		VIXLevel:        20.0,
		SectorStrengths: map[string]float64{},
	}
}

// AnalyzeVolatility summarizes the trailing 20-period volatility. Trend and
// clustering stay at their neutral values; the series is too short to
// estimate either reliably.
func AnalyzeVolatility(series []models.MarketObservation) models.VolatilityAnalysis {
	if len(series) == 0 {
		return models.VolatilityAnalysis{
			Historical: defaultVolatility,
			Realized:   defaultVolatility,
			Clustering: 0.5,
			Regime:     models.VolRegimeModerate,
			Trend:      models.VolTrendStable,
		}
	}
	vol := trailingVolatility(series)
	return models.VolatilityAnalysis{
		Historical: vol,
		Realized:   vol,
		Clustering: 0.5,
		Regime:     volatilityRegime(vol),
		Trend:      models.VolTrendStable,
	}
}

// Sentiment maps the 5-period return onto [-1, 1] via tanh, rounded to two
// decimals. Series shorter than 10 observations read neutral.
func Sentiment(series []models.MarketObservation) float64 {
	if len(series) < 10 {
		return 0
	}
	ret := features.Return(series, len(series)-1, 5)
	return util.Round(math.Tanh(ret*10), 2)
}

// defaultVolatility is assumed when the series is too short to measure.
const defaultVolatility = 0.2

func trailingVolatility(series []models.MarketObservation) float64 {
	index := len(series) - 1
	if index < regimeWindow {
		return defaultVolatility
	}
	return features.Volatility(series, index, regimeWindow)
}

func classifyRegime(series []models.MarketObservation) models.MarketRegime {
	if len(series) < regimeWindow {
		return models.RegimeSideways
	}
	vol := trailingVolatility(series)
	ret := features.Return(series, len(series)-1, regimeWindow)
	switch {
	case vol > 0.3:
		return models.RegimeHighVolatility
	case vol < 0.1:
		return models.RegimeLowVolatility
	case ret > 0.1:
		return models.RegimeBull
	case ret < -0.1:
		return models.RegimeBear
	default:
		return models.RegimeSideways
	}
}

func volatilityLevel(vol float64) models.VolatilityLevel {
	switch {
	case vol < 0.1:
		return models.VolLevelVeryLow
	case vol < 0.2:
		return models.VolLevelLow
	case vol < 0.3:
		return models.VolLevelMedium
	case vol < 0.4:
		return models.VolLevelHigh
	default:
		return models.VolLevelVeryHigh
	}
}

func volatilityRegime(vol float64) models.VolatilityRegime {
	switch {
	case vol > 0.3:
		return models.VolRegimeHigh
	case vol < 0.1:
		return models.VolRegimeLow
	default:
		return models.VolRegimeModerate
	}
}
