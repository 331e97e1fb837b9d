package signal

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"SignalQuest/internal/domain/models"
	"SignalQuest/internal/domain/repository"
	domsvc "SignalQuest/internal/domain/service"
	"SignalQuest/internal/services/features"
	"SignalQuest/pkg/logger"
	"SignalQuest/pkg/util"
)

const (
	timeHorizonDays = 5
	signalTTL       = 24 * time.Hour
	fallbackTTL     = 12 * time.Hour
)

// strength cutoffs splitting each directional class into strong/plain/weak.
const (
	strongCutoff = 0.75
	plainCutoff  = 0.4
)

// targetFactor is the target-price offset per signal type, scaled by
// strength before application.
var targetFactor = map[models.SignalType]float64{
	models.SignalStrongBuy:  0.10,
	models.SignalBuy:        0.05,
	models.SignalWeakBuy:    0.025,
	models.SignalWeakSell:   -0.025,
	models.SignalSell:       -0.05,
	models.SignalStrongSell: -0.10,
	models.SignalHold:       0,
}

// stopLossRatio is the flat stop-loss multiplier per signal type.
var stopLossRatio = map[models.SignalType]float64{
	models.SignalStrongBuy:  0.95,
	models.SignalBuy:        0.95,
	models.SignalWeakBuy:    0.95,
	models.SignalWeakSell:   1.05,
	models.SignalSell:       1.05,
	models.SignalStrongSell: 1.05,
	models.SignalHold:       0.98,
}

// Generator turns model predictions into trading signals. Generate never
// returns an error; any internal failure degrades to the fallback signal.
type Generator struct {
	metrics repository.Metrics
	log     *logger.Logger
}

func NewGenerator(metrics repository.Metrics, log *logger.Logger) *Generator {
	return &Generator{metrics: metrics, log: log}
}

// Generate builds a signal for symbol from the model's prediction over the
// latest feature vector of the collected series.
func (g *Generator) Generate(symbol string, m domsvc.TradingModel, mf models.MarketFeatures) models.TradingSignal {
	if len(mf.History) == 0 {
		g.log.Warn("no history for signal generation, degrading", logger.String("symbol", symbol))
		return g.Fallback(symbol, mf)
	}
	vector, err := features.Extract(mf.History, len(mf.History)-1)
	if err != nil {
		g.log.Warn("feature extraction failed, degrading",
			logger.String("symbol", symbol), logger.Error(err))
		return g.Fallback(symbol, mf)
	}

	prediction := m.Predict(vector)
	signalType := determineType(prediction)
	strength := adjustStrength(prediction.Strength, vector)
	now := time.Now()

	sig := models.TradingSignal{
		ID:              uuid.NewString(),
		Symbol:          symbol,
		Type:            signalType,
		Strength:        strength,
		Confidence:      adjustConfidence(prediction.Confidence, mf),
		ExpectedReturn:  expectedReturn(signalType, strength),
		ExpectedRisk:    expectedRisk(mf),
		TimeHorizonDays: timeHorizonDays,
		TargetPrice:     targetPrice(mf.CurrentPrice, signalType, strength),
		StopLossPrice:   stopLossPrice(mf.CurrentPrice, signalType),
		GeneratedAt:     now,
		ExpiresAt:       now.Add(signalTTL),
		ModelInfo:       modelInfo(m),
		Reasons:         buildReasons(vector),
		Status:          models.StatusActive,
	}
	g.metrics.RecordSignal(symbol, string(signalType))
	return sig
}

// determineType maps the 3-way class to the 6-level signal scale, splitting
// directional classes by raw model strength.
func determineType(p models.Prediction) models.SignalType {
	switch p.Class {
	case models.LabelBuy:
		switch {
		case p.Strength >= strongCutoff:
			return models.SignalStrongBuy
		case p.Strength >= plainCutoff:
			return models.SignalBuy
		default:
			return models.SignalWeakBuy
		}
	case models.LabelSell:
		switch {
		case p.Strength >= strongCutoff:
			return models.SignalStrongSell
		case p.Strength >= plainCutoff:
			return models.SignalSell
		default:
			return models.SignalWeakSell
		}
	default:
		return models.SignalHold
	}
}

// adjustConfidence starts from the model confidence and applies the market
// context bonuses: calm volatility and RSI extremes raise it, turbulent
// volatility lowers it.
func adjustConfidence(modelConfidence float64, mf models.MarketFeatures) float64 {
	c := modelConfidence
	vol := mf.Volatility.Historical
	if vol < 0.2 {
		c += 0.1
	} else if vol > 0.4 {
		c -= 0.1
	}
	if rsi := mf.Indicators.RSI; rsi > 80 || rsi < 20 {
		c += 0.15
	}
	return util.Round(util.Clamp(c, 0, 1), 4)
}

func adjustStrength(modelStrength float64, v models.FeatureVector) float64 {
	s := modelStrength
	if macd := v[models.FeatMACD]; macd > 0.5 || macd < -0.5 {
		s += 0.2
	}
	momentum := v[models.FeatMomentum]
	if momentum < 0 {
		momentum = -momentum
	}
	bonus := momentum / 100
	if bonus > 0.3 {
		bonus = 0.3
	}
	return util.Round(util.Clamp(s+bonus, 0, 1), 4)
}

func expectedReturn(t models.SignalType, strength float64) float64 {
	base := 0.0
	if t.IsBuySide() {
		base = 0.05
	} else if t.IsSellSide() {
		base = -0.05
	}
	return util.Round(base*strength, 4)
}

// expectedRisk is the historical volatility, defaulting when the collector
// could not measure one.
func expectedRisk(mf models.MarketFeatures) float64 {
	if mf.Volatility.Historical > 0 {
		return util.Round(mf.Volatility.Historical, 4)
	}
	return 0.2
}

func targetPrice(current float64, t models.SignalType, strength float64) float64 {
	return util.Round(current*(1+targetFactor[t]*strength), 2)
}

func stopLossPrice(current float64, t models.SignalType) float64 {
	return util.Round(current*stopLossRatio[t], 2)
}

func modelInfo(m domsvc.TradingModel) models.ModelInfo {
	return models.ModelInfo{
		Name:           "Rule Trading Model",
		Version:        "1.0",
		Accuracy:       m.Accuracy(),
		TrainingWindow: "60 observations",
		FeatureCount:   models.FeatureCount,
		Algorithm:      "rule-based",
	}
}

// Fallback is the minimal signal emitted when generation cannot run: HOLD
// unless the RSI snapshot is at an extreme, low confidence, short expiry.
// Batch callers use it directly to keep one failed symbol from emptying the
// batch.
func (g *Generator) Fallback(symbol string, mf models.MarketFeatures) models.TradingSignal {
	signalType := models.SignalHold
	if rsi := mf.Indicators.RSI; rsi > 0 {
		if rsi < 30 {
			signalType = models.SignalBuy
		} else if rsi > 70 {
			signalType = models.SignalSell
		}
	}
	now := time.Now()
	g.metrics.RecordSignal(symbol, string(signalType))
	return models.TradingSignal{
		ID:              uuid.NewString(),
		Symbol:          symbol,
		Type:            signalType,
		Strength:        0.5,
		Confidence:      0.3,
		ExpectedReturn:  0,
		ExpectedRisk:    0.1,
		TimeHorizonDays: timeHorizonDays,
		GeneratedAt:     now,
		ExpiresAt:       now.Add(fallbackTTL),
		Status:          models.StatusActive,
		Degraded:        true,
	}
}

// reasonDescriptions holds the human-readable text per known feature slot.
var reasonDescriptions = map[int]func(v float64) string{
	models.FeatReturn1:   func(v float64) string { return fmt.Sprintf("1-day return: %.2f%%", v*100) },
	models.FeatReturn5:   func(v float64) string { return fmt.Sprintf("5-day return: %.2f%%", v*100) },
	models.FeatReturn10:  func(v float64) string { return fmt.Sprintf("10-day return: %.2f%%", v*100) },
	models.FeatMARatio5:  func(v float64) string { return fmt.Sprintf("vs 5-day moving average: %.2f%%", (v-1)*100) },
	models.FeatMARatio20: func(v float64) string { return fmt.Sprintf("vs 20-day moving average: %.2f%%", (v-1)*100) },
	models.FeatRSI:       func(v float64) string { return fmt.Sprintf("RSI: %.1f", v) },
	models.FeatMACD:      func(v float64) string { return fmt.Sprintf("MACD: %.4f", v) },
}

var reasonCategories = map[int]models.ReasonCategory{
	models.FeatReturn1:       models.CategoryMomentum,
	models.FeatReturn5:       models.CategoryMomentum,
	models.FeatReturn10:      models.CategoryMomentum,
	models.FeatMARatio5:      models.CategoryTechnical,
	models.FeatMARatio20:     models.CategoryTechnical,
	models.FeatVolatility5:   models.CategoryVolatility,
	models.FeatVolatility20:  models.CategoryVolatility,
	models.FeatVolumeRatio5:  models.CategoryVolume,
	models.FeatVolumeRatio20: models.CategoryVolume,
}

// buildReasons takes the leading feature slots whose magnitude clears the
// threshold, sorts them by importance and keeps the top three.
func buildReasons(v models.FeatureVector) []models.SignalReason {
	var reasons []models.SignalReason
	for i := 0; i < 5; i++ {
		value := v[i]
		abs := value
		if abs < 0 {
			abs = -abs
		}
		if abs <= 0.1 {
			continue
		}
		reasons = append(reasons, models.SignalReason{
			FeatureName: fmt.Sprintf("feature_%d", i),
			Importance:  util.Round(abs, 4),
			Value:       util.Round(value, 4),
			Description: describeFeature(i, value),
			Category:    categorize(i),
		})
	}
	sort.Slice(reasons, func(i, j int) bool {
		return reasons[i].Importance > reasons[j].Importance
	})
	if len(reasons) > 3 {
		reasons = reasons[:3]
	}
	return reasons
}

func describeFeature(index int, value float64) string {
	if describe, ok := reasonDescriptions[index]; ok {
		return describe(value)
	}
	return fmt.Sprintf("feature %d: %.4f", index, value)
}

func categorize(index int) models.ReasonCategory {
	if c, ok := reasonCategories[index]; ok {
		return c
	}
	return models.CategoryTechnical
}

