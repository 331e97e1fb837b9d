package intelligence

import (
	"time"

	"SignalQuest/internal/domain/models"
	"SignalQuest/pkg/logger"
	"SignalQuest/pkg/util"
)

// Stress contributions by regime.
var regimeStress = map[models.MarketRegime]float64{
	models.RegimeHighVolatility: 0.3,
	models.RegimeBear:           0.25,
	models.RegimeSideways:       0.1,
	models.RegimeBull:           0.05,
	models.RegimeLowVolatility:  0,
}

// Strength multipliers applied to BUY/STRONG_BUY signals per regime.
var regimeStrengthFactor = map[models.MarketRegime]float64{
	models.RegimeBull:           1.2,
	models.RegimeBear:           0.8,
	models.RegimeHighVolatility: 0.9,
}

// Per-regime portfolio recommendation table.
var recommendations = map[models.MarketRegime]models.PortfolioRecommendation{
	models.RegimeBull: {
		Regime:             models.RegimeBull,
		Strategy:           "aggressive growth, overweight growth names",
		RiskAdjustment:     1.3,
		PositionSizing:     0.8,
		MaxPortfolioRisk:   0.25,
		RebalanceFrequency: "bi-weekly",
	},
	models.RegimeBear: {
		Regime:             models.RegimeBear,
		Strategy:           "defensive, raise cash and prefer safe assets",
		RiskAdjustment:     0.6,
		PositionSizing:     0.4,
		MaxPortfolioRisk:   0.12,
		RebalanceFrequency: "bi-weekly",
	},
	models.RegimeSideways: {
		Regime:             models.RegimeSideways,
		Strategy:           "neutral, keep a balanced portfolio",
		RiskAdjustment:     1.0,
		PositionSizing:     0.6,
		MaxPortfolioRisk:   0.20,
		RebalanceFrequency: "monthly",
	},
	models.RegimeHighVolatility: {
		Regime:             models.RegimeHighVolatility,
		Strategy:           "risk management, reduce positions and hedge",
		RiskAdjustment:     0.6,
		PositionSizing:     0.3,
		MaxPortfolioRisk:   0.15,
		RebalanceFrequency: "weekly",
	},
	models.RegimeLowVolatility: {
		Regime:             models.RegimeLowVolatility,
		Strategy:           "opportunistic, expand selective exposure",
		RiskAdjustment:     1.1,
		PositionSizing:     0.7,
		MaxPortfolioRisk:   0.22,
		RebalanceFrequency: "monthly",
	},
}

// Adjuster reconciles freshly generated signals with the broader market
// context: stress scoring, regime adjustments, validity filtering and
// portfolio recommendations.
type Adjuster struct {
	log *logger.Logger
}

func NewAdjuster(log *logger.Logger) *Adjuster {
	return &Adjuster{log: log}
}

// Enhance adjusts the signal in place with market context: attaches the
// condition, rescales confidence by stress and strength by regime, and
// seeds the performance-tracking snapshot.
func (a *Adjuster) Enhance(sig *models.TradingSignal, mf models.MarketFeatures) {
	condition := mf.Condition
	sig.Condition = &condition

	stress := a.AssessStress(mf)
	if stress > 0.7 {
		sig.Confidence = util.Round(sig.Confidence*0.8, 4)
	} else if stress < 0.3 {
		sig.Confidence = util.Round(util.Clamp(sig.Confidence*1.1, 0, 1), 4)
	}

	if factor, ok := regimeStrengthFactor[condition.Regime]; ok {
		if sig.Type == models.SignalBuy || sig.Type == models.SignalStrongBuy {
			sig.Strength = util.Round(util.Clamp(sig.Strength*factor, 0, 1), 4)
		}
	}

	sig.Tracking = &models.PerformanceTracking{
		CurrentPrice: mf.CurrentPrice,
		LastUpdated:  time.Now(),
	}

	a.log.Debug("signal enhanced",
		logger.String("signal_id", sig.ID),
		logger.String("regime", string(condition.Regime)),
		logger.Float64("stress", stress))
}

// AssessStress composes the [0,1] market stress score from volatility,
// regime and sentiment extremity.
func (a *Adjuster) AssessStress(mf models.MarketFeatures) float64 {
	stress := 0.0

	if v := mf.Volatility.Historical; v > 0 {
		contribution := v * 2
		if contribution > 0.4 {
			contribution = 0.4
		}
		stress += contribution
	}

	stress += regimeStress[mf.Condition.Regime]

	sentiment := mf.Condition.Sentiment
	if sentiment < 0 {
		sentiment = -sentiment
	}
	sentimentStress := sentiment * 0.3
	if sentimentStress > 0.2 {
		sentimentStress = 0.2
	}
	stress += sentimentStress

	return util.Clamp(stress, 0, 1)
}

// IsValidForRegime applies the regime validity filter. Unknown regimes
// default to valid.
func (a *Adjuster) IsValidForRegime(sig *models.TradingSignal, regime models.MarketRegime) bool {
	switch regime {
	case models.RegimeBull:
		return sig.Type != models.SignalStrongSell
	case models.RegimeBear:
		return sig.Type != models.SignalStrongBuy
	case models.RegimeSideways:
		return sig.Type == models.SignalHold || sig.Confidence >= 0.8
	case models.RegimeHighVolatility:
		return sig.Confidence >= 0.7
	case models.RegimeLowVolatility:
		return true
	default:
		return true
	}
}

// Recommend returns the per-regime portfolio recommendation for the current
// condition. The signal set is accepted for future refinement; today the
// table depends on regime alone.
func (a *Adjuster) Recommend(signals []models.TradingSignal, condition models.MarketCondition) models.PortfolioRecommendation {
	if r, ok := recommendations[condition.Regime]; ok {
		return r
	}
	r := recommendations[models.RegimeSideways]
	r.PositionSizing = 0.5
	return r
}
