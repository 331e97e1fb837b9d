package model

import (
	"fmt"
	"math"
	"time"

	"SignalQuest/internal/domain/models"
	domsvc "SignalQuest/internal/domain/service"
)

// classThreshold separates directional classes from HOLD on the weighted
// rule score.
const classThreshold = 0.2

// defaultAccuracy is assumed until a training replay measures one.
const defaultAccuracy = 0.75

// RuleModel is a deterministic rule-based classifier over the feature
// vector. Each rule contributes weight × rule-score when its condition
// holds; the final score is the weight-normalized sum clamped to [-1, 1].
type RuleModel struct {
	symbol    string
	createdAt time.Time
	accuracy  float64
}

// NewRuleModel builds a model bound to symbol with the default accuracy.
func NewRuleModel(symbol string) *RuleModel {
	return &RuleModel{
		symbol:    symbol,
		createdAt: time.Now(),
		accuracy:  defaultAccuracy,
	}
}

// NewFallbackModel builds the safe-default model used when training fails.
// An empty symbol is normalized rather than rejected.
func NewFallbackModel(symbol string) *RuleModel {
	if symbol == "" {
		symbol = "UNKNOWN"
	}
	return NewRuleModel(symbol)
}

func (m *RuleModel) Symbol() string       { return m.symbol }
func (m *RuleModel) Accuracy() float64    { return m.accuracy }
func (m *RuleModel) CreatedAt() time.Time { return m.createdAt }

// SetAccuracy clamps and records a measured accuracy.
func (m *RuleModel) SetAccuracy(a float64) {
	m.accuracy = math.Max(0, math.Min(1, a))
}

// Predict evaluates the rule set against v. Trend rules on the return and
// moving-average slots carry most of the weight; RSI, Bollinger and momentum
// extremes season the score against overextended moves. Every family votes
// its weight even when neutral, so sparse vectors score near zero instead of
// being amplified by a tiny denominator.
func (m *RuleModel) Predict(v models.FeatureVector) models.Prediction {
	ret5 := v[models.FeatReturn5]
	ret10 := v[models.FeatReturn10]
	maRatio20 := v[models.FeatMARatio20]
	rsi := v[models.FeatRSI]
	macd := v[models.FeatMACD]
	bollinger := v[models.FeatBollinger]
	momentum := v[models.FeatMomentum]
	volumeRatio := v[models.FeatVolumeRatio5]

	var totalScore, totalWeight float64
	var reasons []string

	apply := func(score, weight float64) {
		totalScore += score * weight
		totalWeight += weight
	}

	switch {
	case ret5 > 0.02:
		apply(0.9, 0.30)
		reasons = append(reasons, fmt.Sprintf("sustained 5-period gain (%.1f%%)", ret5*100))
	case ret5 < -0.02:
		apply(-0.9, 0.30)
		reasons = append(reasons, fmt.Sprintf("sustained 5-period loss (%.1f%%)", ret5*100))
	default:
		apply(0, 0.30)
	}

	switch {
	case ret10 > 0.04:
		apply(0.7, 0.15)
	case ret10 < -0.04:
		apply(-0.7, 0.15)
	default:
		apply(0, 0.15)
	}

	switch {
	case maRatio20 > 1.02:
		apply(0.6, 0.15)
		reasons = append(reasons, "price above 20-period average")
	case maRatio20 > 0 && maRatio20 < 0.98:
		apply(-0.6, 0.15)
		reasons = append(reasons, "price below 20-period average")
	default:
		apply(0, 0.15)
	}

	switch {
	case macd > 0.1:
		apply(0.7, 0.20)
		reasons = append(reasons, "MACD bullish")
	case macd < -0.1:
		apply(-0.7, 0.20)
		reasons = append(reasons, "MACD bearish")
	default:
		apply(0, 0.20)
	}

	switch {
	case rsi > 0 && rsi < 30:
		apply(0.8, 0.08)
		reasons = append(reasons, fmt.Sprintf("RSI oversold (%.1f)", rsi))
	case rsi > 75:
		apply(-0.8, 0.08)
		reasons = append(reasons, fmt.Sprintf("RSI overbought (%.1f)", rsi))
	default:
		apply(0, 0.08)
	}

	// Bollinger position is 0 at the lower band, 1 at the upper.
	switch {
	case bollinger > 0 && bollinger < 0.1:
		apply(0.6, 0.08)
		reasons = append(reasons, "price near lower Bollinger band")
	case bollinger > 0.9:
		apply(-0.6, 0.08)
		reasons = append(reasons, "price near upper Bollinger band")
	default:
		apply(0, 0.08)
	}

	switch {
	case momentum > 5:
		apply(0.8, 0.08)
		reasons = append(reasons, fmt.Sprintf("accelerating momentum (%.1f%%)", momentum))
	case momentum < -5:
		apply(-0.8, 0.08)
		reasons = append(reasons, fmt.Sprintf("fading momentum (%.1f%%)", momentum))
	default:
		apply(0, 0.08)
	}

	if volumeRatio > 1.5 {
		if momentum > 0 {
			apply(0.6, 0.10)
			reasons = append(reasons, "volume surge with rising price")
		} else {
			apply(-0.6, 0.10)
			reasons = append(reasons, "volume surge with falling price")
		}
	}

	score := 0.0
	if totalWeight > 0 {
		score = totalScore / totalWeight
	}
	score = math.Max(-1, math.Min(1, score))

	return models.Prediction{
		Class:      classify(score),
		Score:      score,
		Confidence: m.confidence(totalWeight, math.Abs(score)),
		Strength:   math.Abs(score),
		Reasons:    reasons,
	}
}

func classify(score float64) models.Label {
	switch {
	case score >= classThreshold:
		return models.LabelBuy
	case score <= -classThreshold:
		return models.LabelSell
	default:
		return models.LabelHold
	}
}

// confidence grows with the applied rule weight, the score magnitude and the
// model's measured accuracy, capped at 1.
func (m *RuleModel) confidence(totalWeight, absScore float64) float64 {
	c := math.Min(totalWeight/2, 1) + absScore*0.2 + m.accuracy*0.3
	return math.Min(c, 1)
}

var _ domsvc.TradingModel = (*RuleModel)(nil)
