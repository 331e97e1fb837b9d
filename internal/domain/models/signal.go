package models

import "time"

// SignalType is the directional call attached to a trading signal.
type SignalType string

const (
	SignalStrongBuy  SignalType = "STRONG_BUY"
	SignalBuy        SignalType = "BUY"
	SignalWeakBuy    SignalType = "WEAK_BUY"
	SignalHold       SignalType = "HOLD"
	SignalWeakSell   SignalType = "WEAK_SELL"
	SignalSell       SignalType = "SELL"
	SignalStrongSell SignalType = "STRONG_SELL"
)

// IsBuySide reports whether t is a buy-directional call.
func (t SignalType) IsBuySide() bool {
	return t == SignalStrongBuy || t == SignalBuy || t == SignalWeakBuy
}

// IsSellSide reports whether t is a sell-directional call.
func (t SignalType) IsSellSide() bool {
	return t == SignalStrongSell || t == SignalSell || t == SignalWeakSell
}

type SignalStatus string

const (
	StatusActive    SignalStatus = "ACTIVE"
	StatusTriggered SignalStatus = "TRIGGERED"
	StatusExpired   SignalStatus = "EXPIRED"
	StatusCancelled SignalStatus = "CANCELLED"
)

type ReasonCategory string

const (
	CategoryMomentum   ReasonCategory = "MOMENTUM"
	CategoryTechnical  ReasonCategory = "TECHNICAL"
	CategoryVolatility ReasonCategory = "VOLATILITY"
	CategoryVolume     ReasonCategory = "VOLUME"
)

// SignalReason explains one feature's contribution to a signal.
type SignalReason struct {
	FeatureName string         `json:"feature_name"`
	Importance  float64        `json:"importance"`
	Value       float64        `json:"value"`
	Description string         `json:"description"`
	Category    ReasonCategory `json:"category"`
}

// ModelInfo describes the model a signal came from.
type ModelInfo struct {
	Name           string  `json:"name"`
	Version        string  `json:"version"`
	Accuracy       float64 `json:"accuracy"`
	TrainingWindow string  `json:"training_window"`
	FeatureCount   int     `json:"feature_count"`
	Algorithm      string  `json:"algorithm"`
}

// PerformanceTracking is the tracking snapshot initialized when a signal is
// enhanced with market intelligence.
type PerformanceTracking struct {
	CurrentPrice     float64   `json:"current_price"`
	UnrealizedReturn float64   `json:"unrealized_return"`
	MaxReturn        float64   `json:"max_return"`
	MaxDrawdown      float64   `json:"max_drawdown"`
	LastUpdated      time.Time `json:"last_updated"`
}

// TradingSignal is the pipeline's end product. It is created by the signal
// generator, adjusted in place by the intelligence stage, and read-only
// thereafter until expiry.
type TradingSignal struct {
	ID              string               `json:"id"`
	Symbol          string               `json:"symbol"`
	Type            SignalType           `json:"type"`
	Strength        float64              `json:"strength"`   // [0, 1]
	Confidence      float64              `json:"confidence"` // [0, 1]
	ExpectedReturn  float64              `json:"expected_return"`
	ExpectedRisk    float64              `json:"expected_risk"`
	TimeHorizonDays int                  `json:"time_horizon_days"`
	TargetPrice     float64              `json:"target_price"`
	StopLossPrice   float64              `json:"stop_loss_price"`
	GeneratedAt     time.Time            `json:"generated_at"`
	ExpiresAt       time.Time            `json:"expires_at"`
	ModelInfo       ModelInfo            `json:"model_info"`
	Reasons         []SignalReason       `json:"reasons,omitempty"`
	Condition       *MarketCondition     `json:"condition,omitempty"`
	Tracking        *PerformanceTracking `json:"tracking,omitempty"`
	Status          SignalStatus         `json:"status"`

	// Degraded marks signals produced by the fallback path rather than a
	// trained model, so callers can tell heuristic output from real output
	// without relying on sentinel confidence values.
	Degraded bool `json:"degraded,omitempty"`
}

// IsActive reports whether the signal is still actionable.
func (s *TradingSignal) IsActive(now time.Time) bool {
	return s.Status == StatusActive && (s.ExpiresAt.IsZero() || s.ExpiresAt.After(now))
}

// Score is strength x confidence, used for ranking filtered signal sets.
func (s *TradingSignal) Score() float64 {
	return s.Strength * s.Confidence
}

// RiskRewardRatio returns expected return over expected risk, 0 when risk
// is not positive.
func (s *TradingSignal) RiskRewardRatio() float64 {
	if s.ExpectedRisk <= 0 {
		return 0
	}
	return s.ExpectedReturn / s.ExpectedRisk
}

// PortfolioRecommendation is the per-regime strategy suggestion produced for
// a signal set. Derived, not persisted.
type PortfolioRecommendation struct {
	Regime             MarketRegime `json:"regime"`
	Strategy           string       `json:"strategy"`
	RiskAdjustment     float64      `json:"risk_adjustment"`
	PositionSizing     float64      `json:"position_sizing"`
	MaxPortfolioRisk   float64      `json:"max_portfolio_risk"`
	RebalanceFrequency string       `json:"rebalance_frequency"`
}

// CacheStats is the observability snapshot of the model cache.
type CacheStats struct {
	TotalModels   int       `json:"total_models"`
	ActiveEntries int       `json:"active_entries"`
	HitRate       float64   `json:"hit_rate"`
	LastUpdated   time.Time `json:"last_updated"`
}
