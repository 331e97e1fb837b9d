package service

import (
	"time"

	"SignalQuest/internal/domain/models"
)

// TradingModel produces a 3-way class prediction for a feature vector. The
// production implementation is a deterministic rule-based classifier; any
// real statistical model plugs in behind the same interface.
type TradingModel interface {
	Predict(v models.FeatureVector) models.Prediction
	Symbol() string
	Accuracy() float64
	CreatedAt() time.Time
}
