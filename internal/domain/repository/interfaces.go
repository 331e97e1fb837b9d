package repository

import (
	"context"

	"SignalQuest/internal/domain/models"
)

// MarketDataProvider is the external source of market observations. Both
// methods are required inputs to every pipeline stage; failures surface as
// ErrMarketData so callers can distinguish upstream-data failure from
// stage-local degradation.
type MarketDataProvider interface {
	// GetCurrent returns the latest observation for symbol.
	GetCurrent(ctx context.Context, symbol string) (models.MarketObservation, error)
	// GetHistory returns up to count observations, chronologically ordered,
	// most-recent-last.
	GetHistory(ctx context.Context, symbol string, count int) ([]models.MarketObservation, error)
}

// IndicatorProvider computes the technical-indicator snapshot for a series.
type IndicatorProvider interface {
	ComputeIndicators(symbol string, series []models.MarketObservation) models.TechnicalIndicators
}

// Metrics records pipeline observability counters.
type Metrics interface {
	RecordSignal(symbol string, signalType string)
	RecordCacheLookup(hit bool)
	RecordTrainingDuration(seconds float64)
	RecordStageLatency(stage string, seconds float64)
	RecordError(kind string)
}
