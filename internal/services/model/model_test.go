package model

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SignalQuest/internal/domain/models"
	"SignalQuest/pkg/logger"
)

type stubMarket struct {
	history []models.MarketObservation
	err     error
	calls   int
}

func (s *stubMarket) GetCurrent(ctx context.Context, symbol string) (models.MarketObservation, error) {
	if s.err != nil {
		return models.MarketObservation{}, s.err
	}
	return s.history[len(s.history)-1], nil
}

func (s *stubMarket) GetHistory(ctx context.Context, symbol string, count int) ([]models.MarketObservation, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.history, nil
}

type nopMetrics struct{}

func (nopMetrics) RecordSignal(string, string)        {}
func (nopMetrics) RecordCacheLookup(bool)             {}
func (nopMetrics) RecordTrainingDuration(float64)     {}
func (nopMetrics) RecordStageLatency(string, float64) {}
func (nopMetrics) RecordError(string)                 {}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	require.NoError(t, err)
	return log
}

func driftHistory(n int, dailyDrift float64) []models.MarketObservation {
	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	obs := make([]models.MarketObservation, n)
	p := 100.0
	for i := range obs {
		obs[i] = models.MarketObservation{Timestamp: base.AddDate(0, 0, i), Price: p, Volume: 1000}
		p *= 1 + dailyDrift
	}
	return obs
}

func bullishVector() models.FeatureVector {
	var v models.FeatureVector
	v[models.FeatRSI] = 25
	v[models.FeatMACD] = 1.2
	v[models.FeatBollinger] = 0.05
	v[models.FeatMomentum] = 6
	v[models.FeatVolumeRatio5] = 2
	return v
}

func bearishVector() models.FeatureVector {
	var v models.FeatureVector
	v[models.FeatRSI] = 78
	v[models.FeatMACD] = -1.2
	v[models.FeatBollinger] = 0.95
	v[models.FeatMomentum] = -6
	v[models.FeatVolumeRatio5] = 2
	return v
}

func TestRuleModelPredictBuy(t *testing.T) {
	m := NewRuleModel("AAPL")
	p := m.Predict(bullishVector())
	assert.Equal(t, models.LabelBuy, p.Class)
	assert.Greater(t, p.Score, 0.0)
	assert.Greater(t, p.Strength, 0.0)
	assert.LessOrEqual(t, p.Confidence, 1.0)
	assert.Greater(t, p.Confidence, 0.0)
	assert.NotEmpty(t, p.Reasons)
}

func TestRuleModelPredictSell(t *testing.T) {
	m := NewRuleModel("AAPL")
	p := m.Predict(bearishVector())
	assert.Equal(t, models.LabelSell, p.Class)
	assert.Less(t, p.Score, 0.0)
	assert.Equal(t, -p.Score, p.Strength)
}

func TestRuleModelPredictHold(t *testing.T) {
	var v models.FeatureVector
	v[models.FeatRSI] = 45
	v[models.FeatMACD] = 0.5
	v[models.FeatBollinger] = 0.5
	v[models.FeatMomentum] = -6
	v[models.FeatVolumeRatio5] = 1
	p := NewRuleModel("AAPL").Predict(v)
	assert.Equal(t, models.LabelHold, p.Class)
}

func TestRuleModelTrendFollowsSteadyDrift(t *testing.T) {
	// Slot values as extracted from a +0.5%/day series: trend slots strongly
	// positive while RSI, Bollinger and differential momentum lean against.
	var v models.FeatureVector
	v[models.FeatReturn5] = 0.025
	v[models.FeatReturn10] = 0.051
	v[models.FeatMARatio20] = 1.053
	v[models.FeatRSI] = 100
	v[models.FeatMACD] = 3
	v[models.FeatBollinger] = 0.92
	v[models.FeatMomentum] = -7.9
	v[models.FeatVolumeRatio5] = 1

	p := NewRuleModel("XYZ").Predict(v)
	assert.Equal(t, models.LabelBuy, p.Class)
	assert.GreaterOrEqual(t, p.Strength, 0.4)
}

func TestRuleModelZeroVectorHolds(t *testing.T) {
	p := NewRuleModel("AAPL").Predict(models.FeatureVector{})
	assert.Equal(t, models.LabelHold, p.Class)
	assert.Equal(t, 0.0, p.Score)
}

func TestFallbackModelNormalizesSymbol(t *testing.T) {
	assert.Equal(t, "UNKNOWN", NewFallbackModel("").Symbol())
	assert.Equal(t, "TSLA", NewFallbackModel("TSLA").Symbol())
}

func TestSetAccuracyClamps(t *testing.T) {
	m := NewRuleModel("AAPL")
	m.SetAccuracy(1.7)
	assert.Equal(t, 1.0, m.Accuracy())
	m.SetAccuracy(-0.2)
	assert.Equal(t, 0.0, m.Accuracy())
}

func TestTrainerBuildsModel(t *testing.T) {
	market := &stubMarket{history: driftHistory(60, 0.004)}
	tr := NewTrainer(market, nopMetrics{}, testLogger(t))
	m, err := tr.Train(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", m.Symbol())
	assert.GreaterOrEqual(t, m.Accuracy(), 0.0)
	assert.LessOrEqual(t, m.Accuracy(), 1.0)
	assert.False(t, m.CreatedAt().IsZero())
}

func TestTrainerProviderFailure(t *testing.T) {
	market := &stubMarket{err: errors.New("unreachable")}
	tr := NewTrainer(market, nopMetrics{}, testLogger(t))
	_, err := tr.Train(context.Background(), "AAPL")
	require.Error(t, err)
}

func TestReplayAccuracyEmptySamples(t *testing.T) {
	assert.Equal(t, 0.5, replayAccuracy(NewRuleModel("AAPL"), nil))
}

func TestCacheHitAfterTraining(t *testing.T) {
	market := &stubMarket{history: driftHistory(60, 0.004)}
	c := NewCache(NewTrainer(market, nopMetrics{}, testLogger(t)), nopMetrics{}, testLogger(t))

	first := c.GetOrTrain(context.Background(), "AAPL")
	second := c.GetOrTrain(context.Background(), "AAPL")
	assert.Same(t, first, second)
	assert.Equal(t, 1, market.calls, "second lookup must not retrain")

	stats := c.Stats()
	assert.Equal(t, 1, stats.TotalModels)
	assert.Equal(t, 1, stats.ActiveEntries)
	assert.Equal(t, 0.5, stats.HitRate)
	assert.False(t, stats.LastUpdated.IsZero())
}

func TestCacheFallbackOnTrainingFailure(t *testing.T) {
	market := &stubMarket{err: errors.New("unreachable")}
	c := NewCache(NewTrainer(market, nopMetrics{}, testLogger(t)), nopMetrics{}, testLogger(t))

	m := c.GetOrTrain(context.Background(), "AAPL")
	require.NotNil(t, m)
	assert.Equal(t, "AAPL", m.Symbol())

	// The fallback entry is cached too.
	assert.Same(t, m, c.GetOrTrain(context.Background(), "AAPL"))
	assert.Equal(t, 1, market.calls)
}

func TestCacheSweepRemovesExpired(t *testing.T) {
	market := &stubMarket{history: driftHistory(60, 0.004)}
	c := NewCache(NewTrainer(market, nopMetrics{}, testLogger(t)), nopMetrics{}, testLogger(t),
		WithStaleness(time.Millisecond))

	c.GetOrTrain(context.Background(), "AAPL")
	time.Sleep(5 * time.Millisecond)
	assert.Equal(t, 1, c.Sweep())
	assert.Equal(t, 0, c.Stats().TotalModels)

	// A swept symbol retrains on the next lookup.
	c.GetOrTrain(context.Background(), "AAPL")
	assert.Equal(t, 2, market.calls)
}
