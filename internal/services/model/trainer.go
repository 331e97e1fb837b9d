package model

import (
	"context"
	"time"

	"SignalQuest/internal/domain/models"
	"SignalQuest/internal/domain/repository"
	"SignalQuest/internal/services/features"
	"SignalQuest/pkg/logger"
)

const (
	// DefaultTrainingWindow is the observation count fetched for training.
	DefaultTrainingWindow = 60

	// The first observations lack indicator history and the last ones lack
	// forward returns for labeling, so both edges are skipped.
	trainingSkipHead = 10
	trainingSkipTail = 5

	// accuracyReplayLimit bounds the self-consistency replay.
	accuracyReplayLimit = 100
)

// Trainer assembles training samples from provider history and builds
// symbol-bound rule models. The accuracy estimate is a replay of the model
// over its own training prefix, a self-consistency check rather than a
// generalization measure.
type Trainer struct {
	market  repository.MarketDataProvider
	metrics repository.Metrics
	log     *logger.Logger
	window  int
	timeout time.Duration
}

// TrainerOption configures a Trainer.
type TrainerOption func(*Trainer)

// WithTrainingWindow overrides the history size used for training.
func WithTrainingWindow(n int) TrainerOption {
	return func(t *Trainer) {
		if n > 0 {
			t.window = n
		}
	}
}

// WithTrainingTimeout bounds a single training run. Exceeding it is a
// training failure.
func WithTrainingTimeout(d time.Duration) TrainerOption {
	return func(t *Trainer) {
		if d > 0 {
			t.timeout = d
		}
	}
}

func NewTrainer(market repository.MarketDataProvider, metrics repository.Metrics, log *logger.Logger, opts ...TrainerOption) *Trainer {
	t := &Trainer{
		market:  market,
		metrics: metrics,
		log:     log,
		window:  DefaultTrainingWindow,
		timeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Train fetches history for symbol, derives labeled samples and returns a
// rule model with a measured accuracy. Provider failure or timeout returns
// an error; the cache layer substitutes the fallback model.
func (t *Trainer) Train(ctx context.Context, symbol string) (*RuleModel, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	started := time.Now()

	history, err := t.market.GetHistory(ctx, symbol, t.window)
	if err != nil {
		return nil, repository.MarketDataError("training history", symbol, err)
	}

	samples := t.buildSamples(ctx, symbol, history)

	m := NewRuleModel(symbol)
	m.SetAccuracy(replayAccuracy(m, samples))

	elapsed := time.Since(started)
	t.metrics.RecordTrainingDuration(elapsed.Seconds())
	t.log.Info("model trained",
		logger.String("symbol", symbol),
		logger.Int("samples", len(samples)),
		logger.Duration("elapsed", elapsed))
	return m, ctx.Err()
}

func (t *Trainer) buildSamples(ctx context.Context, symbol string, history []models.MarketObservation) []models.TrainingSample {
	samples := make([]models.TrainingSample, 0, t.window)
	for i := trainingSkipHead; i < len(history)-trainingSkipTail; i++ {
		if ctx.Err() != nil {
			return samples
		}
		vector, err := features.Extract(history, i)
		if err != nil {
			t.log.Warn("feature extraction skipped",
				logger.String("symbol", symbol),
				logger.Int("index", i),
				logger.Error(err))
			continue
		}
		samples = append(samples, models.TrainingSample{
			Features: vector,
			Label:    features.GenerateLabel(history, i),
		})
	}
	return samples
}

// replayAccuracy replays predictions over up to accuracyReplayLimit samples
// and compares classes to stored labels. Empty sample sets read 0.5.
func replayAccuracy(m *RuleModel, samples []models.TrainingSample) float64 {
	if len(samples) == 0 {
		return 0.5
	}
	total := len(samples)
	if total > accuracyReplayLimit {
		total = accuracyReplayLimit
	}
	correct := 0
	for i := 0; i < total; i++ {
		if m.Predict(samples[i].Features).Class == samples[i].Label {
			correct++
		}
	}
	return float64(correct) / float64(total)
}
