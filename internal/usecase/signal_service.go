package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"SignalQuest/internal/domain/models"
	"SignalQuest/internal/domain/repository"
	domsvc "SignalQuest/internal/domain/service"
	"SignalQuest/internal/services/collector"
	"SignalQuest/internal/services/intelligence"
	signalgen "SignalQuest/internal/services/signal"
	"SignalQuest/pkg/logger"
)

// confidenceThreshold is the minimum confidence a signal needs to survive
// market-condition filtering.
const confidenceThreshold = 0.6

// ModelCache is the stateful model store the pipeline depends on.
type ModelCache interface {
	GetOrTrain(ctx context.Context, symbol string) domsvc.TradingModel
	Sweep() int
	Stats() models.CacheStats
}

// SignalService runs the five-stage pipeline end to end and exposes the
// operations the adapter layer serves.
type SignalService struct {
	collector *collector.Collector
	cache     ModelCache
	generator *signalgen.Generator
	adjuster  *intelligence.Adjuster
	metrics   repository.Metrics
	log       *logger.Logger
}

func NewSignalService(
	c *collector.Collector,
	cache ModelCache,
	g *signalgen.Generator,
	a *intelligence.Adjuster,
	metrics repository.Metrics,
	log *logger.Logger,
) *SignalService {
	return &SignalService{
		collector: c,
		cache:     cache,
		generator: g,
		adjuster:  a,
		metrics:   metrics,
		log:       log,
	}
}

// GenerateSignal runs the full pipeline for one symbol. Upstream-data
// failure is the only error it returns; every other stage degrades
// internally.
func (s *SignalService) GenerateSignal(ctx context.Context, symbol string) (models.TradingSignal, error) {
	if symbol == "" {
		return models.TradingSignal{}, fmt.Errorf("symbol required")
	}

	started := time.Now()
	mf, err := s.collector.Collect(ctx, symbol)
	if err != nil {
		s.metrics.RecordError("collect")
		return models.TradingSignal{}, fmt.Errorf("collect features: %w", err)
	}
	s.metrics.RecordStageLatency("collect", time.Since(started).Seconds())

	model := s.cache.GetOrTrain(ctx, symbol)

	genStarted := time.Now()
	sig := s.generator.Generate(symbol, model, mf)
	s.metrics.RecordStageLatency("generate", time.Since(genStarted).Seconds())

	s.adjuster.Enhance(&sig, mf)

	s.log.Info("signal generated",
		logger.String("symbol", symbol),
		logger.String("type", string(sig.Type)),
		logger.Float64("confidence", sig.Confidence),
		logger.Duration("elapsed", time.Since(started)))
	return sig, nil
}

// GenerateBatchSignals fans out one pipeline run per symbol. A failed
// symbol contributes its fallback signal instead of aborting the batch, so
// the result always has one entry per requested symbol, in request order.
func (s *SignalService) GenerateBatchSignals(ctx context.Context, symbols []string) ([]models.TradingSignal, error) {
	if len(symbols) == 0 {
		return nil, fmt.Errorf("at least one symbol required")
	}

	results := make([]models.TradingSignal, len(symbols))
	var wg sync.WaitGroup
	for i, symbol := range symbols {
		wg.Add(1)
		go func(i int, symbol string) {
			defer wg.Done()
			sig, err := s.GenerateSignal(ctx, symbol)
			if err != nil {
				s.log.Warn("batch symbol degraded",
					logger.String("symbol", symbol),
					logger.Error(err))
				sig = s.generator.Fallback(symbol, models.MarketFeatures{Symbol: symbol})
			}
			results[i] = sig
		}(i, symbol)
	}
	wg.Wait()
	return results, nil
}

// FilterSignalsByMarketCondition keeps signals that are valid for the
// regime and clear the confidence threshold, ordered by score descending.
func (s *SignalService) FilterSignalsByMarketCondition(signals []models.TradingSignal, regime models.MarketRegime) []models.TradingSignal {
	filtered := make([]models.TradingSignal, 0, len(signals))
	for i := range signals {
		if !s.adjuster.IsValidForRegime(&signals[i], regime) {
			continue
		}
		if signals[i].Confidence < confidenceThreshold {
			continue
		}
		filtered = append(filtered, signals[i])
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Score() > filtered[j].Score()
	})
	return filtered
}

// Recommend produces the portfolio recommendation for a signal set under
// the given market condition.
func (s *SignalService) Recommend(signals []models.TradingSignal, condition models.MarketCondition) models.PortfolioRecommendation {
	return s.adjuster.Recommend(signals, condition)
}

// CacheStats reports the model cache observability snapshot.
func (s *SignalService) CacheStats() models.CacheStats {
	return s.cache.Stats()
}

// ClearExpiredModels sweeps cache entries older than the staleness window
// and returns how many were removed.
func (s *SignalService) ClearExpiredModels() int {
	return s.cache.Sweep()
}
