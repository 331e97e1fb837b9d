package model

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"SignalQuest/internal/domain/models"
	"SignalQuest/internal/domain/repository"
	domsvc "SignalQuest/internal/domain/service"
	"SignalQuest/pkg/logger"
)

// DefaultStaleness is the maximum age a cached model may reach before
// mandatory retraining.
const DefaultStaleness = 6 * time.Hour

type cacheEntry struct {
	model     domsvc.TradingModel
	trainedAt time.Time
}

// Cache is the per-symbol model cache. Concurrent misses on one symbol
// collapse into a single training run; every other reader blocks on the
// in-flight result instead of training again.
type Cache struct {
	trainer *Trainer
	metrics repository.Metrics
	log     *logger.Logger
	ttl     time.Duration

	mu      sync.RWMutex
	entries map[string]cacheEntry
	flight  singleflight.Group

	hits   atomic.Int64
	misses atomic.Int64
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithStaleness overrides the staleness window.
func WithStaleness(d time.Duration) CacheOption {
	return func(c *Cache) {
		if d > 0 {
			c.ttl = d
		}
	}
}

func NewCache(trainer *Trainer, metrics repository.Metrics, log *logger.Logger, opts ...CacheOption) *Cache {
	c := &Cache{
		trainer: trainer,
		metrics: metrics,
		log:     log,
		ttl:     DefaultStaleness,
		entries: make(map[string]cacheEntry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetOrTrain returns a model for symbol, training one if the cache has no
// entry younger than the staleness window. It never fails: a training error
// yields the fallback model, which is cached so a flapping provider does not
// trigger a training attempt on every request.
func (c *Cache) GetOrTrain(ctx context.Context, symbol string) domsvc.TradingModel {
	if m, ok := c.lookup(symbol); ok {
		c.hits.Add(1)
		c.metrics.RecordCacheLookup(true)
		return m
	}
	c.misses.Add(1)
	c.metrics.RecordCacheLookup(false)

	v, _, _ := c.flight.Do(symbol, func() (interface{}, error) {
		// A concurrent flight may have refreshed the entry while this
		// caller was queued behind it.
		if m, ok := c.lookup(symbol); ok {
			return m, nil
		}
		m, err := c.trainer.Train(ctx, symbol)
		if err != nil {
			c.log.Warn("training failed, using fallback model",
				logger.String("symbol", symbol),
				logger.Error(err))
			c.metrics.RecordError("model_training")
			fb := NewFallbackModel(symbol)
			c.store(symbol, fb)
			return domsvc.TradingModel(fb), nil
		}
		c.store(symbol, m)
		return domsvc.TradingModel(m), nil
	})
	return v.(domsvc.TradingModel)
}

func (c *Cache) lookup(symbol string) (domsvc.TradingModel, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[symbol]
	if !ok || time.Since(e.trainedAt) >= c.ttl {
		return nil, false
	}
	return e.model, true
}

func (c *Cache) store(symbol string, m domsvc.TradingModel) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[symbol] = cacheEntry{model: m, trainedAt: time.Now()}
}

// Sweep removes entries older than the staleness window and returns how
// many were removed.
func (c *Cache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for symbol, e := range c.entries {
		if time.Since(e.trainedAt) >= c.ttl {
			delete(c.entries, symbol)
			removed++
		}
	}
	if removed > 0 {
		c.log.Debug("expired models swept", logger.Int("removed", removed))
	}
	return removed
}

// Stats reports cache size and the observed hit rate.
func (c *Cache) Stats() models.CacheStats {
	c.mu.RLock()
	total := len(c.entries)
	active := 0
	for _, e := range c.entries {
		if time.Since(e.trainedAt) < c.ttl {
			active++
		}
	}
	c.mu.RUnlock()

	hits := c.hits.Load()
	lookups := hits + c.misses.Load()
	rate := 0.0
	if lookups > 0 {
		rate = float64(hits) / float64(lookups)
	}
	return models.CacheStats{
		TotalModels:   total,
		ActiveEntries: active,
		HitRate:       rate,
		LastUpdated:   time.Now(),
	}
}
