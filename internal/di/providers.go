package di

import (
	"fmt"

	"SignalQuest/internal/domain/repository"
	"SignalQuest/internal/handler/api"
	"SignalQuest/internal/service/indicators"
	"SignalQuest/internal/service/marketdata"
	"SignalQuest/internal/services/collector"
	"SignalQuest/internal/services/intelligence"
	"SignalQuest/internal/services/model"
	signalgen "SignalQuest/internal/services/signal"
	"SignalQuest/internal/usecase"
	"SignalQuest/pkg/cache"
	"SignalQuest/pkg/config"
	xhttp "SignalQuest/pkg/http"
	applogger "SignalQuest/pkg/logger"
	"SignalQuest/pkg/metrics"
	"SignalQuest/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	log, err := applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return log, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideMarketData creates the market data client.
func ProvideMarketData(cfg *config.Config, log *applogger.Logger) repository.MarketDataProvider {
	return marketdata.New(
		cfg.MarketData.BaseURL,
		cfg.MarketData.APIKey,
		log,
		marketdata.WithTimeout(cfg.MarketData.Timeout),
	)
}

// ProvideIndicators creates the local indicator provider.
func ProvideIndicators() repository.IndicatorProvider {
	return indicators.New()
}

// ProvideCollector creates the market feature collector.
func ProvideCollector(
	market repository.MarketDataProvider,
	ind repository.IndicatorProvider,
	log *applogger.Logger,
	cfg *config.Config,
) *collector.Collector {
	opts := []collector.Option{}
	if cfg.MarketData.HistoryWindow > 0 {
		opts = append(opts, collector.WithHistoryWindow(cfg.MarketData.HistoryWindow))
	}
	return collector.New(market, ind, log, opts...)
}

// ProvideTrainer creates the model trainer.
func ProvideTrainer(
	market repository.MarketDataProvider,
	m repository.Metrics,
	log *applogger.Logger,
	cfg *config.Config,
) *model.Trainer {
	opts := []model.TrainerOption{}
	if cfg.Model.TrainingWindow > 0 {
		opts = append(opts, model.WithTrainingWindow(cfg.Model.TrainingWindow))
	}
	if cfg.Model.TrainingTimeout > 0 {
		opts = append(opts, model.WithTrainingTimeout(cfg.Model.TrainingTimeout))
	}
	return model.NewTrainer(market, m, log, opts...)
}

// ProvideModelCache creates the trained-model cache.
func ProvideModelCache(
	trainer *model.Trainer,
	m repository.Metrics,
	log *applogger.Logger,
	cfg *config.Config,
) usecase.ModelCache {
	opts := []model.CacheOption{}
	if cfg.Model.Staleness > 0 {
		opts = append(opts, model.WithStaleness(cfg.Model.Staleness))
	}
	return model.NewCache(trainer, m, log, opts...)
}

// ProvideGenerator creates the signal generator.
func ProvideGenerator(m repository.Metrics, log *applogger.Logger) *signalgen.Generator {
	return signalgen.NewGenerator(m, log)
}

// ProvideAdjuster creates the market intelligence adjuster.
func ProvideAdjuster(log *applogger.Logger) *intelligence.Adjuster {
	return intelligence.NewAdjuster(log)
}

// ProvideSignalService creates the signal orchestration service.
func ProvideSignalService(
	col *collector.Collector,
	mcache usecase.ModelCache,
	gen *signalgen.Generator,
	adj *intelligence.Adjuster,
	m repository.Metrics,
	log *applogger.Logger,
) *usecase.SignalService {
	return usecase.NewSignalService(col, mcache, gen, adj, m, log)
}

// ProvideSignalStore creates the response cache, or nil when disabled.
func ProvideSignalStore(cfg *config.Config) (cache.Store, error) {
	if !cfg.SignalCache.Enabled {
		return nil, nil
	}

	if cfg.SignalCache.Redis.Enabled {
		store, err := cache.NewRedisCache(
			cache.WithRedisAddr(cfg.SignalCache.Redis.Addr),
			cache.WithRedisPassword(cfg.SignalCache.Redis.Password),
			cache.WithRedisDB(cfg.SignalCache.Redis.DB),
		)
		if err != nil {
			return nil, fmt.Errorf("signal cache: %w", err)
		}
		return store, nil
	}

	return cache.NewMemoryCache(), nil
}

// ProvideHandler creates the signals HTTP handler.
func ProvideHandler(log *applogger.Logger, svc *usecase.SignalService, store cache.Store) xhttp.Handler {
	opts := []api.HandlerOption{}
	if store != nil {
		opts = append(opts, api.WithResponseCache(store))
	}
	return api.NewSignalsHandler(log, svc, opts...)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	svc *usecase.SignalService,
	handler xhttp.Handler,
	store cache.Store,
	log *applogger.Logger,
) *server.App {
	return server.New(cfg, svc, handler, store, log)
}
