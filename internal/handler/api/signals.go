package api

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"SignalQuest/internal/domain/models"
	"SignalQuest/internal/domain/repository"
	"SignalQuest/internal/usecase"
	"SignalQuest/pkg/cache"
	xhttp "SignalQuest/pkg/http"
	xlogger "SignalQuest/pkg/logger"
)

const signalCacheTTL = 5 * time.Minute

// SignalsHandler exposes the trading-signal pipeline over HTTP.
type SignalsHandler struct {
	logger  *xlogger.Logger
	signals *usecase.SignalService
	store   cache.Store // nil disables response caching
}

// HandlerOption configures SignalsHandler.
type HandlerOption func(*SignalsHandler)

// WithResponseCache enables caching of per-symbol signal responses.
func WithResponseCache(store cache.Store) HandlerOption {
	return func(h *SignalsHandler) {
		h.store = store
	}
}

func NewSignalsHandler(logger *xlogger.Logger, signals *usecase.SignalService, opts ...HandlerOption) *SignalsHandler {
	h := &SignalsHandler{logger: logger, signals: signals}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *SignalsHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/signals/:symbol", h.GetSignal)
	g.POST("/signals/batch", h.BatchSignals)
	g.POST("/signals/filter", h.FilterSignals)
	g.GET("/signals/recommendation", h.Recommendation)
	g.GET("/models/cache/stats", h.CacheStats)
	g.POST("/models/cache/sweep", h.SweepCache)
}

func (h *SignalsHandler) GetSignal(c echo.Context) error {
	symbol := strings.ToUpper(strings.TrimSpace(c.Param("symbol")))
	if symbol == "" {
		return xhttp.BadRequestResponse(c, xhttp.BadRequestError("symbol is required"))
	}

	if signal, ok := h.cachedSignal(c.Request().Context(), symbol); ok {
		return xhttp.SuccessResponse(c, signal)
	}

	signal, err := h.signals.GenerateSignal(c.Request().Context(), symbol)
	if err != nil {
		h.logger.Error("generate signal", xlogger.String("symbol", symbol), xlogger.Error(err))
		if errors.Is(err, repository.ErrMarketData) {
			return xhttp.AppErrorResponse(c, xhttp.BadGatewayError("market data unavailable").WithError(err))
		}
		return xhttp.AppErrorResponse(c, err)
	}

	h.storeSignal(c.Request().Context(), symbol, signal)
	return xhttp.SuccessResponse(c, signal)
}

func (h *SignalsHandler) BatchSignals(c echo.Context) error {
	req := &models.BatchSignalsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	symbols := make([]string, 0, len(req.Symbols))
	for _, s := range req.Symbols {
		symbols = append(symbols, strings.ToUpper(strings.TrimSpace(s)))
	}

	signals, err := h.signals.GenerateBatchSignals(c.Request().Context(), symbols)
	if err != nil {
		h.logger.Error("batch signals", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, signals)
}

func (h *SignalsHandler) FilterSignals(c echo.Context) error {
	req := &models.FilterSignalsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	filtered := h.signals.FilterSignalsByMarketCondition(req.Signals, models.MarketRegime(req.Regime))
	return xhttp.SuccessResponse(c, filtered)
}

func (h *SignalsHandler) Recommendation(c echo.Context) error {
	req := &models.RecommendationRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	rec := h.signals.Recommend(nil, models.MarketCondition{Regime: models.MarketRegime(req.Regime)})
	return xhttp.SuccessResponse(c, rec)
}

func (h *SignalsHandler) CacheStats(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.signals.CacheStats())
}

func (h *SignalsHandler) SweepCache(c echo.Context) error {
	removed := h.signals.ClearExpiredModels()
	h.logger.Info("model cache sweep", xlogger.Int("removed", removed))
	return xhttp.SuccessResponse(c, map[string]int{"removed": removed})
}

func (h *SignalsHandler) cachedSignal(ctx context.Context, symbol string) (models.TradingSignal, bool) {
	if h.store == nil {
		return models.TradingSignal{}, false
	}

	data, err := h.store.Get(ctx, cache.Key("signal", symbol))
	if err != nil {
		return models.TradingSignal{}, false
	}

	var signal models.TradingSignal
	if err := json.Unmarshal(data, &signal); err != nil {
		return models.TradingSignal{}, false
	}
	if !signal.IsActive(time.Now()) {
		return models.TradingSignal{}, false
	}
	return signal, true
}

func (h *SignalsHandler) storeSignal(ctx context.Context, symbol string, signal models.TradingSignal) {
	if h.store == nil || signal.Degraded {
		return
	}

	data, err := json.Marshal(signal)
	if err != nil {
		return
	}
	if err := h.store.Set(ctx, cache.Key("signal", symbol), data, signalCacheTTL); err != nil {
		h.logger.Warn("cache signal", xlogger.String("symbol", symbol), xlogger.Error(err))
	}
}

var _ xhttp.Handler = (*SignalsHandler)(nil)
