package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SignalQuest/internal/domain/models"
	"SignalQuest/internal/services/collector"
	"SignalQuest/internal/services/intelligence"
	"SignalQuest/internal/services/model"
	signalgen "SignalQuest/internal/services/signal"
	"SignalQuest/internal/usecase"
	"SignalQuest/pkg/cache"
	xlogger "SignalQuest/pkg/logger"
)

type fakeMarket struct {
	failing map[string]bool
	calls   map[string]int
}

func (f *fakeMarket) series(n int) []models.MarketObservation {
	base := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	obs := make([]models.MarketObservation, n)
	p := 100.0
	for i := range obs {
		obs[i] = models.MarketObservation{Timestamp: base.AddDate(0, 0, i), Price: p, Volume: 1200}
		p *= 1.005
	}
	return obs
}

func (f *fakeMarket) GetCurrent(ctx context.Context, symbol string) (models.MarketObservation, error) {
	if f.calls != nil {
		f.calls[symbol]++
	}
	if f.failing[symbol] {
		return models.MarketObservation{}, errors.New("quote unavailable")
	}
	s := f.series(50)
	return s[len(s)-1], nil
}

func (f *fakeMarket) GetHistory(ctx context.Context, symbol string, count int) ([]models.MarketObservation, error) {
	if f.failing[symbol] {
		return nil, errors.New("candles unavailable")
	}
	return f.series(count), nil
}

type fakeIndicators struct{}

func (fakeIndicators) ComputeIndicators(string, []models.MarketObservation) models.TechnicalIndicators {
	return models.TechnicalIndicators{RSI: 55, SMA20: 100}
}

type nopMetrics struct{}

func (nopMetrics) RecordSignal(string, string)        {}
func (nopMetrics) RecordCacheLookup(bool)             {}
func (nopMetrics) RecordTrainingDuration(float64)     {}
func (nopMetrics) RecordStageLatency(string, float64) {}
func (nopMetrics) RecordError(string)                 {}

func newTestHandler(t *testing.T, market *fakeMarket, opts ...HandlerOption) (*echo.Echo, *SignalsHandler) {
	t.Helper()
	log, err := xlogger.New(&xlogger.Config{Level: "error", Format: "json", Output: "stderr"})
	require.NoError(t, err)

	metrics := nopMetrics{}
	col := collector.New(market, fakeIndicators{}, log)
	mcache := model.NewCache(model.NewTrainer(market, metrics, log), metrics, log)
	gen := signalgen.NewGenerator(metrics, log)
	adj := intelligence.NewAdjuster(log)
	svc := usecase.NewSignalService(col, mcache, gen, adj, metrics, log)

	e := echo.New()
	h := NewSignalsHandler(log, svc, opts...)
	h.RegisterRoutes(e)
	return e, h
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	var envelope struct {
		Status int             `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, dest))
}

func TestGetSignal(t *testing.T) {
	e, _ := newTestHandler(t, &fakeMarket{})

	req := httptest.NewRequest(http.MethodGet, "/api/signals/aapl", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var sig models.TradingSignal
	decodeData(t, rec, &sig)
	assert.Equal(t, "AAPL", sig.Symbol, "symbol is normalized to upper case")
	assert.NotEmpty(t, sig.ID)
	assert.False(t, sig.Degraded)
}

func TestGetSignalUpstreamFailure(t *testing.T) {
	e, _ := newTestHandler(t, &fakeMarket{failing: map[string]bool{"AAPL": true}})

	req := httptest.NewRequest(http.MethodGet, "/api/signals/AAPL", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Contains(t, rec.Body.String(), "ERR_BAD_GATEWAY")
}

func TestGetSignalResponseCache(t *testing.T) {
	store := cache.NewMemoryCache()
	defer store.Close()

	market := &fakeMarket{calls: map[string]int{}}
	e, _ := newTestHandler(t, market, WithResponseCache(store))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/signals/AAPL", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	assert.Equal(t, 1, market.calls["AAPL"], "second request must come from the response cache")
}

func TestBatchSignals(t *testing.T) {
	e, _ := newTestHandler(t, &fakeMarket{failing: map[string]bool{"BAD": true}})

	body := `{"symbols":["AAPL","BAD"]}`
	req := httptest.NewRequest(http.MethodPost, "/api/signals/batch", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var signals []models.TradingSignal
	decodeData(t, rec, &signals)
	require.Len(t, signals, 2)
	assert.False(t, signals[0].Degraded)
	assert.True(t, signals[1].Degraded, "failed symbol degrades to the fallback signal")
}

func TestBatchSignalsValidation(t *testing.T) {
	e, _ := newTestHandler(t, &fakeMarket{})

	req := httptest.NewRequest(http.MethodPost, "/api/signals/batch", strings.NewReader(`{"symbols":[]}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var envelope struct {
		Status int `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, http.StatusBadRequest, envelope.Status)
}

func TestRecommendation(t *testing.T) {
	e, _ := newTestHandler(t, &fakeMarket{})

	req := httptest.NewRequest(http.MethodGet, "/api/signals/recommendation?regime=BULL", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var rc models.PortfolioRecommendation
	decodeData(t, rec, &rc)
	assert.Equal(t, 0.8, rc.PositionSizing)
}

func TestRecommendationUnknownRegime(t *testing.T) {
	e, _ := newTestHandler(t, &fakeMarket{})

	req := httptest.NewRequest(http.MethodGet, "/api/signals/recommendation?regime=WAT", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var envelope struct {
		Status int `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, http.StatusBadRequest, envelope.Status)
}

func TestCacheStatsAndSweep(t *testing.T) {
	e, _ := newTestHandler(t, &fakeMarket{})

	req := httptest.NewRequest(http.MethodGet, "/api/signals/AAPL", nil)
	e.ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest(http.MethodGet, "/api/models/cache/stats", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var stats models.CacheStats
	decodeData(t, rec, &stats)
	assert.Equal(t, 1, stats.TotalModels)

	req = httptest.NewRequest(http.MethodPost, "/api/models/cache/sweep", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var sweep map[string]int
	decodeData(t, rec, &sweep)
	assert.Equal(t, 0, sweep["removed"], "fresh entries survive the sweep")
}
