package collector

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"SignalQuest/internal/domain/models"
	"SignalQuest/internal/domain/repository"
	"SignalQuest/pkg/logger"
)

type stubProvider struct {
	current models.MarketObservation
	history []models.MarketObservation
	err     error
}

func (s *stubProvider) GetCurrent(ctx context.Context, symbol string) (models.MarketObservation, error) {
	return s.current, s.err
}

func (s *stubProvider) GetHistory(ctx context.Context, symbol string, count int) ([]models.MarketObservation, error) {
	return s.history, s.err
}

type stubIndicators struct{}

func (stubIndicators) ComputeIndicators(symbol string, series []models.MarketObservation) models.TechnicalIndicators {
	return models.TechnicalIndicators{RSI: 50}
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func series(prices []float64) []models.MarketObservation {
	base := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	obs := make([]models.MarketObservation, len(prices))
	for i, p := range prices {
		obs[i] = models.MarketObservation{Timestamp: base.AddDate(0, 0, i), Price: p, Volume: 1000}
	}
	return obs
}

func trendSeries(n int, dailyDrift float64) []models.MarketObservation {
	prices := make([]float64, n)
	p := 100.0
	for i := range prices {
		prices[i] = p
		p *= 1 + dailyDrift
	}
	return series(prices)
}

func TestCollectProviderFailure(t *testing.T) {
	provider := &stubProvider{err: errors.New("timeout")}
	c := New(provider, stubIndicators{}, testLogger(t))
	_, err := c.Collect(context.Background(), "AAPL")
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, repository.ErrMarketData) {
		t.Fatalf("expected ErrMarketData, got %v", err)
	}
}

func TestCollectSuccess(t *testing.T) {
	history := trendSeries(50, 0.004)
	provider := &stubProvider{
		current: models.MarketObservation{Price: 123.45, Timestamp: time.Now()},
		history: history,
	}
	c := New(provider, stubIndicators{}, testLogger(t))
	mf, err := c.Collect(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if mf.Symbol != "AAPL" || mf.CurrentPrice != 123.45 {
		t.Fatalf("unexpected features: %+v", mf)
	}
	if len(mf.History) != 50 {
		t.Fatalf("expected 50 observations, got %d", len(mf.History))
	}
}

func TestClassifyRegimePriority(t *testing.T) {
	// Strong uptrend with huge daily swings: volatility pre-empts trend.
	prices := make([]float64, 30)
	p := 100.0
	for i := range prices {
		prices[i] = p
		if i%2 == 0 {
			p *= 1.45
		} else {
			p *= 0.80
		}
	}
	s := series(prices)
	if got := classifyRegime(s); got != models.RegimeHighVolatility {
		t.Fatalf("expected HIGH_VOLATILITY, got %v", got)
	}
}

func TestClassifyRegimeBuckets(t *testing.T) {
	tests := []struct {
		name  string
		drift float64
		want  models.MarketRegime
	}{
		{"calm drift is low volatility", 0.001, models.RegimeLowVolatility},
		{"short history is sideways", 0, models.RegimeSideways},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := 30
			if tt.want == models.RegimeSideways {
				n = 10
			}
			if got := classifyRegime(trendSeries(n, tt.drift)); got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestSentimentBounds(t *testing.T) {
	up := Sentiment(trendSeries(30, 0.08))
	down := Sentiment(trendSeries(30, -0.08))
	if up <= 0 || up > 1 {
		t.Fatalf("expected positive sentiment in (0,1], got %v", up)
	}
	if down >= 0 || down < -1 {
		t.Fatalf("expected negative sentiment in [-1,0), got %v", down)
	}
	if math.Abs(up*100-math.Round(up*100)) > 1e-9 {
		t.Fatalf("expected 2-decimal rounding, got %v", up)
	}
	if got := Sentiment(trendSeries(5, 0.08)); got != 0 {
		t.Fatalf("expected neutral sentiment for short series, got %v", got)
	}
}

func TestAnalyzeVolatilityDefaults(t *testing.T) {
	va := AnalyzeVolatility(nil)
	if va.Historical != 0.2 || va.Regime != models.VolRegimeModerate || va.Trend != models.VolTrendStable {
		t.Fatalf("unexpected default analysis: %+v", va)
	}
}
