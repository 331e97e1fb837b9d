package features

import (
	"math"
	"testing"
	"time"

	"SignalQuest/internal/domain/models"
)

func makeSeries(prices []float64) []models.MarketObservation {
	base := time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC)
	obs := make([]models.MarketObservation, len(prices))
	for i, p := range prices {
		obs[i] = models.MarketObservation{
			Timestamp: base.AddDate(0, 0, i),
			Price:     p,
			Volume:    1000 + float64(i)*10,
		}
	}
	return obs
}

func driftSeries(n int, start, dailyDrift float64) []models.MarketObservation {
	prices := make([]float64, n)
	p := start
	for i := range prices {
		prices[i] = p
		p *= 1 + dailyDrift
	}
	return makeSeries(prices)
}

func TestExtractVectorShape(t *testing.T) {
	series := driftSeries(60, 100, 0.005)
	for _, idx := range []int{0, 5, 20, 40, 59} {
		v, err := Extract(series, idx)
		if err != nil {
			t.Fatalf("unexpected error at index %d: %v", idx, err)
		}
		if len(v) != models.FeatureCount {
			t.Fatalf("expected %d features, got %d", models.FeatureCount, len(v))
		}
		for i, x := range v {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				t.Fatalf("non-finite feature at slot %d index %d", i, idx)
			}
		}
	}
}

func TestExtractInvalidIndex(t *testing.T) {
	series := driftSeries(10, 100, 0.001)
	v, err := Extract(series, 99)
	if err == nil {
		t.Fatal("expected error for out-of-range index")
	}
	if v != (models.FeatureVector{}) {
		t.Fatal("expected zero vector on failure")
	}
}

func TestRSIMonotonicIncrease(t *testing.T) {
	series := driftSeries(20, 100, 0.01)
	got := RSI(series, len(series)-1, 14)
	if got != 100 {
		t.Fatalf("expected RSI 100 for monotonically increasing series, got %v", got)
	}
}

func TestRSIInsufficientHistory(t *testing.T) {
	series := driftSeries(5, 100, 0.01)
	if got := RSI(series, len(series)-1, 14); got != 50 {
		t.Fatalf("expected default RSI 50, got %v", got)
	}
}

func TestGenerateLabel(t *testing.T) {
	tests := []struct {
		name        string
		futureRatio float64
		want        models.Label
	}{
		{"buy above threshold", 1.03, models.LabelBuy},
		{"sell below threshold", 0.97, models.LabelSell},
		{"hold inside band", 1.01, models.LabelHold},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prices := make([]float64, 12)
			for i := range prices {
				prices[i] = 100
			}
			prices[5+LabelHorizon] = 100 * tt.futureRatio
			series := makeSeries(prices)
			if got := GenerateLabel(series, 5); got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestGenerateLabelInsufficientFuture(t *testing.T) {
	series := driftSeries(8, 100, 0.05)
	if got := GenerateLabel(series, 5); got != models.LabelHold {
		t.Fatalf("expected HOLD with insufficient future data, got %v", got)
	}
}

func TestBollingerDegenerateBands(t *testing.T) {
	prices := make([]float64, 30)
	for i := range prices {
		prices[i] = 50 // flat series, zero band width
	}
	series := makeSeries(prices)
	if got := BollingerPosition(series, 25); got != 0.5 {
		t.Fatalf("expected 0.5 for degenerate bands, got %v", got)
	}
}

func TestMACDBeforeWarmup(t *testing.T) {
	series := driftSeries(30, 100, 0.002)
	if got := MACD(series, 10); got != 0 {
		t.Fatalf("expected 0 MACD before index 26, got %v", got)
	}
	if got := MACD(series, 29); got == 0 {
		t.Fatal("expected non-zero MACD on drifting series after warmup")
	}
}
