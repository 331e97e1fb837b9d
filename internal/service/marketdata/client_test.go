package marketdata

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SignalQuest/internal/domain/repository"
	"SignalQuest/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	require.NoError(t, err)
	return log
}

func TestGetCurrent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/quote", r.URL.Path)
		require.Equal(t, "AAPL", r.URL.Query().Get("symbol"))
		require.Equal(t, "test-key", r.URL.Query().Get("token"))
		fmt.Fprint(w, `{"c":187.5,"h":189.0,"l":186.2,"t":1700000000}`)
	}))
	defer srv.Close()

	client := New(srv.URL, "test-key", testLogger(t))

	obs, err := client.GetCurrent(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 187.5, obs.Price)
	assert.Equal(t, 186.2, obs.Bid)
	assert.Equal(t, 189.0, obs.Ask)
	assert.False(t, obs.Timestamp.IsZero())
}

func TestGetCurrentEmptyQuote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"c":0}`)
	}))
	defer srv.Close()

	client := New(srv.URL, "test-key", testLogger(t))

	_, err := client.GetCurrent(context.Background(), "AAPL")
	require.Error(t, err)
	assert.True(t, errors.Is(err, repository.ErrMarketData))
}

func TestGetHistory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/stock/candle", r.URL.Path)
		require.Equal(t, "D", r.URL.Query().Get("resolution"))
		fmt.Fprint(w, `{"s":"ok","c":[100,101,102,103],"v":[1000,1100,900,1200],"t":[1700000000,1700086400,1700172800,1700259200]}`)
	}))
	defer srv.Close()

	client := New(srv.URL, "test-key", testLogger(t))

	history, err := client.GetHistory(context.Background(), "AAPL", 3)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, 101.0, history[0].Price)
	assert.Equal(t, 103.0, history[2].Price)
	assert.Equal(t, 1200.0, history[2].Volume)
}

func TestGetHistoryNoData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"s":"no_data"}`)
	}))
	defer srv.Close()

	client := New(srv.URL, "test-key", testLogger(t))

	_, err := client.GetHistory(context.Background(), "AAPL", 50)
	require.Error(t, err)
	assert.True(t, errors.Is(err, repository.ErrMarketData))
}

func TestGetHistoryUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := New(srv.URL, "test-key", testLogger(t))

	_, err := client.GetHistory(context.Background(), "AAPL", 50)
	require.Error(t, err)
	assert.True(t, errors.Is(err, repository.ErrMarketData))
}
