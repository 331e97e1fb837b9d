package marketdata

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"SignalQuest/internal/domain/models"
	"SignalQuest/internal/domain/repository"
	xhttp "SignalQuest/pkg/http"
	"SignalQuest/pkg/logger"
)

// Client implements repository.MarketDataProvider against a Finnhub-style
// REST API exposing /quote and /stock/candle endpoints.
type Client struct {
	baseURL string
	apiKey  string
	http    *xhttp.Client
	log     *logger.Logger
}

// Option configures Client.
type Option func(*Client)

// WithTimeout sets the HTTP request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.http = xhttp.NewClient(xhttp.WithTimeout(timeout))
	}
}

// New creates a market data client.
func New(baseURL, apiKey string, log *logger.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    xhttp.NewClient(),
		log:     log,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

type quoteResponse struct {
	Current   float64 `json:"c"`
	High      float64 `json:"h"`
	Low       float64 `json:"l"`
	Timestamp int64   `json:"t"`
}

type candleResponse struct {
	Status     string    `json:"s"`
	Close      []float64 `json:"c"`
	Volume     []float64 `json:"v"`
	Timestamps []int64   `json:"t"`
}

// GetCurrent fetches the latest quote for symbol.
func (c *Client) GetCurrent(ctx context.Context, symbol string) (models.MarketObservation, error) {
	var quote quoteResponse
	opts := &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/quote",
		QueryParams: map[string][]string{
			"symbol": {symbol},
			"token":  {c.apiKey},
		},
	}

	if err := c.http.SendAndParse(ctx, opts, &quote); err != nil {
		return models.MarketObservation{}, repository.MarketDataError("quote", symbol, err)
	}

	if quote.Current <= 0 {
		return models.MarketObservation{}, repository.MarketDataError("quote", symbol, fmt.Errorf("empty quote"))
	}

	ts := time.Now()
	if quote.Timestamp > 0 {
		ts = time.Unix(quote.Timestamp, 0)
	}

	return models.MarketObservation{
		Timestamp: ts,
		Price:     quote.Current,
		Bid:       quote.Low,
		Ask:       quote.High,
	}, nil
}

// GetHistory fetches up to count daily observations, most-recent-last.
func (c *Client) GetHistory(ctx context.Context, symbol string, count int) ([]models.MarketObservation, error) {
	to := time.Now()
	from := to.AddDate(0, 0, -count*2) // market holidays thin the calendar range

	var candles candleResponse
	opts := &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/stock/candle",
		QueryParams: map[string][]string{
			"symbol":     {symbol},
			"resolution": {"D"},
			"from":       {strconv.FormatInt(from.Unix(), 10)},
			"to":         {strconv.FormatInt(to.Unix(), 10)},
			"token":      {c.apiKey},
		},
	}

	if err := c.http.SendAndParse(ctx, opts, &candles); err != nil {
		return nil, repository.MarketDataError("candles", symbol, err)
	}

	if candles.Status != "ok" || len(candles.Close) == 0 {
		return nil, repository.MarketDataError("candles", symbol, fmt.Errorf("no data, status %q", candles.Status))
	}

	history := make([]models.MarketObservation, 0, len(candles.Close))
	for i, price := range candles.Close {
		obs := models.MarketObservation{Price: price}
		if i < len(candles.Timestamps) {
			obs.Timestamp = time.Unix(candles.Timestamps[i], 0)
		}
		if i < len(candles.Volume) {
			obs.Volume = candles.Volume[i]
		}
		history = append(history, obs)
	}

	if len(history) > count {
		history = history[len(history)-count:]
	}

	c.log.Debug("market history fetched",
		logger.String("symbol", symbol),
		logger.Int("observations", len(history)))

	return history, nil
}

var _ repository.MarketDataProvider = (*Client)(nil)
