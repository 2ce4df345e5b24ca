package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/rs/zerolog"

	apperrors "stocklens/internal/errors"
	"stocklens/internal/models"
	"stocklens/pkg/utils"
)

// YahooConfig holds Yahoo chart API client configuration.
type YahooConfig struct {
	BaseURL       string
	Timeout       time.Duration
	UserAgent     string
	RetryAttempts int
}

// YahooClient implements Provider against the Yahoo Finance v8 chart API.
type YahooClient struct {
	client    *http.Client
	baseURL   string
	userAgent string
	retryCfg  utils.RetryConfig
	logger    zerolog.Logger
}

// NewYahooClient creates a Yahoo chart API client.
func NewYahooClient(cfg YahooConfig, logger zerolog.Logger) *YahooClient {
	retryCfg := utils.DefaultRetryConfig()
	if cfg.RetryAttempts > 0 {
		retryCfg.MaxAttempts = cfg.RetryAttempts
	}
	return &YahooClient{
		client:    &http.Client{Timeout: cfg.Timeout},
		baseURL:   cfg.BaseURL,
		userAgent: cfg.UserAgent,
		retryCfg:  retryCfg,
		logger:    logger.With().Str("component", "yahoo").Logger(),
	}
}

// yahooChart is the response envelope of the Yahoo Finance chart API. Bars
// on holidays come back as nulls, so quote fields are pointer slices.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol string `json:"symbol"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// History fetches daily candles for one symbol on one exchange. Transient
// failures (network errors, 5xx) are retried with backoff; an unknown symbol
// yields ErrNoData without retrying.
func (c *YahooClient) History(ctx context.Context, req HistoryRequest) ([]models.Candle, error) {
	yahooSymbol := req.Symbol + req.Exchange.YahooSuffix()
	u := fmt.Sprintf("%s/v8/finance/chart/%s?period1=%d&period2=%d&interval=1d",
		c.baseURL, url.PathEscape(yahooSymbol), req.From.Unix(), req.To.Unix())

	start := time.Now()
	body, err := utils.RetryWithResult(ctx, c.retryCfg, func() ([]byte, error) {
		return c.get(ctx, u)
	})
	if err != nil {
		return nil, apperrors.NewFetchError(req.Symbol, string(req.Exchange), "chart request failed", err)
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, apperrors.NewFetchError(req.Symbol, string(req.Exchange), "decoding chart response", err)
	}
	if chart.Chart.Error != nil {
		// "Not Found" is how Yahoo reports a symbol missing from the
		// exchange; the caller decides whether a fallback applies.
		c.logger.Debug().
			Str("symbol", yahooSymbol).
			Str("code", chart.Chart.Error.Code).
			Str("description", chart.Chart.Error.Description).
			Msg("Chart API error")
		return nil, apperrors.NewFetchError(req.Symbol, string(req.Exchange), chart.Chart.Error.Description, apperrors.ErrNoData)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, apperrors.NewFetchError(req.Symbol, string(req.Exchange), "empty chart result", apperrors.ErrNoData)
	}

	result := chart.Chart.Result[0]
	if meta := result.Meta.Symbol; meta != "" && models.ExchangeFromYahooSymbol(meta) != req.Exchange {
		c.logger.Warn().
			Str("requested", yahooSymbol).
			Str("served", meta).
			Msg("Chart served under a different exchange suffix")
	}
	quote := result.Indicators.Quote[0]
	candles := make([]models.Candle, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) || quote.Close[i] == nil {
			continue // null bar (holiday, halted session)
		}
		candle := models.Candle{
			Timestamp: time.Unix(ts, 0).UTC(),
			Close:     *quote.Close[i],
		}
		if i < len(quote.Open) && quote.Open[i] != nil {
			candle.Open = *quote.Open[i]
		}
		if i < len(quote.High) && quote.High[i] != nil {
			candle.High = *quote.High[i]
		}
		if i < len(quote.Low) && quote.Low[i] != nil {
			candle.Low = *quote.Low[i]
		}
		if i < len(quote.Volume) && quote.Volume[i] != nil {
			candle.Volume = *quote.Volume[i]
		}
		candles = append(candles, candle)
	}

	if len(candles) == 0 {
		return nil, apperrors.NewFetchError(req.Symbol, string(req.Exchange), "all bars null", apperrors.ErrNoData)
	}

	sort.Slice(candles, func(i, j int) bool {
		return candles[i].Timestamp.Before(candles[j].Timestamp)
	})

	c.logger.Debug().
		Str("symbol", yahooSymbol).
		Int("bars", len(candles)).
		Dur("duration", time.Since(start)).
		Msg("History fetched")

	return candles, nil
}

// get performs one HTTP request. A 404 still carries the chart.error
// envelope, so its body is returned for decoding instead of an error; this
// also keeps "symbol not on this exchange" from being retried.
func (c *YahooClient) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading chart response: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNotFound {
		return nil, fmt.Errorf("chart API status %d", resp.StatusCode)
	}
	return body, nil
}
