package marketdata

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	apperrors "stocklens/internal/errors"
	"stocklens/internal/models"
)

const chartOKBody = `{
  "chart": {
    "result": [{
      "timestamp": [1700092800, 1700006400, 1700179200],
      "indicators": {
        "quote": [{
          "open":   [101.0, 100.0, 108.0],
          "high":   [106.0, 103.0, 111.0],
          "low":    [99.5, 98.0, 104.0],
          "close":  [105.0, 102.0, null],
          "volume": [1500, 1000, 2000]
        }]
      }
    }],
    "error": null
  }
}`

const chartNotFoundBody = `{
  "chart": {
    "result": null,
    "error": {"code": "Not Found", "description": "No data found, symbol may be delisted"}
  }
}`

func testClient(t *testing.T, handler http.HandlerFunc) (*YahooClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewYahooClient(YahooConfig{
		BaseURL:       srv.URL,
		Timeout:       5 * time.Second,
		UserAgent:     "stocklens-test",
		RetryAttempts: 3,
	}, zerolog.Nop())
	return client, srv
}

func testRequest(symbol string, exchange models.Exchange) HistoryRequest {
	return HistoryRequest{
		Symbol:   symbol,
		Exchange: exchange,
		From:     time.Now().Add(-30 * 24 * time.Hour),
		To:       time.Now(),
	}
}

func TestYahooHistoryParsesAndSortsBars(t *testing.T) {
	var gotPath, gotUA string
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUA = r.Header.Get("User-Agent")
		fmt.Fprint(w, chartOKBody)
	})

	candles, err := client.History(context.Background(), testRequest("RELIANCE", models.NSE))
	if err != nil {
		t.Fatalf("History returned error: %v", err)
	}

	if gotPath != "/v8/finance/chart/RELIANCE.NS" {
		t.Errorf("request path = %q, want /v8/finance/chart/RELIANCE.NS", gotPath)
	}
	if gotUA != "stocklens-test" {
		t.Errorf("User-Agent = %q, want stocklens-test", gotUA)
	}

	// The third bar has a null close and is skipped; the remaining two come
	// back in chronological order even though the envelope was unordered.
	if len(candles) != 2 {
		t.Fatalf("got %d candles, want 2", len(candles))
	}
	if !candles[0].Timestamp.Before(candles[1].Timestamp) {
		t.Error("candles are not in chronological order")
	}
	if candles[0].Close != 102.0 || candles[1].Close != 105.0 {
		t.Errorf("closes = [%f, %f], want [102, 105]", candles[0].Close, candles[1].Close)
	}
	if candles[1].Volume != 1500 {
		t.Errorf("volume = %d, want 1500", candles[1].Volume)
	}
}

func TestYahooHistoryBSESuffix(t *testing.T) {
	var gotPath string
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		fmt.Fprint(w, chartOKBody)
	})

	if _, err := client.History(context.Background(), testRequest("SUNFLAG", models.BSE)); err != nil {
		t.Fatalf("History returned error: %v", err)
	}
	if gotPath != "/v8/finance/chart/SUNFLAG.BO" {
		t.Errorf("request path = %q, want /v8/finance/chart/SUNFLAG.BO", gotPath)
	}
}

func TestYahooHistoryNotFoundIsNoData(t *testing.T) {
	requests := 0
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, chartNotFoundBody)
	})

	_, err := client.History(context.Background(), testRequest("NOSUCH", models.NSE))
	if !apperrors.Is(err, apperrors.ErrNoData) {
		t.Fatalf("error = %v, want ErrNoData in chain", err)
	}

	var fetchErr *apperrors.FetchError
	if !apperrors.As(err, &fetchErr) {
		t.Fatalf("error %v is not a FetchError", err)
	}
	if fetchErr.Exchange != "NSE" {
		t.Errorf("FetchError.Exchange = %q, want NSE", fetchErr.Exchange)
	}

	// An unknown symbol must not burn retry attempts.
	if requests != 1 {
		t.Errorf("made %d requests, want 1", requests)
	}
}

func TestYahooHistoryAllNullBarsIsNoData(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
  "chart": {
    "result": [{
      "timestamp": [1700006400],
      "indicators": {"quote": [{"open": [null], "high": [null], "low": [null], "close": [null], "volume": [null]}]}
    }],
    "error": null
  }
}`)
	})

	_, err := client.History(context.Background(), testRequest("RELIANCE", models.NSE))
	if !apperrors.Is(err, apperrors.ErrNoData) {
		t.Fatalf("error = %v, want ErrNoData in chain", err)
	}
}

func TestYahooHistoryRetriesServerErrors(t *testing.T) {
	requests := 0
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, chartOKBody)
	})

	candles, err := client.History(context.Background(), testRequest("RELIANCE", models.NSE))
	if err != nil {
		t.Fatalf("History returned error after retries: %v", err)
	}
	if requests != 3 {
		t.Errorf("made %d requests, want 3", requests)
	}
	if len(candles) != 2 {
		t.Errorf("got %d candles, want 2", len(candles))
	}
}

func TestYahooHistoryContextCancellation(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.History(ctx, testRequest("RELIANCE", models.NSE))
	if err == nil {
		t.Fatal("expected error from cancelled context")
	}
	if !apperrors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled in chain", err)
	}
}
