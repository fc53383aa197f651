package kalshi_test

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hgreenfield1/Kalshi/internal/adapters/kalshi"
)

func newTestClient(srv *httptest.Server, creds *kalshi.Credentials) *kalshi.Client {
	return kalshi.NewClient(kalshi.Config{
		HTTPBase:   srv.URL + "/trade-api/v2",
		MinSpacing: time.Millisecond,
	}, creds, nil)
}

func testCredentials(t *testing.T) *kalshi.Credentials {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "key.pem")
	require.NoError(t, os.WriteFile(path, pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}), 0o600))

	creds, err := kalshi.LoadCredentials("key-123", path)
	require.NoError(t, err)
	return creds
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestGetMarkets_Paginates(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/trade-api/v2/markets", r.URL.Path)
		assert.Equal(t, "KXMLBGAME", r.URL.Query().Get("series_ticker"))
		assert.Equal(t, "open", r.URL.Query().Get("status"))

		if r.URL.Query().Get("cursor") == "" {
			writeJSON(w, map[string]any{
				"cursor": "page2",
				"markets": []map[string]any{{
					"ticker": "KXMLBGAME-25JUN13ATHKC-KC", "event_ticker": "KXMLBGAME-25JUN13ATHKC",
					"status": "active", "yes_bid": 57, "yes_ask": 59, "volume": 1200,
					"open_time": "2025-06-12T14:00:00Z",
				}},
			})
			return
		}
		assert.Equal(t, "page2", r.URL.Query().Get("cursor"))
		writeJSON(w, map[string]any{
			"cursor":  "",
			"markets": []map[string]any{{"ticker": "KXMLBGAME-25JUN13ATHKC-ATH"}},
		})
	}))
	defer srv.Close()

	markets, err := newTestClient(srv, nil).GetMarkets(context.Background(), []string{"KXMLBGAME"}, "open")
	require.NoError(t, err)
	require.Len(t, markets, 2)
	assert.Equal(t, int32(2), calls.Load())

	m := markets[0]
	assert.Equal(t, "KXMLBGAME-25JUN13ATHKC-KC", m.Ticker)
	assert.Equal(t, "KXMLBGAME", m.Series())
	assert.Equal(t, 57, m.YesBid)
	assert.Equal(t, 59, m.YesAsk)
	assert.Equal(t, int64(1200), m.Volume)
	assert.Equal(t, time.Date(2025, 6, 12, 14, 0, 0, 0, time.UTC), m.OpenTime)
}

func TestGetMarket_NotFoundIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":"not_found"}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv, nil).GetMarket(context.Background(), "NOPE")
	require.Error(t, err)

	var apiErr *kalshi.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.False(t, apiErr.IsRetryable())
	assert.Contains(t, string(apiErr.Body), "not_found")
	assert.Equal(t, int32(1), calls.Load())
}

func TestGetMarket_RetriesServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		writeJSON(w, map[string]any{"market": map[string]any{"ticker": "T-1", "result": "yes"}})
	}))
	defer srv.Close()

	m, err := newTestClient(srv, nil).GetMarket(context.Background(), "T-1")
	require.NoError(t, err)
	assert.Equal(t, "yes", m.Result)
	assert.Equal(t, int32(2), calls.Load())
}

func TestGetCandlesticks_MapsNullPrices(t *testing.T) {
	start := time.Date(2025, 6, 13, 23, 10, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/trade-api/v2/series/KXMLBGAME/markets/KXMLBGAME-25JUN13ATHKC-KC/candlesticks", r.URL.Path)
		assert.Equal(t, "1749856200", r.URL.Query().Get("start_ts"))
		assert.Equal(t, "1749856260", r.URL.Query().Get("end_ts"))
		assert.Equal(t, "1", r.URL.Query().Get("period_interval"))
		_, _ = w.Write([]byte(`{"ticker":"KXMLBGAME-25JUN13ATHKC-KC","candlesticks":[
			{"end_period_ts":1749856260,"price":{"mean":null},"yes_bid":{"close":54},"yes_ask":{"close":58},"volume":0},
			{"end_period_ts":1749856320,"price":{"mean":57,"close":57},"yes_bid":{"close":56},"yes_ask":{"close":58},"volume":12}
		]}`))
	}))
	defer srv.Close()

	candles, err := newTestClient(srv, nil).GetCandlesticks(context.Background(),
		"KXMLBGAME", "KXMLBGAME-25JUN13ATHKC-KC", start, start.Add(time.Minute), 1)
	require.NoError(t, err)
	require.Len(t, candles, 2)

	assert.Nil(t, candles[0].PriceMean)
	require.NotNil(t, candles[0].YesBidClose)
	assert.Equal(t, 54.0, *candles[0].YesBidClose)
	assert.Equal(t, time.Unix(1749856260, 0).UTC(), candles[0].End)
	require.NotNil(t, candles[1].PriceMean)
	assert.Equal(t, 57.0, *candles[1].PriceMean)
	assert.Equal(t, int64(12), candles[1].Volume)
}

func TestClient_SignsRequestPath(t *testing.T) {
	creds := testCredentials(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key-123", r.Header.Get("KALSHI-ACCESS-KEY"))
		ts := r.Header.Get("KALSHI-ACCESS-TIMESTAMP")
		sig, err := base64.StdEncoding.DecodeString(r.Header.Get("KALSHI-ACCESS-SIGNATURE"))
		assert.NoError(t, err)

		// query string no forma parte del mensaje firmado
		hashed := sha256.Sum256([]byte(ts + "GET" + "/trade-api/v2/markets"))
		err = rsa.VerifyPSS(&creds.PrivateKey.PublicKey, crypto.SHA256, hashed[:], sig,
			&rsa.PSSOptions{SaltLength: rsa.PSSSaltLengthEqualsHash})
		assert.NoError(t, err)
		writeJSON(w, map[string]any{"markets": []any{}})
	}))
	defer srv.Close()

	_, err := newTestClient(srv, creds).GetMarkets(context.Background(), []string{"KXMLBGAME"}, "open")
	require.NoError(t, err)
}

func TestClient_PacesRequests(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"market": map[string]any{"ticker": "T"}})
	}))
	defer srv.Close()

	c := kalshi.NewClient(kalshi.Config{HTTPBase: srv.URL, MinSpacing: 40 * time.Millisecond}, nil, nil)
	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := c.GetMarket(context.Background(), "T")
		require.NoError(t, err)
	}
	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
}

func TestLoadCredentials_Errors(t *testing.T) {
	_, err := kalshi.LoadCredentials("", "x.pem")
	assert.Error(t, err)
	_, err = kalshi.LoadCredentials("id", filepath.Join(t.TempDir(), "missing.pem"))
	assert.Error(t, err)
	_, err = kalshi.ParsePrivateKey([]byte("not a pem"))
	assert.Error(t, err)
}
