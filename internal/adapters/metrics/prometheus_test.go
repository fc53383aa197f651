package metrics_test

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/hgreenfield1/Kalshi/internal/adapters/metrics"
	"github.com/hgreenfield1/Kalshi/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.Metrics = (*metrics.Recorder)(nil)

func TestRecorder_CountersAndGauges(t *testing.T) {
	r := metrics.NewRecorder()

	r.FeedEvent("delta")
	r.FeedEvent("delta")
	r.FeedGap("KXMLBGAME-25JUN13ATHKC-KC")
	r.Reconnect()
	r.Signal("simple", "buy")
	r.Probability("KXMLBGAME-25JUN13ATHKC-KC", 63.5)

	families, err := r.Registry().Gather()
	require.NoError(t, err)
	byName := make(map[string]float64)
	for _, f := range families {
		for _, m := range f.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				byName[f.GetName()] += m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				byName[f.GetName()] += m.GetGauge().GetValue()
			}
		}
	}

	assert.Equal(t, 2.0, byName["kalshi_feed_events_total"])
	assert.Equal(t, 1.0, byName["kalshi_feed_gaps_total"])
	assert.Equal(t, 1.0, byName["kalshi_feed_reconnects_total"])
	assert.Equal(t, 1.0, byName["kalshi_signals_total"])
	assert.Equal(t, 63.5, byName["kalshi_blended_probability_pct"])
}

func TestRecorder_FeedStateIsOneHot(t *testing.T) {
	r := metrics.NewRecorder()
	r.FeedState("connecting")
	r.FeedState("streaming")

	body := scrape(t, r)
	assert.Contains(t, body, `kalshi_feed_state{state="streaming"} 1`)
	assert.Contains(t, body, `kalshi_feed_state{state="connecting"} 0`)
}

func TestRecorder_HandlerExposesValues(t *testing.T) {
	r := metrics.NewRecorder()
	r.Ledger("conservative", "T", 3, 97.25)

	body := scrape(t, r)
	assert.Contains(t, body, `kalshi_position_contracts{strategy="conservative",ticker="T"} 3`)
	assert.Contains(t, body, `kalshi_cash_usd{strategy="conservative",ticker="T"} 97.25`)
}

func TestRecorder_NilIsNoop(t *testing.T) {
	var r *metrics.Recorder
	assert.NotPanics(t, func() {
		r.FeedState("streaming")
		r.FeedEvent("delta")
		r.FeedGap("T")
		r.Reconnect()
		r.ProviderFailure("mlb")
		r.Signal("simple", "hold")
		r.Ledger("simple", "T", 0, 100)
		r.Probability("T", 50)
	})
}

func scrape(t *testing.T, r *metrics.Recorder) string {
	t.Helper()
	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}
