package kalshi_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hgreenfield1/Kalshi/internal/adapters/kalshi"
	"github.com/hgreenfield1/Kalshi/internal/domain"
)

func mockWSServer(t *testing.T, handler func(*http.Request, *websocket.Conn)) *httptest.Server {
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Logf("upgrade error: %v", err)
			return
		}
		defer conn.Close()
		handler(r, conn)
	}))
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

type subscribeCmd struct {
	ID     int64  `json:"id"`
	Cmd    string `json:"cmd"`
	Params struct {
		Channels      []string `json:"channels"`
		MarketTickers []string `json:"market_tickers"`
	} `json:"params"`
}

func TestFeed_SubscribesPerTickerAndDecodes(t *testing.T) {
	cmds := make(chan subscribeCmd, 2)
	srv := mockWSServer(t, func(_ *http.Request, conn *websocket.Conn) {
		for i := 0; i < 2; i++ {
			var c subscribeCmd
			if err := conn.ReadJSON(&c); err != nil {
				return
			}
			cmds <- c
		}
		for _, m := range []string{
			`{"id":1,"type":"subscribed","msg":{"channel":"orderbook_delta","sid":7}}`,
			`{"type":"orderbook_snapshot","sid":7,"seq":1,"msg":{"market_ticker":"A","yes":[[40,10],[42,5]],"no":[[55,7]]}}`,
			`{"type":"orderbook_delta","sid":7,"seq":2,"msg":{"market_ticker":"A","price":42,"delta":-5,"side":"yes"}}`,
			`{"type":"orderbook_delta","sid":7,"msg":{"market_ticker":"A","price":55,"delta":3,"side":"no","seq":3}}`,
			`{"type":"error","msg":{"code":6,"msg":"Already subscribed"}}`,
			`{"type":"fill","sid":9,"msg":{"market_ticker":"A","side":"yes","yes_price":42,"count":1,"action":"buy"}}`,
		} {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(m)); err != nil {
				return
			}
		}
		_, _, _ = conn.ReadMessage()
	})
	defer srv.Close()

	ctx := context.Background()
	conn, err := kalshi.NewDialer(kalshi.FeedConfig{URL: wsURL(srv)}, nil, nil).Dial(ctx)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.Subscribe(ctx, []string{"A", "B"}))
	for i, want := range []string{"A", "B"} {
		c := <-cmds
		assert.Equal(t, int64(i+1), c.ID)
		assert.Equal(t, "subscribe", c.Cmd)
		assert.Equal(t, []string{"orderbook_delta", "fill"}, c.Params.Channels)
		assert.Equal(t, []string{want}, c.Params.MarketTickers)
	}

	ev, err := conn.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.FeedSubscribed, ev.Kind)
	assert.Contains(t, ev.Message, "sid=7")

	ev, err = conn.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.FeedSnapshot, ev.Kind)
	assert.Equal(t, "A", ev.Ticker)
	assert.Equal(t, int64(1), ev.Seq)
	assert.Equal(t, []domain.Level{{Price: 40, Size: 10}, {Price: 42, Size: 5}}, ev.Yes)
	assert.Equal(t, []domain.Level{{Price: 55, Size: 7}}, ev.No)
	assert.False(t, ev.ReceivedAt.IsZero())

	ev, err = conn.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.FeedDelta, ev.Kind)
	assert.Equal(t, domain.SideYes, ev.Side)
	assert.Equal(t, 42, ev.Price)
	assert.Equal(t, -5, ev.Delta)
	assert.Equal(t, int64(2), ev.Seq)

	ev, err = conn.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.SideNo, ev.Side)
	assert.Equal(t, int64(3), ev.Seq, "seq falls back to msg.seq")

	ev, err = conn.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.FeedError, ev.Kind)
	assert.Contains(t, ev.Message, "Already subscribed")

	ev, err = conn.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.FeedOther, ev.Kind)
	assert.Equal(t, "fill", ev.Type)
	assert.Equal(t, "A", ev.Ticker)
}

func TestFeed_BadMessageIsReportedNotFatal(t *testing.T) {
	srv := mockWSServer(t, func(_ *http.Request, conn *websocket.Conn) {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"orderbook_delta","msg":{"side":"maybe"}}`))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`not json`))
		_, _, _ = conn.ReadMessage()
	})
	defer srv.Close()

	conn, err := kalshi.NewDialer(kalshi.FeedConfig{URL: wsURL(srv)}, nil, nil).Dial(context.Background())
	require.NoError(t, err)
	defer conn.Close()

	for i := 0; i < 2; i++ {
		ev, err := conn.Next(context.Background())
		require.NoError(t, err)
		assert.Equal(t, domain.FeedError, ev.Kind)
	}
}

func TestFeed_ServerCloseIsError(t *testing.T) {
	srv := mockWSServer(t, func(_ *http.Request, conn *websocket.Conn) {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
	})
	defer srv.Close()

	conn, err := kalshi.NewDialer(kalshi.FeedConfig{URL: wsURL(srv)}, nil, nil).Dial(context.Background())
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Next(context.Background())
	assert.Error(t, err)
}

func TestFeed_NextHonoursCancel(t *testing.T) {
	srv := mockWSServer(t, func(_ *http.Request, conn *websocket.Conn) {
		_, _, _ = conn.ReadMessage()
	})
	defer srv.Close()

	conn, err := kalshi.NewDialer(kalshi.FeedConfig{URL: wsURL(srv)}, nil, nil).Dial(context.Background())
	require.NoError(t, err)
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err = conn.Next(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFeed_SignedHandshake(t *testing.T) {
	creds := testCredentials(t)
	headers := make(chan http.Header, 1)
	srv := mockWSServer(t, func(r *http.Request, conn *websocket.Conn) {
		headers <- r.Header.Clone()
		_, _, _ = conn.ReadMessage()
	})
	defer srv.Close()

	conn, err := kalshi.NewDialer(kalshi.FeedConfig{URL: wsURL(srv)}, creds, nil).Dial(context.Background())
	require.NoError(t, err)
	defer conn.Close()

	h := <-headers
	assert.Equal(t, "key-123", h.Get("KALSHI-ACCESS-KEY"))
	assert.NotEmpty(t, h.Get("KALSHI-ACCESS-SIGNATURE"))
	assert.NotEmpty(t, h.Get("KALSHI-ACCESS-TIMESTAMP"))
}
