package kalshi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/hgreenfield1/Kalshi/internal/domain"
	"github.com/hgreenfield1/Kalshi/internal/ports"
)

// Canales pedidos por cada suscripción.
var feedChannels = []string{"orderbook_delta", "fill"}

// FeedConfig configura las conexiones del WebSocket.
type FeedConfig struct {
	URL          string
	PingTimeout  time.Duration // sin pings del servidor durante este tiempo → conexión muerta
	WriteTimeout time.Duration
}

// Dialer implementa ports.FeedDialer.
type Dialer struct {
	cfg    FeedConfig
	creds  *Credentials
	logger *slog.Logger
}

// NewDialer crea un Dialer. Sin credenciales el handshake va sin firmar
// (solo sirve contra servidores de prueba; Kalshi exige firma).
func NewDialer(cfg FeedConfig, creds *Credentials, logger *slog.Logger) *Dialer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.URL == "" {
		cfg.URL = prodWSURL
	}
	if cfg.PingTimeout <= 0 {
		cfg.PingTimeout = 60 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}
	return &Dialer{cfg: cfg, creds: creds, logger: logger}
}

// Dial abre el WebSocket con las cabeceras firmadas sobre el path del feed.
func (d *Dialer) Dial(ctx context.Context) (ports.FeedConn, error) {
	header := http.Header{}
	if d.creds != nil {
		signed, err := d.creds.SignRequest(http.MethodGet, wsPath)
		if err != nil {
			return nil, fmt.Errorf("kalshi.Dial: %w", err)
		}
		for k, v := range signed {
			header.Set(k, v)
		}
	}

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	ws, resp, err := dialer.DialContext(ctx, d.cfg.URL, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("kalshi.Dial: handshake status %d: %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("kalshi.Dial: %w", err)
	}

	c := &feedConn{ws: ws, cfg: d.cfg, logger: d.logger}
	_ = ws.SetReadDeadline(time.Now().Add(d.cfg.PingTimeout))
	// El servidor manda pings; cada uno extiende el deadline de lectura.
	ws.SetPingHandler(func(data string) error {
		_ = ws.SetReadDeadline(time.Now().Add(d.cfg.PingTimeout))
		c.writeMu.Lock()
		defer c.writeMu.Unlock()
		return ws.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(time.Second))
	})
	d.logger.Debug("websocket connected", "url", d.cfg.URL)
	return c, nil
}

// feedConn es una conexión abierta. La usa una sola goroutine, salvo el
// ping handler que comparte writeMu.
type feedConn struct {
	ws     *websocket.Conn
	cfg    FeedConfig
	logger *slog.Logger

	writeMu sync.Mutex
	nextID  int64
}

// Subscribe manda un comando por ticker para que cada mercado tenga su
// propia secuencia.
func (c *feedConn) Subscribe(ctx context.Context, tickers []string) error {
	for _, t := range tickers {
		if err := ctx.Err(); err != nil {
			return err
		}
		c.nextID++
		cmd := command{
			ID:  c.nextID,
			Cmd: "subscribe",
			Params: subscribeParams{
				Channels:      feedChannels,
				MarketTickers: []string{t},
			},
		}
		if err := c.write(cmd); err != nil {
			return fmt.Errorf("kalshi.Subscribe %s: %w", t, err)
		}
	}
	return nil
}

func (c *feedConn) write(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

// Next bloquea hasta el próximo mensaje. Cancelar ctx cierra la conexión.
func (c *feedConn) Next(ctx context.Context) (domain.FeedEvent, error) {
	stop := context.AfterFunc(ctx, func() { _ = c.ws.Close() })
	defer stop()

	_, data, err := c.ws.ReadMessage()
	if err != nil {
		if ctx.Err() != nil {
			return domain.FeedEvent{}, ctx.Err()
		}
		return domain.FeedEvent{}, fmt.Errorf("kalshi.Next: read: %w", err)
	}
	ev, err := decodeEvent(data, time.Now())
	if err != nil {
		// Un mensaje ilegible no rompe la conexión: se reporta como FeedError.
		c.logger.Warn("undecodable feed message", "err", err, "bytes", len(data))
		return domain.FeedEvent{Kind: domain.FeedError, Type: ev.Type, Message: err.Error(), ReceivedAt: time.Now()}, nil
	}
	return ev, nil
}

// Close cierra la conexión con un close frame normal.
func (c *feedConn) Close() error {
	c.writeMu.Lock()
	_ = c.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	c.writeMu.Unlock()
	return c.ws.Close()
}
