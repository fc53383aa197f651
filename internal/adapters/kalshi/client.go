// Package kalshi implementa ports.Exchange y ports.FeedDialer sobre la API v2 de Kalshi.
package kalshi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

const (
	prodHTTPBase = "https://api.elections.kalshi.com/trade-api/v2"
	prodWSURL    = "wss://api.elections.kalshi.com/trade-api/ws/v2"
	demoHTTPBase = "https://demo-api.kalshi.co/trade-api/v2"
	demoWSURL    = "wss://demo-api.kalshi.co/trade-api/ws/v2"

	// Espaciado mínimo entre llamadas REST. Bloqueante, sin ráfagas.
	defaultMinSpacing = 100 * time.Millisecond

	maxRetries    = 3
	baseRetryWait = 500 * time.Millisecond
)

// Config selecciona el entorno y los hosts. Los campos vacíos toman los
// valores del entorno (prod por defecto).
type Config struct {
	Env        string // "prod" | "demo"
	HTTPBase   string
	WSURL      string
	MinSpacing time.Duration
	Timeout    time.Duration
}

func (c Config) withDefaults() Config {
	httpBase, wsURL := prodHTTPBase, prodWSURL
	if c.Env == "demo" {
		httpBase, wsURL = demoHTTPBase, demoWSURL
	}
	if c.HTTPBase == "" {
		c.HTTPBase = httpBase
	}
	if c.WSURL == "" {
		c.WSURL = wsURL
	}
	if c.MinSpacing <= 0 {
		c.MinSpacing = defaultMinSpacing
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	return c
}

// APIError es una respuesta HTTP >= 400 de Kalshi.
type APIError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("kalshi api error %d: %s", e.StatusCode, e.Message)
}

// IsRetryable indica si conviene reintentar (429 o 5xx).
func (e *APIError) IsRetryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// Client es el cliente REST de Kalshi con pacing fijo, retries y firma RSA-PSS.
type Client struct {
	cfg     Config
	http    *http.Client
	creds   *Credentials
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewClient crea un Client. creds puede ser nil: los endpoints de mercado son públicos.
func NewClient(cfg Config, creds *Credentials, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	cfg = cfg.withDefaults()
	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		creds:   creds,
		limiter: rate.NewLimiter(rate.Every(cfg.MinSpacing), 1),
		logger:  logger,
	}
}

// WSURL devuelve el endpoint websocket del entorno configurado.
func (c *Client) WSURL() string {
	return c.cfg.WSURL
}

// get hace un GET paced y con retries, y decodifica el JSON en out.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	body, err := c.doWithRetry(ctx, http.MethodGet, path, query)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// doWithRetry reintenta los errores de red y los APIError reintentables con
// backoff exponencial y jitter, respetando el contexto.
func (c *Client) doWithRetry(ctx context.Context, method, path string, query url.Values) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			wait := backoff(attempt)
			c.logger.Debug("retrying request", "attempt", attempt, "backoff", wait, "path", path, "err", lastErr)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		body, err := c.do(ctx, method, path, query)
		if err == nil {
			return body, nil
		}
		lastErr = err

		var apiErr *APIError
		if errors.As(err, &apiErr) && !apiErr.IsRetryable() {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if apiErr != nil && apiErr.StatusCode == http.StatusTooManyRequests {
			c.logger.Warn("rate limited by API", "attempt", attempt+1, "path", path)
		}
	}
	return nil, fmt.Errorf("request failed after %d retries: %w", maxRetries, lastErr)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values) ([]byte, error) {
	full := c.cfg.HTTPBase + path
	if len(query) > 0 {
		full += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, full, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.creds != nil {
		// Se firma el path completo (/trade-api/v2/...) sin query string.
		headers, err := c.creds.SignRequest(method, req.URL.Path)
		if err != nil {
			return nil, fmt.Errorf("sign request: %w", err)
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
			Body:       body,
		}
	}
	return body, nil
}

// backoff: base * 2^(attempt-1), con jitter de 0.5x a 1.5x.
func backoff(attempt int) time.Duration {
	d := baseRetryWait << (attempt - 1)
	return d/2 + time.Duration(rand.Int63n(int64(d)))
}
