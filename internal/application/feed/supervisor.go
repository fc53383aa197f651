package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hgreenfield1/Kalshi/internal/domain"
	"github.com/hgreenfield1/Kalshi/internal/ports"
)

// State is the connection state of the supervisor.
type State int32

const (
	Disconnected State = iota
	Connecting
	Subscribing
	Streaming
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Subscribing:
		return "subscribing"
	case Streaming:
		return "streaming"
	default:
		return "disconnected"
	}
}

// ErrTooManyDialFailures is returned by Run once MaxDialFailures consecutive dials fail.
var ErrTooManyDialFailures = errors.New("too many consecutive dial failures")

// Config holds the supervisor settings.
type Config struct {
	Tickers         []string
	Backoff         time.Duration // fixed delay before every reconnect
	MaxDialFailures int           // 0 = retry forever
}

// Supervisor owns the feed connection: dial, subscribe, stream into the
// synchronizer, and on any error or sequence gap discard the books and
// reconnect after a fixed backoff.
type Supervisor struct {
	cfg     Config
	dialer  ports.FeedDialer
	logger  *slog.Logger
	metrics ports.Metrics

	mu     sync.RWMutex
	books  *Synchronizer
	state  State
	notify map[string]chan struct{}
}

// NewSupervisor creates a supervisor for the given tickers.
func NewSupervisor(dialer ports.FeedDialer, cfg Config, logger *slog.Logger, metrics ports.Metrics) *Supervisor {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = time.Second
	}
	notify := make(map[string]chan struct{}, len(cfg.Tickers))
	for _, t := range cfg.Tickers {
		notify[t] = make(chan struct{}, 1)
	}
	return &Supervisor{
		cfg:     cfg,
		dialer:  dialer,
		logger:  logger.With("component", "feed"),
		metrics: metrics,
		books:   NewSynchronizer("kalshi"),
		notify:  notify,
	}
}

// Changed returns the coalesced "book changed" signal for a ticker.
// At most one notification is pending; a consumer that wakes up must read
// the latest book via Book. Returns nil for unknown tickers.
func (s *Supervisor) Changed(ticker string) <-chan struct{} {
	return s.notify[ticker]
}

// Book returns a copy of the current book, or false while there is no
// fresh snapshot (not connected yet, resyncing, or stale after a gap).
func (s *Supervisor) Book(ticker string) (*domain.OrderBook, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != Streaming {
		return nil, false
	}
	return s.books.Book(ticker)
}

// State returns the current connection state.
func (s *Supervisor) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Run keeps the feed alive until ctx is cancelled. It only returns early
// when MaxDialFailures consecutive dials fail.
func (s *Supervisor) Run(ctx context.Context) error {
	failures := 0
	for {
		dialed, err := s.session(ctx)
		s.reset()
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if dialed {
			failures = 0
		} else {
			failures++
			if s.cfg.MaxDialFailures > 0 && failures >= s.cfg.MaxDialFailures {
				return fmt.Errorf("feed.Run: %d dials: %w: %v", failures, ErrTooManyDialFailures, err)
			}
		}

		switch {
		case errors.Is(err, domain.ErrFeedGap):
			s.logger.Warn("feed gap, resyncing", "err", err)
		case errors.Is(err, domain.ErrBookInvalid):
			s.logger.Warn("invalid book update, resyncing", "err", err)
		default:
			s.logger.Warn("feed disconnected", "err", err, "dial_failures", failures)
		}
		s.metrics.Reconnect()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.cfg.Backoff):
		}
	}
}

// session runs one connection until it fails. dialed reports whether the
// dial itself succeeded.
func (s *Supervisor) session(ctx context.Context) (dialed bool, err error) {
	s.setState(Connecting)
	conn, err := s.dialer.Dial(ctx)
	if err != nil {
		return false, fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	s.setState(Subscribing)
	if err := conn.Subscribe(ctx, s.cfg.Tickers); err != nil {
		return true, fmt.Errorf("subscribe: %w", err)
	}
	s.setState(Streaming)
	s.logger.Info("feed streaming", "tickers", len(s.cfg.Tickers))

	for {
		ev, err := conn.Next(ctx)
		if err != nil {
			return true, fmt.Errorf("read: %w", err)
		}
		s.metrics.FeedEvent(ev.Kind.String())

		switch ev.Kind {
		case domain.FeedSnapshot, domain.FeedDelta:
			if err := s.apply(ev); err != nil {
				if errors.Is(err, domain.ErrFeedGap) {
					s.metrics.FeedGap(ev.Ticker)
				}
				return true, err
			}
		case domain.FeedError:
			s.logger.Warn("feed error message", "msg", ev.Message)
		case domain.FeedSubscribed:
			s.logger.Debug("subscribed", "msg", ev.Message)
		}
	}
}

func (s *Supervisor) apply(ev domain.FeedEvent) error {
	s.mu.Lock()
	changed, err := s.books.Apply(ev)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	if changed {
		s.signal(ev.Ticker)
	}
	return nil
}

// signal raises the edge-triggered notification without blocking.
func (s *Supervisor) signal(ticker string) {
	ch, ok := s.notify[ticker]
	if !ok {
		return
	}
	select {
	case ch <- struct{}{}:
	default:
	}
}

func (s *Supervisor) reset() {
	s.mu.Lock()
	s.books.Reset()
	s.state = Disconnected
	s.mu.Unlock()
	s.metrics.FeedState(Disconnected.String())
}

func (s *Supervisor) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
	s.metrics.FeedState(st.String())
}
