package feed_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hgreenfield1/Kalshi/internal/application/feed"
	"github.com/hgreenfield1/Kalshi/internal/domain"
)

const ticker = "KXMLBGAME-25JUN13ATHKC-KC"

func seeded(t *testing.T, seq int64) *feed.Synchronizer {
	t.Helper()
	s := feed.NewSynchronizer("test")
	require.NoError(t, s.ApplySnapshot(ticker,
		[]domain.Level{{Price: 40, Size: 10}, {Price: 38, Size: 4}},
		[]domain.Level{{Price: 57, Size: 6}},
		seq))
	return s
}

func TestSynchronizer_SnapshotThenDeltas(t *testing.T) {
	s := seeded(t, 4)
	require.NoError(t, s.ApplyDelta(ticker, domain.SideYes, 41, 3, 5))
	require.NoError(t, s.ApplyDelta(ticker, domain.SideNo, 57, -6, 6))
	require.NoError(t, s.ApplyDelta(ticker, domain.SideNo, 55, 2, 7))

	ob, ok := s.Book(ticker)
	require.True(t, ok)
	assert.Equal(t, domain.QuoteOf(41), ob.BestBid())
	assert.Equal(t, domain.QuoteOf(45), ob.BestAsk())
	assert.Equal(t, int64(7), ob.LastSeq)
}

func TestSynchronizer_DeltasConvergeToSnapshot(t *testing.T) {
	s := seeded(t, 10)
	deltas := []struct {
		side  domain.Side
		price int
		delta int
	}{
		{domain.SideYes, 40, -10},
		{domain.SideYes, 42, 5},
		{domain.SideNo, 57, -2},
		{domain.SideNo, 60, 8},
		{domain.SideYes, 38, 1},
	}
	for i, d := range deltas {
		require.NoError(t, s.ApplyDelta(ticker, d.side, d.price, d.delta, int64(11+i)))
	}
	got, ok := s.Book(ticker)
	require.True(t, ok)

	want := feed.NewSynchronizer("test")
	require.NoError(t, want.ApplySnapshot(ticker,
		[]domain.Level{{Price: 42, Size: 5}, {Price: 38, Size: 5}},
		[]domain.Level{{Price: 57, Size: 4}, {Price: 60, Size: 8}},
		15))
	wantBook, _ := want.Book(ticker)

	assert.True(t, got.SameLevels(wantBook), "bids=%v asks=%v", got.Bids(), got.Asks())
}

func TestSynchronizer_GapDoesNotMutate(t *testing.T) {
	s := seeded(t, 4)
	require.NoError(t, s.ApplyDelta(ticker, domain.SideYes, 40, 1, 5))
	require.NoError(t, s.ApplyDelta(ticker, domain.SideYes, 40, 1, 6))
	before, _ := s.Peek(ticker)

	err := s.ApplyDelta(ticker, domain.SideYes, 40, 1, 8)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrFeedGap))
	var gap *domain.FeedGapError
	require.ErrorAs(t, err, &gap)
	assert.Equal(t, int64(7), gap.Expected)
	assert.Equal(t, int64(8), gap.Got)

	after, _ := s.Peek(ticker)
	assert.True(t, before.SameLevels(after))
	assert.Equal(t, int64(6), after.LastSeq)

	_, ok := s.Book(ticker)
	assert.False(t, ok, "book is stale after a gap")
}

func TestSynchronizer_OneGapPerGap(t *testing.T) {
	s := seeded(t, 1)
	err := s.ApplyDelta(ticker, domain.SideYes, 40, 1, 3)
	assert.ErrorIs(t, err, domain.ErrFeedGap)

	// later deltas are rejected as stale, not as new gaps
	err = s.ApplyDelta(ticker, domain.SideYes, 40, 1, 4)
	assert.ErrorIs(t, err, feed.ErrStale)
	assert.NotErrorIs(t, err, domain.ErrFeedGap)

	// a fresh snapshot clears it
	require.NoError(t, s.ApplySnapshot(ticker, nil, nil, 20))
	require.NoError(t, s.ApplyDelta(ticker, domain.SideYes, 40, 1, 21))
}

func TestSynchronizer_DuplicateAndRegression(t *testing.T) {
	for _, seq := range []int64{6, 3} {
		s := seeded(t, 6)
		err := s.ApplyDelta(ticker, domain.SideYes, 40, 1, seq)
		assert.ErrorIs(t, err, domain.ErrFeedGap, "seq %d", seq)
	}
}

func TestSynchronizer_DeltaBeforeSnapshot(t *testing.T) {
	s := feed.NewSynchronizer("test")
	err := s.ApplyDelta(ticker, domain.SideYes, 40, 1, 1)
	assert.ErrorIs(t, err, domain.ErrFeedGap)
}

func TestSynchronizer_SnapshotWithoutSeqAcceptsFirstDelta(t *testing.T) {
	s := seeded(t, 0)
	require.NoError(t, s.ApplyDelta(ticker, domain.SideYes, 40, 1, 77))
	require.NoError(t, s.ApplyDelta(ticker, domain.SideYes, 40, 1, 78))
	assert.ErrorIs(t, s.ApplyDelta(ticker, domain.SideYes, 40, 1, 80), domain.ErrFeedGap)
}

func TestSynchronizer_NegativeSizeMarksStale(t *testing.T) {
	s := seeded(t, 1)
	err := s.ApplyDelta(ticker, domain.SideYes, 40, -11, 2)
	assert.ErrorIs(t, err, domain.ErrBookInvalid)
	ob, _ := s.Peek(ticker)
	assert.Equal(t, domain.QuoteOf(40), ob.BestBid())
	assert.Equal(t, int64(1), ob.LastSeq)
}

func TestSynchronizer_Apply(t *testing.T) {
	s := feed.NewSynchronizer("test")
	changed, err := s.Apply(domain.FeedEvent{Kind: domain.FeedSubscribed})
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = s.Apply(domain.FeedEvent{Kind: domain.FeedSnapshot, Ticker: ticker, Seq: 1,
		Yes: []domain.Level{{Price: 30, Size: 1}}})
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = s.Apply(domain.FeedEvent{Kind: domain.FeedDelta, Ticker: ticker, Seq: 2,
		Side: domain.SideYes, Price: 31, Delta: 2})
	require.NoError(t, err)
	assert.True(t, changed)

	s.Reset()
	_, ok := s.Book(ticker)
	assert.False(t, ok)
}
