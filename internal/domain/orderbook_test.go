package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderBook_ReplaceComplementsNoSide(t *testing.T) {
	ob := NewOrderBook("T", "test")
	require.NoError(t, ob.Replace(
		[]Level{{Price: 40, Size: 10}, {Price: 42, Size: 5}},
		[]Level{{Price: 55, Size: 7}, {Price: 50, Size: 3}},
	))

	assert.Equal(t, QuoteOf(42), ob.BestBid())
	assert.Equal(t, QuoteOf(45), ob.BestAsk())
	assert.Equal(t, []Level{{42, 5}, {40, 10}}, ob.Bids())
	assert.Equal(t, []Level{{45, 7}, {50, 3}}, ob.Asks())
}

func TestOrderBook_ReplaceDropsZeroSizeLevels(t *testing.T) {
	ob := NewOrderBook("T", "test")
	require.NoError(t, ob.Replace([]Level{{Price: 40, Size: 0}}, nil))
	assert.Empty(t, ob.Bids())
	assert.Equal(t, NoQuote, ob.BestBid())
	assert.Equal(t, NoQuote, ob.BestAsk())
}

func TestOrderBook_ReplaceInvalidKeepsBook(t *testing.T) {
	ob := NewOrderBook("T", "test")
	require.NoError(t, ob.Replace([]Level{{Price: 40, Size: 1}}, nil))

	err := ob.Replace([]Level{{Price: 41, Size: 1}}, []Level{{Price: 120, Size: 1}})
	assert.ErrorIs(t, err, ErrBookInvalid)
	assert.Equal(t, []Level{{40, 1}}, ob.Bids())
}

func TestOrderBook_AdjustRemovesEmptyLevel(t *testing.T) {
	ob := NewOrderBook("T", "test")
	require.NoError(t, ob.Adjust(SideYes, 40, 5))
	require.NoError(t, ob.Adjust(SideYes, 40, -5))
	assert.Empty(t, ob.Bids())

	require.NoError(t, ob.Adjust(SideNo, 30, 2))
	assert.Equal(t, []Level{{70, 2}}, ob.Asks())
}

func TestOrderBook_AdjustNegativeRejected(t *testing.T) {
	ob := NewOrderBook("T", "test")
	require.NoError(t, ob.Adjust(SideYes, 40, 5))
	err := ob.Adjust(SideYes, 40, -6)
	assert.ErrorIs(t, err, ErrBookInvalid)
	assert.Equal(t, []Level{{40, 5}}, ob.Bids())
}

func TestOrderBook_CloneIsIndependent(t *testing.T) {
	ob := NewOrderBook("T", "test")
	ob.LastSeq = 9
	require.NoError(t, ob.Adjust(SideYes, 40, 5))

	c := ob.Clone()
	require.NoError(t, ob.Adjust(SideYes, 41, 1))

	assert.Equal(t, int64(9), c.LastSeq)
	assert.Equal(t, []Level{{40, 5}}, c.Bids())
	assert.False(t, c.SameLevels(ob))
}
