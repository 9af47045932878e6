package evaluator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdem-server/internal/deck"
)

func hand(cards ...deck.Card) HandRank {
	return Evaluate(cards)
}

func TestArgMaxPicksStrictlyStrongerHand(t *testing.T) {
	board := []deck.Card{
		deck.New(deck.Spade, deck.Ace), deck.New(deck.Diamond, deck.Four),
		deck.New(deck.Diamond, deck.Five), deck.New(deck.Diamond, deck.Six),
		deck.New(deck.Diamond, deck.Seven),
	}
	// h1 holds a fifth diamond in the Ace, making its flush Ace-high
	// (14,7,6,5,4); h2's fifth diamond is the Ten, making its flush only
	// Ten-high (10,7,6,5,4). h1 must win.
	h1 := hand(append(board, deck.New(deck.Heart, deck.Three), deck.New(deck.Diamond, deck.Ace))...)
	h2 := hand(append(board, deck.New(deck.Heart, deck.Ace), deck.New(deck.Diamond, deck.Ten))...)

	require.Equal(t, Flush, h1.Category())
	require.Equal(t, Flush, h2.Category())
	winners := ArgMax([]HandRank{h1, h2})
	assert.Equal(t, []int{0}, winners)
}

// TestFlushLosesOnLowestKicker exercises a showdown where every card but
// the bottom one matches; only the fifth (least significant) card decides
// the winner, which a shift-order or inversion bug in the tiebreak packing
// would get backwards without affecting any case where the top card differs.
func TestFlushLosesOnLowestKicker(t *testing.T) {
	board := []deck.Card{
		deck.New(deck.Diamond, deck.Five), deck.New(deck.Diamond, deck.Six),
		deck.New(deck.Diamond, deck.Seven), deck.New(deck.Diamond, deck.Eight),
		deck.New(deck.Heart, deck.King),
	}
	low := hand(append(board, deck.New(deck.Diamond, deck.Two), deck.New(deck.Heart, deck.Two))...)
	high := hand(append(board, deck.New(deck.Diamond, deck.Three), deck.New(deck.Heart, deck.Three))...)

	require.Equal(t, Flush, low.Category())
	require.Equal(t, Flush, high.Category())
	assert.Equal(t, 1, high.Compare(low))
	assert.Equal(t, []int{1}, ArgMax([]HandRank{low, high}))
}

// TestHighCardDecidedByNonTopKicker mirrors the flush case for the plain
// High Card category: the top card ties, a card below it decides.
func TestHighCardDecidedByNonTopKicker(t *testing.T) {
	low := hand(
		deck.New(deck.Club, deck.Ace), deck.New(deck.Spade, deck.King),
		deck.New(deck.Diamond, deck.Nine), deck.New(deck.Heart, deck.Seven),
		deck.New(deck.Club, deck.Two),
	)
	high := hand(
		deck.New(deck.Club, deck.Ace), deck.New(deck.Spade, deck.King),
		deck.New(deck.Diamond, deck.Nine), deck.New(deck.Heart, deck.Eight),
		deck.New(deck.Club, deck.Two),
	)

	require.Equal(t, HighCard, low.Category())
	require.Equal(t, HighCard, high.Category())
	assert.Equal(t, 1, high.Compare(low))
}

func TestBothPlayersPlayTheBoardFlush(t *testing.T) {
	board := []deck.Card{
		deck.New(deck.Diamond, deck.Two), deck.New(deck.Diamond, deck.Four),
		deck.New(deck.Diamond, deck.Five), deck.New(deck.Diamond, deck.Six),
		deck.New(deck.Diamond, deck.Seven),
	}
	h1 := hand(append(board, deck.New(deck.Heart, deck.Ace), deck.New(deck.Heart, deck.Seven))...)
	h2 := hand(append(board, deck.New(deck.Heart, deck.Two), deck.New(deck.Heart, deck.Five))...)

	assert.Equal(t, 0, h1.Compare(h2))
	assert.Equal(t, []int{0, 1}, ArgMax([]HandRank{h1, h2}))
}

func TestEvaluateIsDeterministic(t *testing.T) {
	cards := []deck.Card{
		deck.New(deck.Spade, deck.Ace), deck.New(deck.Spade, deck.King),
		deck.New(deck.Spade, deck.Queen), deck.New(deck.Spade, deck.Jack),
		deck.New(deck.Spade, deck.Ten), deck.New(deck.Club, deck.Two),
		deck.New(deck.Heart, deck.Three),
	}
	a := Evaluate(cards)
	b := Evaluate(cards)
	assert.Equal(t, a, b)
	assert.Equal(t, StraightFlush, a.Category())
}

func TestWheelStraight(t *testing.T) {
	cards := []deck.Card{
		deck.New(deck.Club, deck.Ace), deck.New(deck.Spade, deck.Two),
		deck.New(deck.Diamond, deck.Three), deck.New(deck.Heart, deck.Four),
		deck.New(deck.Club, deck.Five), deck.New(deck.Heart, deck.King),
		deck.New(deck.Heart, deck.Queen),
	}
	r := Evaluate(cards)
	assert.Equal(t, Straight, r.Category())
}

func TestCategoryOrdering(t *testing.T) {
	pair := hand(
		deck.New(deck.Club, deck.Two), deck.New(deck.Spade, deck.Two),
		deck.New(deck.Diamond, deck.Nine), deck.New(deck.Heart, deck.Jack),
		deck.New(deck.Club, deck.King),
	)
	highCard := hand(
		deck.New(deck.Club, deck.Two), deck.New(deck.Spade, deck.Five),
		deck.New(deck.Diamond, deck.Nine), deck.New(deck.Heart, deck.Jack),
		deck.New(deck.Club, deck.King),
	)
	assert.Equal(t, 1, pair.Compare(highCard))
}
