package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPotTotalTracksEveryAmountPassedIn(t *testing.T) {
	ps := NewPotStack()
	require.NoError(t, ps.Bet(0, Bet{Kind: BetRaise, Amount: 10}))
	require.NoError(t, ps.Bet(1, Bet{Kind: BetCall, Amount: 10}))
	require.NoError(t, ps.Bet(0, Bet{Kind: BetRaise, Amount: 20}))
	require.NoError(t, ps.Bet(1, Bet{Kind: BetCall, Amount: 20}))
	assert.Equal(t, 60, ps.Total())
}

func TestAllInThenLargerAllInRaiseSpawnsSidePot(t *testing.T) {
	ps := NewPotStack()
	// Seat 0 goes all-in for 200.
	require.NoError(t, ps.Bet(0, Bet{Kind: BetAllIn, Amount: 200}))
	require.Equal(t, 200, ps.Top().Call)

	// Seat 1 re-raises all-in to 600: 200 matches the original call, 400
	// overflows into a freshly spawned side pot.
	require.NoError(t, ps.Bet(1, Bet{Kind: BetAllIn, Amount: 600}))

	require.Len(t, ps.Layers(), 2)
	main := ps.Layers()[0]
	side := ps.Layers()[1]

	assert.Equal(t, 200, main.Call, "original pot's call is unchanged by the overflow")
	assert.Equal(t, 200, main.Investments[0])
	assert.Equal(t, 200, main.Investments[1])
	assert.Equal(t, 400, side.Investments[1])

	total := main.Investments[1] + side.Investments[1]
	assert.Equal(t, 600, total, "seat 1's cumulative investment across both pots equals their cumulative bet")
	assert.Equal(t, 800, ps.Total())
}

func TestAllInThenLargerRaiseSpawnsSidePot(t *testing.T) {
	ps := NewPotStack()
	// Seat 0 goes all-in for 200 against a deeper-stacked seat 1.
	require.NoError(t, ps.Bet(0, Bet{Kind: BetAllIn, Amount: 200}))
	require.Equal(t, 200, ps.Top().Call)

	// Seat 1 raises (not an all-in) to 600: the 200 seat 0 is capped at
	// stays in the main pot, the 400 overflow must spawn a side pot rather
	// than simply lifting the shared call.
	require.NoError(t, ps.Bet(1, Bet{Kind: BetRaise, Amount: 600}))

	require.Len(t, ps.Layers(), 2)
	main := ps.Layers()[0]
	side := ps.Layers()[1]

	assert.Equal(t, 200, main.Call, "a capped seat's pot never absorbs a plain raise's overflow")
	assert.Equal(t, 200, main.Investments[0])
	assert.Equal(t, 200, main.Investments[1])
	assert.Equal(t, 400, side.Investments[1])
	assert.Equal(t, 400, side.Call)
	assert.Equal(t, 800, ps.Total())
}

func TestShortAllInDoesNotRaiseCall(t *testing.T) {
	ps := NewPotStack()
	require.NoError(t, ps.Bet(0, Bet{Kind: BetRaise, Amount: 100}))
	require.NoError(t, ps.Bet(1, Bet{Kind: BetAllIn, Amount: 40}))
	assert.Equal(t, 100, ps.Top().Call)
	assert.Equal(t, 40, ps.Top().Investments[1])
}

func TestCallMustMatchExactly(t *testing.T) {
	ps := NewPotStack()
	require.NoError(t, ps.Bet(0, Bet{Kind: BetRaise, Amount: 50}))
	err := ps.Bet(1, Bet{Kind: BetCall, Amount: 40})
	assert.ErrorIs(t, err, ErrInvalidBet)
}

func TestRaiseBelowMinimumIsRejected(t *testing.T) {
	ps := NewPotStack()
	require.NoError(t, ps.Bet(0, Bet{Kind: BetRaise, Amount: 10}))
	require.NoError(t, ps.Bet(1, Bet{Kind: BetCall, Amount: 10}))
	// Minimum re-raise from seat 0 (prior 10, call 10) is to 20.
	err := ps.Bet(0, Bet{Kind: BetRaise, Amount: 5})
	assert.ErrorIs(t, err, ErrInvalidBet)
}
