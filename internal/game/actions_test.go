package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedRand drives Shuffle deterministically: Intn always returns 0.
type fixedRand struct{}

func (fixedRand) Intn(n int) int { return 0 }

func newTestGame(t *testing.T, names ...string) *GameData {
	t.Helper()
	g := NewGame(DefaultSettings(), fixedRand{})
	for _, name := range names {
		require.NoError(t, g.NewUser(name))
		require.NoError(t, g.WaitlistUser(name))
	}
	return g
}

func totalMoney(g *GameData) float64 {
	total := g.Donations
	for _, u := range g.Spectators {
		total += float64(u.Money)
	}
	for _, u := range g.Waitlist {
		total += float64(u.Money)
	}
	for _, p := range g.Players {
		if p != nil {
			total += float64(p.Money)
		}
	}
	return total
}

func TestNotEnoughPlayersKeepsLobby(t *testing.T) {
	g := newTestGame(t, "solo")
	err := g.InitStart()
	var uerr *UserError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, NotEnoughPlayers, uerr.Kind)

	g.Step()
	assert.Equal(t, Lobby, g.Phase)
	g.Step()
	assert.Equal(t, Lobby, g.Phase)
}

func TestInitStartTwiceReportsAlreadyStarting(t *testing.T) {
	g := newTestGame(t, "a", "b")
	require.NoError(t, g.InitStart())
	err := g.InitStart()
	var uerr *UserError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, GameAlreadyStarting, uerr.Kind)
}

// runToTakeAction advances a freshly started game through SeatPlayers,
// MoveButton, CollectBlinds and Deal, landing in TakeAction.
func runToTakeAction(t *testing.T, g *GameData) {
	t.Helper()
	require.NoError(t, g.InitStart())
	for g.Phase != TakeAction {
		g.Step()
	}
}

func TestNextActionIdxAlwaysPointsAtAWaitingPlayer(t *testing.T) {
	g := newTestGame(t, "a", "b", "c")
	runToTakeAction(t, g)

	require.NotNil(t, g.NextActionIdx)
	p := g.Players[*g.NextActionIdx]
	require.NotNil(t, p)
	assert.Equal(t, Wait, p.State)

	// Walk the round to completion, checking the invariant after every
	// accepted action. Each actor calls if owed, else checks.
	for i := 0; i < 10 && g.Phase == TakeAction; i++ {
		idx := *g.NextActionIdx
		name := g.Players[idx].Name
		action := ActCheck
		if containsAction(g.LegalActions(idx), ActCall) {
			action = ActCall
		}
		require.NoError(t, g.TakeActionOp(name, Action{Kind: action}))
		if g.Phase == TakeAction {
			require.NotNil(t, g.NextActionIdx)
			assert.Equal(t, Wait, g.Players[*g.NextActionIdx].State)
		}
	}
}

func TestAllInThenFoldsConservesCurrencyAndPaysTheAllInSeat(t *testing.T) {
	g := newTestGame(t, "a", "b", "c")
	before := totalMoney(g)
	runToTakeAction(t, g)

	utgIdx := *g.NextActionIdx
	utgName := g.Players[utgIdx].Name
	utgMoneyBefore := g.Players[utgIdx].Money

	require.NoError(t, g.TakeActionOp(utgName, Action{Kind: ActAllIn}))

	for g.Phase == TakeAction {
		idx := *g.NextActionIdx
		name := g.Players[idx].Name
		_ = g.TakeActionOp(name, Action{Kind: ActFold})
	}

	for g.Phase != Lobby {
		g.Step()
	}

	after := totalMoney(g)
	assert.InDelta(t, before, after, 0.001, "conservation of currency across a full round")

	winner := g.findPlayer(utgName)
	require.NotNil(t, winner)
	assert.Greater(t, winner.Money, utgMoneyBefore, "the lone all-in survivor profits from the folded blinds")
}

func TestRaiseClampedToStackCollapsesToAllIn(t *testing.T) {
	g := newTestGame(t, "a", "b", "c")
	runToTakeAction(t, g)

	utgIdx := *g.NextActionIdx
	utgName := g.Players[utgIdx].Name
	numActiveBefore := g.NumActive

	// A raise far beyond the actor's stack must clamp to their full stack
	// and behave exactly like an explicit ActAllIn, not a disguised Raise.
	require.NoError(t, g.TakeActionOp(utgName, Action{Kind: ActRaise, Amount: 1_000_000}))

	p := g.findPlayer(utgName)
	require.NotNil(t, p)
	assert.Equal(t, AllIn, p.State)
	assert.Equal(t, uint32(0), p.Money)
	assert.Equal(t, numActiveBefore-1, g.NumActive)
}

func TestWaitlistUserRejectsInsufficientFunds(t *testing.T) {
	g := NewGame(DefaultSettings(), fixedRand{})
	require.NoError(t, g.NewUser("broke"))
	g.Spectators["broke"] = User{Name: "broke", Money: 1}

	err := g.WaitlistUser("broke")
	var uerr *UserError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, InsufficientFunds, uerr.Kind)
}

func TestShowHandOnlyLegalAfterShowdownOpens(t *testing.T) {
	g := newTestGame(t, "a", "b")
	err := g.ShowHandOp("a")
	var uerr *UserError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, CannotShowHand, uerr.Kind)
}
