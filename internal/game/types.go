package game

import "github.com/lox/holdem-server/internal/deck"

// MaxNameLength truncates usernames on join, per §3.
const MaxNameLength = 32

// PlayerState is a seated player's public status for the current hand.
type PlayerState int

const (
	Wait PlayerState = iota
	AllIn
	Fold
	Show
	Call
	Check
	Raise
)

func (s PlayerState) String() string {
	switch s {
	case Wait:
		return "Wait"
	case AllIn:
		return "AllIn"
	case Fold:
		return "Fold"
	case Show:
		return "Show"
	case Call:
		return "Call"
	case Check:
		return "Check"
	case Raise:
		return "Raise"
	default:
		return "Unknown"
	}
}

// acted reports whether s is one of the round-scoped states that get reset
// to Wait at the start of a new betting round (Call/Check/Raise), as
// opposed to a hand-scoped state (AllIn/Fold/Show) that persists.
func (s PlayerState) acted() bool {
	return s == Call || s == Check || s == Raise
}

// User is an identity with a bankroll; it exists independent of a seat,
// spanning the spectators/waitlist/players partitions named in §3.
type User struct {
	Name  string
	Money uint32
}

// Player is a User currently occupying a seat.
type Player struct {
	User
	State PlayerState
	Hole  []deck.Card
	Seat  int
}

func truncateName(name string) string {
	if len(name) <= MaxNameLength {
		return name
	}
	return name[:MaxNameLength]
}

// Settings bundles the table constants that UpdateBlinds and CollectBlinds
// read; all other phases are pure functions of GameData plus these.
type Settings struct {
	MaxPlayers     int
	MaxUsers       int
	BuyIn          uint32
	MinSmallBlind  uint32
	MinBigBlind    uint32
	ConnectTimeout int // seconds, consumed by the session manager
	StepTimeout    int // seconds, default 5
	ActionTimeout  int // seconds, default 30
}

// DefaultSettings mirrors the values named in §6/§8's worked examples.
func DefaultSettings() Settings {
	return Settings{
		MaxPlayers:     9,
		MaxUsers:       50,
		BuyIn:          200,
		MinSmallBlind:  5,
		MinBigBlind:    10,
		ConnectTimeout: 30,
		StepTimeout:    5,
		ActionTimeout:  30,
	}
}
