// Package protocol defines the wire types exchanged between client and
// server, per §6: a ClientMessage stream flowing in and a ServerMessage
// stream flowing out, both framed as uint32_le length || msgpack payload.
package protocol

import (
	"github.com/lox/holdem-server/internal/deck"
	"github.com/lox/holdem-server/internal/game"
)

// ClientCommandKind tags which variant a ClientMessage carries.
type ClientCommandKind uint8

const (
	CmdConnect ClientCommandKind = iota
	CmdChangeState
	CmdLeave
	CmdShowHand
	CmdStartGame
	CmdTakeAction
)

// ActionKind mirrors game.ActionKind on the wire so internal/protocol
// never needs to import the driver's legality logic, only the vocabulary.
type ActionKind uint8

const (
	ActionFold ActionKind = iota
	ActionCheck
	ActionCall
	ActionRaise
	ActionAllIn
)

func FromGameActionKind(k game.ActionKind) ActionKind { return ActionKind(k) }
func (k ActionKind) ToGame() game.ActionKind           { return game.ActionKind(k) }

// Action is the payload of a TakeAction command.
type Action struct {
	Kind   ActionKind
	Amount uint32
}

// ClientMessage is the envelope every inbound frame carries: a username
// (for Connect, the name to associate with the connection) plus one command.
type ClientMessage struct {
	Username string
	Kind     ClientCommandKind
	Play     bool   // valid for CmdChangeState: true=Play, false=Spectate
	Action   Action // valid for CmdTakeAction
}

// ClientErrorKind is the closed, connection-fatal taxonomy of §7.
type ClientErrorKind uint8

const (
	ErrAlreadyAssociated ClientErrorKind = iota
	ErrDoesNotExist
	ErrExpired
	ErrUnassociated
)

// UserErrorKind mirrors game.UserErrorKind on the wire.
type UserErrorKind uint8

const (
	ErrCannotShowHand UserErrorKind = iota
	ErrCannotStartGame
	ErrCapacityReached
	ErrGameAlreadyInProgress
	ErrGameAlreadyStarting
	ErrInsufficientFunds
	ErrInvalidAction
	ErrInvalidBet
	ErrNotEnoughPlayers
	ErrOutOfTurnAction
	ErrUserAlreadyExists
	ErrUserDoesNotExist
	ErrUserNotPlaying
	ErrUserAlreadyShowingHand
)

// FromGameUserErrorKind maps the driver's domain enum onto the wire enum;
// the two are kept distinct so protocol never needs to import game's
// behavior, only agree on ordinal layout with it.
func FromGameUserErrorKind(k game.UserErrorKind) UserErrorKind { return UserErrorKind(k) }

// ServerCommandKind tags which variant a ServerMessage carries.
type ServerCommandKind uint8

const (
	CmdAck ServerCommandKind = iota
	CmdClientError
	CmdGameView
	CmdStatus
	CmdTurnSignal
	CmdUserError
)

// CardWire is a deck.Card flattened to two bytes for the wire.
type CardWire struct {
	Suit  uint8
	Value uint8
}

func cardToWire(c deck.Card) CardWire {
	return CardWire{Suit: uint8(c.Suit), Value: uint8(c.Value)}
}

func cardFromWire(w CardWire) deck.Card {
	return deck.New(deck.Suit(w.Suit), deck.Value(w.Value))
}

// PlayerViewWire is game.PlayerView flattened for transport; Hole is
// empty for any seat the recipient may not see.
type PlayerViewWire struct {
	Name  string
	Money uint32
	State uint8
	Seat  int32
	Hole  []CardWire
}

// GameViewWire is game.GameView flattened for transport.
type GameViewWire struct {
	Board         []CardWire
	PotSize       int64
	Players       []PlayerViewWire
	Spectators    []string
	Waitlist      []string
	SmallBlindIdx int32
	BigBlindIdx   int32
	HasNext       bool
	NextActionIdx int32
	SmallBlind    uint32
	BigBlind      uint32
}

// ToWire flattens a game.GameView for transport.
func ToWire(v game.GameView) GameViewWire {
	board := make([]CardWire, len(v.Board))
	for i, c := range v.Board {
		board[i] = cardToWire(c)
	}
	players := make([]PlayerViewWire, len(v.Players))
	for i, p := range v.Players {
		hole := make([]CardWire, len(p.Hole))
		for j, c := range p.Hole {
			hole[j] = cardToWire(c)
		}
		players[i] = PlayerViewWire{Name: p.Name, Money: p.Money, State: uint8(p.State), Seat: int32(p.Seat), Hole: hole}
	}
	w := GameViewWire{
		Board:         board,
		PotSize:       int64(v.PotSize),
		Players:       players,
		Spectators:    v.Spectators,
		Waitlist:      v.Waitlist,
		SmallBlindIdx: int32(v.SmallBlindIdx),
		BigBlindIdx:   int32(v.BigBlindIdx),
		SmallBlind:    v.SmallBlind,
		BigBlind:      v.BigBlind,
	}
	if v.NextActionIdx != nil {
		w.HasNext = true
		w.NextActionIdx = int32(*v.NextActionIdx)
	}
	return w
}

// ServerMessage is the envelope every outbound frame carries.
type ServerMessage struct {
	Kind ServerCommandKind

	Ack            ClientMessage
	ClientError    ClientErrorKind
	View           GameViewWire
	Status         string
	LegalActions   []ActionKind
	UserError      UserErrorKind
	UserErrorValue string
}
