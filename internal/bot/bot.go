// Package bot provides small reference NPC strategies used to exercise a
// running table end-to-end, in the spirit of the example bots shipped
// alongside the server: no learning, no search, just a fixed policy over
// the legal action set offered each turn.
package bot

import (
	"fmt"
	"math/rand"
	"net"

	"github.com/rs/zerolog"

	"github.com/lox/holdem-server/internal/protocol"
)

// Strategy picks one of the offered legal actions and, for a raise,
// names the amount to raise to.
type Strategy interface {
	Choose(legal []protocol.ActionKind, view protocol.GameViewWire, seat int32) protocol.Action
}

// RandomStrategy picks uniformly among the legal actions, raising to the
// minimum whenever it picks Raise.
type RandomStrategy struct {
	Rand *rand.Rand
}

func (s RandomStrategy) Choose(legal []protocol.ActionKind, view protocol.GameViewWire, seat int32) protocol.Action {
	if len(legal) == 0 {
		return protocol.Action{Kind: protocol.ActionFold}
	}
	pick := legal[s.Rand.Intn(len(legal))]
	amount := uint32(0)
	if pick == protocol.ActionRaise {
		amount = view.BigBlind * 2
	}
	return protocol.Action{Kind: pick, Amount: amount}
}

// CallingStationStrategy always checks or calls when possible, folding
// only when neither is offered and never raising.
type CallingStationStrategy struct{}

func (CallingStationStrategy) Choose(legal []protocol.ActionKind, view protocol.GameViewWire, seat int32) protocol.Action {
	for _, k := range legal {
		if k == protocol.ActionCheck {
			return protocol.Action{Kind: protocol.ActionCheck}
		}
	}
	for _, k := range legal {
		if k == protocol.ActionCall {
			return protocol.Action{Kind: protocol.ActionCall}
		}
	}
	return protocol.Action{Kind: protocol.ActionFold}
}

// Run connects name to the table over conn, joins the waitlist, and
// answers every turn signal with strategy's choice until conn closes or
// ctx-independent I/O fails. It blocks, so callers run it in a
// goroutine per bot.
func Run(conn net.Conn, name string, strategy Strategy, logger zerolog.Logger) error {
	if err := protocol.WriteClientMessage(conn, protocol.ClientMessage{Username: name, Kind: protocol.CmdConnect}); err != nil {
		return fmt.Errorf("bot %s: connect: %w", name, err)
	}

	var seat int32 = -1
	var lastView protocol.GameViewWire
	joined := false

	for {
		msg, err := protocol.ReadServerMessage(conn)
		if err != nil {
			return fmt.Errorf("bot %s: read: %w", name, err)
		}

		switch msg.Kind {
		case protocol.CmdAck:
			if msg.Ack.Kind == protocol.CmdConnect && !joined {
				joined = true
				if err := protocol.WriteClientMessage(conn, protocol.ClientMessage{Username: name, Kind: protocol.CmdChangeState, Play: true}); err != nil {
					return fmt.Errorf("bot %s: join waitlist: %w", name, err)
				}
			}

		case protocol.CmdGameView:
			lastView = msg.View
			for _, p := range msg.View.Players {
				if p.Name == name {
					seat = p.Seat
				}
			}

		case protocol.CmdTurnSignal:
			action := strategy.Choose(msg.LegalActions, lastView, seat)
			if err := protocol.WriteClientMessage(conn, protocol.ClientMessage{
				Username: name,
				Kind:     protocol.CmdTakeAction,
				Action:   action,
			}); err != nil {
				return fmt.Errorf("bot %s: take action: %w", name, err)
			}

		case protocol.CmdUserError:
			logger.Warn().Str("bot", name).Uint8("kind", uint8(msg.UserError)).Str("detail", msg.UserErrorValue).Msg("bot action rejected")

		case protocol.CmdClientError:
			return fmt.Errorf("bot %s: client error %d", name, msg.ClientError)
		}
	}
}
