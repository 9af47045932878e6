// Package driver implements the game loop described in §4.6: the single
// goroutine that owns the game.GameData, turns reactor.Command traffic
// into game operations, runs the state machine forward between commands,
// and broadcasts the result. It is the only writer of the live game state.
package driver

import (
	"context"
	"fmt"
	"time"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"

	"github.com/lox/holdem-server/internal/game"
	"github.com/lox/holdem-server/internal/protocol"
	"github.com/lox/holdem-server/internal/reactor"
	"github.com/lox/holdem-server/internal/session"
)

// Driver owns state and is the sole writer to it; everything it learns
// about connections comes from the Command stream and everything it
// tells the network comes from the Event stream, per §5's separation.
type Driver struct {
	state  *game.GameData
	clock  quartz.Clock
	logger zerolog.Logger

	in  <-chan reactor.Command
	out chan<- reactor.Event

	tokenByUser map[string]session.Token

	lastStatus string

	actionTimer *quartz.Timer
	actionName  string
}

// New builds a Driver around state. A nil clock defaults to the real
// wall clock; tests inject quartz.NewMock to control turn timeouts
// deterministically.
func New(state *game.GameData, in <-chan reactor.Command, out chan<- reactor.Event, logger zerolog.Logger, clock quartz.Clock) *Driver {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &Driver{
		state:       state,
		clock:       clock,
		logger:      logger,
		in:          in,
		out:         out,
		tokenByUser: make(map[string]session.Token),
	}
}

// Run drives the game until ctx is cancelled. It processes one command at
// a time, then pumps the state machine forward as far as it can go
// without further input, broadcasting whatever changed.
func (d *Driver) Run(ctx context.Context) error {
	stepPeriod := time.Duration(d.state.Settings.StepTimeout) * time.Second
	ticker := d.clock.NewTicker(stepPeriod, "driver-step")
	defer ticker.Stop()

	d.broadcastAll()

	for {
		select {
		case <-ctx.Done():
			return nil

		case cmd := <-d.in:
			d.dispatch(cmd)
			d.pump()

		case <-d.actionTimerChan():
			d.expireAction()
			d.pump()

		case <-ticker.C:
			d.pump()
		}
	}
}

func (d *Driver) actionTimerChan() <-chan time.Time {
	if d.actionTimer == nil {
		return nil
	}
	return d.actionTimer.C
}

// dispatch applies one client command to the game and reports the
// outcome to its originator: an Ack on success, a UserError otherwise.
// Connect additionally confirms the token so the reactor starts treating
// it as a live player/spectator rather than a handshake in progress.
func (d *Driver) dispatch(cmd reactor.Command) {
	msg := cmd.Message
	var err error

	switch msg.Kind {
	case protocol.CmdConnect:
		err = d.state.NewUser(msg.Username)
		if err == nil {
			d.tokenByUser[msg.Username] = cmd.Token
			d.out <- reactor.Event{Token: cmd.Token, Confirm: true, Message: protocol.ServerMessage{Kind: protocol.CmdAck, Ack: msg}}
			return
		}

	case protocol.CmdChangeState:
		if msg.Play {
			err = d.state.WaitlistUser(msg.Username)
		} else {
			err = d.state.SpectateUser(msg.Username)
		}

	case protocol.CmdLeave:
		err = d.state.RemoveUser(msg.Username)
		delete(d.tokenByUser, msg.Username)

	case protocol.CmdShowHand:
		err = d.state.ShowHandOp(msg.Username)

	case protocol.CmdStartGame:
		err = d.state.InitStart()

	case protocol.CmdTakeAction:
		err = d.state.TakeActionOp(msg.Username, game.Action{
			Kind:   msg.Action.Kind.ToGame(),
			Amount: int(msg.Action.Amount),
		})

	default:
		err = fmt.Errorf("driver: unknown command kind %d", msg.Kind)
	}

	if err != nil {
		d.sendUserError(cmd.Token, err)
		return
	}
	d.out <- reactor.Event{Token: cmd.Token, Message: protocol.ServerMessage{Kind: protocol.CmdAck, Ack: msg}}
}

func (d *Driver) sendUserError(token session.Token, err error) {
	ue, ok := err.(*game.UserError)
	if !ok {
		d.logger.Error().Err(err).Msg("unexpected non-UserError from game operation")
		return
	}
	d.out <- reactor.Event{Token: token, Message: protocol.ServerMessage{
		Kind:           protocol.CmdUserError,
		UserError:      protocol.FromGameUserErrorKind(ue.Kind),
		UserErrorValue: ue.Detail,
	}}
}

// pump runs Step repeatedly until the machine needs either a command
// (TakeAction with an actor waiting) or the next step tick (Lobby with
// no start requested), broadcasting every phase change as it goes and
// arming the per-seat action timer whenever a new actor comes on.
func (d *Driver) pump() {
	for {
		before := d.state.Phase
		if before == game.Lobby && !d.state.StartRequested {
			break
		}
		if before == game.TakeAction {
			break
		}
		d.state.Step()
		if d.state.Phase != before {
			d.broadcastAll()
		}
		if d.state.Phase == game.TakeAction {
			break
		}
	}

	if d.state.Phase == game.TakeAction && d.state.NextActionIdx != nil {
		d.armActionTimer(*d.state.NextActionIdx)
	} else {
		d.disarmActionTimer()
	}
}

func (d *Driver) armActionTimer(seat int) {
	p := d.state.Players[seat]
	if p == nil {
		return
	}
	if d.actionName == p.Name && d.actionTimer != nil {
		return // same actor already has a live timer running
	}
	d.disarmActionTimer()
	d.actionName = p.Name
	timeout := time.Duration(d.state.Settings.ActionTimeout) * time.Second
	d.actionTimer = d.clock.NewTimer(timeout, "action-timeout")

	if token, ok := d.tokenByUser[p.Name]; ok {
		d.out <- reactor.Event{Token: token, Message: protocol.ServerMessage{
			Kind:         protocol.CmdTurnSignal,
			LegalActions: wireActions(d.state.LegalActions(seat)),
		}}
	}
}

func (d *Driver) disarmActionTimer() {
	if d.actionTimer != nil {
		d.actionTimer.Stop()
		d.actionTimer = nil
	}
	d.actionName = ""
}

// expireAction enforces the turn clock: the seat on the clock folds and
// is queued for removal, exactly as an explicit Leave would do.
func (d *Driver) expireAction() {
	name := d.actionName
	d.disarmActionTimer()
	if name == "" {
		return
	}
	d.logger.Info().Str("user", name).Msg("action timed out, folding and removing")
	if err := d.state.TakeActionOp(name, game.Action{Kind: game.ActFold}); err != nil {
		d.logger.Warn().Err(err).Str("user", name).Msg("auto-fold on timeout rejected")
	}
	if err := d.state.RemoveUser(name); err != nil {
		d.logger.Warn().Err(err).Str("user", name).Msg("auto-leave on timeout rejected")
	}
	if token, ok := d.tokenByUser[name]; ok {
		delete(d.tokenByUser, name)
		d.out <- reactor.Event{Token: token, Message: protocol.ServerMessage{Kind: protocol.CmdStatus, Status: "removed: action timeout"}}
	}
}

// broadcastAll ships a status line (if the phase changed) and a
// per-viewer game view to every known user.
func (d *Driver) broadcastAll() {
	status := d.state.Phase.String()
	if status != d.lastStatus {
		d.lastStatus = status
		d.out <- reactor.Event{Broadcast: true, Message: protocol.ServerMessage{Kind: protocol.CmdStatus, Status: status}}
	}
	for name, token := range d.tokenByUser {
		view := protocol.ToWire(d.state.View(name))
		d.out <- reactor.Event{Token: token, Message: protocol.ServerMessage{Kind: protocol.CmdGameView, View: view}}
	}
}

func wireActions(kinds []game.ActionKind) []protocol.ActionKind {
	out := make([]protocol.ActionKind, len(kinds))
	for i, k := range kinds {
		out[i] = protocol.FromGameActionKind(k)
	}
	return out
}
