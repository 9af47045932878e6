// Package reactor implements the non-blocking-from-the-driver's-perspective
// network front end described in §4.5: one goroutine owns every mutation of
// connection and token state, fed by per-connection reader/writer
// goroutines that do their blocking I/O on their own stacks. This is the
// idiomatic Go rendering of the spec's single-threaded event-loop
// requirement — a select loop as the sole mutator, with blocking reads and
// writes pushed onto dedicated goroutines instead of hand-rolled
// non-blocking syscalls.
package reactor

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/lox/holdem-server/internal/protocol"
	"github.com/lox/holdem-server/internal/session"
)

// Command is one decoded client frame, tagged with the token it arrived
// on, destined for the driver.
type Command struct {
	Token   session.Token
	Message protocol.ClientMessage
}

// Event is one server frame the driver wants delivered. With Broadcast set
// it goes to every confirmed connection; otherwise it targets Token.
// Confirm promotes Token from unconfirmed to confirmed before Message (if
// any) is delivered — the driver's signal that it accepted a Connect.
type Event struct {
	Token     session.Token
	Broadcast bool
	Confirm   bool
	Message   protocol.ServerMessage
}

// Settings bounds the reactor's backpressure and staleness behavior.
type Settings struct {
	ConnectTimeout          time.Duration
	MaxNetworkEventsPerUser int
	MaxUsers                int
	SweepInterval           time.Duration
}

func DefaultSettings() Settings {
	return Settings{
		ConnectTimeout:          30 * time.Second,
		MaxNetworkEventsPerUser: 64,
		MaxUsers:                50,
		SweepInterval:           1 * time.Second,
	}
}

type connection struct {
	token  session.Token
	connID uuid.UUID
	conn   net.Conn
	outbox chan protocol.ServerMessage
	cancel context.CancelFunc
}

// Reactor owns the listener and every live connection. All fields below
// are touched only from the run loop goroutine.
type Reactor struct {
	settings Settings
	logger   zerolog.Logger
	sessions *session.Manager

	listener net.Listener

	toDriver   chan<- Command
	fromDriver <-chan Event

	inbound      chan inboundFrame
	disconnected chan session.Token

	connections map[session.Token]*connection
}

type inboundFrame struct {
	token session.Token
	msg   protocol.ClientMessage
	err   error
}

// New constructs a Reactor bound to listener. toDriver carries decoded
// commands out; fromDriver is the driver's broadcast/unicast channel in,
// doubling as the cross-thread waker per §4.6.
func New(listener net.Listener, toDriver chan<- Command, fromDriver <-chan Event, logger zerolog.Logger, settings Settings) *Reactor {
	return &Reactor{
		settings:     settings,
		logger:       logger,
		sessions:     session.NewManager(settings.ConnectTimeout, nil),
		listener:     listener,
		toDriver:     toDriver,
		fromDriver:   fromDriver,
		inbound:      make(chan inboundFrame, 256),
		disconnected: make(chan session.Token, 64),
		connections:  make(map[session.Token]*connection),
	}
}

// Run drives the reactor until ctx is cancelled or the listener fails.
func (r *Reactor) Run(ctx context.Context) error {
	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return r.acceptLoop(ctx)
	})
	group.Go(func() error {
		r.eventLoop(ctx)
		return nil
	})

	return group.Wait()
}

func (r *Reactor) acceptLoop(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		_ = r.listener.Close()
	}()

	for {
		conn, err := r.listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		r.handleAccept(ctx, conn)
	}
}

func (r *Reactor) handleAccept(ctx context.Context, conn net.Conn) {
	token := r.sessions.NewToken()
	r.sessions.AssociateStream(token, conn)

	connCtx, cancel := context.WithCancel(ctx)
	c := &connection{
		token:  token,
		connID: uuid.New(),
		conn:   conn,
		outbox: make(chan protocol.ServerMessage, r.settings.MaxNetworkEventsPerUser),
		cancel: cancel,
	}
	r.connections[token] = c
	r.logger.Debug().Stringer("conn_id", c.connID).Str("remote", conn.RemoteAddr().String()).Msg("accepted connection")

	go r.readLoop(connCtx, c)
	go r.writeLoop(connCtx, c)
}

func (r *Reactor) readLoop(ctx context.Context, c *connection) {
	for {
		msg, err := protocol.ReadClientMessage(c.conn)
		if err != nil {
			select {
			case r.inbound <- inboundFrame{token: c.token, err: err}:
			case <-ctx.Done():
			}
			return
		}
		select {
		case r.inbound <- inboundFrame{token: c.token, msg: msg}:
		case <-ctx.Done():
			return
		}
	}
}

func (r *Reactor) writeLoop(ctx context.Context, c *connection) {
	for {
		select {
		case msg, ok := <-c.outbox:
			if !ok {
				return
			}
			if err := protocol.WriteServerMessage(c.conn, msg); err != nil {
				select {
				case r.disconnected <- c.token:
				case <-ctx.Done():
				}
				return
			}
			if msg.Kind == protocol.CmdClientError {
				select {
				case r.disconnected <- c.token:
				case <-ctx.Done():
				}
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// eventLoop is the sole mutator of r.sessions and r.connections.
func (r *Reactor) eventLoop(ctx context.Context) {
	ticker := time.NewTicker(r.settings.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.closeAll()
			return

		case frame := <-r.inbound:
			r.handleInbound(frame)

		case token := <-r.disconnected:
			r.evict(token, true)

		case ev := <-r.fromDriver:
			r.handleEvent(ev)

		case <-ticker.C:
			for _, expired := range r.sessions.SweepExpired() {
				r.logger.Debug().Uint32("token", uint32(expired.Token)).Msg("connect timeout, recycling token")
				if c, ok := r.connections[expired.Token]; ok {
					c.cancel()
					close(c.outbox)
					delete(r.connections, expired.Token)
				}
			}
		}
	}
}

func (r *Reactor) handleInbound(frame inboundFrame) {
	if frame.err != nil {
		r.evict(frame.token, true)
		return
	}

	msg := frame.msg
	if msg.Kind == protocol.CmdConnect {
		if err := r.sessions.AssociateUsername(frame.token, msg.Username); err != nil {
			r.sendClientError(frame.token, err)
			return
		}
	} else {
		name, err := r.sessions.UsernameOf(frame.token)
		if err != nil || name != msg.Username || !r.sessions.IsConfirmed(frame.token) {
			r.sendClientError(frame.token, errors.New("unassociated"))
			return
		}
	}

	select {
	case r.toDriver <- Command{Token: frame.token, Message: msg}:
	default:
		r.logger.Warn().Uint32("token", uint32(frame.token)).Msg("driver command channel full, evicting")
		r.evict(frame.token, true)
	}
}

func (r *Reactor) sendClientError(token session.Token, cause error) {
	kind := protocol.ErrUnassociated
	switch {
	case errors.Is(cause, session.ErrAlreadyAssociated):
		kind = protocol.ErrAlreadyAssociated
	case errors.Is(cause, session.ErrExpired):
		kind = protocol.ErrExpired
	case errors.Is(cause, session.ErrDoesNotExist):
		kind = protocol.ErrDoesNotExist
	}
	r.deliver(token, protocol.ServerMessage{Kind: protocol.CmdClientError, ClientError: kind})
}

func (r *Reactor) handleEvent(ev Event) {
	if ev.Confirm {
		_ = r.sessions.Confirm(ev.Token)
	}
	if ev.Broadcast {
		for token := range r.connections {
			if r.sessions.IsConfirmed(token) {
				r.deliver(token, ev.Message)
			}
		}
		return
	}
	r.deliver(ev.Token, ev.Message)
}

func (r *Reactor) deliver(token session.Token, msg protocol.ServerMessage) {
	c, ok := r.connections[token]
	if !ok {
		return
	}
	select {
	case c.outbox <- msg:
	default:
		r.logger.Warn().Uint32("token", uint32(token)).Stringer("conn_id", c.connID).Msg("outbound queue full, evicting")
		r.evict(token, true)
	}
}

// evict recycles a token's session state and, if it had a confirmed
// username, synthesizes a Leave command so the driver can clean up.
func (r *Reactor) evict(token session.Token, synthesizeLeave bool) {
	name, nameErr := r.sessions.UsernameOf(token)
	confirmed := r.sessions.IsConfirmed(token)

	if c, ok := r.connections[token]; ok {
		c.cancel()
		close(c.outbox)
		_ = c.conn.Close()
		delete(r.connections, token)
	}
	_, _ = r.sessions.Recycle(token)

	if synthesizeLeave && confirmed && nameErr == nil {
		select {
		case r.toDriver <- Command{Token: token, Message: protocol.ClientMessage{Username: name, Kind: protocol.CmdLeave}}:
		default:
		}
	}
}

func (r *Reactor) closeAll() {
	for token := range r.connections {
		r.evict(token, false)
	}
}
