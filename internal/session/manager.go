// Package session implements the bidirectional token↔username manager
// described in §4.4: stable handle allocation for a small fixed fleet of
// TCP clients, with an unconfirmed→confirmed lifecycle and expiration-based
// recycling.
package session

import (
	"container/heap"
	"errors"
	"net"
	"time"
)

// Token is an opaque stable handle for a connected TCP stream. 0 and 1 are
// reserved for the listener and the cross-thread waker and are never
// issued by new_token.
type Token uint32

const (
	ListenerToken Token = 0
	WakerToken    Token = 1
	firstToken    Token = 2
)

var (
	// ErrAlreadyAssociated covers both associate_username failure modes:
	// the token already has a username, or the name is already taken.
	ErrAlreadyAssociated = errors.New("session: already associated")
	ErrExpired           = errors.New("session: token expired")
	ErrUnassociated      = errors.New("session: token has no username")
	ErrDoesNotExist      = errors.New("session: no such token or username")
)

type lifecycle int

const (
	unconfirmed lifecycle = iota
	confirmed
)

type entry struct {
	token       Token
	username    string
	stream      net.Conn
	state       lifecycle
	connectedAt time.Time
}

// Clock abstracts time.Now so tests can drive connect-timeout sweeping
// deterministically without sleeping.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Manager is the token/username table. All methods are safe only when
// called from a single goroutine (the reactor), matching §5's "not
// interleaved on the same mutable data" model; Manager itself does not
// lock.
type Manager struct {
	clock          Clock
	connectTimeout time.Duration

	byToken    map[Token]*entry
	byUsername map[string]*entry
	recycled   recycledHeap
	nextFresh  Token
}

// NewManager returns an empty manager. connectTimeout bounds how long an
// unconfirmed token may go without an associated+confirmed username.
func NewManager(connectTimeout time.Duration, clock Clock) *Manager {
	if clock == nil {
		clock = realClock{}
	}
	return &Manager{
		clock:          clock,
		connectTimeout: connectTimeout,
		byToken:        make(map[Token]*entry),
		byUsername:     make(map[string]*entry),
		nextFresh:      firstToken,
	}
}

// NewToken allocates a fresh token: the smallest recycled token if one is
// available, else one past the current maximum ever issued.
func (m *Manager) NewToken() Token {
	if m.recycled.Len() > 0 {
		return heap.Pop(&m.recycled).(Token)
	}
	t := m.nextFresh
	m.nextFresh++
	return t
}

// AssociateStream records token as unconfirmed with no username yet.
func (m *Manager) AssociateStream(token Token, stream net.Conn) {
	m.byToken[token] = &entry{
		token:       token,
		stream:      stream,
		state:       unconfirmed,
		connectedAt: m.clock.Now(),
	}
}

// AssociateUsername moves an unconfirmed token into the pending-username
// state. Fails ErrAlreadyAssociated if the token already carries a
// username or the requested name is taken by anyone, confirmed or not;
// fails ErrExpired if the token is unknown (already recycled).
func (m *Manager) AssociateUsername(token Token, name string) error {
	e, ok := m.byToken[token]
	if !ok {
		return ErrExpired
	}
	if e.username != "" {
		return ErrAlreadyAssociated
	}
	if _, taken := m.byUsername[name]; taken {
		return ErrAlreadyAssociated
	}
	e.username = name
	m.byUsername[name] = e
	return nil
}

// Confirm promotes token+username from unconfirmed to confirmed. Called
// only after the driver has accepted the Connect command for this token.
func (m *Manager) Confirm(token Token) error {
	e, ok := m.byToken[token]
	if !ok {
		return ErrExpired
	}
	e.state = confirmed
	return nil
}

// StreamOf returns the net.Conn bound to token.
func (m *Manager) StreamOf(token Token) (net.Conn, error) {
	e, ok := m.byToken[token]
	if !ok {
		return nil, ErrDoesNotExist
	}
	return e.stream, nil
}

// TokenOf resolves a confirmed or pending username back to its token.
func (m *Manager) TokenOf(username string) (Token, error) {
	e, ok := m.byUsername[username]
	if !ok {
		return 0, ErrDoesNotExist
	}
	return e.token, nil
}

// UsernameOf returns the username bound to token, or ErrUnassociated if
// the token has no username yet.
func (m *Manager) UsernameOf(token Token) (string, error) {
	e, ok := m.byToken[token]
	if !ok {
		return "", ErrDoesNotExist
	}
	if e.username == "" {
		return "", ErrUnassociated
	}
	return e.username, nil
}

// IsConfirmed reports whether token has completed the Connect handshake.
func (m *Manager) IsConfirmed(token Token) bool {
	e, ok := m.byToken[token]
	return ok && e.state == confirmed
}

// Recycle removes every mapping for token (and its username, if any) and
// returns the stream so the reactor can deregister it.
func (m *Manager) Recycle(token Token) (net.Conn, error) {
	e, ok := m.byToken[token]
	if !ok {
		return nil, ErrDoesNotExist
	}
	delete(m.byToken, token)
	if e.username != "" {
		delete(m.byUsername, e.username)
	}
	heap.Push(&m.recycled, token)
	return e.stream, nil
}

// Expired is one (token, stream) pair whose unconfirmed age has reached
// the connect timeout.
type Expired struct {
	Token  Token
	Stream net.Conn
}

// SweepExpired returns every unconfirmed token whose elapsed time has
// reached connectTimeout, recycling each exactly once.
func (m *Manager) SweepExpired() []Expired {
	now := m.clock.Now()
	var expired []Expired
	for token, e := range m.byToken {
		if e.state != unconfirmed {
			continue
		}
		if now.Sub(e.connectedAt) < m.connectTimeout {
			continue
		}
		expired = append(expired, Expired{Token: token, Stream: e.stream})
	}
	for _, x := range expired {
		_, _ = m.Recycle(x.Token)
	}
	return expired
}

// recycledHeap is a container/heap min-heap of Token, so NewToken always
// reuses the smallest available recycled token.
type recycledHeap []Token

func (h recycledHeap) Len() int            { return len(h) }
func (h recycledHeap) Less(i, j int) bool  { return h[i] < h[j] }
func (h recycledHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *recycledHeap) Push(x interface{}) { *h = append(*h, x.(Token)) }
func (h *recycledHeap) Pop() interface{} {
	old := *h
	n := len(old)
	v := old[n-1]
	*h = old[:n-1]
	return v
}
