package session

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func pipeConn(t *testing.T) net.Conn {
	t.Helper()
	a, b := net.Pipe()
	t.Cleanup(func() { _ = a.Close(); _ = b.Close() })
	return a
}

func TestSecondAssociateUsernameWithSameNameFails(t *testing.T) {
	m := NewManager(30*time.Second, nil)
	t1 := m.NewToken()
	t2 := m.NewToken()
	m.AssociateStream(t1, pipeConn(t))
	m.AssociateStream(t2, pipeConn(t))

	require.NoError(t, m.AssociateUsername(t1, "alice"))
	err := m.AssociateUsername(t2, "alice")
	assert.ErrorIs(t, err, ErrAlreadyAssociated)
}

func TestRecycleThenNewTokenReusesSmallest(t *testing.T) {
	m := NewManager(30*time.Second, nil)
	t0 := m.NewToken()
	t1 := m.NewToken()
	t2 := m.NewToken()
	assert.Equal(t, []Token{2, 3, 4}, []Token{t0, t1, t2})

	m.AssociateStream(t1, pipeConn(t))
	_, err := m.Recycle(t1)
	require.NoError(t, err)

	reused := m.NewToken()
	assert.Equal(t, t1, reused)
}

func TestSweepExpiredFiresExactlyOnce(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	m := NewManager(10*time.Second, clock)
	tok := m.NewToken()
	m.AssociateStream(tok, pipeConn(t))

	clock.now = clock.now.Add(5 * time.Second)
	assert.Empty(t, m.SweepExpired())

	clock.now = clock.now.Add(10 * time.Second)
	expired := m.SweepExpired()
	require.Len(t, expired, 1)
	assert.Equal(t, tok, expired[0].Token)

	assert.Empty(t, m.SweepExpired())
	_, err := m.StreamOf(tok)
	assert.ErrorIs(t, err, ErrDoesNotExist)
}

func TestConfirmAndUsernameOfLifecycle(t *testing.T) {
	m := NewManager(30*time.Second, nil)
	tok := m.NewToken()
	m.AssociateStream(tok, pipeConn(t))

	_, err := m.UsernameOf(tok)
	assert.ErrorIs(t, err, ErrUnassociated)

	require.NoError(t, m.AssociateUsername(tok, "bob"))
	name, err := m.UsernameOf(tok)
	require.NoError(t, err)
	assert.Equal(t, "bob", name)
	assert.False(t, m.IsConfirmed(tok))

	require.NoError(t, m.Confirm(tok))
	assert.True(t, m.IsConfirmed(tok))

	resolved, err := m.TokenOf("bob")
	require.NoError(t, err)
	assert.Equal(t, tok, resolved)
}
