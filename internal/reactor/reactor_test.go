package reactor

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdem-server/internal/protocol"
)

func newTestReactor(t *testing.T) (addr string, toDriver chan Command, fromDriver chan Event) {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	toDriver = make(chan Command, 16)
	fromDriver = make(chan Event, 16)
	r := New(listener, toDriver, fromDriver, zerolog.Nop(), DefaultSettings())

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go r.Run(ctx) //nolint:errcheck

	return listener.Addr().String(), toDriver, fromDriver
}

func TestConnectIsForwardedAndConfirmedAckRoundTrips(t *testing.T) {
	addr, toDriver, fromDriver := newTestReactor(t)

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, protocol.WriteClientMessage(conn, protocol.ClientMessage{
		Username: "alice", Kind: protocol.CmdConnect,
	}))

	var cmd Command
	select {
	case cmd = <-toDriver:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for forwarded Connect command")
	}
	require.Equal(t, protocol.CmdConnect, cmd.Message.Kind)
	require.Equal(t, "alice", cmd.Message.Username)

	fromDriver <- Event{Token: cmd.Token, Confirm: true, Message: protocol.ServerMessage{Kind: protocol.CmdAck, Ack: cmd.Message}}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	reply, err := protocol.ReadServerMessage(conn)
	require.NoError(t, err)
	require.Equal(t, protocol.CmdAck, reply.Kind)
}

func TestCommandBeforeConnectIsRejectedAndConnectionClosed(t *testing.T) {
	addr, _, _ := newTestReactor(t)

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, protocol.WriteClientMessage(conn, protocol.ClientMessage{
		Username: "bob", Kind: protocol.CmdShowHand,
	}))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	reply, err := protocol.ReadServerMessage(conn)
	require.NoError(t, err)
	require.Equal(t, protocol.CmdClientError, reply.Kind)
	require.Equal(t, protocol.ErrUnassociated, reply.ClientError)

	_, err = protocol.ReadServerMessage(conn)
	require.ErrorIs(t, err, io.EOF)
}

func TestBroadcastOnlyReachesConfirmedConnections(t *testing.T) {
	addr, toDriver, fromDriver := newTestReactor(t)

	idle, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer idle.Close()

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, protocol.WriteClientMessage(conn, protocol.ClientMessage{Username: "carol", Kind: protocol.CmdConnect}))
	cmd := <-toDriver
	fromDriver <- Event{Token: cmd.Token, Confirm: true, Message: protocol.ServerMessage{Kind: protocol.CmdAck, Ack: cmd.Message}}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, err = protocol.ReadServerMessage(conn) // drain the ack
	require.NoError(t, err)

	fromDriver <- Event{Broadcast: true, Message: protocol.ServerMessage{Kind: protocol.CmdStatus, Status: "Lobby"}}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	reply, err := protocol.ReadServerMessage(conn)
	require.NoError(t, err)
	require.Equal(t, protocol.CmdStatus, reply.Kind)
	require.Equal(t, "Lobby", reply.Status)

	idle.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	_, err = protocol.ReadServerMessage(idle)
	var netErr net.Error
	require.ErrorAs(t, err, &netErr)
	require.True(t, netErr.Timeout())
}
