package mpdserver

import (
	"bufio"
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xvello/mpdify-go/internal/idlebus"
	"github.com/xvello/mpdify-go/internal/mpdproto"
)

type pingHandler struct{}

func (pingHandler) Name() string { return "ping" }
func (pingHandler) Execute(ctx context.Context, cmd mpdproto.Command) (mpdproto.HandlerOutput, error) {
	if cmd.Kind != mpdproto.CmdPing {
		return mpdproto.HandlerOutput{}, mpdproto.ErrUnsupported
	}
	return mpdproto.Ok(), nil
}

func newTestConnection(t *testing.T) (net.Conn, *idlebus.Bus) {
	serverConn, clientConn := net.Pipe()
	dispatcher := mpdproto.NewDispatcher(mpdproto.NewMailbox(pingHandler{}, 4))
	bus := idlebus.New(nil)
	c := New(serverConn, dispatcher, bus, nil)
	go c.Serve(context.Background())
	return clientConn, bus
}

func TestHelloLineOnConnect(t *testing.T) {
	client, _ := newTestConnection(t)
	defer client.Close()

	reader := bufio.NewReader(client)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "OK MPD 0.21.25\n", line)
}

func TestPingRoundTrip(t *testing.T) {
	client, _ := newTestConnection(t)
	defer client.Close()
	reader := bufio.NewReader(client)
	reader.ReadString('\n') // hello

	client.Write([]byte("ping\n"))
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "OK\n", line)
}

func TestUnknownCommandReturnsACK(t *testing.T) {
	client, _ := newTestConnection(t)
	defer client.Close()
	reader := bufio.NewReader(client)
	reader.ReadString('\n') // hello

	client.Write([]byte("bogus\n"))
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(line, "ACK "))
}

func TestCommandListOkBeginEmitsPerCommandTrailers(t *testing.T) {
	client, _ := newTestConnection(t)
	defer client.Close()
	reader := bufio.NewReader(client)
	reader.ReadString('\n') // hello

	client.Write([]byte("command_list_ok_begin\nping\nping\ncommand_list_end\n"))

	first, _ := reader.ReadString('\n')
	second, _ := reader.ReadString('\n')
	third, _ := reader.ReadString('\n')
	assert.Equal(t, "OK\n", first)
	assert.Equal(t, "OK\n", second)
	assert.Equal(t, "OK\n", third)
}

func TestNestedCommandListIsRejected(t *testing.T) {
	client, _ := newTestConnection(t)
	defer client.Close()
	reader := bufio.NewReader(client)
	reader.ReadString('\n') // hello

	client.Write([]byte("command_list_begin\ncommand_list_begin\n"))
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(line, "ACK "))
}

func TestIdleUnblockedByNoIdle(t *testing.T) {
	client, _ := newTestConnection(t)
	defer client.Close()
	reader := bufio.NewReader(client)
	reader.ReadString('\n') // hello

	client.Write([]byte("idle player\n"))
	time.Sleep(20 * time.Millisecond)
	client.Write([]byte("noidle\n"))

	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "OK\n", line)
}

func TestIdleOtherCommandClosesConnection(t *testing.T) {
	client, _ := newTestConnection(t)
	defer client.Close()
	reader := bufio.NewReader(client)
	reader.ReadString('\n') // hello

	client.Write([]byte("idle player\n"))
	time.Sleep(20 * time.Millisecond)
	client.Write([]byte("status\n"))

	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(line, "ACK "))

	_, err = reader.ReadString('\n')
	assert.Error(t, err)
}

func TestIdleUnblockedByNotify(t *testing.T) {
	client, bus := newTestConnection(t)
	defer client.Close()
	reader := bufio.NewReader(client)
	reader.ReadString('\n') // hello

	client.Write([]byte("idle player\n"))
	time.Sleep(20 * time.Millisecond)
	bus.Notify(mpdproto.SubsystemPlayer)

	changedLine, _ := reader.ReadString('\n')
	okLine, _ := reader.ReadString('\n')
	assert.Equal(t, "changed: player\n", changedLine)
	assert.Equal(t, "OK\n", okLine)
}
