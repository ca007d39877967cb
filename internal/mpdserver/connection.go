// Package mpdserver implements the per-connection MPD protocol state
// machine: the hello line, the command read loop, command-list batching,
// idle mode, and ACK/OK response framing.
package mpdserver

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/xvello/mpdify-go/internal/idlebus"
	"github.com/xvello/mpdify-go/internal/mpdproto"
)

const helloLine = "OK MPD 0.21.25\n"

// listMode tracks whether the connection is currently buffering a
// command_list, and whether it should reply verbosely per-command or only
// once at the end.
type listMode int

const (
	listNone listMode = iota
	listPlain
	listVerbose
)

// Connection owns one client's read loop. Input lines are read by a single
// background goroutine and delivered over a channel, so idle mode can
// select between an incoming "noidle" line and an idle-bus subsystem change
// without two goroutines racing to read the same socket.
type Connection struct {
	conn       net.Conn
	dispatcher *mpdproto.Dispatcher
	bus        *idlebus.Bus
	log        *logrus.Entry

	writer *bufio.Writer

	lines  chan string
	closed chan struct{}

	mode     listMode
	buffered []mpdproto.Command

	sub *idlebus.Subscription
}

// New wraps conn with the MPD protocol state machine.
func New(conn net.Conn, dispatcher *mpdproto.Dispatcher, bus *idlebus.Bus, log *logrus.Entry) *Connection {
	return &Connection{
		conn:       conn,
		dispatcher: dispatcher,
		bus:        bus,
		log:        log,
		writer:     bufio.NewWriter(conn),
		lines:      make(chan string),
		closed:     make(chan struct{}),
	}
}

// Serve writes the hello line and runs the command loop until the
// connection closes or a "close" command is processed.
func (c *Connection) Serve(ctx context.Context) {
	defer c.conn.Close()
	defer close(c.closed)
	defer func() {
		if c.sub != nil {
			c.sub.Close()
		}
	}()

	go c.readLines()

	if _, err := c.writer.WriteString(helloLine); err != nil {
		return
	}
	c.writer.Flush()

	for {
		select {
		case line, ok := <-c.lines:
			if !ok {
				return
			}
			if !c.one(ctx, line) {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func (c *Connection) readLines() {
	defer close(c.lines)
	scanner := bufio.NewScanner(c.conn)
	for scanner.Scan() {
		select {
		case c.lines <- scanner.Text():
		case <-c.closed:
			return
		}
	}
}

// one processes a single input line, returning false if the connection
// should close.
func (c *Connection) one(ctx context.Context, line string) bool {
	cmd, err := mpdproto.Parse(line)
	if err != nil {
		c.writeACK(0, 0, "", err.Error())
		return true
	}

	switch cmd.Kind {
	case mpdproto.CmdCommandListBegin:
		if c.mode != listNone {
			c.writeACK(0, 0, "command_list_begin", "already in a command list")
			return true
		}
		c.mode = listPlain
		c.buffered = nil
		return true

	case mpdproto.CmdCommandListOKBegin:
		if c.mode != listNone {
			c.writeACK(0, 0, "command_list_ok_begin", "already in a command list")
			return true
		}
		c.mode = listVerbose
		c.buffered = nil
		return true

	case mpdproto.CmdCommandListEnd:
		if c.mode == listNone {
			c.writeACK(0, 0, "command_list_end", "not in a command list")
			return true
		}
		return c.runList(ctx)

	case mpdproto.CmdIdle:
		if c.mode != listNone {
			c.writeACK(0, 0, "idle", "idle not allowed within a command list")
			return true
		}
		return c.runIdle(ctx, cmd)

	case mpdproto.CmdNoIdle:
		// noidle outside of an active idle call is a no-op.
		return true
	}

	if c.mode != listNone {
		c.buffered = append(c.buffered, cmd)
		return true
	}

	return c.runOne(ctx, cmd, 0, true)
}

func (c *Connection) runList(ctx context.Context) bool {
	verbose := c.mode == listVerbose
	commands := c.buffered
	c.mode = listNone
	c.buffered = nil

	for i, cmd := range commands {
		if !c.runOne(ctx, cmd, i, verbose) {
			return false
		}
	}
	c.writeOK()
	c.writer.Flush()
	return true
}

func (c *Connection) runOne(ctx context.Context, cmd mpdproto.Command, index int, writeTrailer bool) bool {
	if cmd.Kind == mpdproto.CmdClose {
		c.writeOK()
		c.writer.Flush()
		return false
	}

	out, err := c.dispatcher.Dispatch(ctx, cmd)
	if err != nil {
		var authErr *mpdproto.AuthNeededError
		if errors.As(err, &authErr) {
			c.writeACK(index, 0, "", fmt.Sprintf("authorization required: %s", authErr.URL))
		} else if errors.Is(err, mpdproto.ErrUnsupported) {
			c.writeACK(index, 5, "", "unknown command")
		} else {
			c.writeACK(index, 0, "", err.Error())
		}
		return true
	}

	if out.Kind == mpdproto.OutputClose {
		c.writeOK()
		c.writer.Flush()
		return false
	}

	var b strings.Builder
	out.WriteResponse(&b)
	c.writer.WriteString(b.String())
	if writeTrailer {
		c.writeOK()
	}
	c.writer.Flush()
	return true
}

// runIdle blocks this connection on the idle bus until a matching
// subsystem changes or a "noidle" line arrives on the same connection.
func (c *Connection) runIdle(ctx context.Context, cmd mpdproto.Command) bool {
	if c.sub == nil {
		c.sub = c.bus.Subscribe()
	}

	idleCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	waitDone := make(chan struct {
		changed mpdproto.IdleSubsystem
		ok      bool
	}, 1)
	go func() {
		changed, ok := c.sub.Wait(idleCtx, cmd.Subsystems)
		waitDone <- struct {
			changed mpdproto.IdleSubsystem
			ok      bool
		}{changed, ok}
	}()

	for {
		select {
		case line, ok := <-c.lines:
			if !ok {
				cancel()
				<-waitDone
				return false
			}
			if strings.TrimSpace(line) == "noidle" {
				cancel()
				<-waitDone
				c.writeOK()
				c.writer.Flush()
				return true
			}
			// Any other line while idling is a protocol violation; MPD
			// itself only tolerates "noidle" here, and closes the
			// connection rather than letting it continue.
			cancel()
			<-waitDone
			c.writeACK(0, 0, "", "only noidle is allowed during idle")
			return false

		case result := <-waitDone:
			if !result.ok {
				c.writeOK()
				c.writer.Flush()
				return true
			}
			var b strings.Builder
			mpdproto.Idle(result.changed).WriteResponse(&b)
			c.writer.WriteString(b.String())
			c.writeOK()
			c.writer.Flush()
			return true
		}
	}
}

func (c *Connection) writeOK() {
	c.writer.WriteString("OK\n")
}

func (c *Connection) writeACK(index int, code int, command, message string) {
	fmt.Fprintf(c.writer, "ACK [%d@%d] {%s} %s\n", code, index, command, message)
	c.writer.Flush()
}
