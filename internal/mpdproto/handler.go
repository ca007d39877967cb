package mpdproto

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnsupported is returned by a Handler that does not recognize the
// command it was asked to execute, letting the dispatcher fall through to
// the next handler in the chain.
var ErrUnsupported = errors.New("unsupported command")

// AuthNeededError signals that a command requires Spotify authorization the
// bridge does not currently have, carrying the URL the user must visit.
type AuthNeededError struct {
	URL string
}

func (e *AuthNeededError) Error() string {
	return fmt.Sprintf("authorization required: visit %s", e.URL)
}

// Handler executes one command and produces a HandlerOutput, or
// ErrUnsupported if this handler doesn't recognize the command kind.
type Handler interface {
	Name() string
	Execute(ctx context.Context, cmd Command) (HandlerOutput, error)
}

// Mailbox is a bounded request queue in front of a Handler, giving it a
// single-goroutine-owns-its-state execution model: callers submit a command
// and a one-shot reply channel, and the handler's own goroutine drains the
// queue serially.
type Mailbox struct {
	handler Handler
	requests chan mailboxRequest
}

type mailboxRequest struct {
	ctx   context.Context
	cmd   Command
	reply chan mailboxReply
}

type mailboxReply struct {
	output HandlerOutput
	err    error
}

// NewMailbox creates a mailbox wrapping handler with the given queue depth,
// and starts its serving goroutine.
func NewMailbox(handler Handler, depth int) *Mailbox {
	m := &Mailbox{handler: handler, requests: make(chan mailboxRequest, depth)}
	go m.run()
	return m
}

func (m *Mailbox) run() {
	for req := range m.requests {
		output, err := m.handler.Execute(req.ctx, req.cmd)
		req.reply <- mailboxReply{output: output, err: err}
	}
}

// Send submits a command to the handler and blocks for its reply.
func (m *Mailbox) Send(ctx context.Context, cmd Command) (HandlerOutput, error) {
	reply := make(chan mailboxReply, 1)
	select {
	case m.requests <- mailboxRequest{ctx: ctx, cmd: cmd, reply: reply}:
	case <-ctx.Done():
		return HandlerOutput{}, ctx.Err()
	}
	select {
	case r := <-reply:
		return r.output, r.err
	case <-ctx.Done():
		return HandlerOutput{}, ctx.Err()
	}
}

// Name exposes the wrapped handler's name, for logging.
func (m *Mailbox) Name() string { return m.handler.Name() }

// Dispatcher tries each mailbox in registration order until one returns
// something other than ErrUnsupported.
type Dispatcher struct {
	mailboxes []*Mailbox
}

// NewDispatcher builds a dispatcher trying handlers in the given order.
func NewDispatcher(mailboxes ...*Mailbox) *Dispatcher {
	return &Dispatcher{mailboxes: mailboxes}
}

// Dispatch runs cmd through the handler chain, returning the first non-
// ErrUnsupported result. If every handler declines, returns ErrUnsupported.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd Command) (HandlerOutput, error) {
	for _, mb := range d.mailboxes {
		out, err := mb.Send(ctx, cmd)
		if errors.Is(err, ErrUnsupported) {
			continue
		}
		return out, err
	}
	return HandlerOutput{}, ErrUnsupported
}
