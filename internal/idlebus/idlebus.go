// Package idlebus implements the notification bus MPD's "idle" command
// blocks on: subsystem-change events fan out to every subscribed
// connection, each tracking its own pending/waiting state independently.
package idlebus

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/xvello/mpdify-go/internal/mpdproto"
)

const debounce = 50 * time.Millisecond

// Bus is the process-wide idle notification hub.
type Bus struct {
	mu          sync.Mutex
	subscribers map[*Subscription]struct{}
	log         *logrus.Entry
}

// New creates an empty bus.
func New(log *logrus.Entry) *Bus {
	return &Bus{subscribers: make(map[*Subscription]struct{}), log: log}
}

// HasSubscribers reports whether at least one subscription is registered
// (a connection subscribes on its first idle and stays subscribed until it
// closes), used by the playback poller to decide whether it's worth polling
// at all.
func (b *Bus) HasSubscribers() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers) > 0
}

// Notify announces a subsystem change to every subscriber. Subscribers that
// are not currently waiting simply remember the change for their next Wait.
func (b *Bus) Notify(subsystem mpdproto.IdleSubsystem) {
	b.mu.Lock()
	subs := make([]*Subscription, 0, len(b.subscribers))
	for s := range b.subscribers {
		subs = append(subs, s)
	}
	b.mu.Unlock()

	if b.log != nil {
		b.log.WithField("subsystem", subsystem.Names()).Debug("notifying idle subscribers")
	}
	for _, s := range subs {
		s.push(subsystem)
	}
}

// Subscribe registers a new per-connection subscription.
func (b *Bus) Subscribe() *Subscription {
	s := &Subscription{bus: b, events: make(chan mpdproto.IdleSubsystem, 16)}
	b.mu.Lock()
	b.subscribers[s] = struct{}{}
	b.mu.Unlock()
	return s
}

// Unsubscribe removes a subscription, e.g. on connection close.
func (b *Bus) Unsubscribe(s *Subscription) {
	b.mu.Lock()
	delete(b.subscribers, s)
	b.mu.Unlock()
}

// Subscription tracks one connection's accumulated-but-unconsumed changes
// and, while a Wait is in flight, the debounce window collecting further
// changes before replying.
type Subscription struct {
	bus    *Bus
	events chan mpdproto.IdleSubsystem

	mu      sync.Mutex
	changed mpdproto.IdleSubsystem
}

func (s *Subscription) push(subsystem mpdproto.IdleSubsystem) {
	select {
	case s.events <- subsystem:
	default:
		// Buffer full: fold directly into the remembered set instead of
		// blocking the notifier.
		s.mu.Lock()
		s.changed = s.changed.Union(subsystem)
		s.mu.Unlock()
	}
}

// Wait blocks until at least one subsystem in mask has changed since the
// last call, then returns the intersection and clears it. Changes outside
// mask are preserved for a future call. A pre-existing remembered change
// (from before Wait was called) is returned immediately without waiting out
// the debounce window. If ctx is cancelled first (a "noidle" arrived), ok
// is false and no change is consumed.
func (s *Subscription) Wait(ctx context.Context, mask mpdproto.IdleSubsystem) (changed mpdproto.IdleSubsystem, ok bool) {
	// Fold in everything queued while no Wait was in flight.
drain:
	for {
		select {
		case e := <-s.events:
			s.merge(e)
		default:
			break drain
		}
	}

	s.mu.Lock()
	pending := s.changed
	s.mu.Unlock()

	if hit := pending.Intersect(mask); !hit.IsEmpty() {
		s.consume(hit)
		return hit, true
	}

	// No match yet: wait for the first relevant event, then settle for the
	// debounce window to coalesce any further events arriving immediately
	// after, matching the upstream watcher's aggregation loop.
	var timerC <-chan time.Time
	for {
		select {
		case e := <-s.events:
			s.merge(e)
			if timerC == nil {
				timerC = time.NewTimer(debounce).C
			}
		case <-timerC:
			s.mu.Lock()
			pending = s.changed
			s.mu.Unlock()
			if hit := pending.Intersect(mask); !hit.IsEmpty() {
				s.consume(hit)
				return hit, true
			}
			timerC = nil
		case <-ctx.Done():
			return 0, false
		}
	}
}

func (s *Subscription) merge(e mpdproto.IdleSubsystem) {
	s.mu.Lock()
	s.changed = s.changed.Union(e)
	s.mu.Unlock()
}

func (s *Subscription) consume(hit mpdproto.IdleSubsystem) {
	s.mu.Lock()
	s.changed = s.changed.Without(hit)
	s.mu.Unlock()
}

// Close unregisters this subscription from its bus.
func (s *Subscription) Close() { s.bus.Unsubscribe(s) }
