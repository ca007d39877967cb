package playback

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/xvello/mpdify-go/internal/idlebus"
	"github.com/zmb3/spotify/v2"
)

// APIClient is the subset of the Spotify client the poller needs.
type APIClient interface {
	PlayerState(ctx context.Context, opts ...spotify.RequestOption) (*spotify.PlayerState, error)
}

// AuthChecker lets the poller skip fetching while no Spotify session has
// been authorized yet, instead of hammering the API with requests that can
// only fail.
type AuthChecker interface {
	HasToken() bool
}

type command int

const (
	cmdPoll command = iota
	cmdFastSpeed
	cmdSlowSpeed
	cmdGet
)

type request struct {
	kind  command
	reply chan *Cached
}

// Poller runs a single background goroutine that polls Spotify's current
// playback endpoint at an adaptive cadence: a slow baseline rate, and a
// temporary fast rate right after a mutating command so the change is
// reflected quickly. Changed subsystems are pushed to the idle bus.
type Poller struct {
	client      APIClient
	auth        AuthChecker
	bus         *idlebus.Bus
	log         *logrus.Entry
	baseFreq    time.Duration
	fastFreq    time.Duration
	fastWindow  time.Duration

	requests chan request
}

// NewPoller builds a poller with the given base/fast polling periods. The
// fast-speed window (how long the fast rate holds before reverting) mirrors
// the base period itself, matching the upstream watcher. auth may be nil, in
// which case the poller always attempts to fetch.
func NewPoller(client APIClient, auth AuthChecker, bus *idlebus.Bus, log *logrus.Entry, baseFreq, fastFreq time.Duration) *Poller {
	return &Poller{
		client:     client,
		auth:       auth,
		bus:        bus,
		log:        log,
		baseFreq:   baseFreq,
		fastFreq:   fastFreq,
		fastWindow: baseFreq,
		requests:   make(chan request, 8),
	}
}

// Run drives the poller loop until ctx is cancelled. Call it in its own
// goroutine.
func (p *Poller) Run(ctx context.Context) {
	var cache *Cached
	interval := p.baseFreq
	timer := time.NewTimer(interval)
	defer timer.Stop()

	var fastUntil time.Time

	resetTimer := func(d time.Duration) {
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(d)
	}

	for {
		select {
		case <-ctx.Done():
			return

		case req := <-p.requests:
			switch req.kind {
			case cmdFastSpeed:
				interval = p.fastFreq
				fastUntil = time.Now().Add(p.fastWindow)
				resetTimer(0)
			case cmdSlowSpeed:
				interval = p.baseFreq
				resetTimer(interval)
			case cmdGet:
				if cache == nil {
					cache = p.fetch(ctx)
				}
				req.reply <- cache
			case cmdPoll:
				// handled by timer branch; not sent externally.
			}

		case <-timer.C:
			if !p.bus.HasSubscribers() {
				cache = nil
				resetTimer(interval)
				continue
			}

			next := p.fetch(ctx)
			changed := Compare(cache, next)
			if next != nil && !changed.IsEmpty() {
				cache = next
				p.bus.Notify(changed)
				interval = p.baseFreq
			} else if next != nil {
				cache = next
			}

			if !fastUntil.IsZero() && time.Now().After(fastUntil) {
				interval = p.baseFreq
				fastUntil = time.Time{}
			}
			resetTimer(interval)
		}
	}
}

func (p *Poller) fetch(ctx context.Context) *Cached {
	if p.auth != nil && !p.auth.HasToken() {
		return nil
	}
	data, err := p.client.PlayerState(ctx)
	if err != nil {
		if p.log != nil {
			p.log.WithError(err).Warn("polling current playback failed")
		}
		return nil
	}
	return &Cached{Data: data, Retrieved: time.Now()}
}

// ExpectChanges tells the poller a mutating command just ran and it should
// switch to the fast cadence to pick up the result promptly.
func (p *Poller) ExpectChanges() {
	p.requests <- request{kind: cmdFastSpeed}
}

// Get returns the current cached snapshot, fetching synchronously first if
// nothing has been cached yet.
func (p *Poller) Get() *Cached {
	reply := make(chan *Cached, 1)
	p.requests <- request{kind: cmdGet, reply: reply}
	return <-reply
}
