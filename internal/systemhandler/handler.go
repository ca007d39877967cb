// Package systemhandler answers the small set of MPD commands that aren't
// really about playback: connectivity probes, the single synthetic output
// this bridge exposes, and the read-only stats/password commands real
// clients still poll for.
package systemhandler

import (
	"context"
	"time"

	"github.com/xvello/mpdify-go/internal/mpdproto"
)

// Handler implements mpdproto.Handler for the non-playback command surface.
type Handler struct {
	startedAt time.Time
}

// New builds a system command handler. Uptime is measured from construction
// time, which happens once at process startup.
func New() *Handler {
	return &Handler{startedAt: time.Now()}
}

func (h *Handler) Name() string { return "system" }

func (h *Handler) Execute(ctx context.Context, cmd mpdproto.Command) (mpdproto.HandlerOutput, error) {
	switch cmd.Kind {
	case mpdproto.CmdPing, mpdproto.CmdNoOp:
		return mpdproto.Ok(), nil
	case mpdproto.CmdPassword:
		// No password is configured; accept anything rather than lock
		// clients out of a feature this bridge doesn't implement.
		return mpdproto.Ok(), nil
	case mpdproto.CmdOutputs:
		return mpdproto.Data(outputRecord()), nil
	case mpdproto.CmdEnableOutput:
		// The one output (the Spotify Connect session itself) can't be
		// toggled through this protocol; accept and change nothing.
		// disableoutput is a no-op in the MPD vocabulary sense and handled
		// by the CmdNoOp case above, so only enableoutput lands here.
		return mpdproto.Ok(), nil
	case mpdproto.CmdStats:
		return mpdproto.Data(h.statsRecord()), nil
	}
	return mpdproto.HandlerOutput{}, mpdproto.ErrUnsupported
}

func outputRecord() mpdproto.Record {
	return mpdproto.NewRecordBuilder().
		Int("outputid", 0).
		Str("outputname", "spotify").
		Bool("outputenabled", true).
		Build()
}

// statsRecord reports the fixed counters real MPD clients expect from
// "stats". This bridge has no song database, so the db-related counters are
// reported as zero rather than omitted, matching what MPD itself sends for
// an empty database.
func (h *Handler) statsRecord() mpdproto.Record {
	uptime := int(time.Since(h.startedAt).Seconds())
	return mpdproto.NewRecordBuilder().
		Int("artists", 0).
		Int("albums", 0).
		Int("songs", 0).
		Int("uptime", uptime).
		Int("playtime", 0).
		Int("db_playtime", 0).
		Int("db_update", 0).
		Build()
}
