// Package playbackhandler maps MPD playback commands onto Spotify Web API
// calls: status/song/playlistinfo projection, transport controls, the
// repeat/single/seek translation rules, and the authorization gate that
// every call must pass before reaching the API.
package playbackhandler

import (
	"context"
	"fmt"
	"time"

	pctx "github.com/xvello/mpdify-go/internal/context"
	"github.com/xvello/mpdify-go/internal/mpdproto"
	"github.com/xvello/mpdify-go/internal/pathcodec"
	"github.com/xvello/mpdify-go/internal/playback"
	"github.com/zmb3/spotify/v2"
)

// APIClient is the subset of the Spotify client the command handler needs
// to execute transport controls.
type APIClient interface {
	Play(ctx context.Context, opts ...spotify.RequestOption) error
	PlayOpt(ctx context.Context, opt *spotify.PlayOptions) error
	Pause(ctx context.Context, opts ...spotify.RequestOption) error
	Next(ctx context.Context, opts ...spotify.RequestOption) error
	Previous(ctx context.Context, opts ...spotify.RequestOption) error
	Seek(ctx context.Context, positionMs int, opts ...spotify.RequestOption) error
	Volume(ctx context.Context, percent int, opts ...spotify.RequestOption) error
	Shuffle(ctx context.Context, shuffle bool, opts ...spotify.RequestOption) error
	Repeat(ctx context.Context, state string, opts ...spotify.RequestOption) error
}

// Authenticator abstracts the OAuth gate the upstream design requires
// before any mutating or status call: if there's no valid session yet, the
// handler fails the command with an AuthNeededError carrying the URL to
// visit.
type Authenticator interface {
	HasToken() bool
	AuthURL() string
}

// ExpectChanges is implemented by the playback poller; the handler calls it
// after every mutating command so the next idle notification arrives
// promptly instead of waiting out the slow poll cadence.
type ExpectChanges interface {
	ExpectChanges()
	Get() *playback.Cached
}

// Handler implements mpdproto.Handler for the playback command surface.
type Handler struct {
	client  APIClient
	auth    Authenticator
	poller  ExpectChanges
	context *pctx.Cache
}

// New builds a playback command handler.
func New(client APIClient, auth Authenticator, poller ExpectChanges, context *pctx.Cache) *Handler {
	return &Handler{client: client, auth: auth, poller: poller, context: context}
}

func (h *Handler) Name() string { return "playback" }

func (h *Handler) Execute(ctx context.Context, cmd mpdproto.Command) (mpdproto.HandlerOutput, error) {
	if !h.handles(cmd.Kind) {
		return mpdproto.HandlerOutput{}, mpdproto.ErrUnsupported
	}
	if !h.auth.HasToken() {
		return mpdproto.HandlerOutput{}, &mpdproto.AuthNeededError{URL: h.auth.AuthURL()}
	}

	switch cmd.Kind {
	case mpdproto.CmdStatus:
		return h.status(ctx)
	case mpdproto.CmdCurrentSong:
		return h.currentSong(ctx)
	case mpdproto.CmdPlaylistInfo:
		return h.playlistInfo(ctx, cmd.Range)
	case mpdproto.CmdPlay, mpdproto.CmdPlayID:
		return h.mutate(ctx, func() error { return h.client.Play(ctx) })
	case mpdproto.CmdPause:
		return h.mutate(ctx, func() error {
			pause := true
			if cmd.BoolArg != nil {
				pause = *cmd.BoolArg
			}
			if pause {
				return h.client.Pause(ctx)
			}
			return h.client.Play(ctx)
		})
	case mpdproto.CmdStop:
		return h.mutate(ctx, func() error { return h.client.Pause(ctx) })
	case mpdproto.CmdNext:
		return h.mutate(ctx, func() error { return h.client.Next(ctx) })
	case mpdproto.CmdPrevious:
		return h.mutate(ctx, func() error { return h.client.Previous(ctx) })
	case mpdproto.CmdSetVol:
		return h.mutate(ctx, func() error {
			if cmd.IntArg == nil {
				return fmt.Errorf("setvol requires a volume argument")
			}
			return h.client.Volume(ctx, *cmd.IntArg)
		})
	case mpdproto.CmdRandom:
		return h.mutate(ctx, func() error {
			if cmd.BoolArg == nil {
				return fmt.Errorf("random requires a boolean argument")
			}
			return h.client.Shuffle(ctx, *cmd.BoolArg)
		})
	case mpdproto.CmdRepeat, mpdproto.CmdSingle:
		return h.mutate(ctx, func() error { return h.applyRepeatSingle(ctx, cmd) })
	case mpdproto.CmdSeek, mpdproto.CmdSeekID, mpdproto.CmdSeekCur:
		return h.mutate(ctx, func() error { return h.applySeek(ctx, cmd) })
	}
	return mpdproto.HandlerOutput{}, mpdproto.ErrUnsupported
}

func (h *Handler) handles(kind mpdproto.CommandKind) bool {
	switch kind {
	case mpdproto.CmdStatus, mpdproto.CmdCurrentSong, mpdproto.CmdPlaylistInfo,
		mpdproto.CmdPlay, mpdproto.CmdPlayID, mpdproto.CmdPause, mpdproto.CmdStop,
		mpdproto.CmdNext, mpdproto.CmdPrevious, mpdproto.CmdSetVol, mpdproto.CmdRandom,
		mpdproto.CmdRepeat, mpdproto.CmdSingle, mpdproto.CmdSeek, mpdproto.CmdSeekID,
		mpdproto.CmdSeekCur:
		return true
	}
	return false
}

func (h *Handler) mutate(ctx context.Context, fn func() error) (mpdproto.HandlerOutput, error) {
	if err := fn(); err != nil {
		return mpdproto.HandlerOutput{}, err
	}
	h.poller.ExpectChanges()
	return mpdproto.Ok(), nil
}

func (h *Handler) applyRepeatSingle(ctx context.Context, cmd mpdproto.Command) error {
	cached := h.poller.Get()
	current := RepeatOff
	if cached != nil && cached.Data != nil {
		current = RepeatMode(cached.Data.RepeatState)
	}

	var repeat, single *bool
	if cmd.Kind == mpdproto.CmdRepeat {
		repeat = cmd.BoolArg
	} else {
		single = cmd.BoolArg
	}
	target := ComputeRepeat(current, repeat, single)
	return h.client.Repeat(ctx, string(target))
}

func (h *Handler) applySeek(ctx context.Context, cmd mpdproto.Command) error {
	cached := h.poller.Get()
	var current time.Duration
	if cached != nil {
		current = cached.Elapsed()
	}
	target := ComputeSeek(current, cmd.Seek)
	return h.client.Seek(ctx, int(target.Milliseconds()))
}

func (h *Handler) status(ctx context.Context) (mpdproto.HandlerOutput, error) {
	cached := h.poller.Get()
	b := mpdproto.NewRecordBuilder()

	if cached == nil || cached.Data == nil || cached.Data.Item == nil {
		b.Str("state", "stop")
		return mpdproto.Data(b.Build()), nil
	}

	data := cached.Data
	state := "stop"
	if data.Playing {
		state = "play"
	} else {
		state = "pause"
	}

	b.Int("volume", int(data.Device.Volume)).
		Str("state", state).
		Bool("random", data.ShuffleState).
		Bool("repeat", MPDRepeat(RepeatMode(data.RepeatState))).
		Bool("single", MPDSingle(RepeatMode(data.RepeatState))).
		Bool("consume", false)

	duration := time.Duration(data.Item.Duration) * time.Millisecond
	b.Time(cached.Elapsed().Seconds(), duration.Seconds())

	return mpdproto.Data(b.Build()), nil
}

func (h *Handler) currentSong(ctx context.Context) (mpdproto.HandlerOutput, error) {
	cached := h.poller.Get()
	if cached == nil || cached.Data == nil || cached.Data.Item == nil {
		return mpdproto.Data(), nil
	}
	return mpdproto.Data(songRecord(cached.Data.Item, 0, pathcodec.Path{})), nil
}

func songRecord(track *spotify.FullTrack, pos int, path pathcodec.Path) mpdproto.Record {
	b := mpdproto.NewRecordBuilder().
		Str("file", path.String()).
		Int("pos", pos).
		Int("id", pos+1)

	if track != nil {
		b.StrIfNotEmpty("title", track.Name)
		if len(track.Artists) > 0 {
			b.StrIfNotEmpty("artist", flattenArtists(track.Artists))
		}
		b.StrIfNotEmpty("album", track.Album.Name)
		b.Int("track", track.TrackNumber)
		b.Int("disc", track.DiscNumber)
		b.Float("duration", float64(track.Duration)/1000.0)
	}
	return b.Build()
}

func flattenArtists(artists []spotify.SimpleArtist) string {
	out := ""
	for i, a := range artists {
		if i > 0 {
			out += ", "
		}
		out += a.Name
	}
	return out
}

func (h *Handler) playlistInfo(ctx context.Context, rng *mpdproto.PositionRange) (mpdproto.HandlerOutput, error) {
	cached := h.poller.Get()
	var contextURI string
	if cached != nil && cached.Data != nil {
		contextURI = cached.Data.PlaybackContext.URI.String()
	}

	pc, err := h.context.Get(ctx, contextURI)
	if err != nil {
		return mpdproto.HandlerOutput{}, err
	}

	var records []mpdproto.Record
	for i, t := range pc.Tracks {
		if rng != nil && !rng.Contains(i) {
			continue
		}
		track := t
		records = append(records, songRecord(&track, i, pathcodec.Path{}))
	}
	return mpdproto.Data(records...), nil
}
