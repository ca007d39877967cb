// Package playback maintains a cached, adaptively-polled snapshot of the
// user's current Spotify playback state, and notifies the idle bus of which
// MPD subsystems changed between snapshots.
package playback

import (
	"time"

	"github.com/xvello/mpdify-go/internal/mpdproto"
	"github.com/zmb3/spotify/v2"
)

// seekThreshold is the minimum unexplained jump between consecutive
// progress readings (after subtracting elapsed wall-clock time) that counts
// as a user-initiated seek rather than normal playback drift.
const seekThreshold = 500 * time.Millisecond

// Cached wraps a playback snapshot with the time it was retrieved, so
// elapsed position can be extrapolated between polls without re-querying
// the API on every status command.
type Cached struct {
	Data      *spotify.PlayerState
	Retrieved time.Time
}

// Elapsed returns the best estimate of current playback position: the
// snapshot's reported progress, plus wall-clock time passed since it was
// retrieved if the track is still playing.
func (c *Cached) Elapsed() time.Duration {
	if c == nil || c.Data == nil {
		return 0
	}
	progress := time.Duration(c.Data.Progress) * time.Millisecond
	if !c.Data.Playing {
		return progress
	}
	return progress + time.Since(c.Retrieved)
}

// Compare diffs two snapshots and returns the set of idle subsystems that
// changed. A transition from no data to data (or vice versa) touches every
// subsystem except that disappearing data is Player-only, matching the
// upstream diff table exactly.
func Compare(prev, next *Cached) mpdproto.IdleSubsystem {
	prevData := dataOf(prev)
	nextData := dataOf(next)

	if prevData == nil && nextData == nil {
		return 0
	}
	if prevData == nil && nextData != nil {
		return mpdproto.AllSubsystems
	}
	if prevData != nil && nextData == nil {
		return mpdproto.SubsystemPlayer
	}

	var changed mpdproto.IdleSubsystem

	if prevData.ShuffleState != nextData.ShuffleState {
		changed = changed.Union(mpdproto.SubsystemOptions)
	}
	if prevData.RepeatState != nextData.RepeatState {
		changed = changed.Union(mpdproto.SubsystemOptions)
	}
	if deviceVolume(prevData) != deviceVolume(nextData) {
		changed = changed.Union(mpdproto.SubsystemMixer)
	}
	if prevData.Playing != nextData.Playing {
		changed = changed.Union(mpdproto.SubsystemPlayer)
	}
	if !contextEqual(prevData.PlaybackContext, nextData.PlaybackContext) {
		changed = changed.Union(mpdproto.SubsystemPlayQueue)
	}
	if !itemEqual(prevData.Item, nextData.Item) {
		changed = changed.Union(mpdproto.SubsystemPlayer)
	}
	if deviceName(prevData) != deviceName(nextData) {
		changed = changed.Union(mpdproto.SubsystemOutputs)
	}
	if detectSeek(prev, next) {
		changed = changed.Union(mpdproto.SubsystemPlayer)
	}

	return changed
}

func dataOf(c *Cached) *spotify.PlayerState {
	if c == nil {
		return nil
	}
	return c.Data
}

func deviceVolume(d *spotify.PlayerState) int {
	if d == nil {
		return -1
	}
	return int(d.Device.Volume)
}

func deviceName(d *spotify.PlayerState) string {
	if d == nil {
		return ""
	}
	return d.Device.Name
}

func contextEqual(a, b spotify.PlaybackContext) bool {
	return a.URI == b.URI
}

func itemEqual(a, b *spotify.FullTrack) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.ID == b.ID
}

// detectSeek flags a jump in reported progress larger than what elapsed
// wall-clock time between polls explains.
func detectSeek(prev, next *Cached) bool {
	if prev == nil || prev.Data == nil || next == nil || next.Data == nil {
		return false
	}
	// A paused track does not advance, so no wall-clock time is expected.
	var wallElapsed time.Duration
	if prev.Data.Playing {
		wallElapsed = next.Retrieved.Sub(prev.Retrieved)
	}
	progressDelta := time.Duration(next.Data.Progress-prev.Data.Progress) * time.Millisecond
	diff := progressDelta - wallElapsed
	if diff < 0 {
		diff = -diff
	}
	return diff > seekThreshold
}
