package playback

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/xvello/mpdify-go/internal/mpdproto"
	"github.com/zmb3/spotify/v2"
)

const (
	playedSeconds = 90
	deltaSeconds  = 12
)

func snapshot(progressMs int, playing bool, retrievedOffset time.Duration) *Cached {
	base := time.Now().Add(-retrievedOffset)
	return &Cached{
		Data: &spotify.PlayerState{
			Device: spotify.PlayerDevice{Name: "kitchen", Volume: 50},
			CurrentlyPlaying: spotify.CurrentlyPlaying{
				Progress: progressMs,
				Playing:  playing,
				Item:     &spotify.FullTrack{},
			},
		},
		Retrieved: base,
	}
}

func TestElapsedExtrapolatesWhilePlaying(t *testing.T) {
	c := snapshot(playedSeconds*1000, true, 5*time.Second)
	elapsed := c.Elapsed()
	assert.InDelta(t, playedSeconds+5, elapsed.Seconds(), 0.5)
}

func TestElapsedHoldsStillWhenPaused(t *testing.T) {
	c := snapshot(playedSeconds*1000, false, 5*time.Second)
	elapsed := c.Elapsed()
	assert.InDelta(t, playedSeconds, elapsed.Seconds(), 0.01)
}

func TestCompareNoneToSomeIsAllSubsystems(t *testing.T) {
	next := snapshot(0, true, 0)
	changed := Compare(nil, next)
	assert.Equal(t, mpdproto.AllSubsystems, changed)
}

func TestCompareSomeToNoneIsPlayerOnly(t *testing.T) {
	prev := snapshot(0, true, 0)
	changed := Compare(prev, nil)
	assert.Equal(t, mpdproto.SubsystemPlayer, changed)
}

func TestCompareDetectsSeekBeyondThreshold(t *testing.T) {
	prev := snapshot(playedSeconds*1000, true, 10*time.Second)
	// Playback ran for ~10 real seconds, but progress jumped by an extra
	// deltaSeconds beyond that, so the unexplained delta exceeds the 500ms
	// threshold and is flagged as a seek.
	next := snapshot((playedSeconds+deltaSeconds+10)*1000, true, 0)
	changed := Compare(prev, next)
	assert.True(t, changed.Contains(mpdproto.SubsystemPlayer))
}

func TestCompareNoChangeIsEmpty(t *testing.T) {
	prev := snapshot(playedSeconds*1000, true, 2*time.Second)
	next := snapshot(playedSeconds*1000, true, 2*time.Second)
	next.Retrieved = prev.Retrieved
	changed := Compare(prev, next)
	assert.True(t, changed.IsEmpty())
}

func TestCompareDeviceVolumeChangeIsMixer(t *testing.T) {
	prev := snapshot(0, true, 0)
	next := snapshot(0, true, 0)
	next.Data.Device.Volume = prev.Data.Device.Volume + 1
	changed := Compare(prev, next)
	assert.True(t, changed.Contains(mpdproto.SubsystemMixer))
}

func TestCompareDeviceNameChangeIsOutputs(t *testing.T) {
	prev := snapshot(0, true, 0)
	next := snapshot(0, true, 0)
	next.Data.Device.Name = "living room"
	changed := Compare(prev, next)
	assert.True(t, changed.Contains(mpdproto.SubsystemOutputs))
}
