package playbackhandler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func boolPtr(b bool) *bool { return &b }

func TestComputeRepeatBothUnset(t *testing.T) {
	assert.Equal(t, RepeatOff, ComputeRepeat(RepeatOff, nil, nil))
	assert.Equal(t, RepeatContext, ComputeRepeat(RepeatContext, nil, nil))
	assert.Equal(t, RepeatTrack, ComputeRepeat(RepeatTrack, nil, nil))
}

func TestComputeRepeatEnableRepeatKeepsSingleFlag(t *testing.T) {
	assert.Equal(t, RepeatContext, ComputeRepeat(RepeatOff, boolPtr(true), nil))
	assert.Equal(t, RepeatTrack, ComputeRepeat(RepeatTrack, boolPtr(true), nil))
}

func TestComputeRepeatDisableRepeatIgnoresSingle(t *testing.T) {
	assert.Equal(t, RepeatOff, ComputeRepeat(RepeatTrack, boolPtr(false), nil))
}

func TestComputeRepeatSetSingleWithoutRepeatArg(t *testing.T) {
	// repeat currently off, setting single=true alone doesn't turn repeat on.
	assert.Equal(t, RepeatOff, ComputeRepeat(RepeatOff, nil, boolPtr(true)))
	// repeat currently on (context), setting single=true switches to track.
	assert.Equal(t, RepeatTrack, ComputeRepeat(RepeatContext, nil, boolPtr(true)))
}

func TestComputeRepeatBothSetExplicitly(t *testing.T) {
	assert.Equal(t, RepeatTrack, ComputeRepeat(RepeatOff, boolPtr(true), boolPtr(true)))
	assert.Equal(t, RepeatContext, ComputeRepeat(RepeatTrack, boolPtr(true), boolPtr(false)))
	assert.Equal(t, RepeatOff, ComputeRepeat(RepeatTrack, boolPtr(false), boolPtr(false)))
}

func TestMPDRepeatAndSingleProjection(t *testing.T) {
	assert.False(t, MPDRepeat(RepeatOff))
	assert.True(t, MPDRepeat(RepeatContext))
	assert.True(t, MPDRepeat(RepeatTrack))

	assert.False(t, MPDSingle(RepeatOff))
	assert.False(t, MPDSingle(RepeatContext))
	assert.True(t, MPDSingle(RepeatTrack))
}
