package playbackhandler

// RepeatMode mirrors Spotify's repeat_state values.
type RepeatMode string

const (
	RepeatOff     RepeatMode = "off"
	RepeatContext RepeatMode = "context"
	RepeatTrack   RepeatMode = "track"
)

// ComputeRepeat translates MPD's independent repeat/single booleans into
// Spotify's single tri-state repeat mode. repeat and single are nil when
// the corresponding MPD command argument was not given (i.e. "keep current
// value for that axis"). Matches the upstream formula exactly:
//
//	desired_repeat = repeat ?? (current != Off)
//	desired_single = single ?? (current == Track)
//	target = desired_repeat ? (desired_single ? Track : Context) : Off
func ComputeRepeat(current RepeatMode, repeat, single *bool) RepeatMode {
	desiredRepeat := current != RepeatOff
	if repeat != nil {
		desiredRepeat = *repeat
	}
	desiredSingle := current == RepeatTrack
	if single != nil {
		desiredSingle = *single
	}

	if !desiredRepeat {
		return RepeatOff
	}
	if desiredSingle {
		return RepeatTrack
	}
	return RepeatContext
}

// MPDRepeat reports the MPD "repeat" boolean for a Spotify repeat mode.
func MPDRepeat(mode RepeatMode) bool { return mode != RepeatOff }

// MPDSingle reports the MPD "single" boolean for a Spotify repeat mode.
func MPDSingle(mode RepeatMode) bool { return mode == RepeatTrack }
