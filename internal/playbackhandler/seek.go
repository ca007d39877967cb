package playbackhandler

import (
	"time"

	"github.com/xvello/mpdify-go/internal/mpdproto"
)

// ComputeSeek resolves a RelativeFloat seek argument against the current
// position into an absolute target, saturating at zero rather than going
// negative.
func ComputeSeek(current time.Duration, seek mpdproto.RelativeFloat) time.Duration {
	target := time.Duration(seek.Value * float64(time.Second))
	if !seek.Relative {
		if target < 0 {
			return 0
		}
		return target
	}
	result := current + target
	if result < 0 {
		return 0
	}
	return result
}
