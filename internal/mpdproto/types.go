// Package mpdproto implements the MPD line protocol: command parsing,
// the in-memory command/response data model, response serialization, and
// the handler mailbox dispatch mechanism that routes commands to whichever
// handler can answer them.
package mpdproto

import (
	"fmt"
	"strconv"
	"strings"
)

// IdleSubsystem is a bitmask of MPD idle subsystems.
type IdleSubsystem uint8

const (
	SubsystemPlayQueue IdleSubsystem = 1 << iota
	SubsystemPlaylists
	SubsystemPlayer
	SubsystemMixer
	SubsystemOptions
	SubsystemOutputs
)

var subsystemNames = []struct {
	bit  IdleSubsystem
	name string
}{
	{SubsystemPlayQueue, "playlist"},
	{SubsystemPlaylists, "stored_playlist"},
	{SubsystemPlayer, "player"},
	{SubsystemMixer, "mixer"},
	{SubsystemOptions, "options"},
	{SubsystemOutputs, "output"},
}

// AllSubsystems is the full set of recognized idle subsystems.
const AllSubsystems = SubsystemPlayQueue | SubsystemPlaylists | SubsystemPlayer |
	SubsystemMixer | SubsystemOptions | SubsystemOutputs

// ParseSubsystem converts a single wire name to its bit, or false if unknown.
func ParseSubsystem(name string) (IdleSubsystem, bool) {
	for _, e := range subsystemNames {
		if e.name == name {
			return e.bit, true
		}
	}
	return 0, false
}

// Names returns the wire names of every subsystem bit set.
func (s IdleSubsystem) Names() []string {
	var names []string
	for _, e := range subsystemNames {
		if s&e.bit != 0 {
			names = append(names, e.name)
		}
	}
	return names
}

func (s IdleSubsystem) Contains(other IdleSubsystem) bool { return s&other != 0 }
func (s IdleSubsystem) IsEmpty() bool                     { return s == 0 }
func (s IdleSubsystem) Union(other IdleSubsystem) IdleSubsystem    { return s | other }
func (s IdleSubsystem) Intersect(other IdleSubsystem) IdleSubsystem { return s & other }
func (s IdleSubsystem) Without(other IdleSubsystem) IdleSubsystem   { return s &^ other }

// RelativeFloat is a numeric argument that may be either an absolute value
// or a signed delta (seek arguments use "+5"/"-5" vs. a bare "30").
type RelativeFloat struct {
	Value    float64
	Relative bool
}

// ParseRelativeFloat parses MPD's seek-argument grammar: a leading '+' or
// '-' marks the value as relative to the current position.
func ParseRelativeFloat(s string) (RelativeFloat, error) {
	if s == "" {
		return RelativeFloat{}, fmt.Errorf("empty numeric argument")
	}
	relative := s[0] == '+' || s[0] == '-'
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return RelativeFloat{}, fmt.Errorf("invalid numeric argument %q: %w", s, err)
	}
	return RelativeFloat{Value: v, Relative: relative}, nil
}

// PositionRange is a half-open [Start, End) range over playlist positions.
// End of -1 means "to the end of the queue".
type PositionRange struct {
	Start, End int
}

// ParsePositionRange parses MPD's "N" or "N:M" range grammar.
func ParsePositionRange(s string) (PositionRange, error) {
	if idx := strings.IndexByte(s, ':'); idx >= 0 {
		start, err := strconv.Atoi(s[:idx])
		if err != nil {
			return PositionRange{}, fmt.Errorf("invalid range start %q: %w", s, err)
		}
		end, err := strconv.Atoi(s[idx+1:])
		if err != nil {
			return PositionRange{}, fmt.Errorf("invalid range end %q: %w", s, err)
		}
		return PositionRange{Start: start, End: end}, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return PositionRange{}, fmt.Errorf("invalid position %q: %w", s, err)
	}
	return PositionRange{Start: n, End: n + 1}, nil
}

// Contains reports whether n falls within the half-open range.
func (r PositionRange) Contains(n int) bool {
	if r.End < 0 {
		return n >= r.Start
	}
	return n >= r.Start && n < r.End
}
