package mpdproto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecordBuilderSkipsEmpty(t *testing.T) {
	r := NewRecordBuilder().
		Str("file", "internal/track/abc").
		StrIfNotEmpty("artist", "").
		StrIfNotEmpty("title", "Song").
		Build()

	var b strings.Builder
	r.WriteLines(&b)
	assert.Equal(t, "file: internal/track/abc\ntitle: Song\n", b.String())
}

func TestRecordBuilderBoolAndTime(t *testing.T) {
	r := NewRecordBuilder().
		Bool("repeat", true).
		Bool("random", false).
		Time(4.444, 6.666).
		Build()

	var b strings.Builder
	r.WriteLines(&b)
	assert.Equal(t, "repeat: 1\nrandom: 0\ntime: 4:7\nelapsed: 4.444\nduration: 6.666\n", b.String())
}

func TestSingleRecordSequenceMatchesBareRecord(t *testing.T) {
	single := Data(NewRecordBuilder().Str("file", "x").Build())
	var bSingle strings.Builder
	single.WriteResponse(&bSingle)

	assert.Equal(t, "file: x\n", bSingle.String())
}

func TestMultiRecordSequenceSeparatesWithBlankLine(t *testing.T) {
	multi := Data(
		NewRecordBuilder().Str("file", "a").Build(),
		NewRecordBuilder().Str("file", "b").Build(),
		NewRecordBuilder().Str("file", "c").Build(),
	)
	var b strings.Builder
	multi.WriteResponse(&b)

	assert.Equal(t, "file: a\n\nfile: b\n\nfile: c\n", b.String())
}

func TestIdleOutputWritesChangedLines(t *testing.T) {
	out := Idle(SubsystemPlayer | SubsystemMixer)
	var b strings.Builder
	out.WriteResponse(&b)
	assert.Contains(t, b.String(), "changed: player\n")
	assert.Contains(t, b.String(), "changed: mixer\n")
}

func TestBinaryFraming(t *testing.T) {
	out := Binary(100, []byte("abc"))
	var b strings.Builder
	out.WriteResponse(&b)
	assert.Equal(t, "size: 100\nbinary: 3\nabc\n", b.String())
}
