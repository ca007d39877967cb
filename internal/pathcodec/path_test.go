package pathcodec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	p := Path{Items: []Item{
		{Type: Album, ID: "abc123"},
		{Type: Track, ID: "xyz789"},
	}}
	s := p.String()
	assert.Equal(t, "internal/album/abc123/track/xyz789", s)

	parsed, ok := Parse(s)
	require.True(t, ok)
	assert.Equal(t, p, parsed)
}

func TestParseEmptyRoot(t *testing.T) {
	p, ok := Parse("internal/")
	require.True(t, ok)
	assert.Empty(t, p.Items)
	assert.Equal(t, "internal", p.String())
}

func TestParseTruncatedTrailingType(t *testing.T) {
	p, ok := Parse("internal/album/X/track/")
	require.True(t, ok)
	assert.Equal(t, []Item{{Type: Album, ID: "X"}}, p.Items)
}

func TestParseRejectsUnknownPrefix(t *testing.T) {
	_, ok := Parse("spotify/album/X")
	assert.False(t, ok)
}

func TestParseRejectsUnknownType(t *testing.T) {
	_, ok := Parse("internal/playlist/X")
	assert.False(t, ok)
}

func TestFindFirstInnermostWins(t *testing.T) {
	p := Path{Items: []Item{
		{Type: Artist, ID: "A"},
		{Type: Album, ID: "B"},
		{Type: Track, ID: "C"},
	}}
	item, ok := p.FindFirst(Album, Show, Artist)
	require.True(t, ok)
	assert.Equal(t, Item{Type: Album, ID: "B"}, item)
}

func TestFindFirstFallsBackToOuter(t *testing.T) {
	p := Path{Items: []Item{
		{Type: Artist, ID: "A"},
		{Type: Track, ID: "C"},
	}}
	item, ok := p.FindFirst(Album, Show, Artist)
	require.True(t, ok)
	assert.Equal(t, Item{Type: Artist, ID: "A"}, item)
}

func TestFindFirstNoMatch(t *testing.T) {
	p := Path{Items: []Item{{Type: Track, ID: "C"}}}
	_, ok := p.FindFirst(Album)
	assert.False(t, ok)
}
