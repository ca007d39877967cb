package artcache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xvello/mpdify-go/internal/mpdproto"
	"github.com/xvello/mpdify-go/internal/pathcodec"
	"github.com/zmb3/spotify/v2"
)

type fakeResolver struct {
	url string
}

func (f *fakeResolver) AlbumImageURL(ctx context.Context, id spotify.ID) (string, error) {
	return f.url, nil
}
func (f *fakeResolver) ShowImageURL(ctx context.Context, id spotify.ID) (string, error) {
	return f.url, nil
}
func (f *fakeResolver) ArtistImageURL(ctx context.Context, id spotify.ID) (string, error) {
	return f.url, nil
}

func TestHandlerRejectsPathWithoutArtEntity(t *testing.T) {
	cache, err := NewDiskCache(t.TempDir(), 1024, nil)
	require.NoError(t, err)
	h := NewHandler(cache, &fakeResolver{}, 64)

	cmd := mpdproto.Command{
		Kind: mpdproto.CmdAlbumArt,
		Path: pathcodec.Path{Items: []pathcodec.Item{{Type: pathcodec.Track, ID: "x"}}},
	}
	_, err = h.Execute(context.Background(), cmd)
	assert.Error(t, err)
}

func TestHandlerDeclinesOtherCommands(t *testing.T) {
	cache, err := NewDiskCache(t.TempDir(), 1024, nil)
	require.NoError(t, err)
	h := NewHandler(cache, &fakeResolver{}, 64)

	_, err = h.Execute(context.Background(), mpdproto.Command{Kind: mpdproto.CmdStatus})
	assert.ErrorIs(t, err, mpdproto.ErrUnsupported)
}

func TestHandlerChunksResponse(t *testing.T) {
	cache, err := NewDiskCache(t.TempDir(), 1024*1024, nil)
	require.NoError(t, err)
	require.NoError(t, cache.Put("album:abc", []byte("0123456789")))

	h := NewHandler(cache, &fakeResolver{url: "http://example.invalid/art.jpg"}, 4)

	cmd := mpdproto.Command{
		Kind:   mpdproto.CmdAlbumArt,
		Path:   pathcodec.Path{Items: []pathcodec.Item{{Type: pathcodec.Album, ID: "abc"}}},
		Offset: 0,
	}
	out, err := h.Execute(context.Background(), cmd)
	require.NoError(t, err)
	assert.Equal(t, int64(10), out.BinarySize)
	assert.Equal(t, []byte("0123"), out.BinaryChunk)

	cmd.Offset = 8
	out, err = h.Execute(context.Background(), cmd)
	require.NoError(t, err)
	assert.Equal(t, []byte("89"), out.BinaryChunk)
}
