package artcache

import (
	"context"
	"fmt"

	"github.com/xvello/mpdify-go/internal/mpdproto"
	"github.com/xvello/mpdify-go/internal/pathcodec"
	"github.com/zmb3/spotify/v2"
)

// ImageResolver fetches the primary artwork URL for an album/show/artist id.
type ImageResolver interface {
	AlbumImageURL(ctx context.Context, id spotify.ID) (string, error)
	ShowImageURL(ctx context.Context, id spotify.ID) (string, error)
	ArtistImageURL(ctx context.Context, id spotify.ID) (string, error)
}

// Handler answers "albumart"/"readpicture" commands, resolving the path to
// an artwork-bearing entity, fetching it (through the cache) and returning
// it in chunks.
type Handler struct {
	cache     *DiskCache
	resolver  ImageResolver
	chunkSize int64
}

// NewHandler builds an artwork command handler.
func NewHandler(cache *DiskCache, resolver ImageResolver, chunkSize int64) *Handler {
	return &Handler{cache: cache, resolver: resolver, chunkSize: chunkSize}
}

func (h *Handler) Name() string { return "artwork" }

// Execute implements mpdproto.Handler.
func (h *Handler) Execute(ctx context.Context, cmd mpdproto.Command) (mpdproto.HandlerOutput, error) {
	switch cmd.Kind {
	case mpdproto.CmdAlbumArt, mpdproto.CmdReadPicture:
	default:
		return mpdproto.HandlerOutput{}, mpdproto.ErrUnsupported
	}

	item, ok := cmd.Path.FindFirst(pathcodec.Album, pathcodec.Show, pathcodec.Artist)
	if !ok {
		return mpdproto.HandlerOutput{}, fmt.Errorf("no artwork-bearing entity in path %q", cmd.Path.String())
	}

	key := fmt.Sprintf("%s:%s", item.Type, item.ID)
	url, err := h.resolveURL(ctx, item)
	if err != nil {
		return mpdproto.HandlerOutput{}, err
	}

	data, err := h.cache.EnsureFetched(ctx, key, url)
	if err != nil {
		return mpdproto.HandlerOutput{}, err
	}

	total := int64(len(data))
	if cmd.Offset >= total {
		return mpdproto.Binary(total, nil), nil
	}
	end := cmd.Offset + h.chunkSize
	if end > total {
		end = total
	}
	return mpdproto.Binary(total, data[cmd.Offset:end]), nil
}

func (h *Handler) resolveURL(ctx context.Context, item pathcodec.Item) (string, error) {
	id := spotify.ID(item.ID)
	switch item.Type {
	case pathcodec.Album:
		return h.resolver.AlbumImageURL(ctx, id)
	case pathcodec.Show:
		return h.resolver.ShowImageURL(ctx, id)
	case pathcodec.Artist:
		return h.resolver.ArtistImageURL(ctx, id)
	}
	return "", fmt.Errorf("unsupported artwork entity type %v", item.Type)
}
