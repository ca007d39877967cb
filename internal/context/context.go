// Package context models the currently-playing Spotify context (an album,
// playlist, artist's top tracks, show, or a single track/episode) and
// caches it in a single slot so repeated playlistinfo/status calls don't
// re-fetch from the API on every command.
package context

import (
	stdcontext "context"
	"sync"

	"github.com/xvello/mpdify-go/internal/idlebus"
	"github.com/xvello/mpdify-go/internal/mpdproto"
	"github.com/zmb3/spotify/v2"
)

// Kind tags which variant a PlayContext holds.
type Kind int

const (
	KindEmpty Kind = iota
	KindAlbum
	KindPlaylist
	KindArtist
	KindTrack
	KindShow
	KindEpisode
)

// PlayContext is the tagged union of everything "the current queue" can be.
type PlayContext struct {
	Kind Kind

	Album    *spotify.FullAlbum
	Playlist *spotify.FullPlaylist
	Artist   *spotify.FullArtist
	Tracks   []spotify.FullTrack // Artist's top tracks, or Album/Playlist items flattened

	Track   *spotify.FullTrack
	Show    *spotify.FullShow
	Episode *spotify.FullEpisode
}

var Empty = PlayContext{Kind: KindEmpty}

// Size returns how many playable items this context holds.
func (p PlayContext) Size() int {
	switch p.Kind {
	case KindAlbum, KindPlaylist, KindArtist:
		return len(p.Tracks)
	case KindTrack, KindShow, KindEpisode:
		return 1
	default:
		return 0
	}
}

// PositionForID returns the zero-based position of id within this context,
// defaulting to 0 if not found — a documented limitation carried over from
// the upstream implementation rather than treated as an error, since a
// "position" is needed even for an id the cache doesn't recognize yet.
func (p PlayContext) PositionForID(id spotify.ID) int {
	switch p.Kind {
	case KindAlbum, KindPlaylist, KindArtist:
		for i, t := range p.Tracks {
			if t.ID == id {
				return i
			}
		}
	}
	return 0
}

// APIClient is the subset of the Spotify client the context cache needs.
type APIClient interface {
	GetAlbum(ctx stdcontext.Context, id spotify.ID, opts ...spotify.RequestOption) (*spotify.FullAlbum, error)
	GetAlbumTracks(ctx stdcontext.Context, id spotify.ID, opts ...spotify.RequestOption) (*spotify.SimpleTrackPage, error)
	GetPlaylist(ctx stdcontext.Context, id spotify.ID, opts ...spotify.RequestOption) (*spotify.FullPlaylist, error)
	GetPlaylistItems(ctx stdcontext.Context, id spotify.ID, opts ...spotify.RequestOption) (*spotify.PlaylistItemPage, error)
	GetArtist(ctx stdcontext.Context, id spotify.ID) (*spotify.FullArtist, error)
	GetArtistsTopTracks(ctx stdcontext.Context, id spotify.ID, country string) ([]spotify.FullTrack, error)
	GetTrack(ctx stdcontext.Context, id spotify.ID, opts ...spotify.RequestOption) (*spotify.FullTrack, error)
	GetShow(ctx stdcontext.Context, id spotify.ID, opts ...spotify.RequestOption) (*spotify.FullShow, error)
	GetEpisode(ctx stdcontext.Context, id spotify.ID, opts ...spotify.RequestOption) (*spotify.FullEpisode, error)
}

// Cache memoizes the single most-recently-resolved PlayContext, keyed by
// the Spotify context URI it was resolved from.
type Cache struct {
	client APIClient
	bus    *idlebus.Bus

	mu   sync.Mutex
	key  string
	data PlayContext
}

// New builds an empty context cache.
func New(client APIClient, bus *idlebus.Bus) *Cache {
	return &Cache{client: client, bus: bus}
}

// Get returns the PlayContext for key (a Spotify context URI), re-resolving
// it if key differs from what's cached. An empty key returns Empty without
// touching the cache.
func (c *Cache) Get(ctx stdcontext.Context, key string) (PlayContext, error) {
	if key == "" {
		return Empty, nil
	}

	c.mu.Lock()
	if c.key == key {
		data := c.data
		c.mu.Unlock()
		return data, nil
	}
	c.mu.Unlock()

	data, err := c.retrieve(ctx, key)
	if err != nil {
		return PlayContext{}, err
	}

	c.mu.Lock()
	c.key = key
	c.data = data
	c.mu.Unlock()

	c.bus.Notify(mpdproto.SubsystemPlayQueue)
	return data, nil
}

func (c *Cache) retrieve(ctx stdcontext.Context, uri string) (PlayContext, error) {
	kind, id := parseContextURI(uri)
	switch kind {
	case KindAlbum:
		album, err := c.client.GetAlbum(ctx, id)
		if err != nil {
			return PlayContext{}, err
		}
		tracks, err := c.paginateAlbumTracks(ctx, id)
		if err != nil {
			return PlayContext{}, err
		}
		return PlayContext{Kind: KindAlbum, Album: album, Tracks: tracks}, nil

	case KindPlaylist:
		pl, err := c.client.GetPlaylist(ctx, id)
		if err != nil {
			return PlayContext{}, err
		}
		tracks, err := c.paginatePlaylistItems(ctx, id)
		if err != nil {
			return PlayContext{}, err
		}
		return PlayContext{Kind: KindPlaylist, Playlist: pl, Tracks: tracks}, nil

	case KindArtist:
		artist, err := c.client.GetArtist(ctx, id)
		if err != nil {
			return PlayContext{}, err
		}
		tracks, err := c.client.GetArtistsTopTracks(ctx, id, "from_token")
		if err != nil {
			return PlayContext{}, err
		}
		return PlayContext{Kind: KindArtist, Artist: artist, Tracks: tracks}, nil

	case KindTrack:
		track, err := c.client.GetTrack(ctx, id)
		if err != nil {
			return PlayContext{}, err
		}
		return PlayContext{Kind: KindTrack, Track: track}, nil

	case KindShow:
		show, err := c.client.GetShow(ctx, id)
		if err != nil {
			return PlayContext{}, err
		}
		return PlayContext{Kind: KindShow, Show: show}, nil

	case KindEpisode:
		ep, err := c.client.GetEpisode(ctx, id)
		if err != nil {
			return PlayContext{}, err
		}
		return PlayContext{Kind: KindEpisode, Episode: ep}, nil
	}
	return Empty, nil
}

// paginateAlbumTracks fetches every page of an album's tracks, matching the
// upstream context resolver's repeated-fetch-until-total-reached loop.
func (c *Cache) paginateAlbumTracks(ctx stdcontext.Context, id spotify.ID) ([]spotify.FullTrack, error) {
	var out []spotify.FullTrack
	offset := 0
	for {
		page, err := c.client.GetAlbumTracks(ctx, id, spotify.Offset(offset))
		if err != nil {
			return nil, err
		}
		for _, t := range page.Tracks {
			out = append(out, spotify.FullTrack{SimpleTrack: t})
		}
		offset += len(page.Tracks)
		if offset >= page.Total || len(page.Tracks) == 0 {
			break
		}
	}
	return out, nil
}

func (c *Cache) paginatePlaylistItems(ctx stdcontext.Context, id spotify.ID) ([]spotify.FullTrack, error) {
	var out []spotify.FullTrack
	offset := 0
	for {
		page, err := c.client.GetPlaylistItems(ctx, id, spotify.Offset(offset))
		if err != nil {
			return nil, err
		}
		for _, item := range page.Items {
			if item.Track.Track != nil {
				out = append(out, *item.Track.Track)
			}
		}
		offset += len(page.Items)
		if offset >= page.Total || len(page.Items) == 0 {
			break
		}
	}
	return out, nil
}

// parseContextURI extracts the resource kind and id from a Spotify context
// URI of the form "spotify:album:<id>".
func parseContextURI(uri string) (Kind, spotify.ID) {
	parts := splitURI(uri)
	if len(parts) != 3 || parts[0] != "spotify" {
		return KindEmpty, ""
	}
	id := spotify.ID(parts[2])
	switch parts[1] {
	case "album":
		return KindAlbum, id
	case "playlist":
		return KindPlaylist, id
	case "artist":
		return KindArtist, id
	case "track":
		return KindTrack, id
	case "show":
		return KindShow, id
	case "episode":
		return KindEpisode, id
	}
	return KindEmpty, ""
}

func splitURI(uri string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(uri); i++ {
		if uri[i] == ':' {
			parts = append(parts, uri[start:i])
			start = i + 1
		}
	}
	parts = append(parts, uri[start:])
	return parts
}
