package spotify

import (
	"context"

	"github.com/zmb3/spotify/v2"
)

// LazyClient resolves a concrete *spotify.Client from the Authenticator on
// every call instead of once at startup, so a session completed through the
// OAuth callback after the process started is picked up immediately rather
// than requiring a restart.
type LazyClient struct {
	auth    *Authenticator
	authURL string
}

// NewLazyClient builds a client that re-resolves its underlying session on
// every call. authURL is surfaced in AuthNeededError when no session exists.
func NewLazyClient(auth *Authenticator, authURL string) *LazyClient {
	return &LazyClient{auth: auth, authURL: authURL}
}

func (l *LazyClient) resolve(ctx context.Context) (*spotify.Client, error) {
	return l.auth.Client(ctx, l.authURL)
}

func (l *LazyClient) PlayerState(ctx context.Context, opts ...spotify.RequestOption) (*spotify.PlayerState, error) {
	c, err := l.resolve(ctx)
	if err != nil {
		return nil, err
	}
	return c.PlayerState(ctx, opts...)
}

func (l *LazyClient) Play(ctx context.Context, opts ...spotify.RequestOption) error {
	c, err := l.resolve(ctx)
	if err != nil {
		return err
	}
	return c.Play(ctx, opts...)
}

func (l *LazyClient) PlayOpt(ctx context.Context, opt *spotify.PlayOptions) error {
	c, err := l.resolve(ctx)
	if err != nil {
		return err
	}
	return c.PlayOpt(ctx, opt)
}

func (l *LazyClient) Pause(ctx context.Context, opts ...spotify.RequestOption) error {
	c, err := l.resolve(ctx)
	if err != nil {
		return err
	}
	return c.Pause(ctx, opts...)
}

func (l *LazyClient) Next(ctx context.Context, opts ...spotify.RequestOption) error {
	c, err := l.resolve(ctx)
	if err != nil {
		return err
	}
	return c.Next(ctx, opts...)
}

func (l *LazyClient) Previous(ctx context.Context, opts ...spotify.RequestOption) error {
	c, err := l.resolve(ctx)
	if err != nil {
		return err
	}
	return c.Previous(ctx, opts...)
}

func (l *LazyClient) Seek(ctx context.Context, positionMs int, opts ...spotify.RequestOption) error {
	c, err := l.resolve(ctx)
	if err != nil {
		return err
	}
	return c.Seek(ctx, positionMs, opts...)
}

func (l *LazyClient) Volume(ctx context.Context, percent int, opts ...spotify.RequestOption) error {
	c, err := l.resolve(ctx)
	if err != nil {
		return err
	}
	return c.Volume(ctx, percent, opts...)
}

func (l *LazyClient) Shuffle(ctx context.Context, shuffle bool, opts ...spotify.RequestOption) error {
	c, err := l.resolve(ctx)
	if err != nil {
		return err
	}
	return c.Shuffle(ctx, shuffle, opts...)
}

func (l *LazyClient) Repeat(ctx context.Context, state string, opts ...spotify.RequestOption) error {
	c, err := l.resolve(ctx)
	if err != nil {
		return err
	}
	return c.Repeat(ctx, state, opts...)
}

func (l *LazyClient) GetAlbum(ctx context.Context, id spotify.ID, opts ...spotify.RequestOption) (*spotify.FullAlbum, error) {
	c, err := l.resolve(ctx)
	if err != nil {
		return nil, err
	}
	return c.GetAlbum(ctx, id, opts...)
}

func (l *LazyClient) GetAlbumTracks(ctx context.Context, id spotify.ID, opts ...spotify.RequestOption) (*spotify.SimpleTrackPage, error) {
	c, err := l.resolve(ctx)
	if err != nil {
		return nil, err
	}
	return c.GetAlbumTracks(ctx, id, opts...)
}

func (l *LazyClient) GetPlaylist(ctx context.Context, id spotify.ID, opts ...spotify.RequestOption) (*spotify.FullPlaylist, error) {
	c, err := l.resolve(ctx)
	if err != nil {
		return nil, err
	}
	return c.GetPlaylist(ctx, id, opts...)
}

func (l *LazyClient) GetPlaylistItems(ctx context.Context, id spotify.ID, opts ...spotify.RequestOption) (*spotify.PlaylistItemPage, error) {
	c, err := l.resolve(ctx)
	if err != nil {
		return nil, err
	}
	return c.GetPlaylistItems(ctx, id, opts...)
}

func (l *LazyClient) GetArtist(ctx context.Context, id spotify.ID) (*spotify.FullArtist, error) {
	c, err := l.resolve(ctx)
	if err != nil {
		return nil, err
	}
	return c.GetArtist(ctx, id)
}

func (l *LazyClient) GetArtistsTopTracks(ctx context.Context, id spotify.ID, country string) ([]spotify.FullTrack, error) {
	c, err := l.resolve(ctx)
	if err != nil {
		return nil, err
	}
	return c.GetArtistsTopTracks(ctx, id, country)
}

func (l *LazyClient) GetTrack(ctx context.Context, id spotify.ID, opts ...spotify.RequestOption) (*spotify.FullTrack, error) {
	c, err := l.resolve(ctx)
	if err != nil {
		return nil, err
	}
	return c.GetTrack(ctx, id, opts...)
}

func (l *LazyClient) GetShow(ctx context.Context, id spotify.ID, opts ...spotify.RequestOption) (*spotify.FullShow, error) {
	c, err := l.resolve(ctx)
	if err != nil {
		return nil, err
	}
	return c.GetShow(ctx, id, opts...)
}

func (l *LazyClient) GetEpisode(ctx context.Context, id spotify.ID, opts ...spotify.RequestOption) (*spotify.FullEpisode, error) {
	c, err := l.resolve(ctx)
	if err != nil {
		return nil, err
	}
	return c.GetEpisode(ctx, id, opts...)
}

func (l *LazyClient) AlbumImageURL(ctx context.Context, id spotify.ID) (string, error) {
	c, err := l.resolve(ctx)
	if err != nil {
		return "", err
	}
	return (&ImageResolver{Client: c}).AlbumImageURL(ctx, id)
}

func (l *LazyClient) ShowImageURL(ctx context.Context, id spotify.ID) (string, error) {
	c, err := l.resolve(ctx)
	if err != nil {
		return "", err
	}
	return (&ImageResolver{Client: c}).ShowImageURL(ctx, id)
}

func (l *LazyClient) ArtistImageURL(ctx context.Context, id spotify.ID) (string, error) {
	c, err := l.resolve(ctx)
	if err != nil {
		return "", err
	}
	return (&ImageResolver{Client: c}).ArtistImageURL(ctx, id)
}
