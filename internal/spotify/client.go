package spotify

import (
	"context"
	"fmt"

	"github.com/zmb3/spotify/v2"
)

// imageClient is the subset of *spotify.Client the image resolver needs.
type imageClient interface {
	GetAlbum(ctx context.Context, id spotify.ID, opts ...spotify.RequestOption) (*spotify.FullAlbum, error)
	GetShow(ctx context.Context, id spotify.ID, opts ...spotify.RequestOption) (*spotify.FullShow, error)
	GetArtist(ctx context.Context, id spotify.ID) (*spotify.FullArtist, error)
}

// ImageResolver wraps a Spotify client to answer the artwork cache's image
// lookups. The Web API embeds an Images slice on every resource; by
// convention the first entry is the largest/primary image.
type ImageResolver struct {
	Client imageClient
}

// NewImageResolver builds a resolver backed by an authenticated client.
func NewImageResolver(client *spotify.Client) *ImageResolver {
	return &ImageResolver{Client: client}
}

func (r *ImageResolver) AlbumImageURL(ctx context.Context, id spotify.ID) (string, error) {
	album, err := r.Client.GetAlbum(ctx, id)
	if err != nil {
		return "", fmt.Errorf("fetching album %s: %w", id, err)
	}
	return firstImage(album.Images), nil
}

func (r *ImageResolver) ShowImageURL(ctx context.Context, id spotify.ID) (string, error) {
	show, err := r.Client.GetShow(ctx, id)
	if err != nil {
		return "", fmt.Errorf("fetching show %s: %w", id, err)
	}
	return firstImage(show.Images), nil
}

func (r *ImageResolver) ArtistImageURL(ctx context.Context, id spotify.ID) (string, error) {
	artist, err := r.Client.GetArtist(ctx, id)
	if err != nil {
		return "", fmt.Errorf("fetching artist %s: %w", id, err)
	}
	return firstImage(artist.Images), nil
}

func firstImage(images []spotify.Image) string {
	if len(images) == 0 {
		return ""
	}
	return images[0].URL
}
