// package services defines the catalog interfaces the playlist pipeline depends on
//
// Spotify implements all of them.
package services

import (
	"context"

	"github.com/desertthunder/festlist/internal/models"
	"golang.org/x/oauth2"
)

// BatchSize is the most tracks added to a remote playlist per request.
const BatchSize = 100

// ArtistResolver finds the catalog entry for an artist name.
type ArtistResolver interface {
	// ResolveArtist returns the single best match for name, or [shared.ErrArtistNotFound].
	ResolveArtist(ctx context.Context, name string) (*models.Artist, error)
}

// TrackFetcher retrieves an artist's top tracks.
type TrackFetcher interface {
	// TopTracks returns at most limit tracks with audio features attached where available.
	// Returning fewer than limit is not an error.
	TopTracks(ctx context.Context, artist models.Artist, limit int) ([]models.Track, error)
}

// PlaylistCreator creates playlists on the streaming service.
type PlaylistCreator interface {
	CreatePlaylist(ctx context.Context, req CreatePlaylistRequest) (*models.RemotePlaylist, error)
}

// ArtistRecommender lists artists related to a given one.
type ArtistRecommender interface {
	RelatedArtists(ctx context.Context, artist models.Artist) ([]models.Artist, error)
}

// Catalog is the full set of operations the pipeline uses.
type Catalog interface {
	ArtistResolver
	TrackFetcher
	PlaylistCreator
	ArtistRecommender
}

// OAuthService is a catalog that signs users in with the authorization-code flow.
type OAuthService interface {
	GetAuthURL(state string) string
	OAuthConfig() *oauth2.Config
	Authenticate(ctx context.Context, token *oauth2.Token) error
}

// CreatePlaylistRequest describes a playlist to create. TrackIDs are added in order.
type CreatePlaylistRequest struct {
	Name        string
	Description string
	Public      bool
	TrackIDs    []string
}

// Batches splits ids into consecutive chunks of at most size.
func Batches(ids []string, size int) [][]string {
	if size <= 0 {
		size = BatchSize
	}
	var out [][]string
	for len(ids) > 0 {
		n := min(size, len(ids))
		out = append(out, ids[:n])
		ids = ids[n:]
	}
	return out
}
