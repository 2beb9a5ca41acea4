// Package services defines the catalog interfaces used by the playlist pipeline and implements them for Spotify.
//
// # Interfaces
//
// The pipeline depends on small interfaces rather than a concrete client:
//   - [ArtistResolver] : name to catalog artist, one best match
//   - [TrackFetcher] : an artist's top tracks with audio features
//   - [PlaylistCreator] : remote playlist creation
//   - [ArtistRecommender] : related artists, used for recommendations
//
// [Catalog] joins them. Tests substitute hand-written fakes.
//
// # Spotify Implementation
//
// [SpotifyService] wraps github.com/zmb3/spotify/v2. Until [SpotifyService.Authenticate] is
// called with a user token it uses the client-credentials grant, which is enough for searching
// and fetching tracks. Refreshed user tokens are passed to the callback set with
// [SpotifyService.SetTokenCallback] so the CLI can save them.
//
// Rate limiting (HTTP 429) is retried by the client itself.
//
// # Error Handling
//
// Services wrap errors with sentinels from the shared package:
//   - [shared.ErrArtistNotFound] : search returned nothing
//   - [shared.ErrNotAuthenticated] : playlist creation without a user token
//   - [shared.ErrTokenExpired] : the API rejected the token
//   - [shared.ErrAPIRequest] : any other request failure
package services
