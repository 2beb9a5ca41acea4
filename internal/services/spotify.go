// Spotify implementation of [Catalog] backed by github.com/zmb3/spotify/v2
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/festlist/internal/models"
	"github.com/desertthunder/festlist/internal/shared"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const defaultMarket = "US"

var spotifyScopes = []string{
	spotifyauth.ScopeUserReadPrivate,
	spotifyauth.ScopePlaylistModifyPublic,
	spotifyauth.ScopePlaylistModifyPrivate,
}

// SpotifyOptions configures a [SpotifyService].
type SpotifyOptions struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	// UserID owns created playlists; empty means the signed-in user.
	UserID string
	Market string
	Logger *log.Logger

	// HTTPClient is the base transport for token and API calls.
	HTTPClient *http.Client
	// BaseURL and TokenURL point the client at another API host.
	BaseURL  string
	TokenURL string
}

// SpotifyService talks to the Spotify Web API.
//
// Without a user token it signs in with client credentials, which is enough
// to resolve artists and fetch tracks. Creating playlists needs [SpotifyService.Authenticate].
type SpotifyService struct {
	config  *oauth2.Config
	app     *clientcredentials.Config
	opts    SpotifyOptions
	logger  *log.Logger
	onToken func(*oauth2.Token)

	mu     sync.Mutex
	client *spotify.Client
	user   bool
}

// NewSpotifyService creates a SpotifyService. Client ID and secret are required.
func NewSpotifyService(opts SpotifyOptions) (*SpotifyService, error) {
	if opts.ClientID == "" || opts.ClientSecret == "" {
		return nil, fmt.Errorf("%w: spotify client_id and client_secret are required", shared.ErrMissingCredentials)
	}
	if opts.Market == "" {
		opts.Market = defaultMarket
	}
	if opts.RedirectURI == "" {
		opts.RedirectURI = "http://127.0.0.1:3000/callback"
	}
	if opts.TokenURL == "" {
		opts.TokenURL = spotifyauth.TokenURL
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	config := &oauth2.Config{
		ClientID:     opts.ClientID,
		ClientSecret: opts.ClientSecret,
		RedirectURL:  opts.RedirectURI,
		Scopes:       spotifyScopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyauth.AuthURL,
			TokenURL: opts.TokenURL,
		},
	}

	app := &clientcredentials.Config{
		ClientID:     opts.ClientID,
		ClientSecret: opts.ClientSecret,
		TokenURL:     opts.TokenURL,
	}

	return &SpotifyService{config: config, app: app, opts: opts, logger: opts.Logger}, nil
}

// GetAuthURL returns the consent page URL for the authorization-code flow.
func (s *SpotifyService) GetAuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// OAuthConfig exposes the authorization-code configuration for the callback handler.
func (s *SpotifyService) OAuthConfig() *oauth2.Config {
	return s.config
}

// SetTokenCallback registers fn to receive tokens issued by a refresh.
func (s *SpotifyService) SetTokenCallback(fn func(*oauth2.Token)) {
	s.onToken = fn
}

// Authenticate switches the service to a user token. Expired tokens are refreshed as needed.
func (s *SpotifyService) Authenticate(ctx context.Context, token *oauth2.Token) error {
	if token == nil || (token.AccessToken == "" && token.RefreshToken == "") {
		return fmt.Errorf("%w: empty token", shared.ErrNotAuthenticated)
	}

	ctx = s.tokenContext(ctx)
	source := &notifyingSource{
		base:    oauth2.ReuseTokenSource(token, s.config.TokenSource(ctx, token)),
		current: token.AccessToken,
		notify:  s.onToken,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.client = s.newClient(oauth2.NewClient(ctx, source))
	s.user = true
	return nil
}

// Authenticated reports whether a user token is in use.
func (s *SpotifyService) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// ResolveArtist searches for name and returns the top artist hit.
func (s *SpotifyService) ResolveArtist(ctx context.Context, name string) (*models.Artist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: empty artist name", shared.ErrInvalidArgument)
	}

	result, err := s.api(ctx).Search(ctx, name, spotify.SearchTypeArtist, spotify.Limit(1))
	if err != nil {
		return nil, s.wrap(err, "search artist %q", name)
	}
	if result.Artists == nil || len(result.Artists.Artists) == 0 {
		return nil, fmt.Errorf("%w: %s", shared.ErrArtistNotFound, name)
	}

	found := toArtist(result.Artists.Artists[0])
	if !strings.EqualFold(found.Name, name) {
		s.logger.Warn("artist name differs from catalog", "searched", name, "found", found.Name)
	}
	return &found, nil
}

// TopTracks returns the artist's most popular tracks in the configured market.
//
// Audio features are best effort; if the lookup fails the tracks are returned without them.
func (s *SpotifyService) TopTracks(ctx context.Context, artist models.Artist, limit int) ([]models.Track, error) {
	if !artist.Resolved() {
		return nil, fmt.Errorf("%w: artist %q has no catalog id", shared.ErrInvalidArgument, artist.Name)
	}

	client := s.api(ctx)
	full, err := client.GetArtistsTopTracks(ctx, spotify.ID(artist.CatalogID), s.opts.Market)
	if err != nil {
		return nil, s.wrap(err, "top tracks for %s", artist.Name)
	}
	if limit > 0 && len(full) > limit {
		full = full[:limit]
	}

	tracks := make([]models.Track, len(full))
	ids := make([]spotify.ID, len(full))
	for i, ft := range full {
		tracks[i] = models.Track{
			CatalogID:  string(ft.ID),
			Title:      ft.Name,
			ArtistName: artist.Name,
			ArtistID:   artist.CatalogID,
			DurationMS: int(ft.Duration),
			Popularity: int(ft.Popularity),
		}
		ids[i] = ft.ID
	}

	if len(ids) == 0 {
		return tracks, nil
	}

	features, err := client.GetAudioFeatures(ctx, ids...)
	if err != nil {
		s.logger.Warn("audio features unavailable", "artist", artist.Name, "error", err)
		return tracks, nil
	}

	byID := make(map[string]*spotify.AudioFeatures, len(features))
	for _, f := range features {
		if f != nil {
			byID[string(f.ID)] = f
		}
	}
	for i := range tracks {
		if f, ok := byID[tracks[i].CatalogID]; ok {
			tracks[i].AudioFeatures = map[string]float64{
				models.FeatureDanceability: float64(f.Danceability),
				models.FeatureEnergy:       float64(f.Energy),
				models.FeatureTempo:        float64(f.Tempo),
				models.FeatureSpeechiness:  float64(f.Speechiness),
			}
		}
	}

	return tracks, nil
}

// RelatedArtists returns the catalog's related artists for artist.
func (s *SpotifyService) RelatedArtists(ctx context.Context, artist models.Artist) ([]models.Artist, error) {
	if !artist.Resolved() {
		return nil, fmt.Errorf("%w: artist %q has no catalog id", shared.ErrInvalidArgument, artist.Name)
	}

	related, err := s.api(ctx).GetRelatedArtists(ctx, spotify.ID(artist.CatalogID))
	if err != nil {
		return nil, s.wrap(err, "related artists for %s", artist.Name)
	}

	out := make([]models.Artist, len(related))
	for i, fa := range related {
		out[i] = toArtist(fa)
	}
	return out, nil
}

// CreatePlaylist creates the playlist and adds its tracks in batches of [BatchSize].
func (s *SpotifyService) CreatePlaylist(ctx context.Context, req CreatePlaylistRequest) (*models.RemotePlaylist, error) {
	if !s.Authenticated() {
		return nil, fmt.Errorf("%w: run `festlist auth login` first", shared.ErrNotAuthenticated)
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: playlist name is required", shared.ErrInvalidArgument)
	}

	client := s.api(ctx)

	userID := s.opts.UserID
	if userID == "" {
		user, err := client.CurrentUser(ctx)
		if err != nil {
			return nil, s.wrap(err, "current user")
		}
		userID = user.ID
	}

	created, err := client.CreatePlaylistForUser(ctx, userID, req.Name, req.Description, req.Public, false)
	if err != nil {
		return nil, s.wrap(err, "create playlist %q", req.Name)
	}

	for i, batch := range Batches(req.TrackIDs, BatchSize) {
		ids := make([]spotify.ID, len(batch))
		for j, id := range batch {
			ids[j] = spotify.ID(id)
		}
		if _, err := client.AddTracksToPlaylist(ctx, created.ID, ids...); err != nil {
			return nil, s.wrap(err, "add batch %d to playlist %s", i+1, created.ID)
		}
	}

	s.logger.Info("playlist created", "name", created.Name, "id", created.ID, "tracks", len(req.TrackIDs))

	return &models.RemotePlaylist{
		ID:     string(created.ID),
		Name:   created.Name,
		URI:    string(created.URI),
		URL:    created.ExternalURLs["spotify"],
		Public: req.Public,
	}, nil
}

// api returns the current client, creating the client-credentials one on first use.
func (s *SpotifyService) api(ctx context.Context) *spotify.Client {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client == nil {
		// the token is fetched lazily on the first request, so ctx only carries the base client
		s.client = s.newClient(s.app.Client(s.tokenContext(context.WithoutCancel(ctx))))
	}
	return s.client
}

func (s *SpotifyService) newClient(httpClient *http.Client) *spotify.Client {
	opts := []spotify.ClientOption{spotify.WithRetry(true)}
	if s.opts.BaseURL != "" {
		opts = append(opts, spotify.WithBaseURL(s.opts.BaseURL))
	}
	return spotify.New(httpClient, opts...)
}

// tokenContext makes oauth2 use the configured base HTTP client.
func (s *SpotifyService) tokenContext(ctx context.Context) context.Context {
	if s.opts.HTTPClient == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, s.opts.HTTPClient)
}

// wrap maps client errors onto shared sentinels.
func (s *SpotifyService) wrap(err error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)

	var apiErr spotify.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Status {
		case http.StatusUnauthorized:
			return fmt.Errorf("%w: %s: %v", shared.ErrTokenExpired, msg, err)
		case http.StatusForbidden:
			return fmt.Errorf("%w: %s: %v", shared.ErrNotAuthenticated, msg, err)
		}
	}

	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return fmt.Errorf("%w: %s: %v", shared.ErrAuthFailed, msg, err)
	}

	return fmt.Errorf("%w: %s: %v", shared.ErrAPIRequest, msg, err)
}

func toArtist(fa spotify.FullArtist) models.Artist {
	genres := make([]string, len(fa.Genres))
	for i, g := range fa.Genres {
		genres[i] = shared.CapitalizeGenre(g)
	}

	a := models.Artist{
		Name:       fa.Name,
		CatalogID:  string(fa.ID),
		Popularity: int(fa.Popularity),
		Genres:     genres,
	}
	// images are ordered largest first
	if n := len(fa.Images); n > 0 {
		a.ImageURL = fa.Images[n-1].URL
	}
	return a
}

// notifyingSource reports refreshed tokens so they can be saved.
type notifyingSource struct {
	base    oauth2.TokenSource
	notify  func(*oauth2.Token)
	mu      sync.Mutex
	current string
}

func (n *notifyingSource) Token() (*oauth2.Token, error) {
	token, err := n.base.Token()
	if err != nil {
		return nil, err
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if token.AccessToken != n.current {
		n.current = token.AccessToken
		if n.notify != nil {
			n.notify(token)
		}
	}
	return token, nil
}
