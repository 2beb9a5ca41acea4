package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/festlist/internal/models"
	"github.com/desertthunder/festlist/internal/playlist"
	"github.com/desertthunder/festlist/internal/services"
	"github.com/desertthunder/festlist/internal/shared"
	"golang.org/x/time/rate"
)

const (
	// MaxTracksPerArtist is the size of the catalog's top-tracks list.
	MaxTracksPerArtist = 10
	// DefaultRecommendations is how many related artists are suggested.
	DefaultRecommendations = 3

	defaultRateLimit = 5.0
)

// ResolveResult splits lineup names into catalog artists and names with no match.
type ResolveResult struct {
	Resolved   []models.Artist
	Unresolved []string
}

// BuildOpts configures [Engine.Build].
type BuildOpts struct {
	Name        string
	Description string
	Public      bool

	// Artists are fetched in order. Ignored when Selections is set.
	Artists         []models.Artist
	TracksPerArtist int
	// Selections skips fetching, e.g. when rebuilding from a saved songs CSV.
	Selections []models.Selection
	// Save receives the selections before assembly. A Save error aborts the build.
	Save func([]models.Selection) error

	IncludeRemixes    bool
	ScaleByPopularity bool
	Create            bool
	Recommendations   int
}

// BuildResult contains everything produced by a build.
type BuildResult struct {
	Name            string
	Selections      []models.Selection
	Playlist        *playlist.Playlist
	VersionsRemoved []models.Track
	ScaledOut       []models.Track
	Remote          *models.RemotePlaylist
	Recommendations []models.Artist
}

// Engine orchestrates catalog calls around the playlist assembler.
type Engine struct {
	catalog services.Catalog
	limiter *rate.Limiter
	logger  *log.Logger
}

// EngineOpts contains configuration for creating an Engine.
type EngineOpts struct {
	Catalog   services.Catalog
	RateLimit float64 // Requests per second (default: 5)
	Logger    *log.Logger
}

// NewEngine creates an Engine.
func NewEngine(opts EngineOpts) *Engine {
	if opts.RateLimit <= 0 {
		opts.RateLimit = defaultRateLimit
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	return &Engine{
		catalog: opts.Catalog,
		limiter: rate.NewLimiter(rate.Limit(opts.RateLimit), 1),
		logger:  opts.Logger,
	}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func (e *Engine) ready() error {
	if e.catalog == nil {
		return fmt.Errorf("%w: catalog not initialized", shared.ErrServiceUnavailable)
	}
	return nil
}

// ResolveArtists looks up each name. Names without a match are reported in Unresolved.
//
// Names that resolve to an artist already found are dropped.
func (e *Engine) ResolveArtists(ctx context.Context, names []string, progress chan<- ProgressUpdate) (*ResolveResult, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}

	result := &ResolveResult{}
	seen := make(map[string]bool)
	total := len(names)

	for i, name := range names {
		e.sendProgress(progress, resolveUpdate(i+1, total, name))

		if err := e.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		artist, err := e.catalog.ResolveArtist(ctx, name)
		if errors.Is(err, shared.ErrArtistNotFound) {
			e.logger.Warn("artist not found", "name", name)
			result.Unresolved = append(result.Unresolved, name)
			e.sendProgress(progress, unresolvedUpdate(i+1, total, name))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %q: %w", name, err)
		}

		if seen[artist.CatalogID] {
			e.logger.Debug("duplicate artist match", "name", name, "artist", artist.Name)
			continue
		}
		seen[artist.CatalogID] = true
		result.Resolved = append(result.Resolved, *artist)
	}

	return result, nil
}

// FetchTracks fetches up to perArtist top tracks for each artist, in order.
func (e *Engine) FetchTracks(ctx context.Context, artists []models.Artist, perArtist int, progress chan<- ProgressUpdate) ([]models.Selection, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if perArtist < 1 || perArtist > MaxTracksPerArtist {
		return nil, fmt.Errorf("%w: tracks per artist must be between 1 and %d, got %d", shared.ErrInvalidArgument, MaxTracksPerArtist, perArtist)
	}

	selections := make([]models.Selection, 0, len(artists))
	total := len(artists)

	for i, artist := range artists {
		e.sendProgress(progress, fetchTracksUpdate(i+1, total, artist))

		if err := e.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		tracks, err := e.catalog.TopTracks(ctx, artist, perArtist)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch tracks for %s: %w", artist.Name, err)
		}
		if len(tracks) > perArtist {
			tracks = tracks[:perArtist]
		}

		sel := models.Selection{Artist: artist, Tracks: tracks}
		selections = append(selections, sel)
		e.logger.Debug("fetched tracks", "artist", artist.Name, "count", len(tracks))
		e.sendProgress(progress, fetchedTracksUpdate(i+1, total, sel))
	}

	return selections, nil
}

// Recommend suggests up to n artists related to the selection.
//
// Related artists are counted across the whole selection, already selected names
// are excluded, and the most frequent come first with ties in first-seen order.
// Failures for a single artist are logged and skipped.
func (e *Engine) Recommend(ctx context.Context, artists []models.Artist, n int, progress chan<- ProgressUpdate) ([]models.Artist, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, nil
	}

	selected := make(map[string]bool, len(artists))
	for _, a := range artists {
		selected[shared.NormalizeName(a.Name)] = true
	}

	type candidate struct {
		artist models.Artist
		count  int
	}
	var order []*candidate
	byName := make(map[string]*candidate)

	for i, artist := range artists {
		if !artist.Resolved() {
			continue
		}
		e.sendProgress(progress, recommendUpdate(i+1, len(artists), artist))

		if err := e.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		related, err := e.catalog.RelatedArtists(ctx, artist)
		if err != nil {
			e.logger.Warn("related artists unavailable", "artist", artist.Name, "error", err)
			continue
		}

		for _, r := range related {
			key := shared.NormalizeName(r.Name)
			if selected[key] {
				continue
			}
			c, ok := byName[key]
			if !ok {
				c = &candidate{artist: r}
				byName[key] = c
				order = append(order, c)
			}
			c.count++
		}
	}

	// stable selection of the n highest counts keeps first-seen order on ties
	var out []models.Artist
	used := make([]bool, len(order))
	for len(out) < n {
		best := -1
		for i, c := range order {
			if !used[i] && (best < 0 || c.count > order[best].count) {
				best = i
			}
		}
		if best < 0 {
			break
		}
		used[best] = true
		out = append(out, order[best].artist)
	}

	return out, nil
}

// Build runs the whole pipeline for opts.
func (e *Engine) Build(ctx context.Context, opts BuildOpts, progress chan<- ProgressUpdate) (*BuildResult, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}

	result := &BuildResult{Name: opts.Name, Selections: opts.Selections}

	if result.Selections == nil {
		if len(opts.Artists) == 0 {
			return nil, fmt.Errorf("%w: no artists selected", shared.ErrMissingArgument)
		}
		selections, err := e.FetchTracks(ctx, opts.Artists, opts.TracksPerArtist, progress)
		if err != nil {
			return nil, err
		}
		result.Selections = selections
	}

	if opts.Save != nil {
		if err := opts.Save(result.Selections); err != nil {
			return result, fmt.Errorf("failed to save selections: %w", err)
		}
	}

	pl := playlist.Assemble(result.Selections)
	e.sendProgress(progress, assembleUpdate(pl.Len(), pl.Summary.DuplicatesRemoved))
	e.logger.Info("playlist assembled", "tracks", pl.Len(), "duplicates", pl.Summary.DuplicatesRemoved)

	if !opts.IncludeRemixes {
		pl, result.VersionsRemoved = playlist.CollapseVersions(pl)
		e.sendProgress(progress, modifyUpdate(1, 2, "Remixes and edits", len(result.VersionsRemoved)))
	}
	if opts.ScaleByPopularity {
		pl, result.ScaledOut = playlist.ScaleByPopularity(pl)
		e.sendProgress(progress, modifyUpdate(2, 2, "Popularity scaling", len(result.ScaledOut)))
	}
	result.Playlist = pl

	if opts.Create {
		if pl.Len() == 0 {
			return result, fmt.Errorf("%w: playlist has no tracks", shared.ErrInvalidInput)
		}

		e.sendProgress(progress, creatingPlaylistUpdate(opts.Name))
		remote, err := e.catalog.CreatePlaylist(ctx, services.CreatePlaylistRequest{
			Name:        opts.Name,
			Description: opts.Description,
			Public:      opts.Public,
			TrackIDs:    pl.TrackIDs(),
		})
		if err != nil {
			return result, fmt.Errorf("failed to create playlist: %w", err)
		}
		result.Remote = remote
		e.sendProgress(progress, createdPlaylistUpdate(remote))
	}

	if opts.Recommendations > 0 {
		recs, err := e.Recommend(ctx, pl.Artists(), opts.Recommendations, progress)
		if err != nil {
			return result, err
		}
		result.Recommendations = recs
	}

	e.sendProgress(progress, completeUpdate(result))
	return result, nil
}
