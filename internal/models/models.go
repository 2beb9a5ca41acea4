// package models defines the data model for festival playlist generation
package models

import (
	"time"
)

// Model defines the base interface for all persistent models.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific model types.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Update(model T) error                      // Update modifies an existing model in the database
	Delete(id string) error                    // Delete removes a model from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

// Audio feature keys carried in [Track.AudioFeatures].
const (
	FeatureDanceability = "danceability"
	FeatureEnergy       = "energy"
	FeatureTempo        = "tempo"
	FeatureSpeechiness  = "speechiness"
)

// Features lists the audio features in report order.
var Features = []string{FeatureDanceability, FeatureEnergy, FeatureTempo, FeatureSpeechiness}

// Artist is a performer resolved against the catalog.
type Artist struct {
	Name       string   `json:"name"`
	CatalogID  string   `json:"catalog_id"`
	Popularity int      `json:"popularity"`
	Genres     []string `json:"genres,omitempty"`
	ImageURL   string   `json:"image_url,omitempty"`
}

// Resolved reports whether the artist carries a catalog identifier.
func (a Artist) Resolved() bool {
	return a.CatalogID != ""
}

// Key identifies an artist for grouping: the catalog ID when present, otherwise the lower-cased name.
func (a Artist) Key() string {
	if a.CatalogID != "" {
		return a.CatalogID
	}
	return "name:" + normalize(a.Name)
}

// Track is a single song from the catalog.
//
// ArtistName and ArtistID name the selected artist the track was fetched for.
type Track struct {
	CatalogID     string             `json:"catalog_id"`
	Title         string             `json:"title"`
	ArtistName    string             `json:"artist_name"`
	ArtistID      string             `json:"artist_id,omitempty"`
	DurationMS    int                `json:"duration_ms"`
	Popularity    int                `json:"popularity"`
	AudioFeatures map[string]float64 `json:"audio_features,omitempty"`
}

// Feature returns the named audio feature and whether it is present.
func (t Track) Feature(name string) (float64, bool) {
	if t.AudioFeatures == nil {
		return 0, false
	}
	v, ok := t.AudioFeatures[name]
	return v, ok
}

// URI returns the catalog URI for the track.
func (t Track) URI() string {
	return "spotify:track:" + t.CatalogID
}

// Selection is one selected artist and the tracks fetched for it, in fetcher order.
type Selection struct {
	Artist Artist  `json:"artist"`
	Tracks []Track `json:"tracks"`
}

// PlaylistEntry is a track at a 1-based position in the final playlist.
type PlaylistEntry struct {
	Position int   `json:"position"`
	Track    Track `json:"track"`
}

// ArtistStats summarizes the kept tracks of one artist.
type ArtistStats struct {
	Artist            Artist             `json:"artist"`
	TrackCount        int                `json:"track_count"`
	DurationMS        int                `json:"duration_ms"`
	AveragePopularity float64            `json:"average_popularity"`
	FeatureAverages   map[string]float64 `json:"feature_averages,omitempty"`
}

// PlaylistSummary aggregates a playlist. Artist rows follow selection order.
type PlaylistSummary struct {
	TrackCount        int           `json:"track_count"`
	DurationMS        int           `json:"duration_ms"`
	DuplicatesRemoved int           `json:"duplicates_removed"`
	Artists           []ArtistStats `json:"artists"`
}

// Duration returns the total playlist length.
func (s PlaylistSummary) Duration() time.Duration {
	return time.Duration(s.DurationMS) * time.Millisecond
}

// RemotePlaylist describes a playlist created on the streaming service.
type RemotePlaylist struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	URI    string `json:"uri"`
	URL    string `json:"url"`
	Public bool   `json:"public"`
}

// Lineup is the set of artist names announced for a festival.
type Lineup struct {
	Festival string   `json:"festival"`
	URL      string   `json:"url,omitempty"`
	Artists  []string `json:"artists"`
}
