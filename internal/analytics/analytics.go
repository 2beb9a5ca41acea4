// package analytics computes the numbers shown on a playlist's summary dashboard
package analytics

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/desertthunder/festlist/internal/models"
	"github.com/desertthunder/festlist/internal/playlist"
	"github.com/desertthunder/festlist/internal/shared"
)

const (
	// TopGenreCount is how many genres the dashboard lists.
	TopGenreCount = 5
	// TrendThreshold is the share of tracks, in percent, that must fall in a feature's band.
	TrendThreshold = 79

	tempoBand = 30.0
	unitBand  = 0.3
)

// Trend describes how tightly a feature clusters around its mean.
type Trend struct {
	Feature string
	Mean    float64
	Lower   float64
	Upper   float64
	Percent int
	Count   int // tracks that carry the feature
	Strong  bool
}

// Message renders the trend as "82% of songs within 0.66 - 0.96 Energy range".
func (t Trend) Message() string {
	var band string
	if t.Feature == models.FeatureTempo {
		band = fmt.Sprintf("%d - %d BPM", int(math.RoundToEven(t.Lower)), int(math.RoundToEven(t.Upper)))
	} else {
		band = fmt.Sprintf("%s - %s", trimFloat(t.Lower), trimFloat(t.Upper))
	}
	return fmt.Sprintf("%d%% of songs within %s %s range", t.Percent, band, FeatureLabel(t.Feature))
}

// Point is one track on a feature scatter plot.
type Point struct {
	Popularity int
	Value      float64
	Artist     string
	Title      string
}

// Plot is a feature plotted against song popularity.
type Plot struct {
	Feature string
	Label   string
	Unit    string
	Points  []Point
	Trend   Trend
}

// ArtistRow is one line of the dashboard's artist table, already formatted.
type ArtistRow struct {
	Name       string
	TrackCount int
	Runtime    string
	Popularity int
	Genres     string
	Averages   map[string]string
}

// Dashboard is the view model for a playlist report.
type Dashboard struct {
	Name            string
	CreatedOn       string
	Public          bool
	PlaylistURL     string
	DurationMessage string
	TopGenres       []string
	Recommendations []string
	Headline        string
	Trends          []Trend // strong trends only, in feature order
	Artists         []ArtistRow
	Plots           []Plot
	Features        []string
}

// DashboardOpts carries the details of a build that are not in the playlist itself.
type DashboardOpts struct {
	Name            string
	Public          bool
	Remote          *models.RemotePlaylist
	Recommendations []models.Artist
	CreatedOn       time.Time
}

// Build assembles the dashboard for p.
func Build(p *playlist.Playlist, opts DashboardOpts) *Dashboard {
	if opts.CreatedOn.IsZero() {
		opts.CreatedOn = time.Now()
	}

	d := &Dashboard{
		Name:            opts.Name,
		CreatedOn:       opts.CreatedOn.Format("01-02-2006"),
		Public:          opts.Public,
		DurationMessage: DurationMessage(p.Summary.TrackCount, p.Summary.DurationMS),
		TopGenres:       TopGenres(p.Summary, TopGenreCount),
		Features:        models.Features,
	}
	if opts.Remote != nil {
		d.PlaylistURL = opts.Remote.URL
	}
	for _, a := range opts.Recommendations {
		d.Recommendations = append(d.Recommendations, a.Name)
	}

	var trends []Trend
	for _, feature := range models.Features {
		trend := FeatureTrend(p.Entries, feature)
		d.Plots = append(d.Plots, Plot{
			Feature: feature,
			Label:   FeatureLabel(feature),
			Unit:    FeatureUnit(feature),
			Points:  Points(p.Entries, feature),
			Trend:   trend,
		})
		trends = append(trends, trend)
		if trend.Strong {
			d.Trends = append(d.Trends, trend)
		}
	}
	d.Headline = TrendHeadline(trends)

	for _, row := range p.Summary.Artists {
		d.Artists = append(d.Artists, artistRow(row))
	}
	return d
}

// DurationMessage formats a track count and total length, e.g. "94 songs, 5 hr 22 min".
//
// Playlists under an hour use minutes and seconds.
func DurationMessage(count, durationMS int) string {
	secs := durationMS / 1000
	if hours := secs / 3600; hours > 0 {
		return fmt.Sprintf("%d songs, %d hr %d min", count, hours, (secs%3600)/60)
	}
	return fmt.Sprintf("%d songs, %d min %d sec", count, secs/60, secs%60)
}

// TopGenres returns the n most common genres across artists with at least one track.
//
// Each artist counts once per genre regardless of how many tracks it has. Ties keep first-seen order.
func TopGenres(summary models.PlaylistSummary, n int) []string {
	counts := make(map[string]int)
	var order []string
	for _, row := range summary.Artists {
		if row.TrackCount == 0 {
			continue
		}
		for _, g := range row.Artist.Genres {
			if _, ok := counts[g]; !ok {
				order = append(order, g)
			}
			counts[g]++
		}
	}

	var out []string
	used := make(map[string]bool)
	for len(out) < n {
		best := ""
		for _, g := range order {
			if !used[g] && (best == "" || counts[g] > counts[best]) {
				best = g
			}
		}
		if best == "" {
			break
		}
		used[best] = true
		out = append(out, best)
	}
	return out
}

// FeatureTrend measures how many tracks fall in a fixed-width band centered on the feature's mean.
//
// The band is 30 BPM for tempo and 0.3 for the 0-1 features. It is clamped at 0,
// and at 1 for the 0-1 features. Tracks without the feature are ignored.
func FeatureTrend(entries []models.PlaylistEntry, feature string) Trend {
	t := Trend{Feature: feature}

	var values []float64
	for _, e := range entries {
		if v, ok := e.Track.Feature(feature); ok {
			values = append(values, v)
		}
	}
	t.Count = len(values)
	if t.Count == 0 {
		return t
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	t.Mean = sum / float64(t.Count)

	width := bandWidth(feature)
	t.Lower = math.Max(t.Mean-width/2, 0)
	t.Upper = t.Mean + width/2
	if feature != models.FeatureTempo {
		t.Upper = math.Min(t.Upper, 1)
	}

	within := 0
	for _, v := range values {
		if v >= t.Lower && v <= t.Upper {
			within++
		}
	}
	t.Percent = int(math.RoundToEven(float64(within) / float64(t.Count) * 100))
	t.Strong = t.Percent >= TrendThreshold
	return t
}

// TrendHeadline summarizes which features have strong trends.
func TrendHeadline(trends []Trend) string {
	var strong []string
	for _, t := range trends {
		if t.Strong {
			strong = append(strong, FeatureLabel(t.Feature))
		}
	}

	switch {
	case len(trends) > 0 && len(strong) == len(trends):
		return "All song features have strong trends"
	case len(strong) == 0:
		return "No song features have strong trends"
	default:
		return strings.Join(strong, ", ") + " have strong trends"
	}
}

// Points returns the plot points for feature, skipping tracks without it.
func Points(entries []models.PlaylistEntry, feature string) []Point {
	var points []Point
	for _, e := range entries {
		v, ok := e.Track.Feature(feature)
		if !ok {
			continue
		}
		points = append(points, Point{
			Popularity: e.Track.Popularity,
			Value:      v,
			Artist:     e.Track.ArtistName,
			Title:      e.Track.Title,
		})
	}
	return points
}

// FeatureLabel is the display name of a feature.
func FeatureLabel(feature string) string {
	return shared.TitleCase(feature)
}

// FeatureUnit is the axis unit of a feature.
func FeatureUnit(feature string) string {
	if feature == models.FeatureTempo {
		return "BPM"
	}
	return "0-1"
}

// FormatFeature formats an average the way the artist table shows it.
func FormatFeature(feature string, v float64) string {
	if feature == models.FeatureTempo {
		return fmt.Sprintf("%d", int(math.RoundToEven(v)))
	}
	return fmt.Sprintf("%.2f", v)
}

func bandWidth(feature string) float64 {
	switch feature {
	case models.FeatureTempo:
		return tempoBand
	case models.FeatureDanceability, models.FeatureEnergy, models.FeatureSpeechiness:
		return unitBand
	default:
		return 0
	}
}

func artistRow(s models.ArtistStats) ArtistRow {
	row := ArtistRow{
		Name:       s.Artist.Name,
		TrackCount: s.TrackCount,
		Runtime:    shared.FormatDuration(s.DurationMS),
		Popularity: s.Artist.Popularity,
		Genres:     strings.Join(s.Artist.Genres, ", "),
		Averages:   make(map[string]string, len(models.Features)),
	}
	for _, f := range models.Features {
		if v, ok := s.FeatureAverages[f]; ok {
			row.Averages[f] = FormatFeature(f, v)
		}
	}
	return row
}

// trimFloat rounds to two places and drops trailing zeros: 0.50 -> "0.5", 0 -> "0".
func trimFloat(v float64) string {
	s := fmt.Sprintf("%.2f", math.Round(v*100)/100)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
