package playlist

import (
	"strings"

	"github.com/desertthunder/festlist/internal/models"
	"github.com/desertthunder/festlist/internal/shared"
)

const (
	minRetentionPercent = 30
	minRetainedTracks   = 2

	versionSeparator = " - "
)

// BaseTitle strips a trailing " - <version>" suffix such as " - Remix" or " - Radio Edit".
//
// The title is cut at the first separator that has text on both sides. Whitespace is kept as is.
func BaseTitle(title string) string {
	for i := 1; i+len(versionSeparator) < len(title); i++ {
		if strings.HasPrefix(title[i:], versionSeparator) {
			return title[:i]
		}
	}
	return title
}

// CollapseVersions keeps only the most popular version of each song per artist.
//
// Versions share a case-insensitive [BaseTitle]; ties go to the earlier entry.
// Surviving entries keep their relative order.
func CollapseVersions(p *Playlist) (*Playlist, []models.Track) {
	type group struct {
		best       int
		popularity int
	}
	groups := make(map[string]*group)
	keys := make([]string, len(p.Entries))

	for i, e := range p.Entries {
		key := ownerKey(e.Track) + "|" + strings.ToLower(BaseTitle(e.Track.Title))
		keys[i] = key

		g, ok := groups[key]
		if !ok {
			groups[key] = &group{best: i, popularity: e.Track.Popularity}
			continue
		}
		if e.Track.Popularity > g.popularity {
			g.best, g.popularity = i, e.Track.Popularity
		}
	}

	i := -1
	return p.rebuild(func(models.PlaylistEntry) bool {
		i++
		return groups[keys[i]].best == i
	})
}

// ScaleByPopularity trims less popular artists to fewer tracks.
//
// The artist with the most tracks sets the ceiling. Each artist keeps
// max(100-(topPopularity-popularity), 30) percent of it, and never fewer
// than two tracks. Kept tracks are each artist's leading entries.
func ScaleByPopularity(p *Playlist) (*Playlist, []models.Track) {
	maxSongs, maxPop := 0, 0
	for _, row := range p.Summary.Artists {
		if row.TrackCount == 0 {
			continue
		}
		maxSongs = max(maxSongs, row.TrackCount)
		maxPop = max(maxPop, row.Artist.Popularity)
	}

	limits := make(map[string]int, len(p.Summary.Artists))
	for _, row := range p.Summary.Artists {
		limits[row.Artist.Key()] = RetainedTracks(row.Artist.Popularity, maxPop, maxSongs)
	}

	counts := make(map[string]int)
	return p.rebuild(func(e models.PlaylistEntry) bool {
		key := ownerKey(e.Track)
		limit, ok := limits[key]
		if !ok {
			return true
		}
		counts[key]++
		return counts[key] <= limit
	})
}

// RetainedTracks is the number of tracks an artist keeps under [ScaleByPopularity].
func RetainedTracks(popularity, maxPopularity, maxSongs int) int {
	retention := max(100-(maxPopularity-popularity), minRetentionPercent)
	return max(retention*maxSongs/100, minRetainedTracks)
}

// MergeArtists combines the chosen lineup artists with artists entered by hand.
//
// Chosen artists come first in lineup order, then added ones in entry order.
// Names are compared case-insensitively and the first occurrence wins.
func MergeArtists(lineup []models.Artist, chosen []string, added []models.Artist) []models.Artist {
	want := make(map[string]bool, len(chosen))
	for _, name := range chosen {
		want[shared.NormalizeName(name)] = true
	}

	seen := make(map[string]bool)
	var merged []models.Artist
	push := func(a models.Artist) {
		key := shared.NormalizeName(a.Name)
		if key == "" || seen[key] {
			return
		}
		seen[key] = true
		merged = append(merged, a)
	}

	for _, a := range lineup {
		if want[shared.NormalizeName(a.Name)] {
			push(a)
		}
	}
	for _, a := range added {
		push(a)
	}
	return merged
}
