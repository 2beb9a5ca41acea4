// Package playlist turns per-artist track selections into one ordered,
// deduplicated playlist and its summary.
//
// [Assemble] is the entry point. Its output is artist-major: artists appear in
// selection order and each artist's tracks keep their fetched order. A track
// that appears more than once (features, collaborations) is kept at its first
// position and counted as a duplicate everywhere else.
//
// The mods in mods.go ([CollapseVersions], [ScaleByPopularity]) take an
// assembled [Playlist] and return a new one with a recomputed summary.
package playlist

import "github.com/desertthunder/festlist/internal/models"

// Playlist is the assembled result.
type Playlist struct {
	Entries    []models.PlaylistEntry
	Summary    models.PlaylistSummary
	Duplicates []models.Track
	// artists keeps one row per distinct selected artist, in selection order
	artists []models.Artist
}

// Assemble builds the playlist for selections, which are in selection order.
//
// Inputs are not mutated. Artists with no kept tracks still get a summary row.
func Assemble(selections []models.Selection) *Playlist {
	p := &Playlist{}
	seenTrack := make(map[string]bool)
	seenArtist := make(map[string]bool)

	for _, sel := range selections {
		if key := sel.Artist.Key(); !seenArtist[key] {
			seenArtist[key] = true
			p.artists = append(p.artists, sel.Artist)
		}

		for _, track := range sel.Tracks {
			if seenTrack[track.CatalogID] {
				p.Duplicates = append(p.Duplicates, track)
				continue
			}
			seenTrack[track.CatalogID] = true

			// attribute to the selection the track came from, which may differ
			// from the track's credited artist on features
			entry := models.PlaylistEntry{Position: len(p.Entries) + 1, Track: track}
			entry.Track.ArtistID = sel.Artist.CatalogID
			entry.Track.ArtistName = sel.Artist.Name
			p.Entries = append(p.Entries, entry)
		}
	}

	p.Summary = Summarize(p.Entries, p.artists, len(p.Duplicates))
	return p
}

// Summarize computes totals over entries and one row per artist in the given order.
//
// Entries are attributed to the artist whose selection they came from; see [Playlist.Owner].
func Summarize(entries []models.PlaylistEntry, artists []models.Artist, duplicates int) models.PlaylistSummary {
	summary := models.PlaylistSummary{DuplicatesRemoved: duplicates, Artists: make([]models.ArtistStats, len(artists))}

	index := make(map[string]int, len(artists))
	for i, a := range artists {
		summary.Artists[i] = models.ArtistStats{Artist: a}
		index[a.Key()] = i
	}

	popularity := make([]int, len(artists))
	featureSum := make([]map[string]float64, len(artists))
	featureN := make([]map[string]int, len(artists))

	for _, e := range entries {
		summary.TrackCount++
		summary.DurationMS += e.Track.DurationMS

		i, ok := index[ownerKey(e.Track)]
		if !ok {
			continue
		}
		row := &summary.Artists[i]
		row.TrackCount++
		row.DurationMS += e.Track.DurationMS
		popularity[i] += e.Track.Popularity

		for name, v := range e.Track.AudioFeatures {
			if featureSum[i] == nil {
				featureSum[i] = make(map[string]float64)
				featureN[i] = make(map[string]int)
			}
			featureSum[i][name] += v
			featureN[i][name]++
		}
	}

	for i := range summary.Artists {
		row := &summary.Artists[i]
		if row.TrackCount > 0 {
			row.AveragePopularity = float64(popularity[i]) / float64(row.TrackCount)
		}
		if featureSum[i] != nil {
			row.FeatureAverages = make(map[string]float64, len(featureSum[i]))
			for name, sum := range featureSum[i] {
				row.FeatureAverages[name] = sum / float64(featureN[i][name])
			}
		}
	}

	return summary
}

// ownerKey matches a track to its artist row the same way [models.Artist.Key] does.
func ownerKey(t models.Track) string {
	return models.Artist{Name: t.ArtistName, CatalogID: t.ArtistID}.Key()
}

// Artists returns the distinct selected artists in selection order.
func (p *Playlist) Artists() []models.Artist {
	return append([]models.Artist(nil), p.artists...)
}

// Owner returns the selected artist an entry is attributed to.
func (p *Playlist) Owner(e models.PlaylistEntry) (models.Artist, bool) {
	key := ownerKey(e.Track)
	for _, a := range p.artists {
		if a.Key() == key {
			return a, true
		}
	}
	return models.Artist{}, false
}

// TrackIDs returns catalog IDs in playlist order, as sent to the remote creation call.
func (p *Playlist) TrackIDs() []string {
	ids := make([]string, len(p.Entries))
	for i, e := range p.Entries {
		ids[i] = e.Track.CatalogID
	}
	return ids
}

// Tracks returns the kept tracks in playlist order.
func (p *Playlist) Tracks() []models.Track {
	tracks := make([]models.Track, len(p.Entries))
	for i, e := range p.Entries {
		tracks[i] = e.Track
	}
	return tracks
}

// Len reports the number of entries.
func (p *Playlist) Len() int {
	return len(p.Entries)
}

// rebuild returns a playlist over the same artists with only the kept entries, renumbered.
func (p *Playlist) rebuild(keep func(models.PlaylistEntry) bool) (*Playlist, []models.Track) {
	out := &Playlist{artists: p.artists, Duplicates: p.Duplicates}
	var removed []models.Track

	for _, e := range p.Entries {
		if !keep(e) {
			removed = append(removed, e.Track)
			continue
		}
		e.Position = len(out.Entries) + 1
		out.Entries = append(out.Entries, e)
	}

	out.Summary = Summarize(out.Entries, out.artists, p.Summary.DuplicatesRemoved)
	return out, removed
}
