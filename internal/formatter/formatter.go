// package formatter writes playlist reports: the songs CSV, the HTML dashboard and plain text listings
package formatter

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/festlist/internal/analytics"
	"github.com/desertthunder/festlist/internal/models"
	"github.com/desertthunder/festlist/internal/playlist"
	"github.com/desertthunder/festlist/internal/shared"
)

const (
	DashboardFile = "summary_dashboard.html"
	SongsFile     = "Playlist_Songs.csv"
	ArtistsFile   = "Playlist_Artists.csv"

	artistURIPrefix = "spotify:artist:"
	trackURIPrefix  = "spotify:track:"
	genreSeparator  = ";"
)

// SongsHeader lists the songs CSV columns in order.
var SongsHeader = []string{
	"Song", "Artist", "Song Popularity",
	"Danceability", "Energy", "Tempo", "Speechiness",
	"Song Duration", "Artist Genres", "Artist Popularity",
	"Artist uri", "Song uri", "Artist Image url",
}

// ArtistsHeader lists the artists CSV columns in order.
var ArtistsHeader = []string{"Artist", "Artist Genres", "Artist Popularity", "Artist uri", "Artist Image url"}

const (
	colSong = iota
	colArtist
	colSongPopularity
	colDanceability
	colEnergy
	colTempo
	colSpeechiness
	colDuration
	colGenres
	colArtistPopularity
	colArtistURI
	colSongURI
	colImage
)

var featureColumns = map[string]int{
	models.FeatureDanceability: colDanceability,
	models.FeatureEnergy:       colEnergy,
	models.FeatureTempo:        colTempo,
	models.FeatureSpeechiness:  colSpeechiness,
}

// WriteSongsCSV writes one row per fetched track, in selection order.
//
// Rows are written before assembly, so tracks shared by several artists appear once per artist.
// Missing audio features are written as empty cells.
func WriteSongsCSV(w io.Writer, selections []models.Selection) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(SongsHeader); err != nil {
		return fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, sel := range selections {
		artist := sel.Artist
		for _, t := range sel.Tracks {
			record := make([]string, len(SongsHeader))
			record[colSong] = t.Title
			record[colArtist] = artist.Name
			record[colSongPopularity] = strconv.Itoa(t.Popularity)
			for feature, col := range featureColumns {
				if v, ok := t.Feature(feature); ok {
					record[col] = strconv.FormatFloat(v, 'f', -1, 64)
				}
			}
			record[colDuration] = strconv.Itoa(t.DurationMS)
			record[colGenres] = strings.Join(artist.Genres, genreSeparator)
			record[colArtistPopularity] = strconv.Itoa(artist.Popularity)
			record[colArtistURI] = artistURI(artist)
			record[colSongURI] = t.URI()
			record[colImage] = artist.ImageURL

			if err := writer.Write(record); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("CSV writer error: %w", err)
	}
	return nil
}

// WriteArtistsCSV writes one row per selected artist, including artists without tracks.
func WriteArtistsCSV(w io.Writer, artists []models.Artist) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(ArtistsHeader); err != nil {
		return fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, a := range artists {
		record := []string{
			a.Name,
			strings.Join(a.Genres, genreSeparator),
			strconv.Itoa(a.Popularity),
			artistURI(a),
			a.ImageURL,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("CSV writer error: %w", err)
	}
	return nil
}

func artistURI(a models.Artist) string {
	if a.CatalogID == "" {
		return ""
	}
	return artistURIPrefix + a.CatalogID
}

// readHeader reads the first record and checks it against want.
func readHeader(reader *csv.Reader, want []string, kind string) error {
	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: empty %s CSV", shared.ErrInvalidInput, kind)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	for i, name := range want {
		if strings.TrimSpace(header[i]) != name {
			return fmt.Errorf("%w: column %d is %q, want %q", shared.ErrInvalidInput, i+1, header[i], name)
		}
	}
	return nil
}

// ReadSongsCSV reads a songs CSV back into artist-major selections.
//
// Rows are grouped by artist in first-seen order so the result can be assembled again without the network.
func ReadSongsCSV(r io.Reader) ([]models.Selection, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(SongsHeader)

	if err := readHeader(reader, SongsHeader, "songs"); err != nil {
		return nil, err
	}

	var selections []models.Selection
	index := make(map[string]int)

	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
		}

		artist, track, err := parseSongRow(record)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", shared.ErrInvalidInput, line, err)
		}

		key := artist.Key()
		i, ok := index[key]
		if !ok {
			i = len(selections)
			index[key] = i
			selections = append(selections, models.Selection{Artist: artist})
		}
		selections[i].Tracks = append(selections[i].Tracks, track)
	}

	return selections, nil
}

// ReadArtistsCSV reads the artist list written by [WriteArtistsCSV].
func ReadArtistsCSV(r io.Reader) ([]models.Artist, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(ArtistsHeader)

	if err := readHeader(reader, ArtistsHeader, "artists"); err != nil {
		return nil, err
	}

	var artists []models.Artist
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
		}

		artist, err := parseArtist(record[0], record[1], record[2], record[3], record[4])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", shared.ErrInvalidInput, line, err)
		}
		if strings.TrimSpace(artist.Name) == "" {
			return nil, fmt.Errorf("%w: line %d: missing Artist", shared.ErrInvalidInput, line)
		}
		artists = append(artists, artist)
	}

	return artists, nil
}

// orderByArtists orders selections by the saved artist list.
//
// Listed artists without songs get an empty selection. Selections whose artist is not listed keep their order after the listed ones.
func orderByArtists(artists []models.Artist, selections []models.Selection) []models.Selection {
	byKey := make(map[string]models.Selection, len(selections))
	for _, sel := range selections {
		byKey[sel.Artist.Key()] = sel
	}

	merged := make([]models.Selection, 0, len(artists)+len(selections))
	seen := make(map[string]bool, len(artists))
	for _, a := range artists {
		key := a.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		merged = append(merged, models.Selection{Artist: a, Tracks: byKey[key].Tracks})
	}
	for _, sel := range selections {
		if !seen[sel.Artist.Key()] {
			merged = append(merged, sel)
		}
	}
	return merged
}

// LoadSelections reads a saved songs CSV and, when present, the artists CSV next to it.
func LoadSelections(songsPath string) ([]models.Selection, error) {
	f, err := os.Open(songsPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	defer f.Close()

	selections, err := ReadSongsCSV(f)
	if err != nil {
		return nil, err
	}

	af, err := os.Open(filepath.Join(filepath.Dir(songsPath), ArtistsFile))
	if errors.Is(err, os.ErrNotExist) {
		return selections, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	defer af.Close()

	artists, err := ReadArtistsCSV(af)
	if err != nil {
		return nil, err
	}
	return orderByArtists(artists, selections), nil
}

func parseArtist(name, genres, popularity, uri, image string) (models.Artist, error) {
	var err error
	artist := models.Artist{
		Name:      name,
		CatalogID: strings.TrimPrefix(uri, artistURIPrefix),
		ImageURL:  image,
	}
	if g := strings.TrimSpace(genres); g != "" {
		artist.Genres = strings.Split(g, genreSeparator)
	}
	artist.Popularity, err = atoi(popularity, "Artist Popularity")
	return artist, err
}

func parseSongRow(record []string) (models.Artist, models.Track, error) {
	var track models.Track

	artist, err := parseArtist(record[colArtist], record[colGenres], record[colArtistPopularity], record[colArtistURI], record[colImage])
	if err != nil {
		return artist, track, err
	}

	track.Title = record[colSong]
	track.ArtistName = artist.Name
	track.ArtistID = artist.CatalogID
	track.CatalogID = strings.TrimPrefix(record[colSongURI], trackURIPrefix)
	if track.CatalogID == "" {
		return artist, track, errors.New("missing Song uri")
	}
	if track.Popularity, err = atoi(record[colSongPopularity], "Song Popularity"); err != nil {
		return artist, track, err
	}
	if track.DurationMS, err = atoi(record[colDuration], "Song Duration"); err != nil {
		return artist, track, err
	}

	for _, feature := range models.Features {
		cell := strings.TrimSpace(record[featureColumns[feature]])
		if cell == "" {
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return artist, track, fmt.Errorf("invalid %s %q", analytics.FeatureLabel(feature), cell)
		}
		if track.AudioFeatures == nil {
			track.AudioFeatures = make(map[string]float64, len(models.Features))
		}
		track.AudioFeatures[feature] = v
	}

	return artist, track, nil
}

func atoi(cell, column string) (int, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(cell)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", column, cell)
	}
	return n, nil
}

// ExportToText converts a playlist to a numbered plain text listing
func ExportToText(name string, p *playlist.Playlist) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Playlist: %s\n", name))
	buf.WriteString(fmt.Sprintf("Tracks: %d (%s)\n", p.Summary.TrackCount, shared.FormatDuration(p.Summary.DurationMS)))
	if p.Summary.DuplicatesRemoved > 0 {
		buf.WriteString(fmt.Sprintf("Duplicates removed: %d\n", p.Summary.DuplicatesRemoved))
	}
	buf.WriteString("\n")

	for _, e := range p.Entries {
		buf.WriteString(fmt.Sprintf("%d. %s - %s [%s]\n", e.Position, e.Track.ArtistName, e.Track.Title, shared.FormatDuration(e.Track.DurationMS)))
	}

	return buf.Bytes()
}

// OutputDir returns the report directory for a playlist: <base>/<NameWithoutSpaces>Summary_Created<YYYY-MM-DD>.
func OutputDir(base, name string, date time.Time) string {
	dir := strings.ReplaceAll(name, " ", "") + "Summary_Created" + date.Format("2006-01-02")
	return filepath.Join(base, dir)
}

// ReportResult contains the paths of files written into a report directory.
// DashboardFile is empty when no dashboard was rendered.
type ReportResult struct {
	Directory     string
	DashboardFile string
	SongsFile     string
	ArtistsFile   string
}

// SaveSelections writes the songs and artists CSVs into dir, creating it if needed.
func SaveSelections(dir string, selections []models.Selection) (*ReportResult, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &ReportResult{
		Directory:   dir,
		SongsFile:   filepath.Join(dir, SongsFile),
		ArtistsFile: filepath.Join(dir, ArtistsFile),
	}

	var songs bytes.Buffer
	if err := WriteSongsCSV(&songs, selections); err != nil {
		return nil, err
	}
	if err := os.WriteFile(result.SongsFile, songs.Bytes(), 0644); err != nil {
		return nil, fmt.Errorf("failed to write songs file: %w", err)
	}

	artists := make([]models.Artist, len(selections))
	for i, sel := range selections {
		artists[i] = sel.Artist
	}
	var buf bytes.Buffer
	if err := WriteArtistsCSV(&buf, artists); err != nil {
		return nil, err
	}
	if err := os.WriteFile(result.ArtistsFile, buf.Bytes(), 0644); err != nil {
		return nil, fmt.Errorf("failed to write artists file: %w", err)
	}

	return result, nil
}

// WriteDashboard renders d into dir and returns the file path.
func WriteDashboard(dir string, d *analytics.Dashboard) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	var html bytes.Buffer
	if err := RenderDashboard(&html, d); err != nil {
		return "", err
	}
	path := filepath.Join(dir, DashboardFile)
	if err := os.WriteFile(path, html.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("failed to write dashboard file: %w", err)
	}
	return path, nil
}

// WriteReport writes the dashboard and both CSVs into dir.
func WriteReport(dir string, d *analytics.Dashboard, selections []models.Selection) (*ReportResult, error) {
	result, err := SaveSelections(dir, selections)
	if err != nil {
		return nil, err
	}
	if result.DashboardFile, err = WriteDashboard(dir, d); err != nil {
		return nil, err
	}
	return result, nil
}
