package formatter

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/festlist/internal/analytics"
	"github.com/desertthunder/festlist/internal/models"
	"github.com/desertthunder/festlist/internal/playlist"
	"github.com/desertthunder/festlist/internal/shared"
	th "github.com/desertthunder/festlist/internal/testing"
)

func sampleSelections() []models.Selection {
	x := models.Artist{Name: "Artist X", CatalogID: "ax", Popularity: 72, Genres: []string{"House", "UK Garage"}, ImageURL: "https://i.scdn.co/x.jpg"}
	y := models.Artist{Name: "Artist Y", CatalogID: "ay", Popularity: 40}
	features := map[string]float64{
		models.FeatureDanceability: 0.81,
		models.FeatureEnergy:       0.9,
		models.FeatureTempo:        126,
		models.FeatureSpeechiness:  0.05,
	}

	return []models.Selection{
		{Artist: x, Tracks: []models.Track{
			{CatalogID: "t1", Title: "Song, One", DurationMS: 200_000, Popularity: 64, AudioFeatures: features},
			{CatalogID: "t2", Title: "Two", DurationMS: 180_000, Popularity: 50},
		}},
		{Artist: y, Tracks: []models.Track{
			{CatalogID: "t2", Title: "Two", DurationMS: 180_000, Popularity: 50},
			{CatalogID: "t3", Title: "Three", DurationMS: 240_000, Popularity: 33, AudioFeatures: features},
		}},
	}
}

func samplePlaylist() *playlist.Playlist {
	return playlist.Assemble(sampleSelections())
}

func TestSongsCSV(t *testing.T) {
	t.Run("WriteSongsCSV", func(t *testing.T) {
		var buf bytes.Buffer
		if err := WriteSongsCSV(&buf, sampleSelections()); err != nil {
			t.Fatalf("WriteSongsCSV failed: %v", err)
		}
		output := buf.String()
		lines := strings.Split(strings.TrimSpace(output), "\n")

		if lines[0] != strings.Join(SongsHeader, ",") {
			t.Errorf("unexpected header: %s", lines[0])
		}
		if len(lines) != 5 {
			t.Fatalf("expected header and 4 rows, got %d lines", len(lines))
		}
		if !strings.Contains(lines[1], `"Song, One",Artist X,64,0.81,0.9,126,0.05,200000,House;UK Garage,72,spotify:artist:ax,spotify:track:t1,https://i.scdn.co/x.jpg`) {
			t.Errorf("unexpected first row: %s", lines[1])
		}
		if !strings.Contains(lines[2], "Two,Artist X,50,,,,,180000") {
			t.Errorf("missing features should be empty cells: %s", lines[2])
		}
		if !strings.HasPrefix(lines[3], "Two,Artist Y,50,") {
			t.Errorf("shared track should be written for each artist: %s", lines[3])
		}
	})

	t.Run("ReadSongsCSV restores artist-major selections", func(t *testing.T) {
		var buf bytes.Buffer
		if err := WriteSongsCSV(&buf, sampleSelections()); err != nil {
			t.Fatalf("WriteSongsCSV failed: %v", err)
		}

		selections, err := ReadSongsCSV(&buf)
		if err != nil {
			t.Fatalf("ReadSongsCSV failed: %v", err)
		}
		if len(selections) != 2 {
			t.Fatalf("expected 2 selections, got %d", len(selections))
		}
		if selections[0].Artist.Name != "Artist X" || len(selections[0].Tracks) != 2 || len(selections[1].Tracks) != 2 {
			t.Errorf("unexpected selections %+v", selections)
		}
		if !reflect.DeepEqual(selections[0].Artist.Genres, []string{"House", "UK Garage"}) {
			t.Errorf("genres = %v", selections[0].Artist.Genres)
		}
		if selections[0].Tracks[1].AudioFeatures != nil {
			t.Errorf("expected nil features for empty cells, got %v", selections[0].Tracks[1].AudioFeatures)
		}
	})

	t.Run("ReadSongsCSV rejects bad input", func(t *testing.T) {
		header := strings.Join(SongsHeader, ",") + "\n"
		tests := []struct {
			name  string
			input string
		}{
			{"empty", ""},
			{"wrong header", "Song,Artist\n"},
			{"wrong column name", strings.Replace(header, "Tempo", "BPM", 1)},
			{"bad number", header + "A,B,high,,,,,1,,1,spotify:artist:a,spotify:track:t,\n"},
			{"bad feature", header + "A,B,1,x,,,,1,,1,spotify:artist:a,spotify:track:t,\n"},
			{"missing song uri", header + "A,B,1,,,,,1,,1,spotify:artist:a,,\n"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := ReadSongsCSV(strings.NewReader(tt.input))
				if !errors.Is(err, shared.ErrInvalidInput) {
					t.Errorf("expected ErrInvalidInput, got %v", err)
				}
			})
		}
	})

	t.Run("write failure", func(t *testing.T) {
		if err := WriteSongsCSV(&th.FWriter{}, sampleSelections()); err == nil {
			t.Error("expected error from failing writer")
		}
	})
}

func TestArtistsCSV(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		artists := []models.Artist{
			{Name: "Artist X", CatalogID: "ax", Popularity: 72, Genres: []string{"House", "UK Garage"}, ImageURL: "https://i.scdn.co/x.jpg"},
			{Name: "Artist Z", CatalogID: "az"},
		}
		var buf bytes.Buffer
		if err := WriteArtistsCSV(&buf, artists); err != nil {
			t.Fatalf("WriteArtistsCSV failed: %v", err)
		}
		if !strings.HasPrefix(buf.String(), "Artist,Artist Genres,Artist Popularity,Artist uri,Artist Image url\n") {
			t.Errorf("unexpected header: %s", buf.String())
		}

		got, err := ReadArtistsCSV(&buf)
		if err != nil {
			t.Fatalf("ReadArtistsCSV failed: %v", err)
		}
		if !reflect.DeepEqual(got, artists) {
			t.Errorf("artists = %+v, want %+v", got, artists)
		}
	})

	t.Run("rejects bad input", func(t *testing.T) {
		header := strings.Join(ArtistsHeader, ",") + "\n"
		tests := []struct {
			name  string
			input string
		}{
			{"empty", ""},
			{"songs header", strings.Join(SongsHeader, ",") + "\n"},
			{"bad popularity", header + "A,,high,spotify:artist:a,\n"},
			{"missing name", header + ",,1,spotify:artist:a,\n"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := ReadArtistsCSV(strings.NewReader(tt.input))
				if !errors.Is(err, shared.ErrInvalidInput) {
					t.Errorf("expected ErrInvalidInput, got %v", err)
				}
			})
		}
	})
}

func TestOrderByArtists(t *testing.T) {
	x := models.Artist{Name: "X", CatalogID: "x"}
	y := models.Artist{Name: "Y", CatalogID: "y"}
	z := models.Artist{Name: "Z", CatalogID: "z"}
	t1 := models.Track{CatalogID: "t1"}
	t2 := models.Track{CatalogID: "t2"}

	got := orderByArtists(
		[]models.Artist{y, z, y},
		[]models.Selection{{Artist: x, Tracks: []models.Track{t1}}, {Artist: y, Tracks: []models.Track{t2}}},
	)

	var names []string
	for _, sel := range got {
		names = append(names, fmt.Sprintf("%s:%d", sel.Artist.Name, len(sel.Tracks)))
	}
	if want := []string{"Y:1", "Z:0", "X:1"}; !reflect.DeepEqual(names, want) {
		t.Errorf("ordered = %v, want %v", names, want)
	}
}

func TestLoadSelections(t *testing.T) {
	x := models.Artist{Name: "Artist X", CatalogID: "ax", Popularity: 70}
	y := models.Artist{Name: "Artist Y", CatalogID: "ay", Popularity: 50}
	z := models.Artist{Name: "Artist Z", CatalogID: "az", Popularity: 30}
	t1 := models.Track{CatalogID: "t1", Title: "One", DurationMS: 200_000, Popularity: 60}
	t2 := models.Track{CatalogID: "t2", Title: "Two", DurationMS: 100_000, Popularity: 40}

	fetched := []models.Selection{
		{Artist: x, Tracks: []models.Track{t1, t2}},
		{Artist: y, Tracks: []models.Track{t2}},
		{Artist: z},
	}

	t.Run("reassembles to the same summary", func(t *testing.T) {
		dir := t.TempDir()
		saved, err := SaveSelections(dir, fetched)
		if err != nil {
			t.Fatalf("SaveSelections failed: %v", err)
		}
		if saved.DashboardFile != "" {
			t.Errorf("no dashboard expected, got %q", saved.DashboardFile)
		}

		loaded, err := LoadSelections(saved.SongsFile)
		if err != nil {
			t.Fatalf("LoadSelections failed: %v", err)
		}

		original := playlist.Assemble(fetched)
		rebuilt := playlist.Assemble(loaded)
		if !reflect.DeepEqual(rebuilt.Summary, original.Summary) {
			t.Errorf("summary = %+v, want %+v", rebuilt.Summary, original.Summary)
		}
		if original.Summary.DuplicatesRemoved != 1 || rebuilt.Len() != 2 {
			t.Errorf("unexpected rebuilt playlist: %d tracks, %d duplicates", rebuilt.Len(), rebuilt.Summary.DuplicatesRemoved)
		}
		if len(rebuilt.Artists()) != 3 || rebuilt.Artists()[2].Name != "Artist Z" {
			t.Errorf("artists = %+v, want X, Y and Z", rebuilt.Artists())
		}
	})

	t.Run("songs only", func(t *testing.T) {
		dir := t.TempDir()
		saved, err := SaveSelections(dir, fetched)
		if err != nil {
			t.Fatalf("SaveSelections failed: %v", err)
		}
		if err := os.Remove(saved.ArtistsFile); err != nil {
			t.Fatal(err)
		}

		loaded, err := LoadSelections(saved.SongsFile)
		if err != nil {
			t.Fatalf("LoadSelections failed: %v", err)
		}
		if len(loaded) != 2 {
			t.Errorf("expected 2 selections without the artists file, got %d", len(loaded))
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadSelections(filepath.Join(t.TempDir(), SongsFile))
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("bad artists file", func(t *testing.T) {
		dir := t.TempDir()
		saved, err := SaveSelections(dir, fetched)
		if err != nil {
			t.Fatalf("SaveSelections failed: %v", err)
		}
		if err := os.WriteFile(saved.ArtistsFile, []byte("nope\n"), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadSelections(saved.SongsFile); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestExportToText(t *testing.T) {
	output := string(ExportToText("Fest Playlist", samplePlaylist()))

	if !strings.Contains(output, "Playlist: Fest Playlist") {
		t.Errorf("missing playlist name, got: %s", output)
	}
	if !strings.Contains(output, "Tracks: 3 (10 min 20 sec)") {
		t.Errorf("missing track summary, got: %s", output)
	}
	if !strings.Contains(output, "Duplicates removed: 1") {
		t.Errorf("missing duplicate count, got: %s", output)
	}
	if !strings.Contains(output, "3. Artist Y - Three [4 min 0 sec]") {
		t.Errorf("missing third track, got: %s", output)
	}
}

func TestOutputDir(t *testing.T) {
	date := time.Date(2024, 1, 2, 15, 0, 0, 0, time.UTC)
	got := OutputDir("output/created_playlists", "Edc Orlando 2023", date)
	want := filepath.Join("output/created_playlists", "EdcOrlando2023Summary_Created2024-01-02")
	if got != want {
		t.Errorf("OutputDir = %q, want %q", got, want)
	}
}

func TestDashboard(t *testing.T) {
	p := samplePlaylist()
	d := analytics.Build(p, analytics.DashboardOpts{
		Name:            "Fest <Playlist>",
		Public:          true,
		Remote:          &models.RemotePlaylist{URL: "https://open.spotify.com/playlist/abc"},
		Recommendations: []models.Artist{{Name: "Rec One"}},
		CreatedOn:       time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
	})

	t.Run("RenderDashboard", func(t *testing.T) {
		var buf bytes.Buffer
		if err := RenderDashboard(&buf, d); err != nil {
			t.Fatalf("RenderDashboard failed: %v", err)
		}
		html := buf.String()

		for _, want := range []string{
			"Fest &lt;Playlist&gt;",
			"Public playlist created on 01-02-2024",
			"3 songs, 10 min 20 sec",
			"Rec One",
			"House, UK Garage",
			"https://open.spotify.com/playlist/abc",
			"Tempo vs. Song Popularity",
			"<circle",
			"Average Tempo (BPM)",
		} {
			if !strings.Contains(html, want) {
				t.Errorf("dashboard missing %q", want)
			}
		}
		if strings.Contains(html, "<Playlist>") {
			t.Error("playlist name was not escaped")
		}
		// two tracks with identical features produce band lines on every plot
		if got := strings.Count(html, `class="band"`); got != 2*len(models.Features) {
			t.Errorf("expected %d band lines, got %d", 2*len(models.Features), got)
		}
	})

	t.Run("WriteReport", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "FestSummary_Created2024-01-02")

		result, err := WriteReport(dir, d, sampleSelections())
		if err != nil {
			t.Fatalf("WriteReport failed: %v", err)
		}

		th.AssertDirExists(t, result.Directory)
		th.AssertFileExists(t, result.DashboardFile)
		th.AssertFileExists(t, result.SongsFile)
		th.AssertFileExists(t, result.ArtistsFile)

		if filepath.Base(result.DashboardFile) != DashboardFile || filepath.Base(result.SongsFile) != SongsFile {
			t.Errorf("unexpected file names %+v", result)
		}
		if content := th.MustReadFile(t, result.SongsFile); !strings.HasPrefix(content, "Song,Artist,") {
			t.Errorf("unexpected songs file: %s", content)
		}
	})
}
