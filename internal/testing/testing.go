// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/festlist/internal/models"
	"github.com/desertthunder/festlist/internal/services"
	"github.com/desertthunder/festlist/internal/shared"
)

// MockCatalog is a test double for [services.Catalog].
//
// Artists are looked up by exact name, tracks and related artists by catalog ID.
type MockCatalog struct {
	mu sync.Mutex

	Artists map[string]models.Artist
	Tracks  map[string][]models.Track
	Related map[string][]models.Artist

	ResolveErr error
	TracksErr  error
	RelatedErr map[string]error
	CreateErr  error

	// Created records every CreatePlaylist request.
	Created []services.CreatePlaylistRequest
	// Calls records every method call as "Method:arg".
	Calls []string
}

var _ services.Catalog = (*MockCatalog)(nil)

func NewMockCatalog() *MockCatalog {
	return &MockCatalog{
		Artists:    make(map[string]models.Artist),
		Tracks:     make(map[string][]models.Track),
		Related:    make(map[string][]models.Artist),
		RelatedErr: make(map[string]error),
	}
}

// AddArtist registers an artist and its top tracks.
func (m *MockCatalog) AddArtist(a models.Artist, tracks ...models.Track) {
	m.Artists[a.Name] = a
	m.Tracks[a.CatalogID] = tracks
}

func (m *MockCatalog) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, call)
}

func (m *MockCatalog) ResolveArtist(ctx context.Context, name string) (*models.Artist, error) {
	m.record("ResolveArtist:" + name)
	if m.ResolveErr != nil {
		return nil, m.ResolveErr
	}
	a, ok := m.Artists[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrArtistNotFound, name)
	}
	return &a, nil
}

func (m *MockCatalog) TopTracks(ctx context.Context, artist models.Artist, limit int) ([]models.Track, error) {
	m.record("TopTracks:" + artist.CatalogID)
	if m.TracksErr != nil {
		return nil, m.TracksErr
	}
	tracks := m.Tracks[artist.CatalogID]
	if len(tracks) > limit {
		tracks = tracks[:limit]
	}
	return tracks, nil
}

func (m *MockCatalog) RelatedArtists(ctx context.Context, artist models.Artist) ([]models.Artist, error) {
	m.record("RelatedArtists:" + artist.CatalogID)
	if err := m.RelatedErr[artist.CatalogID]; err != nil {
		return nil, err
	}
	return m.Related[artist.CatalogID], nil
}

func (m *MockCatalog) CreatePlaylist(ctx context.Context, req services.CreatePlaylistRequest) (*models.RemotePlaylist, error) {
	m.record("CreatePlaylist:" + req.Name)
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	m.mu.Lock()
	m.Created = append(m.Created, req)
	m.mu.Unlock()
	return &models.RemotePlaylist{
		ID:     "pl-1",
		Name:   req.Name,
		URI:    "spotify:playlist:pl-1",
		URL:    "https://open.spotify.com/playlist/pl-1",
		Public: req.Public,
	}, nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
