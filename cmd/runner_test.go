package main

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/festlist/internal/models"
	"github.com/desertthunder/festlist/internal/shared"
	tu "github.com/desertthunder/festlist/internal/testing"
	"golang.org/x/oauth2"
)

var fixedNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	runner  *Runner
	output  *bytes.Buffer
	catalog *tu.MockCatalog
	config  *shared.Config
	db      *sql.DB
}

// newTestEnv returns a runner wired to a mock catalog, an in-memory history
// database and a temporary output directory.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	shared.ConfigureDatabase(db, 1, 1)
	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	config := shared.DefaultConfig()
	config.Output.Dir = t.TempDir()
	config.Playlist.TracksPerArtist = 2
	config.Playlist.RateLimit = 1000

	catalog := tu.NewMockCatalog()
	catalog.AddArtist(models.Artist{Name: "Alpha", CatalogID: "a", Popularity: 80, Genres: []string{"house"}},
		models.Track{CatalogID: "t1", Title: "Song A", ArtistName: "Alpha", DurationMS: 200_000, Popularity: 70},
		models.Track{CatalogID: "t2", Title: "Song B", ArtistName: "Alpha", DurationMS: 100_000, Popularity: 60},
	)
	catalog.AddArtist(models.Artist{Name: "Bravo", CatalogID: "b", Popularity: 50, Genres: []string{"techno"}},
		models.Track{CatalogID: "t1", Title: "Song A", ArtistName: "Alpha", DurationMS: 200_000, Popularity: 70},
		models.Track{CatalogID: "t3", Title: "Song C", ArtistName: "Bravo", DurationMS: 300_000, Popularity: 40},
	)
	catalog.Related["a"] = []models.Artist{{Name: "Charlie", CatalogID: "c"}}

	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: filepath.Join(t.TempDir(), "config.toml"),
		Catalog:    catalog,
		DB:         db,
		Logger:     log.New(&bytes.Buffer{}),
		Output:     output,
		Now:        func() time.Time { return fixedNow },
	})
	return &testEnv{runner: runner, output: output, catalog: catalog, config: config, db: db}
}

func (e *testEnv) run(args ...string) error {
	e.output.Reset()
	return e.runner.App().Run(context.Background(), append([]string{"festlist"}, args...))
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			catalog := tu.NewMockCatalog()

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
				Catalog:    catalog,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.catalog != catalog {
				t.Error("expected catalog to be set")
			}
		})

		t.Run("with nil config loads defaults before a command", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})
			missing := filepath.Join(t.TempDir(), "missing.toml")

			if err := runner.App().Run(context.Background(), []string{"festlist", "--config", missing, "auth", "status"}); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if runner.config == nil {
				t.Fatal("expected default config to be set")
			}
			if runner.configPath != missing {
				t.Errorf("configPath = %q", runner.configPath)
			}
			if runner.catalog != nil {
				t.Error("catalog should not be built without credentials")
			}
			if !strings.Contains(output.String(), "Client credentials: ✗ missing") {
				t.Errorf("unexpected output %q", output.String())
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Logger: nil,
			})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Output: nil,
			})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with nil httpClient uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				HTTPClient: nil,
			})

			if runner.httpClient != http.DefaultClient {
				t.Error("expected httpClient to default to http.DefaultClient")
			}
		})

		t.Run("with configPath sets field", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				ConfigPath: "/test/path/config.toml",
			})

			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
		})

		t.Run("credentials build the Spotify service", func(t *testing.T) {
			config := shared.DefaultConfig()
			config.Credentials.Spotify.ClientID = "id"
			config.Credentials.Spotify.ClientSecret = "secret"
			runner := NewRunner(RunnerOpts{Config: config, Output: &bytes.Buffer{}})

			if err := runner.App().Run(context.Background(), []string{"festlist", "auth", "status"}); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if runner.catalog == nil || runner.oauth == nil {
				t.Error("expected catalog and oauth to be wired")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, true)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			expected := `{"key":"value"}` + "\n"
			if result != expected {
				t.Errorf("expected %q, got %q", expected, result)
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			// channels cannot be marshaled to JSON
			data := make(chan int)
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			data := map[string]string{"key": "value"}
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error writing newline")
			}
			if !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writePlain("hello %s", "world")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if result != "hello world" {
				t.Errorf("expected 'hello world', got %q", result)
			}
		})

		t.Run("writes plain text without formatting", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writePlain("simple text")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if result != "simple text" {
				t.Errorf("expected 'simple text', got %q", result)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			err := runner.writePlain("test")

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		if len(commands) != 8 {
			t.Errorf("expected 8 commands, got %d", len(commands))
		}

		for i, cmd := range commands {
			if cmd == nil {
				t.Errorf("command at index %d is nil", i)
			}
		}
	})

	t.Run("saveTokens", func(t *testing.T) {
		t.Run("saves tokens successfully", func(t *testing.T) {
			tmpDir := t.TempDir()
			configPath := filepath.Join(tmpDir, "config.toml")

			config := shared.DefaultConfig()
			config.Credentials.Spotify.ClientID = "test_id"
			config.Credentials.Spotify.ClientSecret = "test_secret"

			if err := shared.SaveConfig(configPath, config); err != nil {
				t.Fatalf("failed to create test config: %v", err)
			}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				ConfigPath: configPath,
			})

			token := &oauth2.Token{
				AccessToken:  "new_access_token",
				RefreshToken: "new_refresh_token",
			}

			err := runner.saveTokens(token)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			loadedConfig, err := shared.LoadConfig(configPath)
			if err != nil {
				t.Fatalf("failed to reload config: %v", err)
			}

			if loadedConfig.Credentials.Spotify.AccessToken != "new_access_token" {
				t.Errorf("expected access token to be updated, got %s", loadedConfig.Credentials.Spotify.AccessToken)
			}
			if loadedConfig.Credentials.Spotify.RefreshToken != "new_refresh_token" {
				t.Errorf("expected refresh token to be updated, got %s", loadedConfig.Credentials.Spotify.RefreshToken)
			}
		})

		t.Run("handles nil config error", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Config:     nil,
				ConfigPath: "/tmp/test.toml",
			})

			runner.config = nil

			token := &oauth2.Token{AccessToken: "test"}
			err := runner.saveTokens(token)

			if err == nil {
				t.Fatal("expected error with nil config")
			}
			if !strings.Contains(err.Error(), "config is nil") {
				t.Errorf("expected nil config error, got %v", err)
			}
		})

		t.Run("handles empty configPath", func(t *testing.T) {
			config := shared.DefaultConfig()
			runner := NewRunner(RunnerOpts{
				Config:     config,
				ConfigPath: "",
			})

			token := &oauth2.Token{
				AccessToken:  "new_token",
				RefreshToken: "new_refresh",
			}

			err := runner.saveTokens(token)
			if err != nil {
				t.Fatalf("expected no error with empty path, got %v", err)
			}

			if config.Credentials.Spotify.AccessToken != "new_token" {
				t.Error("expected config to be updated in memory")
			}
		})

		t.Run("handles SaveConfig failure", func(t *testing.T) {
			config := shared.DefaultConfig()
			// a regular file cannot be a parent directory
			blocker := filepath.Join(t.TempDir(), "file")
			if err := os.WriteFile(blocker, nil, 0644); err != nil {
				t.Fatal(err)
			}
			invalidPath := filepath.Join(blocker, "config.toml")

			runner := NewRunner(RunnerOpts{
				Config:     config,
				ConfigPath: invalidPath,
			})

			token := &oauth2.Token{AccessToken: "test"}
			err := runner.saveTokens(token)

			if err == nil {
				t.Fatal("expected error with invalid path")
			}
			if !strings.Contains(err.Error(), "failed to save config") {
				t.Errorf("expected save config error, got %v", err)
			}
		})

		t.Run("handles Update error", func(t *testing.T) {
			tmpDir := t.TempDir()
			configPath := filepath.Join(tmpDir, "config.toml")

			config := shared.DefaultConfig()
			runner := NewRunner(RunnerOpts{
				Config:     config,
				ConfigPath: configPath,
			})

			err := runner.saveTokens(nil)
			if err == nil {
				t.Fatal("expected error when Update fails with nil token")
			}
			if !strings.Contains(err.Error(), "failed to update spotify configuration") {
				t.Errorf("expected update error, got %v", err)
			}
			if !errors.Is(err, shared.ErrInvalidCredentials) {
				t.Errorf("expected ErrInvalidCredentials in chain, got %v", err)
			}
		})

		t.Run("updates config reference", func(t *testing.T) {
			config := shared.DefaultConfig()
			runner := NewRunner(RunnerOpts{
				Config:     config,
				ConfigPath: "",
			})

			originalAccess := config.Credentials.Spotify.AccessToken
			token := &oauth2.Token{
				AccessToken:  "updated_access",
				RefreshToken: "updated_refresh",
			}

			err := runner.saveTokens(token)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if runner.config.Credentials.Spotify.AccessToken == originalAccess {
				t.Error("expected config reference to be updated")
			}
			if runner.config.Credentials.Spotify.AccessToken != "updated_access" {
				t.Errorf("expected updated access token in runner config")
			}
		})
	})
}
