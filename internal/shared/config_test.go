package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./festlist.db" {
			t.Errorf("expected database path ./festlist.db, got %s", config.Database.Path)
		}
		if config.Server.Port != 3000 {
			t.Errorf("expected server port 3000, got %d", config.Server.Port)
		}
		if config.Playlist.TracksPerArtist != 10 {
			t.Errorf("expected 10 tracks per artist, got %d", config.Playlist.TracksPerArtist)
		}
		if config.Playlist.Market != "US" {
			t.Errorf("expected market US, got %s", config.Playlist.Market)
		}
		if config.Output.Dir != "output/created_playlists" {
			t.Errorf("unexpected output dir %s", config.Output.Dir)
		}
		if config.Credentials.Spotify.HasToken() {
			t.Error("default config should not carry a token")
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}
		if config.Database.Path != DefaultConfig().Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		testConfig := `[database]
path = "/custom/path.db"

[server]
port = 8080

[credentials.spotify]
client_id = "test_client_id"
client_secret = "test_secret"
user_id = "someone"

[playlist]
tracks_per_artist = 3
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected database path /custom/path.db, got %s", config.Database.Path)
		}
		if config.Server.Port != 8080 {
			t.Errorf("expected server port 8080, got %d", config.Server.Port)
		}
		if config.Server.Host != "127.0.0.1" {
			t.Errorf("missing keys should keep defaults, got host %q", config.Server.Host)
		}
		if config.Playlist.TracksPerArtist != 3 {
			t.Errorf("expected 3 tracks per artist, got %d", config.Playlist.TracksPerArtist)
		}
		if !config.Credentials.Spotify.HasCredentials() {
			t.Error("expected credentials to be present")
		}
	})

	t.Run("LoadConfig invalid", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[database\npath="), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		_, err := LoadConfig(configPath)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("SaveConfig round trips tokens", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		config := DefaultConfig()
		expiry := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

		if err := config.Credentials.Spotify.Update(&oauth2.Token{
			AccessToken:  "access",
			RefreshToken: "refresh",
			TokenType:    "Bearer",
			Expiry:       expiry,
		}); err != nil {
			t.Fatalf("update failed: %v", err)
		}

		if err := SaveConfig(configPath, config); err != nil {
			t.Fatalf("save failed: %v", err)
		}

		loaded, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}

		token := loaded.Credentials.Spotify.Token()
		if token.AccessToken != "access" || token.RefreshToken != "refresh" {
			t.Errorf("unexpected token %+v", token)
		}
		if !token.Expiry.Equal(expiry) {
			t.Errorf("expected expiry %v, got %v", expiry, token.Expiry)
		}
	})

	t.Run("Update keeps refresh token", func(t *testing.T) {
		sc := SpotifyConfig{RefreshToken: "keep"}
		if err := sc.Update(&oauth2.Token{AccessToken: "new"}); err != nil {
			t.Fatalf("update failed: %v", err)
		}
		if sc.RefreshToken != "keep" {
			t.Errorf("refresh token overwritten: %q", sc.RefreshToken)
		}
		if err := sc.Update(&oauth2.Token{}); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials, got %v", err)
		}
	})
}
