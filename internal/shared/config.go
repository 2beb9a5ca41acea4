package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"golang.org/x/oauth2"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
	Playlist    PlaylistConfig    `toml:"playlist"`
	Output      OutputConfig      `toml:"output"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains Spotify API credentials and the stored user token.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri"`
	UserID       string `toml:"user_id"`
	AccessToken  string `toml:"access_token"`
	RefreshToken string `toml:"refresh_token"`
	TokenType    string `toml:"token_type"`
	TokenExpiry  string `toml:"token_expiry"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains settings for the local OAuth callback server.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// PlaylistConfig holds defaults for generated playlists.
type PlaylistConfig struct {
	TracksPerArtist int     `toml:"tracks_per_artist"`
	Market          string  `toml:"market"`
	Public          bool    `toml:"public"`
	Description     string  `toml:"description"`
	RateLimit       float64 `toml:"rate_limit"`
}

// OutputConfig controls where reports are written.
type OutputConfig struct {
	Dir string `toml:"dir"`
}

// HasCredentials reports whether the client id and secret are set.
func (c SpotifyConfig) HasCredentials() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// HasToken reports whether a user token has been stored.
func (c SpotifyConfig) HasToken() bool {
	return c.AccessToken != "" || c.RefreshToken != ""
}

// Token builds an [oauth2.Token] from the stored fields.
func (c SpotifyConfig) Token() *oauth2.Token {
	token := &oauth2.Token{
		AccessToken:  c.AccessToken,
		RefreshToken: c.RefreshToken,
		TokenType:    c.TokenType,
	}
	if expiry, err := time.Parse(time.RFC3339, c.TokenExpiry); err == nil {
		token.Expiry = expiry
	}
	return token
}

// Update copies a freshly issued token into the config.
//
// An empty refresh token keeps the stored one, since refresh responses may omit it.
func (c *SpotifyConfig) Update(token *oauth2.Token) error {
	if token == nil || token.AccessToken == "" {
		return fmt.Errorf("%w: empty access token", ErrInvalidCredentials)
	}

	c.AccessToken = token.AccessToken
	c.TokenType = token.TokenType
	if token.RefreshToken != "" {
		c.RefreshToken = token.RefreshToken
	}
	if !token.Expiry.IsZero() {
		c.TokenExpiry = token.Expiry.Format(time.RFC3339)
	}
	return nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return config, nil
}

// LoadConfigOrDefault loads path when it exists and falls back to [DefaultConfig] otherwise.
func LoadConfigOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return DefaultConfig(), nil
	}
	return LoadConfig(path)
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SaveConfig writes the config back to path, replacing its contents.
func SaveConfig(path string, config *Config) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}
