package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/festlist/internal/server"
	"github.com/desertthunder/festlist/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// AuthLogin performs the OAuth2 authorization code flow for Spotify.
//
// Starts a local HTTP server, opens the browser for user authorization and saves the issued tokens to the config file.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if r.oauth == nil {
		return fmt.Errorf("%w: set client_id and client_secret under [credentials.spotify] in %s", shared.ErrMissingCredentials, r.configPath)
	}

	token, err := r.doOAuth(ctx, cmd.Duration("timeout"))
	if err != nil {
		return err
	}

	if err := r.saveTokens(token); err != nil {
		return err
	}
	if err := r.oauth.Authenticate(ctx, token); err != nil {
		return err
	}

	r.writePlainln("✓ Authorization successful")
	r.writePlain("✓ Tokens saved to %s\n\n", r.configPath)
	r.writePlain("You can now use: festlist build --url <festival page>\n")
	return nil
}

// AuthStatus reports what is stored in the config without calling the API.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	creds := r.config.Credentials.Spotify

	r.writePlain("Config: %s\n", r.configPath)
	if creds.HasCredentials() {
		r.writePlain("Client credentials: ✓ set\n")
	} else {
		r.writePlain("Client credentials: ✗ missing\n")
	}

	if !creds.HasToken() {
		r.writePlain("User token: ✗ not stored (run `festlist auth login`)\n")
		return nil
	}

	token := creds.Token()
	switch {
	case token.Expiry.IsZero():
		r.writePlain("User token: ✓ stored\n")
	case token.Expiry.After(r.now()):
		r.writePlain("User token: ✓ stored, expires %s\n", token.Expiry.Local().Format(time.RFC1123))
	case token.RefreshToken != "":
		r.writePlain("User token: ✓ stored, will refresh on next use\n")
	default:
		r.writePlain("User token: ✗ expired (run `festlist auth login`)\n")
	}
	return nil
}

// doOAuth executes the OAuth2 authorization flow with a local HTTP server
func (r *Runner) doOAuth(ctx context.Context, timeout time.Duration) (*oauth2.Token, error) {
	state, err := shared.GenerateState()
	if err != nil {
		return nil, fmt.Errorf("failed to generate state token: %w", err)
	}

	handler := server.NewOAuthHandler(r.oauth.OAuthConfig(), state)
	addr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)

	srv, err := server.Listen(addr, server.NewCallbackRouter(handler, r.logger), r.logger)
	if err != nil {
		return nil, err
	}
	r.logger.Info("waiting for OAuth callback", "addr", srv.Addr())

	authURL := r.oauth.GetAuthURL(state)
	r.writePlain("→ Opening browser for Spotify authorization...\n")
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	if timeout <= 0 {
		timeout = server.DefaultTimeout
	}
	r.writePlain("→ Waiting for authorization (%s timeout)...\n", timeout)

	token, err := srv.Wait(ctx, handler.Result(), timeout)
	if err != nil {
		return nil, fmt.Errorf("authorization failed: %w", err)
	}
	return token, nil
}

// ensureUser switches the catalog to the stored user token before creating playlists.
func (r *Runner) ensureUser(ctx context.Context) error {
	if r.oauth == nil {
		return nil
	}
	creds := r.config.Credentials.Spotify
	if !creds.HasToken() {
		return fmt.Errorf("%w: run `festlist auth login` first, or pass --no-create", shared.ErrNotAuthenticated)
	}
	return r.oauth.Authenticate(ctx, creds.Token())
}
