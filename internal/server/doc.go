// Package server runs the local HTTP callback used to connect festlist to a Spotify account.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
// [Logging] is the only middleware festlist installs.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # OAuth Callback Handler
//
// OAuthHandler implements the OAuth2 authorization code callback flow.
//
// The handler validates the state parameter, exchanges the authorization code for tokens
// and sends the result through a channel. It only processes one callback.
//
// # Lifecycle
//
// `festlist auth login` calls [Listen] on the configured host and port (127.0.0.1:3000 by default),
// opens the browser at the authorization URL and blocks in [CallbackServer.Wait] until the
// callback arrives or the timeout elapses. The server is shut down either way.
package server
