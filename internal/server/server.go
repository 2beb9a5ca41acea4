package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/festlist/internal/shared"
	"golang.org/x/oauth2"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Handler is an http.Handler that knows which paths it serves.
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the path patterns this handler serves
}

// Router defines the interface for HTTP routing and middleware management.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers a custom Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

// DefaultTimeout is how long [CallbackServer.Wait] waits for the browser to come back.
const DefaultTimeout = 2 * time.Minute

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Logging logs one line per request with its status and duration.
func Logging(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			logger.Debug("request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "duration", time.Since(start))
		})
	}
}

// CallbackServer is a short-lived local server that receives one OAuth callback.
type CallbackServer struct {
	srv      *http.Server
	listener net.Listener
	errs     chan error
	logger   *log.Logger
}

// Listen binds addr and starts serving handler in the background.
//
// Binding happens before returning, so the browser can be opened right away.
func Listen(addr string, handler http.Handler, logger *log.Logger) (*CallbackServer, error) {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot listen on %s: %v", shared.ErrServiceUnavailable, addr, err)
	}

	c := &CallbackServer{
		srv:      &http.Server{Handler: handler, ReadHeaderTimeout: 10 * time.Second},
		listener: listener,
		errs:     make(chan error, 1),
		logger:   logger,
	}

	go func() {
		logger.Debugf("callback server listening on %v", listener.Addr())
		if err := c.srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			c.errs <- err
		}
	}()

	return c, nil
}

// Addr returns the bound address, useful when listening on port 0.
func (c *CallbackServer) Addr() string {
	return c.listener.Addr().String()
}

// Wait blocks until results delivers, the server fails, ctx is done or timeout elapses.
// The server is shut down before returning.
func (c *CallbackServer) Wait(ctx context.Context, results <-chan OAuthResult, timeout time.Duration) (*oauth2.Token, error) {
	defer c.Shutdown()

	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var result OAuthResult
	select {
	case result = <-results:
	case err := <-c.errs:
		return nil, fmt.Errorf("%w: callback server: %v", shared.ErrServiceUnavailable, err)
	case <-timer.C:
		return nil, fmt.Errorf("%w: authorization timed out after %s", shared.ErrTimeout, timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if err := result.Error(); err != nil {
		return nil, err
	}
	if result.Token == nil {
		return nil, fmt.Errorf("%w: no token received", shared.ErrAuthFailed)
	}
	return result.Token, nil
}

// Shutdown stops the server, giving in-flight requests a few seconds to finish.
func (c *CallbackServer) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.srv.Shutdown(ctx); err != nil {
		c.logger.Warn("error shutting down callback server", "error", err)
	}
}
