package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/huh/spinner"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/festlist/internal/lineup"
	"github.com/desertthunder/festlist/internal/services"
	"github.com/desertthunder/festlist/internal/shared"
	"github.com/desertthunder/festlist/internal/tasks"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

const defaultConfigPath = "config.toml"

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	catalog    services.Catalog
	oauth      services.OAuthService
	scraper    *lineup.Scraper
	engine     *tasks.Engine
	db         *sql.DB
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	spin       func(ctx context.Context, title string, action func(context.Context) error) error
	now        func() time.Time
}

// RunnerOpts contains configuration options for creating a Runner.
//
// Anything left nil is built from the config file when the first command runs.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Catalog    services.Catalog
	OAuth      services.OAuthService
	DB         *sql.DB
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Now        func() time.Time
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	spin := runAction
	if opts.Output == nil {
		opts.Output = os.Stdout
		if isatty.IsTerminal(os.Stdout.Fd()) {
			spin = runSpinner
		}
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		catalog:    opts.Catalog,
		oauth:      opts.OAuth,
		db:         opts.DB,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		spin:       spin,
		now:        opts.Now,
	}
}

// App returns the root command.
func (r *Runner) App() *cli.Command {
	return &cli.Command{
		Name:    "festlist",
		Usage:   "Build a Spotify playlist from a festival lineup",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   defaultConfigPath,
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Log debug output",
			},
		},
		Before:   r.before,
		Commands: r.register(),
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, lineupCommand, artistsCommand, buildCommand, reportCommand, historyCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// before loads the config and wires services that were not injected.
func (r *Runner) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	if r.config == nil {
		path := cmd.String("config")
		config, err := shared.LoadConfigOrDefault(path)
		if err != nil {
			return ctx, err
		}
		r.config = config
		r.configPath = path
	}
	if r.configPath == "" {
		r.configPath = cmd.String("config")
	}

	if r.catalog == nil && r.config.Credentials.Spotify.HasCredentials() {
		creds := r.config.Credentials.Spotify
		svc, err := services.NewSpotifyService(services.SpotifyOptions{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			RedirectURI:  creds.RedirectURI,
			UserID:       creds.UserID,
			Market:       r.config.Playlist.Market,
			Logger:       r.logger,
			HTTPClient:   r.httpClient,
		})
		if err != nil {
			return ctx, err
		}
		svc.SetTokenCallback(func(token *oauth2.Token) {
			if err := r.saveTokens(token); err != nil {
				r.logger.Warn("failed to save refreshed token", "error", err)
			}
		})
		r.catalog = svc
		r.oauth = svc
	}

	if r.scraper == nil {
		r.scraper = lineup.NewScraper(r.httpClient, r.logger)
	}
	if r.engine == nil {
		r.engine = tasks.NewEngine(tasks.EngineOpts{
			Catalog:   r.catalog,
			RateLimit: r.config.Playlist.RateLimit,
			Logger:    r.logger,
		})
	}
	return ctx, nil
}

// SetLogger swaps the logger, e.g. for a file logger while the TUI owns the terminal.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
	r.scraper = lineup.NewScraper(r.httpClient, logger)
	r.engine = tasks.NewEngine(tasks.EngineOpts{
		Catalog:   r.catalog,
		RateLimit: r.config.Playlist.RateLimit,
		Logger:    logger,
	})
}

// saveTokens stores token in the config and writes it back to the config path, if any.
func (r *Runner) saveTokens(token *oauth2.Token) error {
	if r.config == nil {
		return fmt.Errorf("%w: config is nil", shared.ErrMissingConfig)
	}
	if err := r.config.Credentials.Spotify.Update(token); err != nil {
		return fmt.Errorf("failed to update spotify configuration: %w", err)
	}
	if r.configPath == "" {
		return nil
	}
	if err := shared.SaveConfig(r.configPath, r.config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// openDatabase returns the injected database or opens the configured one.
// The returned func closes only what this call opened.
func (r *Runner) openDatabase() (*sql.DB, func(), error) {
	if r.db != nil {
		return r.db, func() {}, nil
	}
	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return nil, nil, err
	}
	return db, func() { db.Close() }, nil
}

func runAction(ctx context.Context, _ string, action func(context.Context) error) error {
	return action(ctx)
}

func runSpinner(ctx context.Context, title string, action func(context.Context) error) error {
	return spinner.New().Title(title).Context(ctx).ActionWithErr(action).Run()
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
