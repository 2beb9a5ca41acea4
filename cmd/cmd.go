// submodule cmd contains command definitions
package main

import (
	"github.com/desertthunder/festlist/internal/tasks"
	"github.com/urfave/cli/v3"
)

// setupCommand handles setup operations for the database and config file.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Initialize the run history database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:   "config",
				Usage:  "Write an example config file to --config",
				Action: r.SetupConfig,
			},
		},
	}
}

// authCommand handles Spotify sign-in.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage Spotify authentication",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Authorize festlist with your Spotify account (opens a browser)",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "How long to wait for the browser callback",
						Value: 0,
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Show stored credentials and token state",
				Action: r.AuthStatus,
			},
		},
	}
}

// lineupCommand scrapes a festival page.
func lineupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "lineup",
		Usage: "Print the artists on a Songkick festival page",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "url",
				Aliases:  []string{"u"},
				Usage:    "Songkick festival URL",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Lineup,
	}
}

// artistsCommand looks artists up in the catalog.
func artistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "artists",
		Usage: "Catalog artist lookups",
		Commands: []*cli.Command{
			{
				Name:      "resolve",
				Usage:     "Match artist names (or a festival lineup) against Spotify",
				ArgsUsage: "[name...]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "url",
						Usage: "Resolve every artist on this Songkick festival page",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.ArtistsResolve,
			},
		},
	}
}

// buildCommand runs the whole pipeline without prompts.
func buildCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "build",
		Usage: "Build a playlist from a lineup, a list of artists or a saved songs CSV",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "url",
				Aliases: []string{"u"},
				Usage:   "Songkick festival URL",
			},
			&cli.StringSliceFlag{
				Name:    "artist",
				Aliases: []string{"a"},
				Usage:   "Artist name (repeatable)",
			},
			&cli.StringFlag{
				Name:  "from-csv",
				Usage: "Rebuild from a Playlist_Songs.csv instead of fetching",
			},
			&cli.StringFlag{
				Name:    "name",
				Aliases: []string{"n"},
				Usage:   "Playlist name (default: \"<Festival> Playlist\")",
			},
			&cli.IntFlag{
				Name:    "tracks",
				Aliases: []string{"t"},
				Usage:   "Top tracks per artist, 1-10 (default from config)",
			},
			&cli.BoolFlag{
				Name:  "scale",
				Usage: "Keep fewer tracks for less popular artists",
			},
			&cli.BoolFlag{
				Name:  "include-remixes",
				Usage: "Keep remixes and edits of songs already on the playlist",
			},
			&cli.BoolFlag{
				Name:  "private",
				Usage: "Create a private playlist",
			},
			&cli.BoolFlag{
				Name:  "no-create",
				Usage: "Do not create the playlist on Spotify",
			},
			&cli.BoolFlag{
				Name:  "no-report",
				Usage: "Do not write the dashboard (the songs and artists CSVs are always saved)",
			},
			&cli.IntFlag{
				Name:  "recommend",
				Usage: "Number of related artists to suggest",
				Value: tasks.DefaultRecommendations,
			},
		},
		Action: r.Build,
	}
}

// reportCommand re-renders a dashboard from saved data.
func reportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "Render a summary dashboard from a saved songs CSV",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "csv",
				Usage:    "Path to a Playlist_Songs.csv",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "name",
				Aliases: []string{"n"},
				Usage:   "Playlist name shown on the dashboard",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output directory (default: a new directory under output.dir)",
			},
			&cli.BoolFlag{
				Name:  "scale",
				Usage: "Keep fewer tracks for less popular artists",
			},
			&cli.BoolFlag{
				Name:  "include-remixes",
				Usage: "Keep remixes and edits of songs already on the playlist",
			},
		},
		Action: r.Report,
	}
}

// historyCommand browses saved runs.
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Browse previously built playlists",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List runs, newest first",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "festival",
						Usage: "Only runs for this festival",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of runs",
						Value: 20,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.HistoryList,
			},
			{
				Name:      "show",
				Usage:     "Show a run and its tracks",
				ArgsUsage: "<number|id>",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "run"},
				},
				Action: r.HistoryShow,
			},
			{
				Name:      "delete",
				Usage:     "Remove a run from history",
				ArgsUsage: "<number|id>",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "run"},
				},
				Action: r.HistoryDelete,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for the interactive wizard.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive playlist wizard",
		Action:  r.TUI,
	}
}
