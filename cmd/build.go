package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/festlist/internal/analytics"
	"github.com/desertthunder/festlist/internal/formatter"
	"github.com/desertthunder/festlist/internal/lineup"
	"github.com/desertthunder/festlist/internal/models"
	"github.com/desertthunder/festlist/internal/playlist"
	"github.com/desertthunder/festlist/internal/repositories"
	"github.com/desertthunder/festlist/internal/shared"
	"github.com/desertthunder/festlist/internal/tasks"
	"github.com/urfave/cli/v3"
)

// buildRequest is a fully resolved build, shared by the build command and the TUI.
type buildRequest struct {
	Festival string
	Opts     tasks.BuildOpts
	Report   bool
}

// buildOutput is what a build produced and where it was stored.
type buildOutput struct {
	Result *tasks.BuildResult
	Report *formatter.ReportResult
	Run    *models.PlaylistRun
}

// runBuild runs the engine, saves the fetched selections, writes the dashboard
// and records the run in history.
//
// The songs and artists CSVs are saved before assembly whether or not a dashboard is requested.
// History is best effort: a database failure is logged, not returned.
func (r *Runner) runBuild(ctx context.Context, req buildRequest, progress chan<- tasks.ProgressUpdate) (*buildOutput, error) {
	if req.Opts.Create {
		if err := r.ensureUser(ctx); err != nil {
			return nil, err
		}
	}

	now := r.now()
	logger := shared.WithLogger(r.logger, "playlist", req.Opts.Name)

	var saved *formatter.ReportResult
	opts := req.Opts
	opts.Save = func(selections []models.Selection) error {
		var err error
		saved, err = formatter.SaveSelections(formatter.OutputDir(r.config.Output.Dir, opts.Name, now), selections)
		if err == nil {
			logger.Debug("selections saved", "dir", saved.Directory, "artists", len(selections))
		}
		return err
	}

	result, err := r.engine.Build(ctx, opts, progress)
	if err != nil {
		return nil, err
	}
	out := &buildOutput{Result: result, Report: saved}

	if req.Report && saved != nil {
		dashboard := analytics.Build(result.Playlist, analytics.DashboardOpts{
			Name:            result.Name,
			Public:          req.Opts.Public,
			Remote:          result.Remote,
			Recommendations: result.Recommendations,
			CreatedOn:       now,
		})
		if saved.DashboardFile, err = formatter.WriteDashboard(saved.Directory, dashboard); err != nil {
			return out, err
		}
		logger.Info("report written", "dir", saved.Directory)
	}

	out.Run = r.saveRun(logger, req.Festival, out)
	return out, nil
}

func (r *Runner) saveRun(logger *log.Logger, festival string, out *buildOutput) *models.PlaylistRun {
	db, done, err := r.openDatabase()
	if err != nil {
		logger.Warn("run not saved to history", "error", err)
		return nil
	}
	defer done()

	pl := out.Result.Playlist
	run := models.NewPlaylistRun(out.Result.Name, festival, pl.Summary)
	if remote := out.Result.Remote; remote != nil {
		run.SetRemote(remote.ID, remote.URL)
	}
	if out.Report != nil {
		run.SetReportDir(out.Report.Directory)
	}

	repo := repositories.NewRunRepository(db)
	if err := repo.Create(run); err != nil {
		logger.Warn("run not saved to history", "error", err)
		return nil
	}
	if err := repo.SaveTracks(run.ID(), pl.Entries); err != nil {
		logger.Warn("run tracks not saved to history", "run", run.Sequence(), "error", err)
	}
	return run
}

// logProgress drains progress into the debug log until the channel is closed.
func (r *Runner) logProgress(progress <-chan tasks.ProgressUpdate) {
	for update := range progress {
		r.logger.Debug(update.Message, "phase", update.Phase, "step", update.Step, "total", update.Total)
	}
}

// Build runs the non-interactive pipeline.
func (r *Runner) Build(ctx context.Context, cmd *cli.Command) error {
	url := cmd.String("url")
	names := cmd.StringSlice("artist")
	csvPath := cmd.String("from-csv")

	sources := 0
	for _, set := range []bool{url != "", len(names) > 0, csvPath != ""} {
		if set {
			sources++
		}
	}
	switch {
	case sources == 0:
		return fmt.Errorf("%w: pass --url, --artist or --from-csv", shared.ErrMissingArgument)
	case sources > 1:
		return fmt.Errorf("%w: --url, --artist and --from-csv are exclusive", shared.ErrInvalidArgument)
	}

	tracks := cmd.Int("tracks")
	if tracks == 0 {
		tracks = r.config.Playlist.TracksPerArtist
	}
	if tracks < 1 || tracks > tasks.MaxTracksPerArtist {
		return fmt.Errorf("%w: --tracks must be between 1 and %d", shared.ErrInvalidArgument, tasks.MaxTracksPerArtist)
	}

	req := buildRequest{
		Festival: lineup.DefaultFestivalName,
		Report:   !cmd.Bool("no-report"),
		Opts: tasks.BuildOpts{
			Description:       r.config.Playlist.Description,
			Public:            r.config.Playlist.Public && !cmd.Bool("private"),
			TracksPerArtist:   tracks,
			IncludeRemixes:    cmd.Bool("include-remixes"),
			ScaleByPopularity: cmd.Bool("scale"),
			Create:            !cmd.Bool("no-create"),
			Recommendations:   cmd.Int("recommend"),
		},
	}

	progress := make(chan tasks.ProgressUpdate, 64)
	go r.logProgress(progress)
	defer close(progress)

	var unresolved []string
	var out *buildOutput
	err := r.spin(ctx, "Building playlist...", func(ctx context.Context) error {
		if csvPath != "" {
			selections, err := formatter.LoadSelections(csvPath)
			if err != nil {
				return err
			}
			req.Opts.Selections = selections
		} else {
			if url != "" {
				lu, err := r.scraper.Fetch(ctx, url)
				if err != nil {
					return err
				}
				req.Festival, names = lu.Festival, lu.Artists
			}

			resolved, err := r.engine.ResolveArtists(ctx, names, progress)
			if err != nil {
				return err
			}
			if len(resolved.Resolved) == 0 {
				return fmt.Errorf("%w: none of %d artists matched", shared.ErrArtistNotFound, len(names))
			}
			unresolved = resolved.Unresolved
			req.Opts.Artists = resolved.Resolved
		}

		req.Opts.Name = strings.TrimSpace(cmd.String("name"))
		switch {
		case req.Opts.Name != "":
		case csvPath != "":
			req.Opts.Name = reportName(csvPath)
		default:
			req.Opts.Name = shared.TitleCase(req.Festival) + " Playlist"
		}

		var err error
		out, err = r.runBuild(ctx, req, progress)
		return err
	})
	if err != nil {
		return err
	}

	r.printBuild(out, unresolved)
	return nil
}

func (r *Runner) printBuild(out *buildOutput, unresolved []string) {
	res := out.Result

	r.writePlain("%s", formatter.ExportToText(res.Name, res.Playlist))

	if n := len(res.VersionsRemoved); n > 0 {
		r.writePlain("Remixes and edits removed: %d\n", n)
	}
	if n := len(res.ScaledOut); n > 0 {
		r.writePlain("Removed by popularity scaling: %d\n", n)
	}
	if len(unresolved) > 0 {
		r.writePlain("⚠ Not found on Spotify: %s\n", strings.Join(unresolved, ", "))
	}
	if res.Remote != nil {
		r.writePlainln("✓ Playlist created: %s", res.Remote.URL)
	}
	if len(res.Recommendations) > 0 {
		recs := make([]string, len(res.Recommendations))
		for i, a := range res.Recommendations {
			recs[i] = a.Name
		}
		r.writePlain("You might also like: %s\n", strings.Join(recs, ", "))
	}
	if rep := out.Report; rep != nil {
		if rep.DashboardFile != "" {
			r.writePlain("✓ Dashboard: %s\n", rep.DashboardFile)
		}
		r.writePlain("✓ Songs: %s\n", rep.SongsFile)
		r.writePlain("✓ Artists: %s\n", rep.ArtistsFile)
	}
	if out.Run != nil {
		r.writePlain("Saved to history as #%d\n", out.Run.Sequence())
	}
}

// Report renders a dashboard from a saved songs CSV.
//
// The saved rows are assembled again, so duplicates and version collapse match the original build.
func (r *Runner) Report(ctx context.Context, cmd *cli.Command) error {
	csvPath := cmd.String("csv")

	selections, err := formatter.LoadSelections(csvPath)
	if err != nil {
		return err
	}

	pl := playlist.Assemble(selections)
	if !cmd.Bool("include-remixes") {
		pl, _ = playlist.CollapseVersions(pl)
	}
	if cmd.Bool("scale") {
		pl, _ = playlist.ScaleByPopularity(pl)
	}

	name := strings.TrimSpace(cmd.String("name"))
	if name == "" {
		name = reportName(csvPath)
	}

	now := r.now()
	dir := cmd.String("output")
	if dir == "" {
		dir = formatter.OutputDir(r.config.Output.Dir, name, now)
	}

	dashboard := analytics.Build(pl, analytics.DashboardOpts{Name: name, Public: r.config.Playlist.Public, CreatedOn: now})
	report, err := formatter.WriteReport(dir, dashboard, selections)
	if err != nil {
		return err
	}

	r.logger.Info("report written", "dir", report.Directory, "tracks", pl.Len(), "duplicates", pl.Summary.DuplicatesRemoved)
	r.writePlain("✓ Dashboard: %s\n", report.DashboardFile)
	r.writePlain("✓ Songs: %s\n", report.SongsFile)
	return nil
}

// reportName recovers the playlist name from a report directory such as
// EdcOrlando2023PlaylistSummary_Created2024-01-02/Playlist_Songs.csv.
func reportName(csvPath string) string {
	dir := filepath.Base(filepath.Dir(csvPath))
	if i := strings.Index(dir, "Summary_Created"); i > 0 {
		return dir[:i]
	}
	return shared.TitleCase(lineup.DefaultFestivalName) + " Playlist"
}
