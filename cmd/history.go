package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/festlist/internal/models"
	"github.com/desertthunder/festlist/internal/repositories"
	"github.com/desertthunder/festlist/internal/shared"
	"github.com/urfave/cli/v3"
)

// runView is the JSON shape of a history entry.
type runView struct {
	ID                string    `json:"id"`
	Sequence          int       `json:"sequence"`
	Name              string    `json:"name"`
	Festival          string    `json:"festival,omitempty"`
	TrackCount        int       `json:"track_count"`
	DurationMS        int       `json:"duration_ms"`
	DuplicatesRemoved int       `json:"duplicates_removed"`
	URL               string    `json:"url,omitempty"`
	ReportDir         string    `json:"report_dir,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

func newRunView(run *models.PlaylistRun) runView {
	return runView{
		ID:                run.ID(),
		Sequence:          run.Sequence(),
		Name:              run.Name(),
		Festival:          run.Festival(),
		TrackCount:        run.TrackCount(),
		DurationMS:        run.DurationMS(),
		DuplicatesRemoved: run.DuplicatesRemoved(),
		URL:               run.RemoteURL(),
		ReportDir:         run.ReportDir(),
		CreatedAt:         run.CreatedAt(),
	}
}

// HistoryList prints saved runs, newest first.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	db, done, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer done()

	runs, err := repositories.NewRunRepository(db).List(map[string]any{
		"festival": cmd.String("festival"),
		"limit":    cmd.Int("limit"),
	})
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		views := make([]runView, 0, len(runs))
		for _, run := range runs {
			views = append(views, newRunView(run))
		}
		return r.writeJSON(views, true)
	}

	if len(runs) == 0 {
		r.writePlain("No playlists built yet\n")
		return nil
	}

	r.writePlainHeader("Playlist history")
	for _, run := range runs {
		r.writePlain("#%-4d %s  %s (%d tracks, %s)\n",
			run.Sequence(), run.CreatedAt().Format("2006-01-02"), run.Name(), run.TrackCount(), shared.FormatDuration(run.DurationMS()))
	}
	return nil
}

// HistoryShow prints one run and its tracks.
func (r *Runner) HistoryShow(ctx context.Context, cmd *cli.Command) error {
	db, done, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer done()

	repo := repositories.NewRunRepository(db)
	run, err := findRun(repo, cmd.StringArg("run"))
	if err != nil {
		return err
	}
	tracks, err := repo.Tracks(run.ID())
	if err != nil {
		return err
	}

	r.writePlainHeader(fmt.Sprintf("#%d %s", run.Sequence(), run.Name()))
	if run.Festival() != "" {
		r.writePlain("Festival:   %s\n", shared.TitleCase(run.Festival()))
	}
	r.writePlain("Created:    %s\n", run.CreatedAt().Format("2006-01-02 15:04"))
	r.writePlain("Tracks:     %d (%s)\n", run.TrackCount(), shared.FormatDuration(run.DurationMS()))
	r.writePlain("Duplicates: %d removed\n", run.DuplicatesRemoved())
	if run.RemoteURL() != "" {
		r.writePlain("Spotify:    %s\n", run.RemoteURL())
	}
	if run.ReportDir() != "" {
		r.writePlain("Report:     %s\n", run.ReportDir())
	}

	r.writePlain("\n")
	for _, e := range tracks {
		r.writePlain("%d. %s - %s [%s]\n", e.Position, e.Track.ArtistName, e.Track.Title, shared.FormatDuration(e.Track.DurationMS))
	}
	return nil
}

// HistoryDelete removes a run from history. Playlists on Spotify are left alone.
func (r *Runner) HistoryDelete(ctx context.Context, cmd *cli.Command) error {
	db, done, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer done()

	repo := repositories.NewRunRepository(db)
	run, err := findRun(repo, cmd.StringArg("run"))
	if err != nil {
		return err
	}
	if err := repo.Delete(run.ID()); err != nil {
		return err
	}

	r.writePlain("✓ Deleted #%d %s\n", run.Sequence(), run.Name())
	return nil
}

// findRun accepts a sequence number or an ID.
func findRun(repo *repositories.RunRepository, ref string) (*models.PlaylistRun, error) {
	ref = strings.TrimSpace(strings.TrimPrefix(ref, "#"))
	if ref == "" {
		return nil, fmt.Errorf("%w: run number or ID", shared.ErrMissingArgument)
	}
	if seq, err := strconv.Atoi(ref); err == nil {
		return repo.GetBySequence(seq)
	}
	return repo.Get(ref)
}
