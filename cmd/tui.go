package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/festlist/internal/models"
	"github.com/desertthunder/festlist/internal/shared"
	"github.com/desertthunder/festlist/internal/tasks"
	"github.com/desertthunder/festlist/internal/ui"
	"github.com/desertthunder/festlist/internal/wizard"
	"github.com/urfave/cli/v3"
)

const tuiLogPath = "./tmp/festlist-tui.log"

// TUI launches the interactive playlist wizard.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if r.catalog == nil {
		return fmt.Errorf("%w: add Spotify credentials to %s", shared.ErrMissingCredentials, r.configPath)
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(tuiLogPath)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	model := ui.NewModel(ctx, ui.ModelOpts{
		Pipeline:        &pipeline{r: r},
		TracksPerArtist: r.config.Playlist.TracksPerArtist,
		Public:          r.config.Playlist.Public,
		Logger:          fileLogger,
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}

// pipeline runs the wizard's steps with the runner's scraper, engine and history.
type pipeline struct {
	r *Runner
}

var _ ui.Pipeline = (*pipeline)(nil)

func (p *pipeline) FetchLineup(ctx context.Context, url string) (*models.Lineup, error) {
	return p.r.scraper.Fetch(ctx, url)
}

func (p *pipeline) Resolve(ctx context.Context, names []string, progress chan<- tasks.ProgressUpdate) (*tasks.ResolveResult, error) {
	return p.r.engine.ResolveArtists(ctx, names, progress)
}

// Build looks up artists typed in on the selection screen, then creates the
// playlist and its report.
func (p *pipeline) Build(ctx context.Context, plan *wizard.Plan, progress chan<- tasks.ProgressUpdate) (*ui.Outcome, error) {
	artists, err := p.resolvePlan(ctx, plan, progress)
	if err != nil {
		return nil, err
	}

	out, err := p.r.runBuild(ctx, buildRequest{
		Festival: plan.Festival,
		Report:   true,
		Opts: tasks.BuildOpts{
			Name:              plan.Name,
			Description:       p.r.config.Playlist.Description,
			Public:            plan.Public,
			Artists:           artists,
			TracksPerArtist:   plan.TracksPerArtist,
			IncludeRemixes:    plan.IncludeRemixes,
			ScaleByPopularity: plan.ScaleByPopularity,
			Create:            true,
			Recommendations:   tasks.DefaultRecommendations,
		},
	}, progress)
	if err != nil {
		return nil, err
	}

	outcome := &ui.Outcome{Result: out.Result}
	if out.Report != nil {
		outcome.ReportDir = out.Report.Directory
	}
	return outcome, nil
}

// resolvePlan keeps the plan's order, swapping each hand-added name for its
// catalog match. Names with no match and repeats are dropped.
func (p *pipeline) resolvePlan(ctx context.Context, plan *wizard.Plan, progress chan<- tasks.ProgressUpdate) ([]models.Artist, error) {
	seen := make(map[string]bool, len(plan.Artists))
	artists := make([]models.Artist, 0, len(plan.Artists))

	for _, a := range plan.Artists {
		if !a.Resolved() {
			res, err := p.r.engine.ResolveArtists(ctx, []string{a.Name}, progress)
			if err != nil {
				return nil, err
			}
			if len(res.Resolved) == 0 {
				p.r.logger.Warn("artist not found", "name", a.Name)
				continue
			}
			a = res.Resolved[0]
		}
		if seen[a.Key()] {
			continue
		}
		seen[a.Key()] = true
		artists = append(artists, a)
	}

	if len(artists) == 0 {
		return nil, fmt.Errorf("%w: none of the selected artists are on Spotify", shared.ErrArtistNotFound)
	}
	return artists, nil
}
