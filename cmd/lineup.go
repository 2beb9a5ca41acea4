package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/festlist/internal/models"
	"github.com/desertthunder/festlist/internal/shared"
	"github.com/desertthunder/festlist/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Lineup prints the festival name and artists scraped from a Songkick page.
func (r *Runner) Lineup(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("fetching lineup", "url", cmd.String("url"))

	lu, err := r.scraper.Fetch(ctx, cmd.String("url"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(lu, true)
	}

	r.writePlainHeader(shared.TitleCase(lu.Festival))
	r.writePlain("%d artists\n\n", len(lu.Artists))
	for _, name := range lu.Artists {
		r.writePlain("  %s\n", name)
	}
	return nil
}

// resolveOutput is the JSON shape of `artists resolve`.
type resolveOutput struct {
	Festival   string          `json:"festival,omitempty"`
	Resolved   []models.Artist `json:"resolved"`
	Unresolved []string        `json:"unresolved"`
}

// ArtistsResolve matches names, or every artist of a lineup page, against the catalog.
func (r *Runner) ArtistsResolve(ctx context.Context, cmd *cli.Command) error {
	names := cmd.Args().Slice()
	url := cmd.String("url")

	var festival string
	switch {
	case url != "" && len(names) > 0:
		return fmt.Errorf("%w: pass artist names or --url, not both", shared.ErrInvalidArgument)
	case url != "":
		lu, err := r.scraper.Fetch(ctx, url)
		if err != nil {
			return err
		}
		festival, names = lu.Festival, lu.Artists
	case len(names) == 0:
		return fmt.Errorf("%w: pass artist names or --url", shared.ErrMissingArgument)
	}

	var result *tasks.ResolveResult
	err := r.spin(ctx, fmt.Sprintf("Looking up %d artists...", len(names)), func(ctx context.Context) error {
		var err error
		result, err = r.engine.ResolveArtists(ctx, names, nil)
		return err
	})
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(resolveOutput{Festival: festival, Resolved: result.Resolved, Unresolved: result.Unresolved}, true)
	}

	r.writePlain("Resolved %d of %d artists:\n\n", len(result.Resolved), len(names))
	for i, a := range result.Resolved {
		r.writePlain("%d. %s\n", i+1, a.Name)
		r.writePlain("   ID: %s\n", a.CatalogID)
		r.writePlain("   Popularity: %d\n", a.Popularity)
		if len(a.Genres) > 0 {
			r.writePlain("   Genres: %s\n", strings.Join(a.Genres, ", "))
		}
	}
	if len(result.Unresolved) > 0 {
		r.writePlain("\n⚠ Not found: %s\n", strings.Join(result.Unresolved, ", "))
	}
	return nil
}
