package wizard

import (
	"errors"
	"reflect"
	"testing"

	"github.com/desertthunder/festlist/internal/models"
	"github.com/desertthunder/festlist/internal/shared"
)

var candidates = []models.Artist{
	{Name: "Alpha", CatalogID: "a"},
	{Name: "Bravo", CatalogID: "b"},
	{Name: "Charlie", CatalogID: "c"},
}

func atSelection(t *testing.T) *Wizard {
	t.Helper()
	w := New()
	if err := w.SubmitLineup(LineupData{URL: "https://www.songkick.com/festivals/1/id/2-edc-orlando-2023"}); err != nil {
		t.Fatalf("SubmitLineup failed: %v", err)
	}
	if err := w.SetCandidates("", candidates); err != nil {
		t.Fatalf("SetCandidates failed: %v", err)
	}
	return w
}

func atConfirmation(t *testing.T) *Wizard {
	t.Helper()
	w := atSelection(t)
	if err := w.SubmitSelection(SelectionData{Chosen: []string{"Charlie", "Alpha"}, Added: []string{"Delta"}}); err != nil {
		t.Fatalf("SubmitSelection failed: %v", err)
	}
	return w
}

func names(artists []models.Artist) []string {
	var out []string
	for _, a := range artists {
		out = append(out, a.Name)
	}
	return out
}

func TestWizard(t *testing.T) {
	t.Run("full flow produces a plan", func(t *testing.T) {
		w := atConfirmation(t)
		err := w.Confirm(ConfirmationData{TracksPerArtist: 5, ScaleByPopularity: true, Public: true})
		if err != nil {
			t.Fatalf("Confirm failed: %v", err)
		}
		if w.State() != Done {
			t.Fatalf("state = %s, want done", w.State())
		}

		plan, err := w.Result()
		if err != nil {
			t.Fatalf("Result failed: %v", err)
		}
		if plan.Name != "Edc Orlando 2023 Playlist" {
			t.Errorf("default name = %q", plan.Name)
		}
		// lineup order for chosen artists, then added
		if got, want := names(plan.Artists), []string{"Alpha", "Charlie", "Delta"}; !reflect.DeepEqual(got, want) {
			t.Errorf("artists = %v, want %v", got, want)
		}
		if got := plan.Unresolved(); !reflect.DeepEqual(got, []string{"Delta"}) {
			t.Errorf("unresolved = %v, want [Delta]", got)
		}
		if plan.TracksPerArtist != 5 || !plan.ScaleByPopularity || plan.IncludeRemixes || !plan.Public {
			t.Errorf("unexpected options %+v", plan)
		}
	})

	t.Run("SubmitLineup", func(t *testing.T) {
		tests := []struct {
			name    string
			data    LineupData
			wantErr error
		}{
			{"empty", LineupData{}, shared.ErrMissingArgument},
			{"both", LineupData{URL: "https://example.com", Names: "A"}, shared.ErrInvalidInput},
			{"not a link", LineupData{URL: "songkick festival"}, shared.ErrInvalidInput},
			{"no scheme", LineupData{URL: "ftp://example.com/x"}, shared.ErrInvalidInput},
			{"blank names", LineupData{Names: " , \n ,"}, shared.ErrInvalidInput},
			{"manual names", LineupData{Names: "Alpha\nBravo"}, nil},
			{"link", LineupData{URL: " https://www.songkick.com/festivals/1 "}, nil},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				w := New()
				err := w.SubmitLineup(tt.data)
				if tt.wantErr != nil {
					if !errors.Is(err, tt.wantErr) {
						t.Errorf("expected %v, got %v", tt.wantErr, err)
					}
					if w.State() != LineupInput {
						t.Errorf("state changed to %s on error", w.State())
					}
					return
				}
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if w.State() != ArtistSelection {
					t.Errorf("state = %s, want artist_selection", w.State())
				}
			})
		}

		t.Run("manual lineup uses the generic festival name", func(t *testing.T) {
			w := New()
			if err := w.SubmitLineup(LineupData{Names: "Alpha"}); err != nil {
				t.Fatal(err)
			}
			if !w.Lineup().Manual() {
				t.Error("expected manual lineup")
			}
			if w.DefaultName() != "Your Music Festival Playlist" {
				t.Errorf("DefaultName = %q", w.DefaultName())
			}
		})
	})

	t.Run("SetCandidates overrides the festival name", func(t *testing.T) {
		w := atSelection(t)
		if err := w.SetCandidates("Lollapalooza", candidates); err != nil {
			t.Fatal(err)
		}
		if w.Festival() != "Lollapalooza" {
			t.Errorf("festival = %q", w.Festival())
		}
	})

	t.Run("SubmitSelection requires an artist", func(t *testing.T) {
		w := atSelection(t)
		err := w.SubmitSelection(SelectionData{Chosen: []string{"Nobody"}, Added: []string{"  "}})
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
		if w.State() != ArtistSelection {
			t.Errorf("state = %s", w.State())
		}
	})

	t.Run("SubmitSelection accepts only added artists", func(t *testing.T) {
		w := atSelection(t)
		if err := w.SubmitSelection(SelectionData{Added: []string{"Echo", "echo"}}); err != nil {
			t.Fatal(err)
		}
		if got := names(w.Selected()); !reflect.DeepEqual(got, []string{"Echo"}) {
			t.Errorf("selected = %v", got)
		}
	})

	t.Run("Confirm validates tracks per artist", func(t *testing.T) {
		for _, n := range []int{0, 11} {
			w := atConfirmation(t)
			if err := w.Confirm(ConfirmationData{Name: "Mine", TracksPerArtist: n}); !errors.Is(err, shared.ErrInvalidArgument) {
				t.Errorf("tracks %d: expected ErrInvalidArgument, got %v", n, err)
			}
			if w.State() != Confirmation {
				t.Errorf("state = %s", w.State())
			}
		}
	})

	t.Run("Confirm keeps a given name", func(t *testing.T) {
		w := atConfirmation(t)
		if err := w.Confirm(ConfirmationData{Name: "  My Mix ", TracksPerArtist: 10}); err != nil {
			t.Fatal(err)
		}
		plan, _ := w.Result()
		if plan.Name != "My Mix" {
			t.Errorf("name = %q", plan.Name)
		}
	})

	t.Run("Back", func(t *testing.T) {
		w := atConfirmation(t)

		if err := w.Back(); err != nil || w.State() != ArtistSelection {
			t.Fatalf("back to selection: %v %s", err, w.State())
		}
		if w.Selected() != nil {
			t.Error("selection should be cleared")
		}
		if err := w.Back(); err != nil || w.State() != LineupInput {
			t.Fatalf("back to lineup: %v %s", err, w.State())
		}
		if w.Candidates() != nil {
			t.Error("candidates should be cleared")
		}
		if err := w.Back(); !errors.Is(err, shared.ErrInvalidTransition) {
			t.Errorf("expected ErrInvalidTransition, got %v", err)
		}
	})

	t.Run("invalid transitions", func(t *testing.T) {
		w := New()
		checks := map[string]error{
			"SetCandidates":   w.SetCandidates("x", nil),
			"SubmitSelection": w.SubmitSelection(SelectionData{Added: []string{"A"}}),
			"Confirm":         w.Confirm(ConfirmationData{TracksPerArtist: 1}),
		}
		for op, err := range checks {
			if !errors.Is(err, shared.ErrInvalidTransition) {
				t.Errorf("%s: expected ErrInvalidTransition, got %v", op, err)
			}
		}
		if _, err := w.Result(); !errors.Is(err, shared.ErrInvalidTransition) {
			t.Errorf("Result: expected ErrInvalidTransition, got %v", err)
		}

		done := atConfirmation(t)
		_ = done.Confirm(ConfirmationData{TracksPerArtist: 1})
		if err := done.Back(); !errors.Is(err, shared.ErrInvalidTransition) {
			t.Errorf("Back from done: expected ErrInvalidTransition, got %v", err)
		}
		if err := done.SubmitLineup(LineupData{Names: "A"}); !errors.Is(err, shared.ErrInvalidTransition) {
			t.Errorf("SubmitLineup from done: expected ErrInvalidTransition, got %v", err)
		}
	})

	t.Run("State.String", func(t *testing.T) {
		if Done.String() != "done" || State(42).String() != "" {
			t.Error("unexpected state names")
		}
	})
}
