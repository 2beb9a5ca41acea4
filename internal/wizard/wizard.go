// package wizard models the interactive playlist flow as a state machine.
//
// The flow is LineupInput -> ArtistSelection -> Confirmation -> Done. Each step
// takes a plain data value, so any front end (the TUI, tests) can drive it.
// Catalog lookups happen outside: after [Wizard.SubmitLineup] the caller
// resolves the lineup and hands the artists back with [Wizard.SetCandidates].
package wizard

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/desertthunder/festlist/internal/lineup"
	"github.com/desertthunder/festlist/internal/models"
	"github.com/desertthunder/festlist/internal/playlist"
	"github.com/desertthunder/festlist/internal/shared"
	"github.com/desertthunder/festlist/internal/tasks"
)

// State is a screen in the flow.
type State int

const (
	LineupInput State = iota
	ArtistSelection
	Confirmation
	Done
)

func (s State) String() string {
	switch s {
	case LineupInput:
		return "lineup_input"
	case ArtistSelection:
		return "artist_selection"
	case Confirmation:
		return "confirmation"
	case Done:
		return "done"
	default:
		return ""
	}
}

// LineupData is submitted from the first screen. Exactly one field is set.
type LineupData struct {
	URL   string
	Names string // newline or comma separated
}

// Manual reports whether the lineup was typed in rather than scraped.
func (d LineupData) Manual() bool {
	return d.URL == ""
}

// SelectionData is submitted from the artist selection screen.
type SelectionData struct {
	Chosen []string // names picked from the candidates
	Added  []string // names typed in by hand
}

// ConfirmationData is submitted from the last screen.
type ConfirmationData struct {
	Name              string
	TracksPerArtist   int
	ScaleByPopularity bool
	IncludeRemixes    bool
	Public            bool
}

// Plan is everything the pipeline needs to build the playlist.
type Plan struct {
	Festival          string
	Artists           []models.Artist
	Name              string
	TracksPerArtist   int
	ScaleByPopularity bool
	IncludeRemixes    bool
	Public            bool
}

// Unresolved returns the names of planned artists without a catalog ID, typically those added by hand.
func (p Plan) Unresolved() []string {
	var names []string
	for _, a := range p.Artists {
		if !a.Resolved() {
			names = append(names, a.Name)
		}
	}
	return names
}

// Wizard holds the flow's state. The zero value is not usable; call [New].
type Wizard struct {
	state      State
	lineup     LineupData
	festival   string
	candidates []models.Artist
	selected   []models.Artist
	plan       *Plan
}

// New returns a wizard on the lineup screen.
func New() *Wizard {
	return &Wizard{state: LineupInput}
}

func (w *Wizard) State() State                { return w.state }
func (w *Wizard) Lineup() LineupData          { return w.lineup }
func (w *Wizard) Festival() string            { return w.festival }
func (w *Wizard) Candidates() []models.Artist { return w.candidates }
func (w *Wizard) Selected() []models.Artist   { return w.selected }
func (w *Wizard) DefaultName() string         { return shared.TitleCase(w.festival) + " Playlist" }

func (w *Wizard) expect(s State, op string) error {
	if w.state != s {
		return fmt.Errorf("%w: %s from %s", shared.ErrInvalidTransition, op, w.state)
	}
	return nil
}

// SubmitLineup records the lineup source and moves to artist selection.
func (w *Wizard) SubmitLineup(d LineupData) error {
	if err := w.expect(LineupInput, "submit lineup"); err != nil {
		return err
	}

	d.URL = strings.TrimSpace(d.URL)
	d.Names = strings.TrimSpace(d.Names)
	switch {
	case d.URL == "" && d.Names == "":
		return fmt.Errorf("%w: enter a festival link or artist names", shared.ErrMissingArgument)
	case d.URL != "" && d.Names != "":
		return fmt.Errorf("%w: enter a festival link or artist names, not both", shared.ErrInvalidInput)
	case d.URL != "":
		u, err := url.Parse(d.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: %q is not a web link", shared.ErrInvalidInput, d.URL)
		}
		w.festival = lineup.FestivalName(d.URL)
	default:
		if len(lineup.ParseNames(d.Names)) == 0 {
			return fmt.Errorf("%w: no artist names found", shared.ErrInvalidInput)
		}
		w.festival = lineup.DefaultFestivalName
	}

	w.lineup = d
	w.state = ArtistSelection
	return nil
}

// SetCandidates provides the resolved lineup for the selection screen.
//
// An empty festival keeps the name derived from the lineup.
func (w *Wizard) SetCandidates(festival string, artists []models.Artist) error {
	if err := w.expect(ArtistSelection, "set candidates"); err != nil {
		return err
	}
	if festival != "" {
		w.festival = festival
	}
	w.candidates = artists
	return nil
}

// SubmitSelection merges the chosen and added artists and moves to confirmation.
func (w *Wizard) SubmitSelection(d SelectionData) error {
	if err := w.expect(ArtistSelection, "submit selection"); err != nil {
		return err
	}

	added := make([]models.Artist, 0, len(d.Added))
	for _, name := range d.Added {
		if name = strings.TrimSpace(name); name != "" {
			added = append(added, models.Artist{Name: name})
		}
	}

	selected := playlist.MergeArtists(w.candidates, d.Chosen, added)
	if len(selected) == 0 {
		return fmt.Errorf("%w: select or add at least one artist", shared.ErrMissingArgument)
	}

	w.selected = selected
	w.state = Confirmation
	return nil
}

// Confirm validates the playlist options and finishes the flow.
func (w *Wizard) Confirm(d ConfirmationData) error {
	if err := w.expect(Confirmation, "confirm"); err != nil {
		return err
	}

	name := strings.TrimSpace(d.Name)
	if name == "" {
		name = w.DefaultName()
	}
	if d.TracksPerArtist < 1 || d.TracksPerArtist > tasks.MaxTracksPerArtist {
		return fmt.Errorf("%w: tracks per artist must be between 1 and %d", shared.ErrInvalidArgument, tasks.MaxTracksPerArtist)
	}

	w.plan = &Plan{
		Festival:          w.festival,
		Artists:           w.selected,
		Name:              name,
		TracksPerArtist:   d.TracksPerArtist,
		ScaleByPopularity: d.ScaleByPopularity,
		IncludeRemixes:    d.IncludeRemixes,
		Public:            d.Public,
	}
	w.state = Done
	return nil
}

// Back returns to the previous screen. Going back from selection discards the candidates.
func (w *Wizard) Back() error {
	switch w.state {
	case ArtistSelection:
		w.candidates = nil
		w.state = LineupInput
	case Confirmation:
		w.selected = nil
		w.state = ArtistSelection
	default:
		return fmt.Errorf("%w: back from %s", shared.ErrInvalidTransition, w.state)
	}
	return nil
}

// Result returns the finished plan.
func (w *Wizard) Result() (*Plan, error) {
	if err := w.expect(Done, "result"); err != nil {
		return nil, err
	}
	return w.plan, nil
}
