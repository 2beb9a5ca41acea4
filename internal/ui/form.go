package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/festlist/internal/shared"
	"github.com/desertthunder/festlist/internal/tasks"
	"github.com/desertthunder/festlist/internal/wizard"
)

type field int

const (
	nameField field = iota
	tracksField
	scaleField
	remixField
	publicField
	fieldCount
)

// confirmForm collects the playlist options on the confirmation screen.
type confirmForm struct {
	name    textinput.Model
	tracks  textinput.Model
	scale   bool
	remixes bool
	public  bool
	focus   field
}

func newConfirmForm(defaultName string, tracksPerArtist int, public bool) *confirmForm {
	name := textinput.New()
	name.Placeholder = defaultName
	name.CharLimit = 100
	name.Width = 40
	name.Prompt = ""

	tracks := textinput.New()
	tracks.SetValue(strconv.Itoa(tracksPerArtist))
	tracks.CharLimit = 2
	tracks.Width = 4
	tracks.Prompt = ""

	f := &confirmForm{name: name, tracks: tracks, public: public}
	f.setFocus(nameField)
	return f
}

func (f *confirmForm) setFocus(i field) tea.Cmd {
	f.focus = (i + fieldCount) % fieldCount
	f.name.Blur()
	f.tracks.Blur()
	switch f.focus {
	case nameField:
		return f.name.Focus()
	case tracksField:
		return f.tracks.Focus()
	}
	return nil
}

func (f *confirmForm) next() tea.Cmd { return f.setFocus(f.focus + 1) }
func (f *confirmForm) prev() tea.Cmd { return f.setFocus(f.focus - 1) }

// toggle flips the focused checkbox. It reports false when a text field has focus.
func (f *confirmForm) toggle() bool {
	switch f.focus {
	case scaleField:
		f.scale = !f.scale
	case remixField:
		f.remixes = !f.remixes
	case publicField:
		f.public = !f.public
	default:
		return false
	}
	return true
}

func (f *confirmForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch f.focus {
	case nameField:
		f.name, cmd = f.name.Update(msg)
	case tracksField:
		f.tracks, cmd = f.tracks.Update(msg)
	}
	return cmd
}

// data converts the form into wizard input. The wizard enforces the track range.
func (f *confirmForm) data() (wizard.ConfirmationData, error) {
	n, err := strconv.Atoi(strings.TrimSpace(f.tracks.Value()))
	if err != nil {
		return wizard.ConfirmationData{}, fmt.Errorf("%w: tracks per artist must be a number from 1 to %d", shared.ErrInvalidArgument, tasks.MaxTracksPerArtist)
	}
	return wizard.ConfirmationData{
		Name:              f.name.Value(),
		TracksPerArtist:   n,
		ScaleByPopularity: f.scale,
		IncludeRemixes:    f.remixes,
		Public:            f.public,
	}, nil
}

func (f *confirmForm) view() string {
	var b strings.Builder
	row := func(i field, label, value string) {
		cursor := "  "
		if f.focus == i {
			cursor = styles.selected.Render("> ")
		}
		b.WriteString(cursor + styles.label.Render(label) + value + "\n")
	}
	check := func(v bool) string {
		if v {
			return "[x]"
		}
		return "[ ]"
	}

	row(nameField, "Playlist name", f.name.View())
	row(tracksField, "Tracks per artist", f.tracks.View())
	row(scaleField, "Scale by popularity", check(f.scale))
	row(remixField, "Include remixes", check(f.remixes))
	row(publicField, "Public playlist", check(f.public))
	return b.String()
}
