package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/festlist/internal/models"
)

var (
	_ list.Item         = artistItem{}
	_ list.ItemDelegate = artistDelegate{}
)

// artistItem wraps a resolved lineup artist with its checkbox state.
type artistItem struct {
	artist models.Artist
	chosen bool
}

func (i artistItem) FilterValue() string { return i.artist.Name }
func (i artistItem) Title() string       { return i.artist.Name }
func (i artistItem) Description() string {
	if len(i.artist.Genres) == 0 {
		return fmt.Sprintf("popularity %d", i.artist.Popularity)
	}
	return fmt.Sprintf("popularity %d • %s", i.artist.Popularity, strings.Join(i.artist.Genres, ", "))
}

// artistDelegate renders one checkbox row per artist.
type artistDelegate struct{}

func (d artistDelegate) Height() int                             { return 1 }
func (d artistDelegate) Spacing() int                            { return 0 }
func (d artistDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d artistDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	a, ok := item.(artistItem)
	if !ok {
		return
	}

	box := "[ ]"
	if a.chosen {
		box = "[x]"
	}
	line := fmt.Sprintf("%s %s", box, a.Title())

	if index == m.Index() {
		fmt.Fprint(w, styles.selected.Render("> "+line)+"  "+styles.dim.Render(a.Description()))
		return
	}
	fmt.Fprint(w, "  "+line)
}

func newArtistList(artists []models.Artist) list.Model {
	items := make([]list.Item, len(artists))
	for i, a := range artists {
		items[i] = artistItem{artist: a}
	}

	l := list.New(items, artistDelegate{}, 0, 0)
	l.Title = "Select artists"
	l.Styles.Title = styles.title
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.KeyMap.Quit.SetEnabled(false)
	return l
}

// chosenNames returns the names of checked rows in list order.
func chosenNames(l list.Model) []string {
	var names []string
	for _, item := range l.Items() {
		if a, ok := item.(artistItem); ok && a.chosen {
			names = append(names, a.artist.Name)
		}
	}
	return names
}
