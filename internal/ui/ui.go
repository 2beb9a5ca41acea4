package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/festlist/internal/lineup"
	"github.com/desertthunder/festlist/internal/models"
	"github.com/desertthunder/festlist/internal/shared"
	"github.com/desertthunder/festlist/internal/tasks"
	"github.com/desertthunder/festlist/internal/wizard"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	LineupView ViewState = iota
	ResolvingView
	SelectionView
	ConfirmView
	BuildingView
	ResultView
)

// Outcome is what the pipeline reports back once a playlist is built.
type Outcome struct {
	Result    *tasks.BuildResult
	ReportDir string
}

// Pipeline is the work the TUI hands off between screens.
type Pipeline interface {
	FetchLineup(ctx context.Context, url string) (*models.Lineup, error)
	Resolve(ctx context.Context, names []string, progress chan<- tasks.ProgressUpdate) (*tasks.ResolveResult, error)
	Build(ctx context.Context, plan *wizard.Plan, progress chan<- tasks.ProgressUpdate) (*Outcome, error)
}

// ModelOpts configures [NewModel].
type ModelOpts struct {
	Pipeline        Pipeline
	TracksPerArtist int  // form default
	Public          bool // form default
	Logger          *log.Logger
}

type buildRun struct {
	progress chan tasks.ProgressUpdate
	done     chan buildComplete
}

// Model represents the TUI application state.
type Model struct {
	ctx             context.Context
	pipeline        Pipeline
	logger          *log.Logger
	tracksPerArtist int
	public          bool

	view       ViewState
	wizard     *wizard.Wizard
	width      int
	height     int
	input      textinput.Model
	artists    list.Model
	listReady  bool
	unresolved []string
	added      []string
	adding     bool
	addInput   textinput.Model
	form       *confirmForm
	spinner    spinner.Model
	run        *buildRun
	progress   tasks.ProgressUpdate
	outcome    *Outcome
	err        error
	help       help.Model
	keys       keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, opts ModelOpts) *Model {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.TracksPerArtist <= 0 || opts.TracksPerArtist > tasks.MaxTracksPerArtist {
		opts.TracksPerArtist = tasks.MaxTracksPerArtist
	}

	input := textinput.New()
	input.Placeholder = "https://www.songkick.com/festivals/... or Artist One, Artist Two"
	input.Width = 72
	input.Focus()

	addInput := textinput.New()
	addInput.Placeholder = "Artist name"
	addInput.Width = 40

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.selected

	return &Model{
		ctx:             ctx,
		pipeline:        opts.Pipeline,
		logger:          opts.Logger,
		tracksPerArtist: opts.TracksPerArtist,
		public:          opts.Public,
		view:            LineupView,
		wizard:          wizard.New(),
		input:           input,
		addInput:        addInput,
		spinner:         sp,
		help:            help.New(),
		keys:            newKeyMap(),
	}
}

// Init starts the cursor blinking on the lineup input.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.listReady {
			m.artists.SetSize(msg.Width-4, msg.Height-12)
		}
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.quit) {
			return m, tea.Quit
		}
		switch m.view {
		case LineupView:
			return m.handleLineupKeys(msg)
		case SelectionView:
			return m.handleSelectionKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}
		return m, nil

	case spinner.TickMsg:
		if m.view != ResolvingView && m.view != BuildingView {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		return m.handleMsg(msg)
	}

	return m, nil
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgLineupResolved:
		data := msg.data.(lineupResolved)
		if data.err != nil {
			m.logger.Error("lineup failed", "error", data.err)
			m.err = data.err
			m.wizard.Back()
			m.view = LineupView
			return m, m.input.Focus()
		}

		festival := ""
		if !m.wizard.Lineup().Manual() {
			festival = data.lineup.Festival
		}
		if err := m.wizard.SetCandidates(festival, data.result.Resolved); err != nil {
			m.err = err
			return m, nil
		}

		m.logger.Info("lineup resolved", "festival", m.wizard.Festival(), "resolved", len(data.result.Resolved), "unresolved", len(data.result.Unresolved))
		m.artists = newArtistList(data.result.Resolved)
		m.listReady = true
		m.artists.Title = fmt.Sprintf("Select artists from %s", shared.TitleCase(m.wizard.Festival()))
		if m.width > 0 {
			m.artists.SetSize(m.width-4, m.height-12)
		}
		m.unresolved = data.result.Unresolved
		m.added = nil
		m.err = nil
		m.view = SelectionView
		return m, nil

	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		return m, waitForBuild(m.run)

	case MsgBuildComplete:
		data := msg.data.(buildComplete)
		m.outcome = data.outcome
		m.err = data.err
		m.run = nil
		m.view = ResultView
		if data.err != nil {
			m.logger.Error("build failed", "error", data.err)
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) handleLineupKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		data := lineupData(m.input.Value())
		if err := m.wizard.SubmitLineup(data); err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		m.input.Blur()
		m.view = ResolvingView
		return m, tea.Batch(m.spinner.Tick, m.resolve(m.wizard.Lineup()))
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleSelectionKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.adding {
		switch {
		case key.Matches(msg, m.keys.enter):
			if name := strings.TrimSpace(m.addInput.Value()); name != "" {
				m.added = append(m.added, name)
			}
			m.addInput.Reset()
			m.addInput.Blur()
			m.adding = false
			return m, nil
		case key.Matches(msg, m.keys.back):
			m.addInput.Reset()
			m.addInput.Blur()
			m.adding = false
			return m, nil
		}
		var cmd tea.Cmd
		m.addInput, cmd = m.addInput.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.toggle):
		return m, m.toggleCurrent()
	case key.Matches(msg, m.keys.all):
		return m, m.toggleAll()
	case key.Matches(msg, m.keys.add):
		m.adding = true
		return m, m.addInput.Focus()
	case key.Matches(msg, m.keys.enter):
		err := m.wizard.SubmitSelection(wizard.SelectionData{Chosen: chosenNames(m.artists), Added: m.added})
		if err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		m.form = newConfirmForm(m.wizard.DefaultName(), m.tracksPerArtist, m.public)
		m.view = ConfirmView
		return m, m.form.setFocus(nameField)
	case key.Matches(msg, m.keys.back):
		m.wizard.Back()
		m.unresolved = nil
		m.added = nil
		m.err = nil
		m.view = LineupView
		return m, m.input.Focus()
	case msg.String() == "q":
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.artists, cmd = m.artists.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.next), msg.String() == "down":
		return m, m.form.next()
	case key.Matches(msg, m.keys.prev), msg.String() == "up":
		return m, m.form.prev()
	case key.Matches(msg, m.keys.toggle):
		if m.form.toggle() {
			return m, nil
		}
	case key.Matches(msg, m.keys.back):
		m.wizard.Back()
		m.err = nil
		m.view = SelectionView
		return m, nil
	case key.Matches(msg, m.keys.enter):
		data, err := m.form.data()
		if err == nil {
			err = m.wizard.Confirm(data)
		}
		if err != nil {
			m.err = err
			return m, nil
		}

		plan, err := m.wizard.Result()
		if err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		m.view = BuildingView
		m.progress = tasks.ProgressUpdate{Message: "Starting..."}
		m.logger.Info("building playlist", "name", plan.Name, "artists", len(plan.Artists))
		return m, tea.Batch(m.spinner.Tick, m.startBuild(plan))
	}

	return m, m.form.update(msg)
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.restart):
		m.reset()
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.back), msg.String() == "q":
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) reset() {
	m.wizard = wizard.New()
	m.view = LineupView
	m.input.Reset()
	m.artists = list.Model{}
	m.listReady = false
	m.unresolved = nil
	m.added = nil
	m.form = nil
	m.outcome = nil
	m.progress = tasks.ProgressUpdate{}
	m.err = nil
}

func (m *Model) toggleCurrent() tea.Cmd {
	item, ok := m.artists.SelectedItem().(artistItem)
	if !ok {
		return nil
	}
	item.chosen = !item.chosen
	return m.artists.SetItem(m.artists.Index(), item)
}

// toggleAll checks every row, or clears them when all are already checked.
func (m *Model) toggleAll() tea.Cmd {
	items := m.artists.Items()
	all := true
	for _, it := range items {
		if a, ok := it.(artistItem); ok && !a.chosen {
			all = false
			break
		}
	}

	updated := make([]list.Item, len(items))
	for i, it := range items {
		a := it.(artistItem)
		a.chosen = !all
		updated[i] = a
	}
	return m.artists.SetItems(updated)
}

// lineupData treats input containing a scheme as a link and anything else as names.
func lineupData(input string) wizard.LineupData {
	input = strings.TrimSpace(input)
	if strings.Contains(input, "://") {
		return wizard.LineupData{URL: input}
	}
	return wizard.LineupData{Names: input}
}

func (m *Model) resolve(data wizard.LineupData) tea.Cmd {
	ctx, p := m.ctx, m.pipeline
	return func() tea.Msg {
		var lu *models.Lineup
		if data.Manual() {
			lu = lineup.Manual("", data.Names)
		} else {
			var err error
			if lu, err = p.FetchLineup(ctx, data.URL); err != nil {
				return lineupResolvedMsg(nil, nil, err)
			}
		}

		result, err := p.Resolve(ctx, lu.Artists, nil)
		return lineupResolvedMsg(lu, result, err)
	}
}

func (m *Model) startBuild(plan *wizard.Plan) tea.Cmd {
	run := &buildRun{
		progress: make(chan tasks.ProgressUpdate, 50),
		done:     make(chan buildComplete, 1),
	}
	m.run = run

	ctx, p := m.ctx, m.pipeline
	go func() {
		outcome, err := p.Build(ctx, plan, run.progress)
		run.done <- buildComplete{outcome, err}
	}()

	return waitForBuild(run)
}

func waitForBuild(run *buildRun) tea.Cmd {
	if run == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case update := <-run.progress:
			return progressUpdateMsg(update)
		case done := <-run.done:
			return Msg{kind: MsgBuildComplete, data: done}
		}
	}
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	var body string
	switch m.view {
	case LineupView:
		body = m.renderLineup()
	case ResolvingView:
		body = fmt.Sprintf("%s Looking up the lineup on Spotify...", m.spinner.View())
	case SelectionView:
		body = m.renderSelection()
	case ConfirmView:
		body = m.renderConfirm()
	case BuildingView:
		body = m.renderBuilding()
	case ResultView:
		body = m.renderResult()
	}

	if m.err != nil && m.view != ResultView {
		body += "\n\n" + styles.err.Render(fmt.Sprintf("Error: %v", m.err))
	}
	return body + "\n"
}

func (m *Model) renderLineup() string {
	title := styles.title.Render("festlist")
	prompt := "Paste a Songkick festival link, or type artist names separated by commas:"
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.quit})
	return fmt.Sprintf("%s\n%s\n\n%s\n\n%s", title, prompt, m.input.View(), helpView)
}

func (m *Model) renderSelection() string {
	var b strings.Builder
	if len(m.artists.Items()) > 0 {
		b.WriteString(m.artists.View())
	} else {
		b.WriteString(styles.title.Render("No lineup artists found on Spotify"))
	}
	b.WriteString("\n")

	b.WriteString(fmt.Sprintf("\n%d selected", len(chosenNames(m.artists))))
	if len(m.added) > 0 {
		b.WriteString(fmt.Sprintf(" + added: %s", strings.Join(m.added, ", ")))
	}
	if len(m.unresolved) > 0 {
		b.WriteString("\n" + styles.warn.Render(fmt.Sprintf("Not found on Spotify: %s", strings.Join(m.unresolved, ", "))))
	}
	if m.adding {
		b.WriteString("\n\nAdd artist: " + m.addInput.View())
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.toggle, m.keys.all, m.keys.add, m.keys.enter, m.keys.back})
	b.WriteString("\n\n" + helpView)
	return b.String()
}

func (m *Model) renderConfirm() string {
	selected := m.wizard.Selected()
	title := styles.title.Render("Playlist options")
	info := fmt.Sprintf("%d artists selected", len(selected))

	var pending []string
	for _, a := range selected {
		if !a.Resolved() {
			pending = append(pending, a.Name)
		}
	}
	if len(pending) > 0 {
		info += styles.dim.Render(fmt.Sprintf(" (will look up %s)", strings.Join(pending, ", ")))
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.next, m.keys.toggle, m.keys.enter, m.keys.back})
	return fmt.Sprintf("%s\n%s\n\n%s\n%s", title, info, m.form.view(), helpView)
}

func (m *Model) renderBuilding() string {
	title := styles.title.Render("Building playlist")

	var phase string
	switch m.progress.Phase {
	case tasks.ResolveArtists:
		phase = "Looking up added artists"
	case tasks.FetchTracks:
		phase = "Fetching top tracks"
	case tasks.AssemblePlaylist, tasks.ModifyPlaylist:
		phase = "Assembling"
	case tasks.CreatePlaylist:
		phase = "Creating playlist on Spotify"
	case tasks.RecommendArtists:
		phase = "Finding related artists"
	case tasks.Complete:
		phase = "Writing report"
	}
	if m.progress.Total > 0 {
		phase = fmt.Sprintf("%s (%d/%d)", phase, m.progress.Step, m.progress.Total)
	}

	return fmt.Sprintf("%s\n%s %s\n%s", title, m.spinner.View(), phase, styles.dim.Render(m.progress.Message))
}

func (m *Model) renderResult() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.restart, m.keys.quit})

	if m.err != nil {
		return fmt.Sprintf("%s\n\n%s", styles.err.Render(fmt.Sprintf("Build failed: %v", m.err)), helpView)
	}
	if m.outcome == nil || m.outcome.Result == nil || m.outcome.Result.Playlist == nil {
		return fmt.Sprintf("%s\n\n%s", styles.err.Render("No result available"), helpView)
	}

	res := m.outcome.Result
	summary := res.Playlist.Summary

	var b strings.Builder
	b.WriteString(styles.ok.Render(fmt.Sprintf("✓ %s", res.Name)) + "\n\n")
	b.WriteString(fmt.Sprintf("Tracks: %d (%s)\n", summary.TrackCount, shared.FormatDuration(summary.DurationMS)))
	if summary.DuplicatesRemoved > 0 {
		b.WriteString(fmt.Sprintf("Duplicates removed: %d\n", summary.DuplicatesRemoved))
	}
	if n := len(res.VersionsRemoved); n > 0 {
		b.WriteString(fmt.Sprintf("Remixes and edits removed: %d\n", n))
	}
	if n := len(res.ScaledOut); n > 0 {
		b.WriteString(fmt.Sprintf("Removed by popularity scaling: %d\n", n))
	}
	if res.Remote != nil {
		b.WriteString(fmt.Sprintf("Spotify: %s\n", res.Remote.URL))
	}
	if len(res.Recommendations) > 0 {
		var names []string
		for _, a := range res.Recommendations {
			names = append(names, a.Name)
		}
		b.WriteString(fmt.Sprintf("You might also like: %s\n", strings.Join(names, ", ")))
	}
	if m.outcome.ReportDir != "" {
		b.WriteString(fmt.Sprintf("Report: %s\n", m.outcome.ReportDir))
	}

	return b.String() + "\n" + helpView
}
