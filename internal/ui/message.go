package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/festlist/internal/models"
	"github.com/desertthunder/festlist/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgLineupResolved MsgKind = iota
	MsgProgressUpdate
	MsgBuildComplete
)

type lineupResolved struct {
	lineup *models.Lineup
	result *tasks.ResolveResult
	err    error
}

type buildComplete struct {
	outcome *Outcome
	err     error
}

// lineupResolvedMsg is the constructor for [MsgLineupResolved]
func lineupResolvedMsg(lineup *models.Lineup, result *tasks.ResolveResult, err error) Msg {
	return Msg{kind: MsgLineupResolved, data: lineupResolved{lineup, result, err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// buildCompleteMsg is the constructor for [MsgBuildComplete]
func buildCompleteMsg(outcome *Outcome, err error) Msg {
	return Msg{kind: MsgBuildComplete, data: buildComplete{outcome, err}}
}
