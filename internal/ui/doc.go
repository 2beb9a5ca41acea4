// Package ui implements the interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI is a presentation layer over [wizard.Wizard]:
//  1. [LineupView] : Paste a festival link or type artist names
//  2. [ResolvingView] : Lineup is scraped and matched against the catalog
//  3. [SelectionView] : Check artists (space), add missing ones (a)
//  4. [ConfirmView] : Name, tracks per artist, popularity scaling, remixes, visibility
//  5. [BuildingView] : Live progress from the engine
//  6. [ResultView] : Playlist link, totals, recommendations and report location
//
// Catalog and filesystem work goes through the [Pipeline] interface, which the CLI implements.
// The build runs in one goroutine and reports over a buffered channel of [tasks.ProgressUpdate];
// the model reads one update per message so the view stays responsive.
package ui
