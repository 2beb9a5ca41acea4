// Package models defines domain entities and persistence interfaces for festlist.
//
// The package contains two categories of types:
//
// 1. Catalog values: plain structs passed between the pipeline stages
//   - [Artist] : a performer resolved against the catalog
//   - [Track] : a song with popularity and audio features
//   - [Selection] : one selected artist with its fetched tracks, the assembler's input
//   - [PlaylistEntry], [PlaylistSummary], [ArtistStats] : the assembler's output
//
// 2. Persistent entities: database-backed models
//   - [PlaylistRun] : a generated playlist and its totals
//
// Persistent entities implement the Model interface; the Repository[T] interface defines standard CRUD operations.
package models

import "strings"

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
