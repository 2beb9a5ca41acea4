// Package tasks runs the festival playlist pipeline with real-time progress reporting.
//
// # Core Operations
//
// [Engine] exposes four operations:
//
//  1. [Engine.ResolveArtists] : lineup names to catalog artists
//     - One search per name, best match only
//     - Names with no match are collected, not fatal
//
//  2. [Engine.FetchTracks] : top tracks for each selected artist
//     - Sequential, in selection order
//     - Capped at [MaxTracksPerArtist]
//
//  3. [Engine.Build] : fetch, assemble, modify and optionally create
//     - Assembly is delegated to the playlist package
//     - Remix collapsing and popularity scaling run on the assembled playlist
//     - Remote creation adds tracks in batches of 100
//
//  4. [Engine.Recommend] : related artists most common across the selection
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking. A nil channel disables reporting.
//
// # Rate Limiting
//
// Every catalog call waits on a shared [rate.Limiter]. Cancelling the context stops the
// pipeline at the next call.
package tasks
