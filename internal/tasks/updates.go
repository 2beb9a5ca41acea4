package tasks

import (
	"fmt"

	"github.com/desertthunder/festlist/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	ResolveArtists Phase = iota
	FetchTracks
	AssemblePlaylist
	ModifyPlaylist
	CreatePlaylist
	RecommendArtists
	Complete
)

func (p Phase) String() string {
	switch p {
	case ResolveArtists:
		return "resolve_artists"
	case FetchTracks:
		return "fetch_tracks"
	case AssemblePlaylist:
		return "assemble_playlist"
	case ModifyPlaylist:
		return "modify_playlist"
	case CreatePlaylist:
		return "create_playlist"
	case RecommendArtists:
		return "recommend_artists"
	case Complete:
		return "complete"
	default:
		return ""
	}
}

func resolveUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveArtists,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Searching for %s...", step, total, name),
	}
}

func unresolvedUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveArtists,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ No match for %s", step, total, name),
		Data:    name,
	}
}

func fetchTracksUpdate(step, total int, artist models.Artist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Fetching top tracks for %s...", step, total, artist.Name),
	}
}

func fetchedTracksUpdate(step, total int, sel models.Selection) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d tracks)", step, total, sel.Artist.Name, len(sel.Tracks)),
		Data:    sel,
	}
}

func assembleUpdate(count, duplicates int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AssemblePlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Assembled %d tracks (%d duplicates removed)", count, duplicates),
	}
}

func modifyUpdate(step, total int, what string, removed int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ModifyPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("%s: %d tracks removed", what, removed),
	}
}

func creatingPlaylistUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreatePlaylist,
		Step:    0,
		Total:   1,
		Message: fmt.Sprintf("Creating playlist %s on Spotify...", name),
	}
}

func createdPlaylistUpdate(pl *models.RemotePlaylist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreatePlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Playlist created: %s (ID: %s)", pl.Name, pl.ID),
		Data:    pl,
	}
}

func recommendUpdate(step, total int, artist models.Artist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RecommendArtists,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Finding artists related to %s...", step, total, artist.Name),
	}
}

func completeUpdate(result *BuildResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Complete,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Done: %d tracks", result.Playlist.Len()),
		Data:    result,
	}
}
