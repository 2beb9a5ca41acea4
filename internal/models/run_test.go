package models

import (
	"testing"
	"time"
)

var _ Model = (*PlaylistRun)(nil)

func TestPlaylistRun(t *testing.T) {
	t.Run("NewPlaylistRun copies the summary", func(t *testing.T) {
		run := NewPlaylistRun("Fest Playlist", "Fest", PlaylistSummary{TrackCount: 12, DurationMS: 2_400_000, DuplicatesRemoved: 3})

		if run.Name() != "Fest Playlist" || run.Festival() != "Fest" {
			t.Errorf("unexpected run %q %q", run.Name(), run.Festival())
		}
		if run.TrackCount() != 12 || run.DurationMS() != 2_400_000 || run.DuplicatesRemoved() != 3 {
			t.Errorf("unexpected counts %d %d %d", run.TrackCount(), run.DurationMS(), run.DuplicatesRemoved())
		}
		if run.CreatedAt().IsZero() || !run.CreatedAt().Equal(run.UpdatedAt()) {
			t.Errorf("timestamps not set: %v %v", run.CreatedAt(), run.UpdatedAt())
		}
		if run.ID() != "" || run.DeletedAt() != nil {
			t.Error("new run should have no ID and not be deleted")
		}
	})

	t.Run("setters", func(t *testing.T) {
		run := NewPlaylistRun("Fest Playlist", "Fest", PlaylistSummary{})
		run.SetID("abc")
		run.SetSequence(4)
		run.SetRemote("pl-1", "https://open.spotify.com/playlist/pl-1")
		run.SetReportDir("/tmp/report")

		if run.ID() != "abc" || run.Sequence() != 4 {
			t.Errorf("id = %q, sequence = %d", run.ID(), run.Sequence())
		}
		if run.RemoteID() != "pl-1" || run.RemoteURL() != "https://open.spotify.com/playlist/pl-1" {
			t.Errorf("remote = %q %q", run.RemoteID(), run.RemoteURL())
		}
		if run.ReportDir() != "/tmp/report" {
			t.Errorf("report dir = %q", run.ReportDir())
		}
	})

	t.Run("Validate", func(t *testing.T) {
		at := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
		tests := []struct {
			name    string
			run     *PlaylistRun
			wantErr bool
		}{
			{"valid", RestorePlaylistRun("id", 1, "Fest Playlist", "Fest", 10, 1000, 2, at, at), false},
			{"zero counts", RestorePlaylistRun("id", 1, "Fest Playlist", "", 0, 0, 0, at, at), false},
			{"empty name", RestorePlaylistRun("id", 1, "", "Fest", 10, 1000, 0, at, at), true},
			{"blank name", RestorePlaylistRun("id", 1, "  \t", "Fest", 10, 1000, 0, at, at), true},
			{"negative track count", RestorePlaylistRun("id", 1, "Fest Playlist", "Fest", -1, 1000, 0, at, at), true},
			{"negative duration", RestorePlaylistRun("id", 1, "Fest Playlist", "Fest", 10, -1, 0, at, at), true},
			{"negative duplicates", RestorePlaylistRun("id", 1, "Fest Playlist", "Fest", 10, 1000, -1, at, at), true},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				err := tt.run.Validate()
				if (err != nil) != tt.wantErr {
					t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
				}
			})
		}
	})
}
