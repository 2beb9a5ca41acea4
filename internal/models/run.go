package models

import (
	"fmt"
	"strings"
	"time"
)

// PlaylistRun records one generated playlist.
type PlaylistRun struct {
	id                string
	sequence          int
	name              string
	festival          string
	remoteID          string
	remoteURL         string
	trackCount        int
	durationMS        int
	duplicatesRemoved int
	reportDir         string
	createdAt         time.Time
	updatedAt         time.Time
	deletedAt         *time.Time
}

// NewPlaylistRun builds a run from a playlist name, festival and its summary.
func NewPlaylistRun(name, festival string, summary PlaylistSummary) *PlaylistRun {
	now := time.Now()
	return &PlaylistRun{
		name:              name,
		festival:          festival,
		trackCount:        summary.TrackCount,
		durationMS:        summary.DurationMS,
		duplicatesRemoved: summary.DuplicatesRemoved,
		createdAt:         now,
		updatedAt:         now,
	}
}

// RestorePlaylistRun rebuilds a run from stored columns.
func RestorePlaylistRun(id string, sequence int, name, festival string, trackCount, durationMS, duplicatesRemoved int, createdAt, updatedAt time.Time) *PlaylistRun {
	return &PlaylistRun{
		id:                id,
		sequence:          sequence,
		name:              name,
		festival:          festival,
		trackCount:        trackCount,
		durationMS:        durationMS,
		duplicatesRemoved: duplicatesRemoved,
		createdAt:         createdAt,
		updatedAt:         updatedAt,
	}
}

func (r *PlaylistRun) ID() string             { return r.id }
func (r *PlaylistRun) Sequence() int          { return r.sequence }
func (r *PlaylistRun) Name() string           { return r.name }
func (r *PlaylistRun) Festival() string       { return r.festival }
func (r *PlaylistRun) RemoteID() string       { return r.remoteID }
func (r *PlaylistRun) RemoteURL() string      { return r.remoteURL }
func (r *PlaylistRun) TrackCount() int        { return r.trackCount }
func (r *PlaylistRun) DurationMS() int        { return r.durationMS }
func (r *PlaylistRun) DuplicatesRemoved() int { return r.duplicatesRemoved }
func (r *PlaylistRun) ReportDir() string      { return r.reportDir }
func (r *PlaylistRun) CreatedAt() time.Time   { return r.createdAt }
func (r *PlaylistRun) UpdatedAt() time.Time   { return r.updatedAt }
func (r *PlaylistRun) DeletedAt() *time.Time  { return r.deletedAt }

func (r *PlaylistRun) SetID(id string)           { r.id = id }
func (r *PlaylistRun) SetSequence(seq int)       { r.sequence = seq }
func (r *PlaylistRun) SetUpdatedAt(t time.Time)  { r.updatedAt = t }
func (r *PlaylistRun) SetDeletedAt(t *time.Time) { r.deletedAt = t }
func (r *PlaylistRun) SetReportDir(dir string)   { r.reportDir = dir }
func (r *PlaylistRun) SetRemote(id, url string)  { r.remoteID, r.remoteURL = id, url }

// Validate checks required fields.
func (r *PlaylistRun) Validate() error {
	if strings.TrimSpace(r.name) == "" {
		return fmt.Errorf("playlist run name is required")
	}
	if r.trackCount < 0 || r.durationMS < 0 || r.duplicatesRemoved < 0 {
		return fmt.Errorf("playlist run counts must not be negative")
	}
	return nil
}
