package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/festlist/internal/models"
	"github.com/desertthunder/festlist/internal/shared"
)

const runColumns = `id, sequence, name, festival, remote_id, remote_url, track_count, duration_ms, duplicates_removed, report_dir, created_at, updated_at, deleted_at`

// RunRepository implements models.Repository[*models.PlaylistRun] for the run history.
//
// Handles run CRUD operations with soft delete support and stores each run's ordered tracks.
type RunRepository struct {
	db *sql.DB
}

var _ models.Repository[*models.PlaylistRun] = (*RunRepository)(nil)

// NewRunRepository creates a new RunRepository with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a new run into the database with generated ID and sequence
func (r *RunRepository) Create(run *models.PlaylistRun) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "playlist_runs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	run.SetID(id)
	run.SetSequence(sequence)

	query := `
		INSERT INTO playlist_runs (id, sequence, name, festival, remote_id, remote_url, track_count, duration_ms, duplicates_removed, report_dir, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		run.Name(),
		run.Festival(),
		run.RemoteID(),
		run.RemoteURL(),
		run.TrackCount(),
		run.DurationMS(),
		run.DuplicatesRemoved(),
		run.ReportDir(),
		run.CreatedAt(),
		run.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert playlist run: %w", err)
	}

	return nil
}

// Get retrieves a run by ID, excluding soft-deleted runs
func (r *RunRepository) Get(id string) (*models.PlaylistRun, error) {
	query := `SELECT ` + runColumns + ` FROM playlist_runs WHERE id = ? AND deleted_at IS NULL`
	return r.scan(r.db.QueryRow(query, id))
}

// GetBySequence retrieves a run by its sequence number, excluding soft-deleted runs
func (r *RunRepository) GetBySequence(sequence int) (*models.PlaylistRun, error) {
	query := `SELECT ` + runColumns + ` FROM playlist_runs WHERE sequence = ? AND deleted_at IS NULL`
	return r.scan(r.db.QueryRow(query, sequence))
}

// Update modifies the mutable fields of an existing run
func (r *RunRepository) Update(run *models.PlaylistRun) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	run.SetUpdatedAt(now)

	query := `
		UPDATE playlist_runs
		SET name = ?, remote_id = ?, remote_url = ?, report_dir = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		run.Name(),
		run.RemoteID(),
		run.RemoteURL(),
		run.ReportDir(),
		now,
		run.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update playlist run: %w", err)
	}

	return expectRow(result, run.ID())
}

// Delete soft-deletes a run by ID
func (r *RunRepository) Delete(id string) error {
	query := `
		UPDATE playlist_runs
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete playlist run: %w", err)
	}

	return expectRow(result, id)
}

// List retrieves runs matching the given criteria, newest first, excluding soft-deleted runs.
//
// Supported criteria: "festival" (string) and "limit" (int).
func (r *RunRepository) List(criteria map[string]any) ([]*models.PlaylistRun, error) {
	query := `SELECT ` + runColumns + ` FROM playlist_runs WHERE deleted_at IS NULL`
	args := []any{}

	if festival, ok := criteria["festival"].(string); ok && festival != "" {
		query += " AND festival = ?"
		args = append(args, festival)
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlist runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.PlaylistRun
	for rows.Next() {
		run, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return runs, nil
}

// SaveTracks replaces the stored tracks of a run with entries, in a single transaction
func (r *RunRepository) SaveTracks(runID string, entries []models.PlaylistEntry) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM run_tracks WHERE run_id = ?`, runID); err != nil {
		return fmt.Errorf("failed to clear run tracks: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO run_tracks (run_id, position, catalog_id, title, artist_name, duration_ms, popularity)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		_, err := stmt.Exec(runID, e.Position, e.Track.CatalogID, e.Track.Title, e.Track.ArtistName, e.Track.DurationMS, e.Track.Popularity)
		if err != nil {
			return fmt.Errorf("failed to insert run track %d: %w", e.Position, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run tracks: %w", err)
	}
	return nil
}

// Tracks returns the stored tracks of a run in playlist order
func (r *RunRepository) Tracks(runID string) ([]models.PlaylistEntry, error) {
	rows, err := r.db.Query(`
		SELECT position, catalog_id, title, artist_name, duration_ms, popularity
		FROM run_tracks
		WHERE run_id = ?
		ORDER BY position ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query run tracks: %w", err)
	}
	defer rows.Close()

	var entries []models.PlaylistEntry
	for rows.Next() {
		var e models.PlaylistEntry
		if err := rows.Scan(&e.Position, &e.Track.CatalogID, &e.Track.Title, &e.Track.ArtistName, &e.Track.DurationMS, &e.Track.Popularity); err != nil {
			return nil, fmt.Errorf("failed to scan run track: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return entries, nil
}

// scan reads one row into a [models.PlaylistRun]
func (r *RunRepository) scan(row scanner) (*models.PlaylistRun, error) {
	var (
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
		deletedAt         sql.NullTime
	)

	err := row.Scan(&id, &sequence, &name, &festival, &remoteID, &remoteURL, &trackCount, &durationMS, &duplicatesRemoved, &reportDir, &createdAt, &updatedAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan playlist run: %w", err)
	}

	run := models.RestorePlaylistRun(id, sequence, name, festival, trackCount, durationMS, duplicatesRemoved, createdAt, updatedAt)
	run.SetRemote(remoteID, remoteURL)
	run.SetReportDir(reportDir)
	if deletedAt.Valid {
		run.SetDeletedAt(&deletedAt.Time)
	}

	return run, nil
}

func expectRow(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrRunNotFound, id)
	}
	return nil
}
