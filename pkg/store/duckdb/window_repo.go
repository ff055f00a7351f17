package duckdb

import (
	"context"
	"fmt"

	"github.com/tunogya/crescendo/pkg/model"
)

// WindowEntry is one row of the window index.
type WindowEntry struct {
	WindowID     string
	EndDate      string
	WindowSize   int
	Horizon      int
	TrackCount   int
	FeatureCount int
}

// WindowEntries builds index rows for every sample in a dataset.
func WindowEntries(ds *model.Dataset) []WindowEntry {
	entries := make([]WindowEntry, len(ds.EndDates))
	for i, endDate := range ds.EndDates {
		entries[i] = WindowEntry{
			WindowID: model.GenerateWindowID(
				endDate, ds.WindowSize, ds.Horizon, len(ds.TrackIDs), ds.FeatureCount,
			),
			EndDate:      endDate,
			WindowSize:   ds.WindowSize,
			Horizon:      ds.Horizon,
			TrackCount:   len(ds.TrackIDs),
			FeatureCount: ds.FeatureCount,
		}
	}
	return entries
}

// WindowRepo handles window index persistence
type WindowRepo struct {
	client *Client
}

// NewWindowRepo creates a new window repository
func NewWindowRepo(client *Client) *WindowRepo {
	return &WindowRepo{client: client}
}

// InsertBatch inserts multiple window entries in a transaction.
// Window IDs are deterministic, so re-ingesting is idempotent.
func (r *WindowRepo) InsertBatch(ctx context.Context, entries []WindowEntry) error {
	tx, err := r.client.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO windows (window_id, end_date, window_size, horizon, track_count, feature_count)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (window_id) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		_, err := stmt.Exec(
			e.WindowID, e.EndDate, e.WindowSize, e.Horizon, e.TrackCount, e.FeatureCount,
		)
		if err != nil {
			return fmt.Errorf("failed to insert window: %w", err)
		}
	}

	return tx.Commit()
}

// GetByID retrieves a window entry by ID
func (r *WindowRepo) GetByID(ctx context.Context, windowID string) (*WindowEntry, error) {
	row := r.client.QueryRow(`
		SELECT window_id, end_date, window_size, horizon, track_count, feature_count
		FROM windows
		WHERE window_id = ?
	`, windowID)

	var e WindowEntry
	err := row.Scan(&e.WindowID, &e.EndDate, &e.WindowSize, &e.Horizon, &e.TrackCount, &e.FeatureCount)
	if err != nil {
		return nil, err
	}

	return &e, nil
}

// Count returns the total number of indexed windows
func (r *WindowRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	row := r.client.QueryRow("SELECT COUNT(*) FROM windows")
	err := row.Scan(&count)
	return count, err
}
