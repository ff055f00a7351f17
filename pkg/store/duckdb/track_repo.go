package duckdb

import (
	"context"
	"fmt"

	"github.com/tunogya/crescendo/pkg/model"
)

// TrackRepo handles the selected track universe
type TrackRepo struct {
	client *Client
}

// NewTrackRepo creates a new track repository
func NewTrackRepo(client *Client) *TrackRepo {
	return &TrackRepo{client: client}
}

// Replace swaps the stored universe for a new selection in one
// transaction. The universe is fixed per load, so a full replace
// matches the lifecycle.
func (r *TrackRepo) Replace(ctx context.Context, tracks map[string]model.Track) error {
	tx, err := r.client.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM tracks"); err != nil {
		return fmt.Errorf("failed to clear tracks: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO tracks (track_id, name, total_streams, rank)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, t := range tracks {
		if _, err := stmt.Exec(t.ID, t.Name, t.TotalStreams, t.Rank); err != nil {
			return fmt.Errorf("failed to insert track: %w", err)
		}
	}

	return tx.Commit()
}

// GetAll retrieves the universe in selection order (rank ascending)
func (r *TrackRepo) GetAll(ctx context.Context) ([]model.Track, error) {
	rows, err := r.client.Query(`
		SELECT track_id, name, total_streams, rank
		FROM tracks
		ORDER BY rank ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks: %w", err)
	}
	defer rows.Close()

	var tracks []model.Track
	for rows.Next() {
		var t model.Track
		if err := rows.Scan(&t.ID, &t.Name, &t.TotalStreams, &t.Rank); err != nil {
			return nil, fmt.Errorf("failed to scan track: %w", err)
		}
		tracks = append(tracks, t)
	}

	return tracks, nil
}
