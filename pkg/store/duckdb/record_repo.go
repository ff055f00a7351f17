package duckdb

import (
	"context"
	"fmt"

	"github.com/tunogya/crescendo/pkg/model"
)

// RecordRepo handles stream record persistence
type RecordRepo struct {
	client *Client
}

// NewRecordRepo creates a new record repository
func NewRecordRepo(client *Client) *RecordRepo {
	return &RecordRepo{client: client}
}

const upsertRecord = `
	INSERT INTO stream_records (
		date, track_id, track_name, streams, danceability, energy,
		valence, acousticness, momentum, growth_rate, moving_average, volatility
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (date, track_id) DO UPDATE SET
		track_name = EXCLUDED.track_name,
		streams = EXCLUDED.streams,
		danceability = EXCLUDED.danceability,
		energy = EXCLUDED.energy,
		valence = EXCLUDED.valence,
		acousticness = EXCLUDED.acousticness,
		momentum = EXCLUDED.momentum,
		growth_rate = EXCLUDED.growth_rate,
		moving_average = EXCLUDED.moving_average,
		volatility = EXCLUDED.volatility
`

// Insert inserts a single record
func (r *RecordRepo) Insert(ctx context.Context, rec *model.Record) error {
	return r.client.Exec(upsertRecord,
		rec.Date, rec.TrackID, rec.TrackName, rec.Streams, rec.Danceability,
		rec.Energy, rec.Valence, rec.Acousticness, rec.Momentum,
		rec.GrowthRate, rec.MovingAverage, rec.Volatility,
	)
}

// InsertBatch inserts multiple records in a transaction
func (r *RecordRepo) InsertBatch(ctx context.Context, records []model.Record) error {
	tx, err := r.client.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(upsertRecord)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i := range records {
		rec := &records[i]
		_, err := stmt.Exec(
			rec.Date, rec.TrackID, rec.TrackName, rec.Streams, rec.Danceability,
			rec.Energy, rec.Valence, rec.Acousticness, rec.Momentum,
			rec.GrowthRate, rec.MovingAverage, rec.Volatility,
		)
		if err != nil {
			return fmt.Errorf("failed to insert record: %w", err)
		}
	}

	return tx.Commit()
}

// GetByDateRange retrieves records within a lexical date range,
// ordered by date then track
func (r *RecordRepo) GetByDateRange(ctx context.Context, from, to string) ([]model.Record, error) {
	query := `
		SELECT date, track_id, track_name, streams, danceability, energy,
			   valence, acousticness, momentum, growth_rate, moving_average, volatility
		FROM stream_records
		WHERE date >= ? AND date <= ?
		ORDER BY date ASC, track_id ASC
	`

	rows, err := r.client.Query(query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var records []model.Record
	for rows.Next() {
		var rec model.Record
		err := rows.Scan(
			&rec.Date, &rec.TrackID, &rec.TrackName, &rec.Streams, &rec.Danceability,
			&rec.Energy, &rec.Valence, &rec.Acousticness, &rec.Momentum,
			&rec.GrowthRate, &rec.MovingAverage, &rec.Volatility,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, rec)
	}

	return records, nil
}

// GetByTrack retrieves all records for one track in date order
func (r *RecordRepo) GetByTrack(ctx context.Context, trackID string) ([]model.Record, error) {
	query := `
		SELECT date, track_id, track_name, streams, danceability, energy,
			   valence, acousticness, momentum, growth_rate, moving_average, volatility
		FROM stream_records
		WHERE track_id = ?
		ORDER BY date ASC
	`

	rows, err := r.client.Query(query, trackID)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var records []model.Record
	for rows.Next() {
		var rec model.Record
		err := rows.Scan(
			&rec.Date, &rec.TrackID, &rec.TrackName, &rec.Streams, &rec.Danceability,
			&rec.Energy, &rec.Valence, &rec.Acousticness, &rec.Momentum,
			&rec.GrowthRate, &rec.MovingAverage, &rec.Volatility,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, rec)
	}

	return records, nil
}

// Count returns the total number of stored records
func (r *RecordRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	row := r.client.QueryRow("SELECT COUNT(*) FROM stream_records")
	err := row.Scan(&count)
	return count, err
}
