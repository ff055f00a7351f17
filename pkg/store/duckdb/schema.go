package duckdb

import "fmt"

// Schema contains table creation statements for all required tables

// CreateRecordsTable creates the stream records fact table
const CreateRecordsTable = `
CREATE TABLE IF NOT EXISTS stream_records (
    date VARCHAR NOT NULL,
    track_id VARCHAR NOT NULL,
    track_name VARCHAR,
    streams DOUBLE,
    danceability DOUBLE,
    energy DOUBLE,
    valence DOUBLE,
    acousticness DOUBLE,
    momentum DOUBLE,
    growth_rate DOUBLE,
    moving_average DOUBLE,
    volatility DOUBLE,
    PRIMARY KEY (date, track_id)
);
`

// CreateTracksTable creates the selected track universe table
const CreateTracksTable = `
CREATE TABLE IF NOT EXISTS tracks (
    track_id VARCHAR PRIMARY KEY,
    name VARCHAR,
    total_streams DOUBLE,
    rank INTEGER NOT NULL
);
`

// CreateWindowsTable creates the window index table
const CreateWindowsTable = `
CREATE TABLE IF NOT EXISTS windows (
    window_id VARCHAR PRIMARY KEY,
    end_date VARCHAR NOT NULL,
    window_size INTEGER NOT NULL,
    horizon INTEGER NOT NULL,
    track_count INTEGER NOT NULL,
    feature_count INTEGER NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_windows_end_date ON windows(end_date);
`

// CreateEvaluationsTable creates the per-run evaluation summary table
const CreateEvaluationsTable = `
CREATE TABLE IF NOT EXISTS evaluations (
    run_id VARCHAR PRIMARY KEY,
    consistent_accuracy DOUBLE,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`

// CreateTrackAccuracyTable creates the per-track accuracy table
const CreateTrackAccuracyTable = `
CREATE TABLE IF NOT EXISTS track_accuracy (
    run_id VARCHAR NOT NULL,
    track_id VARCHAR NOT NULL,
    name VARCHAR,
    accuracy DOUBLE,
    PRIMARY KEY (run_id, track_id)
);
`

// CreateDayAccuracyTable creates the per-forecast-day accuracy table
const CreateDayAccuracyTable = `
CREATE TABLE IF NOT EXISTS day_accuracy (
    run_id VARCHAR NOT NULL,
    forecast_offset INTEGER NOT NULL,
    accuracy DOUBLE,
    PRIMARY KEY (run_id, forecast_offset)
);
`

// CreateFeatureImportanceTable creates the feature importance table
const CreateFeatureImportanceTable = `
CREATE TABLE IF NOT EXISTS feature_importance (
    run_id VARCHAR NOT NULL,
    feature VARCHAR NOT NULL,
    score DOUBLE,
    PRIMARY KEY (run_id, feature)
);
`

// CreateBreakoutsTable creates the breakout rankings table
const CreateBreakoutsTable = `
CREATE TABLE IF NOT EXISTS breakouts (
    run_id VARCHAR NOT NULL,
    track_id VARCHAR NOT NULL,
    name VARCHAR,
    score DOUBLE,
    confidence DOUBLE,
    trend DOUBLE,
    risk_level VARCHAR,
    PRIMARY KEY (run_id, track_id)
);
`

// InitializeSchema creates all required tables
func InitializeSchema(c *Client) error {
	schemas := []string{
		CreateRecordsTable,
		CreateTracksTable,
		CreateWindowsTable,
		CreateEvaluationsTable,
		CreateTrackAccuracyTable,
		CreateDayAccuracyTable,
		CreateFeatureImportanceTable,
		CreateBreakoutsTable,
	}

	for _, schema := range schemas {
		if err := c.Exec(schema); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return nil
}

// DropAllTables drops all tables (use with caution)
func DropAllTables(c *Client) error {
	tables := []string{
		"breakouts", "feature_importance", "day_accuracy", "track_accuracy",
		"evaluations", "windows", "tracks", "stream_records",
	}
	for _, table := range tables {
		if err := c.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", table)); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}
	return nil
}
