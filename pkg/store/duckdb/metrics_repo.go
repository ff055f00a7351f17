package duckdb

import (
	"context"
	"fmt"

	"github.com/tunogya/crescendo/pkg/analysis"
)

// MetricsRepo persists evaluation reports
type MetricsRepo struct {
	client *Client
}

// NewMetricsRepo creates a new metrics repository
func NewMetricsRepo(client *Client) *MetricsRepo {
	return &MetricsRepo{client: client}
}

// SaveReport writes one evaluation report in a single transaction:
// the summary row plus the per-track, per-day, importance, and
// breakout breakdowns.
func (r *MetricsRepo) SaveReport(ctx context.Context, report *analysis.Report) error {
	tx, err := r.client.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO evaluations (run_id, consistent_accuracy)
		VALUES (?, ?)
		ON CONFLICT (run_id) DO UPDATE SET
			consistent_accuracy = EXCLUDED.consistent_accuracy
	`, report.RunID, report.ConsistentAccuracy)
	if err != nil {
		return fmt.Errorf("failed to insert evaluation: %w", err)
	}

	for _, t := range report.TrackAccuracy {
		_, err = tx.Exec(`
			INSERT INTO track_accuracy (run_id, track_id, name, accuracy)
			VALUES (?, ?, ?, ?)
			ON CONFLICT (run_id, track_id) DO UPDATE SET
				accuracy = EXCLUDED.accuracy
		`, report.RunID, t.TrackID, t.Name, t.Accuracy)
		if err != nil {
			return fmt.Errorf("failed to insert track accuracy: %w", err)
		}
	}

	for offset, acc := range report.DayAccuracy {
		_, err = tx.Exec(`
			INSERT INTO day_accuracy (run_id, forecast_offset, accuracy)
			VALUES (?, ?, ?)
			ON CONFLICT (run_id, forecast_offset) DO UPDATE SET
				accuracy = EXCLUDED.accuracy
		`, report.RunID, offset+1, acc)
		if err != nil {
			return fmt.Errorf("failed to insert day accuracy: %w", err)
		}
	}

	for _, imp := range report.Importance {
		_, err = tx.Exec(`
			INSERT INTO feature_importance (run_id, feature, score)
			VALUES (?, ?, ?)
			ON CONFLICT (run_id, feature) DO UPDATE SET
				score = EXCLUDED.score
		`, report.RunID, imp.Name, imp.Score)
		if err != nil {
			return fmt.Errorf("failed to insert feature importance: %w", err)
		}
	}

	for _, b := range report.Breakouts {
		_, err = tx.Exec(`
			INSERT INTO breakouts (run_id, track_id, name, score, confidence, trend, risk_level)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (run_id, track_id) DO UPDATE SET
				score = EXCLUDED.score,
				confidence = EXCLUDED.confidence,
				trend = EXCLUDED.trend,
				risk_level = EXCLUDED.risk_level
		`, report.RunID, b.TrackID, b.Name, b.Score, b.Confidence, b.Trend, string(b.RiskLevel))
		if err != nil {
			return fmt.Errorf("failed to insert breakout: %w", err)
		}
	}

	return tx.Commit()
}

// GetTrackAccuracy retrieves the ranked per-track accuracy for a run
func (r *MetricsRepo) GetTrackAccuracy(ctx context.Context, runID string) ([]analysis.TrackAccuracy, error) {
	rows, err := r.client.Query(`
		SELECT track_id, name, accuracy
		FROM track_accuracy
		WHERE run_id = ?
		ORDER BY accuracy DESC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query track accuracy: %w", err)
	}
	defer rows.Close()

	var result []analysis.TrackAccuracy
	for rows.Next() {
		var t analysis.TrackAccuracy
		if err := rows.Scan(&t.TrackID, &t.Name, &t.Accuracy); err != nil {
			return nil, fmt.Errorf("failed to scan track accuracy: %w", err)
		}
		result = append(result, t)
	}

	return result, nil
}

// GetBreakouts retrieves the ranked breakouts for a run
func (r *MetricsRepo) GetBreakouts(ctx context.Context, runID string) ([]analysis.Breakout, error) {
	rows, err := r.client.Query(`
		SELECT track_id, name, score, confidence, trend, risk_level
		FROM breakouts
		WHERE run_id = ?
		ORDER BY score DESC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query breakouts: %w", err)
	}
	defer rows.Close()

	var result []analysis.Breakout
	for rows.Next() {
		var b analysis.Breakout
		var risk string
		if err := rows.Scan(&b.TrackID, &b.Name, &b.Score, &b.Confidence, &b.Trend, &risk); err != nil {
			return nil, fmt.Errorf("failed to scan breakout: %w", err)
		}
		b.RiskLevel = analysis.RiskLevel(risk)
		result = append(result, b)
	}

	return result, nil
}

// LatestRunID returns the most recently stored run, or empty string
func (r *MetricsRepo) LatestRunID(ctx context.Context) (string, error) {
	var runID string
	row := r.client.QueryRow(`
		SELECT run_id FROM evaluations ORDER BY created_at DESC LIMIT 1
	`)
	if err := row.Scan(&runID); err != nil {
		return "", err
	}
	return runID, nil
}
