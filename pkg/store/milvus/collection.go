package milvus

import (
	"context"
	"fmt"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/entity"
)

const (
	// DefaultCollectionName is the default collection for track window vectors
	DefaultCollectionName = "track_windows"
)

// CollectionConfig holds configuration for creating a collection
type CollectionConfig struct {
	Name      string
	Dimension int // windowSize × featuresPerTrack × trackCount
	Shards    int // Number of shards
}

// DefaultCollectionConfig returns collection configuration for the
// standard layout: 7 days × 5 features × 10 tracks.
func DefaultCollectionConfig() CollectionConfig {
	return CollectionConfig{
		Name:      DefaultCollectionName,
		Dimension: 350,
		Shards:    2,
	}
}

// CreateCollection creates the track_windows collection
func (c *Client) CreateCollection(ctx context.Context, cfg CollectionConfig) error {
	// Check if collection already exists
	exists, err := c.HasCollection(ctx, cfg.Name)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if exists {
		return nil // Collection already exists
	}

	// Define schema
	schema := &entity.Schema{
		CollectionName: cfg.Name,
		Description:    "Track window embeddings for trend-shape similarity search",
		Fields: []*entity.Field{
			{
				Name:       "window_id",
				DataType:   entity.FieldTypeVarChar,
				PrimaryKey: true,
				AutoID:     false,
				TypeParams: map[string]string{
					"max_length": "64",
				},
			},
			{
				Name:     "embedding",
				DataType: entity.FieldTypeFloatVector,
				TypeParams: map[string]string{
					"dim": fmt.Sprintf("%d", cfg.Dimension),
				},
			},
			{
				Name:     "end_date",
				DataType: entity.FieldTypeInt64,
			},
			{
				Name:     "track_count",
				DataType: entity.FieldTypeInt32,
			},
			{
				Name:     "feature_count",
				DataType: entity.FieldTypeInt32,
			},
		},
	}

	err = c.conn.CreateCollection(ctx, schema, int32(cfg.Shards))
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	return nil
}

// WindowData holds data for inserting a window into Milvus
type WindowData struct {
	WindowID     string
	Embedding    []float32
	EndDate      time.Time
	TrackCount   int32
	FeatureCount int32
}

// Insert inserts a single window embedding
func (c *Client) Insert(ctx context.Context, collectionName string, data *WindowData) error {
	return c.InsertBatch(ctx, collectionName, []*WindowData{data})
}

// InsertBatch inserts multiple window embeddings
func (c *Client) InsertBatch(ctx context.Context, collectionName string, dataList []*WindowData) error {
	if len(dataList) == 0 {
		return nil
	}

	// Prepare column data
	windowIDs := make([]string, len(dataList))
	embeddings := make([][]float32, len(dataList))
	endDates := make([]int64, len(dataList))
	trackCounts := make([]int32, len(dataList))
	featureCounts := make([]int32, len(dataList))

	for i, d := range dataList {
		windowIDs[i] = d.WindowID
		embeddings[i] = d.Embedding
		endDates[i] = d.EndDate.Unix()
		trackCounts[i] = d.TrackCount
		featureCounts[i] = d.FeatureCount
	}

	// Create column entities
	columns := []entity.Column{
		entity.NewColumnVarChar("window_id", windowIDs),
		entity.NewColumnFloatVector("embedding", len(embeddings[0]), embeddings),
		entity.NewColumnInt64("end_date", endDates),
		entity.NewColumnInt32("track_count", trackCounts),
		entity.NewColumnInt32("feature_count", featureCounts),
	}

	_, err := c.conn.Insert(ctx, collectionName, "", columns...)
	if err != nil {
		return fmt.Errorf("failed to insert: %w", err)
	}

	return nil
}

// SearchResult represents a single search result
type SearchResult struct {
	WindowID     string
	Score        float32
	EndDate      time.Time
	TrackCount   int32
	FeatureCount int32
}

// Search performs a TopK similarity search
func (c *Client) Search(ctx context.Context, collectionName string, embedding []float32, filter string, topK int) ([]SearchResult, error) {
	// Create search vectors
	vectors := []entity.Vector{entity.FloatVector(embedding)}

	// Search parameters
	sp, err := entity.NewIndexIvfFlatSearchParam(16) // nprobe
	if err != nil {
		return nil, fmt.Errorf("failed to create search param: %w", err)
	}

	// Output fields
	outputFields := []string{"window_id", "end_date", "track_count", "feature_count"}

	// Execute search
	results, err := c.conn.Search(
		ctx,
		collectionName,
		nil,          // partitions
		filter,       // expression filter
		outputFields, // output fields
		vectors,
		"embedding",
		entity.COSINE,
		topK,
		sp,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	if len(results) == 0 {
		return nil, nil
	}

	// Parse results
	searchResults := make([]SearchResult, 0, results[0].ResultCount)
	for i := 0; i < results[0].ResultCount; i++ {
		result := SearchResult{
			Score: results[0].Scores[i],
		}

		// Extract fields from columns
		for _, field := range results[0].Fields {
			switch field.Name() {
			case "window_id":
				if col, ok := field.(*entity.ColumnVarChar); ok {
					val, _ := col.ValueByIdx(i)
					result.WindowID = val
				}
			case "end_date":
				if col, ok := field.(*entity.ColumnInt64); ok {
					val, _ := col.ValueByIdx(i)
					result.EndDate = time.Unix(val, 0)
				}
			case "track_count":
				if col, ok := field.(*entity.ColumnInt32); ok {
					val, _ := col.ValueByIdx(i)
					result.TrackCount = val
				}
			case "feature_count":
				if col, ok := field.(*entity.ColumnInt32); ok {
					val, _ := col.ValueByIdx(i)
					result.FeatureCount = val
				}
			}
		}

		searchResults = append(searchResults, result)
	}

	return searchResults, nil
}

// Flush flushes the collection to ensure data persistence
func (c *Client) Flush(ctx context.Context, collectionName string) error {
	return c.conn.Flush(ctx, collectionName, false)
}
