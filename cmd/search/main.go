package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/tunogya/crescendo/pkg/config"
	"github.com/tunogya/crescendo/pkg/logger"
	"github.com/tunogya/crescendo/pkg/model"
	"github.com/tunogya/crescendo/pkg/pipeline"
	"github.com/tunogya/crescendo/pkg/rerank"
	"github.com/tunogya/crescendo/pkg/store/duckdb"
	"github.com/tunogya/crescendo/pkg/store/milvus"
)

func main() {
	log := logger.New()
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	topK := parseFlags(&cfg)

	ctx := context.Background()

	log.Info("Connecting to DuckDB...")
	duckClient, err := duckdb.NewClient(cfg.DuckDBPath)
	if err != nil {
		log.Fatalf("Failed to connect to DuckDB: %v", err)
	}
	defer duckClient.Close()

	recordRepo := duckdb.NewRecordRepo(duckClient)

	records, err := recordRepo.GetByDateRange(ctx, "0000-00-00", "9999-99-99")
	if err != nil {
		log.Fatalf("Failed to load records: %v", err)
	}
	if len(records) == 0 {
		log.Fatal("No records stored; run ingest first")
	}
	log.Infof("Loaded %d records", len(records))

	// Rebuild the current window from the stored rows. The pipeline
	// stages recompute derived features and normalization, so the
	// query embedding matches what ingest stored.
	state := &pipeline.State{Config: cfg.Pipeline(), Records: records}
	if err := state.Select(); err != nil {
		log.Fatalf("Track selection failed: %v", err)
	}
	if err := state.Normalize(); err != nil {
		log.Fatalf("Normalization failed: %v", err)
	}
	if err := state.BuildWindows(); err != nil {
		log.Fatalf("Window building failed: %v", err)
	}
	defer state.Release()

	ds := state.Dataset
	last := ds.Samples() - 1
	queryID := model.GenerateWindowID(
		ds.EndDates[last], ds.WindowSize, ds.Horizon, len(ds.TrackIDs), ds.FeatureCount,
	)
	embedding := ds.SampleVector(last)

	log.Infow("Query window", "window_id", queryID, "end_date", ds.EndDates[last])

	log.Info("Connecting to Milvus...")
	milvusClient, err := milvus.NewClient(ctx, milvus.Config{Address: cfg.MilvusAddr})
	if err != nil {
		log.Fatalf("Failed to connect to Milvus: %v", err)
	}
	defer milvusClient.Close()

	if err := milvusClient.LoadCollection(ctx, milvus.DefaultCollectionName); err != nil {
		log.Fatalf("Failed to load collection: %v", err)
	}

	log.Infof("Searching for %d most similar windows...", topK)
	results, err := milvusClient.Search(ctx, milvus.DefaultCollectionName, embedding, "", topK)
	if err != nil {
		log.Fatalf("Search failed: %v", err)
	}

	reranker := rerank.NewReranker(rerank.DefaultTimeDecayConfig())
	ranked := reranker.Rerank(results, time.Now())

	fmt.Printf("%-5s %-34s %-12s %-10s %-10s %-10s\n",
		"Rank", "WindowID", "End Date", "Score", "Weight", "Final")
	fmt.Println("------------------------------------------------------------------------------------------")

	rank := 0
	for _, r := range ranked {
		// The query window itself shows up if it was ingested.
		if r.WindowID == queryID {
			continue
		}
		rank++
		fmt.Printf("%-5d %-34s %-12s %-.4f     %-.4f     %-.4f\n",
			rank, r.WindowID, r.EndDate.Format("2006-01-02"),
			r.OriginalScore, r.TimeWeight, r.FinalScore)
	}
}

func parseFlags(cfg *config.Config) int {
	topK := flag.Int("topk", 10, "Top K results")
	flag.StringVar(&cfg.DuckDBPath, "duckdb", cfg.DuckDBPath, "DuckDB file path")
	flag.StringVar(&cfg.MilvusAddr, "milvus", cfg.MilvusAddr, "Milvus server address")
	flag.IntVar(&cfg.TopTracks, "tracks", cfg.TopTracks, "Track universe size")
	flag.IntVar(&cfg.WindowSize, "window", cfg.WindowSize, "Window length in days")
	flag.IntVar(&cfg.Horizon, "horizon", cfg.Horizon, "Forecast horizon in days")
	flag.BoolVar(&cfg.AdvancedFeatures, "advanced", cfg.AdvancedFeatures, "Use the 9-feature layout")
	flag.Parse()
	return *topK
}
