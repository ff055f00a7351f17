package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/tunogya/crescendo/pkg/config"
	"github.com/tunogya/crescendo/pkg/logger"
	"github.com/tunogya/crescendo/pkg/model"
	"github.com/tunogya/crescendo/pkg/pipeline"
	queue "github.com/tunogya/crescendo/pkg/queue/nats"
	"github.com/tunogya/crescendo/pkg/store/duckdb"
	"github.com/tunogya/crescendo/pkg/store/milvus"
	"github.com/tunogya/crescendo/pkg/train"
)

// Flags holds ingest invocation options on top of the environment
// configuration.
type Flags struct {
	CSVPath      string
	BatchSize    int
	Train        bool
	TrainTimeout time.Duration
}

func main() {
	log := logger.New()
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	flags := parseFlags(&cfg)

	log.Infow("Starting ingest",
		"csv", flags.CSVPath,
		"tracks", cfg.TopTracks,
		"window", cfg.WindowSize,
		"horizon", cfg.Horizon,
	)

	ctx := context.Background()

	// Run the full pipeline: parse, select, normalize, window.
	raw, err := os.ReadFile(flags.CSVPath)
	if err != nil {
		log.Fatalf("Failed to read CSV: %v", err)
	}

	state, err := pipeline.Run(string(raw), cfg.Pipeline())
	if err != nil {
		log.Fatalf("Pipeline failed: %v", err)
	}
	defer state.Release()

	log.Infow("Pipeline complete",
		"records", len(state.Records),
		"tracks", len(state.TrackIDs),
		"dates", len(state.Dates),
		"samples", state.Dataset.Samples(),
	)

	// Persist records, tracks, and the window index.
	log.Info("Connecting to DuckDB...")
	duckClient, err := duckdb.NewClient(cfg.DuckDBPath)
	if err != nil {
		log.Fatalf("Failed to connect to DuckDB: %v", err)
	}
	defer duckClient.Close()

	if err := duckdb.InitializeSchema(duckClient); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	recordRepo := duckdb.NewRecordRepo(duckClient)
	trackRepo := duckdb.NewTrackRepo(duckClient)
	windowRepo := duckdb.NewWindowRepo(duckClient)

	if err := recordRepo.InsertBatch(ctx, state.Records); err != nil {
		log.Fatalf("Failed to insert records: %v", err)
	}
	if err := trackRepo.Replace(ctx, state.Tracks); err != nil {
		log.Fatalf("Failed to replace tracks: %v", err)
	}
	if err := windowRepo.InsertBatch(ctx, duckdb.WindowEntries(state.Dataset)); err != nil {
		log.Fatalf("Failed to insert windows: %v", err)
	}
	log.Info("DuckDB writes complete")

	// Store sample vectors for trend-shape similarity search.
	if err := storeVectors(ctx, log, cfg, state, flags.BatchSize); err != nil {
		log.Fatalf("Failed to store vectors: %v", err)
	}

	if !flags.Train {
		log.Info("Ingest complete (training not requested)")
		return
	}

	// Hand the split to the external trainer and stream progress.
	log.Info("Connecting to NATS...")
	natsClient, err := queue.NewClient(queue.Config{
		URL:        cfg.NATSUrl,
		StreamName: "crescendo",
	})
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	defer natsClient.Close()

	subjects := []string{
		queue.SubjectRecordWrite,
		queue.SubjectDatasetPublish,
		queue.SubjectPredictionWrite,
	}
	if err := natsClient.CreateStream(ctx, subjects); err != nil {
		log.Fatalf("Failed to create stream: %v", err)
	}

	spec := train.RunSpec{
		RunID:      train.NewRunID(cfg.WindowSize, cfg.Horizon, len(state.TrackIDs), len(cfg.Features())),
		WindowSize: cfg.WindowSize,
		Horizon:    cfg.Horizon,
		TrackIDs:   state.TrackIDs,
		Features:   cfg.Features(),
	}
	trainer := train.NewRemoteTrainer(natsClient, spec)

	log.Infow("Publishing dataset to trainer", "run_id", spec.RunID)

	trainCtx, cancel := context.WithTimeout(ctx, flags.TrainTimeout)
	defer cancel()

	err = trainer.Train(trainCtx, state.Split, train.DefaultOptions(), func(p train.Progress) {
		log.Infow("Training progress",
			"run_id", p.RunID,
			"epoch", p.Epoch,
			"epochs", p.Epochs,
			"loss", p.Loss,
			"accuracy", p.Accuracy,
			"early_stop_count", p.EarlyStopCount,
		)
	})
	if err != nil {
		log.Fatalf("Training failed: %v", err)
	}

	log.Infow("Training complete", "run_id", spec.RunID)
}

// storeVectors writes one embedding per window sample to Milvus and
// makes the collection searchable.
func storeVectors(ctx context.Context, log *zap.SugaredLogger, cfg config.Config, state *pipeline.State, batchSize int) error {
	log.Infof("Connecting to Milvus at %s...", cfg.MilvusAddr)
	milvusClient, err := milvus.NewClient(ctx, milvus.Config{Address: cfg.MilvusAddr})
	if err != nil {
		return fmt.Errorf("failed to connect to milvus: %w", err)
	}
	defer milvusClient.Close()

	ds := state.Dataset
	dim := cfg.WindowSize * ds.FeatureCount * len(ds.TrackIDs)

	collectionCfg := milvus.CollectionConfig{
		Name:      milvus.DefaultCollectionName,
		Dimension: dim,
		Shards:    2,
	}
	if err := milvusClient.CreateCollection(ctx, collectionCfg); err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	vectors := make([]*milvus.WindowData, 0, ds.Samples())
	for i := 0; i < ds.Samples(); i++ {
		endDate, err := model.ParseDate(ds.EndDates[i])
		if err != nil {
			log.Warnf("Skipping sample with bad end date %q: %v", ds.EndDates[i], err)
			continue
		}
		vectors = append(vectors, &milvus.WindowData{
			WindowID: model.GenerateWindowID(
				ds.EndDates[i], ds.WindowSize, ds.Horizon, len(ds.TrackIDs), ds.FeatureCount,
			),
			Embedding:    ds.SampleVector(i),
			EndDate:      endDate,
			TrackCount:   int32(len(ds.TrackIDs)),
			FeatureCount: int32(ds.FeatureCount),
		})
	}

	for i := 0; i < len(vectors); i += batchSize {
		end := i + batchSize
		if end > len(vectors) {
			end = len(vectors)
		}
		if err := milvusClient.InsertBatch(ctx, milvus.DefaultCollectionName, vectors[i:end]); err != nil {
			return fmt.Errorf("failed to insert vectors: %w", err)
		}
	}

	if err := milvusClient.Flush(ctx, milvus.DefaultCollectionName); err != nil {
		log.Warnf("Failed to flush collection: %v", err)
	}
	if err := milvusClient.CreateIndex(ctx, milvus.DefaultCollectionName, "embedding"); err != nil {
		log.Warnf("Failed to create index: %v", err)
	}
	if err := milvusClient.LoadCollection(ctx, milvus.DefaultCollectionName); err != nil {
		log.Warnf("Failed to load collection: %v", err)
	}

	log.Infof("Stored %d vectors (dim=%d)", len(vectors), dim)
	return nil
}

func parseFlags(cfg *config.Config) Flags {
	flags := Flags{}

	flag.StringVar(&flags.CSVPath, "csv", "", "Path to CSV file with chart data")
	flag.IntVar(&cfg.TopTracks, "tracks", cfg.TopTracks, "Track universe size")
	flag.IntVar(&cfg.WindowSize, "window", cfg.WindowSize, "Window length in days")
	flag.IntVar(&cfg.Horizon, "horizon", cfg.Horizon, "Forecast horizon in days")
	flag.StringVar(&cfg.DuckDBPath, "duckdb", cfg.DuckDBPath, "DuckDB file path")
	flag.StringVar(&cfg.MilvusAddr, "milvus", cfg.MilvusAddr, "Milvus server address")
	flag.StringVar(&cfg.NATSUrl, "nats", cfg.NATSUrl, "NATS server URL")
	flag.BoolVar(&cfg.AdvancedFeatures, "advanced", cfg.AdvancedFeatures, "Use the 9-feature layout")
	flag.IntVar(&flags.BatchSize, "batch", 1000, "Batch size for vector inserts")
	flag.BoolVar(&flags.Train, "train", false, "Publish the dataset to the trainer and wait")
	flag.DurationVar(&flags.TrainTimeout, "train-timeout", 30*time.Minute, "Maximum time to wait for training")

	flag.Parse()

	if flags.CSVPath == "" {
		fmt.Println("Usage: ingest -csv <path> [options]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	return flags
}
