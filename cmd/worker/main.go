package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/tunogya/crescendo/pkg/analysis"
	"github.com/tunogya/crescendo/pkg/config"
	"github.com/tunogya/crescendo/pkg/logger"
	"github.com/tunogya/crescendo/pkg/model"
	queue "github.com/tunogya/crescendo/pkg/queue/nats"
	"github.com/tunogya/crescendo/pkg/store/duckdb"
	"github.com/tunogya/crescendo/pkg/train"
)

func main() {
	log := logger.New()
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	parseFlags(&cfg)

	log.Infow("Starting evaluation worker", "nats", cfg.NATSUrl, "duckdb", cfg.DuckDBPath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

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
	metricsRepo := duckdb.NewMetricsRepo(duckClient)

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
	log.Info("NATS stream ready")

	// Persist record batches published by external producers.
	recordConsumer, err := natsClient.Subscribe(ctx, queue.SubjectRecordWrite, "record-writer", func(msg jetstream.Msg) error {
		batch, err := queue.DecodeRecordBatch(msg.Data())
		if err != nil {
			log.Errorf("Failed to decode record batch: %v", err)
			return err
		}
		if len(batch.Records) == 0 {
			return nil
		}
		if err := recordRepo.InsertBatch(ctx, batch.Records); err != nil {
			log.Errorf("Failed to insert records: %v", err)
			return err
		}
		log.Infof("Inserted %d records", len(batch.Records))
		return nil
	})
	if err != nil {
		log.Fatalf("Failed to subscribe to record writes: %v", err)
	}
	defer recordConsumer.Stop()

	// Evaluate finished training runs and persist the report.
	predConsumer, err := natsClient.Subscribe(ctx, queue.SubjectPredictionWrite, "evaluation-worker", func(msg jetstream.Msg) error {
		return evaluateRun(ctx, log, natsClient, trackRepo, metricsRepo, msg.Data())
	})
	if err != nil {
		log.Fatalf("Failed to subscribe to prediction writes: %v", err)
	}
	defer predConsumer.Stop()

	log.Info("Evaluation worker started, waiting for messages...")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("Shutting down evaluation worker...")
}

// evaluateRun rebuilds the tensors from a finished run's prediction
// batch, runs the full analysis against the run's model, and stores
// the report.
func evaluateRun(ctx context.Context, log *zap.SugaredLogger, natsClient *queue.Client, trackRepo *duckdb.TrackRepo, metricsRepo *duckdb.MetricsRepo, data []byte) error {
	batch, err := queue.DecodePredictionBatch(data)
	if err != nil {
		log.Errorf("Failed to decode prediction batch: %v", err)
		return err
	}

	preds := batch.Predictions.Tensor2()
	targets := batch.Targets.Tensor2()
	inputs := batch.Inputs.Tensor3()
	if preds == nil || targets == nil {
		log.Errorf("Malformed tensors in prediction batch for run %s", batch.RunID)
		return model.ErrValidation
	}
	defer preds.Release()
	defer targets.Release()
	if inputs != nil {
		defer inputs.Release()
	}

	features, err := model.FeatureSetFromNames(batch.FeatureNames)
	if err != nil {
		log.Errorf("Bad feature layout in prediction batch: %v", err)
		return err
	}

	tracks := loadTracks(ctx, log, trackRepo, batch.TrackIDs)

	predictor := train.AttachRemoteTrainer(natsClient, batch.RunID)
	evaluator := analysis.NewEvaluator(predictor, features, batch.TrackIDs, tracks, batch.Horizon)

	report, err := evaluator.Evaluate(ctx, batch.RunID, inputs, preds, targets)
	if err != nil {
		log.Errorf("Evaluation failed for run %s: %v", batch.RunID, err)
		return err
	}

	if err := metricsRepo.SaveReport(ctx, report); err != nil {
		log.Errorf("Failed to save report for run %s: %v", batch.RunID, err)
		return err
	}

	logReport(log, report)
	return nil
}

// loadTracks resolves track names from the stored universe; tracks
// missing from the store keep their ID as the display name.
func loadTracks(ctx context.Context, log *zap.SugaredLogger, trackRepo *duckdb.TrackRepo, trackIDs []string) map[string]model.Track {
	tracks := make(map[string]model.Track, len(trackIDs))

	stored, err := trackRepo.GetAll(ctx)
	if err != nil {
		log.Warnf("Failed to load track universe, using IDs as names: %v", err)
	}
	byID := make(map[string]model.Track, len(stored))
	for _, t := range stored {
		byID[t.ID] = t
	}

	for _, id := range trackIDs {
		if t, ok := byID[id]; ok {
			tracks[id] = t
		} else {
			tracks[id] = model.Track{ID: id, Name: id}
		}
	}
	return tracks
}

func logReport(log *zap.SugaredLogger, report *analysis.Report) {
	log.Infow("Evaluation complete",
		"run_id", report.RunID,
		"consistent_accuracy", report.ConsistentAccuracy,
	)

	for _, t := range report.TrackAccuracy {
		log.Infow("Track accuracy", "track", t.Name, "accuracy", t.Accuracy)
	}
	for i, acc := range report.DayAccuracy {
		log.Infow("Day accuracy", "day", i+1, "accuracy", acc)
	}
	for _, imp := range report.Importance {
		log.Infow("Feature importance", "feature", imp.Name, "score", imp.Score)
	}
	for _, b := range analysis.TopBreakouts(report.Breakouts, 3) {
		log.Infow("Breakout candidate",
			"track", b.Name,
			"score", b.Score,
			"confidence", b.Confidence,
			"risk", b.RiskLevel,
		)
	}
	for _, w := range report.Warnings {
		log.Warnf("Analysis warning: %s", w)
	}
}

func parseFlags(cfg *config.Config) {
	flag.StringVar(&cfg.NATSUrl, "nats", cfg.NATSUrl, "NATS server URL")
	flag.StringVar(&cfg.DuckDBPath, "duckdb", cfg.DuckDBPath, "DuckDB file path")
	flag.Parse()
}
