package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Generates a synthetic streaming-chart CSV for local runs: a handful
// of tracks with random-walk stream counts plus fixed audio scores.
func main() {
	tracks := flag.Int("tracks", 15, "Number of tracks")
	days := flag.Int("days", 60, "Number of chart days")
	start := flag.String("start", "2025-01-01", "First chart date (YYYY-MM-DD)")
	seed := flag.Int64("seed", 42, "Random seed")
	output := flag.String("output", "data/sample_chart.csv", "Output CSV file path")
	flag.Parse()

	startDate, err := time.Parse("2006-01-02", *start)
	if err != nil {
		log.Fatalf("Bad start date: %v", err)
	}

	rng := rand.New(rand.NewSource(*seed))

	if err := os.MkdirAll(filepath.Dir(*output), 0755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	file, err := os.Create(*output)
	if err != nil {
		log.Fatalf("Failed to create output file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	writer.Write([]string{"date", "track_id", "streams", "danceability", "energy", "valence", "acousticness"})

	type trackState struct {
		id           string
		streams      float64
		drift        float64
		danceability float64
		energy       float64
		valence      float64
		acousticness float64
	}

	states := make([]trackState, *tracks)
	for i := range states {
		states[i] = trackState{
			id:           fmt.Sprintf("track_%03d", i+1),
			streams:      50000 + rng.Float64()*500000,
			drift:        (rng.Float64() - 0.45) * 0.03, // slight upward bias
			danceability: 0.3 + rng.Float64()*0.6,
			energy:       0.3 + rng.Float64()*0.6,
			valence:      0.2 + rng.Float64()*0.7,
			acousticness: rng.Float64() * 0.8,
		}
	}

	rows := 0
	for d := 0; d < *days; d++ {
		date := startDate.AddDate(0, 0, d).Format("2006-01-02")
		for i := range states {
			s := &states[i]

			// Random walk with per-track drift and weekly seasonality.
			seasonal := 1 + 0.05*math.Sin(2*math.Pi*float64(d)/7)
			shock := 1 + (rng.Float64()-0.5)*0.2
			s.streams = s.streams * (1 + s.drift) * seasonal * shock
			if s.streams < 1000 {
				s.streams = 1000
			}

			writer.Write([]string{
				date,
				s.id,
				strconv.FormatFloat(math.Round(s.streams), 'f', 0, 64),
				strconv.FormatFloat(s.danceability, 'f', 3, 64),
				strconv.FormatFloat(s.energy, 'f', 3, 64),
				strconv.FormatFloat(s.valence, 'f', 3, 64),
				strconv.FormatFloat(s.acousticness, 'f', 3, 64),
			})
			rows++
		}
	}

	log.Printf("Wrote %d rows (%d tracks × %d days) to %s", rows, *tracks, *days, *output)
}
