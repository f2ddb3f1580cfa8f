// dataset-build - Build the labeled forecasting dataset
//
// Joins the normalized flux series with the deduplicated flare events:
// aligns events onto the grid, computes look-ahead maximum-intensity
// labels, computes look-back rolling features, and writes the canonical
// feature/label table. Optionally emits fixed-length sequence tensors.
//
// Build: CGO_ENABLED=0 go build -ldflags="-s -w" -o build/dataset-build ./cmd/dataset-build

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/flarelab/flarecast/internal/common"
	"github.com/flarelab/flarecast/internal/dataset"
	"github.com/flarelab/flarecast/internal/flare"
	"github.com/flarelab/flarecast/internal/flux"
)

// Version can be overridden at build time via -ldflags
var Version = "1.0.0"

func main() {
	cfg := common.DefaultConfig()
	defaults := dataset.DefaultConfig()

	fluxPath := flag.String("flux", filepath.Join(cfg.InterimDir(), "flux.parquet"), "Normalized flux parquet file")
	eventsPath := flag.String("events", filepath.Join(cfg.InterimDir(), "events.parquet"), "Deduplicated events parquet file")
	outPath := flag.String("out", filepath.Join(cfg.ProcessedDir(), "dataset.parquet"), "Output dataset parquet file")
	seqPath := flag.String("seq-out", filepath.Join(cfg.ProcessedDir(), "sequences.parquet"), "Output sequences parquet file")
	horizon := flag.Duration("horizon", defaults.Horizon, "Label look-ahead horizon")
	seqLen := flag.Int("seq-len", 0, "Sequence length in ticks (0 disables sequence output)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "dataset-build v%s - Forecasting Dataset Builder\n\n", Version)
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Joins the normalized flux series with the flare event list into\n")
		fmt.Fprintf(os.Stderr, "the labeled feature table consumed by model training.\n\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	log.Println("=========================================================")
	log.Printf("Dataset Build v%s", Version)
	log.Println("=========================================================")

	startTime := time.Now()

	series, err := flux.ReadSeries(*fluxPath)
	if err != nil {
		log.Fatalf("Cannot read flux series: %v", err)
	}
	log.Printf("[%s] Loaded %d grid ticks", filepath.Base(*fluxPath), len(series))

	events, err := flare.ReadEvents(*eventsPath)
	if err != nil {
		log.Fatalf("Cannot read events: %v", err)
	}
	log.Printf("[%s] Loaded %d events", filepath.Base(*eventsPath), len(events))

	bcfg := defaults
	bcfg.Horizon = *horizon
	bcfg.SequenceLength = *seqLen

	table, err := dataset.Build(series, events, bcfg)
	if err != nil {
		log.Fatalf("Build failed: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(*outPath), 0755); err != nil {
		log.Fatalf("Cannot create output directory: %v", err)
	}
	if err := dataset.WriteTable(*outPath, table); err != nil {
		log.Fatalf("Write error: %v", err)
	}

	sequences := 0
	if bcfg.SequenceLength > 0 {
		set := dataset.BuildSequences(table, bcfg.SequenceLength, bcfg.GridStep)
		if err := dataset.WriteSequences(*seqPath, set); err != nil {
			log.Fatalf("Sequence write error: %v", err)
		}
		sequences = len(set.Data)
		log.Printf("Wrote %d sequences of length %d to %s", sequences, bcfg.SequenceLength, *seqPath)
	}

	// Label distribution over the final table
	labelCounts := make(map[int8]int)
	for _, row := range table.Rows {
		labelCounts[row.Label]++
	}

	elapsed := time.Since(startTime)

	log.Println()
	log.Println("=========================================================")
	log.Println("Final Statistics")
	log.Println("=========================================================")
	log.Printf("Grid Ticks:      %d", len(series))
	log.Printf("Dataset Rows:    %d (%d dropped for gaps/history)", len(table.Rows), len(series)-len(table.Rows))
	log.Printf("Features:        %d", len(table.Names))
	for label := int8(0); label <= 4; label++ {
		if n := labelCounts[label]; n > 0 {
			pct := 100 * float64(n) / float64(len(table.Rows))
			log.Printf("  Label %d:       %d (%.2f%%)", label, n, pct)
		}
	}
	if sequences > 0 {
		log.Printf("Sequences:       %d", sequences)
	}
	log.Printf("Horizon:         %v", *horizon)
	log.Printf("Output:          %s", *outPath)
	log.Printf("Elapsed:         %v", elapsed.Round(time.Millisecond))
	log.Println("=========================================================")
}
