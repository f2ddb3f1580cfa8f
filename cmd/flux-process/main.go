// flux-process - Normalize GOES X-ray flux archives onto a uniform grid
//
// Reads raw flux files (CSV tables or SWPC JSON feeds, plain or .gz) with a
// fixed-size worker pool, merges them in deterministic file order, resamples
// onto a fixed-step grid with mean aggregation, interpolates across short
// gaps only, applies the log floor, and writes the normalized series.
//
// Build: CGO_ENABLED=0 go build -ldflags="-s -w" -o build/flux-process ./cmd/flux-process

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"sort"
	"syscall"
	"time"

	"github.com/flarelab/flarecast/internal/common"
	"github.com/flarelab/flarecast/internal/flux"
)

// Version can be overridden at build time via -ldflags
var Version = "1.0.0"

func main() {
	cfg := common.DefaultConfig()
	defaults := flux.DefaultNormalizeConfig()

	sourceDir := flag.String("source-dir", cfg.RawFluxDir(), "Raw flux source directory")
	outPath := flag.String("out", filepath.Join(cfg.InterimDir(), "flux.parquet"), "Output flux parquet file")
	workDir := flag.String("work-dir", filepath.Join(cfg.InterimDir(), "flux-parts"), "Partial artifact directory")
	workers := flag.Int("workers", runtime.NumCPU(), "Number of reader workers")
	step := flag.Duration("step", defaults.Step, "Grid step")
	maxGap := flag.Int("max-gap", defaults.MaxInterpGap, "Longest gap (ticks) bridged by interpolation")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "flux-process v%s - X-ray Flux Normalizer\n\n", Version)
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS] [files...]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Merges raw GOES XRS flux files onto a uniform time grid.\n\n")
		fmt.Fprintf(os.Stderr, "Supported formats:\n")
		fmt.Fprintf(os.Stderr, "  - CSV tables (timestamp,flux; header optional)\n")
		fmt.Fprintf(os.Stderr, "  - SWPC GOES X-ray JSON feeds (.json or .txt)\n\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	log.Println("=========================================================")
	log.Printf("Flux Process v%s", Version)
	log.Println("=========================================================")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("\nShutdown requested...")
		cancel()
	}()

	// Discover files
	var files []string
	if len(flag.Args()) > 0 {
		files = flag.Args()
	} else {
		entries, err := os.ReadDir(*sourceDir)
		if err != nil {
			log.Fatalf("Cannot read source directory: %v", err)
		}
		for _, e := range entries {
			if !e.IsDir() {
				files = append(files, filepath.Join(*sourceDir, e.Name()))
			}
		}
	}
	sort.Strings(files)

	if len(files) == 0 {
		log.Fatal("No files to process")
	}
	log.Printf("Found %d file(s), %d worker(s)", len(files), *workers)

	startTime := time.Now()
	stats := common.NewStats()
	stats.StartReporter()

	parts, err := flux.ProcessFiles(ctx, files, *workers, *workDir, stats)
	stats.StopReporter()
	if err != nil {
		log.Fatalf("Processing failed: %v", err)
	}

	merged, err := flux.MergeParts(parts)
	if err != nil {
		log.Fatalf("Merge failed: %v", err)
	}
	log.Printf("Merged %d unique samples from %d partial artifact(s)", len(merged), len(parts))

	ncfg := flux.NormalizeConfig{
		Step:         *step,
		MaxInterpGap: *maxGap,
		Epsilon:      defaults.Epsilon,
	}
	series := flux.Normalize(merged, ncfg)

	present := 0
	for _, s := range series {
		if !s.Missing {
			present++
		}
	}

	if err := os.MkdirAll(filepath.Dir(*outPath), 0755); err != nil {
		log.Fatalf("Cannot create output directory: %v", err)
	}
	if err := flux.WriteSeries(*outPath, series); err != nil {
		log.Fatalf("Write error: %v", err)
	}

	elapsed := time.Since(startTime)

	log.Println()
	log.Println("=========================================================")
	log.Println("Final Statistics")
	log.Println("=========================================================")
	log.Printf("Files Read:      %d", stats.Files())
	log.Printf("Raw Samples:     %d", stats.Rows())
	log.Printf("Grid Ticks:      %d (%d present, %d missing)", len(series), present, len(series)-present)
	if len(series) > 0 {
		log.Printf("Grid Range:      %s .. %s",
			series[0].Timestamp.Format(time.RFC3339),
			series[len(series)-1].Timestamp.Format(time.RFC3339))
	}
	log.Printf("Output:          %s", *outPath)
	log.Printf("Elapsed:         %v", elapsed.Round(time.Millisecond))
	log.Printf("Rate:            %.0f samples/sec", float64(stats.Rows())/elapsed.Seconds())
	log.Println("=========================================================")
}
