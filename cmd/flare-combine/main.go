// flare-combine - Parse flare catalogues and build the combined event list
//
// Supported sources:
//   - NOAA yearly GOES XRS reports (goes-xrs-report_YYYY.txt, plain or .gz)
//   - HEK CSV exports (hek_*.csv)
//
// Reports are parsed with a positional-first, tokenized-fallback strategy
// chain, merged with the structured exports, deduplicated by peak time
// keeping the strongest classification, and written to a parquet artifact.
//
// Build: CGO_ENABLED=0 go build -ldflags="-s -w" -o build/flare-combine ./cmd/flare-combine

package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/flarelab/flarecast/internal/common"
	"github.com/flarelab/flarecast/internal/flare"
)

// Version can be overridden at build time via -ldflags
var Version = "1.0.0"

func main() {
	cfg := common.DefaultConfig()

	sourceDir := flag.String("source-dir", cfg.RawFlareDir(), "Flare catalogue source directory")
	outPath := flag.String("out", filepath.Join(cfg.InterimDir(), "events.parquet"), "Output events parquet file")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "flare-combine v%s - Flare Catalogue Combiner\n\n", Version)
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS] [files...]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Parses NOAA GOES XRS yearly reports and HEK CSV exports,\n")
		fmt.Fprintf(os.Stderr, "deduplicates by peak time, and writes the combined event list.\n\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	log.Println("=========================================================")
	log.Printf("Flare Combine v%s", Version)
	log.Println("=========================================================")

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
	log.Printf("Found %d file(s)", len(files))

	startTime := time.Now()
	var all []flare.Event
	sourcesUsed := 0
	sourcesSkipped := 0

	for _, path := range files {
		name := filepath.Base(path)

		if flare.SkipReportFile(name) {
			log.Printf("[%s] Skipping (known-unusable variant)", name)
			sourcesSkipped++
			continue
		}

		var events []flare.Event
		var report flare.SourceReport
		var err error

		if strings.HasSuffix(strings.ToLower(name), ".csv") {
			f, oerr := os.Open(path)
			if oerr != nil {
				log.Printf("[%s] Excluded: %v", name, oerr)
				sourcesSkipped++
				continue
			}
			events, report, err = flare.ParseHEK(f, name)
			f.Close()
		} else {
			events, report, err = flare.ParseReportFile(path)
		}

		if err != nil {
			// Schema mismatches and empty sources exclude the file, not the run.
			switch {
			case errors.Is(err, flare.ErrSchemaMismatch):
				log.Printf("[%s] Excluded (schema mismatch): %v", name, err)
			case errors.Is(err, flare.ErrEmptySource):
				log.Printf("[%s] Excluded (no parseable events)", name)
			default:
				log.Printf("[%s] Excluded: %v", name, err)
			}
			sourcesSkipped++
			continue
		}

		log.Printf("[%s] Parsed %d events (%s variant, %d lines, %d failed)",
			name, report.Events, report.Variant, report.Stats.LinesRead, report.Stats.Failed)
		all = append(all, events...)
		sourcesUsed++
	}

	if len(all) == 0 {
		log.Fatalf("No usable catalogue data: %v", flare.ErrNoCatalogueData)
	}

	deduped := flare.Deduplicate(all)

	if err := os.MkdirAll(filepath.Dir(*outPath), 0755); err != nil {
		log.Fatalf("Cannot create output directory: %v", err)
	}
	if err := flare.WriteEvents(*outPath, deduped); err != nil {
		log.Fatalf("Write error: %v", err)
	}

	// Per-class distribution of the final list
	classCounts := make(map[byte]int)
	for _, ev := range deduped {
		classCounts[ev.Letter]++
	}

	elapsed := time.Since(startTime)

	log.Println()
	log.Println("=========================================================")
	log.Println("Final Statistics")
	log.Println("=========================================================")
	log.Printf("Sources Used:    %d (%d excluded)", sourcesUsed, sourcesSkipped)
	log.Printf("Raw Events:      %d", len(all))
	log.Printf("After Dedup:     %d", len(deduped))
	for _, letter := range []byte{'A', 'B', 'C', 'M', 'X'} {
		if classCounts[letter] > 0 {
			log.Printf("  Class %c:       %d", letter, classCounts[letter])
		}
	}
	log.Printf("Output:          %s", *outPath)
	log.Printf("Elapsed:         %v", elapsed.Round(time.Millisecond))
	log.Println("=========================================================")
}
