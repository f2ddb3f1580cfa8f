// Package flux provides flux series processing utilities.
// This file contains the ingestion worker pool. Parallelism is confined to
// this stage: workers own disjoint batches of source files and write
// private partial artifacts; a single-threaded merge consolidates them.
package flux

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/flarelab/flarecast/internal/common"
)

// ProcessFiles reads source files with a fixed-size worker pool and writes
// one partial parquet artifact per batch into workDir. Paths are processed
// in lexicographic order regardless of worker scheduling: batches are
// contiguous slices of the sorted path list and each worker appends samples
// in its batch's order, so reruns regenerate identical artifacts.
//
// Per-file failures are logged and skipped; only a run that produces no
// samples at all fails, with ErrNoFluxData. On cancellation, completed
// partial artifacts remain on disk and an error is returned so no final
// output gets produced.
func ProcessFiles(ctx context.Context, paths []string, workers int, workDir string, stats *common.Stats) ([]string, error) {
	if len(paths) == 0 {
		return nil, ErrNoFluxData
	}
	if workers <= 0 {
		workers = 1
	}
	if workers > len(paths) {
		workers = len(paths)
	}

	sorted := make([]string, len(paths))
	copy(sorted, paths)
	sort.Strings(sorted)

	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return nil, err
	}

	batchSize := (len(sorted) + workers - 1) / workers
	partPaths := make([]string, workers)
	partErrs := make([]error, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * batchSize
		end := start + batchSize
		if end > len(sorted) {
			end = len(sorted)
		}
		if start >= len(sorted) {
			break
		}

		wg.Add(1)
		go func(worker int, batch []string) {
			defer wg.Done()
			partPaths[worker], partErrs[worker] = processBatch(ctx, worker, batch, workDir, stats)
		}(w, sorted[start:end])
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var parts []string
	for w, p := range partPaths {
		if partErrs[w] != nil {
			return nil, partErrs[w]
		}
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return nil, ErrNoFluxData
	}
	return parts, nil
}

// processBatch reads one worker's files in order and writes its partial
// artifact. Returns an empty path when the whole batch yielded nothing.
func processBatch(ctx context.Context, worker int, batch []string, workDir string, stats *common.Stats) (string, error) {
	var samples []RawSample
	for _, path := range batch {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		fileSamples, err := ReadFile(path)
		if err != nil {
			// Local failure: exclude the file, keep the run alive.
			log.Printf("[%s] Excluded: %v", filepath.Base(path), err)
			continue
		}
		samples = append(samples, fileSamples...)
		stats.AddRows(uint64(len(fileSamples)))
		stats.AddFiles(1)
		if info, err := os.Stat(path); err == nil {
			stats.AddBytes(uint64(info.Size()))
		}
	}
	if len(samples) == 0 {
		return "", nil
	}

	part := filepath.Join(workDir, fmt.Sprintf("flux-part-%04d.parquet", worker))
	if err := WritePart(part, samples); err != nil {
		return "", err
	}
	return part, nil
}

// MergeParts reads partial artifacts in the given order and merges them
// into one duplicate-free raw series, resolving duplicates across batch
// boundaries with the same first-occurrence rule used within a batch.
func MergeParts(parts []string) ([]RawSample, error) {
	series := make([][]RawSample, 0, len(parts))
	for _, p := range parts {
		samples, err := ReadPart(p)
		if err != nil {
			return nil, err
		}
		series = append(series, samples)
	}
	merged := Merge(series)
	if len(merged) == 0 {
		return nil, ErrNoFluxData
	}
	return merged, nil
}
