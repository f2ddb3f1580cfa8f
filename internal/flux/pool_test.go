package flux

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flarelab/flarecast/internal/common"
)

// writeSourceFiles lays down n small CSV sources with disjoint minute
// ranges and returns their paths in lexicographic order.
func writeSourceFiles(t *testing.T, dir string, n int) []string {
	t.Helper()
	base := time.Date(2017, 9, 6, 0, 0, 0, 0, time.UTC)

	var paths []string
	for i := 0; i < n; i++ {
		path := filepath.Join(dir, fmt.Sprintf("xrs_%02d.csv", i))
		content := "timestamp,flux\n"
		for m := 0; m < 5; m++ {
			ts := base.Add(time.Duration(i*5+m) * time.Minute)
			content += fmt.Sprintf("%s,%g\n", ts.Format("2006-01-02T15:04:05"), float64(i*5+m+1)*1e-7)
		}
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		paths = append(paths, path)
	}
	return paths
}

func newQuietStats() *common.Stats {
	s := common.NewStats()
	s.SetSilent(true)
	return s
}

func TestProcessFilesMergesInFileOrder(t *testing.T) {
	dir := t.TempDir()
	paths := writeSourceFiles(t, dir, 4)

	parts, err := ProcessFiles(context.Background(), paths, 2, filepath.Join(dir, "work"), newQuietStats())
	require.NoError(t, err)
	require.Len(t, parts, 2)

	merged, err := MergeParts(parts)
	require.NoError(t, err)
	require.Len(t, merged, 20)
	for i := 1; i < len(merged); i++ {
		assert.True(t, merged[i-1].Timestamp.Before(merged[i].Timestamp))
	}
	assert.InDelta(t, 1e-7, merged[0].Value, 1e-18)
	assert.InDelta(t, 20e-7, merged[19].Value, 1e-18)
}

func TestProcessFilesDeterministicAcrossRuns(t *testing.T) {
	dir := t.TempDir()
	paths := writeSourceFiles(t, dir, 6)

	stats := newQuietStats()
	partsA, err := ProcessFiles(context.Background(), paths, 3, filepath.Join(dir, "work-a"), stats)
	require.NoError(t, err)
	partsB, err := ProcessFiles(context.Background(), paths, 3, filepath.Join(dir, "work-b"), stats)
	require.NoError(t, err)

	require.Len(t, partsB, len(partsA))
	for i := range partsA {
		a, err := os.ReadFile(partsA[i])
		require.NoError(t, err)
		b, err := os.ReadFile(partsB[i])
		require.NoError(t, err)
		assert.Equal(t, a, b, "partial artifact %d differs between reruns", i)
	}
}

func TestProcessFilesWorkerCountDoesNotChangeMerge(t *testing.T) {
	dir := t.TempDir()
	paths := writeSourceFiles(t, dir, 5)

	parts1, err := ProcessFiles(context.Background(), paths, 1, filepath.Join(dir, "w1"), newQuietStats())
	require.NoError(t, err)
	parts4, err := ProcessFiles(context.Background(), paths, 4, filepath.Join(dir, "w4"), newQuietStats())
	require.NoError(t, err)

	merged1, err := MergeParts(parts1)
	require.NoError(t, err)
	merged4, err := MergeParts(parts4)
	require.NoError(t, err)
	assert.Equal(t, merged1, merged4)
}

func TestProcessFilesSkipsBrokenFile(t *testing.T) {
	dir := t.TempDir()
	paths := writeSourceFiles(t, dir, 2)
	broken := filepath.Join(dir, "xrs_bad.csv")
	require.NoError(t, os.WriteFile(broken, []byte("timestamp,flux\n"), 0o644))
	paths = append(paths, broken)

	parts, err := ProcessFiles(context.Background(), paths, 2, filepath.Join(dir, "work"), newQuietStats())
	require.NoError(t, err)

	merged, err := MergeParts(parts)
	require.NoError(t, err)
	assert.Len(t, merged, 10)
}

func TestProcessFilesNoInput(t *testing.T) {
	_, err := ProcessFiles(context.Background(), nil, 2, t.TempDir(), newQuietStats())
	assert.ErrorIs(t, err, ErrNoFluxData)
}

func TestProcessFilesCancelled(t *testing.T) {
	dir := t.TempDir()
	paths := writeSourceFiles(t, dir, 3)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ProcessFiles(ctx, paths, 2, filepath.Join(dir, "work"), newQuietStats())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSeriesParquetRoundTrip(t *testing.T) {
	raw := []RawSample{
		{Timestamp: time.Date(2017, 9, 6, 12, 0, 0, 0, time.UTC), Value: 1e-6},
		{Timestamp: time.Date(2017, 9, 6, 12, 8, 0, 0, time.UTC), Value: 5e-6},
	}
	series := Normalize(raw, DefaultNormalizeConfig())

	path := filepath.Join(t.TempDir(), "flux.parquet")
	require.NoError(t, WriteSeries(path, series))

	got, err := ReadSeries(path)
	require.NoError(t, err)
	assert.Equal(t, series, got)
}
