package dataset

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flarelab/flarecast/internal/flare"
)

func TestTableParquetRoundTrip(t *testing.T) {
	series := constantSeries(200, -6)
	for i := range series {
		series[i].ValueLog += float64(i%7) * 0.01
	}
	ev := event(gridStart.Add(190*time.Minute), 'M')

	table, err := Build(series, []flare.Event{ev}, DefaultConfig())
	require.NoError(t, err)
	require.NotEmpty(t, table.Rows)

	path := filepath.Join(t.TempDir(), "dataset.parquet")
	require.NoError(t, WriteTable(path, table))

	got, err := ReadTable(path)
	require.NoError(t, err)
	require.Equal(t, table.Names, got.Names)
	require.Len(t, got.Rows, len(table.Rows))
	for k := range table.Rows {
		assert.True(t, table.Rows[k].Timestamp.Equal(got.Rows[k].Timestamp))
		assert.Equal(t, table.Rows[k].Label, got.Rows[k].Label)
		assert.Equal(t, table.Rows[k].Features, got.Rows[k].Features)
	}
}

func TestWriteTableRejectsNonCanonicalSchema(t *testing.T) {
	series := constantSeries(20, -6)
	table, err := Build(series, nil, Config{
		GridStep: time.Minute,
		Horizon:  60 * time.Minute,
		Windows:  []time.Duration{5 * time.Minute},
	})
	require.NoError(t, err)

	err = WriteTable(filepath.Join(t.TempDir(), "bad.parquet"), table)
	assert.Error(t, err)
}

func TestSequenceParquetWrite(t *testing.T) {
	table := &Table{
		Names: append([]string(nil), canonicalNames...),
	}
	feats := make([]float64, len(canonicalNames))
	for m := 0; m < 5; m++ {
		table.Rows = append(table.Rows, Row{
			Timestamp: gridStart.Add(time.Duration(m) * time.Minute),
			Features:  append([]float64(nil), feats...),
		})
	}

	set := BuildSequences(table, 3, time.Minute)
	require.Len(t, set.Data, 3)

	path := filepath.Join(t.TempDir(), "sequences.parquet")
	require.NoError(t, WriteSequences(path, set))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
