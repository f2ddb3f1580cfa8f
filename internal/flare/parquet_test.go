package flare

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventsParquetRoundTrip(t *testing.T) {
	events := []Event{
		mkEvent(time.Date(2016, 1, 2, 1, 56, 0, 0, time.UTC), "B1.2", SourceNOAAReport),
		mkEvent(time.Date(2017, 9, 6, 12, 2, 0, 0, time.UTC), "X9.3", SourceHEK),
	}

	path := filepath.Join(t.TempDir(), "events.parquet")
	require.NoError(t, WriteEvents(path, events))

	got, err := ReadEvents(path)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for i := range events {
		assert.True(t, events[i].Timestamp.Equal(got[i].Timestamp))
		assert.Equal(t, events[i].Class, got[i].Class)
		assert.Equal(t, events[i].Letter, got[i].Letter)
		assert.Equal(t, events[i].Magnitude, got[i].Magnitude)
		assert.Equal(t, events[i].Source, got[i].Source)
		assert.Equal(t, events[i].Rank(), got[i].Rank())
	}
}

func TestWriteEventsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.parquet")
	require.NoError(t, WriteEvents(path, nil))

	got, err := ReadEvents(path)
	require.NoError(t, err)
	assert.Empty(t, got)
}
