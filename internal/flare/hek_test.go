package flare

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHEKByColumnName(t *testing.T) {
	// Columns deliberately out of the usual order; extras present.
	src := strings.Join([]string{
		"frm_name,fl_goescls,event_starttime,event_peaktime",
		"SWPC,M1.5,2017-09-06T11:53:00,2017-09-06T12:02:00",
		"SWPC,x9.3,2017-09-06 11:53:00,2017-09-06 12:02:00",
	}, "\n")

	events, report, err := ParseHEK(strings.NewReader(src), "hek_2017.csv")
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, time.Date(2017, 9, 6, 12, 2, 0, 0, time.UTC), events[0].Timestamp)
	assert.Equal(t, "M1.5", events[0].Class)
	assert.Equal(t, SourceHEK, events[0].Source)

	// Class codes are upper-cased on the way in.
	assert.Equal(t, "X9.3", events[1].Class)
	assert.Equal(t, 4, events[1].Rank())

	assert.Equal(t, int64(2), report.Stats.Parsed)
	assert.Equal(t, "structured", report.Variant)
}

func TestParseHEKMissingColumnFailsSource(t *testing.T) {
	src := "frm_name,event_starttime\nSWPC,2017-09-06T11:53:00\n"

	_, _, err := ParseHEK(strings.NewReader(src), "hek_bad.csv")
	assert.ErrorIs(t, err, ErrSchemaMismatch)
}

func TestParseHEKDropsBadRows(t *testing.T) {
	src := strings.Join([]string{
		"event_peaktime,fl_goescls",
		"2017-09-06T12:02:00,M1.5",
		"not-a-time,M1.5",
		"2017-09-06T12:03:00,Q9.9",
		"2017-09-06T12:04:00,",
	}, "\n")

	events, report, err := ParseHEK(strings.NewReader(src), "hek_mixed.csv")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, int64(1), report.Stats.Parsed)
	assert.Equal(t, int64(3), report.Stats.Failed)
}

func TestParseHEKBareClassLetter(t *testing.T) {
	src := "event_peaktime,fl_goescls\n2017-09-06T12:02:00,M\n"

	events, _, err := ParseHEK(strings.NewReader(src), "hek_bare.csv")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, byte('M'), events[0].Letter)
	assert.Equal(t, float64(0), events[0].Magnitude)
	assert.Equal(t, 3, events[0].Rank())
}

func TestParseHEKEmptySource(t *testing.T) {
	src := "event_peaktime,fl_goescls\n"

	_, _, err := ParseHEK(strings.NewReader(src), "hek_empty.csv")
	assert.ErrorIs(t, err, ErrEmptySource)
}
