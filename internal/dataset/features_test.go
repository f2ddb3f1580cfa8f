package dataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flarelab/flarecast/internal/flare"
	"github.com/flarelab/flarecast/internal/flux"
)

func smallConfig() Config {
	return Config{
		GridStep: time.Minute,
		Horizon:  60 * time.Minute,
		Windows:  []time.Duration{2 * time.Minute, 3 * time.Minute},
	}
}

func constantSeries(n int, logVal float64) []flux.Sample {
	series := make([]flux.Sample, n)
	for i := range series {
		series[i] = flux.Sample{
			Timestamp: gridStart.Add(time.Duration(i) * time.Minute),
			ValueLog:  logVal,
		}
	}
	return series
}

func TestFeaturesConstantSeries(t *testing.T) {
	series := constantSeries(10, -6)

	table, gridIdx := Features(series, smallConfig())

	// Largest window is 3 ticks: the first 3 rows lack full history.
	require.Len(t, table.Rows, 7)
	require.Equal(t, []int{3, 4, 5, 6, 7, 8, 9}, gridIdx)
	assert.Equal(t, gridStart.Add(3*time.Minute), table.Rows[0].Timestamp)

	require.Equal(t, []string{
		"flux_log",
		"roll_mean_2m", "roll_std_2m", "roll_min_2m", "roll_max_2m", "delta_2m",
		"roll_mean_3m", "roll_std_3m", "roll_min_3m", "roll_max_3m", "delta_3m",
		"hour", "day_of_year",
	}, table.Names)

	for _, row := range table.Rows {
		f := row.Features
		require.Len(t, f, len(table.Names))
		assert.Equal(t, -6.0, f[0])
		for _, wBase := range []int{1, 6} {
			assert.InDelta(t, -6.0, f[wBase], 1e-12)   // mean
			assert.InDelta(t, 0.0, f[wBase+1], 1e-12)  // std
			assert.Equal(t, -6.0, f[wBase+2])          // min
			assert.Equal(t, -6.0, f[wBase+3])          // max
			assert.InDelta(t, 0.0, f[wBase+4], 1e-12)  // delta
		}
		assert.Equal(t, 0.0, f[11])   // hour
		assert.Equal(t, 249.0, f[12]) // 2017-09-06
	}
}

func TestFeaturesRollingStats(t *testing.T) {
	series := constantSeries(6, 0)
	for i, v := range []float64{-7, -6, -5, -4, -6, -5} {
		series[i].ValueLog = v
	}

	table, gridIdx := Features(series, smallConfig())
	require.Len(t, table.Rows, 3)
	require.Equal(t, []int{3, 4, 5}, gridIdx)

	// Row at tick 3: 2m window {-5,-4}, 3m window {-6,-5,-4}.
	f := table.Rows[0].Features
	assert.InDelta(t, -4.5, f[1], 1e-12)                // mean_2m
	assert.InDelta(t, 0.7071067811865476, f[2], 1e-12)  // std_2m
	assert.Equal(t, -5.0, f[3])                         // min_2m
	assert.Equal(t, -4.0, f[4])                         // max_2m
	assert.InDelta(t, -4.0-(-6.0), f[5], 1e-12)         // delta_2m: v[3]-v[1]
	assert.InDelta(t, -5.0, f[6], 1e-12)                // mean_3m
	assert.InDelta(t, 1.0, f[7], 1e-12)                 // std_3m
	assert.Equal(t, -6.0, f[8])                         // min_3m
	assert.Equal(t, -4.0, f[9])                         // max_3m
	assert.InDelta(t, -4.0-(-7.0), f[10], 1e-12)        // delta_3m: v[3]-v[0]

	// Row at tick 4: 2m window {-4,-6}.
	f = table.Rows[1].Features
	assert.Equal(t, -6.0, f[3])
	assert.Equal(t, -4.0, f[4])
}

func TestFeaturesDropRowsTouchingMissingTicks(t *testing.T) {
	series := constantSeries(10, -6)
	series[5].Missing = true

	_, gridIdx := Features(series, smallConfig())

	// Every row whose history window [i-3, i] touches tick 5 is dropped.
	assert.Equal(t, []int{3, 4, 9}, gridIdx)
}

func TestBuildJoinsLabelsByTimestamp(t *testing.T) {
	series := constantSeries(200, -6)
	ev := event(gridStart.Add(190*time.Minute), 'X')

	table, err := Build(series, []flare.Event{ev}, DefaultConfig())
	require.NoError(t, err)

	// Full 180-minute history first available at tick 180.
	require.Len(t, table.Rows, 20)
	for k, row := range table.Rows {
		i := 180 + k
		if i < 190 {
			assert.Equal(t, int8(4), row.Label, "tick %d", i)
		} else {
			assert.Equal(t, int8(0), row.Label, "tick %d", i)
		}
	}
}

func TestBuildRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Horizon = 90 * time.Second // not a multiple of the grid step

	_, err := Build(constantSeries(10, -6), nil, cfg)
	assert.Error(t, err)
}

func TestBuildEmptySeries(t *testing.T) {
	_, err := Build(nil, nil, DefaultConfig())
	assert.ErrorIs(t, err, flux.ErrNoFluxData)
}
