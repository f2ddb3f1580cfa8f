package dataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/flarelab/flarecast/internal/flare"
)

var gridStart = time.Date(2017, 9, 6, 0, 0, 0, 0, time.UTC)

func event(ts time.Time, letter byte) flare.Event {
	return flare.Event{Timestamp: ts, Class: string(letter) + "1.0", Letter: letter, Magnitude: 1.0, Source: flare.SourceNOAAReport}
}

func TestAlignEventOnTick(t *testing.T) {
	ev := event(gridStart.Add(5*time.Minute), 'X')

	intensity := AlignEvents([]flare.Event{ev}, gridStart, 10, time.Minute)
	assert.Equal(t, int8(4), intensity[5])
	// Active only at its own tick.
	assert.Equal(t, int8(0), intensity[4])
	assert.Equal(t, int8(0), intensity[6])
}

func TestAlignEventBetweenTicksSnapsForward(t *testing.T) {
	ev := event(gridStart.Add(5*time.Minute+30*time.Second), 'M')

	intensity := AlignEvents([]flare.Event{ev}, gridStart, 10, time.Minute)
	assert.Equal(t, int8(0), intensity[5])
	assert.Equal(t, int8(3), intensity[6])
}

func TestAlignEventJustBeforeGridStart(t *testing.T) {
	// Within one tick before the grid: snaps forward onto tick 0.
	near := event(gridStart.Add(-30*time.Second), 'C')
	// Beyond one tick before the grid: outside, dropped.
	far := event(gridStart.Add(-90*time.Second), 'X')

	intensity := AlignEvents([]flare.Event{near, far}, gridStart, 10, time.Minute)
	assert.Equal(t, int8(2), intensity[0])
	for i := 1; i < 10; i++ {
		assert.Equal(t, int8(0), intensity[i])
	}
}

func TestAlignEventPastGridEndDropped(t *testing.T) {
	ev := event(gridStart.Add(10*time.Minute), 'X')

	intensity := AlignEvents([]flare.Event{ev}, gridStart, 10, time.Minute)
	for _, v := range intensity {
		assert.Equal(t, int8(0), v)
	}
}

func TestAlignCollidingEventsKeepMax(t *testing.T) {
	// Two events snapping onto the same tick: the stronger one wins.
	a := event(gridStart.Add(4*time.Minute+10*time.Second), 'B')
	b := event(gridStart.Add(4*time.Minute+50*time.Second), 'M')

	intensity := AlignEvents([]flare.Event{a, b}, gridStart, 10, time.Minute)
	assert.Equal(t, int8(3), intensity[5])
}
