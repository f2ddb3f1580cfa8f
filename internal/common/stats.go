package common

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Stats holds atomic counters for ingestion telemetry. Safe for use from
// multiple workers.
type Stats struct {
	rows  atomic.Uint64
	bytes atomic.Uint64
	files atomic.Uint64

	running atomic.Bool
	stopCh  chan struct{}
	silent  bool

	lastRows  uint64
	lastBytes uint64
	lastTime  time.Time
}

// NewStats creates a new Stats instance.
func NewStats() *Stats {
	return &Stats{stopCh: make(chan struct{})}
}

// AddRows increments the parsed row counter.
func (s *Stats) AddRows(n uint64) { s.rows.Add(n) }

// AddBytes increments the bytes-read counter.
func (s *Stats) AddBytes(n uint64) { s.bytes.Add(n) }

// AddFiles increments the completed-file counter.
func (s *Stats) AddFiles(n uint64) { s.files.Add(n) }

// Rows returns the total parsed rows.
func (s *Stats) Rows() uint64 { return s.rows.Load() }

// Bytes returns the total bytes read.
func (s *Stats) Bytes() uint64 { return s.bytes.Load() }

// Files returns the total completed files.
func (s *Stats) Files() uint64 { return s.files.Load() }

// SetSilent enables or disables progress output.
func (s *Stats) SetSilent(silent bool) { s.silent = silent }

// StartReporter starts a background goroutine printing progress every
// second until StopReporter is called.
func (s *Stats) StartReporter() {
	if s.running.Load() {
		return
	}
	s.running.Store(true)
	s.lastTime = time.Now()
	go s.reporterLoop()
}

// StopReporter stops the background reporter goroutine.
func (s *Stats) StopReporter() {
	if !s.running.Load() {
		return
	}
	s.running.Store(false)
	close(s.stopCh)
}

func (s *Stats) reporterLoop() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.printStatus()
		}
	}
}

func (s *Stats) printStatus() {
	if s.silent {
		return
	}

	now := time.Now()
	elapsed := now.Sub(s.lastTime).Seconds()
	if elapsed < 0.001 {
		return
	}

	rows := s.Rows()
	bytes := s.Bytes()

	rowsPerSec := float64(rows-s.lastRows) / elapsed
	mibPerSec := (float64(bytes-s.lastBytes) / (1024 * 1024)) / elapsed

	fmt.Printf("[Progress] Files: %d | Rows: %d (%.0f rows/s) | I/O: %.2f MiB/s\n",
		s.Files(), rows, rowsPerSec, mibPerSec)

	s.lastRows = rows
	s.lastBytes = bytes
	s.lastTime = now
}
