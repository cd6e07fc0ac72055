// Package metrics provides lightweight, lock-free counters for tracking
// the traffic of a gotalk session.
//
// All methods are safe for concurrent use.  A nil *Collector is a
// valid no-op receiver, so callers never need to nil-check.
package metrics

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jpillora/sizestr"
)

// Collector tracks runtime metrics for a gotalk session.
// A nil Collector is safe to use; all methods become no-ops.
type Collector struct {
	bytesIn     atomic.Int64
	bytesOut    atomic.Int64
	chunksIn    atomic.Int64
	linesOut    atomic.Int64
	errorsTotal atomic.Int64

	mu           sync.RWMutex
	startTime    time.Time
	endTime      time.Time
	lastError    time.Time
	lastErrorMsg string
}

// New creates a metrics collector with the start time set to now.
func New() *Collector {
	return &Collector{startTime: time.Now()}
}

// ── I/O metrics ──────────────────────────────────────────────────────

// ChunkReceived records one read of n bytes from the peer.
func (c *Collector) ChunkReceived(n int) {
	if c == nil {
		return
	}
	c.chunksIn.Add(1)
	c.bytesIn.Add(int64(n))
}

// LineSent records one line of n bytes written to the peer.
func (c *Collector) LineSent(n int) {
	if c == nil {
		return
	}
	c.linesOut.Add(1)
	c.bytesOut.Add(int64(n))
}

// TotalBytesIn returns total bytes received.
func (c *Collector) TotalBytesIn() int64 {
	if c == nil {
		return 0
	}
	return c.bytesIn.Load()
}

// TotalBytesOut returns total bytes sent.
func (c *Collector) TotalBytesOut() int64 {
	if c == nil {
		return 0
	}
	return c.bytesOut.Load()
}

// LinesSent returns the number of lines written to the peer.
func (c *Collector) LinesSent() int64 {
	if c == nil {
		return 0
	}
	return c.linesOut.Load()
}

// ChunksReceived returns the number of non-empty reads from the peer.
func (c *Collector) ChunksReceived() int64 {
	if c == nil {
		return 0
	}
	return c.chunksIn.Load()
}

// ── Error metrics ────────────────────────────────────────────────────

// RecordError increments the error counter and stores the message.
func (c *Collector) RecordError(msg string) {
	if c == nil {
		return
	}
	c.errorsTotal.Add(1)
	c.mu.Lock()
	c.lastError = time.Now()
	c.lastErrorMsg = msg
	c.mu.Unlock()
}

// ErrorCount returns the total number of errors recorded.
func (c *Collector) ErrorCount() int64 {
	if c == nil {
		return 0
	}
	return c.errorsTotal.Load()
}

// ── Lifecycle ────────────────────────────────────────────────────────

// Finish freezes the session duration.  Later calls are ignored.
func (c *Collector) Finish() {
	if c == nil {
		return
	}
	c.mu.Lock()
	if c.endTime.IsZero() {
		c.endTime = time.Now()
	}
	c.mu.Unlock()
}

// ── Snapshot ─────────────────────────────────────────────────────────

// Snapshot is a point-in-time view of all metrics.
type Snapshot struct {
	Duration         string `json:"duration"`
	BytesIn          int64  `json:"bytes_in"`
	BytesOut         int64  `json:"bytes_out"`
	ChunksIn         int64  `json:"chunks_in"`
	LinesOut         int64  `json:"lines_out"`
	ErrorsTotal      int64  `json:"errors_total"`
	LastError        string `json:"last_error,omitempty"`
	LastErrorMessage string `json:"last_error_message,omitempty"`
}

// Snapshot returns a copy of all current metrics.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	end := c.endTime
	if end.IsZero() {
		end = time.Now()
	}
	s := Snapshot{
		Duration:    end.Sub(c.startTime).Truncate(time.Millisecond).String(),
		BytesIn:     c.bytesIn.Load(),
		BytesOut:    c.bytesOut.Load(),
		ChunksIn:    c.chunksIn.Load(),
		LinesOut:    c.linesOut.Load(),
		ErrorsTotal: c.errorsTotal.Load(),
	}
	if !c.lastError.IsZero() {
		s.LastError = c.lastError.Format(time.RFC3339)
		s.LastErrorMessage = c.lastErrorMsg
	}
	return s
}

// Summary renders a one-line human readable traffic summary.
func (c *Collector) Summary() string {
	s := c.Snapshot()
	return "sent " + sizestr.ToString(s.BytesOut) +
		" received " + sizestr.ToString(s.BytesIn) +
		" in " + s.Duration
}

// JSON returns the snapshot as an indented JSON string.
func (c *Collector) JSON() string {
	s := c.Snapshot()
	data, _ := json.MarshalIndent(s, "", "  ")
	return string(data)
}
