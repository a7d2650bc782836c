// Package metrics provides lightweight, lock-free counters for tracking
// the outcome of an ircnames run.
//
// All methods are safe for concurrent use.  A nil *Collector is a
// valid no-op receiver, so callers never need to nil-check.
package metrics

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"

	ircerr "ircnames/internal/errors"
)

// Collector tracks runtime metrics for a run.
// A nil Collector is safe to use — all methods become no-ops.
type Collector struct {
	sessionsStarted   atomic.Int64
	sessionsSucceeded atomic.Int64
	connectionsActive atomic.Int64
	connectionsTotal  atomic.Int64
	bytesIn           atomic.Int64
	bytesOut          atomic.Int64
	namesTotal        atomic.Int64

	failures [ircerr.KindTimeout + 1]atomic.Int64

	mu           sync.RWMutex
	startTime    time.Time
	lastError    time.Time
	lastErrorMsg string
}

// New creates a metrics collector with the start time set to now.
func New() *Collector {
	return &Collector{startTime: time.Now()}
}

// ── Session metrics ──────────────────────────────────────────────────

// SessionStarted counts a session that began connecting.
func (c *Collector) SessionStarted() {
	if c == nil {
		return
	}
	c.sessionsStarted.Add(1)
}

// SessionSucceeded counts a session that reached end-of-names.
func (c *Collector) SessionSucceeded(names int) {
	if c == nil {
		return
	}
	c.sessionsSucceeded.Add(1)
	c.namesTotal.Add(int64(names))
}

// SessionFailed counts a failed session by kind and keeps its message.
func (c *Collector) SessionFailed(kind ircerr.Kind, msg string) {
	if c == nil {
		return
	}
	if kind < 0 || int(kind) >= len(c.failures) {
		kind = ircerr.KindUnknown
	}
	c.failures[kind].Add(1)
	c.mu.Lock()
	c.lastError = time.Now()
	c.lastErrorMsg = msg
	c.mu.Unlock()
}

// Succeeded returns the number of successful sessions.
func (c *Collector) Succeeded() int64 {
	if c == nil {
		return 0
	}
	return c.sessionsSucceeded.Load()
}

// Failed returns the number of failed sessions of the given kind.
func (c *Collector) Failed(kind ircerr.Kind) int64 {
	if c == nil || kind < 0 || int(kind) >= len(c.failures) {
		return 0
	}
	return c.failures[kind].Load()
}

// FailedTotal returns the number of failed sessions of any kind.
func (c *Collector) FailedTotal() int64 {
	if c == nil {
		return 0
	}
	var n int64
	for i := range c.failures {
		n += c.failures[i].Load()
	}
	return n
}

// ── Connection metrics ───────────────────────────────────────────────

// ConnectionOpened increments both the active and total counters.
func (c *Collector) ConnectionOpened() {
	if c == nil {
		return
	}
	c.connectionsActive.Add(1)
	c.connectionsTotal.Add(1)
}

// ConnectionClosed decrements the active connection counter.
func (c *Collector) ConnectionClosed() {
	if c == nil {
		return
	}
	c.connectionsActive.Add(-1)
}

// ActiveConnections returns the current number of open connections.
func (c *Collector) ActiveConnections() int64 {
	if c == nil {
		return 0
	}
	return c.connectionsActive.Load()
}

// ── I/O metrics ──────────────────────────────────────────────────────

// BytesReceived records n bytes read from the network.
func (c *Collector) BytesReceived(n int64) {
	if c == nil {
		return
	}
	c.bytesIn.Add(n)
}

// BytesSent records n bytes written to the network.
func (c *Collector) BytesSent(n int64) {
	if c == nil {
		return
	}
	c.bytesOut.Add(n)
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

// ── Snapshot ─────────────────────────────────────────────────────────

// Snapshot is a point-in-time view of all metrics.
type Snapshot struct {
	Elapsed           string           `json:"elapsed"`
	SessionsStarted   int64            `json:"sessions_started"`
	SessionsSucceeded int64            `json:"sessions_succeeded"`
	SessionsFailed    map[string]int64 `json:"sessions_failed,omitempty"`
	ConnectionsActive int64            `json:"connections_active"`
	ConnectionsTotal  int64            `json:"connections_total"`
	BytesIn           int64            `json:"bytes_in"`
	BytesOut          int64            `json:"bytes_out"`
	NamesTotal        int64            `json:"names_total"`
	LastError         string           `json:"last_error,omitempty"`
	LastErrorMessage  string           `json:"last_error_message,omitempty"`
}

// Snapshot returns a copy of all current metrics.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Snapshot{
		Elapsed:           time.Since(c.startTime).Truncate(time.Millisecond).String(),
		SessionsStarted:   c.sessionsStarted.Load(),
		SessionsSucceeded: c.sessionsSucceeded.Load(),
		ConnectionsActive: c.connectionsActive.Load(),
		ConnectionsTotal:  c.connectionsTotal.Load(),
		BytesIn:           c.bytesIn.Load(),
		BytesOut:          c.bytesOut.Load(),
		NamesTotal:        c.namesTotal.Load(),
	}
	for i := range c.failures {
		if n := c.failures[i].Load(); n > 0 {
			if s.SessionsFailed == nil {
				s.SessionsFailed = make(map[string]int64)
			}
			s.SessionsFailed[ircerr.Kind(i).String()] = n
		}
	}
	if !c.lastError.IsZero() {
		s.LastError = c.lastError.Format(time.RFC3339)
		s.LastErrorMessage = c.lastErrorMsg
	}
	return s
}

// JSON returns the snapshot as an indented JSON string.
func (c *Collector) JSON() string {
	data, _ := json.MarshalIndent(c.Snapshot(), "", "  ")
	return string(data)
}
