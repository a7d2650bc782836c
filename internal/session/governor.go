package session

import (
	"net"
	"sync/atomic"
	"time"
)

// Governor tracks the inactivity deadline of one session.  The window
// measures silence: every read that yields data re-arms it.
type Governor struct {
	window   time.Duration
	now      func() time.Time
	deadline time.Time
}

// NewGovernor returns a Governor armed at now()+window.  A nil now
// uses time.Now.
func NewGovernor(window time.Duration, now func() time.Time) *Governor {
	if now == nil {
		now = time.Now
	}
	g := &Governor{window: window, now: now}
	g.Arm()
	return g
}

// Arm moves the deadline to now()+window.
func (g *Governor) Arm() { g.deadline = g.now().Add(g.window) }

// Deadline returns the current deadline.
func (g *Governor) Deadline() time.Time { return g.deadline }

// Remaining returns the time left before the deadline, never negative.
func (g *Governor) Remaining() time.Duration {
	if r := g.deadline.Sub(g.now()); r > 0 {
		return r
	}
	return 0
}

// Expired reports whether the deadline has passed.
func (g *Governor) Expired() bool { return !g.now().Before(g.deadline) }

// readBudget bounds each read by the governor's deadline.  Connections
// that reject read deadlines (SSH-forwarded channels) fall back to a
// timer that closes the connection when the budget runs out.
type readBudget struct {
	conn  net.Conn
	timer *time.Timer
	fired atomic.Bool
}

func newReadBudget(conn net.Conn) *readBudget {
	return &readBudget{conn: conn}
}

func (b *readBudget) set(deadline time.Time) {
	if b.timer != nil {
		b.timer.Reset(time.Until(deadline))
		return
	}
	if err := b.conn.SetReadDeadline(deadline); err == nil {
		return
	}
	b.timer = time.AfterFunc(time.Until(deadline), func() {
		b.fired.Store(true)
		b.conn.Close()
	})
}

// expired reports whether the fallback timer closed the connection.
func (b *readBudget) expired() bool { return b.fired.Load() }

func (b *readBudget) stop() {
	if b.timer != nil {
		b.timer.Stop()
	}
}
