package session

import (
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time           { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func TestGovernor_ArmedAtConstruction(t *testing.T) {
	clk := &fakeClock{t: time.Unix(1000, 0)}
	g := NewGovernor(2*time.Second, clk.Now)

	assert.Equal(t, time.Unix(1002, 0), g.Deadline())
	assert.Equal(t, 2*time.Second, g.Remaining())
	assert.False(t, g.Expired())
}

func TestGovernor_Expires(t *testing.T) {
	clk := &fakeClock{t: time.Unix(1000, 0)}
	g := NewGovernor(2*time.Second, clk.Now)

	clk.Advance(1999 * time.Millisecond)
	assert.False(t, g.Expired())

	clk.Advance(time.Millisecond)
	assert.True(t, g.Expired(), "deadline is inclusive")
	assert.Zero(t, g.Remaining())

	clk.Advance(time.Hour)
	assert.Zero(t, g.Remaining(), "remaining never goes negative")
}

func TestGovernor_ArmExtends(t *testing.T) {
	clk := &fakeClock{t: time.Unix(1000, 0)}
	g := NewGovernor(2*time.Second, clk.Now)

	// Data every 1.5s keeps the session alive well past the window.
	for i := 0; i < 10; i++ {
		clk.Advance(1500 * time.Millisecond)
		require.False(t, g.Expired(), "iteration %d", i)
		g.Arm()
	}
	assert.Equal(t, clk.Now().Add(2*time.Second), g.Deadline())

	clk.Advance(2 * time.Second)
	assert.True(t, g.Expired())
}

// noDeadlineConn mimics a forwarded channel that rejects deadlines.
type noDeadlineConn struct{ net.Conn }

func (noDeadlineConn) SetReadDeadline(time.Time) error { return errors.New("deadline not supported") }
func (noDeadlineConn) SetWriteDeadline(time.Time) error {
	return errors.New("deadline not supported")
}

func TestReadBudget_Deadline(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	b := newReadBudget(client)
	defer b.stop()
	b.set(time.Now().Add(50 * time.Millisecond))

	_, err := client.Read(make([]byte, 1))
	var ne net.Error
	require.ErrorAs(t, err, &ne)
	assert.True(t, ne.Timeout())
	assert.False(t, b.expired(), "native deadline does not use the fallback")
}

func TestReadBudget_FallbackClosesConn(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()

	b := newReadBudget(noDeadlineConn{client})
	defer b.stop()
	b.set(time.Now().Add(50 * time.Millisecond))

	start := time.Now()
	_, err := client.Read(make([]byte, 1))
	require.Error(t, err)
	assert.True(t, b.expired())
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestReadBudget_FallbackRearm(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()

	b := newReadBudget(noDeadlineConn{client})
	defer b.stop()

	b.set(time.Now().Add(50 * time.Millisecond))
	b.set(time.Now().Add(time.Hour))

	time.Sleep(100 * time.Millisecond)
	assert.False(t, b.expired(), "re-arming pushes the fallback out")
}
