package transport

import (
	"context"
	"fmt"
	"net"
	"sync"

	"ircnames/internal/breaker"
	"ircnames/tunnel"
	"ircnames/util"
)

// SSHDialer routes connections through an SSH jump host.  The tunnel
// is connected lazily on the first Dial call, shared by every session,
// and torn down on Close.  A failed handshake opens a breaker so the
// remaining sessions fail fast instead of each re-dialling the gateway.
type SSHDialer struct {
	tunnel tunnel.Tunnel
	config *tunnel.SSHConfig
	logger *util.Logger
	gate   *breaker.Breaker

	mu        sync.Mutex
	connected bool
}

// NewSSHDialer creates a dialer that forwards connections through an
// SSH tunnel.  The tunnel is not connected until the first Dial.
func NewSSHDialer(cfg *tunnel.SSHConfig, logger *util.Logger) *SSHDialer {
	return &SSHDialer{
		tunnel: tunnel.NewSSHTunnel(cfg, logger),
		config: cfg,
		logger: logger,
		gate: breaker.New(&breaker.Config{
			OnStateChange: func(from, to breaker.State) {
				logger.Debug("SSH tunnel breaker %s -> %s", from, to)
			},
		}),
	}
}

// connect establishes the SSH tunnel if it is not already up.  Many
// sessions call this at once; the mutex makes only the first one dial.
func (d *SSHDialer) connect(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.connected && d.tunnel.IsAlive() {
		return nil
	}

	err := d.gate.Do(func() error {
		d.logger.Verbose("establishing SSH tunnel to %s@%s:%d",
			d.config.User, d.config.Host, d.config.Port)
		return d.tunnel.Connect(ctx)
	})
	if err != nil {
		return fmt.Errorf("tunnel: %w", err)
	}

	d.connected = true
	d.logger.Verbose("SSH tunnel established")
	return nil
}

// Dial connects to address through the SSH tunnel.
func (d *SSHDialer) Dial(ctx context.Context, network, address string) (net.Conn, error) {
	if err := d.connect(ctx); err != nil {
		return nil, err
	}
	return d.tunnel.Dial(ctx, network, address)
}

// Close tears down the underlying SSH tunnel.
func (d *SSHDialer) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.connected {
		d.connected = false
		return d.tunnel.Close()
	}
	return nil
}
