package transport

import (
	"context"
	"crypto/tls"
	"net"
	"time"

	ircerr "ircnames/internal/errors"
	"ircnames/util"
)

// Connect opens a TCP stream to host:port through d and, when
// tlsConfig is non-nil, upgrades it to TLS over the same connection.
// Both stages share the connect timeout.  Every failure is reported as
// a [ircerr.KindConnection] session error; no retry is attempted.
func Connect(ctx context.Context, d Dialer, host string, port int,
	tlsConfig *tls.Config, timeout time.Duration) (net.Conn, error) {
	addr := util.FormatAddr(host, port)

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	conn, err := d.Dial(ctx, "tcp", addr)
	if err != nil {
		return nil, ircerr.Wrap(ircerr.KindConnection, "dial", addr, err)
	}
	if tlsConfig == nil {
		return conn, nil
	}

	config := tlsConfig.Clone()
	if config.ServerName == "" {
		config.ServerName = host
	}
	tconn := tls.Client(conn, config)
	if err := tconn.HandshakeContext(ctx); err != nil {
		conn.Close()
		return nil, ircerr.Wrap(ircerr.KindConnection, "tls", addr, err)
	}
	return tconn, nil
}
