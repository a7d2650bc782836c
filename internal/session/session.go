// Package session runs one end-to-end NAMES query against a single
// target: connect, register, join, query, read until end-of-names or
// until the inactivity window elapses.
//
// A session either returns a complete Result or a *errors.SessionError;
// names gathered before a failure never escape.
package session

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"os"
	"time"

	"github.com/bassosimone/safeconn"
	"github.com/google/uuid"

	"ircnames/config"
	ircerr "ircnames/internal/errors"
	"ircnames/internal/irc"
	"ircnames/internal/metrics"
	"ircnames/internal/transport"
	"ircnames/util"
)

// Result is the member list of one channel on one server.
type Result struct {
	ChannelLabel string   `json:"channel"`
	Usernames    []string `json:"users"`
}

// Label returns "host:port/channel".
func Label(target config.Target, channel string) string {
	return target.Addr() + "/" + channel
}

// NewID returns a time-ordered UUIDv7 used to correlate log lines.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Session is the runtime context for one target.
type Session struct {
	ID      string
	Target  config.Target
	Options irc.Options

	Dialer         transport.Dialer
	TLSConfig      *tls.Config // used when Target.TLS; nil means unverified TLS 1.2+
	ConnectTimeout time.Duration
	Window         time.Duration // inactivity window

	Logger  *util.Logger
	Metrics *metrics.Collector
}

// New creates a Session with default timeouts and a fresh ID.
func New(target config.Target, opts irc.Options, dialer transport.Dialer, logger *util.Logger) *Session {
	id := NewID()
	return &Session{
		ID:             id,
		Target:         target,
		Options:        opts,
		Dialer:         dialer,
		ConnectTimeout: config.DefaultConnectTimeout,
		Window:         config.DefaultInactivityTimeout,
		Logger:         logger.With("session", id[len(id)-8:]),
	}
}

// Run executes the session.  It returns either a Result or an error,
// never both.
func (s *Session) Run(ctx context.Context) (*Result, error) {
	addr := s.Target.Addr()
	log := s.Logger
	label := Label(s.Target, s.Options.Channel)

	opts, generated := s.Options.Resolve()
	if generated.Nickname {
		log.Verbose("nickname missing, using %s", opts.Nickname)
	}
	if generated.Username {
		log.Verbose("username missing, using nickname")
	}

	log.Verbose("connecting to %s (tls=%v)", addr, s.Target.TLS)
	s.Metrics.SessionStarted()

	var tlsConfig *tls.Config
	if s.Target.TLS {
		tlsConfig = s.TLSConfig
		if tlsConfig == nil {
			tlsConfig = &tls.Config{MinVersion: tls.VersionTLS12, InsecureSkipVerify: true} //nolint:gosec
		}
	}
	conn, err := transport.Connect(ctx, s.Dialer, s.Target.Host, s.Target.Port, tlsConfig, s.ConnectTimeout)
	if err != nil {
		return nil, err
	}
	s.Metrics.ConnectionOpened()
	defer s.Metrics.ConnectionClosed()
	defer conn.Close()

	stop := watchCancel(ctx, conn)
	defer stop()

	log.Debug("connected %s -> %s", safeconn.LocalAddr(conn), safeconn.RemoteAddr(conn))

	gov := NewGovernor(s.Window, nil)

	log.Verbose("registering with %s", addr)
	s.armWrite(conn)
	if err := irc.Register(&countingWriter{w: conn, m: s.Metrics}, opts); err != nil {
		return nil, ircerr.Wrap(ircerr.KindConnection, "register", addr, err)
	}
	conn.SetWriteDeadline(time.Time{}) //nolint:errcheck

	log.Verbose("joining and listing names of channel %s", label)
	names, err := s.collect(ctx, conn, gov, label)
	if err != nil {
		return nil, err
	}

	log.Verbose("no more names for %s, closing connection", label)
	s.armWrite(conn)
	if err := irc.Quit(&countingWriter{w: conn, m: s.Metrics}); err != nil {
		log.Debug("quit %s: %v", addr, err)
	}
	conn.Close()

	return &Result{ChannelLabel: label, Usernames: names}, nil
}

// armWrite bounds the next write by the connect timeout.
func (s *Session) armWrite(conn net.Conn) {
	if s.ConnectTimeout > 0 {
		conn.SetWriteDeadline(time.Now().Add(s.ConnectTimeout)) //nolint:errcheck
	}
}

// collect alternates bounded reads and deadline checks until the name
// list is complete or the session fails.
func (s *Session) collect(ctx context.Context, conn net.Conn, gov *Governor, label string) ([]string, error) {
	addr := s.Target.Addr()
	lr := irc.NewLineReader(conn)
	budget := newReadBudget(conn)
	defer budget.stop()

	var names irc.NameList
	for {
		if gov.Expired() {
			return nil, ircerr.Wrap(ircerr.KindTimeout, "read", addr, ircerr.ErrTimeout)
		}
		budget.set(gov.Deadline())

		lines, n, readErr := lr.ReadLines()
		if n > 0 {
			gov.Arm()
			s.Metrics.BytesReceived(int64(n))
		}

		for _, line := range lines {
			s.Logger.Debug("received message %s", line)
			before := names.Len()
			done, err := names.HandleLine(line)
			if err != nil {
				return nil, ircerr.Wrap(ircerr.KindProtocol, "parse", addr, err)
			}
			if added := names.Len() - before; added > 0 {
				s.Logger.Verbose("%d name(s) received from %s", added, label)
			}
			if done {
				return names.Names(), nil
			}
		}

		if readErr != nil {
			return nil, classifyRead(ctx, addr, readErr, budget)
		}
	}
}

func classifyRead(ctx context.Context, addr string, err error, budget *readBudget) error {
	// A fired fallback timer closed the conn itself; forwarded channels
	// then report a plain EOF.
	switch {
	case budget.expired(), errors.Is(err, os.ErrDeadlineExceeded):
		return ircerr.Wrap(ircerr.KindTimeout, "read", addr, ircerr.Join(ircerr.ErrTimeout, err))
	case errors.Is(err, ircerr.ErrStreamClosed):
		return ircerr.Wrap(ircerr.KindStreamClosed, "read", addr, err)
	case errors.Is(err, ircerr.ErrLineTooLong):
		return ircerr.Wrap(ircerr.KindProtocol, "read", addr, err)
	case ctx.Err() != nil:
		return ircerr.Wrap(ircerr.KindConnection, "read", addr, ctx.Err())
	default:
		return ircerr.Wrap(ircerr.KindConnection, "read", addr, err)
	}
}

// watchCancel closes conn when ctx is done so that blocked reads return.
func watchCancel(ctx context.Context, conn net.Conn) (stop func()) {
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()
	return func() { close(done) }
}

// countingWriter feeds bytes written into the metrics collector.
type countingWriter struct {
	w io.Writer
	m *metrics.Collector
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.m.BytesSent(int64(n))
	return n, err
}
