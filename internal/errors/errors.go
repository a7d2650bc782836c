// Package errors provides domain-specific error types for ircnames.
//
// Every failure a session can hit is reported as a *SessionError carrying
// one of four kinds.  The orchestrator treats all kinds the same way (log
// and drop), but the kind is kept so the decision stays explicit and
// testable.
package errors

import (
	"errors"
	"fmt"
)

// ── Sentinel errors ──────────────────────────────────────────────────

var (
	ErrStreamClosed  = errors.New("stream closed by peer")
	ErrTimeout       = errors.New("inactivity timeout")
	ErrEmptyLine     = errors.New("empty protocol line")
	ErrUnparseable   = errors.New("unparseable protocol line")
	ErrLineTooLong   = errors.New("protocol line too long")
	ErrTunnelClosed  = errors.New("tunnel is closed")
	ErrNotConnected  = errors.New("not connected")
	ErrAuthFailed    = errors.New("authentication failed")
	ErrHostKeyChange = errors.New("host key mismatch")
	ErrCircuitOpen   = errors.New("circuit open")
)

// ── Session error kinds ──────────────────────────────────────────────

// Kind classifies a session failure.
type Kind int

const (
	// KindUnknown is returned by KindOf for errors that are not
	// session errors.
	KindUnknown Kind = iota
	// KindConnection covers DNS, connect, TLS and write failures.
	KindConnection
	// KindStreamClosed means the peer closed before end-of-names.
	KindStreamClosed
	// KindProtocol means an empty, unparseable or oversized line.
	KindProtocol
	// KindTimeout means the inactivity window elapsed.
	KindTimeout
)

func (k Kind) String() string {
	switch k {
	case KindConnection:
		return "connection"
	case KindStreamClosed:
		return "stream-closed"
	case KindProtocol:
		return "protocol"
	case KindTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// ── Structured error types ───────────────────────────────────────────

// SessionError is the single error type a session returns.
type SessionError struct {
	Kind Kind
	Op   string // "dial", "tls", "register", "read", "parse"
	Addr string // host:port of the target
	Err  error
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("%s %s %s: %v", e.Kind, e.Op, e.Addr, e.Err)
}

func (e *SessionError) Unwrap() error { return e.Err }

// SSHError represents an SSH-specific failure with host context.
type SSHError struct {
	Op   string // "handshake", "auth", "hostkey", "dial"
	Host string
	Port int
	Err  error
}

func (e *SSHError) Error() string {
	return fmt.Sprintf("ssh %s %s:%d: %v", e.Op, e.Host, e.Port, e.Err)
}

func (e *SSHError) Unwrap() error { return e.Err }

// ConfigError represents an invalid configuration value.
type ConfigError struct {
	Field   string      // config field name
	Value   interface{} // the invalid value (nil if missing)
	Message string      // human-readable explanation
	Hint    string      // suggestion for the user (optional)
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("config: --%s", e.Field)
	if e.Value != nil {
		msg += fmt.Sprintf("=%v", e.Value)
	}
	msg += ": " + e.Message
	if e.Hint != "" {
		msg += "\n  hint: " + e.Hint
	}
	return msg
}

// ── Constructors ─────────────────────────────────────────────────────

// Wrap creates a SessionError of the given kind.
func Wrap(kind Kind, op, addr string, err error) *SessionError {
	return &SessionError{Kind: kind, Op: op, Addr: addr, Err: err}
}

// WrapSSH creates an SSHError.
func WrapSSH(op, host string, port int, err error) *SSHError {
	return &SSHError{Op: op, Host: host, Port: port, Err: err}
}

// ── Classification helpers ───────────────────────────────────────────

// KindOf returns the kind of the first SessionError in err's chain.
func KindOf(err error) Kind {
	var se *SessionError
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindUnknown
}

// IsConfig reports whether err is a configuration error.
func IsConfig(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// ── Re-exports for convenience ───────────────────────────────────────

// As is [errors.As].
func As(err error, target interface{}) bool { return errors.As(err, target) }

// Is is [errors.Is].
func Is(err, target error) bool { return errors.Is(err, target) }

// New is [errors.New].
func New(text string) error { return errors.New(text) }

// Unwrap is [errors.Unwrap].
func Unwrap(err error) error { return errors.Unwrap(err) }

// Join is [errors.Join].
func Join(errs ...error) error { return errors.Join(errs...) }
