package errors

import (
	"fmt"
	"io"
	"testing"
)

func TestSessionError_Format(t *testing.T) {
	tests := []struct {
		name string
		err  SessionError
		want string
	}{
		{
			name: "connection",
			err:  SessionError{Kind: KindConnection, Op: "dial", Addr: "10.0.0.1:6667", Err: fmt.Errorf("connection refused")},
			want: "connection dial 10.0.0.1:6667: connection refused",
		},
		{
			name: "timeout",
			err:  SessionError{Kind: KindTimeout, Op: "read", Addr: "irc.example:6697", Err: ErrTimeout},
			want: "timeout read irc.example:6697: inactivity timeout",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSessionError_Unwrap(t *testing.T) {
	err := Wrap(KindStreamClosed, "read", "x", io.EOF)
	if !Is(err, io.EOF) {
		t.Error("should unwrap to io.EOF")
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindUnknown},
		{"plain", fmt.Errorf("boom"), KindUnknown},
		{"protocol", Wrap(KindProtocol, "parse", "x", ErrEmptyLine), KindProtocol},
		{"wrapped", fmt.Errorf("outer: %w", Wrap(KindTimeout, "read", "x", ErrTimeout)), KindTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestKind_String(t *testing.T) {
	want := map[Kind]string{
		KindUnknown:      "unknown",
		KindConnection:   "connection",
		KindStreamClosed: "stream-closed",
		KindProtocol:     "protocol",
		KindTimeout:      "timeout",
	}
	for k, s := range want {
		if k.String() != s {
			t.Errorf("Kind(%d).String() = %q, want %q", k, k.String(), s)
		}
	}
}

func TestSSHError_Format(t *testing.T) {
	err := WrapSSH("handshake", "bastion.example.com", 22, fmt.Errorf("connection refused"))
	want := "ssh handshake bastion.example.com:22: connection refused"
	if got := err.Error(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestConfigError_Format(t *testing.T) {
	tests := []struct {
		name string
		err  ConfigError
		want string
	}{
		{
			name: "with value and hint",
			err: ConfigError{
				Field:   "port",
				Value:   99999,
				Message: "out of range 1-65535",
				Hint:    "use a port between 1 and 65535",
			},
			want: "config: --port=99999: out of range 1-65535\n  hint: use a port between 1 and 65535",
		},
		{
			name: "missing value no hint",
			err: ConfigError{
				Field:   "channel",
				Message: "is required",
			},
			want: "config: --channel: is required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("got:\n%s\nwant:\n%s", got, tt.want)
			}
		})
	}
}

func TestIsConfig(t *testing.T) {
	if !IsConfig(fmt.Errorf("wrap: %w", &ConfigError{Field: "channel", Message: "x"})) {
		t.Error("expected config error")
	}
	if IsConfig(ErrTimeout) {
		t.Error("timeout is not a config error")
	}
}

func TestSentinels(t *testing.T) {
	sentinels := []error{
		ErrStreamClosed, ErrTimeout, ErrEmptyLine, ErrUnparseable,
		ErrLineTooLong, ErrTunnelClosed, ErrNotConnected, ErrAuthFailed,
		ErrHostKeyChange, ErrCircuitOpen,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && Is(a, b) {
				t.Errorf("sentinel %d and %d should not match", i, j)
			}
		}
	}
}
