// Package config defines the runtime configuration for ircnames and
// provides helpers for parsing targets, port lists and tunnel
// specifications.
package config

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	ircerr "ircnames/internal/errors"
)

// Config holds every tuneable for a single ircnames run.
type Config struct {
	// ── Session ──────────────────────────────────────────────────────
	Channel        string
	Nickname       string
	Username       string
	Password       string
	PasswordPrompt bool // true → read the password from the terminal
	TLS            bool
	TLSVerify      bool // check the server certificate chain and name
	Timeout        time.Duration // inactivity window
	ConnectTimeout time.Duration

	// ── Targets ──────────────────────────────────────────────────────
	TargetSpecs []string    // raw positional arguments
	Ports       []PortRange // ports for bare hosts and the store query
	DBPath      string      // recon SQLite database
	NoProfiles  bool
	Workers     int // 0 → one worker per target

	// ── SSH tunnel ───────────────────────────────────────────────────
	TunnelSpec     string // raw user@host[:port] from -T
	TunnelEnabled  bool
	TunnelUser     string
	TunnelHost     string
	TunnelPort     int
	SSHKeyPath     string
	SSHPassword    bool // true → prompt interactively
	UseSSHAgent    bool
	StrictHostKey  bool
	KnownHostsPath string

	// ── Output ───────────────────────────────────────────────────────
	JSON     bool
	XLSXPath string
	Verbose  int
	DryRun   bool
}

// Default returns a Config populated from defaults.go.
func Default() *Config {
	return &Config{
		Timeout:        DefaultInactivityTimeout,
		ConnectTimeout: DefaultConnectTimeout,
		Ports:          []PortRange{{Start: DefaultPort, End: DefaultPort}},
		Workers:        DefaultWorkers,
	}
}

// ── Port helpers ─────────────────────────────────────────────────────

// PortRange is an inclusive start–end pair.
type PortRange struct {
	Start int
	End   int
}

// Expand returns every port in the range.
func (pr PortRange) Expand() []int {
	out := make([]int, 0, pr.End-pr.Start+1)
	for p := pr.Start; p <= pr.End; p++ {
		out = append(out, p)
	}
	return out
}

// AllPorts flattens every PortRange into a single slice without
// duplicates.
func (c *Config) AllPorts() []int {
	var out []int
	seen := make(map[int]bool)
	for _, pr := range c.Ports {
		for _, p := range pr.Expand() {
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		}
	}
	return out
}

// ParsePortSpec accepts "6667" or "6665-6669".
func ParsePortSpec(spec string) (PortRange, error) {
	if strings.Contains(spec, "-") {
		parts := strings.SplitN(spec, "-", 2)
		start, err := strconv.Atoi(parts[0])
		if err != nil {
			return PortRange{}, fmt.Errorf("invalid port range start %q", parts[0])
		}
		end, err := strconv.Atoi(parts[1])
		if err != nil {
			return PortRange{}, fmt.Errorf("invalid port range end %q", parts[1])
		}
		if start < 1 || end > 65535 || start > end {
			return PortRange{}, fmt.Errorf("invalid port range %d-%d", start, end)
		}
		return PortRange{Start: start, End: end}, nil
	}

	port, err := strconv.Atoi(spec)
	if err != nil {
		return PortRange{}, fmt.Errorf("invalid port %q", spec)
	}
	if port < 1 || port > 65535 {
		return PortRange{}, fmt.Errorf("port %d out of range 1-65535", port)
	}
	return PortRange{Start: port, End: port}, nil
}

// ParsePortList parses a comma-separated list of port specs such as
// "6667,6697" or "6665-6669,7000".
func ParsePortList(list string) ([]PortRange, error) {
	var out []PortRange
	for _, spec := range strings.Split(list, ",") {
		spec = strings.TrimSpace(spec)
		if spec == "" {
			continue
		}
		pr, err := ParsePortSpec(spec)
		if err != nil {
			return nil, err
		}
		out = append(out, pr)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty port list %q", list)
	}
	return out, nil
}

// ── Tunnel-spec parser ───────────────────────────────────────────────

// tunnelRe matches [user@]host[:port].
var tunnelRe = regexp.MustCompile(`^(?:([^@]+)@)?([^:]+)(?::(\d+))?$`)

// ParseTunnelSpec extracts user, host, and port from a string such as
// "admin@bastion.example.com:2222".  Port defaults to 22.
func ParseTunnelSpec(spec string) (user, host string, port int, err error) {
	m := tunnelRe.FindStringSubmatch(spec)
	if m == nil {
		return "", "", 0, fmt.Errorf("invalid tunnel spec %q – expected [user@]host[:port]", spec)
	}
	user = m[1]
	host = m[2]
	port = DefaultSSHPort
	if m[3] != "" {
		port, err = strconv.Atoi(m[3])
		if err != nil || port < 1 || port > 65535 {
			return "", "", 0, fmt.Errorf("invalid tunnel port %q", m[3])
		}
	}
	if host == "" {
		return "", "", 0, fmt.Errorf("tunnel host is required")
	}
	return user, host, port, nil
}

// ── Validation ───────────────────────────────────────────────────────

// Validate checks that the configuration is internally consistent.
// Every failure is an [ircerr.ConfigError].
func (c *Config) Validate() error {
	if c.Channel == "" {
		return &ircerr.ConfigError{
			Field:   "channel",
			Message: "is required",
			Hint:    "pass the channel to list, e.g. -c '#lobby'",
		}
	}
	if strings.ContainsAny(c.Channel, " ,\r\n") {
		return &ircerr.ConfigError{
			Field:   "channel",
			Value:   c.Channel,
			Message: "must be a single channel name without spaces or commas",
		}
	}
	if strings.ContainsAny(c.Nickname, " \r\n") || strings.ContainsAny(c.Username, " \r\n") {
		return &ircerr.ConfigError{
			Field:   "nick",
			Message: "nickname and username must not contain spaces",
		}
	}
	if c.Password != "" && c.PasswordPrompt {
		return &ircerr.ConfigError{
			Field:   "password-prompt",
			Message: "cannot be combined with --password",
		}
	}

	if len(c.TargetSpecs) == 0 && c.DBPath == "" {
		return &ircerr.ConfigError{
			Field:   "db",
			Message: "no targets given",
			Hint:    "pass hosts or CIDRs as arguments, or read them from a recon database with --db",
		}
	}
	if len(c.Ports) == 0 {
		return &ircerr.ConfigError{Field: "port", Message: "at least one port is required"}
	}
	for _, pr := range c.Ports {
		if pr.Start < 1 || pr.End > 65535 || pr.Start > pr.End {
			return &ircerr.ConfigError{
				Field:   "port",
				Value:   fmt.Sprintf("%d-%d", pr.Start, pr.End),
				Message: "out of range 1-65535",
			}
		}
	}

	if c.Timeout <= 0 {
		return &ircerr.ConfigError{
			Field:   "timeout",
			Value:   c.Timeout,
			Message: "must be positive",
			Hint:    "the inactivity window defaults to 2s",
		}
	}
	if c.ConnectTimeout < 0 {
		return &ircerr.ConfigError{Field: "connect-timeout", Value: c.ConnectTimeout, Message: "must not be negative"}
	}
	if c.Workers < 0 {
		return &ircerr.ConfigError{
			Field:   "workers",
			Value:   c.Workers,
			Message: "must not be negative",
			Hint:    "use 0 for one worker per target",
		}
	}

	if c.TunnelEnabled && c.TunnelHost == "" {
		return &ircerr.ConfigError{Field: "tunnel", Value: c.TunnelSpec, Message: "tunnel host is required"}
	}

	return nil
}
