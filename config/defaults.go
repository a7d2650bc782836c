package config

import "time"

// ── Default values ───────────────────────────────────────────────────
//
// All tuneable defaults live here so they are easy to audit and reuse
// across CLI flags, config file parsing, and environment variable
// loading.

const (
	// DefaultPort is used for targets given without a port and for the
	// recon store query.
	DefaultPort = 6667

	// DefaultInactivityTimeout is how long a session may go without
	// receiving a byte before it is abandoned.
	DefaultInactivityTimeout = 2 * time.Second

	// DefaultConnectTimeout bounds TCP connect plus TLS handshake.
	DefaultConnectTimeout = 10 * time.Second

	// DefaultWorkers limits the number of simultaneous sessions.
	DefaultWorkers = 100

	// MaxCIDRAddresses caps how many hosts a single CIDR may expand to.
	MaxCIDRAddresses = 1 << 16

	// DefaultSSHPort is the standard SSH port.
	DefaultSSHPort = 22

	// EnvPrefix prefixes every supported environment variable.
	EnvPrefix = "IRCNAMES_"
)
