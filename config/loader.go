package config

// loader.go - configuration loading from environment variables.
//
// Precedence order (highest wins):
//   1. CLI flags  (handled by cmd/root.go)
//   2. Environment variables  (this file)
//   3. YAML config file  (file.go)
//   4. Defaults   (defaults.go)

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ── Environment variable mapping ─────────────────────────────────────
//
// Every supported env var uses the IRCNAMES_ prefix.  Boolean values
// accept "1", "true", "yes" (case-insensitive).

// LoadFromEnv overlays environment variables onto cfg.  Only non-empty
// env vars override the existing value.  This should be called BEFORE
// CLI flag parsing so that flags take precedence.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv(EnvPrefix + "CHANNEL"); v != "" {
		cfg.Channel = v
	}
	if v := os.Getenv(EnvPrefix + "NICK"); v != "" {
		cfg.Nickname = v
	}
	if v := os.Getenv(EnvPrefix + "USER"); v != "" {
		cfg.Username = v
	}
	if v := os.Getenv(EnvPrefix + "PASSWORD"); v != "" {
		cfg.Password = v
	}
	if envBool(EnvPrefix + "TLS") {
		cfg.TLS = true
	}
	if v := envFloat(EnvPrefix + "TIMEOUT"); v > 0 {
		cfg.Timeout = secondsDuration(v)
	}
	if v := os.Getenv(EnvPrefix + "PORTS"); v != "" {
		if ports, err := ParsePortList(v); err == nil {
			cfg.Ports = ports
		}
	}
	if v, ok := envIntSet(EnvPrefix + "WORKERS"); ok && v >= 0 {
		cfg.Workers = v
	}
	if v := os.Getenv(EnvPrefix + "DB"); v != "" {
		cfg.DBPath = v
	}

	// SSH tunnel
	if v := os.Getenv(EnvPrefix + "TUNNEL"); v != "" {
		cfg.TunnelSpec = v
	}
	if v := os.Getenv(EnvPrefix + "SSH_KEY"); v != "" {
		cfg.SSHKeyPath = v
	}

	// Output
	if v := envInt(EnvPrefix + "VERBOSE"); v > 0 {
		cfg.Verbose = v
	}
}

// ── helpers ──────────────────────────────────────────────────────────

func envInt(key string) int {
	n, _ := envIntSet(key)
	return n
}

// envIntSet distinguishes an explicit "0" from an unset variable.
func envIntSet(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func envBool(key string) bool {
	v := strings.ToLower(os.Getenv(key))
	return v == "1" || v == "true" || v == "yes"
}

// envFloat accepts fractional seconds ("0.5"), like the -w flag.
func envFloat(key string) float64 {
	f, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return 0
	}
	return f
}

func secondsDuration(sec float64) time.Duration {
	return time.Duration(sec * float64(time.Second))
}
