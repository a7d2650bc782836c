// Package cmd wires up the CLI flags and dispatches to the core modes.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	flag "github.com/spf13/pflag"

	"ircnames/config"
	"ircnames/internal/core"
	"ircnames/internal/metrics"
	"ircnames/util"
)

// version is overridable at link time:
//
//	go build -ldflags "-X ircnames/cmd.version=2.0.0"
var version = "1.0.0" //nolint:gochecknoglobals

// readSecret is replaced in tests.
var readSecret = util.ReadSecret //nolint:gochecknoglobals

// Execute parses args and runs the selected mode.  Reports go to
// stdout and log lines to stderr.
func Execute(ctx context.Context, args []string) error {
	return run(ctx, args, os.Stdout, os.Stderr)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	// ── lower-precedence sources ─────────────────────────────────
	cfg := config.Default()
	if path := configPath(args); path != "" {
		if err := config.LoadFile(path, cfg); err != nil {
			return err
		}
	}
	config.LoadFromEnv(cfg)

	fs := flag.NewFlagSet("ircnames", flag.ContinueOnError)
	fs.SetOutput(stderr)

	// ── session ──────────────────────────────────────────────────
	fs.StringVarP(&cfg.Channel, "channel", "c", cfg.Channel, "Channel to list (required)")
	fs.StringVarP(&cfg.Nickname, "nick", "n", cfg.Nickname, "Nickname (random if empty)")
	fs.StringVarP(&cfg.Username, "user", "u", cfg.Username, "Username (defaults to the nickname)")
	fs.StringVar(&cfg.Password, "password", cfg.Password, "Server password sent with PASS")
	fs.BoolVar(&cfg.PasswordPrompt, "password-prompt", false, "Read the server password from the terminal")
	fs.BoolVarP(&cfg.TLS, "tls", "s", cfg.TLS, "Connect with TLS")
	fs.BoolVar(&cfg.TLSVerify, "tls-verify", cfg.TLSVerify, "Verify the server TLS certificate (off by default)")

	timeoutSec := cfg.Timeout.Seconds()
	connectSec := cfg.ConnectTimeout.Seconds()
	fs.Float64VarP(&timeoutSec, "timeout", "w", timeoutSec, "Inactivity timeout in seconds")
	fs.Float64Var(&connectSec, "connect-timeout", connectSec, "Connect and TLS handshake timeout in seconds")

	// ── targets ──────────────────────────────────────────────────
	var portList string
	fs.StringVarP(&portList, "port", "P", "", fmt.Sprintf("Port list for bare hosts and --db, e.g. 6667,6697 (default %d)", config.DefaultPort))
	fs.IntVarP(&cfg.Workers, "workers", "j", cfg.Workers, "Concurrent sessions (0 = one per target)")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Recon SQLite database: read targets from ports, write profiles")
	fs.BoolVar(&cfg.NoProfiles, "no-profiles", cfg.NoProfiles, "Do not write profiles to --db")

	// ── SSH tunnel ───────────────────────────────────────────────
	fs.StringVarP(&cfg.TunnelSpec, "tunnel", "T", cfg.TunnelSpec, "SSH tunnel via [user@]host[:port]")
	fs.StringVar(&cfg.SSHKeyPath, "ssh-key", cfg.SSHKeyPath, "SSH private key file")
	fs.BoolVar(&cfg.SSHPassword, "ssh-password", false, "Prompt for SSH password")
	fs.BoolVar(&cfg.UseSSHAgent, "ssh-agent", cfg.UseSSHAgent, "Use SSH agent")
	fs.BoolVar(&cfg.StrictHostKey, "strict-hostkey", cfg.StrictHostKey, "Verify SSH host keys")
	fs.StringVar(&cfg.KnownHostsPath, "known-hosts", cfg.KnownHostsPath, "Custom known_hosts path")

	// ── output ───────────────────────────────────────────────────
	fs.BoolVar(&cfg.JSON, "json", false, "Print results as JSON")
	fs.StringVar(&cfg.XLSXPath, "xlsx", "", "Also write results to an XLSX workbook")
	envVerbose := cfg.Verbose
	fs.CountVarP(&cfg.Verbose, "verbose", "v", "Increase verbosity (repeatable)")
	fs.BoolVar(&cfg.DryRun, "dry-run", false, "Print the targets that would be queried and exit")
	fs.String("config", "", "YAML config file")

	var showVersion, showHelp bool
	fs.BoolVar(&showVersion, "version", false, "Print version and exit")
	fs.BoolVarP(&showHelp, "help", "h", false, "Show this help")

	fs.Usage = func() { printUsage(fs, stderr) }

	// ── parse ────────────────────────────────────────────────────
	if err := fs.Parse(args); err != nil {
		return err
	}

	if showHelp || (len(args) == 0 && cfg.Channel == "" && cfg.DBPath == "" && len(cfg.TargetSpecs) == 0) {
		printUsage(fs, stderr)
		return nil
	}
	if showVersion {
		fmt.Fprintf(stdout, "ircnames %s\n", version)
		return nil
	}

	if !fs.Changed("verbose") {
		cfg.Verbose = envVerbose
	}
	cfg.Timeout = secondsToDuration(timeoutSec)
	cfg.ConnectTimeout = secondsToDuration(connectSec)
	if portList != "" {
		ports, err := config.ParsePortList(portList)
		if err != nil {
			return fmt.Errorf("port: %w", err)
		}
		cfg.Ports = ports
	}
	cfg.TargetSpecs = append(cfg.TargetSpecs, fs.Args()...)

	// ── tunnel spec ──────────────────────────────────────────────
	if cfg.TunnelSpec != "" {
		user, host, port, err := config.ParseTunnelSpec(cfg.TunnelSpec)
		if err != nil {
			return fmt.Errorf("tunnel: %w", err)
		}
		cfg.TunnelEnabled = true
		cfg.TunnelUser = user
		cfg.TunnelHost = host
		cfg.TunnelPort = port
	}

	// ── validate ─────────────────────────────────────────────────
	if err := cfg.Validate(); err != nil {
		return err
	}

	// ── build components ─────────────────────────────────────────
	logger := util.NewLogger(cfg.Verbose)
	logger.SetOutput(stderr)

	if cfg.PasswordPrompt && !cfg.DryRun {
		pw, err := readSecret("IRC server password: ")
		if err != nil {
			return err
		}
		cfg.Password = pw
	}

	mode, err := core.Build(cfg, logger, metrics.New())
	if err != nil {
		return err
	}
	switch m := mode.(type) {
	case *core.NamesMode:
		m.Stdout = stdout
	case *core.PlanMode:
		m.Stdout = stdout
	}
	return mode.Run(ctx)
}

// ── helpers ──────────────────────────────────────────────────────────

// configPath finds --config before flag parsing so the file can be
// loaded underneath the environment and the flags.
func configPath(args []string) string {
	for i, a := range args {
		switch {
		case a == "--":
			return ""
		case a == "--config" && i+1 < len(args):
			return args[i+1]
		case strings.HasPrefix(a, "--config="):
			return strings.TrimPrefix(a, "--config=")
		}
	}
	return ""
}

func secondsToDuration(sec float64) time.Duration {
	return time.Duration(sec * float64(time.Second))
}

func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintf(w, `ircnames – IRC channel member lister v%s

Connects to each target, joins a channel, and lists its members.

Usage:
  ircnames -c <channel> [options] <target> [targets...]
  ircnames -c <channel> --db recon.db [options]

Targets are host, host:port, [v6]:port or a CIDR such as 192.0.2.0/24.

Options:
`, version)
	fs.PrintDefaults()
	fmt.Fprintf(w, `
Environment:
  IRCNAMES_CHANNEL, IRCNAMES_NICK, IRCNAMES_USER, IRCNAMES_PASSWORD,
  IRCNAMES_TLS, IRCNAMES_TIMEOUT, IRCNAMES_PORTS, IRCNAMES_WORKERS, IRCNAMES_DB,
  IRCNAMES_TUNNEL, IRCNAMES_SSH_KEY, IRCNAMES_VERBOSE

Examples:
  ircnames -c '#lobby' irc.example.net            List one server
  ircnames -c '#lobby' -s -P 6697 10.0.0.0/24     TLS sweep of a subnet
  ircnames -c '#ops' --db recon.db -j 50          Targets from a recon db
  ircnames -c '#ops' -T admin@bastion 10.1.2.3    Through an SSH jump host
`)
}
