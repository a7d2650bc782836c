package core

import (
	"crypto/tls"

	"ircnames/config"
	"ircnames/internal/irc"
	"ircnames/internal/metrics"
	"ircnames/internal/store"
	"ircnames/internal/transport"
	"ircnames/tunnel"
	"ircnames/util"
)

// Build constructs the appropriate Mode from the given configuration.
// cfg must already be validated.  The returned mode owns any store it
// opened.
func Build(cfg *config.Config, logger *util.Logger, m *metrics.Collector) (Mode, error) {
	ports := cfg.AllPorts()
	targets, err := config.ExpandTargets(cfg.TargetSpecs, ports, cfg.TLS)
	if err != nil {
		return nil, err
	}

	var st *store.Store
	if cfg.DBPath != "" {
		st, err = store.Open(cfg.DBPath)
		if err != nil {
			return nil, err
		}
	}

	if cfg.DryRun {
		return &PlanMode{
			Targets: targets,
			Store:   st,
			Ports:   ports,
			TLS:     cfg.TLS,
			Channel: cfg.Channel,
		}, nil
	}

	return &NamesMode{
		Targets: targets,
		Store:   st,
		Ports:   ports,
		TLS:     cfg.TLS,
		Options: irc.Options{
			Channel:  cfg.Channel,
			Nickname: cfg.Nickname,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Dialer:         buildDialer(cfg, logger),
		TLSConfig:      buildTLSConfig(cfg),
		Timeout:        cfg.Timeout,
		ConnectTimeout: cfg.ConnectTimeout,
		Workers:        cfg.Workers,
		JSON:           cfg.JSON,
		XLSXPath:       cfg.XLSXPath,
		SaveProfiles:   !cfg.NoProfiles,
		Logger:         logger,
		Metrics:        m,
	}, nil
}

// ── shared helpers ───────────────────────────────────────────────────

// buildDialer creates the right transport.Dialer for the given config.
func buildDialer(cfg *config.Config, logger *util.Logger) transport.Dialer {
	if cfg.TunnelEnabled {
		return transport.NewSSHDialer(&tunnel.SSHConfig{
			User:          cfg.TunnelUser,
			Host:          cfg.TunnelHost,
			Port:          cfg.TunnelPort,
			KeyPath:       cfg.SSHKeyPath,
			PromptPass:    cfg.SSHPassword,
			UseAgent:      cfg.UseSSHAgent,
			StrictHostKey: cfg.StrictHostKey,
			KnownHosts:    cfg.KnownHostsPath,
		}, logger)
	}
	return &transport.TCPDialer{Timeout: cfg.ConnectTimeout}
}

// buildTLSConfig returns nil unless TLS is enabled.  Targets are
// mostly bare addresses with self-signed certificates, so the chain is
// only checked with --tls-verify.
func buildTLSConfig(cfg *config.Config) *tls.Config {
	if !cfg.TLS {
		return nil
	}
	return &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: !cfg.TLSVerify, //nolint:gosec
	}
}
