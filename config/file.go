package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// File mirrors the subset of Config that may be set from a YAML file.
// Durations use Go syntax ("2s", "500ms").
type File struct {
	Channel        string        `yaml:"channel"`
	Nickname       string        `yaml:"nick"`
	Username       string        `yaml:"user"`
	Password       string        `yaml:"password"`
	TLS            bool          `yaml:"tls"`
	TLSVerify      bool          `yaml:"tls_verify"`
	Timeout        time.Duration `yaml:"timeout"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	Ports          string        `yaml:"ports"`
	Workers        *int          `yaml:"workers"`
	DB             string        `yaml:"db"`
	NoProfiles     bool          `yaml:"no_profiles"`
	Targets        []string      `yaml:"targets"`

	Tunnel struct {
		Spec          string `yaml:"spec"`
		Key           string `yaml:"key"`
		Agent         bool   `yaml:"agent"`
		StrictHostKey bool   `yaml:"strict_hostkey"`
		KnownHosts    string `yaml:"known_hosts"`
	} `yaml:"tunnel"`
}

// LoadFile reads path and overlays every set field onto cfg.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return f.apply(cfg)
}

func (f *File) apply(cfg *Config) error {
	setString(&cfg.Channel, f.Channel)
	setString(&cfg.Nickname, f.Nickname)
	setString(&cfg.Username, f.Username)
	setString(&cfg.Password, f.Password)
	setString(&cfg.DBPath, f.DB)
	cfg.TLS = cfg.TLS || f.TLS
	cfg.TLSVerify = cfg.TLSVerify || f.TLSVerify
	cfg.NoProfiles = cfg.NoProfiles || f.NoProfiles

	if f.Timeout > 0 {
		cfg.Timeout = f.Timeout
	}
	if f.ConnectTimeout > 0 {
		cfg.ConnectTimeout = f.ConnectTimeout
	}
	if f.Workers != nil {
		cfg.Workers = *f.Workers
	}
	if f.Ports != "" {
		ports, err := ParsePortList(f.Ports)
		if err != nil {
			return fmt.Errorf("config file: %w", err)
		}
		cfg.Ports = ports
	}
	cfg.TargetSpecs = append(cfg.TargetSpecs, f.Targets...)

	setString(&cfg.TunnelSpec, f.Tunnel.Spec)
	setString(&cfg.SSHKeyPath, f.Tunnel.Key)
	setString(&cfg.KnownHostsPath, f.Tunnel.KnownHosts)
	cfg.UseSSHAgent = cfg.UseSSHAgent || f.Tunnel.Agent
	cfg.StrictHostKey = cfg.StrictHostKey || f.Tunnel.StrictHostKey
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
