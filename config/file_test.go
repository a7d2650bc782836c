package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ircnames.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, `
channel: "#lobby"
nick: probe
tls: true
timeout: 1500ms
connect_timeout: 4s
ports: "6667,6697"
workers: 0
db: recon.db
targets:
  - irc.example.net
  - 192.0.2.0/30
tunnel:
  spec: admin@bastion
  agent: true
`)
	cfg := Default()
	if err := LoadFile(path, cfg); err != nil {
		t.Fatal(err)
	}

	if cfg.Channel != "#lobby" || cfg.Nickname != "probe" {
		t.Errorf("Channel/Nickname = %q/%q", cfg.Channel, cfg.Nickname)
	}
	if !cfg.TLS {
		t.Error("TLS should be true")
	}
	if cfg.Timeout != 1500*time.Millisecond {
		t.Errorf("Timeout = %v", cfg.Timeout)
	}
	if cfg.ConnectTimeout != 4*time.Second {
		t.Errorf("ConnectTimeout = %v", cfg.ConnectTimeout)
	}
	if ports := cfg.AllPorts(); len(ports) != 2 || ports[1] != 6697 {
		t.Errorf("ports = %v", ports)
	}
	if cfg.Workers != 0 {
		t.Errorf("Workers = %d, want explicit 0", cfg.Workers)
	}
	if cfg.DBPath != "recon.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if len(cfg.TargetSpecs) != 2 {
		t.Errorf("TargetSpecs = %v", cfg.TargetSpecs)
	}
	if cfg.TunnelSpec != "admin@bastion" || !cfg.UseSSHAgent {
		t.Errorf("tunnel = %q agent=%v", cfg.TunnelSpec, cfg.UseSSHAgent)
	}
}

func TestLoadFile_PartialKeepsDefaults(t *testing.T) {
	path := writeFile(t, "channel: \"#x\"\n")
	cfg := Default()
	if err := LoadFile(path, cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Timeout != DefaultInactivityTimeout || cfg.Workers != DefaultWorkers {
		t.Errorf("defaults lost: timeout=%v workers=%d", cfg.Timeout, cfg.Workers)
	}
}

func TestLoadFile_EnvWins(t *testing.T) {
	path := writeFile(t, "channel: \"#file\"\n")
	t.Setenv("IRCNAMES_CHANNEL", "#env")

	cfg := Default()
	if err := LoadFile(path, cfg); err != nil {
		t.Fatal(err)
	}
	LoadFromEnv(cfg)
	if cfg.Channel != "#env" {
		t.Errorf("Channel = %q, want #env", cfg.Channel)
	}
}

func TestLoadFile_Errors(t *testing.T) {
	if err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"), Default()); err == nil {
		t.Error("missing file should fail")
	}
	if err := LoadFile(writeFile(t, "channel: [unclosed\n"), Default()); err == nil {
		t.Error("malformed YAML should fail")
	}
	if err := LoadFile(writeFile(t, "ports: \"0\"\n"), Default()); err == nil {
		t.Error("bad port list should fail")
	}
	if err := LoadFile(writeFile(t, "timeout: soon\n"), Default()); err == nil {
		t.Error("bad duration should fail")
	}
}
