package core

import (
	"path/filepath"
	"testing"

	"ircnames/config"
	"ircnames/internal/metrics"
	"ircnames/internal/transport"
	"ircnames/util"
)

func baseConfig() *config.Config {
	cfg := config.Default()
	cfg.Channel = "#go"
	cfg.TargetSpecs = []string{"irc.example.net", "192.0.2.0/30"}
	return cfg
}

// TestBuild_Names verifies that Build produces a NamesMode with the
// expanded targets for a plain configuration.
func TestBuild_Names(t *testing.T) {
	mode, err := Build(baseConfig(), util.NewLogger(0), metrics.New())
	if err != nil {
		t.Fatal(err)
	}
	nm, ok := mode.(*NamesMode)
	if !ok {
		t.Fatalf("expected *NamesMode, got %T", mode)
	}
	if len(nm.Targets) != 5 {
		t.Errorf("targets = %v, want 5", nm.Targets)
	}
	if nm.Options.Channel != "#go" {
		t.Errorf("channel = %q", nm.Options.Channel)
	}
	if nm.TLSConfig != nil {
		t.Error("TLS config should be nil without --tls")
	}
	if _, ok := nm.Dialer.(*transport.TCPDialer); !ok {
		t.Errorf("expected *TCPDialer, got %T", nm.Dialer)
	}
	if !nm.SaveProfiles {
		t.Error("profiles should be saved by default")
	}
}

// TestBuild_DryRun verifies Build produces a PlanMode.
func TestBuild_DryRun(t *testing.T) {
	cfg := baseConfig()
	cfg.DryRun = true

	mode, err := Build(cfg, util.NewLogger(0), nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := mode.(*PlanMode); !ok {
		t.Errorf("expected *PlanMode, got %T", mode)
	}
}

// TestBuild_TLS verifies that --tls reaches every target and skips
// certificate verification unless --tls-verify is set.
func TestBuild_TLS(t *testing.T) {
	cfg := baseConfig()
	cfg.TLS = true

	mode, err := Build(cfg, util.NewLogger(0), nil)
	if err != nil {
		t.Fatal(err)
	}
	nm := mode.(*NamesMode)
	if nm.TLSConfig == nil || !nm.TLSConfig.InsecureSkipVerify {
		t.Errorf("TLS config = %+v, want unverified", nm.TLSConfig)
	}
	for _, tg := range nm.Targets {
		if !tg.TLS {
			t.Errorf("target %s should use TLS", tg)
		}
	}

	cfg.TLSVerify = true
	mode, err = Build(cfg, util.NewLogger(0), nil)
	if err != nil {
		t.Fatal(err)
	}
	if tc := mode.(*NamesMode).TLSConfig; tc == nil || tc.InsecureSkipVerify {
		t.Errorf("TLS config = %+v, want verified", tc)
	}
}

// TestBuild_Tunnel verifies that -T selects the SSH dialer.
func TestBuild_Tunnel(t *testing.T) {
	cfg := baseConfig()
	cfg.TunnelEnabled = true
	cfg.TunnelHost = "bastion"
	cfg.TunnelUser = "admin"
	cfg.TunnelPort = 22

	mode, err := Build(cfg, util.NewLogger(0), nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := mode.(*NamesMode).Dialer.(*transport.SSHDialer); !ok {
		t.Errorf("expected *SSHDialer, got %T", mode.(*NamesMode).Dialer)
	}
}

// TestBuild_Store verifies that --db opens the store and --no-profiles
// disables profile writes.
func TestBuild_Store(t *testing.T) {
	cfg := baseConfig()
	cfg.DBPath = filepath.Join(t.TempDir(), "recon.db")
	cfg.NoProfiles = true

	mode, err := Build(cfg, util.NewLogger(0), nil)
	if err != nil {
		t.Fatal(err)
	}
	nm := mode.(*NamesMode)
	if nm.Store == nil {
		t.Fatal("store should be open")
	}
	defer nm.Store.Close()
	if nm.SaveProfiles {
		t.Error("--no-profiles should disable profile writes")
	}
}

// TestBuild_BadTarget verifies that an unparseable target is rejected.
func TestBuild_BadTarget(t *testing.T) {
	cfg := baseConfig()
	cfg.TargetSpecs = []string{"irc.example.net:notaport"}

	if _, err := Build(cfg, util.NewLogger(0), nil); err == nil {
		t.Fatal("expected error for bad target")
	}
}
