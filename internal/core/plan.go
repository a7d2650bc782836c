package core

import (
	"context"
	"fmt"
	"io"
	"os"

	"ircnames/config"
	"ircnames/internal/session"
	"ircnames/internal/store"
)

// PlanMode prints the targets a query would contact without
// connecting to any of them.
type PlanMode struct {
	Targets []config.Target
	Store   *store.Store
	Ports   []int
	TLS     bool
	Channel string

	Stdout io.Writer
}

// Run lists targets, one per line, as "host:port/channel".
func (m *PlanMode) Run(ctx context.Context) error {
	targets := m.Targets
	if m.Store != nil {
		defer m.Store.Close()
		found, err := m.Store.Targets(ctx, m.Ports, m.TLS)
		if err != nil {
			return err
		}
		targets = config.Dedupe(append(append([]config.Target(nil), targets...), found...))
	}

	w := m.Stdout
	if w == nil {
		w = os.Stdout
	}
	for _, t := range targets {
		suffix := ""
		if t.TLS {
			suffix = " (tls)"
		}
		if _, err := fmt.Fprintf(w, "%s%s\n", session.Label(t, m.Channel), suffix); err != nil {
			return err
		}
	}
	return nil
}
