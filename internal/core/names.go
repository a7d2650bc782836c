package core

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/bassosimone/errclass"
	"github.com/panjf2000/ants/v2"

	"ircnames/config"
	ircerr "ircnames/internal/errors"
	"ircnames/internal/irc"
	"ircnames/internal/metrics"
	"ircnames/internal/report"
	"ircnames/internal/session"
	"ircnames/internal/store"
	"ircnames/internal/transport"
	"ircnames/util"
)

// RunFunc runs one session against target.
type RunFunc func(ctx context.Context, target config.Target) (*session.Result, error)

// NamesMode queries the member list of one channel on every target.
type NamesMode struct {
	Targets []config.Target // explicit targets
	Store   *store.Store    // optional recon database
	Ports   []int           // ports matched in the store
	TLS     bool

	Options        irc.Options
	Dialer         transport.Dialer
	TLSConfig      *tls.Config
	Timeout        time.Duration // inactivity window
	ConnectTimeout time.Duration
	Workers        int // 0 → one per target

	JSON         bool
	XLSXPath     string
	SaveProfiles bool

	Logger  *util.Logger
	Metrics *metrics.Collector

	// Stdout defaults to os.Stdout when nil.
	Stdout io.Writer
}

func (m *NamesMode) stdout() io.Writer {
	if m.Stdout != nil {
		return m.Stdout
	}
	return os.Stdout
}

// Run discovers targets, runs one session per target, and reports the
// collected results.  The dialer and store are closed when Run returns.
func (m *NamesMode) Run(ctx context.Context) error {
	defer m.Dialer.Close()
	if m.Store != nil {
		defer m.Store.Close()
	}

	targets, err := m.discover(ctx)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		m.Logger.Warn("no targets to query")
		return nil
	}

	m.Logger.Verbose("querying %s on %d target(s)", m.Options.Channel, len(targets))
	start := time.Now()
	results, err := m.RunSessions(ctx, targets, m.runSession)
	if err != nil {
		return err
	}
	m.Logger.Verbose("%d of %d target(s) returned a name list in %v",
		len(results), len(targets), util.Since(start))
	m.Logger.Debug("metrics: %s", m.Metrics.JSON())

	return m.report(ctx, results)
}

// discover merges explicit targets with those found in the store.
func (m *NamesMode) discover(ctx context.Context) ([]config.Target, error) {
	targets := append([]config.Target(nil), m.Targets...)
	if m.Store == nil {
		return targets, nil
	}
	found, err := m.Store.Targets(ctx, m.Ports, m.TLS)
	if err != nil {
		return nil, err
	}
	m.Logger.Verbose("%d target(s) read from %s", len(found), m.Store.Path())
	return config.Dedupe(append(targets, found...)), nil
}

// RunSessions runs every target through run on a bounded worker pool
// and returns the successful results ordered by channel label.  Failed
// sessions are logged and contribute nothing.
func (m *NamesMode) RunSessions(ctx context.Context, targets []config.Target, run RunFunc) ([]session.Result, error) {
	if len(targets) == 0 {
		return nil, nil
	}
	size := m.Workers
	if size <= 0 || size > len(targets) {
		size = len(targets)
	}

	var (
		results Results
		wg      sync.WaitGroup
	)
	pool, err := ants.NewPoolWithFunc(size, func(item interface{}) {
		defer wg.Done()
		target := item.(config.Target)

		res, err := run(ctx, target)
		if err != nil {
			kind := ircerr.KindOf(err)
			m.Metrics.SessionFailed(kind, err.Error())
			m.Logger.Verbose("%s: %s failure [%s]: %v", target.Addr(), kind, errclass.New(err), err)
			return
		}
		m.Metrics.SessionSucceeded(len(res.Usernames))
		results.Add(*res)
	}, ants.WithPanicHandler(func(p interface{}) {
		m.Logger.Error("session panicked: %v", p)
	}))
	if err != nil {
		return nil, fmt.Errorf("creating worker pool: %w", err)
	}
	defer pool.Release()

	for _, target := range targets {
		wg.Add(1)
		if err := pool.Invoke(target); err != nil {
			wg.Done()
			m.Logger.Error("%s: not scheduled: %v", target.Addr(), err)
		}
	}
	wg.Wait()

	return results.Sorted(), nil
}

func (m *NamesMode) runSession(ctx context.Context, target config.Target) (*session.Result, error) {
	s := session.New(target, m.Options, m.Dialer, m.Logger)
	s.TLSConfig = m.TLSConfig
	s.Metrics = m.Metrics
	if m.Timeout > 0 {
		s.Window = m.Timeout
	}
	if m.ConnectTimeout > 0 {
		s.ConnectTimeout = m.ConnectTimeout
	}
	return s.Run(ctx)
}

func (m *NamesMode) report(ctx context.Context, results []session.Result) error {
	rows := report.Rows(results)

	if m.JSON {
		if err := report.WriteJSON(m.stdout(), results); err != nil {
			return fmt.Errorf("writing JSON: %w", err)
		}
	} else if err := report.WriteTable(m.stdout(), rows); err != nil {
		return fmt.Errorf("writing table: %w", err)
	}

	if m.XLSXPath != "" {
		if err := report.WriteXLSX(m.XLSXPath, rows); err != nil {
			return err
		}
		m.Logger.Info("%d row(s) written to %s", len(rows), m.XLSXPath)
	}

	if m.Store != nil && m.SaveProfiles {
		n, err := m.Store.SaveProfiles(ctx, report.Profiles(results))
		if err != nil {
			return err
		}
		m.Logger.Info("%d new profile(s) saved to %s", n, m.Store.Path())
	}
	return nil
}
