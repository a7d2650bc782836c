// Package store reads IRC targets from, and writes harvested profiles
// to, a recon SQLite database.
package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"ircnames/config"
)

// Resource is the profiles.resource value for IRC users.
const Resource = "irc"

// Module is recorded in profiles.module for every row this tool adds.
const Module = "irc_users"

const targetsQuery = `SELECT DISTINCT ip_address, port FROM ports
WHERE ip_address IS NOT NULL AND port = ?`

const profilesSchema = `CREATE TABLE IF NOT EXISTS profiles (
	username TEXT,
	resource TEXT,
	url      TEXT,
	category TEXT,
	notes    TEXT,
	module   TEXT
)`

// The profiles table may come from an existing recon workspace without
// a unique constraint, so duplicates are filtered in the statement.
const insertProfile = `INSERT INTO profiles (username, resource, url, module)
SELECT ?, ?, ?, ?
WHERE NOT EXISTS (
	SELECT 1 FROM profiles WHERE username = ? AND resource = ? AND url = ?
)`

// Profile is one user seen in one channel.
type Profile struct {
	Username string `json:"username"`
	Resource string `json:"resource"`
	URL      string `json:"url"`
}

// Store wraps a recon database.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens the SQLite database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return &Store{db: db, path: path}, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// Path returns the file the store was opened from.
func (s *Store) Path() string { return s.path }

// Targets returns every distinct (ip_address, port) in the ports table
// matching one of ports.
func (s *Store) Targets(ctx context.Context, ports []int, tls bool) ([]config.Target, error) {
	var out []config.Target
	for _, port := range ports {
		rows, err := s.db.QueryContext(ctx, targetsQuery, port)
		if err != nil {
			return nil, fmt.Errorf("querying ports: %w", err)
		}
		for rows.Next() {
			var t config.Target
			if err := rows.Scan(&t.Host, &t.Port); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scanning ports row: %w", err)
			}
			t.TLS = tls
			out = append(out, t)
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, fmt.Errorf("reading ports: %w", err)
		}
	}
	return config.Dedupe(out), nil
}

// SaveProfiles creates the profiles table if needed and inserts every
// profile not already present.  It returns the number of new rows.
func (s *Store) SaveProfiles(ctx context.Context, profiles []Profile) (int, error) {
	if _, err := s.db.ExecContext(ctx, profilesSchema); err != nil {
		return 0, fmt.Errorf("creating profiles table: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, insertProfile)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	added := 0
	for _, p := range profiles {
		res, err := stmt.ExecContext(ctx,
			p.Username, p.Resource, p.URL, Module,
			p.Username, p.Resource, p.URL)
		if err != nil {
			return 0, fmt.Errorf("inserting profile %s: %w", p.Username, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			added += int(n)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing profiles: %w", err)
	}
	return added, nil
}
