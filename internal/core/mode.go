// Package core is the orchestration layer.  It composes target
// discovery, sessions and reporting into complete operational modes
// and provides a builder that selects the right mode from a Config.
//
// Architecture layers (bottom → top):
//
//	transport  →  irc  →  session  →  core  →  cmd (CLI)
package core

import "context"

// Mode represents a complete operational mode of ircnames (query or
// dry-run plan).  Each mode owns its full lifecycle from target
// discovery to teardown.
type Mode interface {
	Run(ctx context.Context) error
}
