// Package config centralizes the environment-derived tunables spec §6
// leaves to the embedder: the extension search path, the per-user
// extension directory, the default channel capacity, and the tracked-
// variable history cap. It is a small, dependency-free table plus
// override functions, the way the teacher centralizes revision
// constants in tosca/revisions.go.
package config

import "os"

// Defaults, overridable via environment variables or direct field
// assignment on a Config value.
const (
	DefaultChannelCapacity = 0 // 0 means unbounded, spec §4.8
	DefaultHistoryCap      = 0 // 0 means unbounded, spec §4.2
)

// Config holds the tunables a VM reads at startup. Zero value is the
// defaults.
type Config struct {
	// ExtPath extends the extension search path (spec §6,
	// LATTICE_EXT_PATH); empty means no extra search directory.
	ExtPath string

	// HomeDir is consulted for the per-user extension directory
	// ~/.lattice/ext (spec §4.7 step 1); empty disables that entry.
	HomeDir string

	// ChannelCapacity records a default channel capacity (0 means
	// unbounded). The VM's channel() built-in does not read this field:
	// called without an Int argument it uses DefaultChannelCapacity.
	ChannelCapacity int

	// HistoryCap bounds how many past versions track() retains per
	// variable before evicting the oldest (spec §4.2). 0 means
	// unbounded.
	HistoryCap int
}

// FromEnv builds a Config from the process environment, the way
// spec §6 describes LATTICE_EXT_PATH and HOME being consulted.
func FromEnv() Config {
	return Config{
		ExtPath:         os.Getenv("LATTICE_EXT_PATH"),
		HomeDir:         os.Getenv("HOME"),
		ChannelCapacity: DefaultChannelCapacity,
		HistoryCap:      DefaultHistoryCap,
	}
}
