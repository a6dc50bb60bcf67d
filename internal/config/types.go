package config

import "strings"

// Mode selects when the rewrite pipeline emits files.
type Mode string

const (
	ModeBatch       Mode = "batch"
	ModeIncremental Mode = "incremental"
)

// NormalizeMode returns the canonical mode for raw, or "" when raw is unknown.
func NormalizeMode(raw string) Mode {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "batch", "end":
		return ModeBatch
	case "incremental", "stream":
		return ModeIncremental
	default:
		return ""
	}
}

// CollisionPolicy decides what happens when two files claim the same mapping key.
type CollisionPolicy string

const (
	CollisionFirstWins CollisionPolicy = "first-wins"
	CollisionError     CollisionPolicy = "error"
)

// NormalizeCollisionPolicy returns the canonical policy for raw, or "" when raw is unknown.
func NormalizeCollisionPolicy(raw string) CollisionPolicy {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), "_", "-") {
	case "first-wins", "first":
		return CollisionFirstWins
	case "error", "fail":
		return CollisionError
	default:
		return ""
	}
}
