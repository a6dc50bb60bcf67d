package config

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/hrefrewrite/internal/util/sets"
)

// Normalize canonicalizes enumerated fields in place and returns a warning for every
// value it had to change or replace.
func Normalize(c *Config) []string {
	var warnings []string

	if c.Mode != "" {
		switch m := NormalizeMode(string(c.Mode)); {
		case m == "":
			warnings = append(warnings, warnUnknown("mode", string(c.Mode), string(ModeBatch)))
			c.Mode = ModeBatch
		case m != c.Mode:
			warnings = append(warnings, warnChanged("mode", string(c.Mode), string(m)))
			c.Mode = m
		}
	}

	if c.Collisions != "" {
		switch p := NormalizeCollisionPolicy(string(c.Collisions)); {
		case p == "":
			warnings = append(warnings, warnUnknown("collisions", string(c.Collisions), string(CollisionFirstWins)))
			c.Collisions = CollisionFirstWins
		case p != c.Collisions:
			warnings = append(warnings, warnChanged("collisions", string(c.Collisions), string(p)))
			c.Collisions = p
		}
	}

	if len(c.Documents.Extensions) > 0 {
		exts := make([]string, len(c.Documents.Extensions))
		for i, ext := range c.Documents.Extensions {
			exts[i] = strings.TrimPrefix(strings.TrimSpace(ext), ".")
		}
		c.Documents.Extensions = sets.Dedupe(exts)
	}
	if len(c.Documents.IndexNames) > 0 {
		names := make([]string, len(c.Documents.IndexNames))
		for i, name := range c.Documents.IndexNames {
			names[i] = strings.TrimSpace(name)
		}
		c.Documents.IndexNames = sets.Dedupe(names)
	}
	return warnings
}

func warnChanged(field, from, to string) string {
	return fmt.Sprintf("%s normalized from %q to %q", field, from, to)
}

func warnUnknown(field, value, fallback string) string {
	return fmt.Sprintf("%s has unknown value %q; using %q", field, value, fallback)
}
