// Package version carries build metadata set through -ldflags, for example
// -X git.home.luguber.info/inful/hrefrewrite/internal/version.Version=v0.3.0.
package version

// Version is the release version, or "dev" for local builds.
var Version = "dev"

// Commit is the source revision the binary was built from.
var Commit = "unknown"

// String returns the version with the commit appended when known.
func String() string {
	if Commit == "" || Commit == "unknown" {
		return Version
	}
	return Version + " (" + Commit + ")"
}
