// Package constant defines immutable application-level identifiers and configuration defaults.
package constant

const (
	// App is the canonical application identifier used for filesystem paths and CLI branding.
	App = "manga-tui"

	// EnvPrefix is the prefix of every environment variable the application reads.
	EnvPrefix = "manga_tui"

	// Version is the current application semantic version string.
	Version = "0.6.0"

	// UserAgent is the default HTTP User-Agent sent to remote sources.
	UserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:133.0) Gecko/20100101 Firefox/133.0"
)

// Build metadata, overridden at link time with -ldflags "-X".
var (
	BuiltAt  = "unknown"
	BuiltBy  = "unknown"
	Revision = "unknown"
)
