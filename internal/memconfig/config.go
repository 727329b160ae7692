// Package memconfig centralizes the handful of runtime knobs that would
// otherwise be scattered literals: the region-enumeration cap, the
// oversize-page cap, and whether verbose diagnostics are on by default.
// Every knob has a sane built-in default and an environment-variable
// override, for running against unusually large or unusually restricted
// targets without a recompile.
package memconfig

import "github.com/xyproto/env/v2"

// Settings is the resolved runtime configuration for one memscan
// invocation. CLI flags take precedence over these; these take precedence
// over the package defaults.
type Settings struct {
	MaxRegions       int
	MaxPageBytes     int64
	VerboseByDefault bool
}

const (
	defaultMaxRegions   = 20000
	defaultMaxPageBytes = 0x20000000 // 512 MiB
)

// Load resolves Settings from the environment. MEMSCAN_MAX_REGIONS and
// MEMSCAN_MAX_PAGE_BYTES override the hard caps; MEMSCAN_VERBOSE toggles
// the default verbosity before flag parsing sees it.
func Load() Settings {
	return Settings{
		MaxRegions:       env.Int("MEMSCAN_MAX_REGIONS", defaultMaxRegions),
		MaxPageBytes:     int64(env.Int("MEMSCAN_MAX_PAGE_BYTES", defaultMaxPageBytes)),
		VerboseByDefault: env.Bool("MEMSCAN_VERBOSE"),
	}
}
