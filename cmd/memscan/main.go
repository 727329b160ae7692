// Command memscan is an interactive, Cheat-Engine-style memory inspector
// for a live foreign process: list running processes, scan their memory
// for a value, refine the result set, and peek/poke individual addresses.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/xyproto/memscan/internal/memconfig"
	"github.com/xyproto/memscan/internal/procmem"
)

const versionString = "memscan 0.1.0"

// VerboseMode holds the resolved -v/-verbose flag (or MEMSCAN_VERBOSE)
// setting. It is passed to RunCLI, whose scanning subcommands copy it into
// scanengine.VerboseMode before a scan starts.
var VerboseMode bool

func main() {
	cfg := memconfig.Load()
	procmem.MaxRegions = cfg.MaxRegions
	procmem.MaxPageBytes = uint64(cfg.MaxPageBytes)

	// Go's flag package stops parsing at the first non-flag argument, so
	// global flags must come before the subcommand: memscan -v scan ...
	var verbose = flag.Bool("v", cfg.VerboseByDefault, "verbose mode (show diagnostic messages)")
	var verboseLong = flag.Bool("verbose", cfg.VerboseByDefault, "verbose mode (show diagnostic messages)")
	var version = flag.Bool("version", false, "print version information and exit")
	flag.Parse()

	VerboseMode = *verbose || *verboseLong

	if *version {
		fmt.Println(versionString)
		os.Exit(0)
	}

	if err := RunCLI(flag.Args(), VerboseMode); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
