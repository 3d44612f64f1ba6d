// Package debug provides an env-gated Printf used throughout the ingestion
// phases.
package debug

import (
	"fmt"
	"os"
	"sync"
)

var (
	once    sync.Once
	enabled bool
)

func initEnabled() {
	v := os.Getenv("GITNEXUS_DEBUG")
	enabled = v != "" && v != "0" && v != "false"
}

// Enabled reports whether GITNEXUS_DEBUG is set.
func Enabled() bool {
	once.Do(initEnabled)
	return enabled
}

// Printf writes to stderr when debug logging is enabled. No-op otherwise.
func Printf(format string, args ...interface{}) {
	if Enabled() {
		fmt.Fprintf(os.Stderr, "[gitnexus debug] "+format, args...)
	}
}
