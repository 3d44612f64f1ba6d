// Command gitnexus is the CLI surface over the ingestion pipeline and the
// query surface. It is thin wiring only: every Action here loads
// configuration, builds an internal/ingest.Pipeline or internal/query.Surface,
// and delegates: a urfave/cli App with top-level flags and a Commands
// slice, one action function per subcommand in its own file.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

// exit codes: 0 success, 1 user-recoverable error, anything else an
// internal failure.
const (
	exitOK            = 0
	exitUserError     = 1
	exitInternalError = 2
)

func main() {
	app := &cli.App{
		Name:  "gitnexus",
		Usage: "build and query a code knowledge graph for AI coding agents",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "root",
				Usage: "repository root to operate on (default: current directory)",
				Value: ".",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "enable verbose logging",
			},
		},
		Commands: []*cli.Command{
			analyzeCommand(),
			serveCommand(),
			mcpCommand(),
			queryCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "gitnexus:", err)
		os.Exit(exitCodeFor(err))
	}
}

// exitCodeFor maps an error to the exit-code policy. userError-wrapped
// errors (not a repo, stale index requiring --force) exit 1; anything
// else is treated as an internal failure.
func exitCodeFor(err error) int {
	if _, ok := err.(*userError); ok {
		return exitUserError
	}
	return exitInternalError
}

// userError marks a condition the operator can fix directly (missing
// repo, stale index without --force), distinguishing it from internal
// failures.
type userError struct{ msg string }

func (e *userError) Error() string { return e.msg }
