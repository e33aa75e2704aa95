// The chemrxn binary is the command-line client for molecule analysis,
// format conversion, and reaction validation.
package main

import (
	"os"

	"github.com/turtacn/ChemRxn-Engine/internal/interfaces/cli"
)

// Build-time variables injected via ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func init() {
	cli.Version = version
	cli.GitCommit = commit
	cli.BuildDate = buildDate
}

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
