// Command server runs the TickBug API and its maintenance commands.
//
// Configuration is read from the environment (see internal/config);
// `server serve` starts the HTTP API under /api/v1.
package main

import (
	"os"

	"tickbug-backend/internal/commands"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersion(version, commit, date)
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
