// Command s739 embeds and recovers payloads hidden in PNG and JPEG
// carriers via keyed LSB steganography.
package main

import (
	"os"

	"github.com/s739/s739/cmd/s739/internal/cli"
)

// version, commit, and date are injected at build time via -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := cli.Run(version, commit, date); err != nil {
		os.Exit(1)
	}
}
