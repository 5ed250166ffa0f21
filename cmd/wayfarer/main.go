// Command wayfarer walks a virtual traveller through a location-based game:
// it follows a position feed, loots waypoints, catches creatures and keeps
// the inventory lean, reporting every scan to the configured sinks.
package main

import (
	"os"
)

// BuildVersion and BuildDate can be set at build time via ldflags.
var (
	BuildVersion = "0.0.1"
	BuildDate    = "unknown"

	AppName = "wayfarer"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
