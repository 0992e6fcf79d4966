// Package main is the entry point for the tollgate CLI.
package main

import (
	"os"

	"github.com/mrz1836/tollgate/internal/cli"
)

// Set at build time with -ldflags "-X main.version=... -X main.commit=... -X main.date=...".
//
//nolint:gochecknoglobals // link-time build metadata
var (
	version = ""
	commit  = ""
	date    = ""
)

func main() {
	cli.SetBuildInfo(cli.BuildInfo{Version: version, Commit: commit, Date: date})
	if err := cli.Execute(); err != nil {
		os.Exit(cli.ExitCode(err))
	}
}
