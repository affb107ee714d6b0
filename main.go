// Package main is the entrypoint of rglob.
package main

import (
	"fmt"
	"os"

	"github.com/idelchi/rglob/internal/cli"
)

// version is set at build time via -ldflags.
//
//nolint:gochecknoglobals // Set by the linker
var version = "unknown - unofficial & generated by unknown"

func main() {
	if err := cli.New(version).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
