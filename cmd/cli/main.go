// Package main is the entry point for the solarwise CLI.
package main

import (
	"os"

	"solarwise/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
