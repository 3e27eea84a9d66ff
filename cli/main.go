package main

import (
	"os"

	"github.com/netsentry-io/netsentry/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
