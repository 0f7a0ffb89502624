// Package main provides the symtree command.
package main

import (
	"os"

	"github.com/leapstack-labs/symtree/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
