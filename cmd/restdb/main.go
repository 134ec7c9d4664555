// Package main is the entry point for the restdb server and CLI.
package main

import (
	"fmt"
	"os"

	"github.com/satishbabariya/restdb/cmd/restdb/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
