package main

import (
	"os"

	"github.com/ledgertools-dev/ledgertools/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
