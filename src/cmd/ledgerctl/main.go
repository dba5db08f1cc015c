package main

import (
	"os"

	"github.com/sente-books/ledger-service/src/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
