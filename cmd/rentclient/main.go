package main

import (
	"os"

	"github.com/rentchain/rentclient/cmd/rentclient/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
