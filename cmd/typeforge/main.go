package main

import (
	"fmt"
	"os"

	"github.com/teranos/typeforge/cmd/typeforge/commands"
)

func main() {
	if err := commands.RootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(commands.ExitCode(err))
	}
}
