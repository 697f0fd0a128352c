package main

import (
	"fmt"
	"os"
)

// main is the application composition root.
// It loads configuration, wires concrete adapters behind ports and runs the
// requested subcommand.
func main() {
	if err := rootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
