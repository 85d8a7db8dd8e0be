package main

import (
	"context"
	"os"

	"safereturn/internal/cli"
)

// main keeps process wiring in internal/app; commands live in internal/cli.
func main() {
	if err := cli.NewRootCommand().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
