package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// appVersion is overridden by ldflags during release builds.
var appVersion = "0.1.0"

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
