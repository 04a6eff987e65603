package main

import (
	"fmt"
	"os"
	"time"

	app "github.com/valter-silva-au/context-timer/internal"
	"github.com/valter-silva-au/context-timer/internal/cli"
)

// Set by goreleaser ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.SetVersionInfo(version, commit, date)
	basePath := app.ResolveBasePath()

	a, err := app.NewApp(basePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing ctimer: %v\n", err)
		os.Exit(1)
	}

	if started, err := a.CheckAutoStart(time.Now()); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: auto-start check failed: %v\n", err)
	} else if started {
		fmt.Fprintln(os.Stderr, "Work Day started automatically.")
	}

	err = cli.Execute()
	_ = a.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
