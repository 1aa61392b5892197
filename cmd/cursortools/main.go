package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/petal-labs/cursortools/cli"
	"github.com/petal-labs/cursortools/registry"

	// Registers the built-in tools in the default discovery source.
	_ "github.com/petal-labs/cursortools/tools"
)

// Set via ldflags at build time.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := cli.NewRootCmd(cli.Options{
		Version:  version,
		Registry: registry.Global(),
	})
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}
