// Command rawdata scans web pages and PDFs into structured data for AI
// assistants, and serves the relay that shares those scans.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/raysh454/rawdata/internal/cli"
	"github.com/raysh454/rawdata/internal/webclient"
)

func main() {
	webclient.RegisterDefaultBackends()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
