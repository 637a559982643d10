// Command slotstore reads and writes records in a slotstore substrate.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/jacentio/slotstore/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}
