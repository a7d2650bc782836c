// ircnames lists the members of an IRC channel across many servers.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"ircnames/cmd"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := cmd.Execute(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "ircnames: %v\n", err)
		os.Exit(1)
	}
}
