// Package appshell wires a run function to the process: signals, arguments
// and the exit status.
package appshell

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
)

// Main runs run with os.Args and exits with its code. SIGINT and SIGTERM
// cancel the context; a run cut short that way exits 130.
func Main(run func(context.Context, []string, io.Writer, io.Writer) int) {
	os.Exit(execute(run, os.Args[1:], os.Stdout, os.Stderr))
}

func execute(run func(context.Context, []string, io.Writer, io.Writer) int, argv []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	code := run(ctx, argv, stdout, stderr)
	if ctx.Err() != nil && code == 0 {
		code = 130
	}
	return code
}
