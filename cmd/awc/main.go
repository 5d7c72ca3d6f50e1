// Package main provides the awc command, which updates an AniList Watching Club
// challenge code from the user's completed anime and manga lists.
//
// Usage:
//
//	awc -user NAME [-in FILE] [-out FILE] [-json] [-type anime|manga] [-refresh] [-watch]
//
// The challenge text is read from -in or stdin and the updated text is written
// to -out or stdout. Progress is printed to stderr.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	domainerrors "github.com/eydough/awc-code-updater/internal/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	code := 0
	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		switch {
		case errors.Is(err, flag.ErrHelp):
		case errors.Is(err, errUsage):
			fmt.Fprintln(os.Stderr, "awc:", err)
			code = 2
		default:
			fmt.Fprintln(os.Stderr, "awc:", domainerrors.Message(err))
			code = 1
		}
	}

	stop()
	os.Exit(code)
}
