// enricher fills in the email address and work history of every contact in a
// connections export by driving a logged-in browser session, one contact at a
// time, saving after each one so an interrupted run resumes where it stopped.
//
// Usage:
//
//	enricher import  [--connections Connections.csv] [--store Emails.json]
//	enricher email   [--config config.json] [--store Emails.json]
//	enricher history [--config config.json] [--store Emails.json]
//	enricher status  [--store Emails.json]
//	enricher reset-failures <email|history> [--store Emails.json]
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/shpitdev/connections-enricher/internal/util"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: %s\n", util.RedactSecrets(err.Error()))
		return exitCode(err)
	}
	return 0
}

// usageError marks configuration and invocation mistakes (exit code 2).
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }

func (e *usageError) Unwrap() error { return e.err }

func usagef(format string, args ...any) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

// redactedError hides secret from the message of err but keeps its chain.
type redactedError struct {
	err    error
	secret string
}

func (e *redactedError) Error() string { return util.RedactValue(e.err.Error(), e.secret) }

func (e *redactedError) Unwrap() error { return e.err }

func exitCode(err error) int {
	var ue *usageError
	if errors.As(err, &ue) {
		return 2
	}
	return 1
}
