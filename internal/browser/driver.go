package browser

import (
	"context"
	"time"
)

// Driver is the browser-driving capability a Session is built on.
//
// Every call blocks until it completes, ctx is done, or ctx's deadline passes.
// Evaluate decodes the script's JSON result into out (nil discards it) and reports
// exceptions raised inside the page as *PageScriptError.
type Driver interface {
	Navigate(ctx context.Context, url string) error
	WaitVisible(ctx context.Context, selector string) error
	Click(ctx context.Context, selector string) error
	SendKeys(ctx context.Context, selector, text string) error
	ScrollTo(ctx context.Context, x, y int) error
	Evaluate(ctx context.Context, script string, out any) error
	Close() error
}

// Options configures a browser session.
type Options struct {
	// Show renders the browser window instead of running headless.
	Show bool
	// WaitTimeout bounds every browser call made through a Session.
	WaitTimeout time.Duration
	// ExecPath overrides the browser executable.
	ExecPath string
	// Sleep implements fixed delays. Defaults to a timer that honours ctx.
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultWaitTimeout applies when Options.WaitTimeout is unset.
const DefaultWaitTimeout = 20 * time.Second

func (o Options) withDefaults() Options {
	if o.WaitTimeout <= 0 {
		o.WaitTimeout = DefaultWaitTimeout
	}
	if o.Sleep == nil {
		o.Sleep = sleep
	}
	return o
}

// Opener starts a new browser Driver.
type Opener func(ctx context.Context, opts Options) (Driver, error)

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
