// Package browsertest provides a scripted browser.Driver for tests.
package browsertest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shpitdev/connections-enricher/internal/browser"
)

// Script answers Evaluate calls whose script contains Contains.
type Script struct {
	Contains string
	Result   any
	Err      error
}

// Driver is an in-memory browser.Driver.
//
// Selectors listed in Visible satisfy waits immediately; any other wait fails with
// context.DeadlineExceeded. Calls are recorded in order.
type Driver struct {
	mu sync.Mutex

	Visible map[string]bool
	// WaitErr, when set, decides the outcome of every wait.
	WaitErr  func(selector string) error
	ClickErr map[string]error
	Scripts  []Script
	// Hang lists the calls ("navigate", "scroll", "eval") that block until ctx
	// is done, as a page that never finishes loading would.
	Hang map[string]bool

	calls  []string
	closed int
}

var _ browser.Driver = (*Driver)(nil)

// New returns a Driver on which the given selectors are visible.
func New(visible ...string) *Driver {
	d := &Driver{Visible: make(map[string]bool), ClickErr: make(map[string]error)}
	for _, sel := range visible {
		d.Visible[sel] = true
	}
	return d
}

func (d *Driver) record(format string, args ...any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, fmt.Sprintf(format, args...))
}

// Calls returns the recorded calls, e.g. "click .nav-item--mynetwork a".
func (d *Driver) Calls() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.calls...)
}

// Closed returns how many times Close was called.
func (d *Driver) Closed() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

func (d *Driver) hang(ctx context.Context, call string) error {
	if d.Hang[call] {
		<-ctx.Done()
	}
	return ctx.Err()
}

func (d *Driver) Navigate(ctx context.Context, url string) error {
	d.record("navigate %s", url)
	return d.hang(ctx, "navigate")
}

func (d *Driver) WaitVisible(ctx context.Context, selector string) error {
	d.record("wait %s", selector)
	if err := ctx.Err(); err != nil {
		return err
	}
	if d.WaitErr != nil {
		return d.WaitErr(selector)
	}
	if d.Visible[selector] {
		return nil
	}
	return fmt.Errorf("waiting for %q: %w", selector, context.DeadlineExceeded)
}

func (d *Driver) Click(ctx context.Context, selector string) error {
	d.record("click %s", selector)
	if err := ctx.Err(); err != nil {
		return err
	}
	return d.ClickErr[selector]
}

func (d *Driver) SendKeys(ctx context.Context, selector, text string) error {
	d.record("type %s %s", selector, text)
	return ctx.Err()
}

func (d *Driver) ScrollTo(ctx context.Context, x, y int) error {
	d.record("scroll %d %d", x, y)
	return d.hang(ctx, "scroll")
}

// Evaluate answers with the first Script whose Contains is a substring of script.
// Results are passed through JSON, as a real page would return them.
func (d *Driver) Evaluate(ctx context.Context, script string, out any) error {
	d.record("eval")
	if err := d.hang(ctx, "eval"); err != nil {
		return err
	}
	for _, s := range d.Scripts {
		if !strings.Contains(script, s.Contains) {
			continue
		}
		if s.Err != nil {
			return s.Err
		}
		if out == nil {
			return nil
		}
		b, err := json.Marshal(s.Result)
		if err != nil {
			return err
		}
		return json.Unmarshal(b, out)
	}
	return &browser.PageScriptError{Message: "ReferenceError: no scripted result"}
}

func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, "close")
	d.closed++
	return nil
}

// Factory opens a fresh Driver per session and keeps every one it opened.
type Factory struct {
	// New builds the Driver for the n-th session, counting from 0.
	New func(n int) *Driver
	// Err, when set, fails every Open.
	Err error

	mu      sync.Mutex
	drivers []*Driver
}

// Open is a browser.Opener.
func (f *Factory) Open(_ context.Context, _ browser.Options) (browser.Driver, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	d := f.New(len(f.drivers))
	f.drivers = append(f.drivers, d)
	return d, nil
}

// Drivers returns the drivers opened so far.
func (f *Factory) Drivers() []*Driver {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*Driver(nil), f.drivers...)
}

// NoSleep is a browser.Options.Sleep that returns immediately.
func NoSleep(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}
