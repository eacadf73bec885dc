package browser

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Login page and landmarks of the target site.
const (
	LoginURL          = "https://www.linkedin.com/login"
	loginUserSelector = "#username"
	loginPassSelector = "#password"
	loginSubmit       = ".btn__primary--large.from__button--floating"
	NetworkLandmark   = ".nav-item--mynetwork"
	postLoginSettle   = 3 * time.Second
)

// State is the lifecycle position of a Session.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateLoggingIn
	StateReady
	StateExpired
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateLoggingIn:
		return "logging-in"
	case StateReady:
		return "ready"
	case StateExpired:
		return "expired"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Credentials authenticate a session.
type Credentials struct {
	Email    string
	Password string
}

// Session is one authenticated browsing context.
//
// A Session is driven by a single goroutine.
type Session struct {
	driver Driver
	opts   Options
	state  State
}

// Open starts a browser through opener. The session is not logged in.
func Open(ctx context.Context, opener Opener, opts Options) (*Session, error) {
	opts = opts.withDefaults()
	d, err := opener(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &Session{driver: d, opts: opts, state: StateOpen}, nil
}

func (s *Session) State() State {
	return s.state
}

// Login signs in and waits for the post-login landmark. Failures are *AuthError.
func (s *Session) Login(ctx context.Context, creds Credentials) error {
	if s.state == StateClosed {
		return &AuthError{Email: creds.Email, Err: errors.New("session is closed")}
	}
	s.state = StateLoggingIn

	fail := func(err error) error {
		s.state = StateExpired
		return &AuthError{Email: creds.Email, Err: err}
	}

	if err := s.navigate(ctx, LoginURL); err != nil {
		return fail(fmt.Errorf("open login page: %w", err))
	}
	if err := s.Type(ctx, loginUserSelector, creds.Email); err != nil {
		return fail(err)
	}
	if err := s.Type(ctx, loginPassSelector, creds.Password); err != nil {
		return fail(err)
	}
	if err := s.Click(ctx, loginSubmit); err != nil {
		return fail(err)
	}
	if err := s.Wait(ctx, NetworkLandmark); err != nil {
		return fail(err)
	}
	if err := s.Sleep(ctx, postLoginSettle); err != nil {
		return fail(err)
	}

	s.state = StateReady
	return nil
}

// Wait blocks until selector is visible. Any failure, including the wait timeout,
// is returned as *WaitError.
func (s *Session) Wait(ctx context.Context, selector string) error {
	waitCtx, cancel := context.WithTimeout(ctx, s.opts.WaitTimeout)
	defer cancel()
	if err := s.driver.WaitVisible(waitCtx, selector); err != nil {
		return &WaitError{Selector: selector, Err: err}
	}
	return nil
}

// Click clicks the first visible match of selector.
func (s *Session) Click(ctx context.Context, selector string) error {
	clickCtx, cancel := context.WithTimeout(ctx, s.opts.WaitTimeout)
	defer cancel()
	if err := s.driver.Click(clickCtx, selector); err != nil {
		return fmt.Errorf("click %s: %w", selector, err)
	}
	return nil
}

// Type sends text to the first visible match of selector.
func (s *Session) Type(ctx context.Context, selector, text string) error {
	typeCtx, cancel := context.WithTimeout(ctx, s.opts.WaitTimeout)
	defer cancel()
	if err := s.driver.SendKeys(typeCtx, selector, text); err != nil {
		return fmt.Errorf("type into %s: %w", selector, err)
	}
	return nil
}

func (s *Session) navigate(ctx context.Context, url string) error {
	navCtx, cancel := context.WithTimeout(ctx, s.opts.WaitTimeout)
	defer cancel()
	return s.driver.Navigate(navCtx, url)
}

func (s *Session) ScrollTo(ctx context.Context, x, y int) error {
	scrollCtx, cancel := context.WithTimeout(ctx, s.opts.WaitTimeout)
	defer cancel()
	if err := s.driver.ScrollTo(scrollCtx, x, y); err != nil {
		return fmt.Errorf("scroll to %d,%d: %w", x, y, err)
	}
	return nil
}

// Sleep pauses for d, returning early if ctx is done.
func (s *Session) Sleep(ctx context.Context, d time.Duration) error {
	return s.opts.Sleep(ctx, d)
}

// Expire marks the session as invalidated. It must be closed and replaced.
func (s *Session) Expire() {
	if s.state != StateClosed {
		s.state = StateExpired
	}
}

// Close releases the browser. Closing a closed session is a no-op.
func (s *Session) Close() error {
	if s == nil || s.state == StateClosed {
		return nil
	}
	s.state = StateClosed
	return s.driver.Close()
}

// RunScript evaluates script in the page and decodes its result as T.
// Exceptions raised inside the page are returned as *PageScriptError. The
// evaluation is bounded by the session's wait timeout.
func RunScript[T any](ctx context.Context, s *Session, script string) (T, error) {
	evalCtx, cancel := context.WithTimeout(ctx, s.opts.WaitTimeout)
	defer cancel()

	var out T
	if err := s.driver.Evaluate(evalCtx, script, &out); err != nil {
		var pse *PageScriptError
		if errors.As(err, &pse) {
			return out, pse
		}
		return out, fmt.Errorf("evaluate script: %w", err)
	}
	return out, nil
}
