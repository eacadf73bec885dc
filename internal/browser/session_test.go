package browser_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/shpitdev/connections-enricher/internal/browser"
	"github.com/shpitdev/connections-enricher/internal/browser/browsertest"
)

func openFake(t *testing.T, d *browsertest.Driver) *browser.Session {
	t.Helper()
	f := &browsertest.Factory{New: func(int) *browsertest.Driver { return d }}
	s, err := browser.Open(context.Background(), f.Open, browser.Options{
		WaitTimeout: time.Second,
		Sleep:       browsertest.NoSleep,
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return s
}

func TestLogin(t *testing.T) {
	d := browsertest.New(browser.NetworkLandmark)
	s := openFake(t, d)
	if s.State() != browser.StateOpen {
		t.Fatalf("fresh session should be open, got %s", s.State())
	}

	if err := s.Login(context.Background(), browser.Credentials{Email: "me@example.com", Password: "hunter2"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	if s.State() != browser.StateReady {
		t.Fatalf("expected ready, got %s", s.State())
	}

	want := []string{
		"navigate " + browser.LoginURL,
		"type #username me@example.com",
		"type #password hunter2",
		"click .btn__primary--large.from__button--floating",
		"wait " + browser.NetworkLandmark,
	}
	if diff := cmp.Diff(want, d.Calls()); diff != "" {
		t.Fatalf("login calls mismatch (-want +got):\n%s", diff)
	}
}

func TestLogin_LandmarkMissingIsAuthError(t *testing.T) {
	d := browsertest.New()
	s := openFake(t, d)

	err := s.Login(context.Background(), browser.Credentials{Email: "me@example.com", Password: "x"})
	var authErr *browser.AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthError, got %T %v", err, err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected the wait timeout to be wrapped, got %v", err)
	}
	if s.State() == browser.StateReady {
		t.Fatalf("failed login must not leave the session ready")
	}
}

func TestClose_Idempotent(t *testing.T) {
	d := browsertest.New()
	s := openFake(t, d)

	for i := 0; i < 3; i++ {
		if err := s.Close(); err != nil {
			t.Fatalf("close #%d: %v", i, err)
		}
	}
	if d.Closed() != 1 {
		t.Fatalf("driver closed %d times, want 1", d.Closed())
	}
	if s.State() != browser.StateClosed {
		t.Fatalf("expected closed, got %s", s.State())
	}

	s.Expire()
	if s.State() != browser.StateClosed {
		t.Fatalf("expiring a closed session must not reopen it")
	}
}

func TestWait_WrapsFailure(t *testing.T) {
	d := browsertest.New()
	s := openFake(t, d)

	err := s.Wait(context.Background(), ".missing")
	var waitErr *browser.WaitError
	if !errors.As(err, &waitErr) || waitErr.Selector != ".missing" {
		t.Fatalf("expected WaitError for .missing, got %v", err)
	}
}

func TestRunScript(t *testing.T) {
	d := browsertest.New()
	d.Scripts = []browsertest.Script{
		{Contains: "titles", Result: []map[string]string{{"title": "CTO"}}},
		{Contains: "throws", Err: &browser.PageScriptError{Message: "TypeError: x is null"}},
		{Contains: "broken", Err: errors.New("websocket closed")},
	}
	s := openFake(t, d)

	got, err := browser.RunScript[[]map[string]string](context.Background(), s, "titles()")
	if err != nil {
		t.Fatalf("run script: %v", err)
	}
	if len(got) != 1 || got[0]["title"] != "CTO" {
		t.Fatalf("unexpected result: %#v", got)
	}

	_, err = browser.RunScript[string](context.Background(), s, "throws()")
	var pse *browser.PageScriptError
	if !errors.As(err, &pse) || pse.Message != "TypeError: x is null" {
		t.Fatalf("expected PageScriptError, got %v", err)
	}

	_, err = browser.RunScript[string](context.Background(), s, "broken()")
	if err == nil || errors.As(err, &pse) {
		t.Fatalf("driver errors must not look like page exceptions: %v", err)
	}
}

func openHanging(t *testing.T, hang ...string) (*browser.Session, *browsertest.Driver) {
	t.Helper()
	d := browsertest.New(browser.NetworkLandmark)
	d.Hang = make(map[string]bool)
	for _, call := range hang {
		d.Hang[call] = true
	}
	f := &browsertest.Factory{New: func(int) *browsertest.Driver { return d }}
	s, err := browser.Open(context.Background(), f.Open, browser.Options{
		WaitTimeout: 50 * time.Millisecond,
		Sleep:       browsertest.NoSleep,
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return s, d
}

func TestLogin_HangingNavigationIsBounded(t *testing.T) {
	s, _ := openHanging(t, "navigate")

	start := time.Now()
	err := s.Login(context.Background(), browser.Credentials{Email: "me@example.com", Password: "x"})
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("login returned after %s with a 50ms wait timeout", elapsed)
	}
	var authErr *browser.AuthError
	if !errors.As(err, &authErr) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected AuthError wrapping the deadline, got %v", err)
	}
	if s.State() != browser.StateExpired {
		t.Fatalf("expected expired, got %s", s.State())
	}
}

func TestRunScript_HangingEvaluationIsBounded(t *testing.T) {
	s, _ := openHanging(t, "eval")

	start := time.Now()
	_, err := browser.RunScript[string](context.Background(), s, "document.title")
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("script returned after %s with a 50ms wait timeout", elapsed)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline, got %v", err)
	}
	var pse *browser.PageScriptError
	var waitErr *browser.WaitError
	if errors.As(err, &pse) || errors.As(err, &waitErr) {
		t.Fatalf("a stalled evaluation is neither a page exception nor a wait failure: %v", err)
	}
}

func TestScrollTo_HangingScrollIsBounded(t *testing.T) {
	s, d := openHanging(t, "scroll")

	start := time.Now()
	err := s.ScrollTo(context.Background(), 0, 1024)
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("scroll returned after %s with a 50ms wait timeout", elapsed)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline, got %v", err)
	}
	if diff := cmp.Diff([]string{"scroll 0 1024"}, d.Calls()); diff != "" {
		t.Fatalf("calls mismatch (-want +got):\n%s", diff)
	}
}
