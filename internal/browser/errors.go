package browser

import "fmt"

// AuthError reports that login did not reach the post-login landmark.
// Runs treat it as fatal.
type AuthError struct {
	Email string
	Err   error
}

func (e *AuthError) Error() string {
	if e == nil || e.Err == nil {
		return "login failed"
	}
	return fmt.Sprintf("login as %s failed: %s", e.Email, e.Err.Error())
}

func (e *AuthError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// WaitError reports that a landmark never appeared within the wait timeout.
type WaitError struct {
	Selector string
	Err      error
}

func (e *WaitError) Error() string {
	if e == nil {
		return "wait failed"
	}
	if e.Err == nil {
		return fmt.Sprintf("wait for %s failed", e.Selector)
	}
	return fmt.Sprintf("wait for %s: %s", e.Selector, e.Err.Error())
}

func (e *WaitError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// PageScriptError carries an exception thrown inside the page context.
type PageScriptError struct {
	Message string
}

func (e *PageScriptError) Error() string {
	if e == nil || e.Message == "" {
		return "page script error"
	}
	return e.Message
}
