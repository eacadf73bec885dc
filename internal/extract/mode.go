// Package extract implements the per-contact extraction modes: the navigation
// protocol that reaches a contact's profile, the field-specific DOM queries, and
// the classification of what went wrong.
package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shpitdev/connections-enricher/internal/browser"
	"github.com/shpitdev/connections-enricher/internal/contacts"
)

// Sentinels recorded when a profile confirms the value is absent.
const (
	NoEmail      = "NONE"
	NoExperience = "No Experience Listed"
)

// Outcome classifies one fetch.
type Outcome int

const (
	// OutcomeValue carries a scraped value or a sentinel.
	OutcomeValue Outcome = iota
	// OutcomeSoftFailure is recorded as a placeholder and the run moves on.
	OutcomeSoftFailure
	// OutcomeSessionTimeout means a landmark never appeared; the session must be rebuilt.
	OutcomeSessionTimeout
)

func (o Outcome) String() string {
	switch o {
	case OutcomeValue:
		return "value"
	case OutcomeSoftFailure:
		return "soft-failure"
	case OutcomeSessionTimeout:
		return "session-timeout"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Value is what a mode writes into its target field.
// Positions is only used by the history mode; nil means Text is the value.
type Value struct {
	Text      string
	Positions []contacts.Position
}

func (v Value) String() string {
	if v.Positions != nil {
		return fmt.Sprintf("%d positions", len(v.Positions))
	}
	return v.Text
}

// Text returns a text Value.
func Text(s string) Value {
	return Value{Text: s}
}

// Result is the outcome of one fetch.
type Result struct {
	Outcome Outcome
	Value   Value
	Err     error
}

// FailureValue is the placeholder stored for a soft failure.
func FailureValue(err error) Value {
	return Text(contacts.FailurePrefix + FailureMessage(err))
}

// FailureMessage is the message recorded for a soft failure: the page exception's
// message when there is one, otherwise the error text.
func FailureMessage(err error) string {
	if err == nil {
		return ""
	}
	var pse *browser.PageScriptError
	if errors.As(err, &pse) {
		return pse.Message
	}
	return err.Error()
}

// Classify maps a fetch error onto an outcome. Landmark wait failures expire the
// session; everything else is a soft failure.
func Classify(err error) Result {
	if err == nil {
		return Result{Outcome: OutcomeValue}
	}
	var waitErr *browser.WaitError
	if errors.As(err, &waitErr) {
		return Result{Outcome: OutcomeSessionTimeout, Err: err}
	}
	return Result{Outcome: OutcomeSoftFailure, Err: err}
}

// Mode is one extraction strategy: which field it fills and how it scrapes it.
type Mode interface {
	Name() string
	Field() contacts.Field
	// Find returns the first record, in store order, whose target field is blank.
	Find(s *contacts.Store) (*contacts.Record, bool)
	// Fetch drives the session to the contact's profile and scrapes the field.
	Fetch(ctx context.Context, sess *browser.Session, name string, interval time.Duration) Result
	// Assign writes v into the record's target field.
	Assign(s *contacts.Store, rec *contacts.Record, v Value)
}

// Modes lists the available modes by name.
var Modes = map[string]Mode{
	"email":   Email{},
	"history": History{},
}

// ParseMode resolves a mode name, ignoring case.
func ParseMode(raw string) (Mode, error) {
	switch strings.TrimSpace(strings.ToLower(raw)) {
	case "email", "emails":
		return Email{}, nil
	case "history", "histories", "experience":
		return History{}, nil
	default:
		return nil, fmt.Errorf("unknown extraction mode %q", raw)
	}
}
