package contacts

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Record is one contact, keyed by its normalized name.
//
// Empty strings mean "unknown". Email and History are the fields filled in by
// extraction; the rest come from the contact export.
type Record struct {
	Name        string  `json:"name"`
	First       string  `json:"first"`
	Email       string  `json:"email"`
	Position    string  `json:"position"`
	ConnectedOn string  `json:"connected"`
	Company     string  `json:"company"`
	History     History `json:"history"`
}

// Position is one entry of a contact's work history.
type Position struct {
	Title   string `json:"title"`
	Company string `json:"company"`
}

// History is either free text (blank, a sentinel or a failure placeholder) or
// an ordered list of positions.
//
// A non-nil Positions slice wins over Note, even when empty: an empty list is a
// scraped result and counts as handled.
type History struct {
	Note      string
	Positions []Position
}

// HistoryNote returns a text-valued History.
func HistoryNote(s string) History {
	return History{Note: s}
}

// HistoryOf returns a list-valued History. A nil slice is stored as an empty list.
func HistoryOf(positions []Position) History {
	if positions == nil {
		positions = []Position{}
	}
	return History{Positions: positions}
}

// IsList reports whether h holds scraped positions.
func (h History) IsList() bool {
	return h.Positions != nil
}

// IsBlank reports whether nothing has been recorded yet.
func (h History) IsBlank() bool {
	return h.Positions == nil && h.Note == ""
}

func (h History) String() string {
	if h.IsList() {
		return fmt.Sprintf("%d positions", len(h.Positions))
	}
	return h.Note
}

func (h History) MarshalJSON() ([]byte, error) {
	if h.IsList() {
		return json.Marshal(h.Positions)
	}
	return json.Marshal(h.Note)
}

func (h *History) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0, bytes.Equal(b, []byte("null")):
		*h = History{}
		return nil
	case b[0] == '[':
		var positions []Position
		if err := json.Unmarshal(b, &positions); err != nil {
			return fmt.Errorf("history list: %w", err)
		}
		*h = HistoryOf(positions)
		return nil
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*h = HistoryNote(s)
		return nil
	default:
		return fmt.Errorf("history: unsupported json value %s", b)
	}
}
