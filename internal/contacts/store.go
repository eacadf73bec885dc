package contacts

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"strings"
)

// ErrMissingName is returned for import rows whose first and last name are both blank.
var ErrMissingName = errors.New("missing first and last name")

// Field selects one of the extraction targets of a Record.
type Field string

const (
	FieldEmail   Field = "email"
	FieldHistory Field = "history"
)

// FailurePrefix marks a placeholder recorded after a soft extraction failure.
const FailurePrefix = "EXCEPTION "

// ImportRow is one row of the contact export.
type ImportRow struct {
	FirstName   string
	LastName    string
	Email       string
	Company     string
	Position    string
	ConnectedOn string
	// Line is the row's line in the export, counted from 1.
	Line int
}

// Name returns the identity key derived from the row.
func (r ImportRow) Name() string {
	return strings.TrimSpace(strings.TrimSpace(r.FirstName) + " " + strings.TrimSpace(r.LastName))
}

// Store is the in-memory working set, keyed by name and ordered by insertion.
//
// It is not safe for concurrent use; the extraction loop is its only writer.
type Store struct {
	order   []string
	records map[string]*Record
}

func NewStore() *Store {
	return &Store{records: make(map[string]*Record)}
}

func (s *Store) Len() int {
	return len(s.order)
}

// Get returns the record for name.
func (s *Store) Get(name string) (*Record, bool) {
	rec, ok := s.records[name]
	return rec, ok
}

// All yields records in store order.
func (s *Store) All() iter.Seq[*Record] {
	return func(yield func(*Record) bool) {
		for _, name := range s.order {
			if !yield(s.records[name]) {
				return
			}
		}
	}
}

// Put inserts rec, or replaces the record with the same name in place.
func (s *Store) Put(rec Record) {
	if existing, ok := s.records[rec.Name]; ok {
		*existing = rec
		return
	}
	s.order = append(s.order, rec.Name)
	r := rec
	s.records[rec.Name] = &r
}

// Merge folds one import row into the store and reports whether a new record was created.
//
// A new record takes its email from the row. An existing record keeps its email and
// history. Position, connected-on and company are only filled while blank.
func (s *Store) Merge(row ImportRow) (bool, error) {
	name := row.Name()
	if name == "" {
		return false, ErrMissingName
	}

	rec, ok := s.records[name]
	created := !ok
	if created {
		s.Put(Record{
			Name:  name,
			First: strings.TrimSpace(row.FirstName),
			Email: strings.TrimSpace(row.Email),
		})
		rec = s.records[name]
	}

	fillBlank(&rec.Position, row.Position)
	fillBlank(&rec.ConnectedOn, row.ConnectedOn)
	fillBlank(&rec.Company, row.Company)
	return created, nil
}

func fillBlank(dst *string, v string) {
	if *dst == "" {
		*dst = strings.TrimSpace(v)
	}
}

// IsBlank reports whether field has not been handled for rec.
func IsBlank(rec *Record, field Field) bool {
	switch field {
	case FieldEmail:
		return rec.Email == ""
	case FieldHistory:
		return rec.History.IsBlank()
	default:
		return false
	}
}

// FirstBlank returns the first record, in store order, whose field is blank.
func (s *Store) FirstBlank(field Field) (*Record, bool) {
	for rec := range s.All() {
		if IsBlank(rec, field) {
			return rec, true
		}
	}
	return nil, false
}

// CountBlank returns how many records still have field blank.
func (s *Store) CountBlank(field Field) int {
	n := 0
	for rec := range s.All() {
		if IsBlank(rec, field) {
			n++
		}
	}
	return n
}

// IsFailure reports whether field holds a soft-failure placeholder.
func IsFailure(rec *Record, field Field) bool {
	switch field {
	case FieldEmail:
		return strings.HasPrefix(rec.Email, FailurePrefix)
	case FieldHistory:
		return !rec.History.IsList() && strings.HasPrefix(rec.History.Note, FailurePrefix)
	default:
		return false
	}
}

// ResetFailures blanks every failure placeholder in field so a later run retries it.
func (s *Store) ResetFailures(field Field) int {
	n := 0
	for rec := range s.All() {
		if !IsFailure(rec, field) {
			continue
		}
		switch field {
		case FieldEmail:
			rec.Email = ""
		case FieldHistory:
			rec.History = History{}
		}
		n++
	}
	return n
}

// MarshalJSON writes the store as one object keyed by name, in store order.
func (s *Store) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range s.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(s.records[name])
		if err != nil {
			return nil, fmt.Errorf("marshal %q: %w", name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a store document, keeping the document's key order.
func (s *Store) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("store document: expected object, got %v", tok)
	}

	out := NewStore()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("store document: unexpected key %v", tok)
		}
		var rec Record
		if err := dec.Decode(&rec); err != nil {
			return fmt.Errorf("store document: record %q: %w", key, err)
		}
		if rec.Name == "" {
			rec.Name = key
		}
		out.Put(rec)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*s = *out
	return nil
}
