package contacts

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"
)

// Export column names.
const (
	ColFirstName   = "First Name"
	ColLastName    = "Last Name"
	ColEmail       = "Email Address"
	ColCompany     = "Company"
	ColPosition    = "Position"
	ColConnectedOn = "Connected On"
)

// ErrMissingColumn is returned when the export header lacks a required column.
var ErrMissingColumn = errors.New("missing required column")

// ReadConnections lazily yields the rows of a contact export.
//
// Lines before the header (the export may start with a notes preamble) are skipped.
// First Name and Last Name are required columns; the others read as "" when absent.
// Iteration stops after the first error.
func ReadConnections(r io.Reader) iter.Seq2[ImportRow, error] {
	return func(yield func(ImportRow, error) bool) {
		cr := csv.NewReader(r)
		cr.FieldsPerRecord = -1
		cr.LazyQuotes = true

		index, err := readHeader(cr)
		if err != nil {
			yield(ImportRow{}, err)
			return
		}

		get := func(rec []string, col string) string {
			i, ok := index[col]
			if !ok || i >= len(rec) {
				return ""
			}
			return rec[i]
		}

		for {
			rec, err := cr.Read()
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(ImportRow{}, fmt.Errorf("read row: %w", err))
				return
			}
			if isEmptyRecord(rec) {
				continue
			}
			line, _ := cr.FieldPos(0)
			row := ImportRow{
				FirstName:   get(rec, ColFirstName),
				LastName:    get(rec, ColLastName),
				Email:       get(rec, ColEmail),
				Company:     get(rec, ColCompany),
				Position:    get(rec, ColPosition),
				ConnectedOn: get(rec, ColConnectedOn),
				Line:        line,
			}
			if !yield(row, nil) {
				return
			}
		}
	}
}

func readHeader(cr *csv.Reader) (map[string]int, error) {
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return nil, fmt.Errorf("read header: %w %q", ErrMissingColumn, ColFirstName)
		}
		if err != nil {
			return nil, fmt.Errorf("read header: %w", err)
		}

		index := make(map[string]int, len(rec))
		for i, col := range rec {
			index[strings.TrimSpace(strings.TrimPrefix(col, "\ufeff"))] = i
		}
		if _, ok := index[ColFirstName]; !ok {
			continue
		}
		if _, ok := index[ColLastName]; !ok {
			return nil, fmt.Errorf("%w %q", ErrMissingColumn, ColLastName)
		}
		return index, nil
	}
}

func isEmptyRecord(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
