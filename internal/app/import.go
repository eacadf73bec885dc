package app

import (
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/shpitdev/connections-enricher/internal/contacts"
)

// ImportSummary reports the effect of merging an export into the store.
type ImportSummary struct {
	Rows           int
	Inserted       int
	Skipped        int
	Total          int
	MissingEmail   int
	MissingHistory int
}

// Import merges every row of the export read from r into s. Rows without a name
// are skipped with a warning; a malformed export is an error.
func Import(r io.Reader, s *contacts.Store, logger *zap.Logger) (ImportSummary, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var sum ImportSummary
	for row, err := range contacts.ReadConnections(r) {
		if err != nil {
			return sum, fmt.Errorf("import connections: %w", err)
		}
		sum.Rows++
		created, err := s.Merge(row)
		if errors.Is(err, contacts.ErrMissingName) {
			sum.Skipped++
			logger.Warn("skipping import row", zap.Int("line", row.Line), zap.String("reason", err.Error()))
			continue
		}
		if err != nil {
			return sum, err
		}
		if created {
			sum.Inserted++
			logger.Debug("new contact", zap.String("name", row.Name()))
		}
	}

	sum.Total = s.Len()
	sum.MissingEmail = s.CountBlank(contacts.FieldEmail)
	sum.MissingHistory = s.CountBlank(contacts.FieldHistory)
	logger.Info("import complete",
		zap.Int("inserted", sum.Inserted),
		zap.Int("skipped", sum.Skipped),
		zap.Int("total", sum.Total),
		zap.Int("missingEmail", sum.MissingEmail),
		zap.Int("missingHistory", sum.MissingHistory),
	)
	return sum, nil
}
