package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shpitdev/connections-enricher/internal/app"
	"github.com/shpitdev/connections-enricher/internal/contacts"
)

func newImportCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Merge the connections export into the store without opening a browser",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			logger, err := flags.logger()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			file := flags.storeFile()
			store, err := file.Load()
			if err != nil {
				return err
			}
			if _, err := importConnections(flags.connectionsPath, store, logger, true); err != nil {
				return err
			}
			return file.Save(store)
		},
	}
}

// importConnections merges the export at path into store. A missing export is an
// error only when required.
func importConnections(path string, store *contacts.Store, logger *zap.Logger, required bool) (bool, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) && !required {
		logger.Info("no connections export, using the store as is", zap.String("path", path))
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("open connections export: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	if _, err := app.Import(f, store, logger.With(zap.String("path", path))); err != nil {
		return false, err
	}
	return true, nil
}
