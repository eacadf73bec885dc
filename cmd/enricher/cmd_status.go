package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shpitdev/connections-enricher/internal/app"
	"github.com/shpitdev/connections-enricher/internal/extract"
)

func newStatusCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show how many contacts have each field found, absent, failed or pending",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := flags.storeFile().Load()
			if err != nil {
				return err
			}
			app.RenderSummary(cmd.OutOrStdout(), app.Summarize(store))
			return nil
		},
	}
}

func newResetFailuresCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "reset-failures <email|history>",
		Short: "Clear recorded failures so the next run retries those contacts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := extract.ParseMode(args[0])
			if err != nil {
				return &usageError{err: err}
			}
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
			n := store.ResetFailures(mode.Field())
			if err := file.Save(store); err != nil {
				return err
			}
			logger.Info("failures reset", zap.String("field", string(mode.Field())), zap.Int("count", n))
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "reset %d %s failures\n", n, mode.Field())
			return nil
		},
	}
}
