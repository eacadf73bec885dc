package main

import (
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shpitdev/connections-enricher/internal/config"
	"github.com/shpitdev/connections-enricher/internal/contacts"
	"github.com/shpitdev/connections-enricher/internal/logging"
	"github.com/shpitdev/connections-enricher/internal/version"
)

const defaultConnectionsPath = "Connections.csv"

type globalFlags struct {
	configPath      string
	storePath       string
	connectionsPath string
	logLevel        string
	logFormat       string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	cmd := &cobra.Command{
		Use:   "enricher",
		Short: "Fill in emails and work history for exported connections",
		Long: "enricher imports a connections export into a JSON store and fills in each contact's\n" +
			"email address or work history by browsing their profile. Progress is saved after\n" +
			"every contact, so an interrupted run can simply be started again.",
		Version:       version.Current,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", config.DefaultPath, "Config document (JSON or YAML)")
	pf.StringVar(&flags.storePath, "store", contacts.DefaultPath, "Contact store document")
	pf.StringVar(&flags.connectionsPath, "connections", defaultConnectionsPath, "Connections export (CSV)")
	pf.StringVar(&flags.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	pf.StringVar(&flags.logFormat, "log-format", logging.FormatConsole, "Log format: console or json")

	for _, name := range []string{"email", "history"} {
		cmd.AddCommand(newExtractCmd(flags, name))
	}
	cmd.AddCommand(newImportCmd(flags))
	cmd.AddCommand(newStatusCmd(flags))
	cmd.AddCommand(newResetFailuresCmd(flags))
	return cmd
}

// logger builds the run logger: every entry carries a fresh run id.
func (f *globalFlags) logger() (*zap.Logger, error) {
	base, err := logging.New(os.Stderr, f.logLevel, f.logFormat)
	if err != nil {
		return nil, &usageError{err: err}
	}
	return logging.ForRun(base, uuid.NewString()), nil
}

func (f *globalFlags) storeFile() contacts.File {
	return contacts.File{Path: f.storePath}
}
