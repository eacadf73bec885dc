package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shpitdev/connections-enricher/internal/app"
	"github.com/shpitdev/connections-enricher/internal/browser"
	"github.com/shpitdev/connections-enricher/internal/config"
	"github.com/shpitdev/connections-enricher/internal/extract"
)

var extractShort = map[string]string{
	"email":   "Find the email address of every contact that has none yet",
	"history": "Collect the work history of every contact that has none yet",
}

// openBrowser is replaced in tests.
var openBrowser browser.Opener = browser.OpenChrome

func newExtractCmd(flags *globalFlags, name string) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: extractShort[name],
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mode := extract.Modes[name]

			logger, err := flags.logger()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			cfg, err := config.Resolve(flags.configPath, config.NewTerminalPrompter())
			if err != nil {
				return usagef("config: %w", err)
			}

			file := flags.storeFile()
			store, err := file.Load()
			if err != nil {
				return err
			}
			imported, err := importConnections(flags.connectionsPath, store, logger, false)
			if err != nil {
				return err
			}
			if imported {
				if err := file.Save(store); err != nil {
					return err
				}
			}

			logger.Info("run start",
				zap.String("mode", mode.Name()),
				zap.String("store", flags.storePath),
				zap.Int("contacts", store.Len()),
				zap.Int("pending", store.CountBlank(mode.Field())),
				zap.Int("searchIntervalMs", cfg.SearchInterval),
				zap.Int("waitTimeoutMs", cfg.WaitTimeout),
				zap.Bool("showSession", cfg.ShowSession),
			)

			loop := &app.Loop{
				Mode:  mode,
				Store: store,
				Saver: file,
				Open:  openBrowser,
				Browser: browser.Options{
					Show:        cfg.ShowSession,
					WaitTimeout: cfg.WaitTimeoutDuration(),
					ExecPath:    cfg.ChromePath,
				},
				Credentials:    browser.Credentials{Email: cfg.Email, Password: cfg.Password},
				SearchInterval: cfg.SearchIntervalDuration(),
				LoginCooldown:  cfg.LoginCooldownDuration(),
				MaxRestarts:    cfg.MaxRestarts,
				Logger:         logger,
			}
			if _, err := loop.Run(cmd.Context()); err != nil {
				return &redactedError{err: err, secret: cfg.Password}
			}
			return nil
		},
	}
}
