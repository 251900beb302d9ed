package main

import (
	"github.com/spf13/cobra"

	"github.com/bobinette/paperlog"
	"github.com/bobinette/paperlog/bleve"
	"github.com/bobinette/paperlog/bolt"
	"github.com/bobinette/paperlog/config"
	"github.com/bobinette/paperlog/errors"
	"github.com/bobinette/paperlog/inmem"
	"github.com/bobinette/paperlog/log"
	"github.com/bobinette/paperlog/lookup"
	"github.com/bobinette/paperlog/services"
	"github.com/bobinette/paperlog/sqlite"
)

var (
	// flags
	env       string
	configDir string

	// configuration
	cfg config.Configuration

	// logger
	logger log.Logger

	// stores
	paperStore paperlog.PaperStore
	paperIndex *bleve.PaperIndex

	// services
	paperService *services.PaperService

	closers []func() error
)

func init() {
	RootCmd.PersistentFlags().StringVar(&env, "env", "dev", "environment")
	RootCmd.PersistentFlags().StringVar(&configDir, "config", "configuration", "configuration directory")
}

var RootCmd = cobra.Command{
	Use:           "paperlog",
	Short:         "Keep track of the papers you read",
	Long:          "Keep track of the papers you read, take notes and look at your reading statistics",
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = log.New(env)

		var err error
		cfg, err = config.Load(configDir, env)
		return err
	},
}

// withService opens the store, the index and the services before running
// f, and closes them after.
func withService(f func(cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := openService(); err != nil {
			closeAll()
			return err
		}
		defer closeAll()

		return f(cmd, args)
	}
}

func openService() error {
	switch cfg.Store.Driver {
	case config.DriverBolt:
		driver := &bolt.Driver{}
		if err := driver.Open(cfg.Store.Bolt); err != nil {
			return errors.New("could not open bolt", errors.WithCause(err))
		}
		closers = append(closers, driver.Close)
		paperStore = bolt.NewPaperStore(driver)
	case config.DriverSQLite:
		driver := &sqlite.Driver{}
		if err := driver.Open(cfg.Store.SQLite); err != nil {
			return errors.New("could not open sqlite", errors.WithCause(err))
		}
		closers = append(closers, driver.Close)
		paperStore = sqlite.NewPaperStore(driver)
	default:
		paperStore = inmem.NewPaperStore()
	}

	paperIndex = &bleve.PaperIndex{}
	var err error
	if cfg.Bleve.Store == "" || cfg.Store.Driver == config.DriverMemory {
		err = paperIndex.OpenMemory()
	} else {
		err = paperIndex.Open(cfg.Bleve.Store)
	}
	if err != nil {
		return errors.New("could not open bleve", errors.WithCause(err))
	}
	closers = append(closers, paperIndex.Close)

	paperService = services.NewPaperService(paperStore, paperIndex, lookupClient(), logger)
	return nil
}

func lookupClient() *lookup.Client {
	opts := []lookup.Option{lookup.WithTimeout(cfg.Lookup.Timeout)}
	if cfg.Lookup.URL != "" {
		opts = append(opts, lookup.WithURL(cfg.Lookup.URL))
	}
	if cfg.Lookup.APIKey != "" {
		opts = append(opts, lookup.WithAPIKey(cfg.Lookup.APIKey))
	}
	return lookup.NewClient(logger, opts...)
}

func closeAll() {
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil {
			logger.Errorf("error closing: %v", err)
		}
	}
	closers = nil
}
