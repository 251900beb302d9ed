// Package config loads the configuration of paperlog: a toml file per
// environment, overridden by the PAPERLOG_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"

	"github.com/bobinette/paperlog/cron"
	"github.com/bobinette/paperlog/errors"
)

const EnvPrefix = "PAPERLOG_"

const (
	DriverBolt   = "bolt"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

type Configuration struct {
	Addr     string `toml:"addr" env:"ADDR"`
	Timezone string `toml:"timezone" env:"TIMEZONE"`

	Auth   AuthConfig   `toml:"auth" envPrefix:"AUTH_"`
	Store  StoreConfig  `toml:"store" envPrefix:"STORE_"`
	Bleve  BleveConfig  `toml:"bleve" envPrefix:"BLEVE_"`
	Lookup LookupConfig `toml:"lookup" envPrefix:"LOOKUP_"`
	Cron   CronConfig   `toml:"cron" envPrefix:"CRON_"`
}

type AuthConfig struct {
	// Key is the path of the signing key file. Writes are not
	// authenticated without it.
	Key string `toml:"key" env:"KEY"`
}

type StoreConfig struct {
	Driver string `toml:"driver" env:"DRIVER"`
	Bolt   string `toml:"bolt" env:"BOLT"`
	SQLite string `toml:"sqlite" env:"SQLITE"`
}

type BleveConfig struct {
	// Store is the directory of the index. The index lives in memory
	// when it is empty.
	Store string `toml:"store" env:"STORE"`
}

type LookupConfig struct {
	URL     string        `toml:"url" env:"URL"`
	APIKey  string        `toml:"api_key" env:"API_KEY"`
	Timeout time.Duration `toml:"timeout" env:"TIMEOUT"`
}

type CronConfig struct {
	Enabled   bool   `toml:"enabled" env:"ENABLED"`
	Reindex   string `toml:"reindex" env:"REINDEX"`
	Citations string `toml:"citations" env:"CITATIONS"`
}

func Default() Configuration {
	return Configuration{
		Addr: ":1705",
		Store: StoreConfig{
			Driver: DriverBolt,
			Bolt:   "data/paperlog.db",
			SQLite: "data/paperlog.sqlite",
		},
		Bleve: BleveConfig{
			Store: "data/paperlog.index",
		},
		Lookup: LookupConfig{
			Timeout: 10 * time.Second,
		},
		Cron: CronConfig{
			Enabled:   true,
			Reindex:   cron.DefaultReindexSpec,
			Citations: cron.DefaultCitationsSpec,
		},
	}
}

// Load reads configuration/config.<environment>.toml under dir, then
// applies the environment variables. A missing file leaves the defaults.
func Load(dir, environment string) (Configuration, error) {
	return LoadFile(filepath.Join(dir, fmt.Sprintf("config.%s.toml", environment)))
}

func LoadFile(path string) (Configuration, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return cfg, errors.New("error reading configuration", errors.WithCause(err))
	}
	if err == nil {
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, errors.New("error unmarshalling configuration", errors.WithCause(err))
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return cfg, errors.New("error reading environment", errors.WithCause(err))
	}

	return cfg, cfg.Validate()
}

func (c Configuration) Validate() error {
	switch c.Store.Driver {
	case DriverBolt, DriverSQLite, DriverMemory:
	default:
		return errors.New("unknown store driver " + c.Store.Driver)
	}

	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location returns the time zone of the statistics, the local one when
// none is configured.
func (c Configuration) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, errors.New("invalid timezone "+c.Timezone, errors.WithCause(err))
	}
	return loc, nil
}
