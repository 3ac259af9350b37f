package main

import (
	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
)

// Config is read from the environment. Command line flags take precedence.
type Config struct {
	// Directory of behavior model tables. Empty uses the built-in tables.
	ModelDir           string `env:"ALPHAHITLER_MODEL_DIR"`
	Workers            int    `env:"ALPHAHITLER_WORKERS"              envDefault:"0"`
	ParamCacheSize     int    `env:"ALPHAHITLER_PARAM_CACHE_SIZE"     envDefault:"4096"`
	ConditionOnActuals bool   `env:"ALPHAHITLER_CONDITION_ON_ACTUALS" envDefault:"false"`
}

func loadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "parsing environment")
	}

	return cfg, nil
}
