// Package env loads configuration structs from the environment.
package env

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

const (
	DefaultEnvFile = ".env"
	// EnvFileVar names an alternative env file.
	EnvFileVar = "ENV_FILE"
)

// InitConfig loads the env file, then fills config from the environment.
// Variables already set in the process environment take precedence.
// A missing default .env is ignored; a missing ENV_FILE is an error.
func InitConfig(config any) error {
	if err := loadEnvFile(); err != nil {
		return err
	}

	if err := envconfig.Process("", config); err != nil {
		return errors.Wrap(err, "failed to envconfig.Process")
	}

	return nil
}

// Load is InitConfig for a new value of T.
func Load[T any]() (T, error) {
	var cfg T
	err := InitConfig(&cfg)
	return cfg, err
}

func loadEnvFile() error {
	if path := os.Getenv(EnvFileVar); path != "" {
		return errors.Wrapf(godotenv.Load(path), "failed to load env file %q", path)
	}

	// nolint:errcheck // .env file is optional, failure is acceptable
	_ = godotenv.Load(DefaultEnvFile)
	return nil
}
