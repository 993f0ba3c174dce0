// Package config resolves library settings from the environment.
package config

import (
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is the prefix of all environment variables.
const EnvPrefix = "kvlite"

// Config configures the cache.
type Config struct {
	// CacheURL selects and configures the backend, e.g. "memory:" or
	// "sqlite://cache.db". Set via KVLITE_CACHE_URL.
	CacheURL string `envconfig:"CACHE_URL" default:"memory:"`
}

// Parse parses the configuration from the environment.
func Parse() (*Config, error) {
	conf := new(Config)
	if err := envconfig.Process(EnvPrefix, conf); err != nil {
		return nil, err
	}
	return conf, nil
}
