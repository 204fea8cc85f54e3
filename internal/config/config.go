package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
)

type Config interface {
	EnvConfig
	APIConfig
	StoreConfig
	ServerConfig
}

type EnvConfig interface {
	GetEnv() string
	IsDev() bool
	GetAppName() string
	GetLogLevel() string
}

type APIConfig interface {
	GetAPIBaseURL() string
	GetBackendURL() string
	GetRequestTimeout() time.Duration
	GetProfileEndpoints() []string
}

type StoreConfig interface {
	GetTokenStore() StoreKind
	GetTokenFile() string
	GetTokenKey() string
	GetRedisURL() string
}

type ServerConfig interface {
	GetPort() string
}

type mainConfig struct {
	EnvVars
}

// New reads the configuration from the process environment.
func New() (Config, error) {
	var vars EnvVars
	if err := env.Parse(&vars); err != nil {
		return nil, errors.Wrap(err, "[config.New] parse env")
	}
	if err := vars.validate(); err != nil {
		return nil, err
	}
	return mainConfig{EnvVars: vars}, nil
}
