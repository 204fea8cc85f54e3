package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	apperrors "github.com/jrsteele09/go-admin-console/internal/errors"
)

const devEnv = "DEV"

// StoreKind selects the token store backend.
type StoreKind string

const (
	StoreFile   StoreKind = "file"
	StoreRedis  StoreKind = "redis"
	StoreMemory StoreKind = "memory"
)

// DefaultProfileEndpoints is the ordered list probed for the current user.
var DefaultProfileEndpoints = []string{"/user", "/auth/user", "/auth/me", "/users/me", "/profile"}

type EnvVars struct {
	Env              string        `env:"ENV" envDefault:"DEV"`
	AppName          string        `env:"APP_NAME" envDefault:"Admin Console"`
	LogLevel         string        `env:"LOG_LEVEL" envDefault:"info"`
	Port             string        `env:"PORT" envDefault:"8090"`
	APIBaseURL       string        `env:"API_BASE_URL"`
	APIOrigin        string        `env:"API_ORIGIN" envDefault:"http://localhost:8090"`
	BackendURL       string        `env:"BACKEND_URL" envDefault:"http://localhost:8000/api"`
	RequestTimeout   time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
	ProfileEndpoints []string      `env:"PROFILE_ENDPOINTS" envSeparator:","`
	TokenStore       StoreKind     `env:"TOKEN_STORE" envDefault:"file"`
	TokenFile        string        `env:"TOKEN_FILE"`
	TokenKey         string        `env:"TOKEN_KEY" envDefault:"authTokens"`
	RedisURL         string        `env:"REDIS_URL"`
}

var _ EnvConfig = EnvVars{}
var _ APIConfig = EnvVars{}
var _ StoreConfig = EnvVars{}
var _ ServerConfig = EnvVars{}

func (e EnvVars) validate() error {
	if e.APIBaseURL == "" && !e.IsDev() {
		return apperrors.Wrapf(apperrors.ErrInvalidConfig, "API_BASE_URL is required outside %s", devEnv)
	}
	if e.RequestTimeout <= 0 {
		return apperrors.Wrapf(apperrors.ErrInvalidConfig, "REQUEST_TIMEOUT must be positive")
	}
	switch e.TokenStore {
	case StoreFile, StoreMemory:
	case StoreRedis:
		if e.RedisURL == "" {
			return apperrors.Wrapf(apperrors.ErrInvalidConfig, "REDIS_URL is required for the redis token store")
		}
	default:
		return apperrors.Wrapf(apperrors.ErrInvalidConfig, "unknown TOKEN_STORE %q", e.TokenStore)
	}
	return nil
}

func (e EnvVars) GetEnv() string {
	if e.Env == "" {
		return devEnv
	}
	return strings.ToUpper(e.Env)
}

func (e EnvVars) IsDev() bool {
	return e.GetEnv() == devEnv
}

func (e EnvVars) GetAppName() string {
	return e.AppName
}

func (e EnvVars) GetLogLevel() string {
	return e.LogLevel
}

func (e EnvVars) GetPort() string {
	port := e.Port
	if port == "" {
		port = "8090"
	}
	if port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

// GetAPIBaseURL returns the absolute API base. In development the base is the
// relative "/api" path served by the console's proxy, resolved against
// API_ORIGIN.
func (e EnvVars) GetAPIBaseURL() string {
	base := e.APIBaseURL
	if base == "" {
		base = "/api"
	}
	resolved, err := ResolveAPIBase(base, e.APIOrigin)
	if err != nil {
		return base
	}
	return resolved
}

func (e EnvVars) GetBackendURL() string {
	return e.BackendURL
}

func (e EnvVars) GetRequestTimeout() time.Duration {
	return e.RequestTimeout
}

func (e EnvVars) GetProfileEndpoints() []string {
	var endpoints []string
	for _, ep := range e.ProfileEndpoints {
		if ep = strings.TrimSpace(ep); ep != "" {
			endpoints = append(endpoints, ep)
		}
	}
	if len(endpoints) == 0 {
		return append([]string(nil), DefaultProfileEndpoints...)
	}
	return endpoints
}

func (e EnvVars) GetTokenStore() StoreKind {
	return e.TokenStore
}

// GetTokenFile defaults to <user config dir>/admin-console/credentials.json.
func (e EnvVars) GetTokenFile() string {
	if e.TokenFile != "" {
		return e.TokenFile
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "admin-console", "credentials.json")
}

func (e EnvVars) GetTokenKey() string {
	return e.TokenKey
}

func (e EnvVars) GetRedisURL() string {
	return e.RedisURL
}

// ResolveAPIBase turns a relative API base into an absolute URL against origin.
// Absolute bases are returned unchanged apart from a trimmed trailing slash.
func ResolveAPIBase(base, origin string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", apperrors.Wrapf(apperrors.ErrInvalidConfig, "parse API base %q", base)
	}
	if !u.IsAbs() {
		o, err := url.Parse(origin)
		if err != nil || !o.IsAbs() {
			return "", apperrors.Wrapf(apperrors.ErrInvalidConfig, "relative API base %q needs an absolute origin", base)
		}
		u = o.ResolveReference(u)
	}
	return strings.TrimRight(u.String(), "/"), nil
}
