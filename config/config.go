// Package config holds the router's tunables, loadable from the
// environment or defaulted for library use.
package config

import (
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/pkg/errors"
)

type Config struct {
	// Namespace prefixes all persisted local keys. ENV: NAV_NAMESPACE
	Namespace string `env:"NAV_NAMESPACE,default=taskapp"`

	// SessionMaxAge is the session validity window. ENV: NAV_SESSION_MAX_AGE
	SessionMaxAge time.Duration `env:"NAV_SESSION_MAX_AGE,default=720h"`

	// RedirectDebounce delays the address-bar rewrite after a redirect so
	// bursts of triggers coalesce into one visible update.
	// ENV: NAV_REDIRECT_DEBOUNCE
	RedirectDebounce time.Duration `env:"NAV_REDIRECT_DEBOUNCE,default=150ms"`

	// SaveTimeout bounds how long a save-before-navigate persistence call
	// may hold up navigation. ENV: NAV_SAVE_TIMEOUT
	SaveTimeout time.Duration `env:"NAV_SAVE_TIMEOUT,default=3s"`

	// ProfileFetchTimeout bounds each profile fetch.
	// ENV: NAV_PROFILE_FETCH_TIMEOUT
	ProfileFetchTimeout time.Duration `env:"NAV_PROFILE_FETCH_TIMEOUT,default=10s"`
}

// Default returns the built-in tunables without consulting the environment.
func Default() Config {
	return Config{
		Namespace:           "taskapp",
		SessionMaxAge:       720 * time.Hour,
		RedirectDebounce:    150 * time.Millisecond,
		SaveTimeout:         3 * time.Second,
		ProfileFetchTimeout: 10 * time.Second,
	}
}

// FromEnv populates Config from the environment, falling back to the
// struct tag defaults.
func FromEnv() (Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "[config.FromEnv] decode")
	}
	return cfg, nil
}
