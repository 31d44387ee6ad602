// Package config holds runtime settings for the CLI and the daemon.
//
// Settings come from environment variables with the AGENT_BROWSER prefix,
// falling back to built-in defaults. Every load re-reads the environment so
// tests and subprocesses see current values.
package config

import (
	"time"

	"github.com/spf13/viper"

	"github.com/browserbase/agent-browser/internal/paths"
)

// Settings contains all tunable configuration.
type Settings struct {
	// RuntimeDir is the directory holding pid files and session sockets.
	RuntimeDir string

	// DefaultSession is the session used when none is given on the command line.
	DefaultSession string

	// StartupTimeout bounds how long EnsureRunning waits for a spawned
	// worker to accept connections.
	StartupTimeout time.Duration

	// PollInterval is the readiness probe interval during startup.
	PollInterval time.Duration

	// TransportTimeout bounds a single request/response exchange.
	TransportTimeout time.Duration

	// CloudAPIURL is the base URL of the remote control plane.
	CloudAPIURL string

	// CloudAPIKey authenticates against the remote control plane.
	// Empty means remote session queries are unavailable.
	CloudAPIKey string
}

// Load reads settings from the environment, applying defaults.
func Load() Settings {
	v := viper.New()
	v.SetEnvPrefix("AGENT_BROWSER")
	v.AutomaticEnv()

	v.SetDefault("runtime_dir", paths.DefaultRuntimeDir())
	v.SetDefault("session", "default")
	v.SetDefault("startup_timeout", 10*time.Second)
	v.SetDefault("poll_interval", 100*time.Millisecond)
	v.SetDefault("transport_timeout", 30*time.Second)
	v.SetDefault("api_url", "https://api.browserbase.com/v1")
	v.SetDefault("api_key", "")

	return Settings{
		RuntimeDir:       v.GetString("runtime_dir"),
		DefaultSession:   v.GetString("session"),
		StartupTimeout:   v.GetDuration("startup_timeout"),
		PollInterval:     v.GetDuration("poll_interval"),
		TransportTimeout: v.GetDuration("transport_timeout"),
		CloudAPIURL:      v.GetString("api_url"),
		CloudAPIKey:      v.GetString("api_key"),
	}
}
