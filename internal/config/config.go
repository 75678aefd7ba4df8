// Package config resolves dash settings from the config file, a .env file and
// the environment. Command-line flags are applied on top by the CLI.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	dasherrors "github.com/abatilo/dash/internal/errors"
	"github.com/abatilo/dash/internal/storage"
)

// Backend selects where tasks live.
type Backend string

// Backend values.
const (
	BackendLocal  Backend = "local"
	BackendMemory Backend = "memory"
	BackendRemote Backend = "remote"
)

// Environment variables that override the config file.
const (
	EnvAPIURL  = "DASH_API_URL"
	EnvBackend = "DASH_BACKEND"
	EnvHome    = "DASH_HOME"
	EnvTimeout = "DASH_TIMEOUT"
)

const (
	defaultAPIURL  = "http://localhost:8000"
	defaultTimeout = 10 * time.Second
)

// Config is the resolved configuration.
type Config struct {
	APIURL  string        `yaml:"api_url"`
	Backend Backend       `yaml:"backend"`
	Timeout time.Duration `yaml:"timeout"`
	Home    string        `yaml:"-"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		APIURL:  defaultAPIURL,
		Backend: BackendLocal,
		Timeout: defaultTimeout,
	}
}

// Load resolves the configuration. Sources, lowest precedence first: defaults,
// $DASH_HOME/config.yaml, envFile, the process environment. A missing envFile
// or config file is not an error.
func Load(envFile string) (Config, error) {
	dotenv, err := readEnvFile(envFile)
	if err != nil {
		return Config{}, err
	}
	lookup := func(key string) (string, bool) {
		if v := os.Getenv(key); v != "" {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}

	cfg := Default()
	if home, ok := lookup(EnvHome); ok && home != "" {
		cfg.Home = home
	} else if cfg.Home, err = storage.DefaultHome(); err != nil {
		return Config{}, err
	}

	if err = cfg.readFile(cfg.Layout().ConfigFile()); err != nil {
		return Config{}, err
	}

	if v, ok := lookup(EnvAPIURL); ok && v != "" {
		cfg.APIURL = v
	}
	if v, ok := lookup(EnvBackend); ok && v != "" {
		cfg.Backend = Backend(v)
	}
	if v, ok := lookup(EnvTimeout); ok && v != "" {
		if cfg.Timeout, err = ParseTimeout(v); err != nil {
			return Config{}, err
		}
	}

	return cfg, cfg.Validate()
}

func readEnvFile(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	values, err := godotenv.Read(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return values, err
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if err = yaml.Unmarshal(data, c); err != nil {
		return dasherrors.ValidationError{Field: "config file", Value: filepath.Base(path), Reason: err.Error()}
	}
	return nil
}

// ParseTimeout accepts a Go duration ("30s") or a bare number of seconds.
func ParseTimeout(s string) (time.Duration, error) {
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, dasherrors.ValidationError{Field: "timeout", Value: s, Reason: "must be a duration like 10s"}
	}
	return d, nil
}

// Validate rejects settings no command could run with.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendLocal, BackendMemory, BackendRemote:
	default:
		return dasherrors.ValidationError{
			Field:  "backend",
			Value:  string(c.Backend),
			Reason: "must be one of local, memory, remote",
		}
	}
	if c.Timeout <= 0 {
		return dasherrors.ValidationError{Field: "timeout", Value: c.Timeout.String(), Reason: "must be positive"}
	}
	if c.Backend == BackendRemote && c.APIURL == "" {
		return dasherrors.ValidationError{Field: "api_url", Reason: "required for the remote backend"}
	}
	return nil
}

// Layout returns where dash keeps its files.
func (c Config) Layout() storage.Layout {
	return storage.Layout{Home: c.Home}
}
