// Package config resolves the enricher's settings from the config document, the
// environment and, for anything still missing, an interactive prompt.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the config document read when --config is not given.
const DefaultPath = "config.json"

// Defaults.
const (
	DefaultSearchInterval = 2000
	DefaultWaitTimeout    = 20000
)

// Environment variables overriding the document.
const (
	EnvEmail          = "LINKEDIN_EMAIL"
	EnvPassword       = "LINKEDIN_PASSWORD"
	EnvSearchInterval = "SEARCH_INTERVAL"
	EnvShowSession    = "SHOW_SESSION"
	EnvWaitTimeout    = "WAIT_TIMEOUT"
	EnvLoginCooldown  = "LOGIN_COOLDOWN"
	EnvMaxRestarts    = "MAX_RESTARTS"
	EnvChromePath     = "CHROME_PATH"
)

// ErrMissingCredentials is returned when no email or password could be resolved.
var ErrMissingCredentials = errors.New("email and password are required")

// Config is the config document. Millisecond values are plain integers, as in
// {"searchInterval": 2000}.
type Config struct {
	Email          string `yaml:"email"`
	Password       string `yaml:"password"`
	SearchInterval int    `yaml:"searchInterval"`
	ShowSession    bool   `yaml:"showSession"`
	WaitTimeout    int    `yaml:"waitTimeout"`
	LoginCooldown  int    `yaml:"loginCooldown"`
	MaxRestarts    int    `yaml:"maxRestarts"`
	ChromePath     string `yaml:"chromePath"`
}

// Default returns the configuration used for keys the document omits.
func Default() Config {
	return Config{
		SearchInterval: DefaultSearchInterval,
		WaitTimeout:    DefaultWaitTimeout,
	}
}

// Load reads the document at path on top of Default. found is false when the
// file does not exist. JSON and YAML documents are both accepted.
func Load(path string) (cfg Config, found bool, err error) {
	cfg = Default()
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, false, nil
	}
	if err != nil {
		return cfg, false, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, true, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, true, nil
}

// ApplyEnv overrides cfg with any of the Env* variables that are set and returns
// the names of the variables applied.
func ApplyEnv(cfg *Config) (map[string]bool, error) {
	set := make(map[string]bool)
	str := func(name string, dst *string) {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			*dst = v
			set[name] = true
		}
	}
	num := func(name string, dst *int) error {
		v, ok, err := envInt(name)
		if err != nil || !ok {
			return err
		}
		*dst = v
		set[name] = true
		return nil
	}

	str(EnvEmail, &cfg.Email)
	if v := os.Getenv(EnvPassword); v != "" {
		cfg.Password = v
		set[EnvPassword] = true
	}
	str(EnvChromePath, &cfg.ChromePath)
	for name, dst := range map[string]*int{
		EnvSearchInterval: &cfg.SearchInterval,
		EnvWaitTimeout:    &cfg.WaitTimeout,
		EnvLoginCooldown:  &cfg.LoginCooldown,
		EnvMaxRestarts:    &cfg.MaxRestarts,
	} {
		if err := num(name, dst); err != nil {
			return nil, err
		}
	}
	show, ok, err := envBool(EnvShowSession)
	if err != nil {
		return nil, err
	}
	if ok {
		cfg.ShowSession = show
		set[EnvShowSession] = true
	}
	return set, nil
}

// Validate checks the resolved configuration.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Email) == "" || c.Password == "" {
		return ErrMissingCredentials
	}
	for name, v := range map[string]int{
		"searchInterval": c.SearchInterval,
		"waitTimeout":    c.WaitTimeout,
		"loginCooldown":  c.LoginCooldown,
		"maxRestarts":    c.MaxRestarts,
	} {
		if v < 0 {
			return fmt.Errorf("invalid %s=%d: must not be negative", name, v)
		}
	}
	return nil
}

func (c Config) SearchIntervalDuration() time.Duration { return millis(c.SearchInterval) }

func (c Config) WaitTimeoutDuration() time.Duration { return millis(c.WaitTimeout) }

func (c Config) LoginCooldownDuration() time.Duration { return millis(c.LoginCooldown) }

func millis(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}

func envInt(varName string) (int, bool, error) {
	v := strings.TrimSpace(os.Getenv(varName))
	if v == "" {
		return 0, false, nil
	}
	out, err := strconv.Atoi(v)
	if err != nil {
		return 0, false, fmt.Errorf("invalid %s=%q: %w", varName, v, err)
	}
	return out, true, nil
}

func envBool(varName string) (bool, bool, error) {
	v := strings.TrimSpace(os.Getenv(varName))
	if v == "" {
		return false, false, nil
	}
	out, err := strconv.ParseBool(v)
	if err != nil {
		return false, false, fmt.Errorf("invalid %s=%q: %w", varName, v, err)
	}
	return out, true, nil
}
