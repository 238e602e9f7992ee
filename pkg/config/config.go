// Package config holds the global defaults for pagekit (pagekit.yaml).
//
// Settings resolved here are the lowest tier of the override chain:
// a per-call option wins over a per-element option, which wins over
// these defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Appium server conveniences.
const (
	Localhost = "http://127.0.0.1"
	Port4723  = ":4723"
	WDHub     = "/wd/hub" // appium 1.x prefix
)

// Defaults is the global settings tier.
type Defaults struct {
	// WaitTimeout is the maximum time wait operations poll for a condition.
	WaitTimeout time.Duration `yaml:"waitTimeout"`

	// PollInterval is the pause between condition checks.
	PollInterval time.Duration `yaml:"pollInterval"`

	// Reraise selects the timeout behavior: true returns the timeout
	// error to the caller, false suppresses it and yields a zero result.
	Reraise bool `yaml:"reraise"`

	// CacheElement enables the single-slot element handle cache.
	CacheElement bool `yaml:"cacheElement"`

	Log LogSettings `yaml:"log"`
}

// LogSettings configures the internal logger.
type LogSettings struct {
	// Debug enables internal debug records.
	Debug bool `yaml:"debug"`

	// Prefix tags log lines with the nearest caller frame whose function
	// name starts with this prefix. Empty disables caller tagging.
	Prefix string `yaml:"prefix"`

	// CaseSensitive controls prefix matching.
	CaseSensitive bool `yaml:"caseSensitive"`
}

// Standard returns the built-in defaults.
func Standard() Defaults {
	return Defaults{
		WaitTimeout:  30 * time.Second,
		PollInterval: 500 * time.Millisecond,
		Reraise:      true,
		CacheElement: true,
		Log: LogSettings{
			Debug:         false,
			Prefix:        "Test",
			CaseSensitive: false,
		},
	}
}

var (
	mu      sync.RWMutex
	current = Standard()
)

// Current returns the active global defaults.
func Current() Defaults {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// Set replaces the active global defaults.
func Set(d Defaults) {
	mu.Lock()
	defer mu.Unlock()
	current = d
}

// SetWaitTimeout updates the global wait timeout.
func SetWaitTimeout(d time.Duration) {
	mu.Lock()
	defer mu.Unlock()
	current.WaitTimeout = d
}

// SetReraise updates the global timeout behavior.
func SetReraise(r bool) {
	mu.Lock()
	defer mu.Unlock()
	current.Reraise = r
}

// SetCacheElement updates the global element cache switch.
func SetCacheElement(c bool) {
	mu.Lock()
	defer mu.Unlock()
	current.CacheElement = c
}

// rawDefaults carries the yaml shape; durations are parsed from strings
// ("30s", "500ms").
type rawDefaults struct {
	WaitTimeout  string      `yaml:"waitTimeout"`
	PollInterval string      `yaml:"pollInterval"`
	Reraise      *bool       `yaml:"reraise"`
	CacheElement *bool       `yaml:"cacheElement"`
	Log          LogSettings `yaml:"log"`
}

// Load reads defaults from a yaml file. Fields absent from the file keep
// their built-in values.
func Load(path string) (Defaults, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- user-provided config file
	if err != nil {
		return Standard(), err
	}

	raw := rawDefaults{Log: Standard().Log}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Standard(), fmt.Errorf("parse %s: %w", path, err)
	}

	d := Standard()
	if raw.WaitTimeout != "" {
		t, err := time.ParseDuration(raw.WaitTimeout)
		if err != nil {
			return Standard(), fmt.Errorf("waitTimeout: %w", err)
		}
		d.WaitTimeout = t
	}
	if raw.PollInterval != "" {
		t, err := time.ParseDuration(raw.PollInterval)
		if err != nil {
			return Standard(), fmt.Errorf("pollInterval: %w", err)
		}
		d.PollInterval = t
	}
	if raw.Reraise != nil {
		d.Reraise = *raw.Reraise
	}
	if raw.CacheElement != nil {
		d.CacheElement = *raw.CacheElement
	}
	d.Log = raw.Log

	return d, nil
}

// LoadFromDir looks for pagekit.yaml or pagekit.yml in the directory.
// No config file yields the built-in defaults.
func LoadFromDir(dir string) (Defaults, error) {
	for _, name := range []string{"pagekit.yaml", "pagekit.yml"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return Standard(), nil
}
