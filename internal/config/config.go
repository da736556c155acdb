// Package config provides persistent settings for the athan CLI.
//
// Settings are string key/value pairs stored as JSON at
// ~/.config/athan/config.json (XDG-compliant), or in a SQLite database.
// Values are validated when set; readers parse them defensively. The merge
// priority is: CLI flags > settings > defaults.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/smokyabdulrahman/athan/internal/locale"
	"github.com/smokyabdulrahman/athan/internal/method"
)

const (
	configDirName  = "athan"
	configFileName = "config.json"
)

// Setting keys.
const (
	KeyLatitude      = "latitude"
	KeyLongitude     = "longitude"
	KeyAltitude      = "altitude"
	KeyPressure      = "pressure"
	KeyTemperature   = "temperature"
	KeyUTCOffset     = "utc_offset"
	KeyMethod        = "method"
	KeyRounding      = "rounding"
	KeyOffsetMinutes = "offset_minutes"
	KeyLeadMinutes   = "lead_minutes"
	KeyTimeFormat    = "time_format"
	KeyLanguage      = "language"
	KeyEngine        = "engine"
	KeyCity          = "city"
	KeyCountry       = "country"
	KeyCacheDir      = "cache_dir"
)

// Engines selectable with the engine key.
const (
	EngineSolar   = "solar"
	EngineAladhan = "aladhan"
)

// ValidKeys lists all keys that can be set via `config set`.
var ValidKeys = []string{
	KeyLatitude, KeyLongitude, KeyAltitude, KeyPressure, KeyTemperature, KeyUTCOffset,
	KeyMethod, KeyRounding, KeyOffsetMinutes, KeyLeadMinutes,
	KeyTimeFormat, KeyLanguage, KeyEngine,
	KeyCity, KeyCountry, KeyCacheDir,
}

// Config holds settings loaded from a JSON file. A missing key means "not
// set" so that method 0 (Jafari) stays distinguishable from no method.
// It is safe for concurrent use.
type Config struct {
	mu     sync.RWMutex
	path   string
	values map[string]string

	// fileMu serializes writes so the file always holds the latest values.
	fileMu sync.Mutex
}

// New returns an empty Config that is not backed by a file.
func New() *Config {
	return &Config{values: make(map[string]string)}
}

// Dir returns the config directory path.
// It respects $XDG_CONFIG_HOME if set, otherwise uses ~/.config/.
func Dir() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, configDirName), nil
}

// Path returns the full path to the config file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// Load reads the config file from its default location.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads the config from a specific file path.
// A missing file yields an empty Config; invalid JSON is an error.
func LoadFrom(path string) (*Config, error) {
	cfg := New()
	cfg.path = path

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, &cfg.values); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	if cfg.values == nil {
		cfg.values = make(map[string]string)
	}
	return cfg, nil
}

// FilePath returns the file this Config was loaded from, if any.
func (c *Config) FilePath() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.path
}

// Save writes the config back to the file it was loaded from.
func (c *Config) Save() error {
	c.mu.Lock()
	if c.path == "" {
		path, err := Path()
		if err != nil {
			c.mu.Unlock()
			return err
		}
		c.path = path
	}
	path := c.path
	c.mu.Unlock()
	return c.SaveTo(path)
}

// SaveTo writes the config to a specific file path.
func (c *Config) SaveTo(path string) error {
	c.fileMu.Lock()
	defer c.fileMu.Unlock()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create config directory %s: %w", dir, err)
	}

	c.mu.RLock()
	data, err := json.MarshalIndent(c.values, "", "  ")
	c.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Reset deletes the config file.
func Reset() error {
	path, err := Path()
	if err != nil {
		return err
	}
	return ResetAt(path)
}

// ResetAt deletes the config file at a specific path.
func ResetAt(path string) error {
	err := os.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete config file: %w", err)
	}
	return nil
}

// Set validates value and stores it under key. An empty value unsets key.
func (c *Config) Set(key, value string) error {
	value = strings.TrimSpace(value)
	if err := Validate(key, value); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if value == "" {
		delete(c.values, key)
		return nil
	}
	c.values[key] = value
	return nil
}

// Get returns the value of key, or "" if it is not set.
func (c *Config) Get(key string) (string, error) {
	if !isValidKey(key) {
		return "", fmt.Errorf("unknown config key %q", key)
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.values[key], nil
}

// GetString returns the value of key, or def if it is not set.
func (c *Config) GetString(key, def string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if v, ok := c.values[key]; ok {
		return v
	}
	return def
}

// SetString sets key and persists the file.
func (c *Config) SetString(key, value string) error {
	if err := c.Set(key, value); err != nil {
		return err
	}
	return c.Save()
}

// Clear unsets every key and deletes the backing file.
func (c *Config) Clear() error {
	c.mu.Lock()
	c.values = make(map[string]string)
	path := c.path
	c.mu.Unlock()
	if path == "" {
		return nil
	}
	c.fileMu.Lock()
	defer c.fileMu.Unlock()
	return ResetAt(path)
}

// Keys returns the keys that are set, sorted.
func (c *Config) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func isValidKey(key string) bool {
	for _, k := range ValidKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Validate checks that value is acceptable for key. An empty value is
// always accepted and means "unset".
func Validate(key, value string) error {
	if !isValidKey(key) {
		return fmt.Errorf("unknown config key %q; valid keys: %s", key, strings.Join(ValidKeys, ", "))
	}
	if value == "" {
		return nil
	}

	switch key {
	case KeyLatitude:
		return checkFloat(key, value, -90, 90)
	case KeyLongitude:
		return checkFloat(key, value, -180, 180)
	case KeyUTCOffset:
		return checkFloat(key, value, -12, 14)
	case KeyAltitude, KeyTemperature:
		_, err := parseFloat(key, value)
		return err
	case KeyPressure:
		v, err := parseFloat(key, value)
		if err == nil && v < 0 {
			return fmt.Errorf("invalid %s %q: must not be negative", key, value)
		}
		return err
	case KeyMethod:
		return checkInt(key, value, 0, method.Len()-1)
	case KeyRounding:
		return checkInt(key, value, 0, len(method.RoundingTypes)-1)
	case KeyOffsetMinutes:
		_, err := parseInt(key, value)
		return err
	case KeyLeadMinutes:
		return checkInt(key, value, 0, 24*60)
	case KeyTimeFormat:
		switch value {
		case "0", "1", "12h", "24h":
			return nil
		}
		return fmt.Errorf("invalid time_format %q: must be \"12h\" or \"24h\"", value)
	case KeyLanguage:
		langs := locale.Languages()
		for _, l := range langs {
			if l == value {
				return nil
			}
		}
		return fmt.Errorf("invalid language %q: must be one of %s", value, strings.Join(langs, ", "))
	case KeyEngine:
		if value != EngineSolar && value != EngineAladhan {
			return fmt.Errorf("invalid engine %q: must be %q or %q", value, EngineSolar, EngineAladhan)
		}
	}
	return nil
}

func parseFloat(key, value string) (float64, error) {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: must be a number", key, value)
	}
	return v, nil
}

func checkFloat(key, value string, lo, hi float64) error {
	v, err := parseFloat(key, value)
	if err != nil {
		return err
	}
	if v < lo || v > hi {
		return fmt.Errorf("invalid %s %q: must be between %g and %g", key, value, lo, hi)
	}
	return nil
}

func parseInt(key, value string) (int, error) {
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: must be an integer", key, value)
	}
	return v, nil
}

func checkInt(key, value string, lo, hi int) error {
	v, err := parseInt(key, value)
	if err != nil {
		return err
	}
	if v < lo || v > hi {
		return fmt.Errorf("invalid %s %q: must be between %d and %d", key, value, lo, hi)
	}
	return nil
}
