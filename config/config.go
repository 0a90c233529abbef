// Package config persists user settings under the OS config directory,
// ~/.config/avail on Linux.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/avail-cli/avail/schedule"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

const (
	appDirName     = "avail"
	configFileName = "config.yaml"
	cacheDirName   = "cache"

	// DefaultCacheExpirationSeconds is how long fetched events stay
	// usable before a provider is asked again.
	DefaultCacheExpirationSeconds = 300
)

// ErrUnknownTimezone is returned for timezone names outside the
// supported shorthand set.
var ErrUnknownTimezone = errors.New("unknown timezone")

// timezoneAliases maps the supported shorthands to IANA zone names.
var timezoneAliases = map[string]string{
	"EST": "America/New_York",
	"PST": "America/Los_Angeles",
}

// Config holds every tunable setting. Field-absent keys keep their
// defaults on load, so old config files survive new fields.
type Config struct {
	DefaultTimezone        string `yaml:"default_timezone"`
	QuietMode              bool   `yaml:"quiet_mode"`
	UseGoogleCalendar      bool   `yaml:"use_google_calendar"`
	UseOutlookCalendar     bool   `yaml:"use_outlook_calendar"`
	UseCalDAV              bool   `yaml:"use_caldav"`
	CalDAVURL              string `yaml:"caldav_url"`
	CalDAVUsername         string `yaml:"caldav_username"`
	CalDAVPassword         string `yaml:"caldav_password"`
	UseCache               bool   `yaml:"use_cache"`
	CacheExpirationSeconds int    `yaml:"cache_expiration_seconds"`
	BlockMinutes           int    `yaml:"block_minutes"`
	WorkStartHour          int    `yaml:"work_start_hour"`
	WorkEndHour            int    `yaml:"work_end_hour"`
}

// Default returns the settings used before the user saves anything.
func Default() Config {
	return Config{
		DefaultTimezone:        "EST",
		QuietMode:              true,
		UseGoogleCalendar:      true,
		UseOutlookCalendar:     true,
		UseCalDAV:              false,
		UseCache:               true,
		CacheExpirationSeconds: DefaultCacheExpirationSeconds,
		BlockMinutes:           schedule.DefaultBlockMinutes,
		WorkStartHour:          schedule.DefaultWorkStartHour,
		WorkEndHour:            schedule.DefaultWorkEndHour,
	}
}

// Location resolves the configured timezone shorthand.
func (c Config) Location() (*time.Location, error) {
	name, ok := timezoneAliases[strings.ToUpper(c.DefaultTimezone)]
	if !ok {
		return nil, fmt.Errorf("%w %q, valid values are EST and PST", ErrUnknownTimezone, c.DefaultTimezone)
	}
	return time.LoadLocation(name)
}

// CacheTTL returns the cache expiration as a duration.
func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheExpirationSeconds) * time.Second
}

// WorkHours returns the configured working hours.
func (c Config) WorkHours() schedule.WorkHours {
	return schedule.WorkHours{StartHour: c.WorkStartHour, EndHour: c.WorkEndHour}
}

// Normalize repairs values a hand-edited file may have broken. Unknown
// timezones and out-of-range numbers fall back to defaults instead of
// failing the whole run.
func (c *Config) Normalize() {
	def := Default()
	if _, ok := timezoneAliases[strings.ToUpper(c.DefaultTimezone)]; ok {
		c.DefaultTimezone = strings.ToUpper(c.DefaultTimezone)
	} else {
		c.DefaultTimezone = def.DefaultTimezone
	}
	if c.CacheExpirationSeconds <= 0 {
		c.CacheExpirationSeconds = def.CacheExpirationSeconds
	}
	if c.BlockMinutes <= 0 {
		c.BlockMinutes = def.BlockMinutes
	}
	if c.WorkStartHour < 0 || c.WorkStartHour > 23 {
		c.WorkStartHour = def.WorkStartHour
	}
	if c.WorkEndHour < 1 || c.WorkEndHour > 24 || c.WorkEndHour <= c.WorkStartHour {
		c.WorkStartHour = def.WorkStartHour
		c.WorkEndHour = def.WorkEndHour
	}
}

// Dir returns the app's config directory.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating config directory: %w", err)
	}
	return filepath.Join(base, appDirName), nil
}

// Path returns the config file location.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// CacheDir returns where cached provider responses live.
func CacheDir() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, cacheDirName), nil
}

// CredentialFile returns the path of a named credential file inside the
// config directory, like google_token.json.
func CredentialFile(name string) (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// Load reads the config at path. A missing file means first run and
// yields the defaults; anything else unreadable is an error so a typo
// never silently wipes settings.
func Load(path string, logger *slog.Logger) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Debug("no config file, using defaults", "path", path)
			return cfg, nil
		}
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg.Normalize()
	return cfg, nil
}

// Save writes the config atomically via a temp file and rename.
func Save(cfg Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	tmp := fmt.Sprintf("%s.%s.tmp", path, uuid.New().String()[:8])
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing config: %w", err)
	}
	return nil
}
