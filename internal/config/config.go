package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config is the root configuration for timesync, stored in
// ~/.timesync/config.json. The file supports single-line // comments for
// documentation purposes. Secrets never live here; see Credentials.
type Config struct {
	// Timezone is the IANA journal timezone: the timezone that defines what
	// "a day" means in the Notion time-accounting database. Should match the
	// WakaTime account timezone setting.
	Timezone string `json:"timezone"`
	// FreezeHours is how many hours into "today" the sync keeps updating
	// "yesterday" as well (late-night sessions land on the right journal day).
	FreezeHours int `json:"freeze_hours"`
	// AWServerURL is the base URL of the local ActivityWatch server.
	AWServerURL string `json:"aw_server_url"`
	// AWHostname pins the ActivityWatch host whose buckets are read. Empty
	// means auto-detect from the local hostname.
	AWHostname string `json:"aw_hostname"`
	// ExportDir is where daily JSON snapshots are written.
	ExportDir string `json:"export_dir"`
	// SourceTimeoutSeconds bounds each source fetch.
	SourceTimeoutSeconds int `json:"source_timeout_seconds"`
	// RetryAttempts is the bounded retry budget for transient API failures.
	RetryAttempts int `json:"retry_attempts"`
}

const (
	// DefaultTimezone matches the journal timezone the Notion database uses.
	DefaultTimezone = "Asia/Singapore"
	// DefaultFreezeHours keeps yesterday updatable until 2am.
	DefaultFreezeHours = 2
	// DefaultAWServerURL is the standard local ActivityWatch endpoint.
	DefaultAWServerURL = "http://localhost:5600"

	defaultSourceTimeoutSeconds = 60
	defaultRetryAttempts        = 3
)

// Location resolves the configured journal timezone.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q in config: %w", c.Timezone, err)
	}
	return loc, nil
}

// SourceTimeout returns the per-source fetch timeout as a duration.
func (c Config) SourceTimeout() time.Duration {
	return time.Duration(c.SourceTimeoutSeconds) * time.Second
}

// Credentials holds the API secrets and Notion database identifiers, read
// from the environment once at startup and passed down explicitly.
type Credentials struct {
	WakaTimeAPIKey   string
	NotionAPIKey     string
	TimeDataSourceID string
	TaskDataSourceID string
}

// LoadCredentials reads the secret environment variables. Missing values are
// reported together so a cron setup can be fixed in one pass.
func LoadCredentials() (Credentials, error) {
	creds := Credentials{
		WakaTimeAPIKey:   os.Getenv("WAKATIME_API_KEY"),
		NotionAPIKey:     os.Getenv("NOTION_TIME_ACCOUNTANT_SECRET"),
		TimeDataSourceID: os.Getenv("NOTION_TIME_ACCOUNTING_DATASOURCE_ID"),
		TaskDataSourceID: os.Getenv("NOTION_BREAD_DATASOURCE_ID"),
	}

	var missing []string
	if creds.WakaTimeAPIKey == "" {
		missing = append(missing, "WAKATIME_API_KEY")
	}
	if creds.NotionAPIKey == "" {
		missing = append(missing, "NOTION_TIME_ACCOUNTANT_SECRET")
	}
	if creds.TimeDataSourceID == "" {
		missing = append(missing, "NOTION_TIME_ACCOUNTING_DATASOURCE_ID")
	}
	if len(missing) > 0 {
		return creds, fmt.Errorf("missing environment variables: %v", missing)
	}
	return creds, nil
}

// defaultConfig returns a Config pre-filled with sensible defaults.
func defaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{
		Timezone:             DefaultTimezone,
		FreezeHours:          DefaultFreezeHours,
		AWServerURL:          DefaultAWServerURL,
		AWHostname:           "",
		ExportDir:            filepath.Join(home, ".timesync", "export"),
		SourceTimeoutSeconds: defaultSourceTimeoutSeconds,
		RetryAttempts:        defaultRetryAttempts,
	}
}

// configTemplate is the annotated config written on first run.
// Lines whose trimmed content starts with // are stripped before JSON parsing,
// allowing human-readable documentation inside the file.
const configTemplate = `// timesync configuration – ~/.timesync/config.json
//
// All settings are optional; the built-in defaults shown below work out of
// the box. Secrets are NOT read from this file – set WAKATIME_API_KEY,
// NOTION_TIME_ACCOUNTANT_SECRET, NOTION_TIME_ACCOUNTING_DATASOURCE_ID and
// NOTION_BREAD_DATASOURCE_ID in the environment (or the cron wrapper's .env).
{
  // Journal timezone: defines what "a day" means in the time-accounting
  // database. Should match your WakaTime account timezone.
  "timezone": "Asia/Singapore",

  // How many hours into "today" the sync keeps updating "yesterday" too,
  // so a run just after midnight still finalises the previous day.
  "freeze_hours": 2,

  // Base URL of the local ActivityWatch server.
  "aw_server_url": "http://localhost:5600",

  // Pin the ActivityWatch hostname whose buckets are read.
  // Leave empty to auto-detect from the machine hostname.
  "aw_hostname": "",

  // Directory for the daily JSON analytics snapshot.
  // Leave empty to use ~/.timesync/export.
  "export_dir": "",

  // Per-source fetch timeout, in seconds.
  "source_timeout_seconds": 60,

  // Retry budget for transient source/sink API failures.
  "retry_attempts": 3
}
`

// configFilePath returns the path to ~/.timesync/config.json.
func configFilePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".timesync", "config.json"), nil
}

// stripLineComments removes lines whose leading non-whitespace content starts
// with //. Only full-line comments are handled; inline comments are not stripped.
func stripLineComments(data []byte) []byte {
	var out []byte
	for _, line := range bytes.Split(data, []byte("\n")) {
		if bytes.HasPrefix(bytes.TrimLeft(line, " \t"), []byte("//")) {
			continue
		}
		out = append(out, line...)
		out = append(out, '\n')
	}
	return out
}

// Load reads ~/.timesync/config.json, creating it with annotated defaults on
// first run. Lines starting with // are treated as comments and stripped
// before JSON parsing.
func Load() (Config, error) {
	path, err := configFilePath()
	if err != nil {
		return defaultConfig(), err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		// First run: write the annotated template so users can discover options.
		if writeErr := writeDefault(path); writeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not create config file %s: %v\n", path, writeErr)
		}
		return defaultConfig(), nil
	}
	if err != nil {
		return defaultConfig(), fmt.Errorf("reading config file %s: %w", path, err)
	}

	cleaned := stripLineComments(data)
	var cfg Config
	if err := json.Unmarshal(cleaned, &cfg); err != nil {
		return defaultConfig(), fmt.Errorf("parsing config file %s: %w\nTip: delete the file to regenerate defaults", path, err)
	}

	// Fill zero-value fields with built-in defaults so callers always get
	// a usable Config even if the user only partially fills in the file.
	defaults := defaultConfig()
	if cfg.Timezone == "" {
		cfg.Timezone = defaults.Timezone
	}
	if cfg.FreezeHours == 0 {
		cfg.FreezeHours = defaults.FreezeHours
	}
	if cfg.AWServerURL == "" {
		cfg.AWServerURL = defaults.AWServerURL
	}
	if cfg.ExportDir == "" {
		cfg.ExportDir = defaults.ExportDir
	}
	if cfg.SourceTimeoutSeconds == 0 {
		cfg.SourceTimeoutSeconds = defaults.SourceTimeoutSeconds
	}
	if cfg.RetryAttempts == 0 {
		cfg.RetryAttempts = defaults.RetryAttempts
	}

	return cfg, nil
}

// writeDefault creates the config directory and writes the annotated default
// config template.
func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}
