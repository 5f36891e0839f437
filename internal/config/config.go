// Package config loads SwimTrack settings from an optional YAML file,
// environment variables and built-in defaults, in increasing precedence
// order: defaults, file, environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultFile is read when no path is given and it exists.
const DefaultFile = "swimtrack.yaml"

// Storage backends.
const (
	StorageSQLite = "sqlite"
	StorageMemory = "memory"
	StorageRemote = "remote"
)

// Config is the full application configuration.
type Config struct {
	Server      ServerConfig      `mapstructure:"server" yaml:"server"`
	Storage     StorageConfig     `mapstructure:"storage" yaml:"storage"`
	Security    SecurityConfig    `mapstructure:"security" yaml:"security"`
	Admin       AdminConfig       `mapstructure:"admin" yaml:"admin"`
	Email       EmailConfig       `mapstructure:"email" yaml:"email"`
	Monitor     MonitorConfig     `mapstructure:"monitor" yaml:"monitor"`
	Competition CompetitionConfig `mapstructure:"competition" yaml:"competition"`
	Logging     LoggingConfig     `mapstructure:"logging" yaml:"logging"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr      string `mapstructure:"addr" yaml:"addr"`
	Env       string `mapstructure:"env" yaml:"env"` // development or production
	StaticDir string `mapstructure:"static_dir" yaml:"static_dir"`
}

// StorageConfig selects and configures the storage backend.
type StorageConfig struct {
	Type     string       `mapstructure:"type" yaml:"type"`
	Database string       `mapstructure:"database" yaml:"database"` // SQLite file path
	Remote   RemoteConfig `mapstructure:"remote" yaml:"remote"`
}

// RemoteConfig configures the remote REST backend.
type RemoteConfig struct {
	BaseURL   string          `mapstructure:"base_url" yaml:"base_url"`
	Token     string          `mapstructure:"token" yaml:"token"` // Secret: bearer token
	Timeout   time.Duration   `mapstructure:"timeout" yaml:"timeout"`
	Endpoints RemoteEndpoints `mapstructure:"endpoints" yaml:"endpoints"`
}

// RemoteEndpoints overrides resource paths on the remote API.
type RemoteEndpoints struct {
	Competitions string `mapstructure:"competitions" yaml:"competitions"`
	Teams        string `mapstructure:"teams" yaml:"teams"`
	Swimmers     string `mapstructure:"swimmers" yaml:"swimmers"`
	Referees     string `mapstructure:"referees" yaml:"referees"`
	SwimSessions string `mapstructure:"swim_sessions" yaml:"swim_sessions"`
	LapCounts    string `mapstructure:"lap_counts" yaml:"lap_counts"`
}

// SecurityConfig configures request protection.
type SecurityConfig struct {
	CSRFKey     string   `mapstructure:"csrf_key" yaml:"csrf_key"` // Secret: 32 bytes
	APIKey      string   `mapstructure:"api_key" yaml:"api_key"`   // Secret: optional X-API-Key
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
	RateLimit   int      `mapstructure:"rate_limit" yaml:"rate_limit"` // auth requests per minute per IP
}

// AdminConfig seeds the first administrator.
type AdminConfig struct {
	Email    string `mapstructure:"email" yaml:"email"`
	Password string `mapstructure:"password" yaml:"password"` // Secret
}

// EmailConfig configures outgoing mail.
type EmailConfig struct {
	ResendKey     string              `mapstructure:"resend_key" yaml:"resend_key"` // Secret
	From          string              `mapstructure:"from" yaml:"from"`
	ReplyTo       string              `mapstructure:"reply_to" yaml:"reply_to"`
	Notifications NotificationToggles `mapstructure:"notifications" yaml:"notifications"`
}

// NotificationToggles switches individual mails on or off.
type NotificationToggles struct {
	OrganizerRegistration bool `mapstructure:"organizer_registration" yaml:"organizer_registration"`
	PasswordReset         bool `mapstructure:"password_reset" yaml:"password_reset"`
	CompetitionResult     bool `mapstructure:"competition_result" yaml:"competition_result"`
}

// MonitorConfig configures the public monitor page.
type MonitorConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
}

// CompetitionConfig holds competition-wide settings.
type CompetitionConfig struct {
	Timezone string `mapstructure:"timezone" yaml:"timezone"` // IANA name; empty or "Local" is server time
}

// LoggingConfig configures the default slog handler.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"` // text or json
}

var defaults = map[string]any{
	"server.addr":                                ":8080",
	"server.env":                                 "development",
	"server.static_dir":                          "static",
	"storage.type":                               StorageSQLite,
	"storage.database":                           "swimtrack.db",
	"storage.remote.timeout":                     "10s",
	"security.rate_limit":                        10,
	"admin.email":                                "admin@swimtrack.local",
	"email.from":                                 "SwimTrack <noreply@swimtrack.local>",
	"email.notifications.organizer_registration": true,
	"email.notifications.password_reset":         true,
	"email.notifications.competition_result":     true,
	"monitor.poll_interval":                      "5s",
	"competition.timezone":                       "Local",
	"logging.level":                              "info",
	"logging.format":                             "text",
}

// envBindings maps config keys to the environment variables that can set them.
var envBindings = map[string][]string{
	"server.addr":                                {"SWIMTRACK_ADDR"},
	"server.env":                                 {"SWIMTRACK_ENV"},
	"server.static_dir":                          {"SWIMTRACK_STATIC_DIR"},
	"storage.type":                               {"SWIMTRACK_STORAGE"},
	"storage.database":                           {"SWIMTRACK_DATABASE"},
	"storage.remote.base_url":                    {"SWIMTRACK_REMOTE_URL"},
	"storage.remote.token":                       {"SWIMTRACK_REMOTE_TOKEN"},
	"storage.remote.timeout":                     {"SWIMTRACK_REMOTE_TIMEOUT"},
	"security.csrf_key":                          {"SWIMTRACK_CSRF_KEY"},
	"security.api_key":                           {"SWIMTRACK_API_KEY"},
	"security.cors_origins":                      {"SWIMTRACK_CORS_ORIGINS"},
	"security.rate_limit":                        {"SWIMTRACK_RATE_LIMIT"},
	"admin.email":                                {"SWIMTRACK_ADMIN_EMAIL"},
	"admin.password":                             {"SWIMTRACK_ADMIN_PASSWORD"},
	"email.resend_key":                           {"SWIMTRACK_RESEND_KEY"},
	"email.from":                                 {"SWIMTRACK_EMAIL_FROM"},
	"email.reply_to":                             {"SWIMTRACK_REPLY_TO"},
	"email.notifications.organizer_registration": {"SWIMTRACK_NOTIFY_REGISTRATION"},
	"email.notifications.password_reset":         {"SWIMTRACK_NOTIFY_PASSWORD_RESET"},
	"email.notifications.competition_result":     {"SWIMTRACK_NOTIFY_RESULTS"},
	"monitor.poll_interval":                      {"SWIMTRACK_MONITOR_POLL"},
	"competition.timezone":                       {"SWIMTRACK_TIMEZONE"},
	"logging.level":                              {"SWIMTRACK_LOG_LEVEL"},
	"logging.format":                             {"SWIMTRACK_LOG_FORMAT"},
}

// Load reads filePath when it exists, then applies environment overrides.
// An empty filePath means DefaultFile. A missing file is not an error.
// PRE: none
// POST: Returns a validated config, or the first problem found
func Load(filePath string) (*Config, error) {
	if filePath == "" {
		filePath = DefaultFile
	}
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	if err := bindEnvs(v); err != nil {
		return nil, err
	}

	v.SetConfigFile(filePath)
	if _, err := os.Stat(filePath); !errors.Is(err, fs.ErrNotExist) {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", filePath, err)
		}
		slog.Debug("config_loaded", "file", filePath)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Security.CORSOrigins = splitList(cfg.Security.CORSOrigins)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func bindEnvs(v *viper.Viper) error {
	for key, envs := range envBindings {
		inputs := slices.Insert(slices.Clone(envs), 0, key)
		if err := v.BindEnv(inputs...); err != nil {
			return err
		}
	}
	return nil
}

// splitList accepts both YAML lists and a comma-separated env value.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// Validate checks cross-field rules viper cannot express.
func (c *Config) Validate() error {
	switch c.Storage.Type {
	case StorageSQLite:
		if c.Storage.Database == "" {
			return errors.New("storage.database is required for the sqlite backend")
		}
	case StorageMemory:
	case StorageRemote:
		if c.Storage.Remote.BaseURL == "" {
			return errors.New("storage.remote.base_url is required for the remote backend")
		}
	default:
		return fmt.Errorf("storage.type must be sqlite, memory or remote, got %q", c.Storage.Type)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}
	if c.Monitor.PollInterval <= 0 {
		return errors.New("monitor.poll_interval must be positive")
	}
	if c.Security.CSRFKey != "" && len(c.Security.CSRFKey) != 32 {
		return errors.New("security.csrf_key must be exactly 32 bytes")
	}
	return nil
}

// IsProduction reports whether server.env is production.
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// Location resolves competition.timezone.
func (c *Config) Location() (*time.Location, error) {
	tz := c.Competition.Timezone
	if tz == "" || strings.EqualFold(tz, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("competition.timezone: %w", err)
	}
	return loc, nil
}

// SlogLevel parses logging.level.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Logging.Level)); err != nil {
		return 0, fmt.Errorf("logging.level: %w", err)
	}
	return level, nil
}
