// Package core contains the business logic of the context timer: the task
// registry, session tracking with the Work Day/Lunch/Break rules, the context
// switch log, report aggregation, CSV export, and configuration.
package core

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/valter-silva-au/context-timer/pkg/models"
)

// ConfigFileName is the name of the YAML configuration file in the base
// directory.
const ConfigFileName = ".ctimerconfig"

// ConfigurationManager loads and validates .ctimerconfig.
type ConfigurationManager interface {
	LoadGlobalConfig() (*models.GlobalConfig, error)
	ValidateConfig(cfg *models.GlobalConfig) error
	// WriteDefaultConfig creates .ctimerconfig with default values. An
	// existing file is left untouched and reported as not written.
	WriteDefaultConfig() (written bool, err error)
}

// viperConfigManager implements ConfigurationManager using Viper for
// reading YAML configuration files.
type viperConfigManager struct {
	// basePath is the root directory where .ctimerconfig resides.
	basePath string
}

// NewConfigurationManager creates a new ConfigurationManager that reads
// configuration files relative to basePath.
func NewConfigurationManager(basePath string) ConfigurationManager {
	return &viperConfigManager{basePath: basePath}
}

// DefaultExportDir returns ~/Documents/context-timer-exports.
func DefaultExportDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = "."
	}
	return filepath.Join(home, "Documents", "context-timer-exports")
}

// defaultGlobalConfig returns a GlobalConfig populated with defaults for the
// given base directory.
func defaultGlobalConfig(basePath string) *models.GlobalConfig {
	return &models.GlobalConfig{
		Database: models.DatabaseConfig{Path: filepath.Join(basePath, "timers.db")},
		Export:   models.ExportConfig{Dir: DefaultExportDir()},
		Timezone: "",
		Events:   models.EventsConfig{Path: filepath.Join(basePath, ".ctimer_events.jsonl")},
		Alerts: models.AlertConfig{
			LongSessionHours:  10,
			MaxSwitchesPerDay: 30,
		},
	}
}

// LoadGlobalConfig reads .ctimerconfig from the base path using Viper.
// If the file does not exist, defaults are returned. Relative paths in the
// file are resolved against the base path.
func (cm *viperConfigManager) LoadGlobalConfig() (*models.GlobalConfig, error) {
	cfg := defaultGlobalConfig(cm.basePath)

	v := viper.New()
	v.SetConfigName(ConfigFileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(cm.basePath)
	// The file has no extension, so point Viper at it directly when present.
	path := filepath.Join(cm.basePath, ConfigFileName)
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
	}

	v.SetDefault("database.path", cfg.Database.Path)
	v.SetDefault("export.dir", cfg.Export.Dir)
	v.SetDefault("timezone", cfg.Timezone)
	v.SetDefault("events.path", cfg.Events.Path)
	v.SetDefault("alerts.long_session_hours", cfg.Alerts.LongSessionHours)
	v.SetDefault("alerts.max_switches_per_day", cfg.Alerts.MaxSwitchesPerDay)
	v.SetDefault("alerts.slack_webhook_url", "")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return cfg, nil
		}
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading %s: %w", ConfigFileName, err)
	}

	cfg.Database.Path = cm.resolve(v.GetString("database.path"))
	cfg.Export.Dir = cm.resolve(v.GetString("export.dir"))
	cfg.Timezone = v.GetString("timezone")
	cfg.Events.Path = cm.resolve(v.GetString("events.path"))
	cfg.Alerts.LongSessionHours = v.GetInt("alerts.long_session_hours")
	cfg.Alerts.MaxSwitchesPerDay = v.GetInt("alerts.max_switches_per_day")
	cfg.Alerts.SlackWebhookURL = v.GetString("alerts.slack_webhook_url")

	return cfg, nil
}

// resolve expands a leading ~ and anchors relative paths at the base path.
func (cm *viperConfigManager) resolve(p string) string {
	if p == "" {
		return p
	}
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	if !filepath.IsAbs(p) {
		p = filepath.Join(cm.basePath, p)
	}
	return p
}

// ValidateConfig checks the configuration for invalid values and returns
// every problem found in one error.
func (cm *viperConfigManager) ValidateConfig(cfg *models.GlobalConfig) error {
	return validateGlobalConfig(cfg)
}

// WriteDefaultConfig writes a default .ctimerconfig into the base path.
func (cm *viperConfigManager) WriteDefaultConfig() (bool, error) {
	path := filepath.Join(cm.basePath, ConfigFileName)
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}

	if err := os.MkdirAll(cm.basePath, 0o755); err != nil {
		return false, fmt.Errorf("creating %s: %w", cm.basePath, err)
	}

	data, err := yaml.Marshal(defaultGlobalConfig(cm.basePath))
	if err != nil {
		return false, fmt.Errorf("marshalling default config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, fmt.Errorf("writing %s: %w", ConfigFileName, err)
	}
	return true, nil
}

// validateGlobalConfig checks a GlobalConfig for invalid field values.
func validateGlobalConfig(cfg *models.GlobalConfig) error {
	if cfg == nil {
		return fmt.Errorf("global configuration is nil")
	}

	var errs []string

	if cfg.Database.Path == "" {
		errs = append(errs, "database.path must not be empty")
	}

	if cfg.Export.Dir == "" {
		errs = append(errs, "export.dir must not be empty")
	}

	if cfg.Timezone != "" {
		if _, err := time.LoadLocation(cfg.Timezone); err != nil {
			errs = append(errs, fmt.Sprintf("timezone %q is not a known IANA location", cfg.Timezone))
		}
	}

	if cfg.Alerts.LongSessionHours <= 0 {
		errs = append(errs, fmt.Sprintf(
			"alerts.long_session_hours must be positive, got %d", cfg.Alerts.LongSessionHours))
	}

	if cfg.Alerts.MaxSwitchesPerDay <= 0 {
		errs = append(errs, fmt.Sprintf(
			"alerts.max_switches_per_day must be positive, got %d", cfg.Alerts.MaxSwitchesPerDay))
	}

	if u := cfg.Alerts.SlackWebhookURL; u != "" && !strings.HasPrefix(u, "https://") && !strings.HasPrefix(u, "http://") {
		errs = append(errs, fmt.Sprintf("alerts.slack_webhook_url must be an http(s) URL, got %q", u))
	}

	if len(errs) > 0 {
		return fmt.Errorf("global config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// Location returns the configured time zone, or the system local zone when
// none is set.
func Location(cfg *models.GlobalConfig) (*time.Location, error) {
	if cfg == nil || cfg.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", cfg.Timezone, err)
	}
	return loc, nil
}
