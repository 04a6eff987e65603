package models

// DatabaseConfig locates the SQLite database.
type DatabaseConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ExportConfig controls where CSV exports are written.
type ExportConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// EventsConfig locates the JSONL event log.
type EventsConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// AlertConfig holds the thresholds used by the alert engine and the optional
// Slack webhook that `ctimer alerts --notify` posts to.
type AlertConfig struct {
	LongSessionHours  int    `yaml:"long_session_hours" mapstructure:"long_session_hours"`
	MaxSwitchesPerDay int    `yaml:"max_switches_per_day" mapstructure:"max_switches_per_day"`
	SlackWebhookURL   string `yaml:"slack_webhook_url,omitempty" mapstructure:"slack_webhook_url"`
}

// GlobalConfig holds settings read from .ctimerconfig via Viper. Relative
// paths are resolved against the base directory.
type GlobalConfig struct {
	Database DatabaseConfig `yaml:"database" mapstructure:"database"`
	Export   ExportConfig   `yaml:"export" mapstructure:"export"`
	Timezone string         `yaml:"timezone,omitempty" mapstructure:"timezone"`
	Events   EventsConfig   `yaml:"events" mapstructure:"events"`
	Alerts   AlertConfig    `yaml:"alerts" mapstructure:"alerts"`
}
