// Package internal provides the App struct that wires all components of the
// context timer together and initializes the CLI layer.
package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/valter-silva-au/context-timer/internal/cli"
	"github.com/valter-silva-au/context-timer/internal/core"
	"github.com/valter-silva-au/context-timer/internal/observability"
	"github.com/valter-silva-au/context-timer/internal/storage"
	"github.com/valter-silva-au/context-timer/pkg/models"
)

// App holds all service dependencies for the context timer.
type App struct {
	BasePath string

	// Configuration
	ConfigMgr core.ConfigurationManager
	Config    *models.GlobalConfig
	Location  *time.Location

	// Storage layer
	Store *storage.Store

	// Core services
	Tasks     core.TaskRegistry
	Switches  core.SwitchLog
	Tracker   core.SessionTracker
	Reports   core.ReportAggregator
	AutoStart core.AutoStarter

	// Observability
	EventLog    observability.EventLog
	AlertEngine observability.AlertEngine
	MetricsCalc observability.MetricsCalculator
	Notifier    observability.Notifier
}

// NewApp creates and wires all components of the context timer. basePath is
// the directory holding .ctimerconfig and, by default, the database and
// event log.
func NewApp(basePath string) (*App, error) {
	app := &App{BasePath: basePath}

	// --- Configuration ---
	app.ConfigMgr = core.NewConfigurationManager(basePath)
	cfg, err := app.ConfigMgr.LoadGlobalConfig()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	if err := app.ConfigMgr.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	app.Config = cfg

	app.Location, err = core.Location(cfg)
	if err != nil {
		return nil, err
	}

	// --- Storage layer ---
	app.Store, err = storage.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	// --- Observability ---
	app.EventLog, err = observability.NewJSONLEventLog(cfg.Events.Path)
	if err != nil {
		// Non-fatal: disable observability if log can't be created.
		app.EventLog = nil
	}
	var evtAdapter core.EventLogger
	if app.EventLog != nil {
		evtAdapter = &eventLogAdapter{log: app.EventLog}

		thresholds := observability.DefaultAlertThresholds()
		if cfg.Alerts.LongSessionHours > 0 {
			thresholds.LongSessionHours = cfg.Alerts.LongSessionHours
		}
		if cfg.Alerts.MaxSwitchesPerDay > 0 {
			thresholds.MaxSwitchesPerDay = cfg.Alerts.MaxSwitchesPerDay
		}
		app.AlertEngine = observability.NewAlertEngine(app.EventLog, thresholds, app.Location)
		app.MetricsCalc = observability.NewMetricsCalculator(app.EventLog)
	}
	if cfg.Alerts.SlackWebhookURL != "" {
		app.Notifier = observability.NewSlackNotifier(cfg.Alerts.SlackWebhookURL)
	}

	// --- Core services ---
	app.Tasks = core.NewTaskRegistry(app.Store, nil, evtAdapter)
	app.Switches = core.NewSwitchLog(app.Store, nil, evtAdapter)
	app.Tracker = core.NewSessionTracker(app.Store, app.Tasks, app.Switches, nil, app.Location, evtAdapter)
	app.Reports = core.NewReportAggregator(app.Store, nil, app.Location, evtAdapter)
	app.AutoStart = core.NewAutoStarter(app.Store, app.Tracker, app.Location, evtAdapter)

	// --- Wire CLI package-level variables ---
	cli.BasePath = basePath
	cli.Config = cfg
	cli.ConfigMgr = app.ConfigMgr
	cli.Location = app.Location

	cli.Tasks = app.Tasks
	cli.Switches = app.Switches
	cli.Tracker = app.Tracker
	cli.Reports = app.Reports
	cli.AutoStart = app.AutoStart
	cli.Settings = app.Store

	cli.EventLog = app.EventLog
	cli.AlertEngine = app.AlertEngine
	cli.MetricsCalc = app.MetricsCalc
	cli.Notifier = app.Notifier

	return app, nil
}

// CheckAutoStart starts the Work Day when the expected start time has
// passed. It runs once per launch.
func (a *App) CheckAutoStart(now time.Time) (bool, error) {
	if a.AutoStart == nil {
		return false, nil
	}
	return a.AutoStart.Check(now)
}

// Close releases the database and the event log file handle. It is safe to
// call Close on an App whose EventLog is nil.
func (a *App) Close() error {
	var firstErr error
	if a.EventLog != nil {
		firstErr = a.EventLog.Close()
	}
	if a.Store != nil {
		if err := a.Store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// ResolveBasePath determines the context timer data directory. It checks the
// CTIMER_HOME env var, then walks up from the current directory looking for
// .ctimerconfig, then falls back to ~/.local/share/context-timer.
func ResolveBasePath() string {
	if home := os.Getenv("CTIMER_HOME"); home != "" {
		return home
	}
	if dir, err := os.Getwd(); err == nil {
		for {
			if _, err := os.Stat(filepath.Join(dir, core.ConfigFileName)); err == nil {
				return dir
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		cwd, _ := os.Getwd()
		return cwd
	}
	return filepath.Join(home, ".local", "share", "context-timer")
}

// --- Adapters ---

// eventLogAdapter adapts observability.EventLog to core.EventLogger.
type eventLogAdapter struct {
	log observability.EventLog
}

func (a *eventLogAdapter) LogEvent(eventType string, data map[string]any) error {
	return a.log.Write(observability.Event{
		Level: observability.LevelInfo,
		Type:  eventType,
		Data:  data,
	})
}
