package cli

import (
	"time"

	"github.com/valter-silva-au/context-timer/internal/core"
	"github.com/valter-silva-au/context-timer/internal/observability"
	"github.com/valter-silva-au/context-timer/pkg/models"
)

// Configuration, set during app initialization in app.go.
var (
	BasePath  string
	Config    *models.GlobalConfig
	ConfigMgr core.ConfigurationManager
	// Location defines calendar days for reports and date flags.
	Location *time.Location
	// Clock is nil outside tests.
	Clock core.Clock
)

// Timer service instances, set during app initialization in app.go.
var (
	Tasks     core.TaskRegistry
	Tracker   core.SessionTracker
	Switches  core.SwitchLog
	Reports   core.ReportAggregator
	AutoStart core.AutoStarter
	Settings  core.SettingStore
)

// Observability service instances, set during app initialization in app.go.
var (
	EventLog    observability.EventLog
	AlertEngine observability.AlertEngine
	MetricsCalc observability.MetricsCalculator
	Notifier    observability.Notifier
)
