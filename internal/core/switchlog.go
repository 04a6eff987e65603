package core

import (
	"fmt"
	"time"

	"github.com/valter-silva-au/context-timer/pkg/models"
)

// SwitchLog is the append-only log of task-to-task transitions.
type SwitchLog interface {
	// Log records a switch to task to. from is nil when nothing was running.
	Log(from *int64, to int64) (*models.ContextSwitch, error)
	// ListForRange returns switches in [start, end), chronologically.
	ListForRange(start, end time.Time) ([]models.ContextSwitch, error)
}

type switchLog struct {
	store       SwitchStore
	clock       Clock
	eventLogger EventLogger
}

// NewSwitchLog creates a SwitchLog backed by store. clock and eventLogger may
// be nil.
func NewSwitchLog(store SwitchStore, clock Clock, eventLogger EventLogger) SwitchLog {
	return &switchLog{store: store, clock: clock, eventLogger: eventLogger}
}

func (l *switchLog) Log(from *int64, to int64) (*models.ContextSwitch, error) {
	at := l.clock.now().UTC()
	id, err := l.store.InsertSwitch(from, to, at)
	if err != nil {
		return nil, fmt.Errorf("logging context switch: %w", err)
	}

	data := map[string]any{"switch_id": id, "to_task_id": to}
	if from != nil {
		data["from_task_id"] = *from
	}
	emit(l.eventLogger, EventSwitchLogged, data)

	return &models.ContextSwitch{ID: id, FromTaskID: from, ToTaskID: to, Timestamp: at}, nil
}

func (l *switchLog) ListForRange(start, end time.Time) ([]models.ContextSwitch, error) {
	switches, err := l.store.ListSwitchesInRange(start, end)
	if err != nil {
		return nil, fmt.Errorf("listing context switches: %w", err)
	}
	return switches, nil
}
