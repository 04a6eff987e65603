package models

import "errors"

// Error kinds shared by the storage and core layers. Callers match them with
// errors.Is; every layer wraps them with operation context.
var (
	ErrNotFound           = errors.New("not found")
	ErrDuplicateName      = errors.New("duplicate task name")
	ErrStoreClosed        = errors.New("store closed")
	ErrInvalidSetting     = errors.New("invalid setting")
	ErrInvalidName        = errors.New("invalid task name")
	ErrAlreadyRunning     = errors.New("session already running")
	ErrNotRunning         = errors.New("no running session")
	ErrSpecialUnavailable = errors.New("special timer unavailable")
	ErrReservedTask       = errors.New("reserved task")
)
