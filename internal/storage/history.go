package storage

import (
	"fmt"
	"time"
)

// DeleteHistoryInRange removes sessions starting in [start, end) and switches
// logged in the same interval, in one transaction. Tasks are kept. It
// returns the number of sessions removed.
func (s *Store) DeleteHistoryInRange(start, end time.Time) (int, error) {
	db, err := s.conn()
	if err != nil {
		return 0, fmt.Errorf("clearing history: %w", err)
	}

	from, to := FormatTimestamp(start), FormatTimestamp(end)

	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("clearing history: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec(`DELETE FROM timer_sessions WHERE start_time >= ? AND start_time < ?`, from, to)
	if err != nil {
		return 0, fmt.Errorf("clearing sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clearing sessions: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM context_switches WHERE timestamp >= ? AND timestamp < ?`, from, to); err != nil {
		return 0, fmt.Errorf("clearing switches: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("clearing history: %w", err)
	}
	return int(n), nil
}

// DeleteAllHistory removes every session and switch. Tasks and settings are
// kept.
func (s *Store) DeleteAllHistory() (int, error) {
	db, err := s.conn()
	if err != nil {
		return 0, fmt.Errorf("clearing history: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("clearing history: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec(`DELETE FROM timer_sessions`)
	if err != nil {
		return 0, fmt.Errorf("clearing sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clearing sessions: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM context_switches`); err != nil {
		return 0, fmt.Errorf("clearing switches: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("clearing history: %w", err)
	}
	return int(n), nil
}
