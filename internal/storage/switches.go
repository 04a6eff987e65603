package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/valter-silva-au/context-timer/pkg/models"
)

// InsertSwitch appends a context switch. from is nil when nothing was running.
func (s *Store) InsertSwitch(from *int64, to int64, at time.Time) (int64, error) {
	db, err := s.conn()
	if err != nil {
		return 0, fmt.Errorf("logging switch: %w", err)
	}

	res, err := db.Exec(
		`INSERT INTO context_switches (from_task_id, to_task_id, timestamp) VALUES (?, ?, ?)`,
		nullableInt(from), to, FormatTimestamp(at),
	)
	if err != nil {
		return 0, fmt.Errorf("logging switch to task %d: %w", to, err)
	}
	return res.LastInsertId()
}

// ListSwitchesInRange returns switches with a timestamp in [start, end),
// chronologically.
func (s *Store) ListSwitchesInRange(start, end time.Time) ([]models.ContextSwitch, error) {
	db, err := s.conn()
	if err != nil {
		return nil, fmt.Errorf("listing switches: %w", err)
	}

	rows, err := db.Query(`
		SELECT id, from_task_id, to_task_id, timestamp
		FROM context_switches
		WHERE timestamp >= ? AND timestamp < ?
		ORDER BY timestamp, id`,
		FormatTimestamp(start), FormatTimestamp(end))
	if err != nil {
		return nil, fmt.Errorf("listing switches: %w", err)
	}
	defer rows.Close()

	var switches []models.ContextSwitch
	for rows.Next() {
		var (
			sw   models.ContextSwitch
			from sql.NullInt64
			ts   string
		)
		if err := rows.Scan(&sw.ID, &from, &sw.ToTaskID, &ts); err != nil {
			return nil, fmt.Errorf("listing switches: %w", err)
		}
		if from.Valid {
			f := from.Int64
			sw.FromTaskID = &f
		}
		if sw.Timestamp, err = ParseTimestamp(ts); err != nil {
			return nil, fmt.Errorf("listing switches: %w", err)
		}
		switches = append(switches, sw)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing switches: %w", err)
	}
	return switches, nil
}
