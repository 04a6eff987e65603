package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/valter-silva-au/context-timer/pkg/models"
)

// sessionSelect joins each session with its task. LEFT JOIN keeps sessions
// whose task row is missing; their TaskName is empty.
const sessionSelect = `
	SELECT s.id, s.task_id, s.start_time, s.end_time, s.duration_seconds,
	       t.name, t.color
	FROM timer_sessions s
	LEFT JOIN tasks t ON s.task_id = t.id`

// InsertSession creates a running session for taskID starting at start.
func (s *Store) InsertSession(taskID int64, start time.Time) (int64, error) {
	db, err := s.conn()
	if err != nil {
		return 0, fmt.Errorf("starting session: %w", err)
	}

	res, err := db.Exec(
		`INSERT INTO timer_sessions (task_id, start_time) VALUES (?, ?)`,
		taskID, FormatTimestamp(start),
	)
	if err != nil {
		return 0, fmt.Errorf("starting session for task %d: %w", taskID, err)
	}
	return res.LastInsertId()
}

// FinishSession records the end time and duration of a session. It does not
// inspect the current state; callers decide whether a stop is allowed.
func (s *Store) FinishSession(id int64, end time.Time, durationSeconds int64) error {
	db, err := s.conn()
	if err != nil {
		return fmt.Errorf("stopping session %d: %w", id, err)
	}

	res, err := db.Exec(
		`UPDATE timer_sessions SET end_time = ?, duration_seconds = ? WHERE id = ?`,
		FormatTimestamp(end), durationSeconds, id,
	)
	if err != nil {
		return fmt.Errorf("stopping session %d: %w", id, err)
	}
	return requireAffected(res, "session", id)
}

// ReopenSession clears end_time and duration_seconds so the session runs
// again under the same id.
func (s *Store) ReopenSession(id int64) error {
	db, err := s.conn()
	if err != nil {
		return fmt.Errorf("reopening session %d: %w", id, err)
	}

	res, err := db.Exec(
		`UPDATE timer_sessions SET end_time = NULL, duration_seconds = NULL WHERE id = ?`,
		id,
	)
	if err != nil {
		return fmt.Errorf("reopening session %d: %w", id, err)
	}
	return requireAffected(res, "session", id)
}

// GetSession returns a session joined with its task, or models.ErrNotFound.
func (s *Store) GetSession(id int64) (*models.TimerSession, error) {
	db, err := s.conn()
	if err != nil {
		return nil, fmt.Errorf("getting session %d: %w", id, err)
	}

	row := db.QueryRow(sessionSelect+` WHERE s.id = ?`, id)
	session, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("session %d: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("getting session %d: %w", id, err)
	}
	return session, nil
}

// ListActiveSessions returns running sessions ordered by start time.
func (s *Store) ListActiveSessions() ([]models.TimerSession, error) {
	return s.querySessions("listing active sessions",
		sessionSelect+` WHERE s.end_time IS NULL ORDER BY s.start_time, s.id`)
}

// ListSessionsInRange returns sessions whose start time falls in the
// half-open interval [start, end), chronologically.
func (s *Store) ListSessionsInRange(start, end time.Time) ([]models.TimerSession, error) {
	return s.querySessions("listing sessions",
		sessionSelect+` WHERE s.start_time >= ? AND s.start_time < ? ORDER BY s.start_time, s.id`,
		FormatTimestamp(start), FormatTimestamp(end))
}

// LatestSessionForTaskInRange returns the most recently started session of
// taskID whose start time is in [start, end), or models.ErrNotFound.
func (s *Store) LatestSessionForTaskInRange(taskID int64, start, end time.Time) (*models.TimerSession, error) {
	db, err := s.conn()
	if err != nil {
		return nil, fmt.Errorf("finding session for task %d: %w", taskID, err)
	}

	row := db.QueryRow(sessionSelect+`
		WHERE s.task_id = ? AND s.start_time >= ? AND s.start_time < ?
		ORDER BY s.start_time DESC, s.id DESC
		LIMIT 1`,
		taskID, FormatTimestamp(start), FormatTimestamp(end))
	session, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("session for task %d: %w", taskID, models.ErrNotFound)
		}
		return nil, fmt.Errorf("finding session for task %d: %w", taskID, err)
	}
	return session, nil
}

func (s *Store) querySessions(op string, query string, args ...any) ([]models.TimerSession, error) {
	db, err := s.conn()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var sessions []models.TimerSession
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		sessions = append(sessions, *session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sessions, nil
}

func scanSession(row rowScanner) (*models.TimerSession, error) {
	var (
		session   models.TimerSession
		start     string
		end       sql.NullString
		duration  sql.NullInt64
		taskName  sql.NullString
		taskColor sql.NullString
	)
	if err := row.Scan(&session.ID, &session.TaskID, &start, &end, &duration, &taskName, &taskColor); err != nil {
		return nil, err
	}

	t, err := ParseTimestamp(start)
	if err != nil {
		return nil, err
	}
	session.StartTime = t

	if end.Valid {
		e, err := ParseTimestamp(end.String)
		if err != nil {
			return nil, err
		}
		session.EndTime = &e
	}
	if duration.Valid {
		d := duration.Int64
		session.DurationSeconds = &d
	}
	session.TaskName = taskName.String
	if taskColor.Valid {
		c := taskColor.String
		session.TaskColor = &c
	}
	return &session, nil
}

func requireAffected(res sql.Result, kind string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s %d: %w", kind, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", kind, id, models.ErrNotFound)
	}
	return nil
}
