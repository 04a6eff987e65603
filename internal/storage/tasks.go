package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/valter-silva-au/context-timer/pkg/models"
)

const taskColumns = `id, name, color, created_at, is_active`

// CreateTask inserts a task and returns its id. A name already used by any
// task, active or not, fails with models.ErrDuplicateName.
func (s *Store) CreateTask(name string, color *string, createdAt time.Time) (int64, error) {
	db, err := s.conn()
	if err != nil {
		return 0, fmt.Errorf("creating task: %w", err)
	}

	res, err := db.Exec(
		`INSERT INTO tasks (name, color, created_at) VALUES (?, ?, ?)`,
		name, nullableString(color), FormatTimestamp(createdAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("creating task %q: %w", name, models.ErrDuplicateName)
		}
		return 0, fmt.Errorf("creating task %q: %w", name, err)
	}
	return res.LastInsertId()
}

// ListTasks returns tasks ordered by name, optionally only active ones.
func (s *Store) ListTasks(activeOnly bool) ([]models.Task, error) {
	db, err := s.conn()
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}

	query := `SELECT ` + taskColumns + ` FROM tasks ORDER BY name`
	if activeOnly {
		query = `SELECT ` + taskColumns + ` FROM tasks WHERE is_active = 1 ORDER BY name`
	}

	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("listing tasks: %w", err)
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	return tasks, nil
}

// GetTask returns the task with the given id or models.ErrNotFound.
func (s *Store) GetTask(id int64) (*models.Task, error) {
	db, err := s.conn()
	if err != nil {
		return nil, fmt.Errorf("getting task %d: %w", id, err)
	}

	row := db.QueryRow(`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("task %d: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("getting task %d: %w", id, err)
	}
	return task, nil
}

// GetTaskByName returns the task with exactly the given name, active or not.
func (s *Store) GetTaskByName(name string) (*models.Task, error) {
	db, err := s.conn()
	if err != nil {
		return nil, fmt.Errorf("getting task %q: %w", name, err)
	}

	row := db.QueryRow(`SELECT `+taskColumns+` FROM tasks WHERE name = ?`, name)
	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("task %q: %w", name, models.ErrNotFound)
		}
		return nil, fmt.Errorf("getting task %q: %w", name, err)
	}
	return task, nil
}

// UpdateTask applies a partial update. Nil fields are left unchanged. An
// unknown id fails with models.ErrNotFound.
func (s *Store) UpdateTask(id int64, name *string, color *string) error {
	db, err := s.conn()
	if err != nil {
		return fmt.Errorf("updating task %d: %w", id, err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("updating task %d: %w", id, err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM tasks WHERE id = ?`, id).Scan(&exists); err != nil {
		return fmt.Errorf("updating task %d: %w", id, err)
	}
	if exists == 0 {
		return fmt.Errorf("task %d: %w", id, models.ErrNotFound)
	}

	if name != nil {
		if _, err := tx.Exec(`UPDATE tasks SET name = ? WHERE id = ?`, *name, id); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("renaming task %d to %q: %w", id, *name, models.ErrDuplicateName)
			}
			return fmt.Errorf("updating task %d name: %w", id, err)
		}
	}
	if color != nil {
		if _, err := tx.Exec(`UPDATE tasks SET color = ? WHERE id = ?`, *color, id); err != nil {
			return fmt.Errorf("updating task %d color: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("updating task %d: %w", id, err)
	}
	return nil
}

// SetTaskActive flips the soft-delete flag. An unknown id fails with
// models.ErrNotFound.
func (s *Store) SetTaskActive(id int64, active bool) error {
	db, err := s.conn()
	if err != nil {
		return fmt.Errorf("updating task %d: %w", id, err)
	}

	flag := 0
	if active {
		flag = 1
	}
	res, err := db.Exec(`UPDATE tasks SET is_active = ? WHERE id = ?`, flag, id)
	if err != nil {
		return fmt.Errorf("updating task %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating task %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("task %d: %w", id, models.ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	var (
		task      models.Task
		color     sql.NullString
		createdAt string
		active    sql.NullInt64
	)
	if err := row.Scan(&task.ID, &task.Name, &color, &createdAt, &active); err != nil {
		return nil, err
	}
	if color.Valid {
		c := color.String
		task.Color = &c
	}
	t, err := ParseTimestamp(createdAt)
	if err != nil {
		return nil, err
	}
	task.CreatedAt = t
	// is_active defaults to 1; a NULL written by hand counts as active.
	task.IsActive = !active.Valid || active.Int64 != 0
	return &task, nil
}
