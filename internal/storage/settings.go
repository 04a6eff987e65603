package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/valter-silva-au/context-timer/pkg/models"
)

// GetSetting returns the value stored under key. ok is false when the key
// has never been set.
func (s *Store) GetSetting(key string) (value string, ok bool, err error) {
	db, err := s.conn()
	if err != nil {
		return "", false, fmt.Errorf("reading setting %q: %w", key, err)
	}

	var v sql.NullString
	err = db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading setting %q: %w", key, err)
	}
	return v.String, true, nil
}

// SetSetting stores value under key, replacing any previous value.
func (s *Store) SetSetting(key, value string) error {
	db, err := s.conn()
	if err != nil {
		return fmt.Errorf("writing setting %q: %w", key, err)
	}

	if _, err := db.Exec(`INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)`, key, value); err != nil {
		return fmt.Errorf("writing setting %q: %w", key, err)
	}
	return nil
}

// ListSettings returns every stored setting ordered by key.
func (s *Store) ListSettings() ([]models.Setting, error) {
	db, err := s.conn()
	if err != nil {
		return nil, fmt.Errorf("listing settings: %w", err)
	}

	rows, err := db.Query(`SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("listing settings: %w", err)
	}
	defer rows.Close()

	var settings []models.Setting
	for rows.Next() {
		var (
			setting models.Setting
			value   sql.NullString
		)
		if err := rows.Scan(&setting.Key, &value); err != nil {
			return nil, fmt.Errorf("listing settings: %w", err)
		}
		setting.Value = value.String
		settings = append(settings, setting)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing settings: %w", err)
	}
	return settings, nil
}
