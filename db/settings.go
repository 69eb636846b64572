package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrSettingNotFound is returned when no row exists for a group/name pair
var ErrSettingNotFound = errors.New("setting not found")

// GetSetting retrieves a single setting
func (db *DB) GetSetting(group, name string) (*Setting, error) {
	var s Setting
	err := db.conn.QueryRow(
		"SELECT grp, name, kind, value, updated_at FROM settings WHERE grp = ? AND name = ?",
		group, name,
	).Scan(&s.Group, &s.Name, &s.Kind, &s.Value, &s.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, ErrSettingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get setting %s/%s: %w", group, name, err)
	}

	return &s, nil
}

// SetSetting inserts or replaces a setting
func (db *DB) SetSetting(group, name, kind, value string) error {
	_, err := db.conn.Exec(`
		INSERT INTO settings (grp, name, kind, value, updated_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(grp, name) DO UPDATE SET
			kind = excluded.kind,
			value = excluded.value,
			updated_at = excluded.updated_at
	`, group, name, kind, value, time.Now())
	if err != nil {
		return fmt.Errorf("failed to set setting %s/%s: %w", group, name, err)
	}
	return nil
}

// DeleteSetting removes a setting. Deleting a missing row is not an error.
func (db *DB) DeleteSetting(group, name string) error {
	_, err := db.conn.Exec("DELETE FROM settings WHERE grp = ? AND name = ?", group, name)
	if err != nil {
		return fmt.Errorf("failed to delete setting %s/%s: %w", group, name, err)
	}
	return nil
}

// ListSettings returns all stored settings ordered by group and name
func (db *DB) ListSettings() ([]*Setting, error) {
	rows, err := db.conn.Query(
		"SELECT grp, name, kind, value, updated_at FROM settings ORDER BY grp, name",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	defer rows.Close()

	var settings []*Setting
	for rows.Next() {
		var s Setting
		if err := rows.Scan(&s.Group, &s.Name, &s.Kind, &s.Value, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		settings = append(settings, &s)
	}

	return settings, rows.Err()
}

// CountSettings returns the number of stored settings
func (db *DB) CountSettings() (int64, error) {
	var count int64
	err := db.conn.QueryRow("SELECT COUNT(*) FROM settings").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count settings: %w", err)
	}
	return count, nil
}
