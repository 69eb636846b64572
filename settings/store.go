package settings

import (
	"errors"
	"fmt"
	"sort"

	"dbbrowser/db"
)

// Store is the persistent key-value backend behind the Service
type Store interface {
	// Load returns found=false when nothing is stored under key
	Load(key Key) (v Value, found bool, err error)
	Save(key Key, v Value) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(key Key) error
	// Keys lists every stored key ordered by group, then name
	Keys() ([]Key, error)
}

func sortKeys(keys []Key) {
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Group != keys[j].Group {
			return keys[i].Group < keys[j].Group
		}
		return keys[i].Name < keys[j].Name
	})
}

// MemoryStore keeps values in a map. Used for tests and dry runs.
type MemoryStore struct {
	values map[Key]Value
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[Key]Value)}
}

func (m *MemoryStore) Load(key Key) (Value, bool, error) {
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryStore) Save(key Key, v Value) error {
	if !v.IsValid() {
		return fmt.Errorf("cannot store an invalid value under %s", key)
	}
	m.values[key] = v
	return nil
}

func (m *MemoryStore) Delete(key Key) error {
	delete(m.values, key)
	return nil
}

func (m *MemoryStore) Keys() ([]Key, error) {
	keys := make([]Key, 0, len(m.values))
	for k := range m.values {
		keys = append(keys, k)
	}
	sortKeys(keys)
	return keys, nil
}

// SQLiteStore persists settings in the settings table of a db.DB
type SQLiteStore struct {
	db *db.DB
}

// NewSQLiteStore wraps an open settings database
func NewSQLiteStore(database *db.DB) *SQLiteStore {
	return &SQLiteStore{db: database}
}

func (s *SQLiteStore) Load(key Key) (Value, bool, error) {
	row, err := s.db.GetSetting(key.Group, key.Name)
	if errors.Is(err, db.ErrSettingNotFound) {
		return Invalid(), false, nil
	}
	if err != nil {
		return Invalid(), false, err
	}

	v, err := decode(row.Kind, row.Value)
	if err != nil {
		return Invalid(), false, fmt.Errorf("setting %s: %w", key, err)
	}
	return v, true, nil
}

func (s *SQLiteStore) Save(key Key, v Value) error {
	kind, payload, err := encode(v)
	if err != nil {
		return fmt.Errorf("setting %s: %w", key, err)
	}
	return s.db.SetSetting(key.Group, key.Name, kind, payload)
}

func (s *SQLiteStore) Delete(key Key) error {
	return s.db.DeleteSetting(key.Group, key.Name)
}

func (s *SQLiteStore) Keys() ([]Key, error) {
	rows, err := s.db.ListSettings()
	if err != nil {
		return nil, err
	}
	keys := make([]Key, 0, len(rows))
	for _, row := range rows {
		keys = append(keys, NewKey(row.Group, row.Name))
	}
	return keys, nil
}
