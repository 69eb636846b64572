package db

import (
	"database/sql"
	"fmt"
	"os"
	"strings"
)

// Text encodings SQLite accepts in PRAGMA encoding
var encodings = []string{"UTF-8", "UTF-16", "UTF-16le", "UTF-16be"}

// Encodings returns the database encodings a new database can be created with
func Encodings() []string {
	out := make([]string, len(encodings))
	copy(out, encodings)
	return out
}

// CanonicalEncoding maps a case-insensitive encoding name to the form SQLite
// documents. ok is false for unknown names.
func CanonicalEncoding(name string) (string, bool) {
	for _, enc := range encodings {
		if strings.EqualFold(enc, name) {
			return enc, true
		}
	}
	return "", false
}

// UserDBOptions carries the preferences applied when a database is opened
type UserDBOptions struct {
	// Encoding only takes effect when the file is created
	Encoding    string
	ForeignKeys bool
}

// UserDB is a database the user browses
type UserDB struct {
	conn *sql.DB
	path string
}

// OpenUserDB opens an existing database file
func OpenUserDB(path string, opts UserDBOptions) (*UserDB, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return openUserDB(path, opts, false)
}

// CreateUserDB creates a new database file using opts.Encoding. An existing
// zero-length file counts as new.
func CreateUserDB(path string, opts UserDBOptions) (*UserDB, error) {
	if info, err := os.Stat(path); err == nil && info.Size() > 0 {
		return nil, fmt.Errorf("database %s already exists", path)
	}
	return openUserDB(path, opts, true)
}

func openUserDB(path string, opts UserDBOptions, create bool) (*UserDB, error) {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// PRAGMAs are per connection
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	u := &UserDB{conn: conn, path: path}

	if create {
		enc, ok := CanonicalEncoding(opts.Encoding)
		if !ok {
			conn.Close()
			return nil, fmt.Errorf("unsupported database encoding %q", opts.Encoding)
		}
		if _, err := conn.Exec(fmt.Sprintf("PRAGMA encoding = '%s'", enc)); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to set encoding: %w", err)
		}
		// Writing the schema cookie materialises the file with the chosen encoding
		if _, err := conn.Exec("PRAGMA user_version = 0"); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to initialise database: %w", err)
		}
	}

	fk := "OFF"
	if opts.ForeignKeys {
		fk = "ON"
	}
	if _, err := conn.Exec("PRAGMA foreign_keys = " + fk); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to set foreign keys: %w", err)
	}

	// Fail early on files that are not databases
	if _, err := u.Tables(); err != nil {
		conn.Close()
		return nil, err
	}

	return u, nil
}

// Close closes the database connection
func (u *UserDB) Close() error {
	return u.conn.Close()
}

// Path returns the database file path
func (u *UserDB) Path() string {
	return u.path
}

// Tables lists the tables and views of the database
func (u *UserDB) Tables() ([]TableInfo, error) {
	rows, err := u.conn.Query(
		"SELECT name, type FROM sqlite_master WHERE type IN ('table', 'view') AND name NOT LIKE 'sqlite_%' ORDER BY name",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var tables []TableInfo
	for rows.Next() {
		var t TableInfo
		if err := rows.Scan(&t.Name, &t.Type); err != nil {
			return nil, fmt.Errorf("failed to scan table: %w", err)
		}
		tables = append(tables, t)
	}

	return tables, rows.Err()
}

// Encoding returns the text encoding of the database
func (u *UserDB) Encoding() (string, error) {
	var enc string
	if err := u.conn.QueryRow("PRAGMA encoding").Scan(&enc); err != nil {
		return "", fmt.Errorf("failed to get encoding: %w", err)
	}
	return enc, nil
}

// ForeignKeys reports whether foreign key enforcement is on
func (u *UserDB) ForeignKeys() (bool, error) {
	var on int
	if err := u.conn.QueryRow("PRAGMA foreign_keys").Scan(&on); err != nil {
		return false, fmt.Errorf("failed to get foreign keys: %w", err)
	}
	return on == 1, nil
}

// GetStats returns database statistics
func (u *UserDB) GetStats() (*DBStats, error) {
	stats := &DBStats{}

	err := u.conn.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%'",
	).Scan(&stats.TableCount)
	if err != nil {
		return nil, fmt.Errorf("failed to count tables: %w", err)
	}

	if err := u.conn.QueryRow("PRAGMA page_count").Scan(&stats.PageCount); err != nil {
		return nil, fmt.Errorf("failed to get page count: %w", err)
	}

	if err := u.conn.QueryRow("PRAGMA page_size").Scan(&stats.PageSize); err != nil {
		return nil, fmt.Errorf("failed to get page size: %w", err)
	}

	stats.DBSizeBytes = stats.PageCount * stats.PageSize

	return stats, nil
}

// Vacuum optimizes the database file
func (u *UserDB) Vacuum() error {
	if _, err := u.conn.Exec("VACUUM"); err != nil {
		return fmt.Errorf("failed to vacuum database: %w", err)
	}
	return nil
}
