package db

import "time"

// Setting is one persisted preference row. Kind tells the settings layer how
// to decode Value.
type Setting struct {
	Group     string    `json:"group"`
	Name      string    `json:"name"`
	Kind      string    `json:"kind"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableInfo describes one schema object of a user database
type TableInfo struct {
	Name string `json:"name"`
	Type string `json:"type"` // "table" or "view"
}

// DBStats represents database statistics
type DBStats struct {
	TableCount  int64
	PageCount   int64
	PageSize    int64
	DBSizeBytes int64
}
