package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// RunStatus is the overall outcome of one crawl run.
type RunStatus string

const (
	RunSuccess RunStatus = "SUCCESS"
	RunPartial RunStatus = "PARTIAL"
	RunFailed  RunStatus = "FAILED"
)

// JSONMap represents a jsonb column holding a string-to-string map,
// used for the per-source error details of a run.
type JSONMap map[string]string

// Scan implements the sql.Scanner interface
func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("cannot scan %T into JSONMap", value)
	}
}

// Value implements the driver.Valuer interface
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// CrawlerRun is the append-only audit record of one pipeline invocation.
// Rows are never mutated after creation.
type CrawlerRun struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	RunAt        time.Time `gorm:"not null;index" json:"run_at"`
	Status       RunStatus `gorm:"size:20;not null" json:"status"`
	ItemsFound   int       `gorm:"default:0" json:"items_found"`
	Duplicates   int       `gorm:"default:0" json:"duplicates"`
	Message      string    `gorm:"size:500" json:"message"`
	ErrorDetails JSONMap   `gorm:"type:jsonb" json:"error_details,omitempty"`
	DurationMS   int64     `gorm:"default:0" json:"duration_ms"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}
