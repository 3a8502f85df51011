package schema

import (
	"time"
)

// Counter represents the counters table - named monotonic counters owned by
// the ledger (currently only the token id counter). Persisted so that burned
// ids are never handed out again after a restart.
type Counter struct {
	// Name identifies the counter
	Name string `gorm:"column:name;primaryKey;type:text"`
	// Value is the next value the counter will hand out
	Value uint64 `gorm:"column:value;not null"`
	// UpdatedAt is the timestamp of the last increment
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now()"`
}

// TableName specifies the table name for the Counter model
func (Counter) TableName() string {
	return "counters"
}
