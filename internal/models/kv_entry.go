package models

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// KVEntry is one persisted key of the application state.
type KVEntry struct {
	Key       string    `gorm:"primaryKey;size:64"`
	Value     JSONValue `gorm:"type:text"`
	UpdatedAt time.Time
}

func (KVEntry) TableName() string { return "kv_entries" }

// JSONValue holds an already-encoded JSON document.
type JSONValue []byte

func (v JSONValue) Value() (driver.Value, error) {
	if len(v) == 0 {
		return "null", nil
	}
	return string(v), nil
}

func (v *JSONValue) Scan(value interface{}) error {
	if value == nil {
		*v = nil
		return nil
	}
	switch src := value.(type) {
	case []byte:
		*v = append((*v)[:0], src...)
	case string:
		*v = JSONValue(src)
	default:
		return fmt.Errorf("unsupported type for JSONValue: %T", value)
	}
	return nil
}
