package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"expense-share-go/internal/models"
)

// KVBackend stores state entries in the kv_entries table.
type KVBackend struct {
	db *gorm.DB
}

func NewKVBackend(db *gorm.DB) *KVBackend {
	return &KVBackend{db: db}
}

func (b *KVBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var entry models.KVEntry
	err := b.db.WithContext(ctx).Where(&models.KVEntry{Key: key}).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}
	return []byte(entry.Value), true, nil
}

// Put upserts all entries in one transaction.
func (b *KVBackend) Put(ctx context.Context, entries map[string][]byte) error {
	now := time.Now().UTC()
	rows := make([]models.KVEntry, 0, len(entries))
	for k, v := range entries {
		rows = append(rows, models.KVEntry{Key: k, Value: models.JSONValue(v), UpdatedAt: now})
	}
	return b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).Create(&rows).Error
	})
}
