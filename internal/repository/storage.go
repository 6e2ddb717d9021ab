package repository

import (
	"context"
	"errors"
	"time"

	"minecraft-store/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrEntryNotFound = errors.New("storage entry not found")

// StorageRepository is the per-session local storage: opaque string values under fixed keys.
type StorageRepository interface {
	Get(ctx context.Context, sessionID, key string) (string, error)
	Set(ctx context.Context, sessionID, key, value string) error
	Remove(ctx context.Context, sessionID, key string) error
}

type storageRepoImpl struct {
	db *gorm.DB
}

func NewStorageRepository(db *gorm.DB) StorageRepository {
	return &storageRepoImpl{
		db: db,
	}
}

func (r *storageRepoImpl) Get(ctx context.Context, sessionID, key string) (string, error) {
	var entry model.StorageEntry
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND `key` = ?", sessionID, key).
		First(&entry).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrEntryNotFound
		}
		return "", err
	}

	return entry.Value, nil
}

func (r *storageRepoImpl) Set(ctx context.Context, sessionID, key, value string) error {
	entry := &model.StorageEntry{
		SessionID: sessionID,
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now(),
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}, {Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(entry).Error
}

func (r *storageRepoImpl) Remove(ctx context.Context, sessionID, key string) error {
	return r.db.WithContext(ctx).
		Where("session_id = ? AND `key` = ?", sessionID, key).
		Delete(&model.StorageEntry{}).Error
}
