package repository

import (
	"ai_mentor_client/internal/model"
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrKeyNotFound 槽位为空
var ErrKeyNotFound = errors.New("storage key not found")

// TokenStore 浏览器 localStorage 的替代：按固定键读写一个字符串
type TokenStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

type LocalStorageRepository struct {
	DB *gorm.DB
}

func NewLocalStorageRepository(db *gorm.DB) *LocalStorageRepository {
	return &LocalStorageRepository{DB: db}
}

func (r *LocalStorageRepository) Get(ctx context.Context, key string) (string, error) {
	var e model.StorageEntry
	err := r.DB.WithContext(ctx).Where("`key` = ?", key).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrKeyNotFound
	}
	if err != nil {
		return "", err
	}
	return e.Value, nil
}

func (r *LocalStorageRepository) Set(ctx context.Context, key, value string) error {
	e := model.StorageEntry{Key: key, Value: value}
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&e).Error
}

func (r *LocalStorageRepository) Delete(ctx context.Context, key string) error {
	return r.DB.WithContext(ctx).Where("`key` = ?", key).Delete(&model.StorageEntry{}).Error
}
