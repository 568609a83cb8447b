package model

import (
	"time"
)

// StorageEntry 本地键值槽位，对应浏览器 localStorage 中的一项
type StorageEntry struct {
	Key       string    `gorm:"primaryKey;size:64" json:"key"`
	Value     string    `gorm:"type:text" json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (StorageEntry) TableName() string {
	return "local_storage"
}
