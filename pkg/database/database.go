package database

import (
	"ai_mentor_client/internal/config"
	"ai_mentor_client/internal/model"
	"fmt"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB 打开本地会话存储；只有 local_storage 一张表
func InitDB(cfg *config.StorageConfig, debug bool) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("storage driver %q is not a SQL driver", cfg.Driver)
	}

	level := logger.Warn
	if debug {
		level = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, err
	}

	log.Println("Session storage connection established")

	if err := db.AutoMigrate(&model.StorageEntry{}); err != nil {
		return nil, err
	}

	return db, nil
}
