package database

import (
    "fmt"

    "gorm.io/driver/postgres"
    "gorm.io/driver/sqlite"
    "gorm.io/gorm"
    gormlogger "gorm.io/gorm/logger"

    "github.com/d60-Lab/ticket-queue/config"
    "github.com/d60-Lab/ticket-queue/internal/model"
)

// InitDB 按配置打开数据库并迁移核心表
func InitDB(cfg *config.Config) (*gorm.DB, error) {
    gormCfg := &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Warn)}

    var (
        db  *gorm.DB
        err error
    )
    switch cfg.Database.Driver {
    case "postgres":
        db, err = gorm.Open(postgres.Open(cfg.Database.DSN), gormCfg)
    case "sqlite":
        db, err = gorm.Open(sqlite.Open(cfg.Database.DSN), gormCfg)
    default:
        return nil, fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
    }
    if err != nil {
        return nil, fmt.Errorf("open database: %w", err)
    }

    if err := db.AutoMigrate(&model.Event{}, &model.QueueEntry{}, &model.Ticket{}); err != nil {
        return nil, fmt.Errorf("migrate: %w", err)
    }
    return db, nil
}
