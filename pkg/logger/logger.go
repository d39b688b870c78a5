package logger

import (
    "sync"

    "go.uber.org/zap"
)

var (
    mu  sync.RWMutex
    log = zap.NewNop()
)

// Init 按环境初始化全局 logger（production 输出 JSON）
func Init(env string) error {
    var (
        l   *zap.Logger
        err error
    )
    if env == "production" {
        l, err = zap.NewProduction()
    } else {
        l, err = zap.NewDevelopment()
    }
    if err != nil {
        return err
    }
    mu.Lock()
    log = l
    mu.Unlock()
    return nil
}

// L 返回底层 *zap.Logger
func L() *zap.Logger {
    mu.RLock()
    defer mu.RUnlock()
    return log
}

func Debug(msg string, fields ...zap.Field) { L().Debug(msg, fields...) }
func Info(msg string, fields ...zap.Field)  { L().Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { L().Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { L().Error(msg, fields...) }

// Sync flushes buffered entries; 进程退出前调用
func Sync() { _ = L().Sync() }
