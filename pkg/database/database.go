// Package database 数据库操作
package database

import (
	"database/sql"
	"time"

	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/pkg/logger"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DB 对象
var DB *gorm.DB
var SQLDB *sql.DB

// PoolConfig 连接池参数
type PoolConfig struct {
	MaxOpenConnections int
	MaxIdleConnections int
	MaxLifeSeconds     int
}

// Connect 连接数据库
func Connect(dbConfig gorm.Dialector, _logger gormlogger.Interface) error {
	var err error
	DB, err = gorm.Open(dbConfig, &gorm.Config{
		Logger: _logger,
	})
	if err != nil {
		logger.ErrorString("数据库", "连接", err.Error())
		return err
	}

	// 获取底层的 sqlDB
	SQLDB, err = DB.DB()
	if err != nil {
		logger.ErrorString("数据库", "获取底层SQL", err.Error())
		return err
	}
	return nil
}

// SetPool 设置连接池，零值参数保持驱动默认
func SetPool(pool PoolConfig) {
	if SQLDB == nil {
		return
	}
	if pool.MaxOpenConnections > 0 {
		SQLDB.SetMaxOpenConns(pool.MaxOpenConnections)
	}
	if pool.MaxIdleConnections > 0 {
		SQLDB.SetMaxIdleConns(pool.MaxIdleConnections)
	}
	if pool.MaxLifeSeconds > 0 {
		SQLDB.SetConnMaxLifetime(time.Duration(pool.MaxLifeSeconds) * time.Second)
	}
}

// AutoMigrate 自动迁移所有数据表
func AutoMigrate(tables []interface{}) error {
	return DB.AutoMigrate(tables...)
}

// Close 关闭底层连接
func Close() error {
	if SQLDB == nil {
		return nil
	}
	return SQLDB.Close()
}
