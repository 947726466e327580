package bootstrap

import (
	"errors"
	"fmt"

	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/pkg/config"
	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/pkg/database"
	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/pkg/database/migrations"
	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/pkg/logger"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// SetupDB 初始化数据库和 ORM，migrate 为 true 时同步数据表结构
func SetupDB(migrate bool) error {
	// 根据配置文件选择数据库类型
	var dbConfig gorm.Dialector
	switch config.Get("database.connection") {
	case "postgresql":
		dbConfig = setupPostgreSQL()
	case "sqlite":
		dbConfig = setupSQLite()
	default:
		return errors.New("unsupported database connection: " + config.Get("database.connection"))
	}

	// 连接数据库，并设置 GORM 的日志模式
	if err := database.Connect(dbConfig, logger.NewGormLogger()); err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	database.SetPool(database.PoolConfig{
		MaxOpenConnections: config.GetInt("database.postgresql.max_open_connections"),
		MaxIdleConnections: config.GetInt("database.postgresql.max_idle_connections"),
		MaxLifeSeconds:     config.GetInt("database.postgresql.max_life_seconds"),
	})

	if !migrate {
		return nil
	}

	if err := database.AutoMigrate(migrations.RegisterTables()); err != nil {
		logger.ErrorString("数据库", "自动迁移", "数据表结构迁移失败："+err.Error())
		return fmt.Errorf("auto migrate: %w", err)
	}
	logger.InfoString("数据库", "自动迁移", "数据表结构迁移成功")
	return nil
}

// setupPostgreSQL 配置 PostgreSQL 连接
func setupPostgreSQL() gorm.Dialector {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=%s",
		config.Get("database.postgresql.host"),
		config.Get("database.postgresql.port"),
		config.Get("database.postgresql.username"),
		config.Get("database.postgresql.password"),
		config.Get("database.postgresql.database"),
		config.Get("database.postgresql.timezone", "UTC"),
	)
	return postgres.New(postgres.Config{
		DSN: dsn,
	})
}

// setupSQLite 配置 SQLite 连接
func setupSQLite() gorm.Dialector {
	return sqlite.Open(config.Get("database.sqlite.database"))
}
