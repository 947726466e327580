package bootstrap

import (
	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/pkg/config"
	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/pkg/logger"
)

// SetupLogger 按 config/log.go 初始化日志，需在 config.InitConfig 之后调用
func SetupLogger() {
	logger.InitLogger(logger.Options{
		Filename:  config.GetString("log.filename"),
		MaxSize:   config.GetInt("log.max_size"),
		MaxBackup: config.GetInt("log.max_backup"),
		MaxAge:    config.GetInt("log.max_age"),
		Compress:  config.GetBool("log.compress"),
		Type:      config.GetString("log.type"),
		Level:     config.GetString("log.level"),
	})
}
