package config

import (
	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/pkg/config"
)

func init() {
	config.Add("redis", func() map[string]interface{} {
		return map[string]interface{}{
			// 未配置 host 时不启用 Redis，重试队列和 Webhook 投递记录随之关闭
			"host":     config.Env("REDIS_HOST", ""),
			"port":     config.Env("REDIS_PORT", "6379"),
			"username": config.Env("REDIS_USERNAME", ""),
			"password": config.Env("REDIS_PASSWORD", ""),

			// 业务类存储使用 1 号库（包括限流、Webhook 投递记录）
			"database": config.Env("REDIS_MAIN_DB", 1),

			// 队列专用 2 号库
			"queue_database": config.Env("REDIS_QUEUE_DB", 2),
		}
	})
}
