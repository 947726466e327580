package bootstrap

import (
	"fmt"

	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/pkg/config"
	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/pkg/logger"
	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/pkg/redis"
)

// SetupRedis 初始化 Redis，未配置或连接失败时降级运行
func SetupRedis() bool {
	if config.GetString("redis.host") == "" {
		logger.WarnString("Redis", "Setup", "未配置 REDIS_HOST，重试队列使用内存实现，Webhook 投递记录关闭")
		return false
	}

	err := redis.InitRedis(
		fmt.Sprintf("%v:%v", config.GetString("redis.host"), config.GetString("redis.port")),
		config.GetString("redis.username"),
		config.GetString("redis.password"),
		config.GetInt("redis.database"),
		config.GetInt("redis.queue_database"),
	)
	if err != nil {
		logger.ErrorString("Redis", "Setup", err.Error())
		return false
	}
	return true
}
