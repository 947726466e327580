// Package config 站点配置信息
package config

import "github.com/SistemaDeReservasTurnos/reservas-pagos-service/pkg/config"

func init() {
	config.Add("app", func() map[string]interface{} {
		return map[string]interface{}{

			// 应用名称
			"name": config.Env("APP_NAME", "reservas-pagos-service"),

			// 当前环境，用以区分多环境，一般为 local, stage, production, testing
			"env": config.Env("APP_ENV", "production"),

			// 是否进入调试模式
			"debug": config.Env("APP_DEBUG", false),

			// 应用服务端口
			"port": config.Env("APP_PORT", "8083"),

			// 设置时区，日志记录和支付时间戳会使用到
			"timezone": config.Env("TIMEZONE", "America/Bogota"),

			// 全局限流格式为每小时请求数
			"api_rate_limit": config.Env("API_RATE_LIMIT", "3000-H"),

			// Webhook 限流，网关重试时可能短时间内多次回调
			"webhook_rate_limit": config.Env("WEBHOOK_RATE_LIMIT", "600-M"),
		}
	})
}

// Initialize 触发本目录下各配置文件的 init 注册
func Initialize() {}
