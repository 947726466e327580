package config

import "github.com/SistemaDeReservasTurnos/reservas-pagos-service/pkg/config"

func init() {
	config.Add("reservation", func() map[string]interface{} {
		return map[string]interface{}{
			// 预约服务（reservas-agenda-service）地址
			"base_url": config.Env("RESERVATION_SERVICE_URL", "http://localhost:8082"),
			// 服务间调用的 Bearer Token
			"token":   config.Env("RESERVATION_SERVICE_TOKEN", ""),
			"timeout": config.Env("RESERVATION_SERVICE_TIMEOUT", 5),
		}
	})
}
