package config

import "github.com/SistemaDeReservasTurnos/reservas-pagos-service/pkg/config"

func init() {
	config.Add("queue", func() map[string]interface{} {
		return map[string]interface{}{
			"prefix":       config.Env("QUEUE_PREFIX", "reservas-pagos:queue"),
			"worker_count": config.Env("QUEUE_WORKER_COUNT", 2),
			"retry_times":  config.Env("QUEUE_RETRY_TIMES", 5),
			"retry_delay":  config.Env("QUEUE_RETRY_DELAY", 2),
			"rate_limit":   config.Env("QUEUE_RATE_LIMIT", 50),
		}
	})
}
