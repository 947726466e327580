package config

import "github.com/SistemaDeReservasTurnos/reservas-pagos-service/pkg/config"

func init() {
	config.Add("tracing", func() map[string]interface{} {
		return map[string]interface{}{
			// OTLP/HTTP 接收地址，例如 localhost:4318，留空则不上报链路
			"endpoint": config.Env("OTEL_EXPORTER_ENDPOINT", ""),
		}
	})
}
