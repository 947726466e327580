package config

import "github.com/SistemaDeReservasTurnos/reservas-pagos-service/pkg/config"

func init() {
	config.Add("jwt", func() map[string]interface{} {
		return map[string]interface{}{
			// HS256 签名密钥，用于校验管理端接口的 Token
			"secret": config.Env("JWT_SECRET", ""),
		}
	})
}
