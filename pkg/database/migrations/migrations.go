package migrations

import (
	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/app/models/payment"
)

// RegisterTables 返回需要迁移的表的模型列表
func RegisterTables() []interface{} {
	return []interface{}{
		&payment.Payment{},
	}
}
