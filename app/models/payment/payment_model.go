// Package payment 存放支付记录 Model 相关逻辑
package payment

import (
	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/app/models"

	"github.com/shopspring/decimal"
)

// Payment 支付记录模型
//
// ExternalPaymentID 和 PaymentLink 在网关返回之前都为空，
// 只能通过 AttachPreference 同时写入
type Payment struct {
	models.BaseModel

	ReservationID     uint64          `gorm:"column:reservation_id;not null;index" json:"reservation_id"`
	ExternalPaymentID *string         `gorm:"column:external_payment_id;type:varchar(128);uniqueIndex" json:"external_payment_id"`
	Amount            decimal.Decimal `gorm:"column:amount;type:decimal(14,2);not null" json:"amount"`
	Status            Status          `gorm:"column:status;type:varchar(20);not null;index" json:"status"`
	PaymentLink       *string         `gorm:"column:payment_link;type:text" json:"payment_link"`

	models.CommonTimestampsField
	models.AuditField
}

// TableName 指定表名
func (Payment) TableName() string {
	return "payments"
}
