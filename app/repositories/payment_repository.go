package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/app/models/payment"
	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/pkg/database"

	"gorm.io/gorm"
)

// PaymentRepository 支付记录仓库
type PaymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository 创建仓库实例，db 为 nil 时使用全局连接
func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	if db == nil {
		db = database.DB
	}
	return &PaymentRepository{db: db}
}

// Create 首次保存，由数据库分配 ID
func (r *PaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

// AttachPreference 只写网关单号和支付链接
//
// 记录已经绑定其他网关单号时不修改，返回值表示是否命中记录
func (r *PaymentRepository) AttachPreference(ctx context.Context, id uint64, externalID, link string, updatedAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&payment.Payment{}).
		Where("id = ? AND (external_payment_id IS NULL OR external_payment_id = ?)", id, externalID).
		Updates(map[string]interface{}{
			"external_payment_id": externalID,
			"payment_link":        link,
			"updated_at":          updatedAt,
		})
	return result.RowsAffected > 0, result.Error
}

// UpdateStatus 只写状态和审计字段，不覆盖网关字段
func (r *PaymentRepository) UpdateStatus(ctx context.Context, id uint64, status payment.Status, actor string, updatedAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&payment.Payment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     string(status),
			"updated_by": actor,
			"updated_at": updatedAt,
		})
	return result.RowsAffected > 0, result.Error
}

// FindByID 根据主键查询，不存在时 found 为 false
func (r *PaymentRepository) FindByID(ctx context.Context, id uint64) (*payment.Payment, bool, error) {
	var p payment.Payment
	err := r.db.WithContext(ctx).First(&p, id).Error
	return found(&p, err)
}

// FindByExternalID 根据网关单号查询
func (r *PaymentRepository) FindByExternalID(ctx context.Context, externalID string) (*payment.Payment, bool, error) {
	var p payment.Payment
	err := r.db.WithContext(ctx).Where("external_payment_id = ?", externalID).First(&p).Error
	return found(&p, err)
}

// FindByReservationID 同一个预约可能有多条支付记录，按 ID 升序返回
func (r *PaymentRepository) FindByReservationID(ctx context.Context, reservationID uint64) ([]payment.Payment, error) {
	var payments []payment.Payment
	err := r.db.WithContext(ctx).
		Where("reservation_id = ?", reservationID).
		Order("id ASC").
		Find(&payments).Error
	return payments, err
}

// All 全部支付记录，按 ID 升序
func (r *PaymentRepository) All(ctx context.Context) ([]payment.Payment, error) {
	var payments []payment.Payment
	err := r.db.WithContext(ctx).Order("id ASC").Find(&payments).Error
	return payments, err
}

func found(p *payment.Payment, err error) (*payment.Payment, bool, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return p, true, nil
}
