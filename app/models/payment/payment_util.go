package payment

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Status 支付状态
type Status string

const (
	StatusPending  Status = "PENDING"  // 待支付
	StatusApproved Status = "APPROVED" // 已支付
	StatusRejected Status = "REJECTED" // 已拒绝
	StatusRefunded Status = "REFUNDED" // 已退款
)

// Statuses 合法的状态集合，顺序用于错误提示
var Statuses = []Status{StatusPending, StatusApproved, StatusRejected, StatusRefunded}

// ErrPreferenceConflict 记录上已经挂了另一个网关单号
var ErrPreferenceConflict = errors.New("payment already bound to a different gateway preference")

// ParseStatus 严格匹配状态字符串（区分大小写），不在集合内时 ok 为 false
func ParseStatus(token string) (Status, bool) {
	for _, s := range Statuses {
		if string(s) == token {
			return s, true
		}
	}
	return "", false
}

// StatusList 返回 "PENDING, APPROVED, REJECTED, REFUNDED"
func StatusList() string {
	names := make([]string, len(Statuses))
	for i, s := range Statuses {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

// New 创建一条待支付记录，ID 由存储层在首次保存时分配
func New(reservationID uint64, amount decimal.Decimal, actor string, now time.Time) *Payment {
	p := &Payment{
		ReservationID: reservationID,
		Amount:        amount,
		Status:        StatusPending,
	}
	p.CreatedAt = now
	p.UpdatedAt = now
	p.CreatedBy = actor
	p.UpdatedBy = actor
	return p
}

// UpdateStatus 覆盖状态，不校验状态流转
func (p *Payment) UpdateStatus(status Status, actor string, now time.Time) {
	p.Status = status
	p.UpdatedAt = now
	p.UpdatedBy = actor
}

// AttachPreference 同时写入网关单号和支付链接
//
// 对同一个单号重复调用不会改变记录，changed 为 false；
// 已经绑定了其他单号时返回 ErrPreferenceConflict
func (p *Payment) AttachPreference(externalID, link string) (changed bool, err error) {
	if p.ExternalPaymentID != nil {
		if *p.ExternalPaymentID != externalID {
			return false, ErrPreferenceConflict
		}
		if p.PaymentLink != nil && *p.PaymentLink == link {
			return false, nil
		}
	}
	p.ExternalPaymentID = &externalID
	p.PaymentLink = &link
	return true, nil
}

// HasPreference 是否已经拿到网关单号
func (p *Payment) HasPreference() bool {
	return p.ExternalPaymentID != nil && p.PaymentLink != nil
}

// IsApproved 检查支付是否成功
func (p *Payment) IsApproved() bool {
	return p.Status == StatusApproved
}

// IsPending 检查是否待支付
func (p *Payment) IsPending() bool {
	return p.Status == StatusPending
}

// View 对外输出的支付信息，不包含 created_by / updated_by
type View struct {
	ID                uint64          `json:"id"`
	ReservationID     uint64          `json:"reservation_id"`
	ExternalPaymentID *string         `json:"external_payment_id"`
	Amount            decimal.Decimal `json:"amount"`
	Status            Status          `json:"status"`
	PaymentLink       *string         `json:"payment_link"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// ToView 转换为对外输出结构
func (p *Payment) ToView() View {
	return View{
		ID:                p.ID,
		ReservationID:     p.ReservationID,
		ExternalPaymentID: p.ExternalPaymentID,
		Amount:            p.Amount,
		Status:            p.Status,
		PaymentLink:       p.PaymentLink,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

// ToViews 批量转换
func ToViews(payments []Payment) []View {
	views := make([]View, 0, len(payments))
	for i := range payments {
		views = append(views, payments[i].ToView())
	}
	return views
}
