// Package services 支付生命周期编排
package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/app/models/payment"
	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/pkg/logger"
	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/pkg/payment/types"
	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/pkg/queue"
	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/pkg/reservation"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// SystemActor 服务自身写入时的操作人
	SystemActor = "RESERVAS_SERVICE"
	// WebhookActor 网关回调写入时的操作人
	WebhookActor = "MERCADOPAGO_WEBHOOK"
)

// PaymentStore 支付记录存储
type PaymentStore interface {
	Create(ctx context.Context, p *payment.Payment) error
	// AttachPreference 只写网关字段，已绑定其他网关单号时返回 false
	AttachPreference(ctx context.Context, id uint64, externalID, link string, updatedAt time.Time) (bool, error)
	// UpdateStatus 只写状态和审计字段，记录不存在时返回 false
	UpdateStatus(ctx context.Context, id uint64, status payment.Status, actor string, updatedAt time.Time) (bool, error)
	FindByID(ctx context.Context, id uint64) (*payment.Payment, bool, error)
	All(ctx context.Context) ([]payment.Payment, error)
}

// ReservationLookup 预约查询
type ReservationLookup interface {
	FindReservationByID(ctx context.Context, id uint64) (*reservation.Reservation, bool, error)
}

// VoucherRenderer 凭证生成
type VoucherRenderer interface {
	Render(p *payment.Payment) ([]byte, error)
}

// EnrichmentScheduler 第二次写库失败时的补写调度
type EnrichmentScheduler interface {
	ScheduleEnrichment(ctx context.Context, task queue.EnrichmentTask) error
}

// DeliveryLog 回调投递记录
type DeliveryLog interface {
	RecordDelivery(ctx context.Context, paymentID uint64, status string) (int64, error)
}

// Config 编排参数，由 bootstrap 从配置中组装
type Config struct {
	BackURLs types.BackURLs
}

// CreatePaymentInput 创建支付的参数，Amount 和 PayerEmail 可选
type CreatePaymentInput struct {
	ReservationID uint64
	Amount        *decimal.Decimal
	PayerEmail    string
}

// PaymentService 支付编排服务，无内部状态，可并发使用
type PaymentService struct {
	store        PaymentStore
	reservations ReservationLookup
	gateway      types.Gateway
	renderer     VoucherRenderer
	scheduler    EnrichmentScheduler
	deliveries   DeliveryLog
	cfg          Config
	now          func() time.Time
	tracer       trace.Tracer
}

// Option 可选依赖
type Option func(*PaymentService)

// WithScheduler 设置补写调度
func WithScheduler(s EnrichmentScheduler) Option {
	return func(ps *PaymentService) { ps.scheduler = s }
}

// WithDeliveryLog 设置回调投递记录
func WithDeliveryLog(d DeliveryLog) Option {
	return func(ps *PaymentService) { ps.deliveries = d }
}

// WithClock 替换时钟
func WithClock(now func() time.Time) Option {
	return func(ps *PaymentService) { ps.now = now }
}

// NewPaymentService 创建支付编排服务
func NewPaymentService(store PaymentStore, reservations ReservationLookup, gateway types.Gateway,
	renderer VoucherRenderer, cfg Config, opts ...Option) *PaymentService {
	s := &PaymentService{
		store:        store,
		reservations: reservations,
		gateway:      gateway,
		renderer:     renderer,
		cfg:          cfg,
		now:          time.Now,
		tracer:       otel.Tracer("reservas-pagos-service/services"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

// CreatePayment 为预约创建支付
//
// 先写入 PENDING 记录拿到本地 ID，再调用网关，最后写回网关单号和支付链接
func (s *PaymentService) CreatePayment(ctx context.Context, in CreatePaymentInput) (*payment.Payment, error) {
	ctx, span := s.tracer.Start(ctx, "PaymentService.CreatePayment",
		trace.WithAttributes(attribute.Int64("reservation.id", int64(in.ReservationID))))
	defer span.End()

	// 1. 查询预约金额
	res, found, err := s.reservations.FindReservationByID(ctx, in.ReservationID)
	if err != nil {
		return nil, fail(span, fmt.Errorf("lookup reservation %d: %w", in.ReservationID, err))
	}
	if !found {
		return nil, fail(span, fmt.Errorf("%w with ID: %d", ErrReservationNotFound, in.ReservationID))
	}

	// 2. 写库前检查金额
	// 与 decimal(14,2) 列保持一致，返回值和之后读到的记录相同
	amount := res.Amount.Round(2)
	if !amount.IsPositive() {
		return nil, fail(span, fmt.Errorf("%w: %s for reservation %d", ErrInvalidAmount, amount.String(), in.ReservationID))
	}
	if in.Amount != nil && !in.Amount.Equal(amount) {
		return nil, fail(span, fmt.Errorf("%w: got %s, reservation %d costs %s",
			ErrAmountMismatch, in.Amount.String(), in.ReservationID, amount.String()))
	}

	// 3. 第一次写库
	p := payment.New(in.ReservationID, amount, SystemActor, s.now())
	if err := s.store.Create(ctx, p); err != nil {
		return nil, fail(span, fmt.Errorf("create payment for reservation %d: %w", in.ReservationID, err))
	}
	span.SetAttributes(attribute.Int64("payment.id", int64(p.ID)))

	// 4. 调用网关
	req := &types.PreferenceRequest{
		Items: []types.Item{{
			Title:     fmt.Sprintf("Service Reservation No. %d", in.ReservationID),
			Quantity:  1,
			UnitPrice: amount,
		}},
		BackURLs:          s.cfg.BackURLs,
		ExternalReference: strconv.FormatUint(p.ID, 10),
		PayerEmail:        in.PayerEmail,
	}
	pref, ok := s.gateway.CreatePreference(ctx, req)
	if !ok {
		logger.WarnString("Payment", "Create", fmt.Sprintf("支付 %d 网关无结果，记录保持 PENDING", p.ID))
		return nil, fail(span, fmt.Errorf("%w %s", ErrExternalGateway, s.gateway.Name()))
	}

	// 5. 第二次写库
	if _, err := p.AttachPreference(pref.GatewayID, pref.PaymentLink); err != nil {
		return nil, fail(span, fmt.Errorf("attach preference to payment %d: %w", p.ID, err))
	}
	p.UpdatedAt = s.now()
	attached, err := s.store.AttachPreference(ctx, p.ID, pref.GatewayID, pref.PaymentLink, p.UpdatedAt)
	if err == nil && !attached {
		err = fmt.Errorf("%w: payment %d", payment.ErrPreferenceConflict, p.ID)
	}
	if err != nil {
		logger.ErrorString("Payment", "Create", fmt.Sprintf("支付 %d 写回网关结果失败 gateway_id:%s link:%s 错误:%v",
			p.ID, pref.GatewayID, pref.PaymentLink, err))
		s.scheduleEnrichment(ctx, p.ID, pref)
		return nil, fail(span, fmt.Errorf("save gateway preference for payment %d: %w", p.ID, err))
	}

	logger.InfoString("Payment", "Create", fmt.Sprintf("支付 %d 创建成功 reservation:%d gateway_id:%s", p.ID, p.ReservationID, pref.GatewayID))
	return p, nil
}

func (s *PaymentService) scheduleEnrichment(ctx context.Context, paymentID uint64, pref *types.Preference) {
	if s.scheduler == nil {
		return
	}
	// 请求上下文可能已经取消，调度不受其影响
	ctx = context.WithoutCancel(ctx)
	err := s.scheduler.ScheduleEnrichment(ctx, queue.EnrichmentTask{
		PaymentID:   paymentID,
		GatewayID:   pref.GatewayID,
		PaymentLink: pref.PaymentLink,
	})
	if err != nil {
		logger.ErrorString("Payment", "ScheduleEnrichment", fmt.Sprintf("支付 %d 补写任务入队失败: %v", paymentID, err))
	}
}

// RetryEnrichment 补写网关结果，同一个网关单号重复补写不会修改记录
func (s *PaymentService) RetryEnrichment(ctx context.Context, task queue.EnrichmentTask) error {
	ctx, span := s.tracer.Start(ctx, "PaymentService.RetryEnrichment",
		trace.WithAttributes(attribute.Int64("payment.id", int64(task.PaymentID))))
	defer span.End()

	p, found, err := s.store.FindByID(ctx, task.PaymentID)
	if err != nil {
		return fail(span, fmt.Errorf("load payment %d: %w", task.PaymentID, err))
	}
	if !found {
		return fail(span, fmt.Errorf("%w with ID: %d", ErrPaymentNotFound, task.PaymentID))
	}

	changed, err := p.AttachPreference(task.GatewayID, task.PaymentLink)
	if err != nil {
		return fail(span, fmt.Errorf("payment %d: %w", task.PaymentID, err))
	}
	if !changed {
		return nil
	}

	// 只写网关字段，期间到达的回调状态不会被覆盖
	attached, err := s.store.AttachPreference(ctx, task.PaymentID, task.GatewayID, task.PaymentLink, s.now())
	if err != nil {
		return fail(span, fmt.Errorf("save gateway preference for payment %d: %w", task.PaymentID, err))
	}
	if !attached {
		return fail(span, fmt.Errorf("payment %d: %w", task.PaymentID, payment.ErrPreferenceConflict))
	}
	return nil
}

// GetPaymentByID 查询支付
func (s *PaymentService) GetPaymentByID(ctx context.Context, id uint64) (*payment.Payment, bool, error) {
	ctx, span := s.tracer.Start(ctx, "PaymentService.GetPaymentByID",
		trace.WithAttributes(attribute.Int64("payment.id", int64(id))))
	defer span.End()

	p, found, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, false, fail(span, fmt.Errorf("load payment %d: %w", id, err))
	}
	return p, found, nil
}

// FindAllPayments 全部支付，按 ID 升序
func (s *PaymentService) FindAllPayments(ctx context.Context) ([]payment.Payment, error) {
	ctx, span := s.tracer.Start(ctx, "PaymentService.FindAllPayments")
	defer span.End()

	payments, err := s.store.All(ctx)
	if err != nil {
		return nil, fail(span, fmt.Errorf("list payments: %w", err))
	}
	return payments, nil
}

// UpdatePaymentStatus 覆盖支付状态，不校验状态流转
func (s *PaymentService) UpdatePaymentStatus(ctx context.Context, id uint64, token, actor string) (*payment.Payment, error) {
	ctx, span := s.tracer.Start(ctx, "PaymentService.UpdatePaymentStatus",
		trace.WithAttributes(attribute.Int64("payment.id", int64(id)), attribute.String("payment.status", token)))
	defer span.End()

	p, status, err := s.resolveStatus(ctx, id, token)
	if err != nil {
		return nil, fail(span, err)
	}
	updated, err := s.applyStatus(ctx, p, status, actor)
	if err != nil {
		return nil, fail(span, err)
	}
	return updated, nil
}

// HandleWebhook 处理网关回调，重复投递只记录告警，仍然照常写入
//
// 只有支付存在且状态合法时才记录投递
func (s *PaymentService) HandleWebhook(ctx context.Context, id uint64, token string) error {
	ctx, span := s.tracer.Start(ctx, "PaymentService.HandleWebhook",
		trace.WithAttributes(attribute.Int64("payment.id", int64(id)), attribute.String("payment.status", token)))
	defer span.End()

	p, status, err := s.resolveStatus(ctx, id, token)
	if err != nil {
		return fail(span, err)
	}

	if s.deliveries != nil {
		count, err := s.deliveries.RecordDelivery(ctx, id, string(status))
		switch {
		case err != nil:
			logger.WarnString("Payment", "Webhook", fmt.Sprintf("记录回调投递失败 payment:%d 错误:%v", id, err))
		case count > 1:
			span.SetAttributes(attribute.Int64("webhook.deliveries", count))
			logger.WarnString("Payment", "Webhook", fmt.Sprintf("重复回调 payment:%d status:%s 第 %d 次", id, status, count))
		}
	}

	if _, err := s.applyStatus(ctx, p, status, WebhookActor); err != nil {
		return fail(span, err)
	}
	return nil
}

// resolveStatus 查询支付并解析状态，任何一步失败都不写库
func (s *PaymentService) resolveStatus(ctx context.Context, id uint64, token string) (*payment.Payment, payment.Status, error) {
	p, found, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, "", fmt.Errorf("load payment %d: %w", id, err)
	}
	if !found {
		return nil, "", fmt.Errorf("%w with ID: %d", ErrPaymentNotFound, id)
	}

	status, ok := payment.ParseStatus(token)
	if !ok {
		return nil, "", fmt.Errorf("%w provided: %s. Valid statuses are: %s.", ErrInvalidStatus, token, payment.StatusList())
	}
	return p, status, nil
}

// applyStatus 只写状态列，再读出最新记录，补写任务同时写入的网关字段不会丢失
func (s *PaymentService) applyStatus(ctx context.Context, p *payment.Payment, status payment.Status, actor string) (*payment.Payment, error) {
	previous := p.Status
	p.UpdateStatus(status, actor, s.now())

	updated, err := s.store.UpdateStatus(ctx, p.ID, p.Status, p.UpdatedBy, p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("save payment %d: %w", p.ID, err)
	}
	if !updated {
		return nil, fmt.Errorf("%w with ID: %d", ErrPaymentNotFound, p.ID)
	}

	logger.InfoString("Payment", "UpdateStatus", fmt.Sprintf("支付 %d 状态 %s -> %s actor:%s", p.ID, previous, status, actor))

	fresh, found, err := s.store.FindByID(ctx, p.ID)
	if err != nil || !found {
		// 写入已经成功，读取失败时返回内存中的记录
		return p, nil
	}
	return fresh, nil
}

// GeneratePaymentVoucher 生成支付凭证，只有 APPROVED 的支付可以生成
func (s *PaymentService) GeneratePaymentVoucher(ctx context.Context, id uint64) ([]byte, error) {
	ctx, span := s.tracer.Start(ctx, "PaymentService.GeneratePaymentVoucher",
		trace.WithAttributes(attribute.Int64("payment.id", int64(id))))
	defer span.End()

	p, found, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, fail(span, fmt.Errorf("load payment %d: %w", id, err))
	}
	if !found {
		return nil, fail(span, fmt.Errorf("%w with ID: %d", ErrPaymentNotFound, id))
	}
	if !p.IsApproved() {
		return nil, fail(span, fmt.Errorf("%w for payment status: %s", ErrVoucherGeneration, p.Status))
	}

	pdf, err := s.renderer.Render(p)
	if err != nil {
		return nil, fail(span, fmt.Errorf("%w: %v", ErrVoucherGeneration, err))
	}
	return pdf, nil
}
