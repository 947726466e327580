package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/app/models/payment"
	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/pkg/payment/types"
	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/pkg/queue"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type PaymentServiceSuite struct {
	suite.Suite
	ctx          context.Context
	store        *memoryStore
	reservations *fakeReservations
	gateway      *fakeGateway
	renderer     *fakeRenderer
	scheduler    *fakeScheduler
	deliveries   *fakeDeliveries
	clock        time.Time
	svc          *PaymentService
}

func (s *PaymentServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = newMemoryStore()
	s.reservations = &fakeReservations{amounts: map[uint64]decimal.Decimal{
		10: decimal.RequireFromString("45000.00"),
		11: decimal.Zero,
		12: decimal.RequireFromString("45000.005"),
	}}
	s.gateway = &fakeGateway{}
	s.renderer = &fakeRenderer{}
	s.scheduler = &fakeScheduler{}
	s.deliveries = &fakeDeliveries{counts: map[string]int64{}}
	s.clock = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	s.svc = NewPaymentService(s.store, s.reservations, s.gateway, s.renderer,
		Config{BackURLs: types.BackURLs{Success: "https://front/ok", Pending: "https://front/wait", Failure: "https://front/ko"}},
		WithScheduler(s.scheduler),
		WithDeliveryLog(s.deliveries),
		WithClock(s.tick),
	)
}

// tick 每次调用前进一秒
func (s *PaymentServiceSuite) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *PaymentServiceSuite) createApproved() *payment.Payment {
	p, err := s.svc.CreatePayment(s.ctx, CreatePaymentInput{ReservationID: 10})
	s.Require().NoError(err)
	p, err = s.svc.UpdatePaymentStatus(s.ctx, p.ID, "APPROVED", WebhookActor)
	s.Require().NoError(err)
	return p
}

func (s *PaymentServiceSuite) TestCreatePaymentHappyPath() {
	p, err := s.svc.CreatePayment(s.ctx, CreatePaymentInput{ReservationID: 10, PayerEmail: "a@b.co"})
	s.Require().NoError(err)

	s.Equal(payment.StatusPending, p.Status)
	s.Require().NotNil(p.ExternalPaymentID)
	s.Require().NotNil(p.PaymentLink)
	s.Equal("pref-1", *p.ExternalPaymentID)
	s.True(p.Amount.Equal(decimal.RequireFromString("45000")))
	s.Equal(SystemActor, p.CreatedBy)
	s.Equal(SystemActor, p.UpdatedBy)
	s.Equal(2, s.store.persists())

	s.Require().Len(s.gateway.calls, 1)
	req := s.gateway.calls[0]
	s.Equal("1", req.ExternalReference)
	s.Equal("a@b.co", req.PayerEmail)
	s.Equal("https://front/ok", req.BackURLs.Success)
	s.Require().Len(req.Items, 1)
	s.Equal("Service Reservation No. 10", req.Items[0].Title)
	s.Equal(1, req.Items[0].Quantity)
	s.True(req.Items[0].UnitPrice.Equal(p.Amount))

	stored, ok, err := s.store.FindByID(s.ctx, p.ID)
	s.Require().NoError(err)
	s.True(ok)
	s.Equal(*p.ExternalPaymentID, *stored.ExternalPaymentID)
}

func (s *PaymentServiceSuite) TestCreatePaymentReservationMissing() {
	_, err := s.svc.CreatePayment(s.ctx, CreatePaymentInput{ReservationID: 99})
	s.ErrorIs(err, ErrReservationNotFound)
	s.Contains(err.Error(), "99")
	s.Zero(s.store.persists())
	s.Empty(s.gateway.calls)
}

func (s *PaymentServiceSuite) TestCreatePaymentReservationLookupError() {
	s.reservations.err = errors.New("connection refused")

	_, err := s.svc.CreatePayment(s.ctx, CreatePaymentInput{ReservationID: 10})
	s.Error(err)
	s.NotErrorIs(err, ErrReservationNotFound)
	s.Zero(s.store.persists())
}

func (s *PaymentServiceSuite) TestCreatePaymentInvalidAmount() {
	_, err := s.svc.CreatePayment(s.ctx, CreatePaymentInput{ReservationID: 11})
	s.ErrorIs(err, ErrInvalidAmount)
	s.Zero(s.store.persists())
	s.Empty(s.gateway.calls)
}

func (s *PaymentServiceSuite) TestCreatePaymentAmountMismatch() {
	wrong := decimal.RequireFromString("100")
	_, err := s.svc.CreatePayment(s.ctx, CreatePaymentInput{ReservationID: 10, Amount: &wrong})
	s.ErrorIs(err, ErrAmountMismatch)
	s.Zero(s.store.persists())

	right := decimal.RequireFromString("45000.0")
	_, err = s.svc.CreatePayment(s.ctx, CreatePaymentInput{ReservationID: 10, Amount: &right})
	s.NoError(err)
}

func (s *PaymentServiceSuite) TestCreatePaymentGatewayFailure() {
	s.gateway.fail = true

	_, err := s.svc.CreatePayment(s.ctx, CreatePaymentInput{ReservationID: 10})
	s.ErrorIs(err, ErrExternalGateway)
	s.Equal(1, s.store.persists())

	stored, ok, err := s.store.FindByID(s.ctx, 1)
	s.Require().NoError(err)
	s.Require().True(ok)
	s.Equal(payment.StatusPending, stored.Status)
	s.Nil(stored.ExternalPaymentID)
	s.Nil(stored.PaymentLink)
	s.Empty(s.scheduler.tasks)
}

func (s *PaymentServiceSuite) TestCreatePaymentSecondWriteFailureSchedulesRetry() {
	s.store.saveErr = errDatabase

	_, err := s.svc.CreatePayment(s.ctx, CreatePaymentInput{ReservationID: 10})
	s.ErrorIs(err, errDatabase)

	s.Require().Len(s.scheduler.tasks, 1)
	task := s.scheduler.tasks[0]
	s.Equal(uint64(1), task.PaymentID)
	s.Equal("pref-1", task.GatewayID)

	// 数据库恢复后补写
	s.store.saveErr = nil
	s.Require().NoError(s.svc.RetryEnrichment(s.ctx, task))
	stored, _, _ := s.store.FindByID(s.ctx, 1)
	s.Equal("pref-1", *stored.ExternalPaymentID)
	s.Equal("https://checkout.example/1", *stored.PaymentLink)

	// 重复补写不再写库
	saves := s.store.saves
	s.Require().NoError(s.svc.RetryEnrichment(s.ctx, task))
	s.Equal(saves, s.store.saves)

	// 不同的网关单号视为冲突
	conflict := task
	conflict.GatewayID = "pref-other"
	s.ErrorIs(s.svc.RetryEnrichment(s.ctx, conflict), payment.ErrPreferenceConflict)
}

func (s *PaymentServiceSuite) TestRetryEnrichmentUnknownPayment() {
	err := s.svc.RetryEnrichment(s.ctx, queue.EnrichmentTask{PaymentID: 404, GatewayID: "x", PaymentLink: "y"})
	s.ErrorIs(err, ErrPaymentNotFound)
}

func (s *PaymentServiceSuite) TestUpdatePaymentStatusEveryValidToken() {
	p, err := s.svc.CreatePayment(s.ctx, CreatePaymentInput{ReservationID: 10})
	s.Require().NoError(err)

	last := p.UpdatedAt
	for _, status := range payment.Statuses {
		updated, err := s.svc.UpdatePaymentStatus(s.ctx, p.ID, string(status), "tester")
		s.Require().NoError(err)
		s.Equal(status, updated.Status)
		s.Equal("tester", updated.UpdatedBy)
		s.True(updated.UpdatedAt.After(last))
		last = updated.UpdatedAt
	}
}

func (s *PaymentServiceSuite) TestUpdatePaymentStatusInvalidToken() {
	p, err := s.svc.CreatePayment(s.ctx, CreatePaymentInput{ReservationID: 10})
	s.Require().NoError(err)
	saves := s.store.saves

	for _, token := range []string{"approved", "PAID", ""} {
		_, err := s.svc.UpdatePaymentStatus(s.ctx, p.ID, token, WebhookActor)
		s.ErrorIs(err, ErrInvalidStatus)
		s.Contains(err.Error(), "PENDING, APPROVED, REJECTED, REFUNDED")
	}
	s.Equal(saves, s.store.saves)

	stored, _, _ := s.store.FindByID(s.ctx, p.ID)
	s.Equal(payment.StatusPending, stored.Status)
	s.Equal(SystemActor, stored.UpdatedBy)
	s.Equal(p.UpdatedAt, stored.UpdatedAt)
}

func (s *PaymentServiceSuite) TestUpdatePaymentStatusUnknownID() {
	_, err := s.svc.UpdatePaymentStatus(s.ctx, 404, "APPROVED", WebhookActor)
	s.ErrorIs(err, ErrPaymentNotFound)
}

func (s *PaymentServiceSuite) TestHandleWebhookAppliesDuplicates() {
	p, err := s.svc.CreatePayment(s.ctx, CreatePaymentInput{ReservationID: 10})
	s.Require().NoError(err)

	s.Require().NoError(s.svc.HandleWebhook(s.ctx, p.ID, "APPROVED"))
	s.Require().NoError(s.svc.HandleWebhook(s.ctx, p.ID, "APPROVED"))

	stored, _, _ := s.store.FindByID(s.ctx, p.ID)
	s.Equal(payment.StatusApproved, stored.Status)
	s.Equal(WebhookActor, stored.UpdatedBy)
	s.Equal(int64(2), s.deliveries.counts["APPROVED#1"])
}

func (s *PaymentServiceSuite) TestHandleWebhookRejectedDeliveriesAreNotRecorded() {
	p, err := s.svc.CreatePayment(s.ctx, CreatePaymentInput{ReservationID: 10})
	s.Require().NoError(err)

	s.ErrorIs(s.svc.HandleWebhook(s.ctx, 404, "APPROVED"), ErrPaymentNotFound)
	s.ErrorIs(s.svc.HandleWebhook(s.ctx, p.ID, "paid"), ErrInvalidStatus)
	s.Empty(s.deliveries.counts)

	s.Require().NoError(s.svc.HandleWebhook(s.ctx, p.ID, "APPROVED"))
	s.Equal(map[string]int64{"APPROVED#1": 1}, s.deliveries.counts)
}

// 补写任务读出记录后、写库前到达回调
func (s *PaymentServiceSuite) TestWebhookDuringEnrichmentKeepsStatus() {
	s.store.saveErr = errDatabase
	_, err := s.svc.CreatePayment(s.ctx, CreatePaymentInput{ReservationID: 10})
	s.Require().Error(err)
	s.Require().Len(s.scheduler.tasks, 1)
	s.store.saveErr = nil

	s.store.beforeAttach = func() {
		s.Require().NoError(s.svc.HandleWebhook(s.ctx, 1, "APPROVED"))
	}
	s.Require().NoError(s.svc.RetryEnrichment(s.ctx, s.scheduler.tasks[0]))

	stored, _, _ := s.store.FindByID(s.ctx, 1)
	s.Equal(payment.StatusApproved, stored.Status)
	s.Equal(WebhookActor, stored.UpdatedBy)
	s.Require().NotNil(stored.ExternalPaymentID)
	s.Equal("pref-1", *stored.ExternalPaymentID)
	s.Equal("https://checkout.example/1", *stored.PaymentLink)
}

// 回调读出记录后、写库前补写任务完成
func (s *PaymentServiceSuite) TestEnrichmentDuringStatusUpdateKeepsPreference() {
	s.store.saveErr = errDatabase
	_, err := s.svc.CreatePayment(s.ctx, CreatePaymentInput{ReservationID: 10})
	s.Require().Error(err)
	s.Require().Len(s.scheduler.tasks, 1)
	s.store.saveErr = nil

	task := s.scheduler.tasks[0]
	s.store.beforeStatus = func() {
		s.Require().NoError(s.svc.RetryEnrichment(s.ctx, task))
	}
	updated, err := s.svc.UpdatePaymentStatus(s.ctx, 1, "APPROVED", WebhookActor)
	s.Require().NoError(err)
	s.Equal(payment.StatusApproved, updated.Status)
	s.Require().NotNil(updated.ExternalPaymentID)
	s.Equal("pref-1", *updated.ExternalPaymentID)

	stored, _, _ := s.store.FindByID(s.ctx, 1)
	s.Equal(payment.StatusApproved, stored.Status)
	s.Require().NotNil(stored.PaymentLink)
	s.Equal("https://checkout.example/1", *stored.PaymentLink)
}

func (s *PaymentServiceSuite) TestCreatePaymentRoundsQuotedAmount() {
	want := decimal.RequireFromString("45000.01")

	p, err := s.svc.CreatePayment(s.ctx, CreatePaymentInput{ReservationID: 12})
	s.Require().NoError(err)
	s.True(p.Amount.Equal(want), p.Amount.String())
	s.Require().Len(s.gateway.calls, 1)
	s.True(s.gateway.calls[0].Items[0].UnitPrice.Equal(want))

	stored, _, _ := s.store.FindByID(s.ctx, p.ID)
	s.True(stored.Amount.Equal(want))

	// 调用方按两位小数传入的金额视为一致
	_, err = s.svc.CreatePayment(s.ctx, CreatePaymentInput{ReservationID: 12, Amount: &want})
	s.NoError(err)

	raw := decimal.RequireFromString("45000.005")
	_, err = s.svc.CreatePayment(s.ctx, CreatePaymentInput{ReservationID: 12, Amount: &raw})
	s.ErrorIs(err, ErrAmountMismatch)
}

func (s *PaymentServiceSuite) TestVoucherGating() {
	p, err := s.svc.CreatePayment(s.ctx, CreatePaymentInput{ReservationID: 10})
	s.Require().NoError(err)

	for _, status := range []payment.Status{payment.StatusPending, payment.StatusRejected, payment.StatusRefunded} {
		_, err := s.svc.UpdatePaymentStatus(s.ctx, p.ID, string(status), "tester")
		s.Require().NoError(err)
		_, err = s.svc.GeneratePaymentVoucher(s.ctx, p.ID)
		s.ErrorIs(err, ErrVoucherGeneration)
		s.Contains(err.Error(), string(status))
	}

	_, err = s.svc.GeneratePaymentVoucher(s.ctx, 404)
	s.ErrorIs(err, ErrPaymentNotFound)
	s.Zero(s.renderer.calls)

	_, err = s.svc.UpdatePaymentStatus(s.ctx, p.ID, "APPROVED", WebhookActor)
	s.Require().NoError(err)
	pdf, err := s.svc.GeneratePaymentVoucher(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal("%PDF-fake", string(pdf))
	s.Equal(1, s.renderer.calls)
}

func (s *PaymentServiceSuite) TestVoucherRendererError() {
	p := s.createApproved()
	s.renderer.err = errors.New("font missing")

	_, err := s.svc.GeneratePaymentVoucher(s.ctx, p.ID)
	s.ErrorIs(err, ErrVoucherGeneration)
}

func (s *PaymentServiceSuite) TestIdempotentRead() {
	p := s.createApproved()

	first, ok, err := s.svc.GetPaymentByID(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Require().True(ok)
	second, _, err := s.svc.GetPaymentByID(s.ctx, p.ID)
	s.Require().NoError(err)

	a, _ := json.Marshal(first.ToView())
	b, _ := json.Marshal(second.ToView())
	s.JSONEq(string(a), string(b))

	_, ok, err = s.svc.GetPaymentByID(s.ctx, 404)
	s.NoError(err)
	s.False(ok)
}

func (s *PaymentServiceSuite) TestRoundTrip() {
	created, err := s.svc.CreatePayment(s.ctx, CreatePaymentInput{ReservationID: 10})
	s.Require().NoError(err)
	_, err = s.svc.UpdatePaymentStatus(s.ctx, created.ID, "APPROVED", WebhookActor)
	s.Require().NoError(err)

	got, ok, err := s.svc.GetPaymentByID(s.ctx, created.ID)
	s.Require().NoError(err)
	s.Require().True(ok)
	s.Equal(created.ID, got.ID)
	s.Equal(created.ReservationID, got.ReservationID)
	s.True(created.Amount.Equal(got.Amount))
	s.Equal(*created.ExternalPaymentID, *got.ExternalPaymentID)
	s.Equal(*created.PaymentLink, *got.PaymentLink)
	s.Equal(created.CreatedAt, got.CreatedAt)
	s.Equal(payment.StatusApproved, got.Status)
}

func (s *PaymentServiceSuite) TestFindAllPaymentsOrdered() {
	for i := 0; i < 3; i++ {
		_, err := s.svc.CreatePayment(s.ctx, CreatePaymentInput{ReservationID: 10})
		s.Require().NoError(err)
	}

	all, err := s.svc.FindAllPayments(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.Equal([]uint64{1, 2, 3}, []uint64{all[0].ID, all[1].ID, all[2].ID})
}

func TestPaymentServiceSuite(t *testing.T) {
	suite.Run(t, new(PaymentServiceSuite))
}
