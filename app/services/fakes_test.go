package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/app/models/payment"
	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/pkg/payment/types"
	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/pkg/queue"
	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/pkg/reservation"

	"github.com/shopspring/decimal"
)

// memoryStore 按值保存副本，模拟数据库行
type memoryStore struct {
	mu      sync.Mutex
	rows    map[uint64]payment.Payment
	nextID  uint64
	creates int
	saves   int
	saveErr error

	// 在列写入真正落库前执行一次，用来插入并发写入
	beforeAttach func()
	beforeStatus func()
}

func newMemoryStore() *memoryStore {
	return &memoryStore{rows: map[uint64]payment.Payment{}}
}

func (m *memoryStore) Create(_ context.Context, p *payment.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates++
	m.nextID++
	p.ID = m.nextID
	m.rows[p.ID] = *p
	return nil
}

func (m *memoryStore) AttachPreference(_ context.Context, id uint64, externalID, link string, updatedAt time.Time) (bool, error) {
	m.runHook(&m.beforeAttach)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.saveErr != nil {
		return false, m.saveErr
	}
	row, ok := m.rows[id]
	if !ok || (row.ExternalPaymentID != nil && *row.ExternalPaymentID != externalID) {
		return false, nil
	}
	row.ExternalPaymentID = &externalID
	row.PaymentLink = &link
	row.UpdatedAt = updatedAt
	m.rows[id] = row
	return true, nil
}

func (m *memoryStore) UpdateStatus(_ context.Context, id uint64, status payment.Status, actor string, updatedAt time.Time) (bool, error) {
	m.runHook(&m.beforeStatus)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.saveErr != nil {
		return false, m.saveErr
	}
	row, ok := m.rows[id]
	if !ok {
		return false, nil
	}
	row.Status = status
	row.UpdatedBy = actor
	row.UpdatedAt = updatedAt
	m.rows[id] = row
	return true, nil
}

// runHook 取出钩子后在锁外执行，钩子内部可以再次写入
func (m *memoryStore) runHook(hook *func()) {
	m.mu.Lock()
	fn := *hook
	*hook = nil
	m.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (m *memoryStore) FindByID(_ context.Context, id uint64) (*payment.Payment, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return nil, false, nil
	}
	return &row, true, nil
}

func (m *memoryStore) All(_ context.Context) ([]payment.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]payment.Payment, 0, len(m.rows))
	for _, row := range m.rows {
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memoryStore) persists() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.creates + m.saves
}

type fakeReservations struct {
	amounts map[uint64]decimal.Decimal
	err     error
}

func (f *fakeReservations) FindReservationByID(_ context.Context, id uint64) (*reservation.Reservation, bool, error) {
	if f.err != nil {
		return nil, false, f.err
	}
	amount, ok := f.amounts[id]
	if !ok {
		return nil, false, nil
	}
	return &reservation.Reservation{ID: id, ServiceID: 1, UserID: 2, Amount: amount}, true, nil
}

type fakeGateway struct {
	calls []types.PreferenceRequest
	fail  bool
}

func (f *fakeGateway) Name() string { return "fake" }

func (f *fakeGateway) CreatePreference(_ context.Context, req *types.PreferenceRequest) (*types.Preference, bool) {
	f.calls = append(f.calls, *req)
	if f.fail {
		return nil, false
	}
	return &types.Preference{
		GatewayID:   "pref-" + req.ExternalReference,
		PaymentLink: "https://checkout.example/" + req.ExternalReference,
	}, true
}

type fakeRenderer struct {
	calls int
	err   error
}

func (f *fakeRenderer) Render(p *payment.Payment) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-fake"), nil
}

type fakeScheduler struct {
	tasks []queue.EnrichmentTask
}

func (f *fakeScheduler) ScheduleEnrichment(_ context.Context, task queue.EnrichmentTask) error {
	f.tasks = append(f.tasks, task)
	return nil
}

type fakeDeliveries struct {
	counts map[string]int64
}

func (f *fakeDeliveries) RecordDelivery(_ context.Context, id uint64, status string) (int64, error) {
	key := fmt.Sprintf("%s#%d", status, id)
	f.counts[key]++
	return f.counts[key], nil
}

var errDatabase = errors.New("database is down")
