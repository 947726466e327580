package payment

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	for _, s := range Statuses {
		got, ok := ParseStatus(string(s))
		assert.True(t, ok, s)
		assert.Equal(t, s, got)
	}

	for _, token := range []string{"", "approved", "Approved", "PAID", " APPROVED", "CANCELED"} {
		_, ok := ParseStatus(token)
		assert.False(t, ok, "token %q should be rejected", token)
	}
}

func TestStatusList(t *testing.T) {
	assert.Equal(t, "PENDING, APPROVED, REJECTED, REFUNDED", StatusList())
}

func TestNewIsPending(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	p := New(42, decimal.RequireFromString("150000.50"), "RESERVAS_SERVICE", now)

	assert.Equal(t, uint64(42), p.ReservationID)
	assert.True(t, p.IsPending())
	assert.False(t, p.HasPreference())
	assert.Equal(t, now, p.CreatedAt)
	assert.Equal(t, now, p.UpdatedAt)
	assert.Equal(t, "RESERVAS_SERVICE", p.CreatedBy)
}

func TestUpdateStatus(t *testing.T) {
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	p := New(1, decimal.NewFromInt(100), "RESERVAS_SERVICE", created)

	later := created.Add(time.Minute)
	p.UpdateStatus(StatusApproved, "MERCADOPAGO_WEBHOOK", later)
	assert.True(t, p.IsApproved())
	assert.Equal(t, later, p.UpdatedAt)
	assert.Equal(t, "MERCADOPAGO_WEBHOOK", p.UpdatedBy)
	assert.Equal(t, "RESERVAS_SERVICE", p.CreatedBy)
	assert.Equal(t, created, p.CreatedAt)

	// 不校验状态流转
	p.UpdateStatus(StatusPending, "admin", later.Add(time.Minute))
	assert.True(t, p.IsPending())
}

func TestAttachPreference(t *testing.T) {
	p := New(1, decimal.NewFromInt(100), "RESERVAS_SERVICE", time.Now())

	changed, err := p.AttachPreference("pref-1", "https://pay/1")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, p.HasPreference())

	changed, err = p.AttachPreference("pref-1", "https://pay/1")
	require.NoError(t, err)
	assert.False(t, changed)

	_, err = p.AttachPreference("pref-2", "https://pay/2")
	assert.ErrorIs(t, err, ErrPreferenceConflict)
	assert.Equal(t, "pref-1", *p.ExternalPaymentID)
	assert.Equal(t, "https://pay/1", *p.PaymentLink)
}

func TestViewHidesAuditFields(t *testing.T) {
	p := New(7, decimal.NewFromInt(100), "RESERVAS_SERVICE", time.Now())
	p.ID = 3

	b, err := json.Marshal(p.ToView())
	require.NoError(t, err)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &fields))
	assert.NotContains(t, fields, "created_by")
	assert.NotContains(t, fields, "updated_by")
	for _, key := range []string{"id", "reservation_id", "external_payment_id", "amount", "status", "payment_link", "created_at", "updated_at"} {
		assert.Contains(t, fields, key)
	}
}
