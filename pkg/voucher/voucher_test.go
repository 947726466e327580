package voucher

import (
	"bytes"
	"testing"
	"time"

	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/app/models/payment"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func approvedPayment() *payment.Payment {
	created := time.Date(2025, 3, 5, 19, 30, 0, 0, time.UTC)
	p := payment.New(12, decimal.RequireFromString("45000.5"), "RESERVAS_SERVICE", created)
	p.ID = 7
	_, _ = p.AttachPreference("123-abc", "https://pay/7")
	p.UpdateStatus(payment.StatusApproved, "MERCADOPAGO_WEBHOOK", created.Add(time.Minute))
	return p
}

func TestRenderProducesPDF(t *testing.T) {
	r := NewPDFRenderer(Config{})

	out, err := r.Render(approvedPayment())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
	assert.Greater(t, len(out), 500)
}

func TestRenderWithoutGatewayID(t *testing.T) {
	p := approvedPayment()
	p.ExternalPaymentID = nil

	out, err := NewPDFRenderer(Config{BrandName: "Peluquería Central"}).Render(p)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestRenderNil(t *testing.T) {
	_, err := NewPDFRenderer(Config{}).Render(nil)
	assert.Error(t, err)
}

func TestFormatting(t *testing.T) {
	bogota := time.FixedZone("COT", -5*3600)
	r := NewPDFRenderer(Config{Location: bogota})
	p := approvedPayment()

	assert.Equal(t, "05/03/2025 a las 14:30 hs.", r.FormatDate(p.CreatedAt))
	assert.Equal(t, "$ 45000.50 COP", r.FormatAmount(p))

	p.Amount = decimal.RequireFromString("10.005")
	assert.Equal(t, "$ 10.01 COP", r.FormatAmount(p))
}

func TestOrNA(t *testing.T) {
	empty := ""
	value := "x"
	assert.Equal(t, "N/A", orNA(nil))
	assert.Equal(t, "N/A", orNA(&empty))
	assert.Equal(t, "x", orNA(&value))
}
