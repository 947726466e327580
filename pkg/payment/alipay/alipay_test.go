package alipay

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/pkg/payment/types"

	"github.com/shopspring/decimal"
	"github.com/smartwalle/alipay/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePagePayer struct {
	got alipay.TradePagePay
	err error
}

func (f *fakePagePayer) TradePagePay(param alipay.TradePagePay) (*url.URL, error) {
	f.got = param
	if f.err != nil {
		return nil, f.err
	}
	return url.Parse("https://openapi.alipay.com/gateway.do?out_trade_no=" + param.OutTradeNo)
}

func request() *types.PreferenceRequest {
	return &types.PreferenceRequest{
		Items:             []types.Item{{Title: "Service Reservation No. 3", Quantity: 1, UnitPrice: decimal.RequireFromString("88.005")}},
		BackURLs:          types.BackURLs{Success: "https://front/ok"},
		ExternalReference: "15",
	}
}

func TestCreatePreference(t *testing.T) {
	fake := &fakePagePayer{}
	gw := &Gateway{client: fake, notifyURL: "https://api/notify"}

	pref, ok := gw.CreatePreference(context.Background(), request())
	require.True(t, ok)
	assert.Equal(t, "15", pref.GatewayID)
	assert.Contains(t, pref.PaymentLink, "out_trade_no=15")

	assert.Equal(t, "88.01", fake.got.TotalAmount)
	assert.Equal(t, "15", fake.got.OutTradeNo)
	assert.Equal(t, "Service Reservation No. 3", fake.got.Subject)
	assert.Equal(t, "https://api/notify", fake.got.NotifyURL)
	assert.Equal(t, "https://front/ok", fake.got.ReturnURL)
}

func TestCreatePreferenceFailure(t *testing.T) {
	gw := &Gateway{client: &fakePagePayer{err: errors.New("sign error")}}

	pref, ok := gw.CreatePreference(context.Background(), request())
	assert.False(t, ok)
	assert.Nil(t, pref)
}
