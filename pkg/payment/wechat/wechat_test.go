package wechat

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/pkg/payment/types"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wechatpay-apiv3/wechatpay-go/core"
	"github.com/wechatpay-apiv3/wechatpay-go/services/payments/native"
)

type fakePrepayer struct {
	got    native.PrepayRequest
	resp   *native.PrepayResponse
	status int
	err    error
}

func (f *fakePrepayer) Prepay(_ context.Context, req native.PrepayRequest) (*native.PrepayResponse, *core.APIResult, error) {
	f.got = req
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.resp, &core.APIResult{Response: &http.Response{StatusCode: f.status}}, nil
}

func request(amount string) *types.PreferenceRequest {
	return &types.PreferenceRequest{
		Items:             []types.Item{{Title: "Service Reservation No. 9", Quantity: 1, UnitPrice: decimal.RequireFromString(amount)}},
		ExternalReference: "21",
	}
}

func TestCreatePreference(t *testing.T) {
	fake := &fakePrepayer{
		resp:   &native.PrepayResponse{CodeUrl: core.String("weixin://wxpay/bizpayurl?pr=abc")},
		status: 200,
	}
	gw := &Gateway{api: fake, appID: "wxapp", mchID: "1900", notifyURL: "https://api/notify"}

	pref, ok := gw.CreatePreference(context.Background(), request("12.345"))
	require.True(t, ok)
	assert.Equal(t, "RP21", pref.GatewayID)
	assert.Equal(t, "weixin://wxpay/bizpayurl?pr=abc", pref.PaymentLink)

	assert.Equal(t, int64(1235), *fake.got.Amount.Total)
	assert.Equal(t, "RP21", *fake.got.OutTradeNo)
	assert.Equal(t, "wxapp", *fake.got.Appid)
	assert.Equal(t, "Service Reservation No. 9", *fake.got.Description)
}

func TestCreatePreferenceFailures(t *testing.T) {
	cases := map[string]*fakePrepayer{
		"transport error": {err: errors.New("timeout")},
		"non 200":         {resp: &native.PrepayResponse{CodeUrl: core.String("weixin://x")}, status: 500},
		"no code url":     {resp: &native.PrepayResponse{}, status: 200},
	}
	for name, fake := range cases {
		t.Run(name, func(t *testing.T) {
			gw := &Gateway{api: fake}
			pref, ok := gw.CreatePreference(context.Background(), request("10"))
			assert.False(t, ok)
			assert.Nil(t, pref)
		})
	}
}

func TestToFen(t *testing.T) {
	assert.Equal(t, int64(100), toFen(decimal.NewFromInt(1)))
	assert.Equal(t, int64(1), toFen(decimal.RequireFromString("0.005")))
	assert.Equal(t, int64(4500000), toFen(decimal.RequireFromString("45000")))
}
