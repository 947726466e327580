// Package mercadopago Mercado Pago Checkout Pro 适配器
package mercadopago

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/config"
	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/pkg/logger"
	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/pkg/payment/types"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

const preferencesPath = "/checkout/preferences"

// 幂等键的命名空间，同一个本地支付 ID 总是得到同一个键
var idempotencyNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("reservas-pagos-service/mercadopago"))

// Gateway Mercado Pago 网关
type Gateway struct {
	client          *resty.Client
	currency        string
	notificationURL string
}

// New 创建 Mercado Pago 网关
func New(cfg config.MercadoPagoConfig, notificationURL string) (*Gateway, error) {
	if cfg.AccessToken == "" {
		return nil, fmt.Errorf("mercadopago access token is empty")
	}
	currency := cfg.Currency
	if currency == "" {
		currency = "COP"
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetAuthToken(cfg.AccessToken).
		SetHeader("Content-Type", "application/json")

	return &Gateway{
		client:          client,
		currency:        currency,
		notificationURL: notificationURL,
	}, nil
}

// Name 网关名称
func (g *Gateway) Name() string {
	return "mercadopago"
}

type preferenceItem struct {
	Title      string      `json:"title"`
	Quantity   int         `json:"quantity"`
	UnitPrice  json.Number `json:"unit_price"`
	CurrencyID string      `json:"currency_id"`
}

type backURLs struct {
	Success string `json:"success,omitempty"`
	Pending string `json:"pending,omitempty"`
	Failure string `json:"failure,omitempty"`
}

type payer struct {
	Email string `json:"email"`
}

type preferenceBody struct {
	Items             []preferenceItem `json:"items"`
	BackURLs          backURLs         `json:"back_urls"`
	AutoReturn        string           `json:"auto_return,omitempty"`
	ExternalReference string           `json:"external_reference"`
	NotificationURL   string           `json:"notification_url,omitempty"`
	Payer             *payer           `json:"payer,omitempty"`
}

type preferenceResponse struct {
	ID        string `json:"id"`
	InitPoint string `json:"init_point"`
}

// buildBody 组装请求体，单价按网关要求四舍五入到整数
func (g *Gateway) buildBody(req *types.PreferenceRequest) preferenceBody {
	items := make([]preferenceItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, preferenceItem{
			Title:      item.Title,
			Quantity:   item.Quantity,
			UnitPrice:  json.Number(item.UnitPrice.Round(0).String()),
			CurrencyID: g.currency,
		})
	}

	body := preferenceBody{
		Items: items,
		BackURLs: backURLs{
			Success: req.BackURLs.Success,
			Pending: req.BackURLs.Pending,
			Failure: req.BackURLs.Failure,
		},
		ExternalReference: req.ExternalReference,
		NotificationURL:   g.notificationURL,
	}
	// auto_return 要求 success 地址存在
	if req.BackURLs.Success != "" {
		body.AutoReturn = "approved"
	}
	if req.PayerEmail != "" {
		body.Payer = &payer{Email: req.PayerEmail}
	}
	return body
}

// CreatePreference 创建 Checkout Pro 支付意向
func (g *Gateway) CreatePreference(ctx context.Context, req *types.PreferenceRequest) (*types.Preference, bool) {
	var result preferenceResponse
	resp, err := g.client.R().
		SetContext(ctx).
		SetHeader("X-Idempotency-Key", IdempotencyKey(req.ExternalReference)).
		SetBody(g.buildBody(req)).
		SetResult(&result).
		Post(preferencesPath)
	if err != nil {
		logger.ErrorString("MercadoPago", "CreatePreference", fmt.Sprintf("请求失败 reference:%s 错误:%v", req.ExternalReference, err))
		return nil, false
	}

	if resp.IsError() {
		logger.ErrorString("MercadoPago", "CreatePreference", fmt.Sprintf("网关返回异常 reference:%s 状态:%d 响应:%s",
			req.ExternalReference, resp.StatusCode(), resp.String()))
		return nil, false
	}

	if result.ID == "" || result.InitPoint == "" {
		logger.ErrorString("MercadoPago", "CreatePreference", fmt.Sprintf("响应缺少 id 或 init_point reference:%s", req.ExternalReference))
		return nil, false
	}

	return &types.Preference{
		GatewayID:   result.ID,
		PaymentLink: result.InitPoint,
	}, true
}

// IdempotencyKey 根据本地支付 ID 生成稳定的幂等键
func IdempotencyKey(reference string) string {
	return uuid.NewSHA1(idempotencyNamespace, []byte(reference)).String()
}
