// Package wechat 微信支付 Native 下单适配器
package wechat

import (
	"context"
	"fmt"

	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/config"
	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/pkg/logger"
	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/pkg/payment/types"

	"github.com/shopspring/decimal"
	"github.com/wechatpay-apiv3/wechatpay-go/core"
	"github.com/wechatpay-apiv3/wechatpay-go/core/option"
	"github.com/wechatpay-apiv3/wechatpay-go/services/payments/native"
	"github.com/wechatpay-apiv3/wechatpay-go/utils"
)

// 商户订单号前缀，微信要求至少 6 位，本地 ID 较短时也能满足
const outTradeNoPrefix = "RP"

// prepayer 用于替换 native.NativeApiService
type prepayer interface {
	Prepay(ctx context.Context, req native.PrepayRequest) (*native.PrepayResponse, *core.APIResult, error)
}

// Gateway 微信支付网关
type Gateway struct {
	api       prepayer
	appID     string
	mchID     string
	notifyURL string
}

// New 创建微信支付网关
func New(cfg config.WechatConfig, notifyURL string) (*Gateway, error) {
	// 1. 加载商户私钥
	mchPrivateKey, err := utils.LoadPrivateKey(cfg.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("load merchant private key error: %w", err)
	}

	// 2. 自动下载平台证书并验签
	opts := []core.ClientOption{
		option.WithWechatPayAutoAuthCipher(
			cfg.MchID,
			cfg.SerialNo,
			mchPrivateKey,
			cfg.APIv3Key,
		),
	}

	// 3. 创建客户端
	client, err := core.NewClient(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("create wechat pay client error: %w", err)
	}

	return &Gateway{
		api:       &native.NativeApiService{Client: client},
		appID:     cfg.AppID,
		mchID:     cfg.MchID,
		notifyURL: notifyURL,
	}, nil
}

// Name 网关名称
func (g *Gateway) Name() string {
	return "wechat"
}

// OutTradeNo 本地支付 ID 对应的商户订单号
func OutTradeNo(reference string) string {
	return outTradeNoPrefix + reference
}

// toFen 元转分，四舍五入
func toFen(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

// CreatePreference Native 下单，返回二维码链接
func (g *Gateway) CreatePreference(ctx context.Context, req *types.PreferenceRequest) (*types.Preference, bool) {
	outTradeNo := OutTradeNo(req.ExternalReference)

	resp, result, err := g.api.Prepay(ctx, native.PrepayRequest{
		Appid:       core.String(g.appID),
		Mchid:       core.String(g.mchID),
		Description: core.String(req.Title()),
		OutTradeNo:  core.String(outTradeNo),
		NotifyUrl:   core.String(g.notifyURL),
		Amount: &native.Amount{
			Total:    core.Int64(toFen(req.Total())),
			Currency: core.String("CNY"),
		},
	})
	if err != nil {
		logger.ErrorString("Wechat", "CreatePreference", fmt.Sprintf("下单失败 out_trade_no:%s 错误:%v", outTradeNo, err))
		return nil, false
	}

	if result != nil && result.Response != nil && result.Response.StatusCode != 200 {
		logger.ErrorString("Wechat", "CreatePreference", fmt.Sprintf("下单失败 out_trade_no:%s 状态:%d", outTradeNo, result.Response.StatusCode))
		return nil, false
	}

	if resp == nil || resp.CodeUrl == nil || *resp.CodeUrl == "" {
		logger.ErrorString("Wechat", "CreatePreference", fmt.Sprintf("响应缺少 code_url out_trade_no:%s", outTradeNo))
		return nil, false
	}

	return &types.Preference{
		GatewayID:   outTradeNo,
		PaymentLink: *resp.CodeUrl,
	}, true
}
