// Package alipay 支付宝电脑网站支付适配器
package alipay

import (
	"context"
	"fmt"
	"net/url"

	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/config"
	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/pkg/logger"
	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/pkg/payment/types"

	"github.com/smartwalle/alipay/v3"
)

// pagePayer 支付宝客户端中用到的部分，方便测试替换
type pagePayer interface {
	TradePagePay(param alipay.TradePagePay) (*url.URL, error)
}

// Gateway 支付宝网关
type Gateway struct {
	client    pagePayer
	notifyURL string
}

// New 创建支付宝网关
func New(cfg config.AlipayConfig, notifyURL string) (*Gateway, error) {
	client, err := alipay.New(cfg.AppID, cfg.PrivateKey, cfg.IsProduction)
	if err != nil {
		return nil, fmt.Errorf("create alipay client error: %w", err)
	}

	if err := client.LoadAliPayPublicKey(cfg.PublicKey); err != nil {
		return nil, fmt.Errorf("load alipay public key error: %w", err)
	}

	return &Gateway{client: client, notifyURL: notifyURL}, nil
}

// Name 网关名称
func (g *Gateway) Name() string {
	return "alipay"
}

// CreatePreference 生成电脑网站支付链接，商户订单号就是本地支付 ID
func (g *Gateway) CreatePreference(_ context.Context, req *types.PreferenceRequest) (*types.Preference, bool) {
	trade := alipay.TradePagePay{}
	trade.NotifyURL = g.notifyURL
	trade.ReturnURL = req.BackURLs.Success
	trade.Subject = req.Title()
	trade.OutTradeNo = req.ExternalReference
	trade.TotalAmount = req.Total().StringFixed(2)
	trade.ProductCode = "FAST_INSTANT_TRADE_PAY"

	link, err := g.client.TradePagePay(trade)
	if err != nil {
		logger.ErrorString("Alipay", "CreatePreference", fmt.Sprintf("生成支付链接失败 reference:%s 错误:%v", req.ExternalReference, err))
		return nil, false
	}

	return &types.Preference{
		GatewayID:   req.ExternalReference,
		PaymentLink: link.String(),
	}, true
}
