// Package factory 根据部署配置创建支付网关
package factory

import (
	"fmt"

	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/config"
	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/pkg/payment/alipay"
	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/pkg/payment/mercadopago"
	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/pkg/payment/types"
	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/pkg/payment/wechat"
)

const (
	GatewayMercadoPago = "mercadopago"
	GatewayAlipay      = "alipay"
	GatewayWechat      = "wechat"
)

// NewGateway 创建当前部署使用的网关，并加上超时和熔断
func NewGateway(cfg config.PaymentConfig) (types.Gateway, error) {
	var (
		inner types.Gateway
		err   error
	)

	switch cfg.Gateway {
	case GatewayMercadoPago, "":
		inner, err = mercadopago.New(cfg.MercadoPago, cfg.NotificationURL)
	case GatewayAlipay:
		inner, err = alipay.New(cfg.Alipay, cfg.NotificationURL)
	case GatewayWechat:
		inner, err = wechat.New(cfg.Wechat, cfg.NotificationURL)
	default:
		return nil, fmt.Errorf("unsupported payment gateway: %s", cfg.Gateway)
	}
	if err != nil {
		return nil, err
	}

	return Guard(inner, cfg.Timeout, cfg.BreakerFailures, cfg.BreakerTimeout), nil
}
