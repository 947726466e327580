package config

import (
	"time"

	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/pkg/config"
)

func init() {
	config.Add("payment", func() map[string]interface{} {
		return map[string]interface{}{
			// 当前部署使用的网关：mercadopago, alipay, wechat
			"gateway": config.Env("PAYMENT_GATEWAY", "mercadopago"),

			// 网关调用超时时间（秒）
			"timeout": config.Env("PAYMENT_GATEWAY_TIMEOUT", 10),

			// 熔断器：连续失败多少次后打开，打开后多少秒进入半开状态
			"breaker_failures": config.Env("PAYMENT_BREAKER_FAILURES", 5),
			"breaker_timeout":  config.Env("PAYMENT_BREAKER_TIMEOUT", 30),

			// 支付完成后的跳转地址
			"success_url": config.Env("PAYMENT_SUCCESS_URL", "http://localhost:3000/payments/success"),
			"pending_url": config.Env("PAYMENT_PENDING_URL", "http://localhost:3000/payments/pending"),
			"failure_url": config.Env("PAYMENT_FAILURE_URL", "http://localhost:3000/payments/failure"),

			// 网关回调地址，必须是网关可以访问到的公网地址
			"notification_url": config.Env("PAYMENT_NOTIFICATION_URL", ""),

			// 凭证上的商户名称
			"brand_name": config.Env("PAYMENT_BRAND_NAME", "StudioBarber"),

			"mercadopago": map[string]interface{}{
				"base_url":     config.Env("MERCADOPAGO_BASE_URL", "https://api.mercadopago.com"),
				"access_token": config.Env("MERCADOPAGO_ACCESS_TOKEN", ""),
				"currency":     config.Env("MERCADOPAGO_CURRENCY", "COP"),
			},

			"alipay": map[string]interface{}{
				"app_id":        config.Env("ALIPAY_APP_ID", ""),
				"private_key":   config.Env("ALIPAY_PRIVATE_KEY", ""),
				"public_key":    config.Env("ALIPAY_PUBLIC_KEY", ""),
				"is_production": config.Env("ALIPAY_IS_PRODUCTION", false),
			},

			"wechat": map[string]interface{}{
				"app_id":      config.Env("WECHAT_APP_ID", ""),
				"mch_id":      config.Env("WECHAT_MCH_ID", ""),
				"serial_no":   config.Env("WECHAT_SERIAL_NO", ""),
				"private_key": config.Env("WECHAT_PRIVATE_KEY", ""),
				"api_v3_key":  config.Env("WECHAT_API_V3_KEY", ""),
			},
		}
	})
}

// PaymentConfig 支付配置
type PaymentConfig struct {
	Gateway         string
	NotificationURL string
	Timeout         time.Duration
	BreakerFailures uint32
	BreakerTimeout  time.Duration
	MercadoPago     MercadoPagoConfig
	Wechat          WechatConfig
	Alipay          AlipayConfig
}

// MercadoPagoConfig Mercado Pago 配置
type MercadoPagoConfig struct {
	BaseURL     string
	AccessToken string
	Currency    string
}

// WechatConfig 微信支付配置
type WechatConfig struct {
	AppID      string
	MchID      string
	SerialNo   string
	PrivateKey string
	APIv3Key   string
}

// AlipayConfig 支付宝配置
type AlipayConfig struct {
	AppID        string
	PrivateKey   string
	PublicKey    string
	IsProduction bool
}
