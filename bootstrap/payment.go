package bootstrap

import (
	"fmt"
	"time"

	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/app/repositories"
	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/app/services"
	btsConfig "github.com/SistemaDeReservasTurnos/reservas-pagos-service/config"
	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/pkg/app"
	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/pkg/config"
	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/pkg/database"
	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/pkg/logger"
	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/pkg/payment/factory"
	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/pkg/payment/types"
	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/pkg/queue"
	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/pkg/redis"
	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/pkg/reservation"
	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/pkg/voucher"
)

// Payments 支付模块装配结果
type Payments struct {
	Service *services.PaymentService
	Queue   *queue.Queue
	Gateway types.Gateway
}

// PaymentConfig 从配置中组装网关参数
func PaymentConfig() btsConfig.PaymentConfig {
	return btsConfig.PaymentConfig{
		Gateway:         config.GetString("payment.gateway"),
		NotificationURL: config.GetString("payment.notification_url"),
		Timeout:         time.Duration(config.GetInt("payment.timeout", 10)) * time.Second,
		BreakerFailures: uint32(config.GetUint("payment.breaker_failures", 5)),
		BreakerTimeout:  time.Duration(config.GetInt("payment.breaker_timeout", 30)) * time.Second,
		MercadoPago: btsConfig.MercadoPagoConfig{
			BaseURL:     config.GetString("payment.mercadopago.base_url"),
			AccessToken: config.GetString("payment.mercadopago.access_token"),
			Currency:    config.GetString("payment.mercadopago.currency"),
		},
		Alipay: btsConfig.AlipayConfig{
			AppID:        config.GetString("payment.alipay.app_id"),
			PrivateKey:   config.GetString("payment.alipay.private_key"),
			PublicKey:    config.GetString("payment.alipay.public_key"),
			IsProduction: config.GetBool("payment.alipay.is_production"),
		},
		Wechat: btsConfig.WechatConfig{
			AppID:      config.GetString("payment.wechat.app_id"),
			MchID:      config.GetString("payment.wechat.mch_id"),
			SerialNo:   config.GetString("payment.wechat.serial_no"),
			PrivateKey: config.GetString("payment.wechat.private_key"),
			APIv3Key:   config.GetString("payment.wechat.api_v3_key"),
		},
	}
}

// SetupPayments 装配支付编排服务，需在 SetupDB 和 SetupRedis 之后调用
func SetupPayments() (*Payments, error) {
	cfg := PaymentConfig()
	gateway, err := factory.NewGateway(cfg)
	if err != nil {
		return nil, fmt.Errorf("setup payment gateway: %w", err)
	}

	reservations := reservation.NewClient(reservation.Config{
		BaseURL: config.GetString("reservation.base_url"),
		Token:   config.GetString("reservation.token"),
		Timeout: time.Duration(config.GetInt("reservation.timeout", 5)) * time.Second,
	})

	loc, err := time.LoadLocation(config.GetString("app.timezone"))
	if err != nil {
		logger.WarnString("Payment", "Setup", "时区配置无效，凭证使用 UTC："+err.Error())
		loc = time.UTC
	}
	renderer := voucher.NewPDFRenderer(voucher.Config{
		BrandName: config.GetString("payment.brand_name"),
		Currency:  cfg.MercadoPago.Currency,
		Location:  loc,
	})

	q := setupEnrichmentQueue()
	opts := []services.Option{
		services.WithScheduler(q),
		services.WithClock(app.TimenowInTimezone),
	}

	// 只有配置了 Redis 才记录 Webhook 投递次数
	if rds := redis.GetRedis(redis.MainDB); rds != nil {
		opts = append(opts, services.WithDeliveryLog(
			repositories.NewWebhookRepository(rds, config.GetString("app.name"), 24*time.Hour),
		))
	}

	svc := services.NewPaymentService(
		repositories.NewPaymentRepository(database.DB),
		reservations,
		gateway,
		renderer,
		services.Config{BackURLs: types.BackURLs{
			Success: config.GetString("payment.success_url"),
			Pending: config.GetString("payment.pending_url"),
			Failure: config.GetString("payment.failure_url"),
		}},
		opts...,
	)

	logger.InfoString("Payment", "Setup", "支付服务初始化成功，网关："+gateway.Name())
	return &Payments{Service: svc, Queue: q, Gateway: gateway}, nil
}

// setupEnrichmentQueue Redis 可用时使用 Redis 列表，否则退回进程内队列
func setupEnrichmentQueue() *queue.Queue {
	qcfg := queue.Config{
		Prefix:    config.GetString("queue.prefix"),
		RateLimit: config.GetInt("queue.rate_limit"),
	}
	if rds := redis.GetRedis(redis.QueueDB); rds != nil {
		return queue.NewQueue(rds, qcfg)
	}
	logger.WarnString("Queue", "Setup", "Redis 不可用，补写任务使用内存队列")
	return queue.NewQueue(queue.NewMemoryBackend(0), qcfg)
}
