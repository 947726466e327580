// Package routes 注册路由
package routes

import (
	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/app/http/controllers/api/v1/payment"
	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/app/http/middlewares"
	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/pkg/payment/types"
	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/pkg/queue"
	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/sony/gobreaker"
)

// 路由限流默认值
const (
	// 全局限流：每小时每IP 3000 请求
	GlobalRateLimit = "3000-H"
	// Webhook 限流：每分钟 600 次回调
	WebhookRateLimit = "600-M"
)

// Deps 路由依赖
type Deps struct {
	Payments         payment.PaymentService
	Queue            *queue.Queue
	Gateway          types.Gateway
	JWTSecret        string
	APIRateLimit     string
	WebhookRateLimit string
}

// RegisterAPIRoutes 注册所有 API 路由
func RegisterAPIRoutes(r *gin.Engine, deps Deps) {
	apiLimit := deps.APIRateLimit
	if apiLimit == "" {
		apiLimit = GlobalRateLimit
	}
	webhookLimit := deps.WebhookRateLimit
	if webhookLimit == "" {
		webhookLimit = WebhookRateLimit
	}

	api := r.Group("/api")
	api.Use(
		middlewares.SecurityHeaders(),
		middlewares.Cors(),
		middlewares.LimitIP(apiLimit),
	)

	pc := payment.NewPaymentController(deps.Payments)
	paymentRoutes := api.Group("/payments")
	{
		// GET /api/payments 仅管理员
		paymentRoutes.GET("", middlewares.AdminOnly(deps.JWTSecret), pc.Index)

		// POST /api/payments/create
		paymentRoutes.POST("/create", pc.Store)

		// POST /api/payments/webhook 网关回调，单独限流
		paymentRoutes.POST("/webhook", middlewares.LimitPerRoute(webhookLimit), pc.Webhook)

		paymentRoutes.GET("/:id", pc.Show)
		paymentRoutes.GET("/:id/voucher", pc.Voucher)
	}

	r.GET("/health", health(deps))
}

func health(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		body := gin.H{"status": "ok"}
		if deps.Gateway != nil {
			gateway := gin.H{"name": deps.Gateway.Name()}
			// 熔断打开时创建支付会直接返回 503
			if guarded, ok := deps.Gateway.(interface{ State() gobreaker.State }); ok {
				gateway["breaker"] = guarded.State().String()
			}
			body["gateway"] = gateway
		}
		if deps.Queue != nil {
			body["queue"] = deps.Queue.Metrics().Snapshot()
		}
		response.Data(c, body)
	}
}
