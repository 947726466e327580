// Package payment 支付相关接口
package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	paymentModel "github.com/SistemaDeReservasTurnos/reservas-pagos-service/app/models/payment"
	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/app/requests"
	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/app/services"
	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/pkg/logger"
	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PaymentService 控制器用到的编排服务方法
type PaymentService interface {
	CreatePayment(ctx context.Context, in services.CreatePaymentInput) (*paymentModel.Payment, error)
	GetPaymentByID(ctx context.Context, id uint64) (*paymentModel.Payment, bool, error)
	FindAllPayments(ctx context.Context) ([]paymentModel.Payment, error)
	GeneratePaymentVoucher(ctx context.Context, id uint64) ([]byte, error)
	HandleWebhook(ctx context.Context, id uint64, token string) error
}

// PaymentController 支付控制器
type PaymentController struct {
	service PaymentService
}

// NewPaymentController 创建支付控制器
func NewPaymentController(service PaymentService) *PaymentController {
	return &PaymentController{service: service}
}

// Index 全部支付记录，仅管理员
func (pc *PaymentController) Index(c *gin.Context) {
	payments, err := pc.service.FindAllPayments(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	response.Data(c, paymentModel.ToViews(payments))
}

// Store 为预约创建支付
func (pc *PaymentController) Store(c *gin.Context) {
	// 1. 请求验证
	req, err := requests.ValidateCreatePayment(c)
	if err != nil {
		abortWithError(c, err)
		return
	}

	// 2. 创建支付
	p, err := pc.service.CreatePayment(c.Request.Context(), services.CreatePaymentInput{
		ReservationID: req.ReservationID,
		Amount:        req.Amount,
		PayerEmail:    req.ClientEmail,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	response.Created(c, p.ToView())
}

// Show 查询单个支付
func (pc *PaymentController) Show(c *gin.Context) {
	id, ok := paymentID(c)
	if !ok {
		return
	}

	p, found, err := pc.service.GetPaymentByID(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if !found {
		response.Abort404(c, fmt.Sprintf("Payment not found with ID: %d", id))
		return
	}

	response.Data(c, p.ToView())
}

// Voucher 下载 PDF 凭证
func (pc *PaymentController) Voucher(c *gin.Context) {
	id, ok := paymentID(c)
	if !ok {
		return
	}

	pdf, err := pc.service.GeneratePaymentVoucher(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="payment_voucher_%d.pdf"`, id))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// Webhook 网关回调，任何失败都只返回空的 500，让网关重试
func (pc *PaymentController) Webhook(c *gin.Context) {
	req, err := requests.ValidateWebhook(c)
	if err != nil {
		logger.WarnString("Payment", "Webhook", err.Error())
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	if err := pc.service.HandleWebhook(c.Request.Context(), req.ID, req.Status); err != nil {
		logger.Error("Payment", zap.String("webhook", "update status failed"),
			zap.Uint64("payment_id", req.ID), zap.String("status", req.Status), zap.Error(err))
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	c.Status(http.StatusOK)
}

// paymentID 解析路径中的支付 ID，失败时已经写入 400
func paymentID(c *gin.Context) (uint64, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		response.Abort400(c, fmt.Sprintf("Invalid payment ID: %q", raw))
		return 0, false
	}
	return id, true
}

// abortWithError 业务错误到 HTTP 状态码的唯一映射
func abortWithError(c *gin.Context, err error) {
	var validationErr requests.ValidationError

	switch {
	case errors.As(err, &validationErr):
		response.ValidationError(c, validationErr.Errors)
	case errors.Is(err, services.ErrReservationNotFound), errors.Is(err, services.ErrPaymentNotFound):
		response.Abort404(c, err.Error())
	case errors.Is(err, services.ErrInvalidStatus), errors.Is(err, services.ErrAmountMismatch):
		response.Abort400(c, err.Error())
	case errors.Is(err, services.ErrExternalGateway):
		response.Abort503(c, err.Error())
	case errors.Is(err, services.ErrVoucherGeneration), errors.Is(err, services.ErrInvalidAmount):
		response.Abort422(c, err.Error())
	case errors.Is(err, requests.ErrMalformed):
		response.Abort400(c, err.Error())
	default:
		logger.Error("Payment", zap.String("path", c.FullPath()), zap.Error(err))
		response.Abort500(c)
	}
}
