package requests

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/thedevsaddam/govalidator"
)

// CreatePaymentRequest 创建支付请求
//
// reservation_id 可以放在 JSON 中，也可以放在 query 中（reservation_id 或 reservationId）
type CreatePaymentRequest struct {
	ReservationID uint64           `json:"reservation_id"`
	Amount        *decimal.Decimal `json:"amount"`
	ClientEmail   string           `json:"client_email"`
}

// ValidateCreatePayment 解析并验证创建支付请求
func ValidateCreatePayment(c *gin.Context) (*CreatePaymentRequest, error) {
	var req CreatePaymentRequest

	// 1. 有请求体时绑定 JSON
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			return nil, fmt.Errorf("%w body: %v", ErrMalformed, err)
		}
	}

	// 2. query 兜底，兼容前端使用的 reservationId
	if req.ReservationID == 0 {
		raw := c.Query("reservation_id")
		if raw == "" {
			raw = c.Query("reservationId")
		}
		if raw != "" {
			id, err := strconv.ParseUint(raw, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: reservation_id must be a positive integer, got %q", ErrMalformed, raw)
			}
			req.ReservationID = id
		}
	}
	if req.ClientEmail == "" {
		req.ClientEmail = c.Query("client_email")
	}

	// 3. 验证规则
	rules := govalidator.MapData{
		"reservation_id": []string{"required"},
	}
	messages := govalidator.MapData{
		"reservation_id": []string{
			"required:reservation_id is required",
		},
	}
	if req.ClientEmail != "" {
		rules["client_email"] = []string{"email"}
		messages["client_email"] = []string{"email:client_email must be a valid email address"}
	}
	if err := ValidateStruct(&req, rules, messages); err != nil {
		return nil, err
	}

	if req.Amount != nil && !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be greater than zero", ErrMalformed)
	}

	return &req, nil
}

// WebhookRequest 网关回调
type WebhookRequest struct {
	ID     uint64 `json:"id" form:"id"`
	Status string `json:"status" form:"status"`
	Topic  string `json:"topic" form:"topic"`
}

// ValidateWebhook 解析并验证网关回调，参数可以在 query 或 JSON 中
func ValidateWebhook(c *gin.Context) (*WebhookRequest, error) {
	var req WebhookRequest

	if err := c.ShouldBindQuery(&req); err != nil {
		return nil, fmt.Errorf("%w query: %v", ErrMalformed, err)
	}
	if req.ID == 0 && c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			return nil, fmt.Errorf("%w body: %v", ErrMalformed, err)
		}
	}

	rules := govalidator.MapData{
		"id":     []string{"required"},
		"status": []string{"required"},
	}
	if err := ValidateStruct(&req, rules, nil); err != nil {
		return nil, err
	}
	return &req, nil
}
