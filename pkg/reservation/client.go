// Package reservation 预约服务客户端，用于查询预约金额
package reservation

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/pkg/logger"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

// Reservation 预约服务返回的预约信息
type Reservation struct {
	ID        uint64          `json:"id"`
	ServiceID uint64          `json:"serviceId"`
	UserID    uint64          `json:"userId"`
	Amount    decimal.Decimal `json:"amount"`
}

// Config 客户端参数
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// Client 预约服务 HTTP 客户端
type Client struct {
	client *resty.Client
}

// NewClient 创建客户端，Token 为空时不带认证头
func NewClient(cfg Config) *Client {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetHeader("Accept", "application/json")
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}
	if cfg.Token != "" {
		client.SetAuthToken(cfg.Token)
	}
	return &Client{client: client}
}

// FindReservationByID 查询预约，404 或响应体为空时 found 为 false
func (c *Client) FindReservationByID(ctx context.Context, id uint64) (*Reservation, bool, error) {
	var result Reservation
	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("id", fmt.Sprintf("%d", id)).
		SetResult(&result).
		Get("/api/reservations/{id}")
	if err != nil {
		logger.ErrorString("Reservation", "Find", fmt.Sprintf("请求失败 id:%d 错误:%v", id, err))
		return nil, false, fmt.Errorf("call reservation service: %w", err)
	}

	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return nil, false, nil
	case resp.IsError():
		logger.ErrorString("Reservation", "Find", fmt.Sprintf("预约服务返回异常 id:%d 状态:%d", id, resp.StatusCode()))
		return nil, false, fmt.Errorf("reservation service returned status %d", resp.StatusCode())
	}

	// 空响应体或 null 按预约不存在处理
	if result.ID == 0 {
		logger.WarnString("Reservation", "Find", fmt.Sprintf("预约服务返回空响应 id:%d 状态:%d", id, resp.StatusCode()))
		return nil, false, nil
	}
	logger.DebugJSON("Reservation", "Found", result)
	return &result, true, nil
}
