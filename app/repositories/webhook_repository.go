package repositories

import (
	"context"
	"fmt"
	"time"
)

// DeliveryCounter 计数存储，*redis.RedisClient 实现了它
type DeliveryCounter interface {
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// WebhookRepository 记录网关回调的投递次数，用于发现重复投递
type WebhookRepository struct {
	counter DeliveryCounter
	prefix  string
	ttl     time.Duration
}

// NewWebhookRepository 创建投递记录仓库，ttl 为计数保留时间
func NewWebhookRepository(counter DeliveryCounter, prefix string, ttl time.Duration) *WebhookRepository {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &WebhookRepository{counter: counter, prefix: prefix, ttl: ttl}
}

// RecordDelivery 记录一次 (支付, 状态) 回调，返回这是第几次投递
func (r *WebhookRepository) RecordDelivery(ctx context.Context, paymentID uint64, status string) (int64, error) {
	key := fmt.Sprintf("%s:webhook:%d:%s", r.prefix, paymentID, status)
	return r.counter.IncrWithTTL(ctx, key, r.ttl)
}
