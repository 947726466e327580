// Package queue 支付补写重试队列
//
// 网关已经返回支付链接，但第二次写库失败时，把网关结果放进队列，
// 由 Worker 重新写入对应的支付记录
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// EnrichmentTask 待补写的网关结果
type EnrichmentTask struct {
	ID          string    `json:"id"`
	PaymentID   uint64    `json:"payment_id"`
	GatewayID   string    `json:"gateway_id"`
	PaymentLink string    `json:"payment_link"`
	Attempts    int       `json:"attempts"`
	EnqueuedAt  time.Time `json:"enqueued_at"`
}

// Backend 队列存储，*redis.RedisClient 和 MemoryBackend 都实现了它
type Backend interface {
	LPush(ctx context.Context, key string, value []byte) error
	BRPop(ctx context.Context, timeout time.Duration, key string) ([]byte, error)
}

// Config 队列参数
type Config struct {
	Prefix    string
	RateLimit int // 每秒最多写入的任务数，0 表示不限
}

// Queue 重试队列
type Queue struct {
	backend     Backend
	key         string
	rateLimiter *rate.Limiter
	metrics     *QueueMetrics
}

// NewQueue 创建队列
func NewQueue(backend Backend, cfg Config) *Queue {
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "reservas-pagos:queue"
	}

	limit := rate.Inf
	burst := 1
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
		burst = cfg.RateLimit
	}

	return &Queue{
		backend:     backend,
		key:         fmt.Sprintf("%s:enrichment", prefix),
		rateLimiter: rate.NewLimiter(limit, burst),
		metrics:     NewQueueMetrics(),
	}
}

// Key 队列在存储中的键
func (q *Queue) Key() string {
	return q.key
}

// Metrics 队列指标
func (q *Queue) Metrics() *QueueMetrics {
	return q.metrics
}

// Push 写入任务，首次写入时分配任务 ID
func (q *Queue) Push(ctx context.Context, task EnrichmentTask) error {
	if err := q.rateLimiter.Wait(ctx); err != nil {
		q.metrics.RecordError(OpPush)
		return fmt.Errorf("rate limit exceeded: %w", err)
	}

	start := time.Now()
	defer func() {
		q.metrics.RecordLatency(OpPush, time.Since(start))
	}()

	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	task.EnqueuedAt = time.Now()

	taskJSON, err := json.Marshal(task)
	if err != nil {
		q.metrics.RecordError(OpPush)
		return fmt.Errorf("failed to marshal task: %w", err)
	}

	if err := q.backend.LPush(ctx, q.key, taskJSON); err != nil {
		q.metrics.RecordError(OpPush)
		return fmt.Errorf("failed to push task: %w", err)
	}

	q.metrics.RecordSuccess(OpPush)
	return nil
}

// ScheduleEnrichment 供支付服务在第二次写库失败时调用
func (q *Queue) ScheduleEnrichment(ctx context.Context, task EnrichmentTask) error {
	return q.Push(ctx, task)
}

// Pop 阻塞读取任务，timeout 内没有任务时返回 (nil, nil)
func (q *Queue) Pop(ctx context.Context, timeout time.Duration) (*EnrichmentTask, error) {
	start := time.Now()
	raw, err := q.backend.BRPop(ctx, timeout, q.key)
	if err != nil {
		q.metrics.RecordError(OpPop)
		return nil, fmt.Errorf("failed to pop task from queue: %w", err)
	}
	if raw == nil {
		return nil, nil
	}
	q.metrics.RecordLatency(OpPop, time.Since(start))

	var task EnrichmentTask
	if err := json.Unmarshal(raw, &task); err != nil {
		q.metrics.RecordError(OpPop)
		return nil, fmt.Errorf("failed to unmarshal task: %w", err)
	}
	q.metrics.RecordSuccess(OpPop)
	return &task, nil
}
