package queue

import (
	"sync"
	"sync/atomic"
	"time"
)

// MetricOperation 定义指标操作类型
type MetricOperation string

const (
	OpPush    MetricOperation = "push"
	OpPop     MetricOperation = "pop"
	OpProcess MetricOperation = "process"
)

// LatencyStats 延迟统计
type LatencyStats struct {
	mu    sync.Mutex
	count int64
	total time.Duration
	min   time.Duration
	max   time.Duration
}

// record 记录延迟数据
func (s *LatencyStats) record(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.count++
	s.total += d
	if s.min == 0 || d < s.min {
		s.min = d
	}
	if d > s.max {
		s.max = d
	}
}

// LatencySnapshot 延迟统计快照
type LatencySnapshot struct {
	Count int64         `json:"count"`
	Avg   time.Duration `json:"avg"`
	Min   time.Duration `json:"min"`
	Max   time.Duration `json:"max"`
}

func (s *LatencyStats) snapshot() LatencySnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := LatencySnapshot{Count: s.count, Min: s.min, Max: s.max}
	if s.count > 0 {
		snap.Avg = s.total / time.Duration(s.count)
	}
	return snap
}

// QueueMetrics 队列指标收集器
type QueueMetrics struct {
	success sync.Map // MetricOperation -> *atomic.Int64
	errors  sync.Map // MetricOperation -> *atomic.Int64
	latency sync.Map // MetricOperation -> *LatencyStats
	retried atomic.Int64
	dropped atomic.Int64
}

// NewQueueMetrics 创建新的指标收集器
func NewQueueMetrics() *QueueMetrics {
	return &QueueMetrics{}
}

func counter(m *sync.Map, op MetricOperation) *atomic.Int64 {
	v, _ := m.LoadOrStore(op, new(atomic.Int64))
	return v.(*atomic.Int64)
}

// RecordSuccess 记录成功操作
func (m *QueueMetrics) RecordSuccess(op MetricOperation) {
	counter(&m.success, op).Add(1)
}

// RecordError 记录失败操作
func (m *QueueMetrics) RecordError(op MetricOperation) {
	counter(&m.errors, op).Add(1)
}

// RecordLatency 记录操作耗时
func (m *QueueMetrics) RecordLatency(op MetricOperation, d time.Duration) {
	v, _ := m.latency.LoadOrStore(op, &LatencyStats{})
	v.(*LatencyStats).record(d)
}

// RecordRetry 任务重新入队
func (m *QueueMetrics) RecordRetry() {
	m.retried.Add(1)
}

// RecordDropped 超过重试次数被丢弃
func (m *QueueMetrics) RecordDropped() {
	m.dropped.Add(1)
}

// MetricsSnapshot 指标快照，用于健康检查输出
type MetricsSnapshot struct {
	Success map[MetricOperation]int64           `json:"success"`
	Errors  map[MetricOperation]int64           `json:"errors"`
	Latency map[MetricOperation]LatencySnapshot `json:"latency"`
	Retried int64                               `json:"retried"`
	Dropped int64                               `json:"dropped"`
}

// Snapshot 当前指标快照
func (m *QueueMetrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{
		Success: map[MetricOperation]int64{},
		Errors:  map[MetricOperation]int64{},
		Latency: map[MetricOperation]LatencySnapshot{},
		Retried: m.retried.Load(),
		Dropped: m.dropped.Load(),
	}
	m.success.Range(func(k, v interface{}) bool {
		snap.Success[k.(MetricOperation)] = v.(*atomic.Int64).Load()
		return true
	})
	m.errors.Range(func(k, v interface{}) bool {
		snap.Errors[k.(MetricOperation)] = v.(*atomic.Int64).Load()
		return true
	})
	m.latency.Range(func(k, v interface{}) bool {
		snap.Latency[k.(MetricOperation)] = v.(*LatencyStats).snapshot()
		return true
	})
	return snap
}
