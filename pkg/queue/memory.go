package queue

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrQueueFull 内存队列已满
var ErrQueueFull = errors.New("memory queue is full")

// MemoryBackend 进程内队列，未配置 Redis 时使用，进程退出后任务丢失
type MemoryBackend struct {
	size  int
	mu    sync.Mutex
	lists map[string]chan []byte
}

// NewMemoryBackend 创建内存队列，size 为每个键的容量
func NewMemoryBackend(size int) *MemoryBackend {
	if size <= 0 {
		size = 1024
	}
	return &MemoryBackend{
		size:  size,
		lists: make(map[string]chan []byte),
	}
}

func (m *MemoryBackend) list(key string) chan []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch, ok := m.lists[key]
	if !ok {
		ch = make(chan []byte, m.size)
		m.lists[key] = ch
	}
	return ch
}

// LPush 写入任务，队列满时直接返回错误
func (m *MemoryBackend) LPush(_ context.Context, key string, value []byte) error {
	select {
	case m.list(key) <- value:
		return nil
	default:
		return ErrQueueFull
	}
}

// BRPop 按写入顺序读取，超时返回 (nil, nil)
func (m *MemoryBackend) BRPop(ctx context.Context, timeout time.Duration, key string) ([]byte, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case value := <-m.list(key):
		return value, nil
	case <-timer.C:
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Len 当前积压的任务数
func (m *MemoryBackend) Len(key string) int {
	return len(m.list(key))
}
