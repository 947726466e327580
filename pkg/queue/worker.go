package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/pkg/logger"
)

// Handler 处理单个补写任务
type Handler func(ctx context.Context, task EnrichmentTask) error

// WorkerConfig 工作器配置
type WorkerConfig struct {
	WorkerCount     int           // 并发工作器数量
	MaxRetries      int           // 最大重试次数
	RetryInterval   time.Duration // 重试间隔
	PollTimeout     time.Duration // 单次阻塞读取时间
	TaskTimeout     time.Duration // 单个任务处理超时
	ShutdownTimeout time.Duration // 关闭超时时间
}

// Worker 队列工作器
type Worker struct {
	queue   *Queue
	handle  Handler
	config  WorkerConfig
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	metrics *QueueMetrics
}

// NewWorker 创建新的工作器组
func NewWorker(q *Queue, handle Handler, config WorkerConfig) *Worker {
	if config.WorkerCount <= 0 {
		config.WorkerCount = 1
	}
	if config.MaxRetries <= 0 {
		config.MaxRetries = 5
	}
	if config.RetryInterval <= 0 {
		config.RetryInterval = 2 * time.Second
	}
	if config.PollTimeout <= 0 {
		config.PollTimeout = 2 * time.Second
	}
	if config.TaskTimeout <= 0 {
		config.TaskTimeout = 10 * time.Second
	}
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = 30 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		queue:   q,
		handle:  handle,
		config:  config,
		ctx:     ctx,
		cancel:  cancel,
		metrics: q.Metrics(),
	}
}

// Start 启动工作器组
func (w *Worker) Start() {
	for i := 0; i < w.config.WorkerCount; i++ {
		w.wg.Add(1)
		go w.startWorker(i)
	}
}

// startWorker 启动单个工作器
func (w *Worker) startWorker(id int) {
	defer w.wg.Done()

	logger.InfoString("Worker", "Start", fmt.Sprintf("Worker %d started", id))

	for {
		select {
		case <-w.ctx.Done():
			logger.InfoString("Worker", "Stop", fmt.Sprintf("Worker %d stopping", id))
			return
		default:
		}

		if err := w.processNextTask(); err != nil {
			logger.ErrorString("Worker", "Error", fmt.Sprintf("Worker %d error: %v", id, err))
			// 错误恢复延迟
			select {
			case <-w.ctx.Done():
			case <-time.After(time.Second):
			}
		}
	}
}

// processNextTask 读取并处理一个任务，队列为空时直接返回
func (w *Worker) processNextTask() error {
	task, err := w.queue.Pop(w.ctx, w.config.PollTimeout)
	if err != nil {
		if w.ctx.Err() != nil {
			return nil
		}
		return err
	}
	if task == nil {
		return nil
	}
	return w.handleTask(task)
}

// handleTask 处理单个任务，失败时按间隔重新入队
func (w *Worker) handleTask(task *EnrichmentTask) error {
	start := time.Now()
	defer func() {
		w.metrics.RecordLatency(OpProcess, time.Since(start))
	}()

	taskCtx, cancel := context.WithTimeout(context.Background(), w.config.TaskTimeout)
	defer cancel()

	err := w.handle(taskCtx, *task)
	if err == nil {
		w.metrics.RecordSuccess(OpProcess)
		logger.InfoString("Worker", "Enrich", fmt.Sprintf("支付 %d 补写成功 gateway_id:%s attempts:%d", task.PaymentID, task.GatewayID, task.Attempts+1))
		return nil
	}

	w.metrics.RecordError(OpProcess)
	task.Attempts++
	if task.Attempts >= w.config.MaxRetries {
		w.metrics.RecordDropped()
		logger.ErrorString("Worker", "Enrich", fmt.Sprintf("支付 %d 补写失败 %d 次后放弃 错误:%v", task.PaymentID, task.Attempts, err))
		// 完整任务写入日志，便于人工补录
		logger.ErrorJSON("Worker", "DroppedTask", task)
		return nil
	}

	// 关闭时立即重新入队，避免任务丢失
	select {
	case <-w.ctx.Done():
	case <-time.After(w.config.RetryInterval):
	}

	pushCtx, pushCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pushCancel()
	if pushErr := w.queue.Push(pushCtx, *task); pushErr != nil {
		return fmt.Errorf("requeue payment %d: %w", task.PaymentID, pushErr)
	}
	w.metrics.RecordRetry()
	logger.WarnString("Worker", "Enrich", fmt.Sprintf("支付 %d 补写失败，第 %d 次重试 错误:%v", task.PaymentID, task.Attempts, err))
	return nil
}

// Stop 优雅关闭工作器组
func (w *Worker) Stop() {
	w.cancel()

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.InfoString("Worker", "Stop", "All workers stopped gracefully")
	case <-time.After(w.config.ShutdownTimeout):
		logger.WarnString("Worker", "Stop", "Worker shutdown timed out")
	}
}
