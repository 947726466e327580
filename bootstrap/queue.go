package bootstrap

import (
	"time"

	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/pkg/config"
	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/pkg/logger"
	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/pkg/queue"
)

// SetupQueue 启动补写工作器，由调用方在退出时 Stop
func SetupQueue(payments *Payments) *queue.Worker {
	worker := queue.NewWorker(payments.Queue, payments.Service.RetryEnrichment, queue.WorkerConfig{
		WorkerCount:     config.GetInt("queue.worker_count", 2),
		MaxRetries:      config.GetInt("queue.retry_times", 5),
		RetryInterval:   time.Duration(config.GetInt("queue.retry_delay", 2)) * time.Second,
		PollTimeout:     5 * time.Second,
		TaskTimeout:     15 * time.Second,
		ShutdownTimeout: 30 * time.Second,
	})

	worker.Start()

	logger.InfoString("Queue", "Setup", "补写队列启动成功")
	return worker
}
