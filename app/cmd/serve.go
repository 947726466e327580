package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/bootstrap"
	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/pkg/app"
	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/pkg/config"
	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/pkg/database"
	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/pkg/logger"
	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/pkg/redis"
	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/routes"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

// CmdServe 启动 Web 服务
var CmdServe = &cobra.Command{
	Use:   "serve",
	Short: "Start the payment API server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	shutdownTracing, err := bootstrap.SetupTracing(ctx)
	if err != nil {
		// 链路上报失败不影响服务
		logger.ErrorString("Tracing", "Setup", err.Error())
	}

	// 数据库不可用时直接退出
	if err := bootstrap.SetupDB(!app.IsProduction()); err != nil {
		return err
	}
	defer func() { logger.LogIf(database.Close()) }()

	if bootstrap.SetupRedis() {
		defer redis.Close()
	}

	payments, err := bootstrap.SetupPayments()
	if err != nil {
		return err
	}

	worker := bootstrap.SetupQueue(payments)

	// gin 生产模式减少不必要的日志输出
	if !config.GetBool("app.debug") {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	bootstrap.SetupRoute(router, routes.Deps{
		Payments:         payments.Service,
		Queue:            payments.Queue,
		Gateway:          payments.Gateway,
		JWTSecret:        config.GetString("jwt.secret"),
		APIRateLimit:     config.GetString("app.api_rate_limit"),
		WebhookRateLimit: config.GetString("app.webhook_rate_limit"),
	})

	server := &http.Server{
		Addr:              ":" + config.Get("app.port"),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.InfoString("Server", "Start", "服务器正在启动，监听端口 "+server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		worker.Stop()
		return err
	case <-quit:
	}

	logger.InfoString("Server", "Shutdown", "正在关闭服务器...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.ErrorString("Server", "Shutdown", err.Error())
	}
	worker.Stop()
	logger.LogIf(shutdownTracing(shutdownCtx))

	logger.InfoString("Server", "Shutdown", "服务器已成功关闭")
	return nil
}
