package bootstrap

import (
	"net/http"
	"strings"

	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/app/http/middlewares"
	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/pkg/response"
	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/routes"

	"github.com/gin-gonic/gin"
)

// SetupRoute 路由初始化
// 1. 注册全局中间件
// 2. 注册 API 路由
// 3. 配置 404 处理器
func SetupRoute(router *gin.Engine, deps routes.Deps) {
	registerGlobalMiddleWare(router)

	routes.RegisterAPIRoutes(router, deps)

	setup404Handler(router)
}

// registerGlobalMiddleWare 注册全局中间件，作用于所有请求
func registerGlobalMiddleWare(router *gin.Engine) {
	router.Use(
		middlewares.Logger(),   // 记录请求日志
		middlewares.Recovery(), // 在发生 panic 时恢复
	)
}

// setup404Handler 根据请求的 Accept 头返回不同格式的 404 响应
func setup404Handler(router *gin.Engine) {
	router.NoRoute(func(c *gin.Context) {
		if strings.Contains(c.Request.Header.Get("Accept"), "text/html") {
			c.String(http.StatusNotFound, "404 page not found")
			return
		}
		response.Abort404(c, "Route not found. Check the URL and the HTTP method.")
	})
}
