package middlewares

import (
	"sync"
	"time"

	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/pkg/app"
	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/pkg/config"
	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/pkg/limiter"
	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/pkg/logger"
	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/pkg/redis"
	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/pkg/response"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cast"
	"golang.org/x/time/rate"
)

const (
	// DefaultBurst 默认突发请求数量
	DefaultBurst = 100
)

var (
	// 用于存储限流器的并发安全缓存
	limiters sync.Map
	// 限流器最后一次被使用的时间
	lastAccess sync.Map
	// 清理协程只启动一次
	cleanupOnce sync.Once
)

// LimitIP 全局限流中间件，针对 IP 进行限流，令牌桶保存在进程内
//
// 支持的限流格式:
// - 5 reqs/second:   "5-S"
// - 10 reqs/minute:  "10-M"
// - 1000 reqs/hour:  "1000-H"
// - 2000 reqs/day:   "2000-D"
func LimitIP(limit string) gin.HandlerFunc {
	// 测试环境使用较大限制
	if app.IsTesting() {
		limit = "1000000-H"
	}

	cleanupOnce.Do(func() { go cleanupLimiters() })

	return func(c *gin.Context) {
		key := limit + ":" + limiter.GetKeyIP(c)

		lim, err := getLimiter(key, limit)
		if err != nil {
			logger.ErrorString("限流器", "创建失败", err.Error())
			// 降级处理：允许请求通过
			c.Next()
			return
		}
		lastAccess.Store(key, time.Now())

		if !lim.Allow() {
			response.Abort429(c)
			return
		}

		c.Header("X-RateLimit-Limit", cast.ToString(lim.Limit()))
		c.Header("X-RateLimit-Remaining", cast.ToString(int(lim.Tokens())))
		c.Next()
	}
}

// LimitPerRoute 针对单个路由的限流中间件，按 路由+IP 计数
//
// 配置了 Redis 时计数保存在 Redis 中，多个实例共享；否则保存在进程内
func LimitPerRoute(limit string) gin.HandlerFunc {
	if app.IsTesting() {
		limit = "1000000-H"
	}

	var client *goredis.Client
	if rds := redis.GetRedis(redis.MainDB); rds != nil {
		client = rds.Client
	}

	lim, err := limiter.New(client, config.GetString("app.name"), limit)
	if err != nil {
		logger.ErrorString("限流器", "创建失败", err.Error())
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		result, err := limiter.CheckRate(c, lim, limiter.GetKeyRouteWithIP(c))
		if err != nil {
			logger.LogIf(err)
			// 存储异常时放行
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", cast.ToString(result.Limit))
		c.Header("X-RateLimit-Remaining", cast.ToString(result.Remaining))
		c.Header("X-RateLimit-Reset", cast.ToString(result.Reset))

		if result.Reached {
			response.Abort429(c)
			return
		}
		c.Next()
	}
}

// getLimiter 获取或创建令牌桶
func getLimiter(key, limit string) (*rate.Limiter, error) {
	if lim, exists := limiters.Load(key); exists {
		return lim.(*rate.Limiter), nil
	}

	r, err := limiter.ParseLimit(limit)
	if err != nil {
		return nil, err
	}

	lim := rate.NewLimiter(rate.Limit(r.Rate), DefaultBurst)
	actual, _ := limiters.LoadOrStore(key, lim)
	return actual.(*rate.Limiter), nil
}

// cleanupLimiters 定期清理 24 小时未使用的令牌桶
func cleanupLimiters() {
	ticker := time.NewTicker(time.Hour)
	for range ticker.C {
		now := time.Now()
		lastAccess.Range(func(key, value interface{}) bool {
			if now.Sub(value.(time.Time)) > 24*time.Hour {
				limiters.Delete(key)
				lastAccess.Delete(key)
			}
			return true
		})
	}
}
