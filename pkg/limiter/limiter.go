// Package limiter 处理限流逻辑
package limiter

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	limiterlib "github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

// Rate 每秒速率，给进程内令牌桶使用
type Rate struct {
	Rate float64
}

// ParseLimit 解析限流配置字符串
// 支持的格式: "5-S"、"10-M"、"1000-H"、"2000-D"
func ParseLimit(limit string) (*Rate, error) {
	r, err := formattedRate(limit)
	if err != nil {
		return nil, err
	}
	return &Rate{Rate: float64(r.Limit) / r.Period.Seconds()}, nil
}

// formattedRate 使用 limiterlib 解析 "数量-单位" 格式
func formattedRate(limit string) (limiterlib.Rate, error) {
	r, err := limiterlib.NewRateFromFormatted(strings.ToUpper(strings.TrimSpace(limit)))
	if err != nil {
		return limiterlib.Rate{}, fmt.Errorf("invalid limit format %q: %w", limit, err)
	}
	return r, nil
}

// GetKeyIP 获取 Limitor 的 Key，IP
func GetKeyIP(c *gin.Context) string {
	return c.ClientIP()
}

// GetKeyRouteWithIP Limitor 的 Key，路由+IP，针对单个路由做限流
func GetKeyRouteWithIP(c *gin.Context) string {
	return routeToKeyString(c.FullPath()) + c.ClientIP()
}

// New 创建窗口计数限流器，client 为 nil 时使用进程内存储
func New(client *goredis.Client, prefix, limit string) (*limiterlib.Limiter, error) {
	rate, err := formattedRate(limit)
	if err != nil {
		return nil, err
	}

	options := limiterlib.StoreOptions{
		// 为 limiter 设置前缀，保持 redis 里数据的整洁
		Prefix: prefix + ":limiter",
	}

	var store limiterlib.Store
	if client != nil {
		store, err = sredis.NewStoreWithOptions(client, options)
		if err != nil {
			return nil, err
		}
	} else {
		store = memory.NewStoreWithOptions(options)
	}

	return limiterlib.New(store, rate), nil
}

// CheckRate 检测请求是否超额
func CheckRate(c *gin.Context, lim *limiterlib.Limiter, key string) (limiterlib.Context, error) {
	// 同一个请求经过多个限流中间件时只计一次
	if c.GetBool("limiter-once") {
		// Peek() 取结果，不增加访问次数
		return lim.Peek(c, key)
	}
	c.Set("limiter-once", true)

	// Get() 取结果且增加访问次数
	return lim.Get(c, key)
}

// routeToKeyString 辅助方法，将 URL 中的 / 格式为 -
func routeToKeyString(routeName string) string {
	routeName = strings.ReplaceAll(routeName, "/", "-")
	routeName = strings.ReplaceAll(routeName, ":", "_")
	return routeName
}
