/*
Package redis 提供 Redis 连接和操作的工具包

业务库（MainDB）用于限流和 Webhook 投递记录，队列库（QueueDB）用于重试队列。
*/
package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// 关键配置常量
const (
	// DefaultPoolSize Redis 连接池大小
	DefaultPoolSize = 50
	// DefaultTimeout 默认操作超时时间
	DefaultTimeout = 5 * time.Second
	// DefaultMinIdleConns 最小空闲连接数
	DefaultMinIdleConns = 5
	// DefaultMaxRetries 最大重试次数
	DefaultMaxRetries = 3
	// DefaultIdleTimeout 空闲超时
	DefaultIdleTimeout = 5 * time.Minute
)

// RedisInstance Redis 实例类型
type RedisInstance string

const (
	MainDB  RedisInstance = "main"  // 主数据库实例（限流、Webhook 投递记录）
	QueueDB RedisInstance = "queue" // 队列数据库实例
)

// RedisClient Redis 客户端封装
type RedisClient struct {
	Client *redis.Client
}

// RedisConfig Redis 配置结构
type RedisConfig struct {
	Address      string
	Username     string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	Timeout      time.Duration
}

// RedisManager 按用途管理多个库的连接
type RedisManager struct {
	instances map[RedisInstance]*RedisClient
	mutex     sync.RWMutex
}

var (
	once    sync.Once
	Manager *RedisManager
)

// NewClient 创建新的 Redis 客户端并测试连接
func NewClient(config RedisConfig) (*RedisClient, error) {
	if config.PoolSize == 0 {
		config.PoolSize = DefaultPoolSize
	}
	if config.MinIdleConns == 0 {
		config.MinIdleConns = DefaultMinIdleConns
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}

	rds := &RedisClient{
		Client: redis.NewClient(&redis.Options{
			Addr:         config.Address,
			Username:     config.Username,
			Password:     config.Password,
			DB:           config.DB,
			PoolSize:     config.PoolSize,
			MinIdleConns: config.MinIdleConns,

			// 连接池配置
			PoolTimeout:     config.Timeout,
			ConnMaxIdleTime: DefaultIdleTimeout,
			ConnMaxLifetime: 24 * time.Hour,

			// 读写超时
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,

			// 重试策略
			MaxRetries:      DefaultMaxRetries,
			MinRetryBackoff: 8 * time.Millisecond,
			MaxRetryBackoff: 512 * time.Millisecond,
		}),
	}

	if err := rds.Ping(context.Background()); err != nil {
		_ = rds.Client.Close()
		return nil, fmt.Errorf("redis 连接失败 %s/%d: %w", config.Address, config.DB, err)
	}
	return rds, nil
}

// Ping 测试 Redis 连接
func (rds *RedisClient) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()
	return rds.Client.Ping(ctx).Err()
}

// IncrWithTTL 计数加一并刷新过期时间，返回加一后的值
func (rds *RedisClient) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	pipe := rds.Client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// LPush 写入列表头部
func (rds *RedisClient) LPush(ctx context.Context, key string, value []byte) error {
	return rds.Client.LPush(ctx, key, value).Err()
}

// BRPop 阻塞读取列表尾部，超时返回 (nil, nil)
func (rds *RedisClient) BRPop(ctx context.Context, timeout time.Duration, key string) ([]byte, error) {
	result, err := rds.Client.BRPop(ctx, timeout, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(result) != 2 {
		return nil, fmt.Errorf("invalid brpop result: %v", result)
	}
	return []byte(result[1]), nil
}

// InitRedis 初始化 Redis 管理器，连接失败时返回错误，由调用方决定是否降级
func InitRedis(address, username, password string, mainDB, queueDB int) error {
	var initErr error
	once.Do(func() {
		manager := &RedisManager{
			instances: make(map[RedisInstance]*RedisClient),
		}

		for instance, db := range map[RedisInstance]int{MainDB: mainDB, QueueDB: queueDB} {
			client, err := NewClient(RedisConfig{
				Address:  address,
				Username: username,
				Password: password,
				DB:       db,
			})
			if err != nil {
				initErr = err
				return
			}
			manager.instances[instance] = client
		}
		Manager = manager
	})
	return initErr
}

// GetRedis 获取指定的 Redis 实例，未初始化时返回 nil
func GetRedis(instance RedisInstance) *RedisClient {
	if Manager == nil {
		return nil
	}
	Manager.mutex.RLock()
	defer Manager.mutex.RUnlock()
	return Manager.instances[instance]
}

// Close 关闭所有连接
func Close() {
	if Manager == nil {
		return
	}
	Manager.mutex.Lock()
	defer Manager.mutex.Unlock()
	for _, client := range Manager.instances {
		_ = client.Client.Close()
	}
}
