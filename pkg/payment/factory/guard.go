package factory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/pkg/logger"
	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/pkg/payment/types"

	"github.com/sony/gobreaker"
)

var errPreferenceAbsent = errors.New("gateway returned no preference")

// GuardedGateway 给网关调用加上超时和熔断
type GuardedGateway struct {
	inner   types.Gateway
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker
}

// Guard 包装网关，failures 次连续失败后熔断，openTimeout 后进入半开
func Guard(inner types.Gateway, timeout time.Duration, failures uint32, openTimeout time.Duration) *GuardedGateway {
	if failures == 0 {
		failures = 5
	}
	settings := gobreaker.Settings{
		Name:    inner.Name(),
		Timeout: openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WarnString("Gateway", "Breaker", fmt.Sprintf("%s 熔断器状态 %s -> %s", name, from, to))
		},
	}
	return &GuardedGateway{
		inner:   inner,
		timeout: timeout,
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

// Name 被包装的网关名称
func (g *GuardedGateway) Name() string {
	return g.inner.Name()
}

// State 当前熔断器状态
func (g *GuardedGateway) State() gobreaker.State {
	return g.breaker.State()
}

// CreatePreference 熔断器打开或超时都视为网关无结果
func (g *GuardedGateway) CreatePreference(ctx context.Context, req *types.PreferenceRequest) (*types.Preference, bool) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	pref, err := executeWithBreaker(g.breaker, func() (*types.Preference, error) {
		pref, ok := g.inner.CreatePreference(ctx, req)
		if !ok {
			return nil, errPreferenceAbsent
		}
		return pref, nil
	})
	if err != nil {
		if !errors.Is(err, errPreferenceAbsent) {
			logger.WarnString("Gateway", "CreatePreference", fmt.Sprintf("%s 调用被拒绝 reference:%s 原因:%v", g.inner.Name(), req.ExternalReference, err))
		}
		return nil, false
	}
	return pref, true
}

func executeWithBreaker[T any](cb *gobreaker.CircuitBreaker, fn func() (T, error)) (T, error) {
	res, err := cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		return *new(T), err
	}
	return res.(T), nil
}
