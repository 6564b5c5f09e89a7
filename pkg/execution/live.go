package execution

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/barforge/engine/pkg/domain"
)

// BrokerAdapter is the external collaborator a live or paper deployment
// plugs in. Its implementation (credentials, wire protocol) is out of
// scope — LiveExecutor only depends on this narrow contract.
type BrokerAdapter interface {
	PlaceOrder(ctx context.Context, req PlaceOrderRequest) (domain.Order, error)
	ModifyOrder(ctx context.Context, orderID string, stopLoss, takeProfit *float64) (domain.Order, error)
	CancelOrder(ctx context.Context, orderID string) error
	ClosePosition(ctx context.Context, positionID string) error
	GetPositions(ctx context.Context) ([]domain.Position, error)
}

// LiveExecutor adapts a BrokerAdapter to OrderExecutor, tripping a circuit
// breaker around every call so a flaky broker connection degrades to fast
// failures instead of hanging the engine's bar loop.
type LiveExecutor struct {
	broker BrokerAdapter
	cb     *gobreaker.CircuitBreaker[any]
}

// NewLiveExecutor wraps broker with a circuit breaker named for logging.
// Defaults mirror a conservative broker-facing breaker: trip after 5
// consecutive failures or a 60% failure ratio once at least 3 requests
// have been observed, half-open after 30s.
func NewLiveExecutor(name string, broker BrokerAdapter) *LiveExecutor {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && (counts.ConsecutiveFailures >= 5 || failureRatio >= 0.6)
		},
	}
	return &LiveExecutor{broker: broker, cb: gobreaker.NewCircuitBreaker[any](settings)}
}

func (e *LiveExecutor) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (domain.Order, error) {
	result, err := e.cb.Execute(func() (any, error) {
		return e.broker.PlaceOrder(ctx, req)
	})
	if err != nil {
		return domain.Order{}, fmt.Errorf("%w: place order: %w", ErrExternal, err)
	}
	return result.(domain.Order), nil
}

func (e *LiveExecutor) ModifyOrder(ctx context.Context, orderID string, stopLoss, takeProfit *float64) (domain.Order, error) {
	result, err := e.cb.Execute(func() (any, error) {
		return e.broker.ModifyOrder(ctx, orderID, stopLoss, takeProfit)
	})
	if err != nil {
		return domain.Order{}, fmt.Errorf("%w: modify order: %w", ErrExternal, err)
	}
	return result.(domain.Order), nil
}

func (e *LiveExecutor) CancelOrder(ctx context.Context, orderID string) error {
	_, err := e.cb.Execute(func() (any, error) {
		return nil, e.broker.CancelOrder(ctx, orderID)
	})
	if err != nil {
		return fmt.Errorf("%w: cancel order: %w", ErrExternal, err)
	}
	return nil
}

func (e *LiveExecutor) ClosePosition(ctx context.Context, positionID string) error {
	_, err := e.cb.Execute(func() (any, error) {
		return nil, e.broker.ClosePosition(ctx, positionID)
	})
	if err != nil {
		return fmt.Errorf("%w: close position: %w", ErrExternal, err)
	}
	return nil
}

func (e *LiveExecutor) GetPositions(ctx context.Context) ([]domain.Position, error) {
	result, err := e.cb.Execute(func() (any, error) {
		return e.broker.GetPositions(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: get positions: %w", ErrExternal, err)
	}
	return result.([]domain.Position), nil
}
