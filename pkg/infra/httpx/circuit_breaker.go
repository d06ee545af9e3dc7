package httpx

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
)

// ErrCircuitOpen reports that the breaker short-circuited the call without
// invoking the protected operation. Callers must treat it as upstream
// unavailability, never as an accepted result.
var ErrCircuitOpen = errors.New("circuit breaker is open")

//go:generate mockery --name=CircuitBreaker --dir=. --output=../../../mocks --filename=circuit_breaker_mock.go --case=underscore

// CircuitBreaker isolates one upstream dependency. Every call through the
// same instance feeds the same rolling failure window, so concurrent callers
// interact through breaker state on purpose: the breaker protects the shared
// dependency, not a per-request resource.
type CircuitBreaker interface {
	// Execute runs fn under the breaker's call timeout. While the breaker is
	// open it returns ErrCircuitOpen immediately without invoking fn.
	Execute(ctx context.Context, fn func(ctx context.Context) error) error
	// State returns the current breaker state name for observability.
	State() string
}

// BreakerSettings configures one breaker instance. Two independently tuned
// instances are expected process-wide: a classifier breaker (short timeout,
// tolerant) and a storage breaker (long timeout, strict).
type BreakerSettings struct {
	Name string
	// CallTimeout bounds each protected call; exceeding it counts as a failure.
	CallTimeout time.Duration
	// ErrorThresholdPercentage trips the breaker once the failure ratio in the
	// rolling window reaches this percentage, provided MinRequests were seen.
	ErrorThresholdPercentage float64
	// MinRequests is the request floor below which the ratio is not evaluated.
	MinRequests uint32
	// ResetTimeout is how long the breaker stays open before allowing probes.
	ResetTimeout time.Duration
	// Interval is the rolling observation window while closed.
	Interval time.Duration
	// HalfOpenMaxRequests limits concurrent probe calls while half-open.
	HalfOpenMaxRequests uint32
	// OnStateChange is invoked on every transition. Observability only; it
	// must never feed back into call decisions.
	OnStateChange func(name, from, to string)
}

type circuitBreakerWrapper struct {
	breaker     *gobreaker.CircuitBreaker
	callTimeout time.Duration
}

func NewCircuitBreaker(settings BreakerSettings) CircuitBreaker {
	if settings.MinRequests == 0 {
		settings.MinRequests = 1
	}
	if settings.HalfOpenMaxRequests == 0 {
		settings.HalfOpenMaxRequests = 1
	}

	gbSettings := gobreaker.Settings{
		Name:        settings.Name,
		MaxRequests: settings.HalfOpenMaxRequests,
		Interval:    settings.Interval,
		Timeout:     settings.ResetTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < settings.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio*100 >= settings.ErrorThresholdPercentage
		},
	}
	if settings.OnStateChange != nil {
		onChange := settings.OnStateChange
		gbSettings.OnStateChange = func(name string, from, to gobreaker.State) {
			onChange(name, from.String(), to.String())
		}
	}

	return &circuitBreakerWrapper{
		breaker:     gobreaker.NewCircuitBreaker(gbSettings),
		callTimeout: settings.CallTimeout,
	}
}

func (g *circuitBreakerWrapper) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	_, err := g.breaker.Execute(func() (interface{}, error) {
		return nil, g.call(ctx, fn)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("%w (%s)", ErrCircuitOpen, g.breaker.Name())
		}
		return fmt.Errorf("breaker (%s): %w", g.breaker.Name(), err)
	}
	return nil
}

// call enforces the wall-clock timeout even when fn ignores its context: the
// select abandons the call once the deadline passes and the timeout is
// recorded as a failure in the breaker window.
func (g *circuitBreakerWrapper) call(ctx context.Context, fn func(ctx context.Context) error) error {
	if g.callTimeout <= 0 {
		return fn(ctx)
	}

	callCtx, cancel := context.WithTimeout(ctx, g.callTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- fn(callCtx)
	}()

	select {
	case err := <-done:
		return err
	case <-callCtx.Done():
		return callCtx.Err()
	}
}

func (g *circuitBreakerWrapper) State() string {
	return g.breaker.State().String()
}
