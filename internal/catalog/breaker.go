// Vetrina - Storefront Recommendation Engine
// Copyright 2026 Nico M. (nmarchetti)
// SPDX-License-Identifier: Apache-2.0
// https://github.com/nmarchetti/vetrina

package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/nmarchetti/vetrina/internal/logging"
	"github.com/nmarchetti/vetrina/internal/metrics"
)

// BreakerConfig holds circuit breaker settings for the catalog store.
type BreakerConfig struct {
	// MaxFailures is the consecutive failure count that opens the circuit.
	MaxFailures uint32

	// Timeout is how long the circuit stays open before allowing a probe.
	Timeout time.Duration
}

// Breaker wraps a Store with a circuit breaker so a down catalog fails fast
// instead of piling up query timeouts. The engine's degrade-to-empty policy
// turns the fast failures into empty recommendation lists.
//
// The breaker uses real time for its open/half-open transitions; tests
// should exercise the wrapped store directly.
type Breaker struct {
	store Store
	cb    *gobreaker.CircuitBreaker[interface{}]
	name  string
}

// NewBreaker wraps a Store with circuit breaker protection.
func NewBreaker(store Store, cfg BreakerConfig) *Breaker {
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = 5
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	cbName := "catalog-store"
	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0) // 0 = closed

	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 3, // Allow 3 probe requests in half-open state
		Interval:    time.Minute,
		Timeout:     cfg.Timeout,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			shouldTrip := counts.ConsecutiveFailures >= cfg.MaxFailures
			if shouldTrip {
				logging.Warn().
					Uint32("consecutive_failures", counts.ConsecutiveFailures).
					Msg("Opening catalog circuit breaker")
			}
			return shouldTrip
		},

		// A missing product is a valid answer, not a store failure
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound)
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)

			logging.Info().
				Str("breaker", name).
				Str("from", fromStr).
				Str("to", toStr).
				Msg("Catalog circuit breaker state transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})

	return &Breaker{store: store, cb: cb, name: cbName}
}

// execute wraps a store call with circuit breaker protection.
func (b *Breaker) execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := b.cb.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
		} else {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
		}
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	return result, nil
}

// castResult safely type-casts the circuit breaker result.
func castResult[T any](result interface{}, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	typed, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

// GetProduct returns a single product with circuit breaker protection.
func (b *Breaker) GetProduct(ctx context.Context, id string) (*Product, error) {
	return castResult[*Product](b.execute(func() (interface{}, error) {
		return b.store.GetProduct(ctx, id)
	}))
}

// GetCategory returns a single category with circuit breaker protection.
func (b *Breaker) GetCategory(ctx context.Context, id string) (*Category, error) {
	return castResult[*Category](b.execute(func() (interface{}, error) {
		return b.store.GetCategory(ctx, id)
	}))
}

// ListActiveByCategory lists category products with circuit breaker protection.
func (b *Breaker) ListActiveByCategory(ctx context.Context, categoryID string, limit int) ([]Product, error) {
	return castResult[[]Product](b.execute(func() (interface{}, error) {
		return b.store.ListActiveByCategory(ctx, categoryID, limit)
	}))
}

// ListPopular lists popular products with circuit breaker protection.
func (b *Breaker) ListPopular(ctx context.Context, limit int) ([]Product, error) {
	return castResult[[]Product](b.execute(func() (interface{}, error) {
		return b.store.ListPopular(ctx, limit)
	}))
}

// ListRecent lists recent products with circuit breaker protection.
func (b *Breaker) ListRecent(ctx context.Context, limit int) ([]Product, error) {
	return castResult[[]Product](b.execute(func() (interface{}, error) {
		return b.store.ListRecent(ctx, limit)
	}))
}

// ListByIDs hydrates products with circuit breaker protection.
func (b *Breaker) ListByIDs(ctx context.Context, ids []string) ([]Product, error) {
	return castResult[[]Product](b.execute(func() (interface{}, error) {
		return b.store.ListByIDs(ctx, ids)
	}))
}

// GetCartProductIDs returns cart contents with circuit breaker protection.
func (b *Breaker) GetCartProductIDs(ctx context.Context, userID string) ([]string, error) {
	return castResult[[]string](b.execute(func() (interface{}, error) {
		return b.store.GetCartProductIDs(ctx, userID)
	}))
}

// GetCompletedOrderIDs returns order IDs with circuit breaker protection.
func (b *Breaker) GetCompletedOrderIDs(ctx context.Context, userID string) ([]string, error) {
	return castResult[[]string](b.execute(func() (interface{}, error) {
		return b.store.GetCompletedOrderIDs(ctx, userID)
	}))
}

// GetOrderProductIDs returns order line product IDs with circuit breaker protection.
func (b *Breaker) GetOrderProductIDs(ctx context.Context, orderIDs []string) ([]string, error) {
	return castResult[[]string](b.execute(func() (interface{}, error) {
		return b.store.GetOrderProductIDs(ctx, orderIDs)
	}))
}

// ListCoPurchased returns co-occurrence counts with circuit breaker protection.
func (b *Breaker) ListCoPurchased(ctx context.Context, productIDs []string, limit int) ([]CoPurchase, error) {
	return castResult[[]CoPurchase](b.execute(func() (interface{}, error) {
		return b.store.ListCoPurchased(ctx, productIDs, limit)
	}))
}

// stateToFloat converts circuit breaker state to a numeric value for metrics.
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// stateToString converts circuit breaker state to a string for logging.
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

var _ Store = (*Breaker)(nil)
