package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"

	"github.com/shelfsight/shelfsight/internal/snapshot"
)

// BreakerProvider wraps a snapshot provider in a circuit breaker so a flaky
// backing store fails fast instead of stalling every question.
type BreakerProvider struct {
	inner   snapshot.Provider
	breaker *gobreaker.CircuitBreaker
}

// NewBreakerProvider wraps inner with standard trip settings: five
// consecutive failures open the circuit for thirty seconds.
func NewBreakerProvider(name string, inner snapshot.Provider) *BreakerProvider {
	settings := gobreaker.Settings{
		Name:    name,
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("store", name).
				Str("from", from.String()).Str("to", to.String()).
				Msg("Snapshot store breaker state changed")
		},
	}
	return &BreakerProvider{
		inner:   inner,
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

// Snapshots delegates through the breaker. A missing category is an ordinary
// outcome, not a store failure, so it never counts toward tripping.
func (p *BreakerProvider) Snapshots(ctx context.Context, categoryID string) ([]snapshot.Snapshot, error) {
	var notFound error
	result, err := p.breaker.Execute(func() (interface{}, error) {
		snaps, err := p.inner.Snapshots(ctx, categoryID)
		if errors.Is(err, snapshot.ErrCategoryNotFound) {
			notFound = err
			return []snapshot.Snapshot(nil), nil
		}
		return snaps, err
	})
	if err != nil {
		return nil, fmt.Errorf("snapshot store unavailable: %w", err)
	}
	if notFound != nil {
		return nil, notFound
	}
	return result.([]snapshot.Snapshot), nil
}
