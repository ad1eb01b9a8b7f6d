package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfsight/shelfsight/internal/snapshot"
)

func storedSeries(t *testing.T) ([]snapshot.Snapshot, string) {
	t.Helper()
	series := []snapshot.Snapshot{
		{
			CategoryID:   "obd",
			Date:         time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC),
			TotalRevenue: 126000,
			TotalUnits:   1050,
		},
		{
			CategoryID:   "obd",
			Date:         time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
			TotalRevenue: 100000,
			TotalUnits:   1000,
		},
	}
	blob, err := json.Marshal(series)
	require.NoError(t, err)
	return series, string(blob)
}

func TestRedisProviderLoadsAndSorts(t *testing.T) {
	client, mock := redismock.NewClientMock()
	_, blob := storedSeries(t)
	mock.ExpectGet("shelfsight:snapshots:obd").SetVal(blob)

	p := NewRedisProvider(client)
	snaps, err := p.Snapshots(context.Background(), "obd")
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	// The blob stores February first; the provider returns chronological
	// order.
	assert.True(t, snaps[0].Date.Before(snaps[1].Date))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisProviderMissingCategory(t *testing.T) {
	client, mock := redismock.NewClientMock()
	mock.ExpectGet("shelfsight:snapshots:ghost").RedisNil()

	p := NewRedisProvider(client)
	_, err := p.Snapshots(context.Background(), "ghost")
	assert.ErrorIs(t, err, snapshot.ErrCategoryNotFound)
}

func TestRedisProviderBadBlob(t *testing.T) {
	client, mock := redismock.NewClientMock()
	mock.ExpectGet("shelfsight:snapshots:obd").SetVal("not json")

	p := NewRedisProvider(client)
	_, err := p.Snapshots(context.Background(), "obd")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse snapshot blob")
}

// flakyProvider fails a fixed number of times before succeeding.
type flakyProvider struct {
	failures int
	calls    int
}

func (p *flakyProvider) Snapshots(_ context.Context, _ string) ([]snapshot.Snapshot, error) {
	p.calls++
	if p.calls <= p.failures {
		return nil, errors.New("connection refused")
	}
	return []snapshot.Snapshot{}, nil
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	inner := &flakyProvider{failures: 100}
	p := NewBreakerProvider("test", inner)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := p.Snapshots(ctx, "obd")
		require.Error(t, err)
	}
	// The circuit is open now: the inner provider is no longer called.
	before := inner.calls
	_, err := p.Snapshots(ctx, "obd")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "snapshot store unavailable")
	assert.Equal(t, before, inner.calls)
}

// notFoundProvider always reports an unknown category.
type notFoundProvider struct{ calls int }

func (p *notFoundProvider) Snapshots(_ context.Context, categoryID string) ([]snapshot.Snapshot, error) {
	p.calls++
	return nil, snapshot.ErrCategoryNotFound
}

func TestBreakerIgnoresMissingCategories(t *testing.T) {
	inner := &notFoundProvider{}
	p := NewBreakerProvider("test", inner)
	ctx := context.Background()

	// Far more misses than the trip threshold; the circuit must stay
	// closed because a missing category is not a store failure.
	for i := 0; i < 20; i++ {
		_, err := p.Snapshots(ctx, "ghost")
		assert.ErrorIs(t, err, snapshot.ErrCategoryNotFound)
	}
	assert.Equal(t, 20, inner.calls)
}
