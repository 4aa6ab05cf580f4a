package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ticketstats/ticketstats/internal/adapter/store"
	"github.com/ticketstats/ticketstats/internal/domain"
)

// MockFetcher is a mock implementation of ports.Fetcher
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) Fetch(ctx context.Context) ([]byte, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// gatedFetcher blocks every fetch until release is closed or the fetch context ends
type gatedFetcher struct {
	calls   int32
	release chan struct{}
}

func newGatedFetcher() *gatedFetcher {
	return &gatedFetcher{release: make(chan struct{})}
}

func (f *gatedFetcher) Fetch(ctx context.Context) ([]byte, error) {
	atomic.AddInt32(&f.calls, 1)
	select {
	case <-f.release:
		return []byte(`[]`), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *gatedFetcher) Calls() int {
	return int(atomic.LoadInt32(&f.calls))
}

func newTestCache(fetcher *MockFetcher, clock clockwork.Clock) *Cache {
	return New(fetcher, store.NewMemory(), WithClock(clock), WithFreshness(60*time.Second))
}

func TestCache_ServesSameSnapshotWithinInterval(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC))
	fetcher := &MockFetcher{}
	fetcher.On("Fetch", mock.Anything).Return([]byte(`[]`), nil).Once()

	c := newTestCache(fetcher, clock)
	ctx := context.Background()

	first, err := c.Get(ctx)
	require.NoError(t, err)

	clock.Advance(59 * time.Second)
	second, err := c.Get(ctx)
	require.NoError(t, err)

	assert.Same(t, first, second)
	fetcher.AssertNumberOfCalls(t, "Fetch", 1)
}

func TestCache_RefetchesOnceAfterInterval(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC))
	fetcher := &MockFetcher{}
	fetcher.On("Fetch", mock.Anything).Return([]byte(`[]`), nil).Once()
	fetcher.On("Fetch", mock.Anything).Return([]byte(`[{"ticketId":1}]`), nil).Once()

	c := newTestCache(fetcher, clock)
	ctx := context.Background()

	first, err := c.Get(ctx)
	require.NoError(t, err)

	clock.Advance(60 * time.Second)
	second, err := c.Get(ctx)
	require.NoError(t, err)
	third, err := c.Get(ctx)
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.Same(t, second, third)
	assert.Equal(t, clock.Now(), second.FetchedAt)
	fetcher.AssertNumberOfCalls(t, "Fetch", 2)
}

func TestCache_FetchErrorOnEmptyCache(t *testing.T) {
	fetchErr := &domain.FetchError{URL: "http://upstream", StatusCode: 503}
	fetcher := &MockFetcher{}
	fetcher.On("Fetch", mock.Anything).Return(nil, fetchErr)

	c := newTestCache(fetcher, clockwork.NewFakeClock())

	snapshot, err := c.Get(context.Background())
	assert.Nil(t, snapshot)
	assert.True(t, errors.Is(err, domain.ErrFetch))
}

func TestCache_FailedRefetchKeepsHeldSnapshot(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC))
	fetcher := &MockFetcher{}
	fetcher.On("Fetch", mock.Anything).Return([]byte(`[]`), nil).Once()
	fetcher.On("Fetch", mock.Anything).Return(nil, &domain.FetchError{URL: "http://upstream"}).Once()
	fetcher.On("Fetch", mock.Anything).Return([]byte(`[]`), nil).Once()

	s := store.NewMemory()
	c := New(fetcher, s, WithClock(clock))
	ctx := context.Background()

	first, err := c.Get(ctx)
	require.NoError(t, err)

	clock.Advance(2 * time.Minute)
	_, err = c.Get(ctx)
	require.Error(t, err)

	held, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Same(t, first, held)

	// still stale, so the next call fetches again
	_, err = c.Get(ctx)
	require.NoError(t, err)
	fetcher.AssertNumberOfCalls(t, "Fetch", 3)
}

func TestCache_ConcurrentCallersShareOneFetch(t *testing.T) {
	release := make(chan struct{})
	fetcher := &MockFetcher{}
	fetcher.On("Fetch", mock.Anything).
		Run(func(mock.Arguments) { <-release }).
		Return([]byte(`[]`), nil)

	c := newTestCache(fetcher, clockwork.NewFakeClock())

	const callers = 8
	var wg sync.WaitGroup
	results := make([]*domain.Snapshot, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			snapshot, err := c.Get(context.Background())
			assert.NoError(t, err)
			results[i] = snapshot
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	fetcher.AssertNumberOfCalls(t, "Fetch", 1)
	for _, snapshot := range results {
		assert.Same(t, results[0], snapshot)
	}
}

func TestCache_CancelledCallerDoesNotFailSharedFetch(t *testing.T) {
	fetcher := newGatedFetcher()
	c := New(fetcher, store.NewMemory(), WithClock(clockwork.NewFakeClock()))

	firstCtx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := c.Get(firstCtx)
		firstErr <- err
	}()
	require.Eventually(t, func() bool { return fetcher.Calls() == 1 }, time.Second, time.Millisecond)

	type result struct {
		snapshot *domain.Snapshot
		err      error
	}
	second := make(chan result, 1)
	go func() {
		snapshot, err := c.Get(context.Background())
		second <- result{snapshot, err}
	}()
	time.Sleep(50 * time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(fetcher.release)
	got := <-second
	require.NoError(t, got.err)
	assert.NotNil(t, got.snapshot)
	assert.Equal(t, 1, fetcher.Calls())
}

func TestCache_WithoutSingleFlightEachCallerFetches(t *testing.T) {
	fetcher := newGatedFetcher()
	c := New(fetcher, store.NewMemory(), WithClock(clockwork.NewFakeClock()), WithSingleFlight(false))

	const callers = 5
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Get(context.Background())
			assert.NoError(t, err)
		}()
	}

	require.Eventually(t, func() bool { return fetcher.Calls() == callers }, time.Second, time.Millisecond)
	close(fetcher.release)
	wg.Wait()

	assert.Equal(t, callers, fetcher.Calls())
}

func TestCache_Age(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC))
	fetcher := &MockFetcher{}
	fetcher.On("Fetch", mock.Anything).Return([]byte(`[]`), nil)

	c := newTestCache(fetcher, clock)
	ctx := context.Background()

	_, ok, err := c.Age(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = c.Get(ctx)
	require.NoError(t, err)
	clock.Advance(15 * time.Second)

	age, ok, err := c.Age(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 15*time.Second, age)
}
