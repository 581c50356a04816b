package numerator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu         sync.Mutex
	counters   map[string]int64
	increments int
}

func newFakeStore() *fakeStore {
	return &fakeStore{counters: make(map[string]int64)}
}

func (s *fakeStore) Increment(ctx context.Context, key string, delta int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[key] += delta
	s.increments++
	return s.counters[key], nil
}

var may = time.Date(2026, 5, 15, 0, 0, 0, 0, time.UTC)

func TestStrictMonthlyFolios(t *testing.T) {
	store := newFakeStore()
	svc := New(store)
	ctx := context.Background()

	first, err := svc.Next(ctx, JournalConfig(), nil, may)
	require.NoError(t, err)
	assert.Equal(t, "POL-202605-0001", first)

	second, err := svc.Next(ctx, JournalConfig(), nil, may)
	require.NoError(t, err)
	assert.Equal(t, "POL-202605-0002", second)

	// The sequence resets with the month.
	june, err := svc.Next(ctx, JournalConfig(), nil, may.AddDate(0, 1, 0))
	require.NoError(t, err)
	assert.Equal(t, "POL-202606-0001", june)
}

func TestYearlyResetFormat(t *testing.T) {
	svc := New(newFakeStore())

	num, err := svc.Next(context.Background(), DefaultConfig("FUL"), nil, may)
	require.NoError(t, err)
	assert.Equal(t, "FUL-2026-00001", num)
}

func TestNeverResetFormat(t *testing.T) {
	svc := New(newFakeStore())
	cfg := Config{Prefix: "DOC", PadWidth: 3, ResetPeriod: "never"}

	num, err := svc.Next(context.Background(), cfg, nil, may)
	require.NoError(t, err)
	assert.Equal(t, "DOC-001", num)
}

func TestCachedStrategyReservesRanges(t *testing.T) {
	store := newFakeStore()
	svc := New(store)
	ctx := context.Background()
	opts := &Options{Strategy: StrategyCached, RangeSize: 10}

	for i := 1; i <= 15; i++ {
		num, err := svc.Next(ctx, DefaultConfig("FUL"), opts, may)
		require.NoError(t, err)
		assert.Equal(t, ParseNumber(num), int64(i))
	}

	// 15 numbers cost only two store round trips.
	assert.Equal(t, 2, store.increments)
}

func TestStrictConcurrentNumbersAreUnique(t *testing.T) {
	svc := New(newFakeStore())
	ctx := context.Background()

	const workers = 20
	results := make(chan string, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			num, err := svc.Next(ctx, JournalConfig(), nil, may)
			assert.NoError(t, err)
			results <- num
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[string]bool)
	for num := range results {
		assert.False(t, seen[num], num)
		seen[num] = true
	}
	assert.Len(t, seen, workers)
}

func TestParseNumber(t *testing.T) {
	assert.Equal(t, int64(42), ParseNumber("POL-202605-0042"))
	assert.Equal(t, int64(7), ParseNumber("DOC-007"))
	assert.Equal(t, int64(-1), ParseNumber("garbage"))
}

func TestUninitializedService(t *testing.T) {
	var svc *Service
	_, err := svc.Next(context.Background(), JournalConfig(), nil, may)
	require.Error(t, err)
}
