package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoaderCachesValue(t *testing.T) {
	l := NewLoader[int](time.Minute, 10)
	defer l.Stop()

	calls := 0
	fetch := func(ctx context.Context) (int, error) {
		calls++
		return 42, nil
	}

	v, err := l.Get(context.Background(), "k", fetch)
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	v, err = l.Get(context.Background(), "k", fetch)
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, 1, calls)
}

func TestLoaderDoesNotCacheErrors(t *testing.T) {
	l := NewLoader[int](time.Minute, 10)
	defer l.Stop()

	calls := 0
	fetch := func(ctx context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 0, errors.New("upstream down")
		}
		return 7, nil
	}

	_, err := l.Get(context.Background(), "k", fetch)
	assert.Error(t, err)

	v, err := l.Get(context.Background(), "k", fetch)
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	assert.Equal(t, 2, calls)
}

func TestLoaderCoalescesConcurrentMisses(t *testing.T) {
	l := NewLoader[int](time.Minute, 10)
	defer l.Stop()

	var calls atomic.Int32
	release := make(chan struct{})
	fetch := func(ctx context.Context) (int, error) {
		calls.Add(1)
		<-release
		return 1, nil
	}

	const goroutines = 8
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			v, err := l.Get(context.Background(), "k", fetch)
			assert.NoError(t, err)
			assert.Equal(t, 1, v)
		}()
	}

	// Give the goroutines a moment to pile up on the same key.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
}

func TestLoaderInvalidate(t *testing.T) {
	l := NewLoader[string](time.Minute, 10)
	defer l.Stop()

	calls := 0
	fetch := func(ctx context.Context) (string, error) {
		calls++
		return "v", nil
	}

	_, err := l.Get(context.Background(), "k", fetch)
	require.NoError(t, err)
	l.Invalidate("k")
	_, err = l.Get(context.Background(), "k", fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestLoaderExpiry(t *testing.T) {
	l := NewLoader[int](30*time.Millisecond, 10)
	defer l.Stop()

	calls := 0
	fetch := func(ctx context.Context) (int, error) {
		calls++
		return calls, nil
	}

	v, _ := l.Get(context.Background(), "k", fetch)
	assert.Equal(t, 1, v)

	time.Sleep(60 * time.Millisecond)

	v, _ = l.Get(context.Background(), "k", fetch)
	assert.Equal(t, 2, v)
}
