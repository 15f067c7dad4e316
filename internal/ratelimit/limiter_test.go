package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memCounter struct {
	counts      map[string]int64
	expires     map[string]time.Duration
	err         error
	failExpires int
	expireCalls int
}

func newMemCounter() *memCounter {
	return &memCounter{counts: map[string]int64{}, expires: map[string]time.Duration{}}
}

func (m *memCounter) Incr(_ context.Context, key string) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.counts[key]++
	return m.counts[key], nil
}

func (m *memCounter) Expire(_ context.Context, key string, d time.Duration) (bool, error) {
	m.expireCalls++
	if m.failExpires > 0 {
		m.failExpires--
		return false, errors.New("connection reset")
	}
	m.expires[key] = d
	return true, nil
}

func (m *memCounter) TTL(_ context.Context, key string) (time.Duration, error) {
	if d, ok := m.expires[key]; ok {
		return d, nil
	}
	if _, ok := m.counts[key]; ok {
		return -1, nil
	}
	return -2, nil
}

// elapse ends every window that has a TTL.
func (m *memCounter) elapse() {
	for key := range m.expires {
		delete(m.counts, key)
		delete(m.expires, key)
	}
}

func TestLimiter_Allow(t *testing.T) {
	counter := newMemCounter()
	l := New(counter, 2, time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := l.Allow(ctx, "10.0.0.1", "price")
		require.NoError(t, err)
		assert.True(t, ok)
	}

	ok, err := l.Allow(ctx, "10.0.0.1", "price")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = l.Allow(ctx, "10.0.0.2", "price")
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Equal(t, time.Minute, counter.expires["ratelimit:10.0.0.1:price"])
}

func TestLimiter_Disabled(t *testing.T) {
	counter := newMemCounter()
	counter.err = errors.New("must not be called")

	ok, err := New(counter, 0, time.Minute).Allow(context.Background(), "x", "y")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLimiter_CounterError(t *testing.T) {
	counter := newMemCounter()
	counter.err = errors.New("redis down")

	_, err := New(counter, 5, time.Minute).Allow(context.Background(), "x", "y")
	assert.Error(t, err)
}

func TestLimiter_RearmsWindowAfterLostExpire(t *testing.T) {
	counter := newMemCounter()
	counter.failExpires = 1
	l := New(counter, 3, time.Minute)
	ctx := context.Background()

	_, err := l.Allow(ctx, "10.0.0.1", "price")
	require.Error(t, err)

	for i := 0; i < 2; i++ {
		ok, err := l.Allow(ctx, "10.0.0.1", "price")
		require.NoError(t, err)
		assert.True(t, ok)
	}

	ok, err := l.Allow(ctx, "10.0.0.1", "price")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, time.Minute, counter.expires["ratelimit:10.0.0.1:price"])
	assert.Equal(t, 2, counter.expireCalls)

	ok, err = l.Allow(ctx, "10.0.0.1", "price")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 2, counter.expireCalls, "an armed window is not touched")

	counter.elapse()

	ok, err = l.Allow(ctx, "10.0.0.1", "price")
	require.NoError(t, err)
	assert.True(t, ok, "subject is allowed again once the window ends")
}
