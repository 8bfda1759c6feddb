package rate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLimiterWindow(t *testing.T) {
	l, err := NewMemory(16)
	require.NoError(t, err)
	now := time.Now()
	l.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		ok, _ := l.Allow("vote:1", 3, time.Minute)
		assert.True(t, ok, "request %d", i)
	}
	ok, retry := l.Allow("vote:1", 3, time.Minute)
	assert.False(t, ok)
	assert.Equal(t, time.Minute, retry)

	// other keys keep their own budget
	ok, _ = l.Allow("vote:2", 3, time.Minute)
	assert.True(t, ok)

	now = now.Add(time.Minute + time.Second)
	ok, _ = l.Allow("vote:1", 3, time.Minute)
	assert.True(t, ok, "window should reset")
}

func TestMemoryLimiterBoundedKeys(t *testing.T) {
	l, err := NewMemory(2)
	require.NoError(t, err)

	l.Allow("a", 1, time.Minute)
	l.Allow("b", 1, time.Minute)
	l.Allow("c", 1, time.Minute)
	assert.Equal(t, 2, l.buckets.Len())

	// "a" was evicted, so it starts a fresh window
	ok, _ := l.Allow("a", 1, time.Minute)
	assert.True(t, ok)
}
