package ttlmap

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetAndGet(t *testing.T) {
	m := New[string]()
	m.Set("a", "value", time.Minute)

	got, ok := m.Get("a")
	require.True(t, ok)
	assert.Equal(t, "value", got)
}

func TestGetExpiredRemovesEntry(t *testing.T) {
	m := New[string]()
	m.Set("a", "value", time.Millisecond)

	time.Sleep(5 * time.Millisecond)

	_, ok := m.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, m.Len())
}

func TestGetUnknownKey(t *testing.T) {
	m := New[int]()
	_, ok := m.Get("missing")
	assert.False(t, ok)
}

func TestDelete(t *testing.T) {
	m := New[string]()
	m.Set("a", "value", time.Minute)
	m.Delete("a")

	_, ok := m.Get("a")
	assert.False(t, ok)
}

func TestSweepRemovesOnlyExpired(t *testing.T) {
	m := New[string]()
	m.Set("stale", "old", time.Millisecond)
	m.Set("fresh", "new", time.Minute)

	time.Sleep(5 * time.Millisecond)

	removed := m.Sweep()
	assert.Equal(t, 1, removed)

	_, ok := m.Get("fresh")
	assert.True(t, ok)
	assert.Equal(t, 1, m.Len())
}

func TestSetRefreshesExpiry(t *testing.T) {
	m := New[string]()
	m.Set("a", "first", time.Millisecond)
	m.Set("a", "second", time.Minute)

	time.Sleep(5 * time.Millisecond)

	got, ok := m.Get("a")
	require.True(t, ok)
	assert.Equal(t, "second", got)
}

func TestConcurrentAccess(t *testing.T) {
	m := New[int]()
	done := make(chan struct{})

	go func() {
		for i := 0; i < 1000; i++ {
			m.Set("key", i, time.Minute)
		}
		close(done)
	}()
	for i := 0; i < 1000; i++ {
		m.Get("key")
		m.Sweep()
	}
	<-done
}
