package ratelimit

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ middleware.RateLimiterStore = (*FixedWindow)(nil)

func newLimiter(t *testing.T) (*FixedWindow, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClock()
	fw, err := NewFixedWindow(DefaultLimit, DefaultWindow, clock)
	require.NoError(t, err)
	return fw, clock
}

func allowN(t *testing.T, fw *FixedWindow, id string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		ok, err := fw.Allow(id)
		require.NoError(t, err)
		require.True(t, ok, "request %d for %s should be allowed", i+1, id)
	}
}

func TestFixedWindow_101stRequestDenied(t *testing.T) {
	fw, _ := newLimiter(t)

	allowN(t, fw, "203.0.113.7", 100)

	ok, err := fw.Allow("203.0.113.7")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFixedWindow_OtherClientUnaffected(t *testing.T) {
	fw, _ := newLimiter(t)

	allowN(t, fw, "203.0.113.7", 100)
	ok, _ := fw.Allow("203.0.113.7")
	require.False(t, ok)

	ok, err := fw.Allow("198.51.100.2")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFixedWindow_ResetsAfterWindow(t *testing.T) {
	fw, clock := newLimiter(t)

	allowN(t, fw, "a", 100)
	clock.Advance(DefaultWindow - time.Second)
	ok, _ := fw.Allow("a")
	assert.False(t, ok, "still inside the first window")

	clock.Advance(time.Second)
	ok, _ = fw.Allow("a")
	assert.True(t, ok, "a new window opens once the old one elapses")
}

func TestFixedWindow_WindowStartsAtFirstRequest(t *testing.T) {
	fw, clock := newLimiter(t)

	clock.Advance(10 * time.Minute)
	allowN(t, fw, "late", 100)

	// 10 minutes after the client's first request its window is still open
	clock.Advance(10 * time.Minute)
	ok, _ := fw.Allow("late")
	assert.False(t, ok)
}

func TestFixedWindow_Quota(t *testing.T) {
	fw, clock := newLimiter(t)
	start := clock.Now()

	remaining, reset := fw.Quota("q")
	assert.Equal(t, 100, remaining)
	assert.Equal(t, start.Add(DefaultWindow), reset)

	allowN(t, fw, "q", 30)
	clock.Advance(time.Minute)

	remaining, reset = fw.Quota("q")
	assert.Equal(t, 70, remaining)
	assert.Equal(t, start.Add(DefaultWindow), reset)

	allowN(t, fw, "q", 70)
	_, _ = fw.Allow("q")
	remaining, _ = fw.Quota("q")
	assert.Zero(t, remaining)
}

func TestFixedWindow_SweepsExpiredWindows(t *testing.T) {
	fw, clock := newLimiter(t)

	allowN(t, fw, "a", 1)
	allowN(t, fw, "b", 1)
	assert.Equal(t, 2, fw.tracked())

	clock.Advance(DefaultWindow)
	allowN(t, fw, "c", 1)
	assert.Equal(t, 1, fw.tracked())
}

func TestNewFixedWindow_Validation(t *testing.T) {
	clock := clockwork.NewFakeClock()

	_, err := NewFixedWindow(0, time.Minute, clock)
	assert.Error(t, err)

	_, err = NewFixedWindow(10, 0, clock)
	assert.Error(t, err)

	fw, err := NewFixedWindow(10, time.Minute, clock)
	require.NoError(t, err)
	assert.Equal(t, 10, fw.Limit())
	assert.Equal(t, time.Minute, fw.Window())
}
