package session

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbxark/hrbot/types"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestGetCreatesLazily(t *testing.T) {
	t.Parallel()
	store := NewStore(time.Hour)
	assert.Equal(t, 0, store.Len())

	s := store.Get("chat-1")
	require.NotNil(t, s)
	assert.Equal(t, types.StateLanguageSelection, s.State)
	assert.Same(t, s, store.Get("chat-1"))
	assert.Equal(t, 1, store.Len())
}

func TestResetStartsFresh(t *testing.T) {
	t.Parallel()
	store := NewStore(time.Hour)
	s, release := store.Acquire("chat-1")
	s.State = types.StateNextStep
	release()

	store.Reset("chat-1")
	assert.Equal(t, 0, store.Len())
	assert.Equal(t, types.StateLanguageSelection, store.Get("chat-1").State)
}

func TestAcquireSerializesSameConversation(t *testing.T) {
	t.Parallel()
	store := NewStore(time.Hour)
	var inside, maxInside atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, release := store.Acquire("chat-1")
			defer release()
			n := inside.Add(1)
			for {
				m := maxInside.Load()
				if n <= m || maxInside.CompareAndSwap(m, n) {
					break
				}
			}
			s.QuizCursor++
			time.Sleep(time.Millisecond)
			inside.Add(-1)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), maxInside.Load())
	assert.Equal(t, 20, store.Get("chat-1").QuizCursor)
}

func TestAcquireAfterResetWhileWaiting(t *testing.T) {
	t.Parallel()
	store := NewStore(time.Hour)
	s, release := store.Acquire("chat-1")
	s.State = types.StateQuiz

	got := make(chan *Session)
	go func() {
		waiting, done := store.Acquire("chat-1")
		defer done()
		got <- waiting
	}()
	time.Sleep(10 * time.Millisecond)
	store.Reset("chat-1")
	release()

	fresh := <-got
	assert.NotSame(t, s, fresh)
	assert.Equal(t, types.StateLanguageSelection, fresh.State)
}

func TestSweepEvictsIdleSessions(t *testing.T) {
	t.Parallel()
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	var evicted []string
	store := NewStore(time.Hour, WithClock(clock.Now), WithEvictHook(func(id string) {
		evicted = append(evicted, id)
	}))

	store.Get("idle")
	clock.Advance(50 * time.Minute)
	_, release := store.Acquire("active")
	release()
	clock.Advance(20 * time.Minute)

	assert.Equal(t, 1, store.Sweep())
	assert.Equal(t, []string{"idle"}, evicted)
	assert.Equal(t, 1, store.Len())
}

func TestSweepSkipsBusySessions(t *testing.T) {
	t.Parallel()
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	store := NewStore(time.Minute, WithClock(clock.Now))

	_, release := store.Acquire("busy")
	clock.Advance(time.Hour)
	assert.Equal(t, 0, store.Sweep())
	release()
	assert.Equal(t, 0, store.Sweep())
	clock.Advance(time.Hour)
	assert.Equal(t, 1, store.Sweep())
}

func TestSweepDisabledWithZeroTTL(t *testing.T) {
	t.Parallel()
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	store := NewStore(0, WithClock(clock.Now))
	store.Get("a")
	clock.Advance(1000 * time.Hour)
	assert.Equal(t, 0, store.Sweep())
}
