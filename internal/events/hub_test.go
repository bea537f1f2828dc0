// ABOUTME: Tests for the change event hub.
// ABOUTME: Covers fan-out, non-blocking publish, and subscriber cleanup.
package events

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestPublishFansOut(t *testing.T) {
	hub := NewHub(4)
	a := hub.Subscribe()
	b := hub.Subscribe()
	defer a.Close()
	defer b.Close()

	date := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	n := hub.Publish(Upserted(date))
	assert.Equal(t, 2, n)

	for _, s := range []*Subscription{a, b} {
		e := <-s.C()
		assert.Equal(t, KindUpserted, e.Kind)
		assert.Equal(t, "2024-01-02", e.Date)
		assert.False(t, e.At.IsZero())
	}
}

func TestEventIDsAreUniqueAndOrdered(t *testing.T) {
	date := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	first := Upserted(date)
	second := Deleted(date)
	third := Reloaded()

	require.Len(t, first.ID, 26)
	assert.NotEqual(t, first.ID, second.ID)
	assert.LessOrEqual(t, first.ID[:10], third.ID[:10])
	assert.Empty(t, third.Date)
}

func TestPublishDoesNotBlockOnFullSubscriber(t *testing.T) {
	hub := NewHub(1)
	slow := hub.Subscribe()
	defer slow.Close()

	assert.Equal(t, 1, hub.Publish(Reloaded()))
	assert.Equal(t, 0, hub.Publish(Reloaded()))

	e := <-slow.C()
	assert.Equal(t, KindReloaded, e.Kind)
	assert.Empty(t, e.Date)
}

func TestPublishWithoutSubscribers(t *testing.T) {
	hub := NewHub(0)
	assert.Equal(t, 0, hub.Publish(Deleted(time.Now())))
}

func TestSubscriptionClose(t *testing.T) {
	hub := NewHub(4)
	s := hub.Subscribe()
	require.Equal(t, 1, hub.Len())

	s.Close()
	s.Close()

	assert.Equal(t, 0, hub.Len())
	_, ok := <-s.C()
	assert.False(t, ok)
}

func TestHubClose(t *testing.T) {
	hub := NewHub(4)
	s := hub.Subscribe()

	hub.Close()
	hub.Close()

	_, ok := <-s.C()
	assert.False(t, ok)
	s.Close()

	late := hub.Subscribe()
	_, ok = <-late.C()
	assert.False(t, ok)
	assert.Equal(t, 0, hub.Publish(Reloaded()))
}

func TestConcurrentPublishAndSubscribe(t *testing.T) {
	hub := NewHub(8)
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s := hub.Subscribe()
			defer s.Close()
			hub.Publish(Reloaded())
		}()
		go func() {
			defer wg.Done()
			hub.Publish(Upserted(time.Now()))
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, hub.Len())
}
