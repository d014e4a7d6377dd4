package event

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestSubscribePublish(t *testing.T) {
	b := NewBus(prometheus.NewRegistry())
	defer b.Stop()

	id, ch := b.Subscribe("test.event")
	defer b.Unsubscribe("test.event", id)

	b.Publish(New("test.event", 42))
	select {
	case evt := <-ch:
		assert.Equal(t, Type("test.event"), evt.Type)
		assert.Equal(t, 42, evt.Data)
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
	}
}

func TestPublishOnlyMatchingType(t *testing.T) {
	b := NewBus(nil)
	defer b.Stop()

	_, ch := b.Subscribe("wanted")
	b.Publish(New("unwanted", "x"))

	select {
	case evt, ok := <-ch:
		if ok {
			t.Fatalf("unexpected event %v", evt)
		}
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSubscribeFunc(t *testing.T) {
	b := NewBus(nil)

	var seen atomic.Int64
	b.SubscribeFunc("counted", func(Event) {
		seen.Add(1)
	})
	for i := 0; i < 5; i++ {
		b.Publish(New("counted", i))
	}
	require.Eventually(t, func() bool {
		return seen.Load() == 5
	}, time.Second, 10*time.Millisecond)

	// Stop closes the channel and joins the handler goroutine
	b.Stop()
	assert.Equal(t, int64(5), seen.Load())
}

func TestSlowSubscriberDoesNotBlockPublish(t *testing.T) {
	b := NewBus(nil)
	defer b.Stop()

	_, ch := b.Subscribe("flood")
	for i := 0; i < 200; i++ {
		b.Publish(New("flood", i))
	}
	// buffer is 64; publishing 200 must not deadlock and the subscriber
	// still sees the earliest events
	evt := <-ch
	assert.Equal(t, 0, evt.Data)
}
