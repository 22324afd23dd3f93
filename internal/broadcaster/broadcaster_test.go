package broadcaster

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exclave-go/exclave/internal/event"
	"github.com/exclave-go/exclave/internal/unit"
)

func mustName(t *testing.T, id, kind string) unit.Name {
	t.Helper()
	n, err := unit.NewName(id, kind)
	require.NoError(t, err)
	return n
}

func TestSubscribeReceivesBroadcast(t *testing.T) {
	b := New()
	sub := b.Subscribe()
	defer sub.Close()

	jig := mustName(t, "generic", "jig")
	b.Broadcast(event.NewLoaded(jig))

	select {
	case e := <-sub.Events():
		require.Equal(t, event.KindStatus, e.Kind)
		assert.Equal(t, jig, e.Status.Name)
		assert.Equal(t, event.StatusLoaded, e.Status.Status)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestBroadcastBeforeSubscribeIsNotDelivered(t *testing.T) {
	b := New()
	b.Broadcast(event.NewShutdown())

	sub := b.Subscribe()
	defer sub.Close()

	select {
	case e := <-sub.Events():
		t.Fatalf("unexpected event delivered: %+v", e)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestFanOutOrderingIsConsistentAcrossSubscribers(t *testing.T) {
	b := New()
	subA := b.Subscribe()
	subB := b.Subscribe()
	defer subA.Close()
	defer subB.Close()

	jig := mustName(t, "generic", "jig")
	scenario := mustName(t, "three", "scenario")

	b.Broadcast(event.NewLoaded(jig))
	b.Broadcast(event.NewLoaded(scenario))

	for _, sub := range []*Subscription{subA, subB} {
		first := recv(t, sub)
		second := recv(t, sub)
		assert.Equal(t, jig, first.Status.Name)
		assert.Equal(t, scenario, second.Status.Name)
	}
}

func TestConcurrentBroadcastsPreserveTotalOrderAcrossSubscribers(t *testing.T) {
	b := New()
	subA := b.Subscribe()
	subB := b.Subscribe()
	defer subA.Close()
	defer subB.Close()

	const goroutines = 8
	const perGoroutine = 200

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for g := 0; g < goroutines; g++ {
		go func(g int) {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				b.Broadcast(event.NewLog(event.NewInfoEntry(unit.Name{}, fmt.Sprintf("g%d-%d", g, i))))
			}
		}(g)
	}
	wg.Wait()

	total := goroutines * perGoroutine
	seqA := drainLogTexts(t, subA, total)
	seqB := drainLogTexts(t, subB, total)

	// Two independent subscribers must observe the interleaving of
	// concurrent Broadcast calls in exactly the same order; this is
	// the property that requires Broadcast to serialize against
	// itself, not just against Subscribe.
	require.Equal(t, seqA, seqB)
}

func drainLogTexts(t *testing.T, sub *Subscription, n int) []string {
	t.Helper()
	out := make([]string, 0, n)
	for len(out) < n {
		select {
		case e := <-sub.Events():
			require.Equal(t, event.KindLog, e.Kind)
			out = append(out, e.Log.Text)
		case <-time.After(2 * time.Second):
			t.Fatalf("only drained %d of %d events", len(out), n)
		}
	}
	return out
}

func TestSlowConsumerDoesNotBlockBroadcast(t *testing.T) {
	b := New()
	sub := b.Subscribe()
	defer sub.Close()

	jig := mustName(t, "generic", "jig")

	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			b.Broadcast(event.NewLoaded(jig))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("broadcast blocked on unread subscription")
	}

	drained := 0
	for drained < 1000 {
		select {
		case <-sub.Events():
			drained++
		case <-time.After(time.Second):
			t.Fatalf("only drained %d of 1000 queued events", drained)
		}
	}
}

func TestCloseStopsDeliveryAndIsIdempotent(t *testing.T) {
	b := New()
	sub := b.Subscribe()
	require.Equal(t, 1, b.Count())

	sub.Close()
	sub.Close() // must not panic

	jig := mustName(t, "generic", "jig")
	b.Broadcast(event.NewLoaded(jig))

	assert.Eventually(t, func() bool { return b.Count() == 0 }, time.Second, 10*time.Millisecond)
}

func recv(t *testing.T, sub *Subscription) event.UnitEvent {
	t.Helper()
	select {
	case e := <-sub.Events():
		return e
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return event.UnitEvent{}
	}
}
