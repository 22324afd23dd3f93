package manager

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exclave-go/exclave/internal/event"
	"github.com/exclave-go/exclave/internal/unit"
)

// fakeTransport is an in-memory InterfaceTransport for tests.
type fakeTransport struct {
	mu       sync.Mutex
	sent     []event.ManagerStatusMessage
	closed   bool
	failNext bool
}

func (f *fakeTransport) Send(msg event.ManagerStatusMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext {
		return errors.New("peer gone")
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeTransport) snapshot() []event.ManagerStatusMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]event.ManagerStatusMessage, len(f.sent))
	copy(out, f.sent)
	return out
}

func TestInterfaceReceivesHelloOnActivate(t *testing.T) {
	m, _ := newTestManager(t)
	transport := &fakeTransport{}

	name, err := m.LoadInterface(&InterfaceDescription{ID: "console"}, transport)
	require.NoError(t, err)

	require.NoError(t, m.Activate(name))

	assert.Eventually(t, func() bool {
		for _, msg := range transport.snapshot() {
			if msg.Kind == event.MsgHello {
				return true
			}
		}
		return false
	}, time.Second, 10*time.Millisecond)
}

func TestInterfaceDisconnectDeactivatesOnlyThatInterface(t *testing.T) {
	m, rec := newTestManager(t)

	good := &fakeTransport{}
	bad := &fakeTransport{}

	goodName, err := m.LoadInterface(&InterfaceDescription{ID: "good"}, good)
	require.NoError(t, err)
	badName, err := m.LoadInterface(&InterfaceDescription{ID: "bad"}, bad)
	require.NoError(t, err)

	require.NoError(t, m.Activate(goodName))
	require.NoError(t, m.Activate(badName))

	assert.Eventually(t, func() bool {
		return len(good.snapshot()) > 0 && len(bad.snapshot()) > 0
	}, time.Second, 10*time.Millisecond)

	bad.mu.Lock()
	bad.failNext = true
	bad.mu.Unlock()

	// Any subsequent outbound message to bad will fail and trigger its
	// deactivation; a log broadcast reaches every interface.
	m.Broadcaster().Broadcast(event.NewLog(event.NewInfoEntry(unit.Name{}, "ping")))

	assert.Eventually(t, func() bool {
		return bad.closed
	}, time.Second, 10*time.Millisecond)

	assert.Eventually(t, func() bool {
		iface := m.GetInterfaceNamed(goodName)
		return iface != nil && iface.State() == unit.Active
	}, time.Second, 10*time.Millisecond)

	foundDeactivateSuccess := false
	for _, e := range rec.snapshot() {
		if e.Kind == event.KindStatus && e.Status.Name == badName && e.Status.Status == event.StatusDeactivateSuccess {
			foundDeactivateSuccess = true
		}
	}
	assert.True(t, foundDeactivateSuccess, "expected a DeactivateSuccess status for the disconnected interface")
}
