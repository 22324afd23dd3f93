package manager

import "github.com/exclave-go/exclave/internal/event"

// InterfaceTransport is the manager's view of a connected interface's
// wire. Concrete transports (TCP, WebSocket) implement this and are
// handed to LoadInterface by whichever listener accepted the
// connection; the manager never imports a transport package directly,
// which is what keeps internal/transport/* free to import internal/manager
// without a cycle.
type InterfaceTransport interface {
	// Send renders and writes one outbound status message. An error
	// here causes the manager to deactivate the owning interface with
	// reason "communication error: <e>" (§4.D).
	Send(msg event.ManagerStatusMessage) error

	// Close tears down the underlying connection. Called every time
	// the interface is deactivated, so it may be called more than once
	// (e.g. after a communication error and again at shutdown).
	Close() error
}
