// Package event defines the vocabulary carried on the unit broadcaster:
// the outward UnitEvent envelope and the two message sets exchanged
// between the manager and the outside world (ManagerControlMessage
// inbound, ManagerStatusMessage outbound). It has no dependency on the
// broadcaster or the manager themselves, which is what lets both of
// those packages share this vocabulary without an import cycle.
package event

import (
	"time"

	"github.com/exclave-go/exclave/internal/unit"
)

// Kind discriminates the variants of UnitEvent.
type Kind int

const (
	// KindStatus carries a UnitStatusEvent.
	KindStatus Kind = iota
	// KindLog carries a LogEntry.
	KindLog
	// KindManagerRequest carries a ManagerControlMessage.
	KindManagerRequest
	// KindRescanRequest asks the external unit watcher to re-enumerate.
	KindRescanRequest
	// KindShutdown asks every subscriber to wind down.
	KindShutdown
	// KindCategory reports a per-kind registry count.
	KindCategory
)

// UnitEvent is the single type multicast by the broadcaster (component
// B). Only the field matching Kind is populated; events are immutable
// once broadcast, so callers must treat every field as read-only.
type UnitEvent struct {
	Kind     Kind
	Status   UnitStatusEvent
	Log      LogEntry
	Request  ManagerControlMessage
	Category CategoryEvent
}

// CategoryEvent reports how many units of a given kind are currently
// registered, used for coarse-grained reporting to interfaces.
type CategoryEvent struct {
	Kind  unit.Kind
	Count int
}

// Status distinguishes the kinds of status transition a unit can
// report through a UnitStatusEvent.
type Status int

const (
	// StatusLoaded fires when load_<kind> successfully inserts a unit.
	StatusLoaded Status = iota
	// StatusUnitIncompatible fires when a description fails validation
	// at load time; the unit is never inserted.
	StatusUnitIncompatible
	// StatusActive fires when a unit becomes the relevant current
	// selection/activation for its kind (see §4.G on the status
	// projector, which reacts specifically to this variant).
	StatusActive
	// StatusActiveFailed fires when activation (or an already-active
	// unit) fails.
	StatusActiveFailed
	// StatusDeselected fires when a unit is deselected.
	StatusDeselected
	// StatusDeactivateSuccess fires when deactivation completes
	// cleanly.
	StatusDeactivateSuccess
	// StatusDeactivateFailure fires when deactivation's kind-specific
	// teardown reports an error; never fatal to the manager.
	StatusDeactivateFailure
)

// UnitStatusEvent reports a lifecycle transition (or failure) for one
// unit.
type UnitStatusEvent struct {
	Name    unit.Name
	Status  Status
	Message string
}

// NewLoaded builds a StatusLoaded event.
func NewLoaded(name unit.Name) UnitEvent {
	return statusEvent(UnitStatusEvent{Name: name, Status: StatusLoaded})
}

// NewUnitIncompatible builds a StatusUnitIncompatible event.
func NewUnitIncompatible(name unit.Name, message string) UnitEvent {
	return statusEvent(UnitStatusEvent{Name: name, Status: StatusUnitIncompatible, Message: message})
}

// NewActive builds a StatusActive event.
func NewActive(name unit.Name) UnitEvent {
	return statusEvent(UnitStatusEvent{Name: name, Status: StatusActive})
}

// NewActiveFailed builds a StatusActiveFailed event.
func NewActiveFailed(name unit.Name, message string) UnitEvent {
	return statusEvent(UnitStatusEvent{Name: name, Status: StatusActiveFailed, Message: message})
}

// NewDeselected builds a StatusDeselected event.
func NewDeselected(name unit.Name, reason string) UnitEvent {
	return statusEvent(UnitStatusEvent{Name: name, Status: StatusDeselected, Message: reason})
}

// NewDeactivateSuccess builds a StatusDeactivateSuccess event.
func NewDeactivateSuccess(name unit.Name, reason string) UnitEvent {
	return statusEvent(UnitStatusEvent{Name: name, Status: StatusDeactivateSuccess, Message: reason})
}

// NewDeactivateFailure builds a StatusDeactivateFailure event.
func NewDeactivateFailure(name unit.Name, message string) UnitEvent {
	return statusEvent(UnitStatusEvent{Name: name, Status: StatusDeactivateFailure, Message: message})
}

func statusEvent(s UnitStatusEvent) UnitEvent {
	return UnitEvent{Kind: KindStatus, Status: s}
}

// NewLog wraps a LogEntry as a UnitEvent.
func NewLog(entry LogEntry) UnitEvent {
	return UnitEvent{Kind: KindLog, Log: entry}
}

// NewManagerRequest wraps a ManagerControlMessage as a UnitEvent.
func NewManagerRequest(msg ManagerControlMessage) UnitEvent {
	return UnitEvent{Kind: KindManagerRequest, Request: msg}
}

// NewRescanRequest builds a RescanRequest event.
func NewRescanRequest() UnitEvent {
	return UnitEvent{Kind: KindRescanRequest}
}

// NewShutdown builds a Shutdown event.
func NewShutdown() UnitEvent {
	return UnitEvent{Kind: KindShutdown}
}

// NewCategory builds a Category event.
func NewCategory(kind unit.Kind, count int) UnitEvent {
	return UnitEvent{Kind: KindCategory, Category: CategoryEvent{Kind: kind, Count: count}}
}

// LogLevel is the severity of a LogEntry.
type LogLevel int

const (
	LevelInfo LogLevel = iota
	LevelError
	LevelDebug
)

func (l LogLevel) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelError:
		return "error"
	case LevelDebug:
		return "debug"
	default:
		return "unknown"
	}
}

// LogEntry is a single log line attributed to the unit that produced
// it.
type LogEntry struct {
	Source    unit.Name
	Level     LogLevel
	Text      string
	Timestamp time.Time
}

// NewInfoEntry builds an info-level LogEntry.
func NewInfoEntry(source unit.Name, text string) LogEntry {
	return LogEntry{Source: source, Level: LevelInfo, Text: text, Timestamp: time.Now()}
}

// NewErrorEntry builds an error-level LogEntry.
func NewErrorEntry(source unit.Name, text string) LogEntry {
	return LogEntry{Source: source, Level: LevelError, Text: text, Timestamp: time.Now()}
}

// NewDebugEntry builds a debug-level LogEntry.
func NewDebugEntry(source unit.Name, text string) LogEntry {
	return LogEntry{Source: source, Level: LevelDebug, Text: text, Timestamp: time.Now()}
}
