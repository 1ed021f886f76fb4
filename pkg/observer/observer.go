package observer

import "regwatch/models/entities"

type EventType int

const (
	NewUpdatesEvent    EventType = 1
	RefreshFailedEvent EventType = 2
)

type Event struct {
	E       EventType
	Updates []entities.RegulatoryUpdate
}

func NewUpdates(updates []entities.RegulatoryUpdate) Event {
	return Event{E: NewUpdatesEvent, Updates: updates}
}

func RefreshFailed() Event {
	return Event{E: RefreshFailedEvent}
}

type Observer interface {
	OnNotify(Event)
}

type Notifier interface {
	RegisterObserver(Observer)
}
