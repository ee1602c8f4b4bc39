package engine

// Store is the persistence boundary. The engine treats it as a side effect:
// authoritative state lives in memory under the room's single writer, and a
// store failure rolls the in-memory state back rather than leaving a partial
// transition behind.
type Store interface {
	SaveRoom(snap RoomSnapshot) error
	SaveRoomConfig(cfg RoomConfig, snap RoomSnapshot) error
	SaveSession(snap SessionSnapshot) error
	AppendEvents(events []Event) error
	LoadRooms() ([]RoomConfig, error)
}

// Sink receives resolved events for offline analytics. Publish failures are
// the sink's problem; they never fail the action that produced the event.
type Sink interface {
	Publish(ev Event)
}

// Broadcaster fans deltas out to connected viewers of a room.
type Broadcaster interface {
	BroadcastRoom(roomID uint, msgType string, data any)
}

type nopSink struct{}

func (nopSink) Publish(Event) {}

// NopSink drops every event; used when no analytics transport is configured.
func NopSink() Sink { return nopSink{} }

type nopBroadcaster struct{}

func (nopBroadcaster) BroadcastRoom(uint, string, any) {}

// NopBroadcaster is used in tests and headless tools.
func NopBroadcaster() Broadcaster { return nopBroadcaster{} }
