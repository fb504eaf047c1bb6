package proto

import "encoding/json"

// System notification types the broker originates on its own behalf.
const (
	EventClientJoinedServer  = "ClientJoinedServer"
	EventClientLeftServer    = "ClientLeftServer"
	EventClientJoinedChannel = "ClientJoinedChannel"
	EventClientLeftChannel   = "ClientLeftChannel"
	EventChannelDeleted      = "ChannelDeletedByOwner"
)

// Event is a system notification nested inside a message Data payload,
// serialized with the same encoding as the envelope itself.
type Event struct {
	EventType string `json:"EventType"`
	Data      string `json:"Data"`
}

// Marshal encodes the event for embedding into a message payload.
func (e Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// ParseEvent decodes an event from a message payload. The second return
// is false when the payload is not an event record.
func ParseEvent(data []byte) (Event, bool) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return Event{}, false
	}
	if e.EventType == "" {
		return Event{}, false
	}
	return e, true
}
