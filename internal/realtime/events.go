package realtime

import "encoding/json"

type EventType string

const (
	// EventOnlineUsers carries the full set of user IDs currently bound on
	// this worker. Always a complete snapshot, never a diff.
	EventOnlineUsers EventType = "onlineUsers"

	// EventNewMessage carries a persisted message record pushed to its
	// receiver.
	EventNewMessage EventType = "newMessage"
)

type Event struct {
	Event EventType       `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func marshalEvent(eventType EventType, data any) ([]byte, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Event{
		Event: eventType,
		Data:  dataBytes,
	})
}
