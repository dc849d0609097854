package events

import (
	"encoding/json"
	"time"
)

// ChangeMessage announces that a collection changed in some process sharing
// the database. It carries no document data: consumers re-read the
// collection and republish the snapshot, which keeps delivery idempotent.
type ChangeMessage struct {
	Collection string    `json:"collection"`
	Origin     string    `json:"origin"`
	Timestamp  time.Time `json:"timestamp"`
}

func NewChangeMessage(collection, origin string) *ChangeMessage {
	return &ChangeMessage{
		Collection: collection,
		Origin:     origin,
		Timestamp:  time.Now(),
	}
}

func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
