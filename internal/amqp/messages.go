package amqp

import (
	"encoding/json"
	"time"
)

// RecordChangeMessage tells the export worker that one record of a
// collection changed. It carries only the coordinates; the worker fetches
// the current row from the database, so a stale message never exports stale
// data.
type RecordChangeMessage struct {
	Collection string    `json:"collection"`
	ID         int64     `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
}

func NewRecordChangeMessage(collection string, id int64) *RecordChangeMessage {
	return &RecordChangeMessage{
		Collection: collection,
		ID:         id,
		Timestamp:  time.Now(),
	}
}

func (m *RecordChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func RecordChangeMessageFromJSON(data []byte) (*RecordChangeMessage, error) {
	var msg RecordChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
