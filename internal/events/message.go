package events

import "encoding/json"

const (
	KindCreationRecorded  = "creation.recorded"
	KindCreationPublished = "creation.published"
)

// Message is the payload sent to downstream consumers (community feed,
// moderation, analytics).
type Message struct {
	Kind       string `json:"kind"`
	CreationID string `json:"creationId"`
	UserID     string `json:"userId"`
	Type       string `json:"type"`
	RequestID  string `json:"requestId,omitempty"`
	OccurredAt string `json:"occurredAt"`
	Version    int    `json:"version"`
}

// EncodeMessage returns the JSON representation of a message.
func EncodeMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}

// DecodeMessage parses a JSON payload into a Message.
func DecodeMessage(payload []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return Message{}, err
	}
	return msg, nil
}
