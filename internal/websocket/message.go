package websocket

import (
	"github.com/goccy/go-json"
	"github.com/isdelr/machine-monitor-be/internal/models"
)

// Message actions sent to clients.
const (
	ActionPrediction = "prediction"
	ActionError      = "error"
)

// Message defines the structure for websocket messages.
type Message struct {
	Action  string      `json:"action"`
	Payload interface{} `json:"payload"`
}

// NewPredictionMessage encodes a prediction for the live feed.
func NewPredictionMessage(p models.PredictionResult) []byte {
	return encode(Message{Action: ActionPrediction, Payload: p})
}

// NewErrorMessage encodes an error notice for a single client.
func NewErrorMessage(msg string) []byte {
	return encode(Message{Action: ActionError, Payload: map[string]string{"message": msg}})
}

func encode(m Message) []byte {
	b, err := json.Marshal(m)
	if err != nil {
		return []byte(`{"action":"error","payload":{"message":"encoding failed"}}`)
	}
	return b
}
