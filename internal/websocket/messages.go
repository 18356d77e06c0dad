package websocket

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/aurayouth/server/domain/entities"
)

// InboundMessage is a chat message received from a client.
type InboundMessage struct {
	Message string         `json:"message"`
	Context map[string]any `json:"context,omitempty"`
}

// ParseInboundMessage decodes and validates a client frame.
func ParseInboundMessage(data []byte) (*InboundMessage, error) {
	var msg InboundMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Message == "" {
		return nil, errors.New("message is required")
	}
	return &msg, nil
}

// BotMessage is the companion's reply pushed to a client.
type BotMessage struct {
	ID             string                `json:"id"`
	Type           string                `json:"type"`
	Content        string                `json:"content"`
	Emotion        entities.EmotionLabel `json:"emotion"`
	Confidence     float64               `json:"confidence"`
	CrisisDetected bool                  `json:"crisis_detected"`
	CrisisType     *entities.CrisisType  `json:"crisis_type,omitempty"`
	Timestamp      string                `json:"timestamp"`
}

// NewBotMessage wraps a pipeline result as an outbound frame.
func NewBotMessage(content string, emotion entities.EmotionLabel, confidence float64, crisisDetected bool, crisisType *entities.CrisisType) BotMessage {
	return BotMessage{
		ID:             uuid.NewString(),
		Type:           "bot",
		Content:        content,
		Emotion:        emotion,
		Confidence:     confidence,
		CrisisDetected: crisisDetected,
		CrisisType:     crisisType,
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
	}
}

// ErrorMessage reports a client error without closing the connection.
type ErrorMessage struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// NewErrorMessage builds an error frame.
func NewErrorMessage(reason string) ErrorMessage {
	return ErrorMessage{Type: "error", Error: reason}
}
