package entities

import "time"

// MaxConversationTurns bounds the per-user chat transcript kept for
// generation context.
const MaxConversationTurns = 20

// ConversationTurn is one user message and the companion's reply.
type ConversationTurn struct {
	UserMessage string       `json:"user_message"`
	BotResponse string       `json:"bot_response"`
	Emotion     EmotionLabel `json:"emotion"`
	Confidence  float64      `json:"confidence"`
	Timestamp   time.Time    `json:"timestamp"`
}
