package repositories

import (
	"context"
	"errors"

	"github.com/aurayouth/server/domain/entities"
)

// ErrGeneratorUnavailable signals that the external generation service could
// not produce a reply. Callers fall through to the next response tier.
var ErrGeneratorUnavailable = errors.New("reply generator unavailable")

// Role defines the type of message sender in a transcript.
type Role string

const (
	UserRole      Role = "user"
	AssistantRole Role = "assistant"
)

// ChatMessage represents a single message in a conversation transcript.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ReplyRequest carries everything the external generator may use.
type ReplyRequest struct {
	Message    string
	UserID     string
	Emotion    entities.EmotionLabel
	Confidence float64
	Transcript []ChatMessage
}

// ReplyGenerator abstracts an optional external text-generation service.
// Any failure, timeout or empty result is reported as ErrGeneratorUnavailable
// rather than surfaced to the end user.
type ReplyGenerator interface {
	GenerateReply(ctx context.Context, req ReplyRequest) (string, error)
}
