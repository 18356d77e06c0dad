package api

import (
	"time"

	"github.com/aurayouth/server/domain/entities"
)

// LoginRequest is the payload for user authentication
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse contains the issued JWT token
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// ChatRequest is the payload for the REST chat endpoint
type ChatRequest struct {
	Message string         `json:"message"`
	UserID  string         `json:"user_id"`
	Context map[string]any `json:"context,omitempty"`
}

// MultimodalChatRequest additionally references uploaded media files
type MultimodalChatRequest struct {
	Message   string         `json:"message"`
	UserID    string         `json:"user_id"`
	Context   map[string]any `json:"context,omitempty"`
	AudioFile string         `json:"audio_file,omitempty"`
	VideoFile string         `json:"video_file,omitempty"`
}

// ChatResponse is what both chat endpoints return
type ChatResponse struct {
	Response       string                `json:"response"`
	Emotion        entities.EmotionLabel `json:"emotion"`
	Confidence     float64               `json:"confidence"`
	CrisisDetected bool                  `json:"crisis_detected,omitempty"`
	CrisisType     *entities.CrisisType  `json:"crisis_type,omitempty"`
}

// UploadResponse reports where an uploaded media file was stored
type UploadResponse struct {
	FilePath string `json:"file_path"`
	Message  string `json:"message"`
}

// ErrorResponse is the common error envelope
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
