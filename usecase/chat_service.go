package usecase

import (
	"context"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/aurayouth/server/domain/entities"
	"github.com/aurayouth/server/domain/repositories"
)

// maxTrackedUsers bounds the number of distinct users with an in-memory
// transcript. The least recently active user's transcript is evicted first;
// profile history is unaffected since it lives in the repository.
const maxTrackedUsers = 1024

// ChatRequest is one inbound message, optionally with uploaded modality files.
type ChatRequest struct {
	UserID    string
	Message   string
	AudioPath string
	VideoPath string
}

// ChatResult is what the transport layer forwards back to the caller.
type ChatResult struct {
	Response       string
	Emotion        entities.EmotionLabel
	Confidence     float64
	CrisisDetected bool
	CrisisType     *entities.CrisisType
}

// ModalityAnalyzer classifies an uploaded audio or video file. Decode
// failures degrade to a neutral result rather than an error.
type ModalityAnalyzer interface {
	Analyze(path string) entities.ModalityResult
}

// ChatService runs the full message pipeline: crisis gate, text
// classification, multimodal combination, tiered response selection and
// profile recording. It also keeps a bounded per-user transcript handed to
// the generation tier as context.
type ChatService struct {
	emotions  *EmotionService
	responder *ResponderService
	twin      *TwinService
	audio     ModalityAnalyzer
	video     ModalityAnalyzer
	logger    *zap.Logger

	// mu serializes read-modify-write of a user's transcript; the cache
	// itself bounds how many users are tracked at once.
	mu          sync.Mutex
	transcripts *lru.Cache[string, []entities.ConversationTurn]
}

// NewChatService creates the chat pipeline. The audio and video analyzers may
// be nil when the deployment has no media support.
func NewChatService(
	emotions *EmotionService,
	responder *ResponderService,
	twin *TwinService,
	audio ModalityAnalyzer,
	video ModalityAnalyzer,
	logger *zap.Logger,
) *ChatService {
	// lru.New only errors on a non-positive size.
	transcripts, _ := lru.New[string, []entities.ConversationTurn](maxTrackedUsers)
	return &ChatService{
		emotions:    emotions,
		responder:   responder,
		twin:        twin,
		audio:       audio,
		video:       video,
		logger:      logger,
		transcripts: transcripts,
	}
}

// ProcessMessage handles one inbound chat message end to end.
func (s *ChatService) ProcessMessage(ctx context.Context, req ChatRequest) ChatResult {
	// Crisis detection happens once, inside text analysis, and its result is
	// threaded through every downstream consumer.
	text := s.emotions.AnalyzeText(req.Message)

	var audioResult, videoResult *entities.ModalityResult
	if req.AudioPath != "" && s.audio != nil {
		result := s.audio.Analyze(req.AudioPath)
		audioResult = &result
	}
	if req.VideoPath != "" && s.video != nil {
		result := s.video.Analyze(req.VideoPath)
		videoResult = &result
	}

	emotion := s.emotions.Combine(text, audioResult, videoResult)

	response := s.responder.Respond(ctx, req.UserID, req.Message, &emotion, s.transcriptFor(req.UserID))

	s.recordTurn(req.UserID, req.Message, response, &emotion)

	recordedEmotion := text.Label
	if emotion.MultimodalEmotion != nil {
		recordedEmotion = *emotion.MultimodalEmotion
	}
	if err := s.twin.UpdateProfile(ctx, req.UserID, entities.Interaction{
		Message:        req.Message,
		Response:       response,
		Emotion:        recordedEmotion,
		Confidence:     emotion.EffectiveConfidence(),
		CrisisDetected: text.CrisisDetected,
		CrisisType:     text.CrisisType,
		Multimodal:     audioResult != nil || videoResult != nil,
	}); err != nil {
		// Profile persistence is best effort; the reply still goes out.
		s.logger.Error("Failed to update profile",
			zap.String("user_id", req.UserID),
			zap.Error(err))
	}

	result := ChatResult{
		Response:       response,
		Emotion:        emotion.EffectiveEmotion(),
		Confidence:     emotion.EffectiveConfidence(),
		CrisisDetected: text.CrisisDetected,
		CrisisType:     text.CrisisType,
	}
	if text.CrisisDetected {
		result.Emotion = entities.EmotionCrisis
	}
	return result
}

// transcriptFor returns the recent conversation as generator context.
func (s *ChatService) transcriptFor(userID string) []repositories.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	turns, _ := s.transcripts.Get(userID)
	messages := make([]repositories.ChatMessage, 0, len(turns)*2)
	for _, turn := range turns {
		messages = append(messages,
			repositories.ChatMessage{Role: repositories.UserRole, Content: turn.UserMessage},
			repositories.ChatMessage{Role: repositories.AssistantRole, Content: turn.BotResponse},
		)
	}
	return messages
}

func (s *ChatService) recordTurn(userID, message, response string, emotion *entities.MultimodalResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	turns, _ := s.transcripts.Get(userID)
	turns = append(turns, entities.ConversationTurn{
		UserMessage: message,
		BotResponse: response,
		Emotion:     emotion.EffectiveEmotion(),
		Confidence:  emotion.EffectiveConfidence(),
		Timestamp:   time.Now(),
	})
	if len(turns) > entities.MaxConversationTurns {
		turns = turns[len(turns)-entities.MaxConversationTurns:]
	}
	s.transcripts.Add(userID, turns)
}

// History returns the bounded recent transcript for a user.
func (s *ChatService) History(userID string) []entities.ConversationTurn {
	s.mu.Lock()
	defer s.mu.Unlock()

	turns, _ := s.transcripts.Get(userID)
	out := make([]entities.ConversationTurn, len(turns))
	copy(out, turns)
	return out
}
