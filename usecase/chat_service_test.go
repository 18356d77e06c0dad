package usecase

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/aurayouth/server/adapters"
	"github.com/aurayouth/server/domain/entities"
)

type stubAnalyzer struct {
	result entities.ModalityResult
	calls  int
}

func (a *stubAnalyzer) Analyze(path string) entities.ModalityResult {
	a.calls++
	return a.result
}

func newTestChatService(audio, video ModalityAnalyzer) *ChatService {
	logger := zap.NewNop()
	twin := NewTwinService(adapters.NewMemoryProfileRepository(), logger)
	return NewChatService(
		NewEmotionService(logger),
		NewResponderService(nil, logger),
		twin,
		audio, video,
		logger,
	)
}

func TestProcessMessageTextOnly(t *testing.T) {
	chat := newTestChatService(nil, nil)

	result := chat.ProcessMessage(context.Background(), ChatRequest{
		UserID:  "user-1",
		Message: "I feel so sad and alone today",
	})

	if result.Emotion != entities.EmotionSad {
		t.Errorf("Expected sad, got %s", result.Emotion)
	}
	if result.CrisisDetected {
		t.Error("Did not expect a crisis flag")
	}
	if result.Response == "" {
		t.Error("Expected a non-empty response")
	}
}

func TestProcessMessageCrisisOverridesEmotion(t *testing.T) {
	chat := newTestChatService(nil, nil)

	result := chat.ProcessMessage(context.Background(), ChatRequest{
		UserID:  "user-1",
		Message: "I want to kill myself",
	})

	if !result.CrisisDetected {
		t.Fatal("Expected crisis to be detected")
	}
	if result.Emotion != entities.EmotionCrisis {
		t.Errorf("Expected crisis emotion, got %s", result.Emotion)
	}
	if result.CrisisType == nil || *result.CrisisType != entities.CrisisSuicide {
		t.Errorf("Expected suicide crisis type, got %v", result.CrisisType)
	}
	if !strings.Contains(result.Response, "988") {
		t.Error("Expected the crisis response to include hotline numbers")
	}
}

func TestProcessMessageRunsAudioAnalyzer(t *testing.T) {
	audio := &stubAnalyzer{result: entities.ModalityResult{
		Emotion:    entities.EmotionExcited,
		Confidence: 0.7,
	}}
	chat := newTestChatService(audio, nil)

	result := chat.ProcessMessage(context.Background(), ChatRequest{
		UserID:    "user-1",
		Message:   "just sharing a voice note",
		AudioPath: "/tmp/voice.wav",
	})

	if audio.calls != 1 {
		t.Fatalf("Expected one audio analysis, got %d", audio.calls)
	}
	if result.Emotion != entities.EmotionExcited {
		t.Errorf("Expected the audio reading to override neutral text, got %s", result.Emotion)
	}
}

func TestProcessMessageSkipsAnalyzerWithoutPath(t *testing.T) {
	audio := &stubAnalyzer{result: entities.ModalityResult{
		Emotion:    entities.EmotionExcited,
		Confidence: 0.7,
	}}
	chat := newTestChatService(audio, nil)

	chat.ProcessMessage(context.Background(), ChatRequest{
		UserID:  "user-1",
		Message: "no attachments here",
	})

	if audio.calls != 0 {
		t.Errorf("Expected no audio analysis without a path, got %d", audio.calls)
	}
}

func TestProcessMessageUpdatesProfile(t *testing.T) {
	logger := zap.NewNop()
	twin := NewTwinService(adapters.NewMemoryProfileRepository(), logger)
	chat := NewChatService(NewEmotionService(logger), NewResponderService(nil, logger), twin, nil, nil, logger)

	chat.ProcessMessage(context.Background(), ChatRequest{
		UserID:  "user-1",
		Message: "I feel anxious about tomorrow",
	})

	profile, err := twin.GetProfile(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}
	if profile == nil || len(profile.Interactions) != 1 {
		t.Fatalf("Expected one recorded interaction, got %+v", profile)
	}
	if profile.Interactions[0].Emotion != entities.EmotionAnxious {
		t.Errorf("Expected anxious interaction, got %s", profile.Interactions[0].Emotion)
	}
}

func TestHistoryBounded(t *testing.T) {
	chat := newTestChatService(nil, nil)

	for i := 0; i < entities.MaxConversationTurns+5; i++ {
		chat.ProcessMessage(context.Background(), ChatRequest{
			UserID:  "user-1",
			Message: fmt.Sprintf("message number %d", i),
		})
	}

	history := chat.History("user-1")
	if len(history) != entities.MaxConversationTurns {
		t.Errorf("Expected history capped at %d turns, got %d", entities.MaxConversationTurns, len(history))
	}
	wantFirst := fmt.Sprintf("message number %d", 5)
	if history[0].UserMessage != wantFirst {
		t.Errorf("Expected oldest surviving turn %q, got %q", wantFirst, history[0].UserMessage)
	}
}

func TestTranscriptsBoundedAcrossUsers(t *testing.T) {
	chat := newTestChatService(nil, nil)

	for i := 0; i <= maxTrackedUsers; i++ {
		chat.ProcessMessage(context.Background(), ChatRequest{
			UserID:  fmt.Sprintf("user-%d", i),
			Message: "hello",
		})
	}

	if got := chat.transcripts.Len(); got != maxTrackedUsers {
		t.Errorf("Expected at most %d tracked users, got %d", maxTrackedUsers, got)
	}
	if history := chat.History("user-0"); len(history) != 0 {
		t.Errorf("Expected the least recently active user to be evicted, got %d turns", len(history))
	}
	latest := fmt.Sprintf("user-%d", maxTrackedUsers)
	if history := chat.History(latest); len(history) != 1 {
		t.Errorf("Expected the most recent user to keep its transcript, got %d turns", len(history))
	}
}

func TestHistoryReturnsCopy(t *testing.T) {
	chat := newTestChatService(nil, nil)
	chat.ProcessMessage(context.Background(), ChatRequest{UserID: "user-1", Message: "hello"})

	history := chat.History("user-1")
	history[0].UserMessage = "mutated"

	fresh := chat.History("user-1")
	if fresh[0].UserMessage != "hello" {
		t.Error("Expected History to return an independent copy")
	}
}
