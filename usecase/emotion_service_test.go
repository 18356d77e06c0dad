package usecase

import (
	"math"
	"testing"

	"go.uber.org/zap"

	"github.com/aurayouth/server/domain/entities"
)

func TestDetectCrisisCategories(t *testing.T) {
	service := NewEmotionService(zap.NewNop())

	tests := []struct {
		text     string
		expected entities.CrisisType
	}{
		{"I want to end it all", entities.CrisisSuicide},
		{"Sometimes I think about suicide", entities.CrisisSuicide},
		{"I want to hurt myself", entities.CrisisSelfHarm},
		{"this is an emergency", entities.CrisisEmergency},
		{"there is no hope left", entities.CrisisHopeless},
		{"I'm having a panic attack", entities.CrisisPanic},
	}

	for _, tt := range tests {
		crisisType := service.DetectCrisis(tt.text)
		if crisisType == nil {
			t.Errorf("Expected crisis %s for %q, got none", tt.expected, tt.text)
			continue
		}
		if *crisisType != tt.expected {
			t.Errorf("Expected crisis %s for %q, got %s", tt.expected, tt.text, *crisisType)
		}
	}
}

func TestDetectCrisisCleanText(t *testing.T) {
	service := NewEmotionService(zap.NewNop())

	if crisisType := service.DetectCrisis("I had a great day at school"); crisisType != nil {
		t.Errorf("Expected no crisis, got %s", *crisisType)
	}
}

func TestDetectCrisisCategoryPrecedence(t *testing.T) {
	service := NewEmotionService(zap.NewNop())

	// Matches both suicide ("end it all") and hopeless ("no hope"); the
	// first category in enumeration order wins.
	crisisType := service.DetectCrisis("no hope, I want to end it all")
	if crisisType == nil || *crisisType != entities.CrisisSuicide {
		t.Errorf("Expected suicide to take precedence, got %v", crisisType)
	}
}

func TestAnalyzeTextNoMatches(t *testing.T) {
	service := NewEmotionService(zap.NewNop())

	result := service.AnalyzeText("the weather report mentioned rain")
	if result.Label != entities.EmotionNeutral {
		t.Errorf("Expected neutral label, got %s", result.Label)
	}
	if result.Confidence != 0.5 {
		t.Errorf("Expected confidence 0.5, got %f", result.Confidence)
	}
	for label, score := range result.Scores {
		if score != 0 {
			t.Errorf("Expected zero score for %s, got %f", label, score)
		}
	}
}

func TestAnalyzeTextHappy(t *testing.T) {
	service := NewEmotionService(zap.NewNop())

	result := service.AnalyzeText("I'm feeling really happy today!")
	if result.Label != entities.EmotionHappy {
		t.Errorf("Expected happy label, got %s", result.Label)
	}
	if result.Confidence <= 0.1 {
		t.Errorf("Expected confidence above 0.1, got %f", result.Confidence)
	}
	for label, score := range result.Scores {
		if score > result.Scores[entities.EmotionHappy] {
			t.Errorf("Expected happy to dominate, but %s scored %f", label, score)
		}
	}
}

func TestAnalyzeTextNormalizedScores(t *testing.T) {
	service := NewEmotionService(zap.NewNop())

	result := service.AnalyzeText("I'm sad and worried and tired")
	var total float64
	for _, score := range result.Scores {
		total += score
	}
	if math.Abs(total-1) > 1e-9 {
		t.Errorf("Expected normalized scores to sum to 1, got %f", total)
	}
}

func TestAnalyzeTextCrisisOverride(t *testing.T) {
	service := NewEmotionService(zap.NewNop())

	result := service.AnalyzeText("I'm so happy but I want to end it all")
	if result.Label != entities.EmotionCrisis {
		t.Errorf("Expected crisis label, got %s", result.Label)
	}
	if result.Confidence != 0.95 {
		t.Errorf("Expected crisis confidence 0.95, got %f", result.Confidence)
	}
	if !result.CrisisDetected {
		t.Error("Expected crisis_detected to be set")
	}
	if result.CrisisType == nil || *result.CrisisType != entities.CrisisSuicide {
		t.Errorf("Expected suicide crisis type, got %v", result.CrisisType)
	}
}

func TestCombineAudioOverride(t *testing.T) {
	service := NewEmotionService(zap.NewNop())

	text := entities.ClassificationResult{
		Label:      entities.EmotionNeutral,
		Confidence: 0.4,
		Scores:     entities.NewEmotionScores(),
	}
	audio := &entities.ModalityResult{Emotion: entities.EmotionSad, Confidence: 0.8}

	result := service.Combine(text, audio, nil)
	if result.MultimodalEmotion == nil || *result.MultimodalEmotion != entities.EmotionSad {
		t.Fatalf("Expected multimodal emotion sad, got %v", result.MultimodalEmotion)
	}
	if result.MultimodalConfidence == nil || math.Abs(*result.MultimodalConfidence-0.6) > 1e-9 {
		t.Errorf("Expected multimodal confidence 0.6, got %v", result.MultimodalConfidence)
	}
}

func TestCombineAudioAgreementTakesMax(t *testing.T) {
	service := NewEmotionService(zap.NewNop())

	text := entities.ClassificationResult{Label: entities.EmotionSad, Confidence: 0.4}
	audio := &entities.ModalityResult{Emotion: entities.EmotionSad, Confidence: 0.8}

	result := service.Combine(text, audio, nil)
	if result.MultimodalEmotion != nil {
		t.Errorf("Expected no emotion override on agreement, got %s", *result.MultimodalEmotion)
	}
	if result.MultimodalConfidence == nil || *result.MultimodalConfidence != 0.8 {
		t.Errorf("Expected multimodal confidence 0.8, got %v", result.MultimodalConfidence)
	}
}

func TestCombineLowConfidenceModalityIgnored(t *testing.T) {
	service := NewEmotionService(zap.NewNop())

	text := entities.ClassificationResult{Label: entities.EmotionHappy, Confidence: 0.9}
	audio := &entities.ModalityResult{Emotion: entities.EmotionSad, Confidence: 0.5}

	result := service.Combine(text, audio, nil)
	if result.MultimodalEmotion != nil || result.MultimodalConfidence != nil {
		t.Error("Expected low-confidence audio to be ignored")
	}
	if result.AudioAnalysis == nil {
		t.Error("Expected audio analysis to still be attached")
	}
}

func TestCombineVideoAfterAudio(t *testing.T) {
	service := NewEmotionService(zap.NewNop())

	text := entities.ClassificationResult{Label: entities.EmotionNeutral, Confidence: 0.4}
	audio := &entities.ModalityResult{Emotion: entities.EmotionSad, Confidence: 0.8}
	video := &entities.ModalityResult{Emotion: entities.EmotionHappy, Confidence: 0.7}

	result := service.Combine(text, audio, video)
	if result.FinalEmotion == nil || *result.FinalEmotion != entities.EmotionSad {
		t.Fatalf("Expected final emotion to keep the audio override, got %v", result.FinalEmotion)
	}
	// Average of multimodal confidence 0.6 and video confidence 0.7.
	if result.FinalConfidence == nil || math.Abs(*result.FinalConfidence-0.65) > 1e-9 {
		t.Errorf("Expected final confidence 0.65, got %v", result.FinalConfidence)
	}
}

func TestCombineVideoOnly(t *testing.T) {
	service := NewEmotionService(zap.NewNop())

	text := entities.ClassificationResult{Label: entities.EmotionNeutral, Confidence: 0.5}
	video := &entities.ModalityResult{Emotion: entities.EmotionHappy, Confidence: 0.9}

	result := service.Combine(text, nil, video)
	if result.MultimodalEmotion == nil || *result.MultimodalEmotion != entities.EmotionHappy {
		t.Fatalf("Expected video to set the multimodal emotion, got %v", result.MultimodalEmotion)
	}
	if result.MultimodalConfidence == nil || math.Abs(*result.MultimodalConfidence-0.7) > 1e-9 {
		t.Errorf("Expected multimodal confidence 0.7, got %v", result.MultimodalConfidence)
	}
	if result.FinalEmotion != nil {
		t.Error("Expected no final emotion without an audio override")
	}
}
