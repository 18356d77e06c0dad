package entities

import (
	"math"
	"testing"
)

func TestNormalizeZeroVectorUnchanged(t *testing.T) {
	scores := NewEmotionScores()
	scores.Normalize()

	for label, v := range scores {
		if v != 0 {
			t.Errorf("Expected zero score for %s, got %f", label, v)
		}
	}
}

func TestNormalizeSumsToOne(t *testing.T) {
	scores := NewEmotionScores()
	scores[EmotionSad] = 0.2
	scores[EmotionHappy] = 0.4
	scores[EmotionTired] = 0.2

	scores.Normalize()

	var total float64
	for _, v := range scores {
		total += v
	}
	if math.Abs(total-1) > 1e-9 {
		t.Errorf("Expected scores to sum to 1, got %f", total)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	scores := NewEmotionScores()
	scores[EmotionSad] = 0.2
	scores[EmotionAnxious] = 0.6
	scores.Normalize()

	before := make(EmotionScores, len(scores))
	for k, v := range scores {
		before[k] = v
	}

	scores.Normalize()

	for label, v := range scores {
		if math.Abs(v-before[label]) > 1e-9 {
			t.Errorf("Renormalizing changed %s from %f to %f", label, before[label], v)
		}
	}
}

func TestTopTieBreaksInLabelOrder(t *testing.T) {
	scores := NewEmotionScores()
	scores[EmotionAngry] = 0.5
	scores[EmotionSad] = 0.5

	top, value := scores.Top()
	if top != EmotionSad {
		t.Errorf("Expected tie to resolve to sad (first in label order), got %s", top)
	}
	if value != 0.5 {
		t.Errorf("Expected top value 0.5, got %f", value)
	}
}

func TestEffectiveFieldsPriority(t *testing.T) {
	sad := EmotionSad
	happy := EmotionHappy
	low := 0.4
	high := 0.8

	result := MultimodalResult{
		ClassificationResult: ClassificationResult{Label: EmotionNeutral, Confidence: 0.5},
	}
	if result.EffectiveEmotion() != EmotionNeutral {
		t.Errorf("Expected base label, got %s", result.EffectiveEmotion())
	}

	result.MultimodalEmotion = &sad
	result.MultimodalConfidence = &low
	if result.EffectiveEmotion() != EmotionSad {
		t.Errorf("Expected multimodal label, got %s", result.EffectiveEmotion())
	}
	if result.EffectiveConfidence() != 0.4 {
		t.Errorf("Expected multimodal confidence 0.4, got %f", result.EffectiveConfidence())
	}

	result.FinalEmotion = &happy
	result.FinalConfidence = &high
	if result.EffectiveEmotion() != EmotionHappy {
		t.Errorf("Expected final label, got %s", result.EffectiveEmotion())
	}
	if result.EffectiveConfidence() != 0.8 {
		t.Errorf("Expected final confidence 0.8, got %f", result.EffectiveConfidence())
	}
}
