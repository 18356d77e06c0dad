package entities

import (
	"fmt"
	"testing"
	"time"
)

func TestRecordInteractionEvictsOldest(t *testing.T) {
	profile := NewUserProfile("user-1")

	for i := 1; i <= 101; i++ {
		profile.RecordInteraction(Interaction{
			Message: fmt.Sprintf("message %d", i),
			Emotion: EmotionHappy,
		})
	}

	if len(profile.Interactions) != MaxInteractions {
		t.Fatalf("Expected %d interactions, got %d", MaxInteractions, len(profile.Interactions))
	}
	if profile.Interactions[0].Message != "message 2" {
		t.Errorf("Expected oldest entry to be message 2, got %s", profile.Interactions[0].Message)
	}
	if profile.Interactions[99].Message != "message 101" {
		t.Errorf("Expected newest entry to be message 101, got %s", profile.Interactions[99].Message)
	}
}

func TestRiskEscalation(t *testing.T) {
	tests := []struct {
		negatives int
		expected  RiskLevel
	}{
		{0, RiskLow},
		{3, RiskLow},
		{4, RiskMedium},
		{6, RiskMedium},
		{7, RiskHigh},
		{10, RiskHigh},
	}

	for _, tt := range tests {
		profile := NewUserProfile("user-1")
		for i := 0; i < 10; i++ {
			emotion := EmotionHappy
			if i < tt.negatives {
				emotion = EmotionSad
			}
			profile.RecordInteraction(Interaction{Message: "m", Emotion: emotion})
		}

		if profile.RiskAssessment != tt.expected {
			t.Errorf("With %d negatives expected risk %s, got %s",
				tt.negatives, tt.expected, profile.RiskAssessment)
		}
	}
}

func TestRiskWindowOnlyCountsLastTen(t *testing.T) {
	profile := NewUserProfile("user-1")

	// Seven negative interactions pushed out of the window by ten happy ones.
	for i := 0; i < 7; i++ {
		profile.RecordInteraction(Interaction{Message: "m", Emotion: EmotionAngry})
	}
	for i := 0; i < 10; i++ {
		profile.RecordInteraction(Interaction{Message: "m", Emotion: EmotionHappy})
	}

	if profile.RiskAssessment != RiskLow {
		t.Errorf("Expected low risk after window rolled over, got %s", profile.RiskAssessment)
	}
}

func TestPredictMoodMode(t *testing.T) {
	profile := NewUserProfile("user-1")
	for _, emotion := range []EmotionLabel{EmotionSad, EmotionSad, EmotionHappy} {
		profile.RecordInteraction(Interaction{Message: "m", Emotion: emotion})
	}

	prediction := profile.PredictMood()
	if prediction.Prediction != EmotionSad {
		t.Errorf("Expected sad prediction, got %s", prediction.Prediction)
	}
	if prediction.BasedOn != 3 {
		t.Errorf("Expected window of 3, got %d", prediction.BasedOn)
	}
	expected := 2.0 / 3.0
	if diff := prediction.Confidence - expected; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("Expected confidence %f, got %f", expected, prediction.Confidence)
	}
}

func TestPredictMoodEmptyHistory(t *testing.T) {
	profile := NewUserProfile("user-1")

	prediction := profile.PredictMood()
	if prediction.Prediction != EmotionNeutral {
		t.Errorf("Expected neutral prediction, got %s", prediction.Prediction)
	}
	if prediction.Confidence != 0.5 {
		t.Errorf("Expected confidence 0.5, got %f", prediction.Confidence)
	}
}

func TestPredictMoodUsesLastFive(t *testing.T) {
	profile := NewUserProfile("user-1")
	for i := 0; i < 10; i++ {
		profile.RecordInteraction(Interaction{Message: "m", Emotion: EmotionSad})
	}
	for i := 0; i < 5; i++ {
		profile.RecordInteraction(Interaction{Message: "m", Emotion: EmotionHopeful})
	}

	prediction := profile.PredictMood()
	if prediction.Prediction != EmotionHopeful {
		t.Errorf("Expected hopeful from last five entries, got %s", prediction.Prediction)
	}
	if prediction.Confidence != 1 {
		t.Errorf("Expected confidence 1, got %f", prediction.Confidence)
	}
}

func TestActivityTrend(t *testing.T) {
	now := time.Now()

	profile := NewUserProfile("user-1")
	if trend := profile.Activity(now); trend != ActivityInsufficient {
		t.Errorf("Expected insufficient_data for empty profile, got %s", trend)
	}

	// Seven old interactions, none in the last week.
	for i := 0; i < 7; i++ {
		profile.RecordInteraction(Interaction{
			Message:   "m",
			Timestamp: now.AddDate(0, 0, -30),
		})
	}
	if trend := profile.Activity(now); trend != ActivityLow {
		t.Errorf("Expected low activity, got %s", trend)
	}

	// Two recent interactions raise it to moderate.
	for i := 0; i < 2; i++ {
		profile.RecordInteraction(Interaction{Message: "m", Timestamp: now.AddDate(0, 0, -1)})
	}
	if trend := profile.Activity(now); trend != ActivityModerate {
		t.Errorf("Expected moderate activity, got %s", trend)
	}

	// Five recent interactions raise it to active.
	for i := 0; i < 3; i++ {
		profile.RecordInteraction(Interaction{Message: "m", Timestamp: now.AddDate(0, 0, -1)})
	}
	if trend := profile.Activity(now); trend != ActivityActive {
		t.Errorf("Expected active, got %s", trend)
	}
}

func TestBuildInsightsRecommendations(t *testing.T) {
	now := time.Now()
	profile := NewUserProfile("user-1")

	// Ten sad interactions make risk high and sad the dominant emotion.
	for i := 0; i < 10; i++ {
		profile.RecordInteraction(Interaction{Message: "m", Emotion: EmotionSad, Timestamp: now.AddDate(0, 0, -30)})
	}

	insights := profile.BuildInsights(now)
	if insights.RiskLevel != RiskHigh {
		t.Errorf("Expected high risk, got %s", insights.RiskLevel)
	}
	if insights.MostCommonEmotion != EmotionSad {
		t.Errorf("Expected sad as most common emotion, got %s", insights.MostCommonEmotion)
	}
	if insights.ActivityTrend != ActivityLow {
		t.Errorf("Expected low activity, got %s", insights.ActivityTrend)
	}
	// High risk (2) + low activity (1) + sad dominant (1).
	if len(insights.Recommendations) != 4 {
		t.Errorf("Expected 4 recommendations, got %d: %v",
			len(insights.Recommendations), insights.Recommendations)
	}
}

func TestMoodHistoryBounded(t *testing.T) {
	profile := NewUserProfile("user-1")
	for i := 0; i < MaxMoodEntries+20; i++ {
		profile.RecordInteraction(Interaction{Message: "m", Emotion: EmotionHappy})
	}

	if len(profile.MoodHistory) != MaxMoodEntries {
		t.Errorf("Expected mood history capped at %d, got %d", MaxMoodEntries, len(profile.MoodHistory))
	}
}
