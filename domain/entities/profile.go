package entities

import (
	"time"
)

// RiskLevel summarizes recent negative-emotion density for a user.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// ActivityTrend describes how frequently a user has engaged recently.
type ActivityTrend string

const (
	ActivityInsufficient ActivityTrend = "insufficient_data"
	ActivityActive       ActivityTrend = "active"
	ActivityModerate     ActivityTrend = "moderate"
	ActivityLow          ActivityTrend = "low"
)

const (
	// MaxInteractions bounds a profile's interaction history.
	MaxInteractions = 100
	// MaxMoodEntries bounds a profile's mood history.
	MaxMoodEntries = 100

	riskWindow           = 10
	riskHighThreshold    = 7
	riskMediumThreshold  = 4
	moodPredictionWindow = 5
)

// negativeEmotions is the set counted toward risk assessment. "fear" never
// appears as a classifier output label but multimodal readings flow through
// the same field, and the risk thresholds are defined over this exact list.
var negativeEmotions = map[EmotionLabel]bool{
	EmotionSad:     true,
	EmotionAngry:   true,
	EmotionAnxious: true,
	"fear":         true,
}

// Interaction is one recorded exchange between a user and the companion.
type Interaction struct {
	Message        string       `json:"message" bson:"message"`
	Response       string       `json:"response" bson:"response"`
	Emotion        EmotionLabel `json:"emotion,omitempty" bson:"emotion,omitempty"`
	Confidence     float64      `json:"confidence" bson:"confidence"`
	CrisisDetected bool         `json:"crisis_detected" bson:"crisis_detected"`
	CrisisType     *CrisisType  `json:"crisis_type,omitempty" bson:"crisis_type,omitempty"`
	Multimodal     bool         `json:"multimodal,omitempty" bson:"multimodal,omitempty"`
	Timestamp      time.Time    `json:"timestamp" bson:"timestamp"`
}

// MoodEntry is one point in a user's mood history.
type MoodEntry struct {
	Emotion   EmotionLabel `json:"emotion" bson:"emotion"`
	Timestamp time.Time    `json:"timestamp" bson:"timestamp"`
	Message   string       `json:"message" bson:"message"`
}

// MoodPrediction is the mode of a user's recent moods.
type MoodPrediction struct {
	Prediction EmotionLabel `json:"prediction"`
	Confidence float64      `json:"confidence"`
	BasedOn    int          `json:"based_on"`
}

// Insights aggregates derived trends for a user.
type Insights struct {
	TotalInteractions int           `json:"total_interactions"`
	RiskLevel         RiskLevel     `json:"risk_level"`
	MostCommonEmotion EmotionLabel  `json:"most_common_emotion"`
	ActivityTrend     ActivityTrend `json:"activity_trend"`
	Recommendations   []string      `json:"recommendations"`
}

// UserProfile is the per-user digital twin: bounded interaction and mood
// history plus a coarse risk assessment recomputed on every update.
type UserProfile struct {
	UserID          string        `json:"user_id" bson:"user_id"`
	CreatedAt       time.Time     `json:"created_at" bson:"created_at"`
	Interactions    []Interaction `json:"interactions" bson:"interactions"`
	MoodHistory     []MoodEntry   `json:"mood_history" bson:"mood_history"`
	RiskAssessment  RiskLevel     `json:"risk_assessment" bson:"risk_assessment"`
	LastInteraction *time.Time    `json:"last_interaction" bson:"last_interaction"`
}

// NewUserProfile creates an empty profile for a user.
func NewUserProfile(userID string) *UserProfile {
	return &UserProfile{
		UserID:         userID,
		CreatedAt:      time.Now(),
		Interactions:   make([]Interaction, 0),
		MoodHistory:    make([]MoodEntry, 0),
		RiskAssessment: RiskLow,
	}
}

// RecordInteraction appends an interaction, evicts beyond the caps
// (oldest first), updates the mood history and recomputes risk.
func (p *UserProfile) RecordInteraction(interaction Interaction) {
	if interaction.Timestamp.IsZero() {
		interaction.Timestamp = time.Now()
	}

	p.Interactions = append(p.Interactions, interaction)
	if len(p.Interactions) > MaxInteractions {
		p.Interactions = p.Interactions[len(p.Interactions)-MaxInteractions:]
	}
	p.LastInteraction = &p.Interactions[len(p.Interactions)-1].Timestamp

	if interaction.Emotion != "" {
		p.MoodHistory = append(p.MoodHistory, MoodEntry{
			Emotion:   interaction.Emotion,
			Timestamp: interaction.Timestamp,
			Message:   interaction.Message,
		})
		if len(p.MoodHistory) > MaxMoodEntries {
			p.MoodHistory = p.MoodHistory[len(p.MoodHistory)-MaxMoodEntries:]
		}
	}

	p.RiskAssessment = p.assessRisk()
}

// assessRisk counts negative emotions over the last 10 interactions.
func (p *UserProfile) assessRisk() RiskLevel {
	recent := p.Interactions
	if len(recent) > riskWindow {
		recent = recent[len(recent)-riskWindow:]
	}

	negative := 0
	for _, interaction := range recent {
		if negativeEmotions[interaction.Emotion] {
			negative++
		}
	}

	switch {
	case negative >= riskHighThreshold:
		return RiskHigh
	case negative >= riskMediumThreshold:
		return RiskMedium
	default:
		return RiskLow
	}
}

// PredictMood returns the mode of the last five mood entries, with confidence
// equal to the mode's share of the window. An empty history predicts neutral.
func (p *UserProfile) PredictMood() MoodPrediction {
	if len(p.MoodHistory) == 0 {
		return MoodPrediction{Prediction: EmotionNeutral, Confidence: 0.5}
	}

	recent := p.MoodHistory
	if len(recent) > moodPredictionWindow {
		recent = recent[len(recent)-moodPredictionWindow:]
	}

	counts := make(map[EmotionLabel]int)
	for _, entry := range recent {
		counts[entry.Emotion]++
	}

	// Iterate entries in order so the mode resolves deterministically to the
	// first emotion reaching the maximum count.
	var predicted EmotionLabel
	best := 0
	for _, entry := range recent {
		if counts[entry.Emotion] > best {
			predicted = entry.Emotion
			best = counts[entry.Emotion]
		}
	}

	return MoodPrediction{
		Prediction: predicted,
		Confidence: float64(best) / float64(len(recent)),
		BasedOn:    len(recent),
	}
}

// MostCommonEmotion returns the dominant emotion across all stored
// interactions, or neutral if none carry an emotion.
func (p *UserProfile) MostCommonEmotion() EmotionLabel {
	counts := make(map[EmotionLabel]int)
	for _, interaction := range p.Interactions {
		if interaction.Emotion != "" {
			counts[interaction.Emotion]++
		}
	}
	if len(counts) == 0 {
		return EmotionNeutral
	}

	var most EmotionLabel
	best := 0
	for _, interaction := range p.Interactions {
		if interaction.Emotion == "" {
			continue
		}
		if counts[interaction.Emotion] > best {
			most = interaction.Emotion
			best = counts[interaction.Emotion]
		}
	}
	return most
}

// Activity classifies engagement by interaction count within the last 7 days.
func (p *UserProfile) Activity(now time.Time) ActivityTrend {
	if len(p.Interactions) < 7 {
		return ActivityInsufficient
	}

	lastWeek := now.AddDate(0, 0, -7)
	recent := 0
	for _, interaction := range p.Interactions {
		if interaction.Timestamp.After(lastWeek) {
			recent++
		}
	}

	switch {
	case recent >= 5:
		return ActivityActive
	case recent >= 2:
		return ActivityModerate
	default:
		return ActivityLow
	}
}

// BuildInsights aggregates the profile's derived trends and recommendations.
func (p *UserProfile) BuildInsights(now time.Time) Insights {
	mostCommon := p.MostCommonEmotion()
	activity := p.Activity(now)

	recommendations := []string{}
	if p.RiskAssessment == RiskHigh {
		recommendations = append(recommendations,
			"Consider speaking with a mental health professional",
			"Reach out to crisis hotline if needed")
	}
	if activity == ActivityLow {
		recommendations = append(recommendations,
			"Try to engage more regularly with the app")
	}
	if mostCommon == EmotionSad || mostCommon == EmotionAnxious {
		recommendations = append(recommendations,
			"Consider mindfulness exercises or breathing techniques")
	}

	return Insights{
		TotalInteractions: len(p.Interactions),
		RiskLevel:         p.RiskAssessment,
		MostCommonEmotion: mostCommon,
		ActivityTrend:     activity,
		Recommendations:   recommendations,
	}
}
