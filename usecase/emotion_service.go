package usecase

import (
	"strings"

	"go.uber.org/zap"

	"github.com/aurayouth/server/domain/entities"
)

const (
	keywordIncrement = 0.2
	neutralCutoff    = 0.1
	neutralFallback  = 0.5
	crisisConfidence = 0.95

	// modalityGate is the confidence a secondary modality must exceed before
	// it is allowed to adjust the text classification.
	modalityGate = 0.6
)

// crisisPhrases are scanned in this exact order; the first category with a
// matching phrase wins.
var crisisPhrases = []struct {
	category entities.CrisisType
	phrases  []string
}{
	{entities.CrisisSuicide, []string{"suicide", "kill myself", "end it all", "not worth living", "better off dead"}},
	{entities.CrisisSelfHarm, []string{"cut myself", "hurt myself", "self harm", "self-harm", "burn myself"}},
	{entities.CrisisEmergency, []string{"emergency", "crisis", "help me now", "i can't take it", "breaking point"}},
	{entities.CrisisHopeless, []string{"no hope", "hopeless", "nothing matters", "give up", "end everything"}},
	{entities.CrisisPanic, []string{"panic attack", "can't breathe", "heart racing", "freaking out", "losing control"}},
}

// emotionKeywords drive the text classifier. Order matches EmotionLabels so
// tie-breaks stay stable.
var emotionKeywords = []struct {
	label    entities.EmotionLabel
	keywords []string
}{
	{entities.EmotionSad, []string{"sad", "depressed", "unhappy", "down", "blue", "heartbroken", "lonely"}},
	{entities.EmotionAnxious, []string{"anxious", "worried", "nervous", "scared", "fear", "panic", "stressed"}},
	{entities.EmotionAngry, []string{"angry", "mad", "furious", "irritated", "annoyed", "frustrated"}},
	{entities.EmotionHappy, []string{"happy", "joy", "excited", "great", "wonderful", "amazing", "good"}},
	{entities.EmotionTired, []string{"tired", "exhausted", "fatigued", "sleepy", "drained"}},
	{entities.EmotionConfused, []string{"confused", "lost", "unsure", "bewildered", "puzzled"}},
	{entities.EmotionHopeful, []string{"hopeful", "optimistic", "positive", "encouraged"}},
}

// EmotionService classifies message text and combines modality readings.
// All methods are deterministic and side-effect free.
type EmotionService struct {
	logger *zap.Logger
}

// NewEmotionService creates a new emotion service.
func NewEmotionService(logger *zap.Logger) *EmotionService {
	return &EmotionService{logger: logger}
}

// DetectCrisis scans the text for crisis phrases and returns the first
// matching category, or nil. It runs before any other classification and
// must stay pure since it gates the safety response.
func (s *EmotionService) DetectCrisis(text string) *entities.CrisisType {
	lower := strings.ToLower(text)

	for _, category := range crisisPhrases {
		for _, phrase := range category.phrases {
			if strings.Contains(lower, phrase) {
				crisisType := category.category
				return &crisisType
			}
		}
	}

	return nil
}

// AnalyzeText scores the text against every emotion's keyword list, picks the
// top label and overrides to crisis when a crisis phrase is present.
func (s *EmotionService) AnalyzeText(text string) entities.ClassificationResult {
	lower := strings.ToLower(text)
	scores := entities.NewEmotionScores()

	crisisType := s.DetectCrisis(text)

	// Each keyword counts at most once regardless of how often it repeats.
	for _, emotion := range emotionKeywords {
		for _, keyword := range emotion.keywords {
			if strings.Contains(lower, keyword) {
				scores[emotion.label] += keywordIncrement
			}
		}
	}

	scores.Normalize()
	top, confidence := scores.Top()

	result := entities.ClassificationResult{
		Label:      top,
		Confidence: confidence,
		Scores:     scores,
	}
	if confidence <= neutralCutoff {
		result.Label = entities.EmotionNeutral
		result.Confidence = neutralFallback
	}

	if crisisType != nil {
		result.CrisisDetected = true
		result.CrisisType = crisisType
		result.Label = entities.EmotionCrisis
		result.Confidence = crisisConfidence
		s.logger.Warn("Crisis phrase detected",
			zap.String("crisis_type", string(*crisisType)))
	}

	return result
}

// Combine merges the text classification with optional audio and video
// readings. A modality only participates when its confidence exceeds the
// fixed gate. Consumers read the result's fields in priority order
// Final* -> Multimodal* -> base.
func (s *EmotionService) Combine(text entities.ClassificationResult, audio, video *entities.ModalityResult) entities.MultimodalResult {
	result := entities.MultimodalResult{ClassificationResult: text}

	if audio != nil {
		result.AudioAnalysis = audio
		if audio.Confidence > modalityGate {
			if audio.Emotion != text.Label {
				emotion := audio.Emotion
				confidence := (text.Confidence + audio.Confidence) / 2
				result.MultimodalEmotion = &emotion
				result.MultimodalConfidence = &confidence
			} else {
				confidence := max(text.Confidence, audio.Confidence)
				result.MultimodalConfidence = &confidence
			}
		}
	}

	if video != nil {
		result.VideoAnalysis = video
		if video.Confidence > modalityGate {
			if result.MultimodalEmotion != nil {
				emotion := *result.MultimodalEmotion
				confidence := (*result.MultimodalConfidence + video.Confidence) / 2
				result.FinalEmotion = &emotion
				result.FinalConfidence = &confidence
			} else {
				emotion := video.Emotion
				confidence := (text.Confidence + video.Confidence) / 2
				result.MultimodalEmotion = &emotion
				result.MultimodalConfidence = &confidence
			}
		}
	}

	return result
}
