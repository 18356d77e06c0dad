package entities

// EmotionLabel is one of the fixed emotion categories the classifier can emit.
type EmotionLabel string

const (
	EmotionSad      EmotionLabel = "sad"
	EmotionAnxious  EmotionLabel = "anxious"
	EmotionAngry    EmotionLabel = "angry"
	EmotionHappy    EmotionLabel = "happy"
	EmotionTired    EmotionLabel = "tired"
	EmotionConfused EmotionLabel = "confused"
	EmotionHopeful  EmotionLabel = "hopeful"
	EmotionNeutral  EmotionLabel = "neutral"
	EmotionExcited  EmotionLabel = "excited"
	EmotionCrisis   EmotionLabel = "crisis"
)

// EmotionLabels is the classifier's label set in scoring order. Tie-breaks
// resolve to the first label in this order, so it must stay stable.
var EmotionLabels = []EmotionLabel{
	EmotionSad,
	EmotionAnxious,
	EmotionAngry,
	EmotionHappy,
	EmotionTired,
	EmotionConfused,
	EmotionHopeful,
}

// CrisisType is a safety-critical category detected by phrase matching.
type CrisisType string

const (
	CrisisSuicide   CrisisType = "suicide"
	CrisisSelfHarm  CrisisType = "self_harm"
	CrisisEmergency CrisisType = "emergency"
	CrisisHopeless  CrisisType = "hopeless"
	CrisisPanic     CrisisType = "panic"
)

// EmotionScores maps each emotion label to a non-negative weight. After a
// successful classification the weights either all stay zero (no keyword hit)
// or sum to 1.
type EmotionScores map[EmotionLabel]float64

// NewEmotionScores returns a zeroed score map covering every label.
func NewEmotionScores() EmotionScores {
	scores := make(EmotionScores, len(EmotionLabels))
	for _, label := range EmotionLabels {
		scores[label] = 0
	}
	return scores
}

// Normalize scales the weights so they sum to 1. A zero vector is left
// untouched, and renormalizing an already-normalized vector is a no-op.
func (s EmotionScores) Normalize() {
	var total float64
	for _, v := range s {
		total += v
	}
	if total == 0 {
		return
	}
	for k, v := range s {
		s[k] = v / total
	}
}

// Top returns the highest scoring label, resolving ties to the first label in
// EmotionLabels order.
func (s EmotionScores) Top() (EmotionLabel, float64) {
	top := EmotionLabels[0]
	best := s[top]
	for _, label := range EmotionLabels[1:] {
		if s[label] > best {
			top = label
			best = s[label]
		}
	}
	return top, best
}

// ClassificationResult is the outcome of text emotion analysis.
type ClassificationResult struct {
	Label          EmotionLabel  `json:"label" bson:"label"`
	Confidence     float64       `json:"confidence" bson:"confidence"`
	Scores         EmotionScores `json:"all_scores" bson:"all_scores"`
	CrisisDetected bool          `json:"crisis_detected,omitempty" bson:"crisis_detected,omitempty"`
	CrisisType     *CrisisType   `json:"crisis_type,omitempty" bson:"crisis_type,omitempty"`
}

// AudioFeatures are the raw signal measurements behind an audio classification.
type AudioFeatures struct {
	PitchMean    float64 `json:"pitch_mean"`
	EnergyMean   float64 `json:"energy_mean"`
	CentroidMean float64 `json:"centroid_mean"`
	ZCRMean      float64 `json:"zcr_mean"`
}

// VideoInfo describes what was actually analyzed from a video input.
type VideoInfo struct {
	FramesAnalyzed int `json:"frames_analyzed"`
}

// ModalityResult is an independent classification from a single input channel.
type ModalityResult struct {
	Emotion    EmotionLabel   `json:"emotion"`
	Confidence float64        `json:"confidence"`
	Features   *AudioFeatures `json:"features,omitempty"`
	VideoInfo  *VideoInfo     `json:"video_info,omitempty"`
	Error      string         `json:"error,omitempty"`
}

// MultimodalResult is a text classification optionally adjusted by audio and
// video readings. Consumers read fields in priority order:
// Final* -> Multimodal* -> the base Label/Confidence.
type MultimodalResult struct {
	ClassificationResult

	AudioAnalysis *ModalityResult `json:"audio_analysis,omitempty"`
	VideoAnalysis *ModalityResult `json:"video_analysis,omitempty"`

	MultimodalEmotion    *EmotionLabel `json:"multimodal_emotion,omitempty"`
	MultimodalConfidence *float64      `json:"multimodal_confidence,omitempty"`
	FinalEmotion         *EmotionLabel `json:"final_emotion,omitempty"`
	FinalConfidence      *float64      `json:"final_confidence,omitempty"`
}

// EffectiveEmotion resolves the label a consumer should act on.
func (m *MultimodalResult) EffectiveEmotion() EmotionLabel {
	if m.FinalEmotion != nil {
		return *m.FinalEmotion
	}
	if m.MultimodalEmotion != nil {
		return *m.MultimodalEmotion
	}
	return m.Label
}

// EffectiveConfidence resolves the confidence a consumer should act on.
func (m *MultimodalResult) EffectiveConfidence() float64 {
	if m.FinalConfidence != nil {
		return *m.FinalConfidence
	}
	if m.MultimodalConfidence != nil {
		return *m.MultimodalConfidence
	}
	return m.Confidence
}
