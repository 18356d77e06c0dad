package usecase

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/aurayouth/server/domain/entities"
	"github.com/aurayouth/server/domain/repositories"
)

const (
	// multimodalOverrideThreshold is the combined confidence above which the
	// responder lets the multimodal reading shape the supportive reply.
	multimodalOverrideThreshold = 0.3

	// generatorTimeout bounds the optional external generation call.
	generatorTimeout = 10 * time.Second

	defaultResponse = "I'm here to listen. Can you tell me more about how you're feeling?"
	errorResponse   = "I'm sorry, I'm having trouble processing your message right now. Please try again."
)

var crisisHotlines = []string{
	"\U0001F6A8 IMMEDIATE HELP NEEDED:",
	"• US: National Suicide Prevention Lifeline - Call or text 988",
	"• UK: Samaritans - Call 116 123",
	"• Canada: Canada Suicide Prevention Service - Call 988",
	"• Australia: Lifeline - Call 13 11 14",
	"• International: Find local support at befrienders.org",
}

var crisisResources = []string{
	"You are not alone in this",
	"Your feelings are valid, but this pain can be temporary",
	"Professional help can make a real difference",
	"There are people who care about you and want to help",
}

const crisisPreamble = "I'm really concerned about what you're saying. Your safety is the most important thing right now. Please reach out to emergency services immediately:"

type keywordResponse struct {
	keyword  string
	response string
}

// enhancedResponses is the primary canned-reply table. It is an ordered
// association list: the first keyword found as a substring wins.
var enhancedResponses = []keywordResponse{
	{"good morning", "Good morning! How are you feeling as you start your day?"},
	{"good night", "Good night. I hope you get some restful rest."},
	{"hello", "Hello! How can I help you today?"},
	{"hey", "Hey there! What's on your mind today?"},
	{"thank", "You're very welcome. I'm glad I could help."},
	{"bye", "Take care of yourself. I'm here whenever you want to talk."},
	{"overwhelmed", "Feeling overwhelmed is a signal to slow down. What feels heaviest right now?"},
	{"panic", "Panic can feel very intense, but it does pass. Try breathing slowly with me."},
	{"depressed", "I'm sorry you're feeling this low. You don't have to carry this alone - would you like to share more?"},
	{"sad", "I'm sorry you're feeling sad. Would you like to talk about what's bothering you?"},
	{"anxious", "Anxiety can be tough. Let's try some deep breathing exercises together."},
	{"anxiety", "For anxiety, grounding yourself in the present moment can really help. Want to try it together?"},
	{"worried", "It sounds like something is weighing on you. What are you most worried about?"},
	{"nervous", "Feeling nervous is completely normal. What's coming up for you?"},
	{"angry", "I hear that you're feeling angry. Can you tell me more about what's upsetting you?"},
	{"frustrated", "Frustration is exhausting. What's been getting in your way?"},
	{"stressed", "Stress can be overwhelming. What's causing you the most stress right now?"},
	{"lonely", "Feeling lonely is really hard. Remember that you're not alone - I'm here to listen."},
	{"alone", "Even when it feels that way, you don't have to face this alone."},
	{"tired", "Being tired can affect everything. Have you been getting enough rest?"},
	{"exhausted", "Exhaustion wears down both body and mind. What's been draining you lately?"},
	{"happy", "That's great! What's making you feel happy?"},
	{"excited", "That's wonderful energy! What are you excited about?"},
	{"school", "School can bring a lot of pressure. What's going on there for you?"},
	{"exam", "Exams can feel like everything rides on them. How are you preparing for yours?"},
	{"homework", "Homework piling up can feel stressful. Would breaking it into small steps help?"},
	{"parents", "Family relationships can be complicated. What's happening with your parents?"},
	{"family", "Family stuff can weigh on us deeply. Do you want to talk about it?"},
	{"friend", "Friendships matter a lot. What's going on with your friends?"},
	{"bully", "I'm sorry you're dealing with that. Nobody deserves to be treated that way - have you been able to tell someone you trust?"},
	{"breakup", "Breakups hurt, and that pain is real. Give yourself permission to grieve."},
	{"cry", "Crying is a healthy release. Let it out - I'm right here."},
	{"eat", "Taking care of your body helps your mind too. Have you been eating okay?"},
	{"headache", "Physical symptoms often connect to stress. Have you had a chance to rest?"},
	{"bored", "Boredom can be an invitation to try something small and new. Any ideas?"},
	{"confused", "It's okay to feel unsure. Let's untangle it together - what's confusing you most?"},
}

// legacyResponses is the older, smaller table kept as a fallback tier.
// The generic default entry is handled separately.
var legacyResponses = []keywordResponse{
	{"hello", "Hello! How can I help you today?"},
	{"sad", "I'm sorry you're feeling sad. Would you like to talk about what's bothering you?"},
	{"anxious", "Anxiety can be tough. Let's try some deep breathing exercises together."},
	{"happy", "That's great! What's making you feel happy?"},
	{"angry", "I hear that you're feeling angry. Can you tell me more about what's upsetting you?"},
	{"stressed", "Stress can be overwhelming. What's causing you the most stress right now?"},
	{"lonely", "Feeling lonely is really hard. Remember that you're not alone - I'm here to listen."},
	{"tired", "Being tired can affect everything. Have you been getting enough rest?"},
}

// knowledgeBase maps topic keywords to a single supportive fact appended to
// the default response.
var knowledgeBase = []keywordResponse{
	{"sleep", "Getting enough sleep is crucial for mental health."},
	{"exercise", "Regular physical activity can help improve your mood."},
	{"breathe", "Try this breathing exercise: inhale for 4, hold for 4, exhale for 4."},
	{"help", "Remember, it's okay to ask for help when you need it."},
	{"stress", "When stressed, try to break down tasks into smaller steps."},
	{"anxiety", "For anxiety, grounding techniques like naming 5 things you can see can help."},
	{"sad", "It's normal to feel sad sometimes. Talking about it can help."},
	{"happy", "That's wonderful! What makes you feel happy?"},
	{"friend", "Having supportive friends is so important for mental health."},
}

// supportiveOverrides map a confidently detected multimodal emotion (or its
// keyword cues in the message) to one fixed supportive sentence.
var supportiveOverrides = []struct {
	emotion  entities.EmotionLabel
	cues     []string
	response string
}{
	{entities.EmotionSad, []string{"sad", "down", "depressed"},
		"I can sense you're feeling down through your words and tone. Would you like to talk about what's bothering you?"},
	{entities.EmotionAnxious, []string{"anxious", "anxiety", "worried"},
		"Your voice and words suggest you're feeling anxious. Let's try some calming techniques together."},
	{entities.EmotionAngry, []string{"angry", "frustrated", "upset"},
		"I hear frustration in your voice. Can you tell me what's upsetting you?"},
	{entities.EmotionHappy, []string{"happy", "good", "great"},
		"I can hear the positivity in your voice! That's wonderful. What's making you feel good?"},
}

// ResponderService picks a reply for a classified message by walking a fixed
// tier order: crisis template, multimodal override, external generation,
// enhanced keyword table, legacy keyword table, knowledge base, heuristics.
type ResponderService struct {
	generator repositories.ReplyGenerator
	logger    *zap.Logger
}

// NewResponderService creates a responder. The generator may be nil, in which
// case the external-generation tier is skipped.
func NewResponderService(generator repositories.ReplyGenerator, logger *zap.Logger) *ResponderService {
	return &ResponderService{generator: generator, logger: logger}
}

// Respond selects a reply. The crisis path is handled first and is never
// subject to the catch-all error recovery.
func (s *ResponderService) Respond(ctx context.Context, userID, message string, emotion *entities.MultimodalResult, transcript []repositories.ChatMessage) string {
	if emotion.CrisisType != nil {
		return CrisisResponse(*emotion.CrisisType)
	}
	return s.respondSafely(ctx, userID, message, emotion, transcript)
}

// respondSafely walks the non-crisis tiers. Any panic while selecting a reply
// degrades to the fixed apologetic sentence.
func (s *ResponderService) respondSafely(ctx context.Context, userID, message string, emotion *entities.MultimodalResult, transcript []repositories.ChatMessage) (response string) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Response generation failed",
				zap.String("user_id", userID),
				zap.Any("panic", r))
			response = errorResponse
		}
	}()

	lower := strings.ToLower(message)
	effectiveEmotion := emotion.EffectiveEmotion()
	effectiveConfidence := emotion.EffectiveConfidence()

	// Tier 2: confident multimodal reading with a matching emotion or cue.
	if effectiveConfidence > multimodalOverrideThreshold {
		for _, override := range supportiveOverrides {
			if effectiveEmotion == override.emotion || containsAny(lower, override.cues) {
				return override.response
			}
		}
	}

	// Tier 3: optional external generation, used verbatim when available.
	if s.generator != nil {
		genCtx, cancel := context.WithTimeout(ctx, generatorTimeout)
		reply, err := s.generator.GenerateReply(genCtx, repositories.ReplyRequest{
			Message:    message,
			UserID:     userID,
			Emotion:    effectiveEmotion,
			Confidence: effectiveConfidence,
			Transcript: transcript,
		})
		cancel()
		if err == nil && reply != "" {
			return reply
		}
		if err != nil {
			s.logger.Warn("Reply generator unavailable", zap.Error(err))
		}
	}

	// Tiers 4 and 5: canned keyword tables, first match wins.
	for _, entry := range enhancedResponses {
		if strings.Contains(lower, entry.keyword) {
			return entry.response
		}
	}
	for _, entry := range legacyResponses {
		if strings.Contains(lower, entry.keyword) {
			return entry.response
		}
	}

	// Tier 6: knowledge base fact appended to the default response.
	for _, entry := range knowledgeBase {
		if strings.Contains(lower, entry.keyword) {
			return defaultResponse + " " + entry.response
		}
	}

	// Tier 7: shape of the message decides the fallback prompt.
	if len(strings.Fields(message)) <= 2 {
		return "I'm listening. Could you tell me a bit more about that?"
	}
	if strings.Contains(message, "?") {
		return "That's a thoughtful question. What do you think about it yourself?"
	}
	if strings.Contains(lower, "feel") || strings.Contains(lower, "felt") {
		return "Your feelings are important. Can you describe what you're feeling in more detail?"
	}
	return defaultResponse
}

// CrisisResponse builds the mandatory safety reply for a detected crisis:
// the immediate-help preamble, hotlines for the self-harm categories, and the
// supportive resource list.
func CrisisResponse(crisisType entities.CrisisType) string {
	parts := []string{crisisPreamble}

	if crisisType == entities.CrisisSuicide || crisisType == entities.CrisisSelfHarm {
		parts = append(parts, crisisHotlines...)
	}

	parts = append(parts, "\nYou are not alone. These feelings can be overwhelming, but help is available:")
	for _, resource := range crisisResources {
		parts = append(parts, "• "+resource)
	}

	parts = append(parts, "\nPlease reach out to these services right now. Your life matters.")

	return strings.Join(parts, "\n")
}

func containsAny(text string, cues []string) bool {
	for _, cue := range cues {
		if strings.Contains(text, cue) {
			return true
		}
	}
	return false
}
