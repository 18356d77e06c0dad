package llm

import (
	"context"
	"fmt"

	"github.com/aurayouth/server/domain/repositories"
)

// MockGenerator is a placeholder reply generator for development and tests.
type MockGenerator struct {
	// Reply, when set, is returned verbatim for every request.
	Reply string
	// Unavailable makes every call report the generator as unavailable.
	Unavailable bool
}

// NewMockGenerator creates a mock reply generator.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// GenerateReply implements repositories.ReplyGenerator.
func (g *MockGenerator) GenerateReply(ctx context.Context, req repositories.ReplyRequest) (string, error) {
	if g.Unavailable {
		return "", repositories.ErrGeneratorUnavailable
	}
	if g.Reply != "" {
		return g.Reply, nil
	}
	return fmt.Sprintf("Thank you for sharing that with me. It sounds like you're feeling %s - I'm here with you.", req.Emotion), nil
}
