package pipeline

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/mock"

	"github.com/sells-group/signal-scout/internal/model"
	"github.com/sells-group/signal-scout/pkg/anthropic"
)

// --- Anthropic Mock ---

type mockAnthropicClient struct {
	mock.Mock
}

func (m *mockAnthropicClient) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*anthropic.MessageResponse), args.Error(1)
}

func textResponse(text string) *anthropic.MessageResponse {
	return &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: text}},
		Usage:   anthropic.TokenUsage{InputTokens: 100, OutputTokens: 50},
	}
}

// --- Collector stubs ---

type stubCollector struct {
	events []model.RawEvent
}

func (s *stubCollector) Name() model.SourcePlatform {
	return model.SourceLinkedIn
}

func (s *stubCollector) Collect(_ context.Context) ([]model.RawEvent, error) {
	out := make([]model.RawEvent, len(s.events))
	copy(out, s.events)
	return out, nil
}

type failingCollector struct{}

func (f *failingCollector) Name() model.SourcePlatform {
	return model.SourceTwitter
}

func (f *failingCollector) Collect(_ context.Context) ([]model.RawEvent, error) {
	return nil, eris.New("collector: source offline")
}
