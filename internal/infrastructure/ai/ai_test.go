package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/tmc/langchaingo/llms"
)

type stubModel struct {
	content  string
	err      error
	messages []llms.MessageContent
}

func (m *stubModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	m.messages = messages
	if m.err != nil {
		return nil, m.err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: m.content}}}, nil
}

func (m *stubModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return m.content, m.err
}

func TestGenerateTitleCleansResponse(t *testing.T) {
	model := &stubModel{content: "\"Call the notary about the lease.\"\nSome explanation"}
	g := NewTitleGeneratorWithModel(model)

	title, err := g.GenerateTitle(context.Background(), "remind me to call the notary about the lease tomorrow")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if title != "Call the notary about the lease" {
		t.Errorf("Expected cleaned title, got %q", title)
	}
	if len(model.messages) != 2 || model.messages[0].Role != llms.ChatMessageTypeSystem {
		t.Errorf("Expected system and human messages, got %+v", model.messages)
	}
}

func TestGenerateTitleEmptyResponse(t *testing.T) {
	g := NewTitleGeneratorWithModel(&stubModel{content: "  \"\" "})
	if _, err := g.GenerateTitle(context.Background(), "note"); err == nil {
		t.Error("Expected error for empty title")
	}
}

func TestGenerateTitleModelError(t *testing.T) {
	g := NewTitleGeneratorWithModel(&stubModel{err: errors.New("rate limited")})
	if _, err := g.GenerateTitle(context.Background(), "note"); err == nil {
		t.Error("Expected error from model")
	}
}
