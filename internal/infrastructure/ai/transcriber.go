package ai

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// Transcriber отправляет аудио в Whisper-совместимый API
type Transcriber struct {
	client *openai.Client
	model  string
}

func NewTranscriber(apiKey, baseURL, model string) *Transcriber {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = openai.Whisper1
	}
	return &Transcriber{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// Transcribe возвращает текст аудиозаписи. fileName нужен API только для определения формата
func (t *Transcriber) Transcribe(ctx context.Context, audio []byte, fileName string) (string, error) {
	if fileName == "" {
		fileName = "recording.webm"
	}

	resp, err := t.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    t.model,
		FilePath: fileName,
		Reader:   bytes.NewReader(audio),
		Format:   openai.AudioResponseFormatJSON,
	})
	if err != nil {
		return "", fmt.Errorf("failed to transcribe audio: %w", err)
	}
	return strings.TrimSpace(resp.Text), nil
}
