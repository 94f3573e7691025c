package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

const titlePrompt = `You turn a dictated note into a task title for a kanban board.
Reply with the title only: at most 8 words, no quotes, no trailing punctuation.
Keep the language of the note.`

// TitleGenerator придумывает короткий заголовок задачи по расшифровке голосовой заметки
type TitleGenerator struct {
	model llms.Model
}

func NewTitleGenerator(apiKey, baseURL, modelName string) (*TitleGenerator, error) {
	opts := []openai.Option{
		openai.WithToken(apiKey),
		openai.WithModel(modelName),
	}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}

	model, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create title model client: %w", err)
	}
	return NewTitleGeneratorWithModel(model), nil
}

func NewTitleGeneratorWithModel(model llms.Model) *TitleGenerator {
	return &TitleGenerator{model: model}
}

func (g *TitleGenerator) GenerateTitle(ctx context.Context, transcript string) (string, error) {
	messages := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(titlePrompt)},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(transcript)},
		},
	}

	response, err := g.model.GenerateContent(ctx, messages,
		llms.WithTemperature(0.2),
		llms.WithMaxTokens(32),
	)
	if err != nil {
		return "", fmt.Errorf("failed to generate title: %w", err)
	}
	if len(response.Choices) == 0 {
		return "", errors.New("empty title response")
	}

	title := cleanTitle(response.Choices[0].Content)
	if title == "" {
		return "", errors.New("empty title response")
	}
	return title, nil
}

// cleanTitle оставляет первую строку ответа без кавычек и точки в конце
func cleanTitle(raw string) string {
	line := strings.TrimSpace(raw)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	line = strings.Trim(line, "\"'`« »")
	line = strings.TrimRight(line, ".!;:")
	return strings.TrimSpace(line)
}
