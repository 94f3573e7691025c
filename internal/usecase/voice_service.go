package usecase

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/St1cky1/command-center/internal/entity"
	log "github.com/sirupsen/logrus"
)

const (
	fallbackTitleWords = 6
	maxTitleRunes      = 80
)

// Transcriber - распознавание речи
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, fileName string) (string, error)
}

// TitleGenerator - короткий заголовок по тексту
type TitleGenerator interface {
	GenerateTitle(ctx context.Context, transcript string) (string, error)
}

// VoiceTask - созданная задача и исходная расшифровка
type VoiceTask struct {
	Task       *entity.Task `json:"task"`
	Transcript string       `json:"transcript"`
}

type VoiceService struct {
	transcriber Transcriber
	titles      TitleGenerator
	board       *BoardService
	logger      *log.Logger
}

func NewVoiceService(transcriber Transcriber, titles TitleGenerator, board *BoardService, logger *log.Logger) *VoiceService {
	return &VoiceService{
		transcriber: transcriber,
		titles:      titles,
		board:       board,
		logger:      logger,
	}
}

// CreateTask превращает голосовую заметку в задачу в первой колонке доски.
// Расшифровка идет в описание, заголовок придумывает модель или берутся первые слова.
func (s *VoiceService) CreateTask(ctx context.Context, user *entity.User, audio []byte, fileName string) (*VoiceTask, error) {
	if user == nil {
		return nil, entity.ErrUnauthenticated
	}
	if len(audio) == 0 {
		return nil, entity.ErrEmptyAudio
	}

	transcript, err := s.transcriber.Transcribe(ctx, audio, fileName)
	if err != nil {
		return nil, err
	}
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return nil, entity.ErrEmptyAudio
	}

	title := s.title(ctx, transcript)

	task, err := s.board.CreateTask(ctx, user, &entity.CreateTaskRequest{
		Title:       title,
		Description: transcript,
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(log.Fields{
		"task_id": task.ID,
		"user_id": user.ID,
	}).Info("🎙️ voice task created")
	return &VoiceTask{Task: task, Transcript: transcript}, nil
}

func (s *VoiceService) title(ctx context.Context, transcript string) string {
	if s.titles != nil {
		title, err := s.titles.GenerateTitle(ctx, transcript)
		if err == nil && strings.TrimSpace(title) != "" {
			return truncateRunes(strings.TrimSpace(title), maxTitleRunes)
		}
		if err != nil {
			s.logger.WithError(err).Warn("title generation failed, using transcript words")
		}
	}
	return FallbackTitle(transcript)
}

// FallbackTitle - первые слова расшифровки
func FallbackTitle(transcript string) string {
	words := strings.Fields(transcript)
	if len(words) > fallbackTitleWords {
		words = words[:fallbackTitleWords]
	}
	title := strings.TrimRight(strings.Join(words, " "), ".,;:!?")
	return truncateRunes(title, maxTitleRunes)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
