package worker

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// TokenCleaner - удаление истекших и отозванных refresh токенов
type TokenCleaner interface {
	CleanupExpired(ctx context.Context) (int64, error)
}

// TokenCleanupWorker периодически чистит таблицу refresh токенов
type TokenCleanupWorker struct {
	tokens   TokenCleaner
	interval time.Duration
	logger   *log.Logger
}

func NewTokenCleanupWorker(tokens TokenCleaner, interval time.Duration, logger *log.Logger) *TokenCleanupWorker {
	return &TokenCleanupWorker{
		tokens:   tokens,
		interval: interval,
		logger:   logger,
	}
}

func (w *TokenCleanupWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.cleanup(ctx)
		}
	}
}

func (w *TokenCleanupWorker) cleanup(ctx context.Context) {
	removed, err := w.tokens.CleanupExpired(ctx)
	if err != nil {
		w.logger.WithError(err).Warn("refresh token cleanup failed")
		return
	}
	if removed > 0 {
		w.logger.WithField("removed", removed).Info("expired refresh tokens removed")
	}
}
