package usecase

import (
	"context"

	"github.com/St1cky1/command-center/internal/entity"
	"github.com/St1cky1/command-center/internal/repository"
)

// HistoryService отдает журнал изменений задачи, который пишет AuditWorker
type HistoryService struct {
	board     *BoardService
	auditRepo repository.ITaskAuditRepository
}

func NewHistoryService(board *BoardService, auditRepo repository.ITaskAuditRepository) *HistoryService {
	return &HistoryService{board: board, auditRepo: auditRepo}
}

// TaskHistory - история задачи, новые записи сверху. Доступна только тем, кто видит задачу на доске.
func (s *HistoryService) TaskHistory(ctx context.Context, user *entity.User, taskID string) ([]entity.TaskAudit, error) {
	if _, err := s.board.GetTask(ctx, user, taskID); err != nil {
		return nil, err
	}
	return s.auditRepo.ListByEntity(ctx, taskID)
}
