package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/St1cky1/command-center/internal/entity"
)

type MockTaskAuditRepository struct {
	ListByEntityFunc func(ctx context.Context, entityID string) ([]entity.TaskAudit, error)
}

func (m *MockTaskAuditRepository) Create(ctx context.Context, audit *entity.TaskAudit) error {
	return nil
}

func (m *MockTaskAuditRepository) ListByEntity(ctx context.Context, entityID string) ([]entity.TaskAudit, error) {
	if m.ListByEntityFunc != nil {
		return m.ListByEntityFunc(ctx, entityID)
	}
	return nil, nil
}

func TestTaskHistory(t *testing.T) {
	service, _, _ := newTestBoardService(t, todoABC(), entity.VariantSimple)

	var requested string
	audits := &MockTaskAuditRepository{
		ListByEntityFunc: func(ctx context.Context, entityID string) ([]entity.TaskAudit, error) {
			requested = entityID
			return []entity.TaskAudit{
				{ID: 2, Action: entity.ActionMove, EntityID: entityID},
				{ID: 1, Action: entity.ActionCreate, EntityID: entityID},
			}, nil
		},
	}
	history := NewHistoryService(service, audits)

	entries, err := history.TaskHistory(context.Background(), assistant, "b")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if requested != "b" {
		t.Errorf("Expected history of task b, got %q", requested)
	}
	if len(entries) != 2 || entries[0].Action != entity.ActionMove {
		t.Errorf("Unexpected history %+v", entries)
	}
}

func TestTaskHistoryForeignTask(t *testing.T) {
	service, _, _ := newTestBoardService(t, todoABC(), entity.VariantSimple)
	called := false
	audits := &MockTaskAuditRepository{
		ListByEntityFunc: func(ctx context.Context, entityID string) ([]entity.TaskAudit, error) {
			called = true
			return nil, nil
		},
	}
	history := NewHistoryService(service, audits)

	stranger := &entity.User{ID: 7, Role: entity.RoleExecutive, IsActive: true}
	_, err := history.TaskHistory(context.Background(), stranger, "a")
	if !errors.Is(err, entity.ErrTaskNotFound) {
		t.Errorf("Expected ErrTaskNotFound, got %v", err)
	}
	if called {
		t.Error("Expected audit log not to be queried for a foreign task")
	}
}
