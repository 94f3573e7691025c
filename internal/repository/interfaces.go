package repository

import (
	"context"
	"time"

	"github.com/St1cky1/command-center/internal/entity"
)

// ITaskRepository - интерфейс для TaskRepository
type ITaskRepository interface {
	Create(ctx context.Context, task *entity.CreateTaskRequest) (*entity.Task, error)
	GetByID(ctx context.Context, id string) (*entity.Task, error)
	Update(ctx context.Context, id string, ownerID int, updates map[string]interface{}) (*entity.Task, error)
	UpdateOrders(ctx context.Context, ownerID int, assignments []entity.OrderAssignment) error
	Delete(ctx context.Context, id string, ownerID int) error
	List(ctx context.Context, ownerID int, status string) ([]entity.Task, error)
}

// IUserRepository - интерфейс для UserRepository
type IUserRepository interface {
	Create(ctx context.Context, user *entity.User) (*entity.User, error)
	GetByID(ctx context.Context, id int) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, id int, updates map[string]interface{}) (*entity.User, error)
	ListByOwner(ctx context.Context, ownerID int) ([]entity.User, error)
}

// IRefreshTokenRepository - интерфейс для RefreshTokenRepository
type IRefreshTokenRepository interface {
	Save(ctx context.Context, userID int, tokenHash string, expiresAt time.Time) error
	GetByHash(ctx context.Context, tokenHash string) (*RefreshToken, error)
	Revoke(ctx context.Context, tokenHash string) error
	RevokeAll(ctx context.Context, userID int) error
}

// IAttachmentRepository - интерфейс для AttachmentRepository
type IAttachmentRepository interface {
	Save(ctx context.Context, attachment *entity.Attachment) (*entity.Attachment, error)
	GetByID(ctx context.Context, id string) (*entity.Attachment, error)
	Delete(ctx context.Context, id string) error
}

// IReportRepository - интерфейс для ReportRepository
type IReportRepository interface {
	Upsert(ctx context.Context, report *entity.Report) (*entity.Report, error)
	ListByAuthor(ctx context.Context, authorID int, limit int) ([]entity.Report, error)
	ListByOwner(ctx context.Context, ownerID int, date *entity.Date) ([]entity.Report, error)
	MarkEmailed(ctx context.Context, id int, at time.Time) error
}

// IReferenceRepository - интерфейс для ReferenceRepository
type IReferenceRepository interface {
	Create(ctx context.Context, ref *entity.Reference) (*entity.Reference, error)
	GetByID(ctx context.Context, id int) (*entity.Reference, error)
	Update(ctx context.Context, id int, updates map[string]interface{}) (*entity.Reference, error)
	Delete(ctx context.Context, id int) error
	List(ctx context.Context, ownerID int, category string) ([]entity.Reference, error)
}

// ITaskAuditRepository - интерфейс для TaskAuditRepository
type ITaskAuditRepository interface {
	Create(ctx context.Context, audit *entity.TaskAudit) error
	ListByEntity(ctx context.Context, entityID string) ([]entity.TaskAudit, error)
}
