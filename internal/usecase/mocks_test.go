package usecase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/St1cky1/command-center/internal/entity"
	"github.com/St1cky1/command-center/internal/infrastructure/mail"
	"github.com/St1cky1/command-center/internal/repository"
)

// MockTaskRepository - мок для ITaskRepository
type MockTaskRepository struct {
	CreateFunc       func(ctx context.Context, task *entity.CreateTaskRequest) (*entity.Task, error)
	GetByIDFunc      func(ctx context.Context, id string) (*entity.Task, error)
	UpdateFunc       func(ctx context.Context, id string, ownerID int, updates map[string]interface{}) (*entity.Task, error)
	UpdateOrdersFunc func(ctx context.Context, ownerID int, assignments []entity.OrderAssignment) error
	DeleteFunc       func(ctx context.Context, id string, ownerID int) error
	ListFunc         func(ctx context.Context, ownerID int, status string) ([]entity.Task, error)
}

var _ repository.ITaskRepository = (*MockTaskRepository)(nil)

func (m *MockTaskRepository) Create(ctx context.Context, task *entity.CreateTaskRequest) (*entity.Task, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, task)
	}
	return nil, nil
}

func (m *MockTaskRepository) GetByID(ctx context.Context, id string) (*entity.Task, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockTaskRepository) Update(ctx context.Context, id string, ownerID int, updates map[string]interface{}) (*entity.Task, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, ownerID, updates)
	}
	return nil, nil
}

func (m *MockTaskRepository) UpdateOrders(ctx context.Context, ownerID int, assignments []entity.OrderAssignment) error {
	if m.UpdateOrdersFunc != nil {
		return m.UpdateOrdersFunc(ctx, ownerID, assignments)
	}
	return nil
}

func (m *MockTaskRepository) Delete(ctx context.Context, id string, ownerID int) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id, ownerID)
	}
	return nil
}

func (m *MockTaskRepository) List(ctx context.Context, ownerID int, status string) ([]entity.Task, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, ownerID, status)
	}
	return nil, nil
}

// MockUserRepository - мок для IUserRepository
type MockUserRepository struct {
	CreateFunc      func(ctx context.Context, user *entity.User) (*entity.User, error)
	GetByIDFunc     func(ctx context.Context, id int) (*entity.User, error)
	GetByEmailFunc  func(ctx context.Context, email string) (*entity.User, error)
	UpdateFunc      func(ctx context.Context, id int, updates map[string]interface{}) (*entity.User, error)
	ListByOwnerFunc func(ctx context.Context, ownerID int) ([]entity.User, error)
}

var _ repository.IUserRepository = (*MockUserRepository)(nil)

func (m *MockUserRepository) Create(ctx context.Context, user *entity.User) (*entity.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil, nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int) (*entity.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, nil
}

func (m *MockUserRepository) Update(ctx context.Context, id int, updates map[string]interface{}) (*entity.User, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, updates)
	}
	return nil, nil
}

func (m *MockUserRepository) ListByOwner(ctx context.Context, ownerID int) ([]entity.User, error) {
	if m.ListByOwnerFunc != nil {
		return m.ListByOwnerFunc(ctx, ownerID)
	}
	return nil, nil
}

// MockRefreshTokenRepository - мок для IRefreshTokenRepository
type MockRefreshTokenRepository struct {
	SaveFunc      func(ctx context.Context, userID int, tokenHash string, expiresAt time.Time) error
	GetByHashFunc func(ctx context.Context, tokenHash string) (*repository.RefreshToken, error)
	RevokeFunc    func(ctx context.Context, tokenHash string) error
	RevokeAllFunc func(ctx context.Context, userID int) error
}

var _ repository.IRefreshTokenRepository = (*MockRefreshTokenRepository)(nil)

func (m *MockRefreshTokenRepository) Save(ctx context.Context, userID int, tokenHash string, expiresAt time.Time) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, userID, tokenHash, expiresAt)
	}
	return nil
}

func (m *MockRefreshTokenRepository) GetByHash(ctx context.Context, tokenHash string) (*repository.RefreshToken, error) {
	if m.GetByHashFunc != nil {
		return m.GetByHashFunc(ctx, tokenHash)
	}
	return nil, nil
}

func (m *MockRefreshTokenRepository) Revoke(ctx context.Context, tokenHash string) error {
	if m.RevokeFunc != nil {
		return m.RevokeFunc(ctx, tokenHash)
	}
	return nil
}

func (m *MockRefreshTokenRepository) RevokeAll(ctx context.Context, userID int) error {
	if m.RevokeAllFunc != nil {
		return m.RevokeAllFunc(ctx, userID)
	}
	return nil
}

// MockAttachmentRepository - мок для IAttachmentRepository
type MockAttachmentRepository struct {
	SaveFunc    func(ctx context.Context, attachment *entity.Attachment) (*entity.Attachment, error)
	GetByIDFunc func(ctx context.Context, id string) (*entity.Attachment, error)
	DeleteFunc  func(ctx context.Context, id string) error
}

var _ repository.IAttachmentRepository = (*MockAttachmentRepository)(nil)

func (m *MockAttachmentRepository) Save(ctx context.Context, attachment *entity.Attachment) (*entity.Attachment, error) {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, attachment)
	}
	return attachment, nil
}

func (m *MockAttachmentRepository) GetByID(ctx context.Context, id string) (*entity.Attachment, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockAttachmentRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockReportRepository - мок для IReportRepository
type MockReportRepository struct {
	UpsertFunc       func(ctx context.Context, report *entity.Report) (*entity.Report, error)
	ListByAuthorFunc func(ctx context.Context, authorID int, limit int) ([]entity.Report, error)
	ListByOwnerFunc  func(ctx context.Context, ownerID int, date *entity.Date) ([]entity.Report, error)
	MarkEmailedFunc  func(ctx context.Context, id int, at time.Time) error
}

var _ repository.IReportRepository = (*MockReportRepository)(nil)

func (m *MockReportRepository) Upsert(ctx context.Context, report *entity.Report) (*entity.Report, error) {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, report)
	}
	return report, nil
}

func (m *MockReportRepository) ListByAuthor(ctx context.Context, authorID int, limit int) ([]entity.Report, error) {
	if m.ListByAuthorFunc != nil {
		return m.ListByAuthorFunc(ctx, authorID, limit)
	}
	return nil, nil
}

func (m *MockReportRepository) ListByOwner(ctx context.Context, ownerID int, date *entity.Date) ([]entity.Report, error) {
	if m.ListByOwnerFunc != nil {
		return m.ListByOwnerFunc(ctx, ownerID, date)
	}
	return nil, nil
}

func (m *MockReportRepository) MarkEmailed(ctx context.Context, id int, at time.Time) error {
	if m.MarkEmailedFunc != nil {
		return m.MarkEmailedFunc(ctx, id, at)
	}
	return nil
}

// MockReferenceRepository - мок для IReferenceRepository
type MockReferenceRepository struct {
	CreateFunc  func(ctx context.Context, ref *entity.Reference) (*entity.Reference, error)
	GetByIDFunc func(ctx context.Context, id int) (*entity.Reference, error)
	UpdateFunc  func(ctx context.Context, id int, updates map[string]interface{}) (*entity.Reference, error)
	DeleteFunc  func(ctx context.Context, id int) error
	ListFunc    func(ctx context.Context, ownerID int, category string) ([]entity.Reference, error)
}

var _ repository.IReferenceRepository = (*MockReferenceRepository)(nil)

func (m *MockReferenceRepository) Create(ctx context.Context, ref *entity.Reference) (*entity.Reference, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, ref)
	}
	return ref, nil
}

func (m *MockReferenceRepository) GetByID(ctx context.Context, id int) (*entity.Reference, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockReferenceRepository) Update(ctx context.Context, id int, updates map[string]interface{}) (*entity.Reference, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, updates)
	}
	return nil, nil
}

func (m *MockReferenceRepository) Delete(ctx context.Context, id int) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockReferenceRepository) List(ctx context.Context, ownerID int, category string) ([]entity.Reference, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, ownerID, category)
	}
	return nil, nil
}

// MockAuditPublisher - мок для AuditPublisher, запоминает отправленные сообщения
type MockAuditPublisher struct {
	mu       sync.Mutex
	Messages []*entity.AuditMessage
	Err      error
}

var _ AuditPublisher = (*MockAuditPublisher)(nil)

func (m *MockAuditPublisher) PublishAuditMessage(ctx context.Context, message *entity.AuditMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Messages = append(m.Messages, message)
	return m.Err
}

func (m *MockAuditPublisher) Actions() []entity.ActionType {
	m.mu.Lock()
	defer m.mu.Unlock()
	actions := make([]entity.ActionType, 0, len(m.Messages))
	for _, msg := range m.Messages {
		actions = append(actions, msg.Action)
	}
	return actions
}

// MockMailer - мок для Mailer
type MockMailer struct {
	SendFunc func(ctx context.Context, msg mail.Message) (string, error)
	Sent     []mail.Message
}

var _ Mailer = (*MockMailer)(nil)

func (m *MockMailer) Send(ctx context.Context, msg mail.Message) (string, error) {
	m.Sent = append(m.Sent, msg)
	if m.SendFunc != nil {
		return m.SendFunc(ctx, msg)
	}
	return "email-1", nil
}

// memoryStore - FileStore в памяти
type memoryStore struct {
	mu    sync.Mutex
	files map[string][]byte
	seq   int
	err   error
}

var _ FileStore = (*memoryStore)(nil)

func newMemoryStore() *memoryStore {
	return &memoryStore{files: make(map[string][]byte)}
}

func (s *memoryStore) Save(ctx context.Context, ownerID int, name string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	s.seq++
	path := fmt.Sprintf("%d/%d-%s", ownerID, s.seq, name)
	s.files[path] = append([]byte(nil), data...)
	return path, nil
}

func (s *memoryStore) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[path]
	if !ok {
		return nil, io.ErrUnexpectedEOF
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *memoryStore) Remove(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, path)
	return nil
}

func (s *memoryStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}
