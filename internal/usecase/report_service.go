package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/St1cky1/command-center/internal/entity"
	"github.com/St1cky1/command-center/internal/infrastructure/mail"
	"github.com/St1cky1/command-center/internal/repository"
	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"
)

const defaultReportHistory = 30

// Mailer - транзакционная почта
type Mailer interface {
	Send(ctx context.Context, msg mail.Message) (string, error)
}

// ReportSubmission - сохраненный отчет и результат отправки письма руководителю
type ReportSubmission struct {
	Report     *entity.Report `json:"report"`
	Emailed    bool           `json:"emailed"`
	EmailError string         `json:"email_error,omitempty"`
}

type ReportService struct {
	reportRepo repository.IReportRepository
	userRepo   repository.IUserRepository
	mailer     Mailer
	validate   *validator.Validate
	logger     *log.Logger
	now        func() time.Time
}

func NewReportService(
	reportRepo repository.IReportRepository,
	userRepo repository.IUserRepository,
	mailer Mailer,
	validate *validator.Validate,
	logger *log.Logger,
) *ReportService {
	return &ReportService{
		reportRepo: reportRepo,
		userRepo:   userRepo,
		mailer:     mailer,
		validate:   validate,
		logger:     logger,
		now:        time.Now,
	}
}

// Submit сохраняет отчет за день и отправляет его руководителю.
// Ошибка письма не отменяет сохранение: она возвращается в ReportSubmission.
func (s *ReportService) Submit(ctx context.Context, user *entity.User, req *entity.SubmitReportRequest) (*ReportSubmission, error) {
	if user == nil {
		return nil, entity.ErrUnauthenticated
	}
	if err := validateRequest(s.validate, req); err != nil {
		return nil, err
	}

	date := entity.DateOf(s.now())
	if req.ReportDate != nil {
		date = *req.ReportDate
	}

	saved, err := s.reportRepo.Upsert(ctx, &entity.Report{
		AuthorID:   user.ID,
		OwnerID:    user.BoardOwnerID(),
		ReportDate: date,
		Summary:    req.Summary,
		Completed:  req.Completed,
		Blockers:   req.Blockers,
		Tomorrow:   req.Tomorrow,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save report: %w", err)
	}

	result := &ReportSubmission{Report: saved}
	// руководитель не отправляет отчет сам себе
	if saved.OwnerID == user.ID {
		return result, nil
	}

	if err := s.email(ctx, saved, user); err != nil {
		s.logger.WithFields(log.Fields{
			"report_id": saved.ID,
			"author_id": user.ID,
		}).WithError(err).Warn("report saved but email failed")
		result.EmailError = err.Error()
		return result, nil
	}
	result.Emailed = true
	return result, nil
}

func (s *ReportService) email(ctx context.Context, report *entity.Report, author *entity.User) error {
	executive, err := s.userRepo.GetByID(ctx, report.OwnerID)
	if err != nil {
		return err
	}
	if executive == nil {
		return entity.ErrUserNotFound
	}

	msg, err := mail.ReportMessage(report, author, executive.Email)
	if err != nil {
		return err
	}
	if _, err := s.mailer.Send(ctx, msg); err != nil {
		return err
	}

	emailedAt := s.now()
	if err := s.reportRepo.MarkEmailed(ctx, report.ID, emailedAt); err != nil {
		s.logger.WithField("report_id", report.ID).WithError(err).Warn("failed to mark report emailed")
	}
	report.EmailedAt = &emailedAt
	return nil
}

// ListMine - свои отчеты, новые первыми
func (s *ReportService) ListMine(ctx context.Context, user *entity.User, limit int) ([]entity.Report, error) {
	if user == nil {
		return nil, entity.ErrUnauthenticated
	}
	if limit <= 0 {
		limit = defaultReportHistory
	}
	return s.reportRepo.ListByAuthor(ctx, user.ID, limit)
}

// ListForExecutive - отчеты ассистентов руководителя, date фильтрует по дню
func (s *ReportService) ListForExecutive(ctx context.Context, user *entity.User, date *entity.Date) ([]entity.Report, error) {
	if user == nil {
		return nil, entity.ErrUnauthenticated
	}
	if user.Role != entity.RoleExecutive {
		return nil, entity.ErrForbidden
	}
	return s.reportRepo.ListByOwner(ctx, user.ID, date)
}
