package usecase

import (
	"context"
	"fmt"

	"github.com/St1cky1/command-center/internal/entity"
	"github.com/St1cky1/command-center/internal/repository"
	"github.com/go-playground/validator/v10"
)

type UserService struct {
	userRepo         repository.IUserRepository
	refreshTokenRepo repository.IRefreshTokenRepository
	validate         *validator.Validate
}

func NewUserService(
	userRepo repository.IUserRepository,
	refreshTokenRepo repository.IRefreshTokenRepository,
	validate *validator.Validate,
) *UserService {
	return &UserService{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		validate:         validate,
	}
}

// GetUser получает пользователя по ID
func (s *UserService) GetUser(ctx context.Context, userID int) (*entity.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, entity.ErrUserNotFound
	}
	return user, nil
}

// UpdateProfile - пользователь меняет только свое имя
func (s *UserService) UpdateProfile(ctx context.Context, user *entity.User, req *entity.UpdateUserRequest) (*entity.User, error) {
	if user == nil {
		return nil, entity.ErrUnauthenticated
	}
	if err := validateRequest(s.validate, req); err != nil {
		return nil, err
	}

	return s.userRepo.Update(ctx, user.ID, map[string]interface{}{"name": req.Name})
}

// ListAssistants - ассистенты руководителя
func (s *UserService) ListAssistants(ctx context.Context, user *entity.User) ([]entity.User, error) {
	if user == nil {
		return nil, entity.ErrUnauthenticated
	}
	if user.Role != entity.RoleExecutive {
		return nil, entity.ErrForbidden
	}
	return s.userRepo.ListByOwner(ctx, user.ID)
}

// Executive - руководитель, чью доску видит пользователь
func (s *UserService) Executive(ctx context.Context, user *entity.User) (*entity.User, error) {
	if user == nil {
		return nil, entity.ErrUnauthenticated
	}
	if user.BoardOwnerID() == user.ID {
		return user, nil
	}
	return s.GetUser(ctx, user.BoardOwnerID())
}

// SetAssistantActive включает или отключает ассистента; при отключении его сессии отзываются
func (s *UserService) SetAssistantActive(ctx context.Context, executive *entity.User, assistantID int, active bool) (*entity.User, error) {
	if executive == nil {
		return nil, entity.ErrUnauthenticated
	}

	assistant, err := s.GetUser(ctx, assistantID)
	if err != nil {
		return nil, err
	}
	// Проверяем права доступа
	if assistant.OwnerID == nil || *assistant.OwnerID != executive.ID {
		return nil, entity.ErrForbidden
	}

	updated, err := s.userRepo.Update(ctx, assistantID, map[string]interface{}{"is_active": active})
	if err != nil {
		return nil, err
	}

	if !active {
		if err := s.refreshTokenRepo.RevokeAll(ctx, assistantID); err != nil {
			return nil, fmt.Errorf("failed to revoke refresh tokens: %w", err)
		}
	}
	return updated, nil
}
