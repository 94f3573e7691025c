package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/St1cky1/command-center/internal/entity"
	"github.com/St1cky1/command-center/internal/infrastructure/auth"
	"github.com/St1cky1/command-center/internal/repository"
	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"
)

type AuthService struct {
	userRepo         repository.IUserRepository
	refreshTokenRepo repository.IRefreshTokenRepository
	passwordManager  *auth.PasswordManager
	jwtManager       *auth.JWTManager
	validate         *validator.Validate
	logger           *log.Logger
}

func NewAuthService(
	userRepo repository.IUserRepository,
	refreshTokenRepo repository.IRefreshTokenRepository,
	passwordManager *auth.PasswordManager,
	jwtManager *auth.JWTManager,
	validate *validator.Validate,
	logger *log.Logger,
) *AuthService {
	return &AuthService{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		passwordManager:  passwordManager,
		jwtManager:       jwtManager,
		validate:         validate,
		logger:           logger,
	}
}

// SignUp регистрирует пользователя. Ассистент привязывается к существующему руководителю
func (s *AuthService) SignUp(ctx context.Context, req *entity.SignUpRequest) (*entity.Session, error) {
	if err := validateRequest(s.validate, req); err != nil {
		return nil, err
	}
	req.Email = strings.TrimSpace(req.Email)

	// Проверяем, что пользователь с таким email не существует
	existingUser, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existingUser != nil {
		return nil, entity.ErrEmailTaken
	}

	var ownerID *int
	if req.Role == entity.RoleAssistant {
		owner, err := s.userRepo.GetByID(ctx, *req.OwnerID)
		if err != nil {
			return nil, fmt.Errorf("failed to get executive: %w", err)
		}
		if owner == nil || owner.Role != entity.RoleExecutive {
			return nil, &entity.ValidationError{Fields: []string{"owner_id"}}
		}
		ownerID = &owner.ID
	}

	// Хешируем пароль
	passwordHash, err := s.passwordManager.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.Create(ctx, &entity.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: passwordHash,
		Role:         req.Role,
		OwnerID:      ownerID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.WithFields(log.Fields{"user_id": user.ID, "role": user.Role}).Info("user signed up")
	return s.issueSession(ctx, user)
}

// SignIn логинит пользователя
func (s *AuthService) SignIn(ctx context.Context, req *entity.SignInRequest) (*entity.Session, error) {
	if err := validateRequest(s.validate, req); err != nil {
		return nil, err
	}

	// Ищем пользователя по email
	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, entity.ErrInvalidCredentials
	}

	// Проверяем пароль
	if !s.passwordManager.VerifyPassword(user.PasswordHash, req.Password) {
		return nil, entity.ErrInvalidCredentials
	}

	// Проверяем активность пользователя
	if !user.IsActive {
		return nil, entity.ErrForbidden
	}

	return s.issueSession(ctx, user)
}

// RefreshToken выпускает новую пару токенов, старый refresh token отзывается
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*entity.Session, error) {
	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, entity.ErrUnauthenticated
	}

	// Проверяем, есть ли этот токен в БД
	tokenHash := hashToken(refreshToken)
	storedToken, err := s.refreshTokenRepo.GetByHash(ctx, tokenHash)
	if err != nil {
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}
	if storedToken == nil {
		return nil, entity.ErrUnauthenticated
	}

	user, err := s.activeUser(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}

	// Откатываем старый refresh token
	if err := s.refreshTokenRepo.Revoke(ctx, tokenHash); err != nil {
		return nil, fmt.Errorf("failed to revoke old refresh token: %w", err)
	}

	return s.issueSession(ctx, user)
}

// SignOut отзывает все refresh токены пользователя
func (s *AuthService) SignOut(ctx context.Context, user *entity.User) error {
	if user == nil {
		return entity.ErrUnauthenticated
	}
	if err := s.refreshTokenRepo.RevokeAll(ctx, user.ID); err != nil {
		return fmt.Errorf("failed to revoke refresh tokens: %w", err)
	}
	return nil
}

// CurrentUser - пользователь активной сессии по access token
func (s *AuthService) CurrentUser(ctx context.Context, accessToken string) (*entity.User, error) {
	if accessToken == "" {
		return nil, entity.ErrUnauthenticated
	}
	claims, err := s.jwtManager.ValidateAccessToken(accessToken)
	if err != nil {
		return nil, entity.ErrUnauthenticated
	}
	return s.activeUser(ctx, claims.UserID)
}

func (s *AuthService) activeUser(ctx context.Context, userID int) (*entity.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || !user.IsActive {
		return nil, entity.ErrUnauthenticated
	}
	return user, nil
}

func (s *AuthService) issueSession(ctx context.Context, user *entity.User) (*entity.Session, error) {
	accessToken, err := s.jwtManager.GenerateAccessToken(user)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.jwtManager.GenerateRefreshToken(user)
	if err != nil {
		return nil, err
	}

	// Сохраняем хеш refresh token в БД
	expiresAt := time.Now().Add(s.jwtManager.RefreshTTL())
	if err := s.refreshTokenRepo.Save(ctx, user.ID, hashToken(refreshToken), expiresAt); err != nil {
		return nil, fmt.Errorf("failed to save refresh token: %w", err)
	}

	// Обновляем last_login
	if _, err := s.userRepo.Update(ctx, user.ID, map[string]interface{}{"last_login": time.Now()}); err != nil {
		s.logger.WithField("user_id", user.ID).WithError(err).Warn("failed to update last_login")
	}

	return &entity.Session{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// hashToken генерирует хеш токена для хранения в БД
func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
