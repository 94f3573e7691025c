package entity

import "time"

type Role string

const (
	RoleExecutive Role = "executive"
	RoleAssistant Role = "assistant"
)

type User struct {
	ID           int        `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"` // Никогда не отправляем пароль
	Role         Role       `json:"role"`
	OwnerID      *int       `json:"owner_id,omitempty"` // руководитель ассистента
	IsActive     bool       `json:"is_active"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// BoardOwnerID - чью доску видит пользователь: ассистент работает с доской руководителя
func (u *User) BoardOwnerID() int {
	if u.Role == RoleAssistant && u.OwnerID != nil {
		return *u.OwnerID
	}
	return u.ID
}

type UpdateUserRequest struct {
	Name string `json:"name" validate:"required,min=1,max=255"`
}

// Регистрация
type SignUpRequest struct {
	Name            string `json:"name" validate:"required,min=1,max=255"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8,max=255"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
	Role            Role   `json:"role" validate:"required,oneof=executive assistant"`
	OwnerID         *int   `json:"owner_id" validate:"required_if=Role assistant"`
}

// Логин
type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type Session struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// JWT Claims
type JWTClaims struct {
	UserID int    `json:"user_id"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
}
