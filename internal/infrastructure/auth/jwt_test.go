package auth

import (
	"testing"
	"time"

	"github.com/St1cky1/command-center/internal/entity"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	m := NewJWTManager("secret", time.Minute, time.Hour)
	user := &entity.User{ID: 42, Email: "ops@sagan.dev", Role: entity.RoleAssistant}

	token, err := m.GenerateAccessToken(user)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	claims, err := m.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("Expected valid token, got %v", err)
	}
	if claims.UserID != 42 || claims.Email != "ops@sagan.dev" || claims.Role != entity.RoleAssistant {
		t.Errorf("Unexpected claims: %+v", claims)
	}
}

func TestRefreshTokenRejectedAsAccess(t *testing.T) {
	m := NewJWTManager("secret", time.Minute, time.Hour)
	token, err := m.GenerateRefreshToken(&entity.User{ID: 1})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if _, err := m.ValidateAccessToken(token); err == nil {
		t.Error("Expected refresh token rejected as access token")
	}
	if _, err := m.ValidateRefreshToken(token); err != nil {
		t.Errorf("Expected valid refresh token, got %v", err)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	m := NewJWTManager("secret", -time.Minute, time.Hour)
	token, err := m.GenerateAccessToken(&entity.User{ID: 1})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, err := m.ValidateAccessToken(token); err == nil {
		t.Error("Expected expired token rejected")
	}
}

func TestWrongSecretRejected(t *testing.T) {
	token, err := NewJWTManager("one", time.Minute, time.Hour).GenerateAccessToken(&entity.User{ID: 1})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, err := NewJWTManager("two", time.Minute, time.Hour).ValidateAccessToken(token); err == nil {
		t.Error("Expected token signed with another secret rejected")
	}
}

func TestPasswordManager(t *testing.T) {
	m := NewPasswordManager()
	hash, err := m.HashPassword("correct horse")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !m.VerifyPassword(hash, "correct horse") {
		t.Error("Expected password to verify")
	}
	if m.VerifyPassword(hash, "battery staple") {
		t.Error("Expected wrong password to fail")
	}
}
