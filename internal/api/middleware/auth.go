package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/St1cky1/command-center/internal/entity"
)

type ctxKey struct{}

var errBadAuthorization = errors.New("bad auth header")

// SessionResolver - кто стоит за access токеном
type SessionResolver interface {
	CurrentUser(ctx context.Context, accessToken string) (*entity.User, error)
}

// Authenticator пропускает дальше только запросы с действующим Bearer токеном
func Authenticator(sessions SessionResolver, onError func(w http.ResponseWriter, err error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := BearerToken(r.Header)
			if err != nil {
				onError(w, entity.ErrUnauthenticated)
				return
			}

			user, err := sessions.CurrentUser(r.Context(), token)
			if err != nil {
				onError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// BearerToken достает токен из заголовка Authorization
func BearerToken(header http.Header) (string, error) {
	raw := strings.TrimSpace(header.Get("Authorization"))
	if raw == "" {
		return "", entity.ErrUnauthenticated
	}
	scheme, token, ok := strings.Cut(raw, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", errBadAuthorization
	}
	return strings.TrimSpace(token), nil
}

func WithUser(ctx context.Context, user *entity.User) context.Context {
	return context.WithValue(ctx, ctxKey{}, user)
}

// UserFromContext - пользователь сессии или nil
func UserFromContext(ctx context.Context) *entity.User {
	user, _ := ctx.Value(ctxKey{}).(*entity.User)
	return user
}
