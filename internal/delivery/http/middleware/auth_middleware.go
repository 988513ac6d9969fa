package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"health-program-api/internal/delivery/dto"
	"health-program-api/internal/usecase"
	"health-program-api/pkg/response"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type contextKey string

const (
	UserIDKey   contextKey = "user_id"
	UsernameKey contextKey = "username"
	RoleIDKey   contextKey = "role_id"
)

// Authenticator resolves a bearer token to the staff member it belongs to.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*dto.AuthenticatedUser, error)
}

type AuthMiddleware struct {
	log           *logrus.Logger
	authenticator Authenticator
}

func NewAuthMiddleware(log *logrus.Logger, authenticator Authenticator) *AuthMiddleware {
	return &AuthMiddleware{
		log:           log,
		authenticator: authenticator,
	}
}

func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.Unauthorized(w, "Authorization header is required")
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			response.Unauthorized(w, "Invalid authorization header format")
			return
		}

		user, err := m.authenticator.Authenticate(r.Context(), parts[1])
		if err != nil {
			if errors.Is(err, usecase.ErrInvalidToken) {
				response.Unauthorized(w, "Invalid token")
				return
			}
			m.log.Warnf("Failed to authenticate request: %+v", err)
			response.InternalServerError(w, "Failed to validate token")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

// GetUserIDFromContext extracts user ID from context
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return userID, ok
}

func GetUsernameFromContext(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(UsernameKey).(string)
	return username, ok
}

// GetRoleIDFromContext extracts role ID from context
func GetRoleIDFromContext(ctx context.Context) (int, bool) {
	roleID, ok := ctx.Value(RoleIDKey).(int)
	return roleID, ok
}

// WithUser stores an authenticated identity on ctx the same way Authenticate does.
func WithUser(ctx context.Context, user *dto.AuthenticatedUser) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, user.UserID)
	ctx = context.WithValue(ctx, UsernameKey, user.Username)
	return context.WithValue(ctx, RoleIDKey, user.RoleID)
}
