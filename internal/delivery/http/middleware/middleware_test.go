package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"health-program-api/internal/delivery/dto"
	"health-program-api/internal/domain/entity"
	"health-program-api/internal/usecase"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type fakeAuthenticator struct {
	users map[string]*dto.AuthenticatedUser
	err   error
}

func (f *fakeAuthenticator) Authenticate(_ context.Context, token string) (*dto.AuthenticatedUser, error) {
	if f.err != nil {
		return nil, f.err
	}
	if u, ok := f.users[token]; ok {
		return u, nil
	}
	return nil, usecase.ErrInvalidToken
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestAuthenticate(t *testing.T) {
	alice := &dto.AuthenticatedUser{UserID: uuid.New(), Username: "alice", RoleID: entity.RoleIDDoctor}
	authn := &fakeAuthenticator{users: map[string]*dto.AuthenticatedUser{"good": alice}}
	mw := NewAuthMiddleware(quietLogger(), authn)

	var seen uuid.UUID
	var seenRole int
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = GetUserIDFromContext(r.Context())
		seenRole, _ = GetRoleIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Token good", http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
		{"unknown token", "Bearer bad", http.StatusUnauthorized},
		{"valid token", "Bearer good", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			mw.Authenticate(next).ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}

	if seen != alice.UserID || seenRole != entity.RoleIDDoctor {
		t.Errorf("identity not propagated: %s role %d", seen, seenRole)
	}
}

func TestAuthenticateBackendFailure(t *testing.T) {
	mw := NewAuthMiddleware(quietLogger(), &fakeAuthenticator{err: errors.New("db down")})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer whatever")
	rec := httptest.NewRecorder()
	mw.Authenticate(http.NotFoundHandler()).ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
}

func TestRoleMiddleware(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	tests := []struct {
		name   string
		guard  func(http.Handler) http.Handler
		roleID int
		want   int
	}{
		{"admin on admin route", RequireAdmin, entity.RoleIDAdmin, http.StatusOK},
		{"doctor on admin route", RequireAdmin, entity.RoleIDDoctor, http.StatusForbidden},
		{"doctor on doctor route", RequireDoctor, entity.RoleIDDoctor, http.StatusOK},
		{"admin on doctor route", RequireDoctor, entity.RoleIDAdmin, http.StatusOK},
		{"registrar on doctor route", RequireDoctor, entity.RoleIDRegistrar, http.StatusForbidden},
		{"registrar on registrar route", RequireRegistrar, entity.RoleIDRegistrar, http.StatusOK},
		{"doctor on registrar route", RequireRegistrar, entity.RoleIDDoctor, http.StatusForbidden},
		{"registrar enrolls", RequireEnroller, entity.RoleIDRegistrar, http.StatusOK},
		{"doctor enrolls", RequireEnroller, entity.RoleIDDoctor, http.StatusOK},
		{"unknown role enrolls", RequireEnroller, 99, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := WithUser(context.Background(), &dto.AuthenticatedUser{UserID: uuid.New(), RoleID: tt.roleID})
			req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
			rec := httptest.NewRecorder()
			tt.guard(ok).ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}

	t.Run("no identity", func(t *testing.T) {
		rec := httptest.NewRecorder()
		RequireAdmin(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})
}

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTeapot) })

	t.Run("preflight", func(t *testing.T) {
		rec := httptest.NewRecorder()
		NewCORSMiddleware().Handle(next).ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/", nil))
		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}
		if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
			t.Errorf("expected wildcard origin, got %q", rec.Header().Get("Access-Control-Allow-Origin"))
		}
	})

	t.Run("restricted origins", func(t *testing.T) {
		mw := NewCORSMiddleware("https://clinic.example")

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://clinic.example")
		rec := httptest.NewRecorder()
		mw.Handle(next).ServeHTTP(rec, req)
		if rec.Header().Get("Access-Control-Allow-Origin") != "https://clinic.example" {
			t.Errorf("allowed origin not echoed")
		}
		if rec.Code != http.StatusTeapot {
			t.Errorf("request should reach the handler, got %d", rec.Code)
		}

		req.Header.Set("Origin", "https://evil.example")
		rec = httptest.NewRecorder()
		mw.Handle(next).ServeHTTP(rec, req)
		if rec.Header().Get("Access-Control-Allow-Origin") != "" {
			t.Errorf("unknown origin must not be allowed")
		}
	})
}
