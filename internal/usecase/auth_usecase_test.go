package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"health-program-api/config"
	"health-program-api/internal/delivery/dto"
	"health-program-api/internal/domain/entity"
	"health-program-api/internal/event"
	"health-program-api/internal/service"
	"health-program-api/pkg/jwt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const testOTPWindow = 5 * time.Minute

type authFixture struct {
	uc      *authUsecase
	users   *fakeUserRepo
	otps    *fakeOTPRepo
	tokens  *fakeTokenRepo
	cache   *fakeTokenCache
	limiter *fakeLimiter
	audit   *fakeAudit
	pub     *fakePublisher
	clock   time.Time
	codes   []string
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	f := &authFixture{
		users:   newFakeUserRepo(),
		otps:    &fakeOTPRepo{},
		tokens:  newFakeTokenRepo(),
		cache:   newFakeTokenCache(),
		limiter: newFakeLimiter(3),
		audit:   &fakeAudit{},
		pub:     &fakePublisher{},
		clock:   time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC),
	}
	jwtService := jwt.NewJWTService(config.JWTConfig{Secret: "test-secret"})
	f.uc = NewAuthUsecase(quietLogger(), f.users, fakeRoleRepo{}, f.otps, f.tokens, jwtService,
		f.cache, f.limiter, f.audit, f.pub, testOTPWindow).(*authUsecase)
	f.uc.now = func() time.Time { return f.clock }
	f.uc.generateCode = func() (string, error) {
		if len(f.codes) == 0 {
			return "", errors.New("no codes queued")
		}
		code := f.codes[0]
		f.codes = f.codes[1:]
		return code, nil
	}
	return f
}

func (f *authFixture) addUser(t *testing.T, username, password string, active bool) *entity.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &entity.User{
		RoleID:   entity.RoleIDDoctor,
		Username: username,
		Email:    username + "@clinic.test",
		Password: string(hash),
		FullName: "Dr " + username,
		IsActive: &active,
	}
	if err := f.users.Create(context.Background(), user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func (f *authFixture) login(t *testing.T, username, password, code string) {
	t.Helper()
	f.codes = append(f.codes, code)
	if _, err := f.uc.RequestLogin(context.Background(), &dto.LoginRequest{Username: username, Password: password}); err != nil {
		t.Fatalf("RequestLogin: %v", err)
	}
}

func (f *authFixture) verify(username, code string) (*dto.TokenResponse, error) {
	return f.uc.VerifyOTP(context.Background(), &dto.VerifyOTPRequest{Username: username, OTPCode: code})
}

func TestRequestLoginIssuesOTP(t *testing.T) {
	f := newAuthFixture(t)
	user := f.addUser(t, "alice", "s3cret-pass", true)

	f.codes = []string{"123456"}
	resp, err := f.uc.RequestLogin(context.Background(), &dto.LoginRequest{Username: "alice", Password: "s3cret-pass"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Username != "alice" || resp.Message == "" {
		t.Errorf("unexpected response: %+v", resp)
	}

	stored := f.otps.forUser(user.ID)
	if len(stored) != 1 {
		t.Fatalf("expected one OTP, got %d", len(stored))
	}
	if stored[0].CodeHash == "123456" || stored[0].CodeHash != hashOTP("123456") {
		t.Errorf("expected hashed code, got %q", stored[0].CodeHash)
	}

	if len(f.pub.events) != 1 || f.pub.events[0].subject != event.OTPIssued {
		t.Fatalf("expected one otp.issued event, got %v", f.pub.subjects())
	}
	payload := f.pub.events[0].payload.(event.OTPIssuedEvent)
	if payload.Code != "123456" || payload.Email != "alice@clinic.test" || payload.ExpireMinutes != 5 {
		t.Errorf("unexpected payload: %+v", payload)
	}
}

func TestRequestLoginRejectsBadCredentials(t *testing.T) {
	f := newAuthFixture(t)
	f.addUser(t, "alice", "s3cret-pass", true)
	f.addUser(t, "bob", "s3cret-pass", false)

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"wrong password", "alice", "nope"},
		{"unknown user", "mallory", "s3cret-pass"},
		{"inactive user", "bob", "s3cret-pass"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.uc.RequestLogin(context.Background(), &dto.LoginRequest{Username: tt.username, Password: tt.password})
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Errorf("expected ErrInvalidCredentials, got %v", err)
			}
		})
	}

	if len(f.pub.events) != 0 {
		t.Errorf("no OTP should be sent, got %v", f.pub.subjects())
	}
}

func TestSecondLoginInvalidatesFirstOTP(t *testing.T) {
	f := newAuthFixture(t)
	user := f.addUser(t, "alice", "s3cret-pass", true)

	f.login(t, "alice", "s3cret-pass", "111111")
	f.login(t, "alice", "s3cret-pass", "222222")

	if n := len(f.otps.forUser(user.ID)); n != 1 {
		t.Fatalf("expected one outstanding OTP, got %d", n)
	}
	if _, err := f.verify("alice", "111111"); !errors.Is(err, ErrInvalidOTP) {
		t.Errorf("first code: expected ErrInvalidOTP, got %v", err)
	}
	if _, err := f.verify("alice", "222222"); err != nil {
		t.Errorf("second code: unexpected error %v", err)
	}
}

func TestVerifyOTPIssuesToken(t *testing.T) {
	f := newAuthFixture(t)
	user := f.addUser(t, "alice", "s3cret-pass", true)
	f.login(t, "alice", "s3cret-pass", "654321")

	resp, err := f.verify("alice", "654321")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Token == "" || resp.UserID != user.ID || resp.Username != "alice" || resp.Email != "alice@clinic.test" {
		t.Errorf("unexpected response: %+v", resp)
	}

	stored, _ := f.tokens.FindByUserID(context.Background(), user.ID)
	if stored == nil || stored.Key != resp.Token {
		t.Errorf("token was not persisted")
	}
}

func TestVerifyOTPRejectsReplay(t *testing.T) {
	f := newAuthFixture(t)
	f.addUser(t, "alice", "s3cret-pass", true)
	f.login(t, "alice", "s3cret-pass", "654321")

	if _, err := f.verify("alice", "654321"); err != nil {
		t.Fatalf("first verify: %v", err)
	}
	if _, err := f.verify("alice", "654321"); !errors.Is(err, ErrInvalidOTP) {
		t.Errorf("replay: expected ErrInvalidOTP, got %v", err)
	}
}

func TestVerifyOTPWindow(t *testing.T) {
	tests := []struct {
		name    string
		elapsed time.Duration
		wantErr error
	}{
		{"inside window", 4 * time.Minute, nil},
		{"at window boundary", testOTPWindow, nil},
		{"after window", testOTPWindow + time.Second, ErrOTPExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture(t)
			f.addUser(t, "alice", "s3cret-pass", true)
			f.login(t, "alice", "s3cret-pass", "654321")

			f.clock = f.clock.Add(tt.elapsed)
			_, err := f.verify("alice", "654321")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestVerifyOTPUnknownUser(t *testing.T) {
	f := newAuthFixture(t)

	if _, err := f.verify("ghost", "123456"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestVerifyOTPTooManyAttempts(t *testing.T) {
	f := newAuthFixture(t)
	f.addUser(t, "alice", "s3cret-pass", true)
	f.login(t, "alice", "s3cret-pass", "654321")

	for i := 0; i < 3; i++ {
		if _, err := f.verify("alice", "000000"); !errors.Is(err, ErrInvalidOTP) {
			t.Fatalf("attempt %d: expected ErrInvalidOTP, got %v", i+1, err)
		}
	}

	if _, err := f.verify("alice", "654321"); !errors.Is(err, ErrTooManyAttempts) {
		t.Errorf("expected ErrTooManyAttempts, got %v", err)
	}
}

func TestNewLoginLiftsAttemptLockout(t *testing.T) {
	f := newAuthFixture(t)
	f.addUser(t, "alice", "s3cret-pass", true)
	f.login(t, "alice", "s3cret-pass", "111111")

	for i := 0; i < 3; i++ {
		_, _ = f.verify("alice", "000000")
	}
	if _, err := f.verify("alice", "111111"); !errors.Is(err, ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}

	f.login(t, "alice", "s3cret-pass", "222222")
	if _, err := f.verify("alice", "222222"); err != nil {
		t.Errorf("expected fresh OTP to verify, got %v", err)
	}
}

func TestVerifyOTPResetsAttemptsOnSuccess(t *testing.T) {
	f := newAuthFixture(t)
	f.addUser(t, "alice", "s3cret-pass", true)
	f.login(t, "alice", "s3cret-pass", "654321")

	_, _ = f.verify("alice", "000000")
	if _, err := f.verify("alice", "654321"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := f.limiter.failures["alice"]; n != 0 {
		t.Errorf("expected attempts reset, got %d", n)
	}
}

func TestVerifyOTPReusesToken(t *testing.T) {
	f := newAuthFixture(t)
	f.addUser(t, "alice", "s3cret-pass", true)

	f.login(t, "alice", "s3cret-pass", "111111")
	first, err := f.verify("alice", "111111")
	if err != nil {
		t.Fatalf("first verify: %v", err)
	}

	f.login(t, "alice", "s3cret-pass", "222222")
	second, err := f.verify("alice", "222222")
	if err != nil {
		t.Fatalf("second verify: %v", err)
	}

	if first.Token != second.Token {
		t.Errorf("expected the same token on re-login")
	}
	if f.tokens.creates != 1 {
		t.Errorf("expected one token row, got %d", f.tokens.creates)
	}
}

func TestAuthenticate(t *testing.T) {
	f := newAuthFixture(t)
	user := f.addUser(t, "alice", "s3cret-pass", true)
	f.login(t, "alice", "s3cret-pass", "654321")
	resp, err := f.verify("alice", "654321")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}

	got, err := f.uc.Authenticate(context.Background(), resp.Token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.UserID != user.ID || got.RoleID != entity.RoleIDDoctor || got.Username != "alice" {
		t.Errorf("unexpected user: %+v", got)
	}
	if len(f.cache.entries) != 1 {
		t.Errorf("expected token to be cached")
	}

	// served from cache once the database row is gone
	f.tokens.rows = map[uuid.UUID]*entity.AuthToken{}
	if _, err := f.uc.Authenticate(context.Background(), resp.Token); err != nil {
		t.Errorf("cached lookup: unexpected error %v", err)
	}
}

func TestAuthenticateRejects(t *testing.T) {
	f := newAuthFixture(t)
	user := f.addUser(t, "alice", "s3cret-pass", true)
	f.login(t, "alice", "s3cret-pass", "654321")
	resp, err := f.verify("alice", "654321")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}

	t.Run("garbage", func(t *testing.T) {
		if _, err := f.uc.Authenticate(context.Background(), "not-a-token"); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("signed but not stored", func(t *testing.T) {
		other := jwt.NewJWTService(config.JWTConfig{Secret: "test-secret"})
		signed, _, err := other.GenerateToken(user.ID, user.Username)
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if _, err := f.uc.Authenticate(context.Background(), signed); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("inactive user", func(t *testing.T) {
		inactive := false
		f.users.byID[user.ID].IsActive = &inactive
		f.cache.entries = map[uuid.UUID]*service.CachedToken{}
		if _, err := f.uc.Authenticate(context.Background(), resp.Token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})
}

func TestCreateUser(t *testing.T) {
	f := newAuthFixture(t)
	actor := uuid.New()

	req := &dto.CreateUserRequest{
		Username: "registrar1",
		Email:    "reg@clinic.test",
		Password: "long-enough-password",
		FullName: "Reg One",
		Role:     entity.RoleRegistrar,
	}
	resp, err := f.uc.CreateUser(context.Background(), actor, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Username != "registrar1" || resp.Role != entity.RoleRegistrar {
		t.Errorf("unexpected response: %+v", resp)
	}

	stored, _ := f.users.FindByUsername(context.Background(), "registrar1")
	if stored == nil || bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("long-enough-password")) != nil {
		t.Errorf("password was not hashed and stored")
	}

	if _, err := f.uc.CreateUser(context.Background(), actor, req); !errors.Is(err, ErrUsernameExists) {
		t.Errorf("duplicate: expected ErrUsernameExists, got %v", err)
	}

	req.Username, req.Role = "someone", "janitor"
	if _, err := f.uc.CreateUser(context.Background(), actor, req); !errors.Is(err, ErrRoleNotFound) {
		t.Errorf("bad role: expected ErrRoleNotFound, got %v", err)
	}
}

func TestEnsureAdminIsIdempotent(t *testing.T) {
	f := newAuthFixture(t)
	cfg := config.BootstrapConfig{AdminUsername: "admin", AdminPassword: "change-me-now", AdminEmail: "admin@clinic.test"}

	for i := 0; i < 2; i++ {
		if err := f.uc.EnsureAdmin(context.Background(), cfg); err != nil {
			t.Fatalf("run %d: %v", i+1, err)
		}
	}

	if len(f.users.byID) != 1 {
		t.Fatalf("expected one admin, got %d users", len(f.users.byID))
	}
	admin, _ := f.users.FindByUsername(context.Background(), "admin")
	if admin.RoleID != entity.RoleIDAdmin {
		t.Errorf("expected admin role, got %d", admin.RoleID)
	}

	if err := f.uc.EnsureAdmin(context.Background(), config.BootstrapConfig{}); err != nil {
		t.Errorf("empty config should be a no-op, got %v", err)
	}
}
