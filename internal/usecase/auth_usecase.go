package usecase

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"health-program-api/config"
	"health-program-api/internal/converter"
	"health-program-api/internal/delivery/dto"
	"health-program-api/internal/domain/entity"
	"health-program-api/internal/domain/repository"
	"health-program-api/internal/event"
	"health-program-api/internal/service"
	"health-program-api/pkg/jwt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidOTP         = errors.New("invalid OTP")
	ErrOTPExpired         = errors.New("OTP has expired")
	ErrTooManyAttempts    = errors.New("too many OTP verification attempts")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUsernameExists     = errors.New("username already exists")
	ErrRoleNotFound       = errors.New("role not found")
)

const loginMessage = "OTP has been sent to your email."

// dummyHash keeps the response time for unknown usernames close to that of a
// wrong password.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)

type AuthUsecase interface {
	RequestLogin(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	VerifyOTP(ctx context.Context, req *dto.VerifyOTPRequest) (*dto.TokenResponse, error)
	Authenticate(ctx context.Context, token string) (*dto.AuthenticatedUser, error)
	GetCurrentUser(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error)
	CreateUser(ctx context.Context, actorID uuid.UUID, req *dto.CreateUserRequest) (*dto.UserResponse, error)
	EnsureAdmin(ctx context.Context, cfg config.BootstrapConfig) error
}

type authUsecase struct {
	log            *logrus.Logger
	userRepo       repository.UserRepository
	roleRepo       repository.RoleRepository
	otpRepo        repository.OTPRepository
	tokenRepo      repository.AuthTokenRepository
	jwtService     *jwt.JWTService
	tokenCache     service.TokenCache
	attemptLimiter service.OTPAttemptLimiter
	auditService   service.AuditService
	publisher      event.Publisher
	otpWindow      time.Duration

	now          func() time.Time
	generateCode func() (string, error)
}

func NewAuthUsecase(
	log *logrus.Logger,
	userRepo repository.UserRepository,
	roleRepo repository.RoleRepository,
	otpRepo repository.OTPRepository,
	tokenRepo repository.AuthTokenRepository,
	jwtService *jwt.JWTService,
	tokenCache service.TokenCache,
	attemptLimiter service.OTPAttemptLimiter,
	auditService service.AuditService,
	publisher event.Publisher,
	otpWindow time.Duration,
) AuthUsecase {
	return &authUsecase{
		log:            log,
		userRepo:       userRepo,
		roleRepo:       roleRepo,
		otpRepo:        otpRepo,
		tokenRepo:      tokenRepo,
		jwtService:     jwtService,
		tokenCache:     tokenCache,
		attemptLimiter: attemptLimiter,
		auditService:   auditService,
		publisher:      publisher,
		otpWindow:      otpWindow,
		now:            time.Now,
		generateCode:   generateOTPCode,
	}
}

// RequestLogin checks the password and issues a fresh OTP, replacing any
// outstanding one. The code itself is only sent by email.
func (u *authUsecase) RequestLogin(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := u.userRepo.FindByUsername(ctx, req.Username)
	if err != nil {
		u.log.Warnf("Failed to find user by username: %+v", err)
		return nil, err
	}

	if user == nil || !user.Active() {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(req.Password))
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	code, err := u.generateCode()
	if err != nil {
		u.log.Warnf("Failed to generate OTP: %+v", err)
		return nil, err
	}

	otp := &entity.OTP{
		UserID:    user.ID,
		CodeHash:  hashOTP(code),
		CreatedAt: u.now(),
	}
	if err := u.otpRepo.Replace(ctx, otp); err != nil {
		u.log.Warnf("Failed to store OTP: %+v", err)
		return nil, err
	}

	// failures against the replaced code must not lock out the new one
	if err := u.attemptLimiter.Reset(ctx, user.Username); err != nil {
		u.log.Warnf("Failed to reset OTP attempts: %+v", err)
	}

	publishEvent(ctx, u.publisher, u.log, event.OTPIssued, event.OTPIssuedEvent{
		UserID:        user.ID.String(),
		Username:      user.Username,
		Email:         user.Email,
		FullName:      user.FullName,
		Code:          code,
		ExpireMinutes: int(u.otpWindow / time.Minute),
	})
	u.auditService.LogAction(ctx, &user.ID, entity.AuditActionLoginRequested, map[string]any{
		"username": user.Username,
	})

	return &dto.LoginResponse{
		Message:  loginMessage,
		Username: user.Username,
	}, nil
}

// VerifyOTP exchanges a valid code for the user's persistent token.
func (u *authUsecase) VerifyOTP(ctx context.Context, req *dto.VerifyOTPRequest) (*dto.TokenResponse, error) {
	user, err := u.userRepo.FindByUsername(ctx, req.Username)
	if err != nil {
		u.log.Warnf("Failed to find user by username: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if !user.Active() {
		return nil, ErrInvalidCredentials
	}

	exceeded, err := u.attemptLimiter.Exceeded(ctx, user.Username)
	if err != nil {
		u.log.Warnf("Failed to check OTP attempts: %+v", err)
	}
	if exceeded {
		return nil, ErrTooManyAttempts
	}

	otp, err := u.otpRepo.FindUnused(ctx, user.ID, hashOTP(req.OTPCode))
	if err != nil {
		u.log.Warnf("Failed to find OTP: %+v", err)
		return nil, err
	}
	if otp == nil {
		u.recordFailedAttempt(ctx, user.Username)
		return nil, ErrInvalidOTP
	}
	if otp.IsExpired(u.now(), u.otpWindow) {
		return nil, ErrOTPExpired
	}

	marked, err := u.otpRepo.MarkUsed(ctx, otp.ID)
	if err != nil {
		u.log.Warnf("Failed to mark OTP used: %+v", err)
		return nil, err
	}
	if !marked {
		// consumed by a concurrent verification
		return nil, ErrInvalidOTP
	}

	token, err := u.getOrCreateToken(ctx, user)
	if err != nil {
		return nil, err
	}

	if err := u.attemptLimiter.Reset(ctx, user.Username); err != nil {
		u.log.Warnf("Failed to reset OTP attempts: %+v", err)
	}
	u.auditService.LogAction(ctx, &user.ID, entity.AuditActionOTPVerified, map[string]any{
		"username": user.Username,
	})

	return &dto.TokenResponse{
		Token:    token.Key,
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
	}, nil
}

func (u *authUsecase) recordFailedAttempt(ctx context.Context, username string) {
	if _, err := u.attemptLimiter.RecordFailure(ctx, username); err != nil {
		u.log.Warnf("Failed to record OTP attempt: %+v", err)
	}
}

func (u *authUsecase) getOrCreateToken(ctx context.Context, user *entity.User) (*entity.AuthToken, error) {
	token, err := u.tokenRepo.FindByUserID(ctx, user.ID)
	if err != nil {
		u.log.Warnf("Failed to find auth token: %+v", err)
		return nil, err
	}
	if token != nil {
		return token, nil
	}

	signed, tokenID, err := u.jwtService.GenerateToken(user.ID, user.Username)
	if err != nil {
		u.log.Warnf("Failed to generate token: %+v", err)
		return nil, err
	}

	token = &entity.AuthToken{
		ID:        tokenID,
		UserID:    user.ID,
		Key:       signed,
		CreatedAt: u.now(),
	}
	if err := u.tokenRepo.Create(ctx, token); err != nil {
		if isDuplicateKeyError(err, "auth_tokens_user_id") {
			// another verification created it first
			existing, findErr := u.tokenRepo.FindByUserID(ctx, user.ID)
			if findErr == nil && existing != nil {
				return existing, nil
			}
		}
		u.log.Warnf("Failed to create auth token: %+v", err)
		return nil, err
	}

	return token, nil
}

// Authenticate resolves a bearer token to its user. The token must match the
// stored key exactly and its user must still be active.
func (u *authUsecase) Authenticate(ctx context.Context, token string) (*dto.AuthenticatedUser, error) {
	claims, err := u.jwtService.ValidateToken(token)
	if err != nil {
		return nil, ErrInvalidToken
	}

	cached, err := u.tokenCache.Get(ctx, claims.TokenID)
	if err != nil {
		u.log.Warnf("Failed to read token cache: %+v", err)
		cached = nil
	}

	if cached == nil {
		cached, err = u.loadToken(ctx, claims.TokenID)
		if err != nil {
			return nil, err
		}
		if err := u.tokenCache.Set(ctx, claims.TokenID, cached); err != nil {
			u.log.Warnf("Failed to write token cache: %+v", err)
		}
	}

	if subtle.ConstantTimeCompare([]byte(cached.Key), []byte(token)) != 1 {
		return nil, ErrInvalidToken
	}
	if cached.UserID != claims.UserID || !cached.IsActive {
		return nil, ErrInvalidToken
	}

	return &dto.AuthenticatedUser{
		UserID:   cached.UserID,
		Username: cached.Username,
		Email:    cached.Email,
		RoleID:   cached.RoleID,
	}, nil
}

func (u *authUsecase) loadToken(ctx context.Context, tokenID uuid.UUID) (*service.CachedToken, error) {
	stored, err := u.tokenRepo.FindByID(ctx, tokenID)
	if err != nil {
		u.log.Warnf("Failed to find auth token: %+v", err)
		return nil, err
	}
	if stored == nil {
		return nil, ErrInvalidToken
	}

	user, err := u.userRepo.FindByID(ctx, stored.UserID)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidToken
	}

	return &service.CachedToken{
		Key:      stored.Key,
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		RoleID:   user.RoleID,
		IsActive: user.Active(),
	}, nil
}

func (u *authUsecase) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error) {
	user, err := u.userRepo.FindByID(ctx, userID)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	return converter.UserToResponse(user), nil
}

// CreateUser registers a staff account with the given role.
func (u *authUsecase) CreateUser(ctx context.Context, actorID uuid.UUID, req *dto.CreateUserRequest) (*dto.UserResponse, error) {
	role, err := u.roleRepo.FindByName(ctx, req.Role)
	if err != nil {
		u.log.Warnf("Failed to find role: %+v", err)
		return nil, err
	}
	if role == nil {
		return nil, ErrRoleNotFound
	}

	user, err := u.createUser(ctx, role, req.Username, req.Email, req.Password, req.FullName)
	if err != nil {
		return nil, err
	}

	resp := converter.UserToResponse(user)
	u.auditService.LogCreate(ctx, &actorID, entity.AuditActionUserCreate, "user", user.ID.String(), resp)

	return resp, nil
}

// EnsureAdmin creates the bootstrap admin account when it does not exist yet.
func (u *authUsecase) EnsureAdmin(ctx context.Context, cfg config.BootstrapConfig) error {
	if cfg.AdminUsername == "" || cfg.AdminPassword == "" {
		return nil
	}

	existing, err := u.userRepo.FindByUsername(ctx, cfg.AdminUsername)
	if err != nil {
		return fmt.Errorf("failed to look up admin user: %w", err)
	}
	if existing != nil {
		return nil
	}

	role := &entity.Role{ID: entity.RoleIDAdmin, RoleName: entity.RoleAdmin}
	user, err := u.createUser(ctx, role, cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword, "Administrator")
	if err != nil {
		if errors.Is(err, ErrUsernameExists) {
			return nil
		}
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	u.log.Infof("Created bootstrap admin user %s", user.Username)
	return nil
}

func (u *authUsecase) createUser(ctx context.Context, role *entity.Role, username, email, password, fullName string) (*entity.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return nil, err
	}

	active := true
	user := &entity.User{
		RoleID:   role.ID,
		Username: strings.TrimSpace(username),
		Email:    strings.TrimSpace(email),
		Password: string(hashedPassword),
		FullName: strings.TrimSpace(fullName),
		IsActive: &active,
	}

	if err := u.userRepo.Create(ctx, user); err != nil {
		if isDuplicateKeyError(err, "users_username") {
			return nil, ErrUsernameExists
		}
		if isForeignKeyError(err, "role") {
			return nil, ErrRoleNotFound
		}
		u.log.Warnf("Failed to create user: %+v", err)
		return nil, err
	}
	user.Role = *role

	return user, nil
}

// generateOTPCode returns a uniformly random 6-digit numeric code.
func generateOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func hashOTP(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}
