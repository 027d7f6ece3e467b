package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"workshop/internal/auth"
	apperrors "workshop/internal/errors"
	"workshop/internal/events"
	"workshop/internal/model"
	"workshop/internal/repository"
)

const minPasswordLength = 6

var (
	// ErrInvalidCredentials is returned when email or password is incorrect.
	// Unknown email and wrong password share it.
	ErrInvalidCredentials = apperrors.Unauthorized("invalid email or password")
	// ErrUserAlreadyExists is returned when trying to register an existing user.
	ErrUserAlreadyExists = apperrors.Conflict("email already registered")
	// ErrAccountBlocked is returned when a blocked user signs in.
	ErrAccountBlocked = apperrors.Forbidden("account is blocked")
	// ErrInvalidResetToken is returned for unknown, expired or used reset tokens.
	ErrInvalidResetToken = apperrors.BadRequest("invalid or expired reset token")
	// ErrTokenRevoked is returned for a token that was logged out.
	ErrTokenRevoked = apperrors.Unauthorized("token has been revoked")
)

// RegisterInput holds the fields of a self-service registration.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Password  string
}

// ProfilePatch holds the profile fields a user may change; nil means unchanged.
type ProfilePatch struct {
	FirstName *string
	LastName  *string
	Phone     *string
}

// AuthResult is returned by register and login.
type AuthResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      *model.User `json:"user"`
}

// AuthOptions tunes password hashing and reset tokens.
type AuthOptions struct {
	BcryptCost    int
	ResetTokenTTL time.Duration
}

// AuthService handles authentication operations.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	// Authorize turns verified token claims into the caller's live identity.
	Authorize(ctx context.Context, claims *auth.Claims) (auth.Identity, error)
	Logout(ctx context.Context, claims *auth.Claims) error
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, token, newPassword string) error
	Profile(ctx context.Context, userID uint) (*model.User, error)
	UpdateProfile(ctx context.Context, userID uint, patch ProfilePatch) (*model.User, error)
	ChangePassword(ctx context.Context, userID uint, current, next string) error
}

type authService struct {
	userRepo   repository.UserRepository
	resetRepo  repository.PasswordResetRepository
	jwtService *auth.JWTService
	tokenStore auth.TokenStoreInterface
	publisher  events.Publisher
	opts       AuthOptions
	now        func() time.Time
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	userRepo repository.UserRepository,
	resetRepo repository.PasswordResetRepository,
	jwtService *auth.JWTService,
	tokenStore auth.TokenStoreInterface,
	publisher events.Publisher,
	opts AuthOptions,
) AuthService {
	if opts.ResetTokenTTL <= 0 {
		opts.ResetTokenTTL = 30 * time.Minute
	}
	return &authService{
		userRepo:   userRepo,
		resetRepo:  resetRepo,
		jwtService: jwtService,
		tokenStore: tokenStore,
		publisher:  publisher,
		opts:       opts,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func checkPassword(password string) error {
	if len(password) < minPasswordLength {
		return apperrors.BadRequest("password must be at least %d characters", minPasswordLength)
	}
	return nil
}

// Register creates a new user with role user and signs them in.
func (s *authService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	email := normalizeEmail(in.Email)
	var absent []string
	if strings.TrimSpace(in.FirstName) == "" {
		absent = append(absent, "first_name")
	}
	if strings.TrimSpace(in.LastName) == "" {
		absent = append(absent, "last_name")
	}
	if email == "" {
		absent = append(absent, "email")
	}
	if in.Password == "" {
		absent = append(absent, "password")
	}
	if len(absent) > 0 {
		return nil, apperrors.BadRequest("missing required fields: %s", strings.Join(absent, ", "))
	}
	if err := checkPassword(in.Password); err != nil {
		return nil, err
	}

	// Check if user already exists
	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, ErrUserAlreadyExists
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Internal("check user existence", err)
	}

	hashed, err := auth.HashPassword(in.Password, s.opts.BcryptCost)
	if err != nil {
		return nil, apperrors.Internal("register", err)
	}

	user := &model.User{
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Email:        email,
		Phone:        strings.TrimSpace(in.Phone),
		Role:         model.RoleUser,
		Status:       model.UserStatusActive,
		PasswordHash: hashed,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUserAlreadyExists
		}
		return nil, apperrors.Internal("create user", err)
	}

	return s.issue(user)
}

// Login authenticates a user and returns a bearer token.
func (s *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, apperrors.Internal("find user", err)
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive() {
		return nil, ErrAccountBlocked
	}

	now := s.now()
	if err := s.userRepo.Update(ctx, user.ID, repository.Fields{"last_login_at": now}); err != nil {
		return nil, apperrors.Internal("stamp last login", err)
	}
	user.LastLoginAt = &now

	return s.issue(user)
}

func (s *authService) issue(user *model.User) (*AuthResult, error) {
	token, claims, err := s.jwtService.GenerateToken(user)
	if err != nil {
		return nil, apperrors.Internal("generate token", err)
	}
	return &AuthResult{Token: token, ExpiresAt: claims.ExpiresAt.Time, User: user}, nil
}

// Authorize re-checks revocation and the live user row so that blocking or
// demoting a user takes effect on their next request.
func (s *authService) Authorize(ctx context.Context, claims *auth.Claims) (auth.Identity, error) {
	if claims == nil {
		return auth.Identity{}, apperrors.Unauthorized("invalid token")
	}
	revoked, err := s.tokenStore.IsAccessTokenBlacklisted(ctx, claims.ID)
	if err != nil {
		return auth.Identity{}, apperrors.Internal("check token", err)
	}
	if revoked {
		return auth.Identity{}, ErrTokenRevoked
	}

	user, _ := s.tokenStore.CachedUser(ctx, claims.UserID)
	if user == nil {
		user, err = s.userRepo.FindByID(ctx, claims.UserID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return auth.Identity{}, apperrors.Unauthorized("user no longer exists")
		}
		if err != nil {
			return auth.Identity{}, apperrors.Internal("load user", err)
		}
		_ = s.tokenStore.CacheUser(ctx, user)
	}
	if !user.IsActive() {
		return auth.Identity{}, apperrors.Unauthorized("account is blocked")
	}

	return auth.Identity{UserID: user.ID, Email: user.Email, Role: user.Role}, nil
}

// Logout revokes the presented token for the rest of its lifetime.
func (s *authService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil {
		return apperrors.Unauthorized("invalid token")
	}
	if err := s.tokenStore.BlacklistAccessToken(ctx, claims.ID, claims.TTL(s.now())); err != nil {
		return apperrors.Internal("revoke token", err)
	}
	return nil
}

// RequestPasswordReset issues a single-use reset token and hands it to the
// delivery channel. It succeeds whether or not the email is known.
func (s *authService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return apperrors.Internal("find user", err)
	}
	if !user.IsActive() {
		return nil
	}

	if err := s.resetRepo.DeleteUnused(ctx, user.ID); err != nil {
		return apperrors.Internal("clear reset tokens", err)
	}
	token, hash, err := auth.NewResetToken()
	if err != nil {
		return apperrors.Internal("reset token", err)
	}
	expires := s.now().Add(s.opts.ResetTokenTTL)
	if err := s.resetRepo.Create(ctx, &model.PasswordReset{
		UserID:    user.ID,
		TokenHash: hash,
		ExpiresAt: expires,
	}); err != nil {
		return apperrors.Internal("store reset token", err)
	}

	if err := s.publisher.Publish(ctx, events.PasswordResetRequested, events.PasswordResetRequestedEvent{
		UserID:    user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		Token:     token,
		ExpiresAt: expires,
	}); err != nil {
		log.Printf("deliver reset token for user %d: %v", user.ID, err)
	}
	return nil
}

// ResetPassword consumes a reset token and sets a new password.
func (s *authService) ResetPassword(ctx context.Context, email, token, newPassword string) error {
	if strings.TrimSpace(token) == "" {
		return ErrInvalidResetToken
	}
	if err := checkPassword(newPassword); err != nil {
		return err
	}

	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrInvalidResetToken
	}
	if err != nil {
		return apperrors.Internal("find user", err)
	}

	reset, err := s.resetRepo.Consume(ctx, auth.HashResetToken(strings.TrimSpace(token)), s.now())
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrInvalidResetToken
	}
	if err != nil {
		return apperrors.Internal("consume reset token", err)
	}
	if reset.UserID != user.ID {
		return ErrInvalidResetToken
	}

	return s.setPassword(ctx, user.ID, newPassword)
}

func (s *authService) setPassword(ctx context.Context, userID uint, password string) error {
	hashed, err := auth.HashPassword(password, s.opts.BcryptCost)
	if err != nil {
		return apperrors.Internal("set password", err)
	}
	if err := s.userRepo.Update(ctx, userID, repository.Fields{"password_hash": hashed}); err != nil {
		return apperrors.Internal("store password", err)
	}
	return nil
}

// Profile returns the caller's own user row.
func (s *authService) Profile(ctx context.Context, userID uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("user")
	}
	if err != nil {
		return nil, apperrors.Internal("load user", err)
	}
	return user, nil
}

// UpdateProfile changes the caller's name or phone.
func (s *authService) UpdateProfile(ctx context.Context, userID uint, patch ProfilePatch) (*model.User, error) {
	fields := repository.Fields{}
	if patch.FirstName != nil {
		if strings.TrimSpace(*patch.FirstName) == "" {
			return nil, apperrors.BadRequest("first_name must not be empty")
		}
		fields["first_name"] = strings.TrimSpace(*patch.FirstName)
	}
	if patch.LastName != nil {
		if strings.TrimSpace(*patch.LastName) == "" {
			return nil, apperrors.BadRequest("last_name must not be empty")
		}
		fields["last_name"] = strings.TrimSpace(*patch.LastName)
	}
	if patch.Phone != nil {
		fields["phone"] = strings.TrimSpace(*patch.Phone)
	}
	if len(fields) == 0 {
		return nil, apperrors.BadRequest("no fields to update")
	}

	if _, err := s.Profile(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.userRepo.Update(ctx, userID, fields); err != nil {
		return nil, apperrors.Internal("update profile", err)
	}
	return s.Profile(ctx, userID)
}

// ChangePassword replaces the caller's password after checking the current one.
func (s *authService) ChangePassword(ctx context.Context, userID uint, current, next string) error {
	if err := checkPassword(next); err != nil {
		return err
	}
	user, err := s.Profile(ctx, userID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(user.PasswordHash, current) {
		return apperrors.BadRequest("current password is incorrect")
	}
	if err := s.setPassword(ctx, userID, next); err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	return nil
}
