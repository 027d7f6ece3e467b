package service

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"workshop/internal/auth"
	apperrors "workshop/internal/errors"
	"workshop/internal/model"
	"workshop/internal/repository"
)

// CreateUserInput holds an account created by an administrator.
type CreateUserInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Password  string
	Role      model.Role
}

// UserPatch holds the administrative fields of an account; nil means unchanged.
type UserPatch struct {
	Role   *model.Role
	Status *model.UserStatus
}

// UserService exposes account administration.
type UserService interface {
	CreateUser(ctx context.Context, in CreateUserInput) (*model.User, error)
	GetUser(ctx context.Context, id uint) (*model.User, error)
	ListUsers(ctx context.Context, q string) ([]model.User, error)
	UpdateUser(ctx context.Context, caller auth.Identity, id uint, patch UserPatch) (*model.User, error)
	ResetUserPassword(ctx context.Context, caller auth.Identity, id uint, newPassword string) error
}

type userService struct {
	repo       repository.UserRepository
	tokenStore auth.TokenStoreInterface
	bcryptCost int
}

// NewUserService builds a UserService with repository and cache.
func NewUserService(repo repository.UserRepository, tokenStore auth.TokenStoreInterface, bcryptCost int) UserService {
	return &userService{repo: repo, tokenStore: tokenStore, bcryptCost: bcryptCost}
}

func roleNames() []string {
	out := make([]string, 0, len(model.Roles))
	for _, r := range model.Roles {
		out = append(out, string(r))
	}
	return out
}

func statusNames() []string {
	out := make([]string, 0, len(model.UserStatuses))
	for _, s := range model.UserStatuses {
		out = append(out, string(s))
	}
	return out
}

func (s *userService) CreateUser(ctx context.Context, in CreateUserInput) (*model.User, error) {
	email := normalizeEmail(in.Email)
	if strings.TrimSpace(in.FirstName) == "" || strings.TrimSpace(in.LastName) == "" || email == "" {
		return nil, apperrors.BadRequest("missing required fields: first_name, last_name, email")
	}
	if err := checkPassword(in.Password); err != nil {
		return nil, err
	}
	role := in.Role
	if role == "" {
		role = model.RoleUser
	}
	if !model.ValidRole(role) {
		return nil, apperrors.BadRequestAllowed("invalid role", roleNames())
	}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, ErrUserAlreadyExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Internal("check user existence", err)
	}

	hashed, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.Internal("create user", err)
	}
	user := &model.User{
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Email:        email,
		Phone:        strings.TrimSpace(in.Phone),
		Role:         role,
		Status:       model.UserStatusActive,
		PasswordHash: hashed,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUserAlreadyExists
		}
		return nil, apperrors.Internal("create user", err)
	}
	return user, nil
}

func (s *userService) GetUser(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("user")
	}
	if err != nil {
		return nil, apperrors.Internal("load user", err)
	}
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context, q string) ([]model.User, error) {
	users, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, apperrors.Internal("list users", err)
	}
	return users, nil
}

// UpdateUser changes role or status. The cached copy is dropped so the
// change applies to the user's very next request.
func (s *userService) UpdateUser(ctx context.Context, caller auth.Identity, id uint, patch UserPatch) (*model.User, error) {
	fields := repository.Fields{}
	if patch.Role != nil {
		if !model.ValidRole(*patch.Role) {
			return nil, apperrors.BadRequestAllowed("invalid role", roleNames())
		}
		fields["role"] = *patch.Role
	}
	if patch.Status != nil {
		if !model.ValidUserStatus(*patch.Status) {
			return nil, apperrors.BadRequestAllowed("invalid status", statusNames())
		}
		fields["status"] = *patch.Status
	}
	if len(fields) == 0 {
		return nil, apperrors.BadRequest("no fields to update")
	}
	if id == caller.UserID {
		if patch.Status != nil && *patch.Status != model.UserStatusActive {
			return nil, apperrors.BadRequest("you cannot block your own account")
		}
		if patch.Role != nil && *patch.Role != model.RoleAdmin {
			return nil, apperrors.BadRequest("you cannot remove your own admin role")
		}
	}

	if _, err := s.GetUser(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, id, fields); err != nil {
		return nil, apperrors.Internal("update user", err)
	}
	_ = s.tokenStore.ForgetUser(ctx, id)
	return s.GetUser(ctx, id)
}

// ResetUserPassword sets a new password for another account without the
// emailed token. Only admins may do this.
func (s *userService) ResetUserPassword(ctx context.Context, caller auth.Identity, id uint, newPassword string) error {
	if !caller.IsAdmin() {
		return apperrors.Forbidden("admin role required")
	}
	if err := checkPassword(newPassword); err != nil {
		return err
	}
	if _, err := s.GetUser(ctx, id); err != nil {
		return err
	}

	hashed, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperrors.Internal("reset password", err)
	}
	if err := s.repo.Update(ctx, id, repository.Fields{"password_hash": hashed}); err != nil {
		return apperrors.Internal("store password", err)
	}
	_ = s.tokenStore.ForgetUser(ctx, id)
	return nil
}
