package service

import (
	"context"
	"errors"
	"time"

	userserrors "parkfinder/internal/users/errors"
	"parkfinder/internal/users/repository"
	"parkfinder/internal/users/validator"
	"parkfinder/pkg/config"
	apperrors "parkfinder/pkg/errors"
	"parkfinder/pkg/model"
	"parkfinder/pkg/sanitizer"
	"parkfinder/pkg/store"

	"github.com/google/uuid"
)

const builtinAdminUsername = "admin"

type UserService interface {
	EnsureAdmin(ctx context.Context) error
	Signup(ctx context.Context, req *model.SignupRequest) (*model.User, error)
	Login(ctx context.Context, req *model.LoginRequest) (*model.User, error)
	GetByID(ctx context.Context, session *model.Session, id string) (*model.User, error)
	GetAll(ctx context.Context, session *model.Session, role string) ([]*model.User, error)
	UpdateRole(ctx context.Context, session *model.Session, id string, role string) (*model.User, error)
	ResolveSession(ctx context.Context, userID string) (*model.Session, error)
}

type userService struct {
	repo      repository.UserRepository
	validator *validator.UserValidator
	cfg       *config.Config
	now       func() time.Time
}

func NewUserService(repo repository.UserRepository, v *validator.UserValidator, cfg *config.Config) UserService {
	return &userService{
		repo:      repo,
		validator: v,
		cfg:       cfg,
		now:       time.Now,
	}
}

// EnsureAdmin seeds the built-in admin/admin account on first run. The demo
// has no out-of-band provisioning, so without this there would be no way to
// reach any admin operation.
func (s *userService) EnsureAdmin(ctx context.Context) error {
	if _, err := s.repo.FindByUsername(ctx, builtinAdminUsername); err == nil {
		return nil
	} else if !errors.Is(err, userserrors.ErrNotFound) {
		return apperrors.Internal("Failed to check admin account", err)
	}

	admin := &model.User{
		ID:        uuid.NewString(),
		Username:  builtinAdminUsername,
		Email:     "admin@parkfinder.local",
		Password:  "admin",
		Role:      model.RoleAdmin,
		CreatedAt: s.now(),
	}
	if err := s.repo.Create(ctx, admin); err != nil {
		return apperrors.Internal("Failed to seed admin account", err)
	}

	s.cfg.Log.Info("Built-in admin account created")
	return nil
}

func (s *userService) Signup(ctx context.Context, req *model.SignupRequest) (*model.User, error) {
	if req == nil {
		return nil, apperrors.InvalidInput("Request body is required")
	}

	req.Username = sanitizer.NormalizeUsername(req.Username)
	req.Email = sanitizer.NormalizeEmail(req.Email)

	if err := s.validator.ValidateSignup(req); err != nil {
		return nil, apperrors.Validation("Invalid signup input", map[string]any{"error": err.Error()})
	}

	var user *model.User
	err := s.repo.ExecuteTransaction(ctx, func(tx store.Tx) error {
		txUsers := s.repo.WithTx(tx)

		if _, err := txUsers.FindByUsername(ctx, req.Username); err == nil {
			return apperrors.Conflict("Username is already taken")
		} else if !errors.Is(err, userserrors.ErrNotFound) {
			return apperrors.Internal("Failed to check username", err)
		}
		if _, err := txUsers.FindByEmail(ctx, req.Email); err == nil {
			return apperrors.Conflict("Email is already registered")
		} else if !errors.Is(err, userserrors.ErrNotFound) {
			return apperrors.Internal("Failed to check email", err)
		}

		user = &model.User{
			ID:        uuid.NewString(),
			Username:  req.Username,
			Email:     req.Email,
			Password:  req.Password,
			Role:      model.RoleUser,
			CreatedAt: s.now(),
		}
		if err := txUsers.Create(ctx, user); err != nil {
			return apperrors.Internal("Failed to create account", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("User signed up", "user_id", user.ID, "username", user.Username)
	return user.Public(), nil
}

func (s *userService) Login(ctx context.Context, req *model.LoginRequest) (*model.User, error) {
	if req == nil {
		return nil, apperrors.InvalidInput("Request body is required")
	}

	req.Username = sanitizer.NormalizeUsername(req.Username)

	if err := s.validator.ValidateLogin(req); err != nil {
		return nil, apperrors.Validation("Invalid login input", map[string]any{"error": err.Error()})
	}

	// The login field accepts either the username or the email address.
	user, err := s.repo.FindByUsername(ctx, req.Username)
	if errors.Is(err, userserrors.ErrNotFound) {
		user, err = s.repo.FindByEmail(ctx, req.Username)
	}
	if err != nil {
		if errors.Is(err, userserrors.ErrNotFound) {
			return nil, apperrors.Unauthorized("Invalid username or password")
		}
		return nil, apperrors.Internal("Failed to look up account", err)
	}
	if user.Password != req.Password {
		return nil, apperrors.Unauthorized("Invalid username or password")
	}

	s.cfg.Log.Info("User logged in", "user_id", user.ID, "username", user.Username)
	return user.Public(), nil
}

func (s *userService) GetByID(ctx context.Context, session *model.Session, id string) (*model.User, error) {
	if session == nil {
		return nil, apperrors.Unauthorized("Authentication required")
	}
	if id == "" {
		return nil, apperrors.InvalidInput("User ID cannot be empty")
	}
	if id != session.UserID && !session.CanSupervise() {
		return nil, apperrors.Forbidden("Cannot view another user's account")
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, userserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("User", id)
		}
		return nil, apperrors.Internal("Failed to retrieve user", err)
	}
	return user.Public(), nil
}

func (s *userService) GetAll(ctx context.Context, session *model.Session, role string) ([]*model.User, error) {
	if session == nil || !session.IsAdmin() {
		return nil, apperrors.Forbidden("Admin access required")
	}
	if role != "" && role != model.RoleAdmin && role != model.RoleSupervisor && role != model.RoleUser {
		return nil, apperrors.InvalidInput("Unknown role: " + role)
	}

	users, err := s.repo.FindAll(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to list users", "error", err)
		return nil, apperrors.Internal("Failed to retrieve users", err)
	}

	public := make([]*model.User, 0, len(users))
	for _, user := range users {
		if role != "" && user.Role != role {
			continue
		}
		public = append(public, user.Public())
	}
	return public, nil
}

func (s *userService) UpdateRole(ctx context.Context, session *model.Session, id string, role string) (*model.User, error) {
	if session == nil || !session.IsAdmin() {
		return nil, apperrors.Forbidden("Admin access required")
	}
	if err := s.validator.ValidateRoleUpdate(&model.RoleUpdateRequest{Role: role}); err != nil {
		return nil, apperrors.Validation("Invalid role", map[string]any{"error": err.Error()})
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, userserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("User", id)
		}
		return nil, apperrors.Internal("Failed to retrieve user", err)
	}
	if user.Username == builtinAdminUsername && role != model.RoleAdmin {
		return nil, apperrors.InvalidState("The built-in admin account cannot be demoted")
	}

	user.Role = role
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, apperrors.Internal("Failed to update role", err)
	}

	s.cfg.Log.Info("User role updated", "user_id", id, "role", role, "by", session.UserID)
	return user.Public(), nil
}

// ResolveSession satisfies the session middleware contract.
func (s *userService) ResolveSession(ctx context.Context, userID string) (*model.Session, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, userserrors.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &model.Session{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	}, nil
}
