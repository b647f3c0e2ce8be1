package service

import (
	"context"
	"testing"

	"parkfinder/internal/users/repository"
	"parkfinder/internal/users/validator"
	"parkfinder/pkg/config"
	apperrors "parkfinder/pkg/errors"
	"parkfinder/pkg/logger"
	"parkfinder/pkg/model"
	"parkfinder/pkg/store"
)

func newUserService(t *testing.T) *userService {
	t.Helper()
	st := store.NewMemoryStore()
	cfg := &config.Config{Log: logger.New(logger.Config{Level: logger.ERROR})}
	return NewUserService(
		repository.NewStoreUserRepository(st),
		validator.NewUserValidator(cfg.Log),
		cfg,
	).(*userService)
}

func session(userID, role string) *model.Session {
	return &model.Session{UserID: userID, Username: userID, Role: role}
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %s, got nil", code)
	}
	appErr := apperrors.AsAppError(err)
	if appErr.Code != code {
		t.Fatalf("expected code %s, got %s (%v)", code, appErr.Code, err)
	}
}

func TestSignupNormalizesAndStripsPassword(t *testing.T) {
	svc := newUserService(t)

	user, err := svc.Signup(context.Background(), &model.SignupRequest{
		Username: "  Alice ",
		Email:    " ALICE@Example.COM ",
		Password: "secret",
	})
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if user.Username != "alice" {
		t.Errorf("username = %q, want alice", user.Username)
	}
	if user.Email != "alice@example.com" {
		t.Errorf("email = %q, want alice@example.com", user.Email)
	}
	if user.Role != model.RoleUser {
		t.Errorf("role = %q, want user", user.Role)
	}
	if user.Password != "" {
		t.Error("returned user must not carry the password")
	}
}

func TestSignupRejectsDuplicateUsername(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()

	req := &model.SignupRequest{Username: "alice", Email: "a@test.local", Password: "secret"}
	if _, err := svc.Signup(ctx, req); err != nil {
		t.Fatalf("first Signup: %v", err)
	}

	// Same name with different casing collides after normalization.
	_, err := svc.Signup(ctx, &model.SignupRequest{Username: "ALICE", Email: "b@test.local", Password: "secret"})
	assertCode(t, err, apperrors.CodeConflict)
}

func TestSignupRejectsDuplicateEmail(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()

	if _, err := svc.Signup(ctx, &model.SignupRequest{Username: "alice", Email: "shared@test.local", Password: "secret"}); err != nil {
		t.Fatalf("first Signup: %v", err)
	}

	_, err := svc.Signup(ctx, &model.SignupRequest{Username: "bob", Email: " SHARED@test.local ", Password: "secret"})
	assertCode(t, err, apperrors.CodeConflict)
}

func TestSignupValidation(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  *model.SignupRequest
	}{
		{"short username", &model.SignupRequest{Username: "ab", Email: "a@test.local", Password: "secret"}},
		{"bad email", &model.SignupRequest{Username: "alice", Email: "not-an-email", Password: "secret"}},
		{"short password", &model.SignupRequest{Username: "alice", Email: "a@test.local", Password: "abc"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Signup(ctx, tc.req)
			assertCode(t, err, apperrors.CodeValidation)
		})
	}
}

func TestLogin(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()

	if _, err := svc.Signup(ctx, &model.SignupRequest{Username: "alice", Email: "a@test.local", Password: "secret"}); err != nil {
		t.Fatalf("Signup: %v", err)
	}

	user, err := svc.Login(ctx, &model.LoginRequest{Username: "Alice", Password: "secret"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if user.Username != "alice" {
		t.Errorf("username = %q, want alice", user.Username)
	}
	if user.Password != "" {
		t.Error("login response must not carry the password")
	}

	// Wrong password and unknown user fail identically.
	_, err = svc.Login(ctx, &model.LoginRequest{Username: "alice", Password: "wrong"})
	assertCode(t, err, apperrors.CodeUnauthorized)
	_, err = svc.Login(ctx, &model.LoginRequest{Username: "nobody", Password: "secret"})
	assertCode(t, err, apperrors.CodeUnauthorized)
}

func TestLoginWithEmail(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()

	if _, err := svc.Signup(ctx, &model.SignupRequest{Username: "alice", Email: "a@test.local", Password: "secret"}); err != nil {
		t.Fatalf("Signup: %v", err)
	}

	user, err := svc.Login(ctx, &model.LoginRequest{Username: "A@Test.Local", Password: "secret"})
	if err != nil {
		t.Fatalf("Login by email: %v", err)
	}
	if user.Username != "alice" {
		t.Errorf("username = %q, want alice", user.Username)
	}
}

func TestGetAllFiltersByRole(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()
	adm := session("adm", model.RoleAdmin)

	alice, _ := svc.Signup(ctx, &model.SignupRequest{Username: "alice", Email: "a@test.local", Password: "secret"})
	if _, err := svc.Signup(ctx, &model.SignupRequest{Username: "bob", Email: "b@test.local", Password: "secret"}); err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if _, err := svc.UpdateRole(ctx, adm, alice.ID, model.RoleSupervisor); err != nil {
		t.Fatalf("UpdateRole: %v", err)
	}

	supervisors, err := svc.GetAll(ctx, adm, model.RoleSupervisor)
	if err != nil {
		t.Fatalf("GetAll supervisors: %v", err)
	}
	if len(supervisors) != 1 || supervisors[0].Username != "alice" {
		t.Errorf("supervisors = %+v, want just alice", supervisors)
	}

	all, err := svc.GetAll(ctx, adm, "")
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("all users = %d, want 2", len(all))
	}
	for _, u := range all {
		if u.Password != "" {
			t.Errorf("listing leaked a password for %s", u.Username)
		}
	}

	_, err = svc.GetAll(ctx, adm, "owner")
	assertCode(t, err, apperrors.CodeInvalidInput)

	_, err = svc.GetAll(ctx, session("sup", model.RoleSupervisor), "")
	assertCode(t, err, apperrors.CodeForbidden)
}

func TestEnsureAdminIsIdempotent(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()

	if err := svc.EnsureAdmin(ctx); err != nil {
		t.Fatalf("EnsureAdmin: %v", err)
	}
	if err := svc.EnsureAdmin(ctx); err != nil {
		t.Fatalf("second EnsureAdmin: %v", err)
	}

	count, err := svc.repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 1 {
		t.Errorf("user count = %d, want exactly one admin", count)
	}

	admin, err := svc.Login(ctx, &model.LoginRequest{Username: "admin", Password: "admin"})
	if err != nil {
		t.Fatalf("admin login: %v", err)
	}
	if admin.Role != model.RoleAdmin {
		t.Errorf("role = %q, want admin", admin.Role)
	}
}

func TestUpdateRole(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()

	alice, err := svc.Signup(ctx, &model.SignupRequest{Username: "alice", Email: "a@test.local", Password: "secret"})
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}

	promoted, err := svc.UpdateRole(ctx, session("adm", model.RoleAdmin), alice.ID, model.RoleSupervisor)
	if err != nil {
		t.Fatalf("UpdateRole: %v", err)
	}
	if promoted.Role != model.RoleSupervisor {
		t.Errorf("role = %q, want supervisor", promoted.Role)
	}

	_, err = svc.UpdateRole(ctx, session("sup", model.RoleSupervisor), alice.ID, model.RoleUser)
	assertCode(t, err, apperrors.CodeForbidden)

	_, err = svc.UpdateRole(ctx, session("adm", model.RoleAdmin), alice.ID, "owner")
	assertCode(t, err, apperrors.CodeValidation)
}

func TestBuiltinAdminCannotBeDemoted(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()

	if err := svc.EnsureAdmin(ctx); err != nil {
		t.Fatalf("EnsureAdmin: %v", err)
	}
	admin, err := svc.repo.FindByUsername(ctx, "admin")
	if err != nil {
		t.Fatalf("FindByUsername: %v", err)
	}

	_, err = svc.UpdateRole(ctx, session("adm", model.RoleAdmin), admin.ID, model.RoleUser)
	assertCode(t, err, apperrors.CodeInvalidState)

	// Re-granting admin to the built-in account is a no-op, not an error.
	if _, err := svc.UpdateRole(ctx, session("adm", model.RoleAdmin), admin.ID, model.RoleAdmin); err != nil {
		t.Errorf("re-granting admin: %v", err)
	}
}

func TestGetByIDOwnership(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()

	alice, _ := svc.Signup(ctx, &model.SignupRequest{Username: "alice", Email: "a@test.local", Password: "secret"})
	bob, _ := svc.Signup(ctx, &model.SignupRequest{Username: "bob", Email: "b@test.local", Password: "secret"})

	if _, err := svc.GetByID(ctx, session(alice.ID, model.RoleUser), alice.ID); err != nil {
		t.Errorf("self lookup failed: %v", err)
	}
	if _, err := svc.GetByID(ctx, session("sup", model.RoleSupervisor), alice.ID); err != nil {
		t.Errorf("supervisor lookup failed: %v", err)
	}

	_, err := svc.GetByID(ctx, session(alice.ID, model.RoleUser), bob.ID)
	assertCode(t, err, apperrors.CodeForbidden)
}

func TestResolveSession(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()

	alice, _ := svc.Signup(ctx, &model.SignupRequest{Username: "alice", Email: "a@test.local", Password: "secret"})

	sess, err := svc.ResolveSession(ctx, alice.ID)
	if err != nil {
		t.Fatalf("ResolveSession: %v", err)
	}
	if sess == nil || sess.Username != "alice" || sess.Role != model.RoleUser {
		t.Errorf("session = %+v, want alice/user", sess)
	}

	// Unknown IDs resolve to an anonymous request, not an error.
	sess, err = svc.ResolveSession(ctx, "ghost")
	if err != nil {
		t.Fatalf("ResolveSession unknown: %v", err)
	}
	if sess != nil {
		t.Errorf("session = %+v, want nil", sess)
	}
}
