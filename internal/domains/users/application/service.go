package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Apurer/campus-canteen/internal/domains/users/application/types"
	"github.com/Apurer/campus-canteen/internal/domains/users/domain"
	"github.com/Apurer/campus-canteen/internal/domains/users/ports"
	"github.com/Apurer/campus-canteen/internal/shared/auth"
)

// Service exposes user bounded context use cases.
type Service struct {
	repo       ports.Repository
	sessions   ports.SessionStore
	sessionTTL time.Duration
	clock      func() time.Time
}

// Option customises the service.
type Option func(*Service)

// WithSessionTTL overrides domain.DefaultSessionTTL.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func NewService(repo ports.Repository, sessions ports.SessionStore, opts ...Option) *Service {
	s := &Service{
		repo:       repo,
		sessions:   sessions,
		sessionTTL: domain.DefaultSessionTTL,
		clock:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a customer account. Staff and admin accounts are promoted by an admin.
func (s *Service) Register(ctx context.Context, input types.RegisterInput) (*domain.User, error) {
	role := auth.RoleStudent
	if strings.TrimSpace(input.Role) != "" {
		parsed, err := auth.ParseRole(input.Role)
		if err != nil {
			return nil, mapError(err)
		}
		role = parsed
	}
	if !role.IsCustomer() {
		return nil, fmt.Errorf("%w: only students and lecturers may self-register", ErrInvalidInput)
	}
	department, err := domain.ParseDepartment(input.Department)
	if err != nil {
		return nil, mapError(err)
	}
	preference, err := domain.ParseDietaryPreference(input.DietaryPreference)
	if err != nil {
		return nil, mapError(err)
	}
	profile := domain.Profile{
		FirstName:         input.FirstName,
		LastName:          input.LastName,
		Department:        department,
		DietaryPreference: preference,
		Phone:             input.Phone,
	}
	if role == auth.RoleStudent {
		profile.StudentID = input.StudentID
	}
	user, err := domain.NewUser(input.Email, input.Password, role, profile)
	if err != nil {
		return nil, mapError(err)
	}
	if _, err := s.repo.GetByEmail(ctx, user.Email); err == nil {
		return nil, mapError(ports.ErrEmailTaken)
	} else if !errors.Is(err, ports.ErrNotFound) {
		return nil, err
	}
	if user.StudentID != "" {
		taken, err := s.repo.ExistsStudentID(ctx, user.StudentID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, mapError(ports.ErrStudentIDTaken)
		}
	}
	saved, err := s.repo.Save(ctx, user)
	if err != nil {
		return nil, mapError(err)
	}
	return saved, nil
}

// Login checks credentials and opens a session.
func (s *Service) Login(ctx context.Context, email, password string) (*types.LoginResult, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, mapError(ports.ErrInvalidCredentials)
	}
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, mapError(ports.ErrInvalidCredentials)
		}
		return nil, err
	}
	if !user.CheckPassword(password) {
		return nil, mapError(ports.ErrInvalidCredentials)
	}
	if !user.Active {
		return nil, domain.ErrAccountDeactivated
	}
	now := s.clock()
	session := domain.Session{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: now.Add(s.sessionTTL),
		CreatedAt: now,
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return &types.LoginResult{Token: session.Token, ExpiresAt: session.ExpiresAt, User: user}, nil
}

// Logout revokes a token. Unknown tokens are ignored.
func (s *Service) Logout(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, token); err != nil && !errors.Is(err, ports.ErrSessionNotFound) {
		return err
	}
	return nil
}

// Authenticate resolves a bearer token to an active account.
func (s *Service) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, mapError(ports.ErrSessionNotFound)
	}
	session, err := s.sessions.Get(ctx, token)
	if err != nil {
		return nil, mapError(err)
	}
	if session.Expired(s.clock()) {
		_ = s.sessions.Delete(ctx, token)
		return nil, mapError(ports.ErrSessionNotFound)
	}
	user, err := s.repo.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, mapError(ports.ErrSessionNotFound)
		}
		return nil, err
	}
	if !user.Active {
		return nil, domain.ErrAccountDeactivated
	}
	return user, nil
}

// Profile returns the caller's own account.
func (s *Service) Profile(ctx context.Context, caller auth.Principal) (*domain.User, error) {
	if err := auth.Authorize(caller, auth.OpViewProfile); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, caller.UserID)
}

// UpdateProfile replaces the caller's profile fields. Student IDs are fixed at registration.
func (s *Service) UpdateProfile(ctx context.Context, caller auth.Principal, input types.ProfileInput) (*domain.User, error) {
	if err := auth.Authorize(caller, auth.OpViewProfile); err != nil {
		return nil, err
	}
	user, err := s.repo.GetByID(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	department, err := domain.ParseDepartment(input.Department)
	if err != nil {
		return nil, mapError(err)
	}
	preference, err := domain.ParseDietaryPreference(input.DietaryPreference)
	if err != nil {
		return nil, mapError(err)
	}
	if err := user.UpdateProfile(domain.Profile{
		FirstName:         input.FirstName,
		LastName:          input.LastName,
		StudentID:         user.StudentID,
		Department:        department,
		DietaryPreference: preference,
		Phone:             input.Phone,
	}); err != nil {
		return nil, mapError(err)
	}
	saved, err := s.repo.Save(ctx, user)
	if err != nil {
		return nil, mapError(err)
	}
	return saved, nil
}

// ListUsers returns accounts matching the filter, newest first.
func (s *Service) ListUsers(ctx context.Context, caller auth.Principal, input types.ListUsersInput) ([]*domain.User, error) {
	if err := auth.Authorize(caller, auth.OpManageUsers); err != nil {
		return nil, err
	}
	filter := ports.ListFilter{Active: input.Active}
	if strings.TrimSpace(input.Role) != "" {
		role, err := auth.ParseRole(input.Role)
		if err != nil {
			return nil, mapError(err)
		}
		filter.Role = role
	}
	department, err := domain.ParseDepartment(input.Department)
	if err != nil {
		return nil, mapError(err)
	}
	filter.Department = department
	return s.repo.List(ctx, filter)
}

// ToggleStatus activates or deactivates an account. Deactivation revokes its sessions.
func (s *Service) ToggleStatus(ctx context.Context, caller auth.Principal, id int64) (*domain.User, error) {
	if err := auth.Authorize(caller, auth.OpManageUsers); err != nil {
		return nil, err
	}
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	active := user.ToggleActive()
	saved, err := s.repo.Save(ctx, user)
	if err != nil {
		return nil, mapError(err)
	}
	if !active {
		if err := s.sessions.DeleteForUser(ctx, id); err != nil {
			return nil, err
		}
	}
	return saved, nil
}

// SetRole changes an account's role.
func (s *Service) SetRole(ctx context.Context, caller auth.Principal, id int64, role string) (*domain.User, error) {
	if err := auth.Authorize(caller, auth.OpManageUsers); err != nil {
		return nil, err
	}
	parsed, err := auth.ParseRole(role)
	if err != nil {
		return nil, mapError(err)
	}
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := user.SetRole(parsed); err != nil {
		return nil, mapError(err)
	}
	saved, err := s.repo.Save(ctx, user)
	if err != nil {
		return nil, mapError(err)
	}
	return saved, nil
}

// PurgeExpiredSessions is the housekeeping entry point used by canteenctl.
func (s *Service) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	return s.sessions.PurgeExpired(ctx, s.clock())
}

var _ ports.Service = (*Service)(nil)
