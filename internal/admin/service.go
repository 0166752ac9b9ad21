package admin

import (
	"context"
	"errors"
	"fmt"

	"github.com/datadrop/datadrop/internal/auth"
	"github.com/datadrop/datadrop/internal/shared"
	"github.com/datadrop/datadrop/internal/storage"
)

// ErrAdminUndeletable guards admin accounts against removal.
var ErrAdminUndeletable = errors.New("cannot delete admin users")

// Service implements admin user management.
type Service struct {
	users   Repository
	storage storage.Repository
	audit   shared.ActivityRecorder
}

// NewService constructs a new Service.
func NewService(users Repository, store storage.Repository, audit shared.ActivityRecorder) *Service {
	return &Service{users: users, storage: store, audit: audit}
}

// CreateUserParams carries the admin's input for a new account. The
// container id implies the storage-account assignment.
type CreateUserParams struct {
	Email       string
	Name        string
	Role        string
	ContainerID string
}

// UpdateUserParams carries the admin's input for an account update.
type UpdateUserParams struct {
	Email       string
	Name        string
	Role        string
	ContainerID string
	IsActive    bool
}

// ListUsers returns a page of users matching the search term.
func (s *Service) ListUsers(ctx context.Context, search string, page, limit int) ([]auth.User, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}
	return s.users.List(ctx, search, (page-1)*limit, limit)
}

// CreateUser provisions an account in the PendingFirstLogin state with a
// system-generated temporary password, returned once to the caller.
func (s *Service) CreateUser(ctx context.Context, actor string, params CreateUserParams) (*auth.User, string, error) {
	container, account, err := s.resolveContainer(ctx, params.ContainerID)
	if err != nil {
		return nil, "", err
	}

	tempPassword, err := GenerateTemporaryPassword()
	if err != nil {
		return nil, "", err
	}
	hash, err := auth.HashPassword(tempPassword)
	if err != nil {
		return nil, "", err
	}

	created, err := s.users.Create(ctx, auth.User{
		Email:          params.Email,
		Name:           params.Name,
		Role:           params.Role,
		PasswordHash:   hash,
		IsActive:       true,
		FirstLogin:     true,
		StorageAccount: account.Name,
		Container:      container.Name,
	})
	if err != nil {
		return nil, "", err
	}

	if err := s.audit.Record(ctx, shared.ActivityEntry{
		Actor:   actor,
		Action:  "User created",
		Outcome: shared.OutcomeInfo,
		Detail:  fmt.Sprintf("Created user %s", params.Email),
	}); err != nil {
		return nil, "", err
	}
	return created, tempPassword, nil
}

// UpdateUser overwrites the admin-managed fields of an account.
func (s *Service) UpdateUser(ctx context.Context, actor string, id int64, params UpdateUserParams) (*auth.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	container, account, err := s.resolveContainer(ctx, params.ContainerID)
	if err != nil {
		return nil, err
	}

	user.Email = params.Email
	user.Name = params.Name
	user.Role = params.Role
	user.IsActive = params.IsActive
	user.StorageAccount = account.Name
	user.Container = container.Name
	if err := s.users.Update(ctx, *user); err != nil {
		return nil, err
	}

	if err := s.audit.Record(ctx, shared.ActivityEntry{
		Actor:   actor,
		Action:  "User updated",
		Outcome: shared.OutcomeInfo,
		Detail:  fmt.Sprintf("Updated user %s", params.Email),
	}); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser removes a non-admin account.
func (s *Service) DeleteUser(ctx context.Context, actor string, id int64) error {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if user.IsAdmin() {
		return ErrAdminUndeletable
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	return s.audit.Record(ctx, shared.ActivityEntry{
		Actor:   actor,
		Action:  "User deleted",
		Outcome: shared.OutcomeInfo,
		Detail:  fmt.Sprintf("Deleted user %s", user.Email),
	})
}

// ToggleActive flips the activation flag. Reactivation returns the
// account to Active; the first-login flag is never reset here.
func (s *Service) ToggleActive(ctx context.Context, actor string, id int64) (*auth.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.IsActive = !user.IsActive
	if err := s.users.SetActive(ctx, id, user.IsActive); err != nil {
		return nil, err
	}

	verb := "deactivated"
	if user.IsActive {
		verb = "activated"
	}
	if err := s.audit.Record(ctx, shared.ActivityEntry{
		Actor:   actor,
		Action:  fmt.Sprintf("User %s", verb),
		Outcome: shared.OutcomeInfo,
		Detail:  fmt.Sprintf("%s user %s", capitalize(verb), user.Email),
	}); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) resolveContainer(ctx context.Context, containerID string) (*storage.Container, *storage.Account, error) {
	container, err := s.storage.GetContainer(ctx, containerID)
	if err != nil {
		return nil, nil, err
	}
	account, err := s.storage.GetAccount(ctx, container.AccountID)
	if err != nil {
		return nil, nil, err
	}
	return container, account, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
