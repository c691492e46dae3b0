package application

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"sort"
	"strings"
	"time"
)

const minPasswordLength = 8

// UserRepository captures the persistence operations needed by the user service.
type UserRepository interface {
	CreateUser(ctx context.Context, user User, passwordHash string) (User, error)
	GetUser(ctx context.Context, id string) (User, error)
	UpdateUser(ctx context.Context, user User) (User, error)
	DeleteUser(ctx context.Context, id string) error
	ListUsers(ctx context.Context) ([]User, error)
}

// UserService orchestrates validation and persistence for user accounts.
// Passwords are hashed with argon2id before they reach the repository; the
// plaintext never leaves this service.
type UserService struct {
	users       UserRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewUserService wires dependencies for the user service.
func NewUserService(users UserRepository, idGenerator func() string, now func() time.Time) *UserService {
	return NewUserServiceWithLogger(users, idGenerator, now, nil)
}

// NewUserServiceWithLogger constructs a user service with a specified logger.
func NewUserServiceWithLogger(users UserRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *UserService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &UserService{users: users, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

func (s *UserService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "UserService", operation, attrs...)
}

// CreateUser validates input and persists a new account. The caller may supply
// an ID; one is generated when absent. A duplicate email or ID surfaces as
// ErrAlreadyExists.
func (s *UserService) CreateUser(ctx context.Context, input UserInput) (user User, err error) {
	if s == nil {
		err = fmt.Errorf("UserService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateUser")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create user", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("user_id", user.ID).InfoContext(ctx, "user created")
	}()

	normalized := normalizeUserInput(input)
	vErr := validateUserInput(normalized, true)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	id := normalized.ID
	if id == "" {
		id = s.idGenerator()
	}

	var passwordHash string
	passwordHash, err = CreatePasswordHash(normalized.Password, DefaultArgon2idParams)
	if err != nil {
		return
	}

	user = User{
		ID:        id,
		Name:      normalized.Name,
		Surname:   normalized.Surname,
		Email:     normalized.Email,
		IsAdmin:   normalized.IsAdmin,
		CreatedAt: s.now(),
	}
	user.UpdatedAt = user.CreatedAt

	if s.users == nil {
		return
	}

	var persisted User
	persisted, err = s.users.CreateUser(ctx, user, passwordHash)
	if err != nil {
		err = mapCatalogRepoError(err)
		return
	}

	user = persisted
	return
}

// GetUser loads one account by ID.
func (s *UserService) GetUser(ctx context.Context, id string) (User, error) {
	if s == nil {
		return User{}, fmt.Errorf("UserService is nil")
	}
	if s.users == nil {
		return User{}, fmt.Errorf("user repository not configured")
	}

	user, err := s.users.GetUser(ctx, id)
	if err != nil {
		return User{}, mapCatalogRepoError(err)
	}
	return user, nil
}

// UpdateUser validates input and updates an existing account. The password is
// not changed here; the input's password field is ignored on update.
func (s *UserService) UpdateUser(ctx context.Context, id string, input UserInput) (user User, err error) {
	if s == nil {
		err = fmt.Errorf("UserService is nil")
		return
	}
	if s.users == nil {
		err = fmt.Errorf("user repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateUser", "user_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update user", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "user updated")
	}()

	var existing User
	existing, err = s.users.GetUser(ctx, id)
	if err != nil {
		err = mapCatalogRepoError(err)
		return
	}

	normalized := normalizeUserInput(input)
	vErr := validateUserInput(normalized, false)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	updated := existing
	updated.Name = normalized.Name
	updated.Surname = normalized.Surname
	updated.Email = normalized.Email
	updated.IsAdmin = normalized.IsAdmin
	updated.UpdatedAt = s.now()

	user, err = s.users.UpdateUser(ctx, updated)
	if err != nil {
		err = mapCatalogRepoError(err)
		return
	}
	return
}

// DeleteUser removes an account together with its reservations.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	if s == nil {
		return fmt.Errorf("UserService is nil")
	}
	if s.users == nil {
		return fmt.Errorf("user repository not configured")
	}

	logger := s.loggerWith(ctx, "DeleteUser", "user_id", id)

	if err := s.users.DeleteUser(ctx, id); err != nil {
		err = mapCatalogRepoError(err)
		logger.ErrorContext(ctx, "failed to delete user", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "user deleted")
	return nil
}

// ListUsers returns all accounts ordered by surname then name.
func (s *UserService) ListUsers(ctx context.Context) ([]User, error) {
	if s == nil {
		return nil, fmt.Errorf("UserService is nil")
	}
	if s.users == nil {
		return nil, nil
	}

	raw, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	users := make([]User, len(raw))
	copy(users, raw)

	sort.Slice(users, func(i, j int) bool {
		if !strings.EqualFold(users[i].Surname, users[j].Surname) {
			return strings.ToLower(users[i].Surname) < strings.ToLower(users[j].Surname)
		}
		if !strings.EqualFold(users[i].Name, users[j].Name) {
			return strings.ToLower(users[i].Name) < strings.ToLower(users[j].Name)
		}
		return users[i].ID < users[j].ID
	})
	return users, nil
}

func normalizeUserInput(input UserInput) UserInput {
	normalized := input
	normalized.ID = strings.TrimSpace(input.ID)
	normalized.Name = strings.TrimSpace(input.Name)
	normalized.Surname = strings.TrimSpace(input.Surname)
	normalized.Email = strings.ToLower(strings.TrimSpace(input.Email))
	return normalized
}

func validateUserInput(input UserInput, requirePassword bool) *ValidationError {
	vErr := &ValidationError{}

	if input.Name == "" {
		vErr.add("name", "name is required")
	}
	if input.Surname == "" {
		vErr.add("surname", "surname is required")
	}
	if input.Email == "" {
		vErr.add("email", "email is required")
	} else if _, err := mail.ParseAddress(input.Email); err != nil {
		vErr.add("email", "email is not a valid address")
	}
	if requirePassword {
		if input.Password == "" {
			vErr.add("password", "password is required")
		} else if len(input.Password) < minPasswordLength {
			vErr.add("password", fmt.Sprintf("password must be at least %d characters", minPasswordLength))
		}
	}

	return vErr
}
