package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/example/deskbooker/internal/persistence"
)

// UserRepository implements persistence.UserRepository using SQLite.
type UserRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewUserRepository creates a new SQLite user repository.
func NewUserRepository(pool *ConnectionPool) *UserRepository {
	return &UserRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateUser inserts a new user. Email uniqueness is enforced by the schema.
func (r *UserRepository) CreateUser(ctx context.Context, user persistence.User) error {
	if user.ID == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO users (id, name, surname, email, password_hash, is_admin, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.helper.Exec(ctx, query,
		user.ID,
		user.Name,
		user.Surname,
		strings.ToLower(user.Email),
		user.PasswordHash,
		boolToInt(user.IsAdmin),
		formatTime(user.CreatedAt),
		formatTime(user.UpdatedAt),
	)
	return r.mapper.MapError(err)
}

// UpdateUser updates an existing user.
func (r *UserRepository) UpdateUser(ctx context.Context, user persistence.User) error {
	query := `
		UPDATE users
		SET name = ?, surname = ?, email = ?, password_hash = ?, is_admin = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.helper.Exec(ctx, query,
		user.Name,
		user.Surname,
		strings.ToLower(user.Email),
		user.PasswordHash,
		boolToInt(user.IsAdmin),
		formatTime(user.UpdatedAt),
		user.ID,
	)
	if err != nil {
		return r.mapper.MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// GetUser retrieves a user by ID.
func (r *UserRepository) GetUser(ctx context.Context, id string) (persistence.User, error) {
	if id == "" {
		return persistence.User{}, persistence.ErrNotFound
	}
	row := r.helper.QueryRow(ctx, userSelect+" WHERE id = ?", id)
	return scanUser(row.Scan)
}

// GetUserByEmail retrieves a user by email address.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (persistence.User, error) {
	row := r.helper.QueryRow(ctx, userSelect+" WHERE email = ?", strings.ToLower(email))
	return scanUser(row.Scan)
}

// ListUsers returns all users ordered by surname then name.
func (r *UserRepository) ListUsers(ctx context.Context) ([]persistence.User, error) {
	rows, err := r.helper.Query(ctx, userSelect+" ORDER BY surname ASC, name ASC, id ASC")
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var users []persistence.User
	for rows.Next() {
		user, err := scanUser(rows.Scan)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return users, nil
}

// DeleteUser removes a user; reservations follow through the cascade.
func (r *UserRepository) DeleteUser(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	result, err := r.helper.Exec(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return r.mapper.MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

const userSelect = `
	SELECT id, name, surname, email, password_hash, is_admin, created_at, updated_at
	FROM users`

func scanUser(scan func(dest ...any) error) (persistence.User, error) {
	var user persistence.User
	var isAdmin int
	var createdAtStr, updatedAtStr string

	err := scan(
		&user.ID,
		&user.Name,
		&user.Surname,
		&user.Email,
		&user.PasswordHash,
		&isAdmin,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return persistence.User{}, persistence.ErrNotFound
		}
		return persistence.User{}, NewErrorMapper().MapError(err)
	}

	user.IsAdmin = isAdmin != 0

	if user.CreatedAt, err = parseTime(createdAtStr); err != nil {
		return persistence.User{}, err
	}
	if user.UpdatedAt, err = parseTime(updatedAtStr); err != nil {
		return persistence.User{}, err
	}
	return user, nil
}
