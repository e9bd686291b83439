package datastore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/coreybb/starwars-api/models"
	"github.com/lib/pq"
)

// ErrDuplicateEmail is returned when an insert or update collides with the
// unique constraint on user emails.
var ErrDuplicateEmail = errors.New("email already registered")

// Postgres SQLSTATE for unique_violation.
const pqUniqueViolation = pq.ErrorCode("23505")

type UserRepository struct {
	db DBTX // The connection pool or an open transaction
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// CreateUser inserts the user and sets user.ID to the id assigned by the database.
func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO "user" (full_name, email, password, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query, user.FullName, user.Email, user.Password, user.IsActive).Scan(&user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("failed to insert user %s: %w", user.Email, ErrDuplicateEmail)
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// GetUserByID retrieves a user by their ID.
func (r *UserRepository) GetUserByID(ctx context.Context, userID int64) (*models.User, error) {
	query := `
		SELECT id, full_name, email, password, is_active
		FROM "user"
		WHERE id = $1
	`
	var user models.User
	row := r.db.QueryRowContext(ctx, query, userID)
	err := row.Scan(&user.ID, &user.FullName, &user.Email, &user.Password, &user.IsActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %d not found: %w", userID, err)
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	return &user, nil
}

// GetUsers returns every user ordered by id. The result is never nil.
func (r *UserRepository) GetUsers(ctx context.Context) ([]models.User, error) {
	query := `
		SELECT id, full_name, email, password, is_active
		FROM "user"
		ORDER BY id ASC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.FullName, &user.Email, &user.Password, &user.IsActive); err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, user)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}

	return users, nil
}

// UpdateUser writes every mutable column of user back to the row with user.ID.
func (r *UserRepository) UpdateUser(ctx context.Context, user *models.User) error {
	query := `
		UPDATE "user"
		SET full_name = $1,
		    email = $2,
		    password = $3,
		    is_active = $4
		WHERE id = $5
	`
	result, err := r.db.ExecContext(ctx, query,
		user.FullName,
		user.Email,
		user.Password,
		user.IsActive,
		user.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("failed to update user %d: %w", user.ID, ErrDuplicateEmail)
		}
		return fmt.Errorf("failed to update user %d: %w", user.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for user update %d: %w", user.ID, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("user %d not found for update: %w", user.ID, sql.ErrNoRows)
	}

	return nil
}

func (r *UserRepository) DeleteUser(ctx context.Context, userID int64) error {
	query := `DELETE FROM "user" WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to delete user %d: %w", userID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for user delete %d: %w", userID, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("user %d not found for delete: %w", userID, sql.ErrNoRows)
	}

	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}
