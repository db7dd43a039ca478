package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/qrlinkki/qrlinkki/internal/database"
	"github.com/qrlinkki/qrlinkki/internal/models"
)

type userRecord struct {
	UserID       int64      `db:"user_id"`
	Email        string     `db:"email"`
	PasswordHash string     `db:"password_hash"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    *time.Time `db:"updated_at"`
}

func (r *userRecord) ToUser() *models.User {
	return &models.User{
		UserID:       r.UserID,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

func (r *UserRepository) Create(ctx context.Context, email, passwordHash string) (*models.User, error) {
	const op = "database.postgres.UserRepository.Create"

	rec := new(userRecord)
	query := `INSERT INTO users(email, password_hash)
		VALUES ($1, $2)
		RETURNING *`

	err := r.db.GetContext(ctx, rec, query, email, passwordHash)
	if err != nil {
		if isUniqueViolationError(err) {
			return nil, fmt.Errorf("%s: %w", op, database.ErrEmailExists)
		}

		return nil, fmt.Errorf("%s: failed to create user record: %w", op, err)
	}

	return rec.ToUser(), nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	const op = "database.postgres.UserRepository.GetByID"

	rec := new(userRecord)
	query := `SELECT * FROM users WHERE user_id = $1`

	err := r.db.GetContext(ctx, rec, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, database.ErrUserNotFound)
		}

		return nil, fmt.Errorf("%s: failed to get user record: %w", op, err)
	}

	return rec.ToUser(), nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "database.postgres.UserRepository.GetByEmail"

	rec := new(userRecord)
	query := `SELECT * FROM users WHERE email = $1`

	err := r.db.GetContext(ctx, rec, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, database.ErrUserNotFound)
		}

		return nil, fmt.Errorf("%s: failed to get user record: %w", op, err)
	}

	return rec.ToUser(), nil
}

func (r *UserRepository) Update(ctx context.Context, id int64, email, passwordHash string) (*models.User, error) {
	const op = "database.postgres.UserRepository.Update"

	rec := new(userRecord)
	query := `UPDATE users
		SET email = $1, password_hash = $2, updated_at = now()
		WHERE user_id = $3
		RETURNING *`

	err := r.db.GetContext(ctx, rec, query, email, passwordHash, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, database.ErrUserNotFound)
		}
		if isUniqueViolationError(err) {
			return nil, fmt.Errorf("%s: %w", op, database.ErrEmailExists)
		}

		return nil, fmt.Errorf("%s: failed to update user record: %w", op, err)
	}

	return rec.ToUser(), nil
}

// Delete removes the user and, through the foreign key cascade, every link
// the user owns. It reports whether a row was actually removed.
func (r *UserRepository) Delete(ctx context.Context, id int64) (bool, error) {
	const op = "database.postgres.UserRepository.Delete"

	query := `DELETE FROM users WHERE user_id = $1`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("%s: failed to delete user record: %w", op, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: failed to get affected rows: %w", op, err)
	}

	return rows > 0, nil
}
