package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/bill-reminder/backend/internal/models"
)

const userColumns = `id, email, password_hash, name, notification_permission, created_at, updated_at`

type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository создает репозиторий пользователей.
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// Create создает пользователя в базе.
func (r *UserRepository) Create(ctx context.Context, email, passwordHash string, name *string) (models.User, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO users (email, password_hash, name)
		 VALUES ($1, $2, $3)
		 RETURNING `+userColumns,
		email, passwordHash, name,
	)

	user, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return user, ErrConflict
		}
		return user, err
	}

	return user, nil
}

// GetByEmail возвращает пользователя по email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (models.User, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+userColumns+`
		 FROM users
		 WHERE email = $1`,
		email,
	)

	return scanNotFound(scanUser(row))
}

// GetByID возвращает пользователя по идентификатору.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (models.User, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+userColumns+`
		 FROM users
		 WHERE id = $1`,
		id,
	)

	return scanNotFound(scanUser(row))
}

// SetPermission сохраняет состояние разрешения на браузерные уведомления.
func (r *UserRepository) SetPermission(ctx context.Context, id uuid.UUID, state models.PermissionState) (models.User, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE users
		 SET notification_permission = $2,
		     updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+userColumns,
		id, state,
	)

	return scanNotFound(scanUser(row))
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	var nameValue *string

	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &nameValue, &user.Permission, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return user, err
	}

	user.Name = nameValue
	return user, nil
}

func scanNotFound(user models.User, err error) (models.User, error) {
	if errors.Is(err, pgx.ErrNoRows) {
		return user, ErrNotFound
	}
	return user, err
}
