package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/bill-reminder/backend/internal/models"
)

type AdminRepository struct {
	db *pgxpool.Pool
}

// NewAdminRepository создает репозиторий админских выборок.
func NewAdminRepository(db *pgxpool.Pool) *AdminRepository {
	return &AdminRepository{db: db}
}

// ListUsers возвращает страницу пользователей.
func (r *AdminRepository) ListUsers(ctx context.Context, limit, offset int) ([]models.User, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+userColumns+`
		 FROM users
		 ORDER BY created_at DESC
		 LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	return users, rows.Err()
}

// CountUsers возвращает общее число пользователей.
func (r *AdminRepository) CountUsers(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}

type UsageDay struct {
	Date  time.Time
	Count int
}

type Usage struct {
	Users       int
	Bills       int
	AlertsFired int
	AlertsByDay []UsageDay
}

// Usage собирает сводку для админки: пользователи, счета и срабатывания
// оповещений по дням за указанный период.
func (r *AdminRepository) Usage(ctx context.Context, days int) (Usage, error) {
	var usage Usage

	if days <= 0 {
		return usage, ErrInvalid
	}

	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&usage.Users)
	if err != nil {
		return usage, err
	}

	err = r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(CASE WHEN jsonb_typeof(bills) = 'array' THEN jsonb_array_length(bills) ELSE 0 END), 0)
		 FROM bill_collections`,
	).Scan(&usage.Bills)
	if err != nil {
		return usage, err
	}

	err = r.db.QueryRow(ctx, `SELECT COUNT(*) FROM bill_alerts`).Scan(&usage.AlertsFired)
	if err != nil {
		return usage, err
	}

	rows, err := r.db.Query(ctx,
		`SELECT DATE_TRUNC('day', fired_at) AS day, COUNT(*)
		 FROM bill_alerts
		 WHERE fired_at >= NOW() - make_interval(days => $1)
		 GROUP BY day
		 ORDER BY day DESC`,
		days,
	)
	if err != nil {
		return usage, err
	}
	defer rows.Close()

	for rows.Next() {
		var day UsageDay
		if err := rows.Scan(&day.Date, &day.Count); err != nil {
			return usage, err
		}
		usage.AlertsByDay = append(usage.AlertsByDay, day)
	}

	return usage, rows.Err()
}
