package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/bill-reminder/backend/internal/models"
)

// AlertRepository хранит сработавшие оповещения: пара (счёт, порог)
// записывается не более одного раза за окно срочности.
type AlertRepository struct {
	db *pgxpool.Pool
}

// NewAlertRepository создает репозиторий оповещений.
func NewAlertRepository(db *pgxpool.Pool) *AlertRepository {
	return &AlertRepository{db: db}
}

// MarkFired записывает срабатывание и сообщает, была ли запись новой.
// Повторная попытка для той же пары возвращает false без ошибки.
func (r *AlertRepository) MarkFired(ctx context.Context, userID, billID uuid.UUID, threshold models.Threshold, firedAt time.Time) (bool, error) {
	cmd, err := r.db.Exec(ctx,
		`INSERT INTO bill_alerts (user_id, bill_id, threshold, fired_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id, bill_id, threshold) DO NOTHING`,
		userID, billID, threshold, firedAt,
	)
	if err != nil {
		return false, err
	}

	return cmd.RowsAffected() == 1, nil
}

// ListFired возвращает срабатывания пользователя.
func (r *AlertRepository) ListFired(ctx context.Context, userID uuid.UUID) ([]models.AlertRecord, error) {
	rows, err := r.db.Query(ctx,
		`SELECT user_id, bill_id, threshold, fired_at
		 FROM bill_alerts
		 WHERE user_id = $1
		 ORDER BY fired_at DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.AlertRecord
	for rows.Next() {
		var rec models.AlertRecord
		if err := rows.Scan(&rec.UserID, &rec.BillID, &rec.Threshold, &rec.FiredAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// ClearBill стирает срабатывания одного счета: вызывается при оплате
// и при удалении, чтобы счёт снова стал пригоден к оповещению.
func (r *AlertRepository) ClearBill(ctx context.Context, userID, billID uuid.UUID) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM bill_alerts
		 WHERE user_id = $1 AND bill_id = $2`,
		userID, billID,
	)
	return err
}

// ClearUser стирает всю историю срабатываний пользователя.
func (r *AlertRepository) ClearUser(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM bill_alerts
		 WHERE user_id = $1`,
		userID,
	)
	return err
}

// CountFired возвращает число срабатываний пользователя.
func (r *AlertRepository) CountFired(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*)
		 FROM bill_alerts
		 WHERE user_id = $1`,
		userID,
	).Scan(&count)
	return count, err
}
