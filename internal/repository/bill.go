package repository

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/bill-reminder/backend/internal/models"
)

// BillRepository хранит коллекцию счетов пользователя одним упорядоченным
// JSON-документом под фиксированным ключом user_id.
type BillRepository struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

// NewBillRepository создает репозиторий счетов.
func NewBillRepository(db *pgxpool.Pool, logger *slog.Logger) *BillRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &BillRepository{db: db, logger: logger}
}

// UserCollection связывает коллекцию счетов с владельцем и его разрешением
// на браузерные уведомления.
type UserCollection struct {
	UserID     uuid.UUID
	Permission models.PermissionState
	Bills      []models.Bill
}

// List возвращает счета пользователя в сохраненном порядке.
// Битый документ коллекции читается как пустая коллекция.
func (r *BillRepository) List(ctx context.Context, userID uuid.UUID) ([]models.Bill, error) {
	var raw []byte

	err := r.db.QueryRow(ctx,
		`SELECT bills
		 FROM bill_collections
		 WHERE user_id = $1`,
		userID,
	).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []models.Bill{}, nil
		}
		return nil, err
	}

	return r.decodeBills(userID, raw), nil
}

// ListCollections возвращает все непустые коллекции вместе с разрешениями
// владельцев; используется свипом планировщика.
func (r *BillRepository) ListCollections(ctx context.Context) ([]UserCollection, error) {
	rows, err := r.db.Query(ctx,
		`SELECT c.user_id, u.notification_permission, c.bills
		 FROM bill_collections c
		 JOIN users u ON u.id = c.user_id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var collections []UserCollection
	for rows.Next() {
		var col UserCollection
		var raw []byte

		if err := rows.Scan(&col.UserID, &col.Permission, &raw); err != nil {
			return nil, err
		}

		col.Bills = r.decodeBills(col.UserID, raw)
		collections = append(collections, col)
	}

	return collections, rows.Err()
}

// Add добавляет счёт в начало коллекции пользователя.
func (r *BillRepository) Add(ctx context.Context, userID uuid.UUID, bill models.Bill) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	bills, err := r.lockCollection(ctx, tx, userID)
	if err != nil {
		return err
	}

	bills = append([]models.Bill{bill}, bills...)

	if err := saveCollection(ctx, tx, userID, bills); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// SetPaid выставляет или переключает отметку оплаты счета.
// При isPaid == nil отметка инвертируется.
func (r *BillRepository) SetPaid(ctx context.Context, userID, billID uuid.UUID, isPaid *bool) (models.Bill, error) {
	var updated models.Bill

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return updated, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	bills, err := r.lockCollection(ctx, tx, userID)
	if err != nil {
		return updated, err
	}

	found := false
	for i := range bills {
		if bills[i].ID != billID {
			continue
		}

		if isPaid == nil {
			bills[i].IsPaid = !bills[i].IsPaid
		} else {
			bills[i].IsPaid = *isPaid
		}

		updated = bills[i]
		found = true
		break
	}

	if !found {
		return updated, ErrNotFound
	}

	if err := saveCollection(ctx, tx, userID, bills); err != nil {
		return updated, err
	}

	return updated, tx.Commit(ctx)
}

// Delete удаляет счёт из коллекции без надгробия.
func (r *BillRepository) Delete(ctx context.Context, userID, billID uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	bills, err := r.lockCollection(ctx, tx, userID)
	if err != nil {
		return err
	}

	remaining := make([]models.Bill, 0, len(bills))
	for _, bill := range bills {
		if bill.ID == billID {
			continue
		}
		remaining = append(remaining, bill)
	}

	if len(remaining) == len(bills) {
		return ErrNotFound
	}

	if err := saveCollection(ctx, tx, userID, remaining); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *BillRepository) lockCollection(ctx context.Context, tx pgx.Tx, userID uuid.UUID) ([]models.Bill, error) {
	var raw []byte

	err := tx.QueryRow(ctx,
		`SELECT bills
		 FROM bill_collections
		 WHERE user_id = $1
		 FOR UPDATE`,
		userID,
	).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []models.Bill{}, nil
		}
		return nil, err
	}

	return r.decodeBills(userID, raw), nil
}

func saveCollection(ctx context.Context, tx pgx.Tx, userID uuid.UUID, bills []models.Bill) error {
	payload, err := json.Marshal(bills)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO bill_collections (user_id, bills)
		 VALUES ($1, $2)
		 ON CONFLICT (user_id) DO UPDATE
		 SET bills = EXCLUDED.bills,
		     updated_at = NOW()`,
		userID, payload,
	)
	return err
}

func (r *BillRepository) decodeBills(userID uuid.UUID, raw []byte) []models.Bill {
	var bills []models.Bill
	if err := json.Unmarshal(raw, &bills); err != nil {
		r.logger.Warn("malformed bill collection, falling back to empty",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return []models.Bill{}
	}

	if bills == nil {
		return []models.Bill{}
	}

	return bills
}
