package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Threshold string

type PermissionState string

type ToastSeverity string

const (
	ThresholdWarning Threshold = "warning"
	ThresholdUrgent  Threshold = "urgent"
	ThresholdExpired Threshold = "expired"

	PermissionGranted PermissionState = "granted"
	PermissionDenied  PermissionState = "denied"
	PermissionDefault PermissionState = "default"

	ToastInfo    ToastSeverity = "info"
	ToastWarning ToastSeverity = "warning"
	ToastError   ToastSeverity = "error"
)

const (
	DueDateLayout = "2006-01-02"
	DueTimeLayout = "15:04"
)

// Thresholds перечисляет пороги оповещений от раннего к позднему.
var Thresholds = []Threshold{ThresholdWarning, ThresholdUrgent, ThresholdExpired}

// Offset возвращает смещение порога относительно срока оплаты.
func (t Threshold) Offset() time.Duration {
	switch t {
	case ThresholdWarning:
		return 24 * time.Hour
	case ThresholdUrgent:
		return 2 * time.Hour
	default:
		return 0
	}
}

// Valid сообщает, известен ли порог.
func (t Threshold) Valid() bool {
	switch t {
	case ThresholdWarning, ThresholdUrgent, ThresholdExpired:
		return true
	}
	return false
}

// Valid сообщает, известно ли состояние разрешения на уведомления.
func (p PermissionState) Valid() bool {
	switch p {
	case PermissionGranted, PermissionDenied, PermissionDefault:
		return true
	}
	return false
}

type User struct {
	ID           uuid.UUID       `json:"id"`
	Email        string          `json:"email"`
	PasswordHash string          `json:"-"`
	Name         *string         `json:"name,omitempty"`
	Permission   PermissionState `json:"notification_permission"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

type Bill struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	AmountCents int64     `json:"amount_cents"`
	DueDate     string    `json:"due_date"`
	DueTime     string    `json:"due_time"`
	IsPaid      bool      `json:"is_paid"`
	CreatedAt   time.Time `json:"created_at"`
}

// DueAt собирает дату и время оплаты в один момент локального времени.
func (b Bill) DueAt() (time.Time, error) {
	due, err := time.ParseInLocation(DueDateLayout+"T"+DueTimeLayout, b.DueDate+"T"+b.DueTime, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("bill %s: parse due timestamp: %w", b.ID, err)
	}
	return due, nil
}

type AlertRecord struct {
	UserID    uuid.UUID `json:"user_id"`
	BillID    uuid.UUID `json:"bill_id"`
	Threshold Threshold `json:"threshold"`
	FiredAt   time.Time `json:"fired_at"`
}

type RefreshToken struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"user_id"`
	TokenHash  string     `json:"-"`
	ExpiresAt  time.Time  `json:"expires_at"`
	CreatedAt  time.Time  `json:"created_at"`
	RevokedAt  *time.Time `json:"revoked_at,omitempty"`
	ReplacedBy *uuid.UUID `json:"replaced_by,omitempty"`
}
