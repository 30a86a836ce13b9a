// Package urgency классифицирует счета по близости срока оплаты.
package urgency

import (
	"time"

	"example.com/bill-reminder/backend/internal/models"
)

type State string

const (
	StatePaid    State = "paid"
	StateOverdue State = "overdue"
	StateUrgent  State = "urgent"
	StateDueSoon State = "due_soon"
	StateOnTrack State = "on_track"
)

const (
	UrgentWindow  = 24 * time.Hour
	DueSoonWindow = 72 * time.Hour
)

// Classify возвращает состояние счета на момент now.
// Границы окон строгие: счёт со сроком ровно now+24h попадает в due_soon,
// срок ровно now считается просроченным.
func Classify(due time.Time, isPaid bool, now time.Time) State {
	if isPaid {
		return StatePaid
	}

	if due.Before(now) || due.Equal(now) {
		return StateOverdue
	}

	if due.Before(now.Add(UrgentWindow)) {
		return StateUrgent
	}

	if due.Before(now.Add(DueSoonWindow)) {
		return StateDueSoon
	}

	return StateOnTrack
}

// ClassifyBill применяет Classify к счету. При неразбираемом сроке
// счёт считается on_track: валидация срока лежит на границе ввода.
func ClassifyBill(bill models.Bill, now time.Time) State {
	if bill.IsPaid {
		return StatePaid
	}

	due, err := bill.DueAt()
	if err != nil {
		return StateOnTrack
	}

	return Classify(due, bill.IsPaid, now)
}
