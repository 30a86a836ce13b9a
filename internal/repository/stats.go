package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"example.com/bill-reminder/backend/internal/urgency"
)

type StatsRepository struct {
	bills  *BillRepository
	alerts *AlertRepository
}

// NewStatsRepository создает репозиторий статистики поверх репозиториев
// счетов и срабатываний.
func NewStatsRepository(bills *BillRepository, alerts *AlertRepository) *StatsRepository {
	return &StatsRepository{
		bills:  bills,
		alerts: alerts,
	}
}

type BillOverview struct {
	TotalBills   int
	PaidBills    int
	OverdueBills int
	UrgentBills  int
	DueSoonBills int
	OnTrackBills int
	OpenCents    int64
	PaidCents    int64
	AlertsFired  int
}

// Overview агрегирует коллекцию пользователя по срочности на момент now.
func (r *StatsRepository) Overview(ctx context.Context, userID uuid.UUID, now time.Time) (BillOverview, error) {
	var overview BillOverview

	bills, err := r.bills.List(ctx, userID)
	if err != nil {
		return overview, err
	}

	overview.TotalBills = len(bills)
	for _, bill := range bills {
		switch urgency.ClassifyBill(bill, now) {
		case urgency.StatePaid:
			overview.PaidBills++
			overview.PaidCents += bill.AmountCents
			continue
		case urgency.StateOverdue:
			overview.OverdueBills++
		case urgency.StateUrgent:
			overview.UrgentBills++
		case urgency.StateDueSoon:
			overview.DueSoonBills++
		default:
			overview.OnTrackBills++
		}
		overview.OpenCents += bill.AmountCents
	}

	fired, err := r.alerts.CountFired(ctx, userID)
	if err != nil {
		return overview, err
	}
	overview.AlertsFired = fired

	return overview, nil
}
