package urgency

import (
	"testing"
	"time"

	"example.com/bill-reminder/backend/internal/models"
)

var baseTime = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

// TestClassifyPaidOverridesAll проверяет, что оплаченный счёт всегда paid.
func TestClassifyPaidOverridesAll(t *testing.T) {
	dues := []time.Time{
		baseTime.Add(-48 * time.Hour),
		baseTime,
		baseTime.Add(time.Hour),
		baseTime.Add(200 * time.Hour),
	}

	for _, due := range dues {
		if got := Classify(due, true, baseTime); got != StatePaid {
			t.Fatalf("due %v: expected paid, got %s", due, got)
		}
	}
}

// TestClassifyMonotonic проверяет рост срочности при приближении срока.
func TestClassifyMonotonic(t *testing.T) {
	cases := []struct {
		due  time.Time
		want State
	}{
		{baseTime.Add(100 * time.Hour), StateOnTrack},
		{baseTime.Add(48 * time.Hour), StateDueSoon},
		{baseTime.Add(3 * time.Hour), StateUrgent},
		{baseTime.Add(-time.Minute), StateOverdue},
	}

	for _, tc := range cases {
		if got := Classify(tc.due, false, baseTime); got != tc.want {
			t.Fatalf("due %v: expected %s, got %s", tc.due, tc.want, got)
		}
	}
}

// TestClassifyBoundaries проверяет строгие границы окон.
func TestClassifyBoundaries(t *testing.T) {
	if got := Classify(baseTime.Add(24*time.Hour), false, baseTime); got != StateDueSoon {
		t.Fatalf("due exactly now+24h: expected due_soon, got %s", got)
	}

	if got := Classify(baseTime.Add(72*time.Hour), false, baseTime); got != StateOnTrack {
		t.Fatalf("due exactly now+72h: expected on_track, got %s", got)
	}

	if got := Classify(baseTime, false, baseTime); got != StateOverdue {
		t.Fatalf("due exactly now: expected overdue, got %s", got)
	}

	if got := Classify(baseTime.Add(time.Second), false, baseTime); got != StateUrgent {
		t.Fatalf("due just after now: expected urgent, got %s", got)
	}
}

// TestClassifyBillLuz проверяет сценарий счета за свет за час до срока.
func TestClassifyBillLuz(t *testing.T) {
	tomorrow := baseTime.Add(24 * time.Hour)
	bill := models.Bill{
		Name:        "Luz",
		AmountCents: 15000,
		DueDate:     tomorrow.Format(models.DueDateLayout),
		DueTime:     "10:00",
	}

	due, err := bill.DueAt()
	if err != nil {
		t.Fatalf("expected parseable due timestamp, got %v", err)
	}

	now := due.Add(-time.Hour)
	if got := ClassifyBill(bill, now); got != StateUrgent {
		t.Fatalf("expected urgent one hour before due, got %s", got)
	}
}

// TestClassifyBillMalformed проверяет запасное состояние при битом сроке.
func TestClassifyBillMalformed(t *testing.T) {
	bill := models.Bill{Name: "Internet", DueDate: "not-a-date", DueTime: "10:00"}

	if got := ClassifyBill(bill, baseTime); got != StateOnTrack {
		t.Fatalf("expected on_track for malformed due, got %s", got)
	}
}
