package repository

import (
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"

	"example.com/bill-reminder/backend/internal/models"
)

func newTestBillRepository() *BillRepository {
	return &BillRepository{logger: slog.New(slog.NewTextHandler(discardWriter{}, nil))}
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func TestDecodeBillsRoundTrip(t *testing.T) {
	repo := newTestBillRepository()
	userID := uuid.New()

	bills := []models.Bill{
		{
			ID:          uuid.New(),
			Name:        "Luz",
			AmountCents: 15050,
			DueDate:     "2026-03-16",
			DueTime:     "10:00",
			IsPaid:      false,
			CreatedAt:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		},
		{
			ID:          uuid.New(),
			Name:        "Internet",
			AmountCents: 8990,
			DueDate:     "2026-03-20",
			DueTime:     "12:00",
			IsPaid:      true,
			CreatedAt:   time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC),
		},
	}

	raw, err := json.Marshal(bills)
	if err != nil {
		t.Fatalf("marshal bills: %v", err)
	}

	decoded := repo.decodeBills(userID, raw)
	if len(decoded) != len(bills) {
		t.Fatalf("decoded %d bills, want %d", len(decoded), len(bills))
	}

	for i, want := range bills {
		got := decoded[i]
		if got.ID != want.ID {
			t.Fatalf("bill %d: id = %s, want %s", i, got.ID, want.ID)
		}
		if got.Name != want.Name {
			t.Fatalf("bill %d: name = %q, want %q", i, got.Name, want.Name)
		}
		if got.AmountCents != want.AmountCents {
			t.Fatalf("bill %d: amount = %d, want %d", i, got.AmountCents, want.AmountCents)
		}
		if got.DueDate != want.DueDate {
			t.Fatalf("bill %d: due date = %q, want %q", i, got.DueDate, want.DueDate)
		}
		if got.DueTime != want.DueTime {
			t.Fatalf("bill %d: due time = %q, want %q", i, got.DueTime, want.DueTime)
		}
		if got.IsPaid != want.IsPaid {
			t.Fatalf("bill %d: is_paid = %v, want %v", i, got.IsPaid, want.IsPaid)
		}
	}
}

func TestDecodeBillsMalformedFallsBackToEmpty(t *testing.T) {
	repo := newTestBillRepository()
	userID := uuid.New()

	cases := [][]byte{
		[]byte(`{"not":"an array"}`),
		[]byte(`[{"amount_cents":"texto"}]`),
		[]byte(`garbage`),
		nil,
	}

	for _, raw := range cases {
		bills := repo.decodeBills(userID, raw)
		if bills == nil {
			t.Fatalf("decodeBills(%q) returned nil, want empty slice", raw)
		}
		if len(bills) != 0 {
			t.Fatalf("decodeBills(%q) returned %d bills, want 0", raw, len(bills))
		}
	}
}

func TestDecodeBillsNullDocument(t *testing.T) {
	repo := newTestBillRepository()

	bills := repo.decodeBills(uuid.New(), []byte(`null`))
	if bills == nil || len(bills) != 0 {
		t.Fatalf("decodeBills(null) = %v, want empty slice", bills)
	}
}
