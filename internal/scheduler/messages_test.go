package scheduler

import (
	"testing"
	"time"

	"example.com/bill-reminder/backend/internal/models"
)

// TestFormatBRL проверяет денежный формат pt-BR.
func TestFormatBRL(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{15000, "R$ 150,00"},
		{5, "R$ 0,05"},
		{123456789, "R$ 1.234.567,89"},
		{100000, "R$ 1.000,00"},
	}

	for _, tc := range cases {
		if got := formatBRL(tc.cents); got != tc.want {
			t.Fatalf("formatBRL(%d): expected %q, got %q", tc.cents, tc.want, got)
		}
	}
}

// TestComposeAlertTitles проверяет заголовки для каждого порога.
func TestComposeAlertTitles(t *testing.T) {
	due := time.Date(2024, 3, 16, 10, 0, 0, 0, time.Local)
	bill := models.Bill{Name: "Luz", AmountCents: 15000, DueTime: "10:00"}

	title, description := composeAlert(bill, due, models.ThresholdWarning)
	if title != "O boleto Luz vence em 24 horas" {
		t.Fatalf("unexpected warning title: %q", title)
	}
	if description != "Valor: R$ 150,00 - Vence em 16 de março às 10:00" {
		t.Fatalf("unexpected warning description: %q", description)
	}

	title, _ = composeAlert(bill, due, models.ThresholdUrgent)
	if title != "O boleto Luz vence em breve!" {
		t.Fatalf("unexpected urgent title: %q", title)
	}

	title, description = composeAlert(bill, due, models.ThresholdExpired)
	if title != "O boleto Luz venceu!" {
		t.Fatalf("unexpected expired title: %q", title)
	}
	if description != "Valor: R$ 150,00 - Venceu às 10:00" {
		t.Fatalf("unexpected expired description: %q", description)
	}
}

// TestToastFor проверяет серьезность и длительность тостов по порогам.
func TestToastFor(t *testing.T) {
	severity, duration := toastFor(models.ThresholdWarning)
	if severity != models.ToastInfo || duration != 6000 {
		t.Fatalf("warning: expected info/6000, got %s/%d", severity, duration)
	}

	severity, duration = toastFor(models.ThresholdUrgent)
	if severity != models.ToastWarning || duration != 8000 {
		t.Fatalf("urgent: expected warning/8000, got %s/%d", severity, duration)
	}

	severity, duration = toastFor(models.ThresholdExpired)
	if severity != models.ToastError || duration != 10000 {
		t.Fatalf("expired: expected error/10000, got %s/%d", severity, duration)
	}
}

// TestWindowActiveBoundaries проверяет границы окон порогов.
func TestWindowActiveBoundaries(t *testing.T) {
	s := newTestScheduler(&fakeSource{}, newFakeAlerts(), &fakeHub{}, time.Now())
	due := time.Date(2024, 3, 16, 10, 0, 0, 0, time.Local)

	if !s.windowActive(models.ThresholdWarning, due, due.Add(-24*time.Hour)) {
		t.Fatal("warning window should open exactly 24h before due")
	}
	if s.windowActive(models.ThresholdWarning, due, due.Add(-24*time.Hour-time.Second)) {
		t.Fatal("warning window should be closed before 24h mark")
	}
	if s.windowActive(models.ThresholdWarning, due, due) {
		t.Fatal("warning window should close at due time")
	}

	if !s.windowActive(models.ThresholdUrgent, due, due.Add(-2*time.Hour)) {
		t.Fatal("urgent window should open exactly 2h before due")
	}

	if !s.windowActive(models.ThresholdExpired, due, due) {
		t.Fatal("expired window should open at due time")
	}
	if s.windowActive(models.ThresholdExpired, due, due.Add(time.Hour)) {
		t.Fatal("expired window should close after grace period")
	}
	if !s.windowActive(models.ThresholdExpired, due, due.Add(time.Hour-time.Second)) {
		t.Fatal("expired window should be open within grace period")
	}
}
