package handlers

import "testing"

func TestParseAmountCents(t *testing.T) {
	cases := []struct {
		raw  string
		want int64
	}{
		{"150", 15000},
		{"150.00", 15000},
		{"150.", 15000},
		{"150.5", 15050},
		{"0.05", 5},
		{".5", 50},
		{"1234.567", 123456},
		{" 89.90 ", 8990},
	}

	for _, tc := range cases {
		got, err := parseAmountCents(tc.raw)
		if err != nil {
			t.Fatalf("parseAmountCents(%q): unexpected error: %v", tc.raw, err)
		}
		if got != tc.want {
			t.Fatalf("parseAmountCents(%q) = %d, want %d", tc.raw, got, tc.want)
		}
	}
}

func TestParseAmountCentsInvalid(t *testing.T) {
	cases := []string{"", "   ", ".", "abc", "1.2.3", "10,50", "-5", "0", "0.00"}

	for _, raw := range cases {
		if _, err := parseAmountCents(raw); err == nil {
			t.Fatalf("parseAmountCents(%q): expected error, got nil", raw)
		}
	}
}

func TestParseDueTimeDefault(t *testing.T) {
	got, err := parseDueTime("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "12:00" {
		t.Fatalf("parseDueTime(\"\") = %q, want %q", got, "12:00")
	}
}

func TestParseDueTime(t *testing.T) {
	got, err := parseDueTime("09:30")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "09:30" {
		t.Fatalf("parseDueTime(\"09:30\") = %q, want %q", got, "09:30")
	}

	if _, err := parseDueTime("25:00"); err == nil {
		t.Fatal("expected error for out-of-range hour, got nil")
	}
}

func TestParseDueDate(t *testing.T) {
	got, err := parseDueDate("2026-03-16")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "2026-03-16" {
		t.Fatalf("parseDueDate = %q, want %q", got, "2026-03-16")
	}

	if _, err := parseDueDate("16/03/2026"); err == nil {
		t.Fatal("expected error for wrong layout, got nil")
	}
	if _, err := parseDueDate(""); err == nil {
		t.Fatal("expected error for empty date, got nil")
	}
}
