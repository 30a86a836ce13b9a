package config

import (
	"reflect"
	"testing"
	"time"
)

// TestParseCSVEnv проверяет разбор списка email из ENV.
func TestParseCSVEnv(t *testing.T) {
	t.Setenv("ADMIN_EMAILS", " Admin@example.com, ,USER@Example.com ")

	got := parseCSVEnv("ADMIN_EMAILS")
	want := []string{"admin@example.com", "user@example.com"}

	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

// TestParseCSVEnvMissing проверяет поведение при отсутствии переменной.
func TestParseCSVEnvMissing(t *testing.T) {
	got := parseCSVEnv("MISSING_ENV")
	if got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

// TestParseDurationEnv проверяет разбор интервала свипа.
func TestParseDurationEnv(t *testing.T) {
	t.Setenv("SCHEDULER_SWEEP_INTERVAL", "30s")

	got, err := parseDurationEnv("SCHEDULER_SWEEP_INTERVAL", time.Minute)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != 30*time.Second {
		t.Fatalf("expected 30s, got %v", got)
	}
}

// TestParseDurationEnvInvalid проверяет ошибку на неверной длительности.
func TestParseDurationEnvInvalid(t *testing.T) {
	t.Setenv("SCHEDULER_SWEEP_INTERVAL", "soon")

	if _, err := parseDurationEnv("SCHEDULER_SWEEP_INTERVAL", time.Minute); err == nil {
		t.Fatal("expected error for invalid duration")
	}
}
