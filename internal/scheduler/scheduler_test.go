package scheduler

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"example.com/bill-reminder/backend/internal/config"
	"example.com/bill-reminder/backend/internal/models"
	"example.com/bill-reminder/backend/internal/notifications"
	"example.com/bill-reminder/backend/internal/repository"
)

type fakeSource struct {
	mu          sync.Mutex
	collections []repository.UserCollection
}

func (f *fakeSource) ListCollections(_ context.Context) ([]repository.UserCollection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]repository.UserCollection, len(f.collections))
	copy(out, f.collections)
	return out, nil
}

type fakeAlerts struct {
	mu    sync.Mutex
	fired map[string]bool
}

func newFakeAlerts() *fakeAlerts {
	return &fakeAlerts{fired: make(map[string]bool)}
}

func alertKey(userID, billID uuid.UUID, threshold models.Threshold) string {
	return userID.String() + "/" + billID.String() + "/" + string(threshold)
}

func (f *fakeAlerts) MarkFired(_ context.Context, userID, billID uuid.UUID, threshold models.Threshold, _ time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := alertKey(userID, billID, threshold)
	if f.fired[key] {
		return false, nil
	}
	f.fired[key] = true
	return true, nil
}

func (f *fakeAlerts) ClearBill(_ context.Context, userID, billID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	prefix := userID.String() + "/" + billID.String() + "/"
	for key := range f.fired {
		if strings.HasPrefix(key, prefix) {
			delete(f.fired, key)
		}
	}
	return nil
}

func (f *fakeAlerts) ClearUser(_ context.Context, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	prefix := userID.String() + "/"
	for key := range f.fired {
		if strings.HasPrefix(key, prefix) {
			delete(f.fired, key)
		}
	}
	return nil
}

type fakeHub struct {
	mu     sync.Mutex
	events []notifications.Event
}

func (f *fakeHub) Publish(_ uuid.UUID, event notifications.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func (f *fakeHub) byType(eventType string) []notifications.Event {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []notifications.Event
	for _, event := range f.events {
		if event.Type == eventType {
			out = append(out, event)
		}
	}
	return out
}

func testConfig() config.SchedulerConfig {
	return config.SchedulerConfig{SweepInterval: time.Minute, ExpiredGrace: time.Hour}
}

func newTestScheduler(source *fakeSource, alerts *fakeAlerts, hub *fakeHub, now time.Time) *Scheduler {
	s := New(source, alerts, hub, slog.New(slog.NewTextHandler(discardWriter{}, nil)), testConfig())
	s.now = func() time.Time { return now }
	return s
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func billDueAt(t *testing.T, name string, amountCents int64, due time.Time) models.Bill {
	t.Helper()
	return models.Bill{
		ID:          uuid.New(),
		Name:        name,
		AmountCents: amountCents,
		DueDate:     due.Format(models.DueDateLayout),
		DueTime:     due.Format(models.DueTimeLayout),
		CreatedAt:   due.Add(-72 * time.Hour),
	}
}

// TestSweepLuzScenario проверяет сценарий "Luz": за час до срока свип
// испускает браузерное уведомление с тегом urgent и заголовком о скором
// наступлении срока.
func TestSweepLuzScenario(t *testing.T) {
	now := time.Date(2024, 3, 16, 9, 0, 0, 0, time.Local)
	due := time.Date(2024, 3, 16, 10, 0, 0, 0, time.Local)
	bill := billDueAt(t, "Luz", 15000, due)
	userID := uuid.New()

	source := &fakeSource{collections: []repository.UserCollection{{
		UserID:     userID,
		Permission: models.PermissionGranted,
		Bills:      []models.Bill{bill},
	}}}
	alerts := newFakeAlerts()
	hub := &fakeHub{}

	s := newTestScheduler(source, alerts, hub, now)
	s.Sweep(context.Background())

	wantTag := "bill-" + bill.ID.String() + "-urgent"
	var urgent *notifications.NotificationPayload
	for _, event := range hub.byType(notifications.EventNotification) {
		payload := event.Data.(notifications.NotificationPayload)
		if payload.Tag == wantTag {
			urgent = &payload
			break
		}
	}

	if urgent == nil {
		t.Fatalf("expected notification with tag %s", wantTag)
	}
	if !strings.Contains(urgent.Title, "vence em breve") {
		t.Fatalf("expected title to contain 'vence em breve', got %q", urgent.Title)
	}
	if !strings.Contains(urgent.Body, "R$ 150,00") {
		t.Fatalf("expected body to contain formatted amount, got %q", urgent.Body)
	}

	if !s.SoundPlaying(userID) {
		t.Fatal("expected looping sound to be playing")
	}
}

// TestSweepIdempotent проверяет, что повторный свип не дублирует оповещения.
func TestSweepIdempotent(t *testing.T) {
	now := time.Date(2024, 3, 16, 9, 0, 0, 0, time.Local)
	bill := billDueAt(t, "Internet", 9900, now.Add(time.Hour))

	source := &fakeSource{collections: []repository.UserCollection{{
		UserID:     uuid.New(),
		Permission: models.PermissionGranted,
		Bills:      []models.Bill{bill},
	}}}
	alerts := newFakeAlerts()
	hub := &fakeHub{}

	s := newTestScheduler(source, alerts, hub, now)
	s.Sweep(context.Background())

	first := len(hub.byType(notifications.EventToast))
	if first == 0 {
		t.Fatal("expected at least one toast after first sweep")
	}

	s.Sweep(context.Background())
	if got := len(hub.byType(notifications.EventToast)); got != first {
		t.Fatalf("expected %d toasts after second sweep, got %d", first, got)
	}
}

// TestSweepSkipsPaid проверяет, что оплаченные счета не оповещаются.
func TestSweepSkipsPaid(t *testing.T) {
	now := time.Date(2024, 3, 16, 9, 0, 0, 0, time.Local)
	bill := billDueAt(t, "Agua", 4500, now.Add(time.Hour))
	bill.IsPaid = true

	source := &fakeSource{collections: []repository.UserCollection{{
		UserID:     uuid.New(),
		Permission: models.PermissionGranted,
		Bills:      []models.Bill{bill},
	}}}
	hub := &fakeHub{}

	s := newTestScheduler(source, newFakeAlerts(), hub, now)
	s.Sweep(context.Background())

	if got := len(hub.events); got != 0 {
		t.Fatalf("expected no events for paid bill, got %d", got)
	}
}

// TestSweepDeniedPermission проверяет деградацию до тостов при denied.
func TestSweepDeniedPermission(t *testing.T) {
	now := time.Date(2024, 3, 16, 9, 0, 0, 0, time.Local)
	bill := billDueAt(t, "Aluguel", 120000, now.Add(time.Hour))
	userID := uuid.New()

	source := &fakeSource{collections: []repository.UserCollection{{
		UserID:     userID,
		Permission: models.PermissionDenied,
		Bills:      []models.Bill{bill},
	}}}
	hub := &fakeHub{}

	s := newTestScheduler(source, newFakeAlerts(), hub, now)
	s.Sweep(context.Background())

	if got := len(hub.byType(notifications.EventToast)); got == 0 {
		t.Fatal("expected toasts despite denied permission")
	}
	if got := len(hub.byType(notifications.EventNotification)); got != 0 {
		t.Fatalf("expected no browser notifications, got %d", got)
	}
	if s.SoundPlaying(userID) {
		t.Fatal("expected no sound for denied permission")
	}
}

// TestSweepExpiredGrace проверяет окно после срока: внутри грейса счёт
// оповещается как expired, за его пределами молчит.
func TestSweepExpiredGrace(t *testing.T) {
	now := time.Date(2024, 3, 16, 9, 0, 0, 0, time.Local)

	within := billDueAt(t, "Luz", 15000, now.Add(-30*time.Minute))
	beyond := billDueAt(t, "Gas", 8000, now.Add(-2*time.Hour))

	source := &fakeSource{collections: []repository.UserCollection{{
		UserID:     uuid.New(),
		Permission: models.PermissionDefault,
		Bills:      []models.Bill{within, beyond},
	}}}
	hub := &fakeHub{}

	s := newTestScheduler(source, newFakeAlerts(), hub, now)
	s.Sweep(context.Background())

	toasts := hub.byType(notifications.EventToast)
	if len(toasts) != 1 {
		t.Fatalf("expected exactly one toast, got %d", len(toasts))
	}

	payload := toasts[0].Data.(notifications.ToastPayload)
	if payload.Severity != models.ToastError {
		t.Fatalf("expected error severity for expired, got %s", payload.Severity)
	}
	if !strings.Contains(payload.Title, "venceu") {
		t.Fatalf("expected expired title, got %q", payload.Title)
	}
	if payload.DurationMS != 10000 {
		t.Fatalf("expected 10s duration, got %d", payload.DurationMS)
	}
}

// TestClearBillStopsSound проверяет, что отметка оплаты глушит звук
// и стирает срабатывания счета.
func TestClearBillStopsSound(t *testing.T) {
	now := time.Date(2024, 3, 16, 9, 0, 0, 0, time.Local)
	bill := billDueAt(t, "Luz", 15000, now.Add(time.Hour))
	userID := uuid.New()

	source := &fakeSource{collections: []repository.UserCollection{{
		UserID:     userID,
		Permission: models.PermissionGranted,
		Bills:      []models.Bill{bill},
	}}}
	alerts := newFakeAlerts()
	hub := &fakeHub{}

	s := newTestScheduler(source, alerts, hub, now)
	s.Sweep(context.Background())

	if !s.SoundPlaying(userID) {
		t.Fatal("expected sound to be playing after sweep")
	}

	if err := s.ClearBill(context.Background(), userID, bill.ID); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if s.SoundPlaying(userID) {
		t.Fatal("expected sound to be stopped")
	}

	if got := len(hub.byType(notifications.EventSound)); got < 2 {
		t.Fatalf("expected start and stop sound events, got %d", got)
	}

	alerts.mu.Lock()
	remaining := len(alerts.fired)
	alerts.mu.Unlock()
	if remaining != 0 {
		t.Fatalf("expected fired records cleared, got %d", remaining)
	}
}

// TestSweepDeletedBill проверяет, что удаленный счёт не оповещается:
// свип перечитывает коллекцию и не видит его.
func TestSweepDeletedBill(t *testing.T) {
	now := time.Date(2024, 3, 16, 9, 0, 0, 0, time.Local)
	bill := billDueAt(t, "Cartao", 30000, now.Add(90*time.Minute))
	userID := uuid.New()

	source := &fakeSource{collections: []repository.UserCollection{{
		UserID:     userID,
		Permission: models.PermissionGranted,
		Bills:      []models.Bill{bill},
	}}}
	hub := &fakeHub{}

	s := newTestScheduler(source, newFakeAlerts(), hub, now)

	source.mu.Lock()
	source.collections[0].Bills = nil
	source.mu.Unlock()

	s.Sweep(context.Background())

	if got := len(hub.events); got != 0 {
		t.Fatalf("expected no events for deleted bill, got %d", got)
	}
}

// TestStopSoundIdempotent проверяет повторную остановку звука.
func TestStopSoundIdempotent(t *testing.T) {
	hub := &fakeHub{}
	s := newTestScheduler(&fakeSource{}, newFakeAlerts(), hub, time.Now())
	userID := uuid.New()

	s.StopSound(userID)
	s.StopSound(userID)

	events := hub.byType(notifications.EventSound)
	if len(events) != 2 {
		t.Fatalf("expected two stop events, got %d", len(events))
	}
	for _, event := range events {
		payload := event.Data.(notifications.SoundPayload)
		if payload.Action != "stop" {
			t.Fatalf("expected stop action, got %s", payload.Action)
		}
	}
}
