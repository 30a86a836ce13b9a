package notifications

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"example.com/bill-reminder/backend/internal/models"
)

// TestHubPublishSubscribe проверяет доставку событий подписчику.
func TestHubPublishSubscribe(t *testing.T) {
	hub := NewHub()
	userID := uuid.New()

	ch, unsubscribe := hub.Subscribe(userID)
	defer unsubscribe()

	hub.Publish(userID, Toast(models.ToastInfo, "test", "desc", 6000))

	select {
	case event := <-ch:
		if event.Type != EventToast {
			t.Fatalf("expected event type %s, got %s", EventToast, event.Type)
		}
		if event.Timestamp.IsZero() {
			t.Fatal("expected timestamp to be set")
		}
		payload, ok := event.Data.(ToastPayload)
		if !ok {
			t.Fatalf("expected toast payload, got %T", event.Data)
		}
		if payload.DurationMS != 6000 {
			t.Fatalf("expected duration 6000, got %d", payload.DurationMS)
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected event to be delivered")
	}
}

// TestHubUnsubscribe проверяет закрытие канала после отписки.
func TestHubUnsubscribe(t *testing.T) {
	hub := NewHub()
	userID := uuid.New()

	ch, unsubscribe := hub.Subscribe(userID)
	unsubscribe()

	if _, ok := <-ch; ok {
		t.Fatal("expected channel to be closed")
	}
}

// TestHubPublishWithoutSubscribers проверяет, что публикация без подписчиков не паникует.
func TestHubPublishWithoutSubscribers(t *testing.T) {
	hub := NewHub()
	hub.Publish(uuid.New(), SoundStop())
}

// TestNotificationTag проверяет формат тега браузерного уведомления.
func TestNotificationTag(t *testing.T) {
	billID := uuid.New()
	event := Notification("title", "body", billID, models.ThresholdUrgent)

	payload, ok := event.Data.(NotificationPayload)
	if !ok {
		t.Fatalf("expected notification payload, got %T", event.Data)
	}

	want := "bill-" + billID.String() + "-urgent"
	if payload.Tag != want {
		t.Fatalf("expected tag %s, got %s", want, payload.Tag)
	}
	if !payload.RequireInteraction {
		t.Fatal("expected require_interaction to be set")
	}
}
