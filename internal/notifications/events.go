package notifications

import (
	"github.com/google/uuid"

	"example.com/bill-reminder/backend/internal/models"
)

const (
	EventToast        = "toast"
	EventNotification = "notification"
	EventSound        = "sound"
	EventBillsUpdated = "bills_updated"
	EventClicked      = "NOTIFICATION_CLICKED"
)

type ToastPayload struct {
	Severity    models.ToastSeverity `json:"severity"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	DurationMS  int                  `json:"duration_ms"`
}

type NotificationPayload struct {
	Title              string `json:"title"`
	Body               string `json:"body"`
	Tag                string `json:"tag"`
	RequireInteraction bool   `json:"require_interaction"`
}

type SoundPayload struct {
	Action string  `json:"action"`
	Loop   bool    `json:"loop"`
	Volume float64 `json:"volume"`
}

// Toast собирает событие внутреннего тоста.
func Toast(severity models.ToastSeverity, title, description string, durationMS int) Event {
	return Event{Type: EventToast, Data: ToastPayload{
		Severity:    severity,
		Title:       title,
		Description: description,
		DurationMS:  durationMS,
	}}
}

// Notification собирает событие браузерного уведомления.
// Тег формата bill-<id>-<threshold> дедуплицирует показ на стороне платформы.
func Notification(title, body string, billID uuid.UUID, threshold models.Threshold) Event {
	return Event{Type: EventNotification, Data: NotificationPayload{
		Title:              title,
		Body:               body,
		Tag:                "bill-" + billID.String() + "-" + string(threshold),
		RequireInteraction: true,
	}}
}

// SoundStart собирает команду зациклить звуковой сигнал на полной громкости.
func SoundStart() Event {
	return Event{Type: EventSound, Data: SoundPayload{Action: "start", Loop: true, Volume: 1.0}}
}

// SoundStop собирает команду остановить сигнал и сбросить позицию.
func SoundStop() Event {
	return Event{Type: EventSound, Data: SoundPayload{Action: "stop"}}
}

// BillsUpdated сообщает открытым вкладкам об изменении коллекции.
func BillsUpdated() Event {
	return Event{Type: EventBillsUpdated}
}

// Clicked транслирует клик по браузерному уведомлению открытым вкладкам.
func Clicked(tag string) Event {
	return Event{Type: EventClicked, Data: map[string]string{"tag": tag}}
}
