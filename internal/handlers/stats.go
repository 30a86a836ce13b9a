package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"example.com/bill-reminder/backend/internal/auth"
	"example.com/bill-reminder/backend/internal/repository"
)

type StatsHandler struct {
	Stats *repository.StatsRepository
}

// NewStatsHandler создает обработчик статистики.
func NewStatsHandler(stats *repository.StatsRepository) *StatsHandler {
	return &StatsHandler{Stats: stats}
}

type OverviewResponse struct {
	TotalBills   int   `json:"total_bills"`
	PaidBills    int   `json:"paid_bills"`
	OverdueBills int   `json:"overdue_bills"`
	UrgentBills  int   `json:"urgent_bills"`
	DueSoonBills int   `json:"due_soon_bills"`
	OnTrackBills int   `json:"on_track_bills"`
	OpenCents    int64 `json:"open_cents"`
	PaidCents    int64 `json:"paid_cents"`
	AlertsFired  int   `json:"alerts_fired"`
}

// Overview возвращает сводку по счетам пользователя.
func (h *StatsHandler) Overview(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	stats, err := h.Stats.Overview(c.Request().Context(), userID, time.Now())
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, OverviewResponse{
		TotalBills:   stats.TotalBills,
		PaidBills:    stats.PaidBills,
		OverdueBills: stats.OverdueBills,
		UrgentBills:  stats.UrgentBills,
		DueSoonBills: stats.DueSoonBills,
		OnTrackBills: stats.OnTrackBills,
		OpenCents:    stats.OpenCents,
		PaidCents:    stats.PaidCents,
		AlertsFired:  stats.AlertsFired,
	})
}
