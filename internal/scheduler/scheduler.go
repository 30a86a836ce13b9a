// Package scheduler владеет оповещениями о приближении сроков оплаты.
//
// Планирование устроено как единственный периодический свип: каждый проход
// заново оценивает все неоплаченные счета против окон порогов и пишет
// срабатывания в персистентный журнал, поэтому ни перезапуск сервиса, ни
// оплата счета после планирования не приводят к лишним оповещениям.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"example.com/bill-reminder/backend/internal/config"
	"example.com/bill-reminder/backend/internal/models"
	"example.com/bill-reminder/backend/internal/notifications"
	"example.com/bill-reminder/backend/internal/repository"
)

// BillSource отдает коллекции счетов всех пользователей.
type BillSource interface {
	ListCollections(ctx context.Context) ([]repository.UserCollection, error)
}

// AlertStore ведет журнал сработавших пар (счёт, порог).
type AlertStore interface {
	MarkFired(ctx context.Context, userID, billID uuid.UUID, threshold models.Threshold, firedAt time.Time) (bool, error)
	ClearBill(ctx context.Context, userID, billID uuid.UUID) error
	ClearUser(ctx context.Context, userID uuid.UUID) error
}

// Publisher доставляет события оповещений открытым вкладкам пользователя.
type Publisher interface {
	Publish(userID uuid.UUID, event notifications.Event)
}

type Scheduler struct {
	bills    BillSource
	alerts   AlertStore
	hub      Publisher
	logger   *slog.Logger
	interval time.Duration
	grace    time.Duration
	now      func() time.Time

	mu      sync.Mutex
	playing map[uuid.UUID]bool
}

// New собирает планировщик оповещений; состояние звука живет в экземпляре,
// а не в пакете.
func New(bills BillSource, alerts AlertStore, hub Publisher, logger *slog.Logger, cfg config.SchedulerConfig) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		bills:    bills,
		alerts:   alerts,
		hub:      hub,
		logger:   logger,
		interval: cfg.SweepInterval,
		grace:    cfg.ExpiredGrace,
		now:      time.Now,
		playing:  make(map[uuid.UUID]bool),
	}
}

// Run запускает цикл свипа до отмены контекста. Первый проход выполняется
// сразу, не дожидаясь тика.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info("alert scheduler started",
		slog.Duration("sweep_interval", s.interval),
		slog.Duration("expired_grace", s.grace))

	s.Sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("alert scheduler stopped")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep один раз проходит по всем коллекциям и оповещает о счетах,
// попавших в окно порога и еще не отмеченных в журнале.
func (s *Scheduler) Sweep(ctx context.Context) {
	collections, err := s.bills.ListCollections(ctx)
	if err != nil {
		s.logger.Error("sweep: list collections", slog.String("error", err.Error()))
		return
	}

	now := s.now()
	for _, col := range collections {
		for _, bill := range col.Bills {
			if bill.IsPaid {
				continue
			}

			due, err := bill.DueAt()
			if err != nil {
				s.logger.Warn("sweep: skip bill with unparseable due timestamp",
					slog.String("bill_id", bill.ID.String()),
					slog.String("error", err.Error()))
				continue
			}

			for _, threshold := range models.Thresholds {
				if !s.windowActive(threshold, due, now) {
					continue
				}

				won, err := s.alerts.MarkFired(ctx, col.UserID, bill.ID, threshold, now)
				if err != nil {
					s.logger.Error("sweep: mark fired",
						slog.String("bill_id", bill.ID.String()),
						slog.String("threshold", string(threshold)),
						slog.String("error", err.Error()))
					continue
				}
				if !won {
					continue
				}

				s.emit(col.UserID, col.Permission, bill, due, threshold)
			}
		}
	}
}

// emit испускает оповещение по всем доступным каналам: тост всегда,
// браузерное уведомление и зацикленный звук только при granted.
func (s *Scheduler) emit(userID uuid.UUID, permission models.PermissionState, bill models.Bill, due time.Time, threshold models.Threshold) {
	title, description := composeAlert(bill, due, threshold)
	severity, durationMS := toastFor(threshold)

	if permission == models.PermissionGranted {
		s.startSound(userID)
		s.hub.Publish(userID, notifications.Notification(title, description, bill.ID, threshold))
	}

	s.hub.Publish(userID, notifications.Toast(severity, title, description, durationMS))

	s.logger.Info("alert fired",
		slog.String("user_id", userID.String()),
		slog.String("bill_id", bill.ID.String()),
		slog.String("threshold", string(threshold)))
}

// windowActive сообщает, открыто ли окно порога на момент now.
func (s *Scheduler) windowActive(threshold models.Threshold, due, now time.Time) bool {
	switch threshold {
	case models.ThresholdWarning, models.ThresholdUrgent:
		opens := due.Add(-threshold.Offset())
		return !now.Before(opens) && now.Before(due)
	case models.ThresholdExpired:
		return !now.Before(due) && now.Before(due.Add(s.grace))
	}
	return false
}

// ClearBill стирает срабатывания счета и глушит звук: вызывается при
// отметке оплаты и при удалении счета.
func (s *Scheduler) ClearBill(ctx context.Context, userID, billID uuid.UUID) error {
	if err := s.alerts.ClearBill(ctx, userID, billID); err != nil {
		return err
	}

	s.StopSound(userID)
	return nil
}

// ClearHistory стирает всю историю срабатываний пользователя и глушит звук.
func (s *Scheduler) ClearHistory(ctx context.Context, userID uuid.UUID) error {
	if err := s.alerts.ClearUser(ctx, userID); err != nil {
		return err
	}

	s.StopSound(userID)
	return nil
}

// StopSound останавливает зацикленный сигнал; идемпотентна, позиция
// воспроизведения всегда сбрасывается на начало.
func (s *Scheduler) StopSound(userID uuid.UUID) {
	s.mu.Lock()
	delete(s.playing, userID)
	s.mu.Unlock()

	s.hub.Publish(userID, notifications.SoundStop())
}

// SoundPlaying сообщает, звучит ли сейчас сигнал пользователя.
func (s *Scheduler) SoundPlaying(userID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing[userID]
}

func (s *Scheduler) startSound(userID uuid.UUID) {
	s.mu.Lock()
	already := s.playing[userID]
	s.playing[userID] = true
	s.mu.Unlock()

	if already {
		return
	}

	s.hub.Publish(userID, notifications.SoundStart())
}
