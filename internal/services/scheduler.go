package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/Asgar77/goodminds-app/internal/models"
)

// ReminderSource is the part of the repository the reminder job reads.
type ReminderSource interface {
	GetUsersForMoodReminder(ctx context.Context, reminderTime string) ([]models.User, error)
	HasLoggedMoodToday(ctx context.Context, userID string, now time.Time) (bool, error)
}

// Scheduler sends daily mood check-in reminders to users who have not logged
// a mood yet, at the UTC minute they chose.
type Scheduler struct {
	log      *zap.Logger
	source   ReminderSource
	notifier Notifier
	cron     *cron.Cron
	now      func() time.Time
}

func NewScheduler(log *zap.Logger, source ReminderSource, notifier Notifier) *Scheduler {
	return &Scheduler{
		log:      log.Named("scheduler"),
		source:   source,
		notifier: notifier,
		cron:     cron.New(cron.WithLocation(time.UTC)),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Start registers the reminder check under spec (standard five-field cron)
// and starts the cron runner.
func (s *Scheduler) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, func() { s.RunReminderCheck(context.Background()) }); err != nil {
		return fmt.Errorf("invalid reminder schedule %q: %w", spec, err)
	}
	s.log.Info("Starting reminder scheduler...", zap.String("spec", spec))
	s.cron.Start()
	return nil
}

// Stop waits for a running check to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// RunReminderCheck notifies every user due at the current UTC minute who has
// not logged a mood today. It returns how many reminders were sent.
func (s *Scheduler) RunReminderCheck(ctx context.Context) int {
	now := s.now()
	currentTime := now.Format("15:04")
	s.log.Debug("Running reminder check", zap.String("utc_time", currentTime))

	users, err := s.source.GetUsersForMoodReminder(ctx, currentTime)
	if err != nil {
		s.log.Error("Failed to get users for mood reminder", zap.Error(err))
		return 0
	}

	sent := 0
	for _, user := range users {
		logged, err := s.source.HasLoggedMoodToday(ctx, user.ID, now)
		if err != nil {
			s.log.Error("Failed to check today's mood", zap.String("userID", user.ID), zap.Error(err))
			continue
		}
		if logged {
			continue
		}
		if err := s.notifier.SendMoodReminder(ctx, user); err != nil {
			s.log.Error("Failed to send mood reminder", zap.String("userID", user.ID), zap.Error(err))
			continue
		}
		sent++
	}
	return sent
}
