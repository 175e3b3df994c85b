package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/Asgar77/goodminds-app/internal/models"
)

// Notifier delivers a mood check-in reminder to a user.
type Notifier interface {
	SendMoodReminder(ctx context.Context, user models.User) error
}

// LogNotifier records reminders in the log. There is no mail transport.
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) *LogNotifier {
	return &LogNotifier{log: log.Named("notifier")}
}

func (n *LogNotifier) SendMoodReminder(ctx context.Context, user models.User) error {
	n.log.Info("Sending mood check-in reminder",
		zap.String("to", user.Email),
		zap.String("name", user.Name()),
		zap.String("subject", "How are you feeling today?"),
	)
	return nil
}
