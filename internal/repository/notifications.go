package repository

import (
	"context"
	"time"

	"github.com/Asgar77/goodminds-app/internal/models"
)

// GetUsersForMoodReminder finds users who have reminders enabled for a specific time.
func (r *Repository) GetUsersForMoodReminder(ctx context.Context, reminderTime string) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).Where("reminder_enabled = ? AND reminder_time = ?", true, reminderTime).Find(&users).Error
	return users, err
}

// HasLoggedMoodToday checks if a user has logged a mood on the given UTC day.
func (r *Repository) HasLoggedMoodToday(ctx context.Context, userID string, now time.Time) (bool, error) {
	today := now.UTC().Truncate(24 * time.Hour)
	tomorrow := today.Add(24 * time.Hour)

	moods, err := r.ListMoods(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, m := range moods {
		if !m.CreatedAt.Before(today) && m.CreatedAt.Before(tomorrow) {
			return true, nil
		}
	}
	return false, nil
}

// UpdateNotificationPreferences updates a user's reminder settings.
func (r *Repository) UpdateNotificationPreferences(ctx context.Context, userID string, enabled bool, reminderTime, timezone string) error {
	return r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"reminder_enabled": enabled,
		"reminder_time":    reminderTime,
		"time_zone":        timezone,
	}).Error
}
