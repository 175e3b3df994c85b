package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User is a credential record of the identity provider. Profile data shown in
// the dashboard lives in the user's document (users/{id}).
type User struct {
	ID          string `gorm:"primaryKey;size:36"`
	Email       string `gorm:"uniqueIndex;size:320;not null"`
	Password    string `gorm:"not null"`
	DisplayName string
	PhotoURL    string

	ReminderEnabled bool
	ReminderTime    string `gorm:"size:5"` // HH:MM, UTC
	TimeZone        string `gorm:"size:64"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// Name returns the display name, falling back to the email address.
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Email
}
