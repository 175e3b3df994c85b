package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Asgar77/goodminds-app/internal/models"
)

var ErrEmailTaken = errors.New("email already registered")

func (r *Repository) CreateUser(ctx context.Context, email, password, displayName string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		ID:          uuid.NewString(),
		Email:       email,
		Password:    string(hashedPassword),
		DisplayName: strings.TrimSpace(displayName),
	}
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, "email = ?", strings.ToLower(strings.TrimSpace(email))).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("user %q: %w", email, ErrNotFound)
	}
	return &user, err
}

func (r *Repository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("user %q: %w", id, ErrNotFound)
	}
	return &user, err
}

// UpdateUser changes the identity fields that are not nil.
func (r *Repository) UpdateUser(ctx context.Context, userID string, displayName, photoURL *string) error {
	updates := map[string]interface{}{}
	if displayName != nil {
		updates["display_name"] = *displayName
	}
	if photoURL != nil {
		updates["photo_url"] = *photoURL
	}
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error
}

func (r *Repository) UpdateUserPassword(ctx context.Context, userID string, newPassword string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("password", string(hashedPassword)).Error
}

// DeleteUser removes the credential record and every document the user owns.
func (r *Repository) DeleteUser(ctx context.Context, userID string) error {
	if err := r.store.DeleteUser(ctx, userID); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Delete(&models.User{}, "id = ?", userID).Error
}
