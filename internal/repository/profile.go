package repository

import (
	"context"

	"github.com/Asgar77/goodminds-app/internal/models"
	"github.com/Asgar77/goodminds-app/internal/store"
)

const settingsDoc = "settings"

// DefaultSettings apply until the user saves their own.
var DefaultSettings = models.Settings{Theme: "light", Notifications: true}

// RecordLogin merges the identity fields and login time into the profile document.
func (r *Repository) RecordLogin(ctx context.Context, u *models.User) error {
	return r.store.Write(ctx, store.UserDoc(u.ID), map[string]any{
		"displayName": u.Name(),
		"email":       u.Email,
		"photoURL":    u.PhotoURL,
		"lastLogin":   timestamp(r.now()),
	}, store.WriteOptions{Merge: true})
}

func (r *Repository) GetProfile(ctx context.Context, uid string) (models.Profile, error) {
	doc, found, err := r.store.Read(ctx, store.UserDoc(uid))
	if err != nil || !found {
		return models.Profile{}, err
	}
	var p models.Profile
	if err := doc.DataTo(&p); err != nil {
		return models.Profile{}, &store.ReadError{Path: doc.Path, Err: err}
	}
	return p, nil
}

// ProfileUpdate holds the fields a user may change; nil fields are left as they are.
type ProfileUpdate struct {
	DisplayName *string `json:"displayName"`
	PhotoURL    *string `json:"photoURL"`
}

// UpdateProfile merges the update into the profile document and mirrors it
// onto the user record.
func (r *Repository) UpdateProfile(ctx context.Context, uid string, upd ProfileUpdate) (models.Profile, error) {
	fields := map[string]any{}
	if upd.DisplayName != nil {
		fields["displayName"] = *upd.DisplayName
	}
	if upd.PhotoURL != nil {
		fields["photoURL"] = *upd.PhotoURL
	}
	if len(fields) > 0 {
		if err := r.store.Write(ctx, store.UserDoc(uid), fields, store.WriteOptions{Merge: true}); err != nil {
			return models.Profile{}, err
		}
		if err := r.UpdateUser(ctx, uid, upd.DisplayName, upd.PhotoURL); err != nil {
			return models.Profile{}, err
		}
	}
	return r.GetProfile(ctx, uid)
}

func (r *Repository) GetSettings(ctx context.Context, uid string) (models.Settings, error) {
	settings := DefaultSettings
	doc, found, err := r.store.Read(ctx, store.Doc(uid, CollectionPreferences, settingsDoc))
	if err != nil {
		return models.Settings{}, err
	}
	if found {
		if err := doc.DataTo(&settings); err != nil {
			return models.Settings{}, &store.ReadError{Path: doc.Path, Err: err}
		}
	}
	return settings, nil
}

// SettingsUpdate holds the settings a user may change; nil fields are left as they are.
type SettingsUpdate struct {
	Theme         *string `json:"theme"`
	Notifications *bool   `json:"notifications"`
}

func (r *Repository) UpdateSettings(ctx context.Context, uid string, upd SettingsUpdate) (models.Settings, error) {
	fields := map[string]any{}
	if upd.Theme != nil {
		fields["theme"] = *upd.Theme
	}
	if upd.Notifications != nil {
		fields["notifications"] = *upd.Notifications
	}
	if len(fields) > 0 {
		if err := r.store.Write(ctx, store.Doc(uid, CollectionPreferences, settingsDoc), fields, store.WriteOptions{Merge: true}); err != nil {
			return models.Settings{}, err
		}
	}
	return r.GetSettings(ctx, uid)
}
