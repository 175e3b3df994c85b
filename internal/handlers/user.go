package handlers

import (
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Asgar77/goodminds-app/internal/repository"
	"github.com/Asgar77/goodminds-app/internal/utils"
	"github.com/Asgar77/goodminds-app/internal/voice"
)

type UserHandler struct {
	log   *zap.Logger
	repo  *repository.Repository
	voice *voice.Manager
}

func NewUserHandler(log *zap.Logger, repo *repository.Repository, vm *voice.Manager) *UserHandler {
	return &UserHandler{log: log, repo: repo, voice: vm}
}

func (h *UserHandler) Dashboard(c *gin.Context) {
	d, err := h.repo.LoadDashboard(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	p, err := h.repo.GetProfile(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var upd repository.ProfileUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		badRequest(c, "Invalid profile data.")
		return
	}
	p, err := h.repo.UpdateProfile(c.Request.Context(), currentUser(c).ID, upd)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *UserHandler) GetSettings(c *gin.Context) {
	s, err := h.repo.GetSettings(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *UserHandler) UpdateSettings(c *gin.Context) {
	var upd repository.SettingsUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		badRequest(c, "Invalid settings.")
		return
	}
	if upd.Theme != nil && *upd.Theme != "light" && *upd.Theme != "dark" {
		badRequest(c, "Theme must be light or dark.")
		return
	}
	s, err := h.repo.UpdateSettings(c.Request.Context(), currentUser(c).ID, upd)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *UserHandler) UpdatePassword(c *gin.Context) {
	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
		ConfirmPassword string `json:"confirmPassword"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid password data.")
		return
	}
	user := currentUser(c)
	if !user.CheckPassword(req.CurrentPassword) {
		badRequest(c, "Incorrect current password.")
		return
	}
	if req.NewPassword != req.ConfirmPassword {
		badRequest(c, "New passwords do not match.")
		return
	}
	if hint := utils.PasswordHint(req.NewPassword); hint != "" {
		badRequest(c, hint)
		return
	}
	if err := h.repo.UpdateUserPassword(c.Request.Context(), user.ID, req.NewPassword); err != nil {
		h.log.Error("Failed to update password", zap.Error(err), zap.String("userID", user.ID))
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UpdateReminder stores the daily mood reminder. The time is given in the
// user's zone and kept in UTC, which is what the scheduler compares against.
func (h *UserHandler) UpdateReminder(c *gin.Context) {
	var req struct {
		Enabled  bool   `json:"enabled"`
		Time     string `json:"time"`
		TimeZone string `json:"timeZone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid reminder settings.")
		return
	}
	if req.TimeZone == "" {
		req.TimeZone = "UTC"
	}
	utcTime := ""
	if req.Enabled {
		var err error
		utcTime, err = utils.LocalClockToUTC(req.Time, req.TimeZone, time.Now())
		if err != nil {
			badRequest(c, err.Error())
			return
		}
	}
	user := currentUser(c)
	if err := h.repo.UpdateNotificationPreferences(c.Request.Context(), user.ID, req.Enabled, utcTime, req.TimeZone); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"enabled": req.Enabled, "time": req.Time, "timeZone": req.TimeZone, "utcTime": utcTime})
}

// DeleteAccount removes the user, every document they own and their session.
func (h *UserHandler) DeleteAccount(c *gin.Context) {
	user := currentUser(c)
	if err := h.voice.Drop(c.Request.Context(), user.ID); err != nil {
		h.log.Warn("Failed to end voice session", zap.String("userID", user.ID), zap.Error(err))
	}
	if err := h.repo.DeleteUser(c.Request.Context(), user.ID); err != nil {
		respondError(c, h.log, err)
		return
	}
	h.log.Info("Account deleted", zap.String("userID", user.ID))

	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	_ = session.Save()
	c.Status(http.StatusNoContent)
}
