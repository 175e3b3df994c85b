package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Asgar77/goodminds-app/internal/assessment"
	"github.com/Asgar77/goodminds-app/internal/repository"
	"github.com/Asgar77/goodminds-app/internal/utils"
	"github.com/Asgar77/goodminds-app/internal/voice"
)

// SessionUserKey is the cookie session key holding the signed-in user id.
const SessionUserKey = "userID"

type AuthHandler struct {
	log      *zap.Logger
	repo     *repository.Repository
	voice    *voice.Manager
	attempts *assessment.Registry
}

func NewAuthHandler(log *zap.Logger, repo *repository.Repository, vm *voice.Manager, attempts *assessment.Registry) *AuthHandler {
	return &AuthHandler{log: log, repo: repo, voice: vm, attempts: attempts}
}

type credentials struct {
	Email       string `json:"email" form:"email"`
	Password    string `json:"password" form:"password"`
	DisplayName string `json:"displayName" form:"displayName"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req credentials
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "Invalid registration data.")
		return
	}
	if !utils.IsValidEmail(req.Email) {
		badRequest(c, "Please enter a valid email address.")
		return
	}
	if hint := utils.PasswordHint(req.Password); hint != "" {
		badRequest(c, hint)
		return
	}

	user, err := h.repo.CreateUser(c.Request.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.log.Info("User registered", zap.String("userID", user.ID))
	c.JSON(http.StatusCreated, gin.H{"id": user.ID, "email": user.Email, "displayName": user.Name()})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req credentials
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "Invalid login data.")
		return
	}

	user, err := h.repo.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil || !user.CheckPassword(req.Password) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid email or password."})
		return
	}

	session := sessions.Default(c)
	session.Set(SessionUserKey, user.ID)
	if err := session.Save(); err != nil {
		h.log.Error("Failed to save session", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to login.", Retryable: true})
		return
	}

	// A stale profile is not a reason to refuse the login.
	if err := h.repo.RecordLogin(c.Request.Context(), user); err != nil {
		h.log.Warn("Failed to record login", zap.String("userID", user.ID), zap.Error(err))
	}
	c.JSON(http.StatusOK, gin.H{"id": user.ID, "email": user.Email, "displayName": user.Name()})
}

// Logout ends any voice session still running and clears the cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	if user := currentUser(c); user != nil {
		if err := h.voice.Drop(c.Request.Context(), user.ID); err != nil {
			h.log.Warn("Failed to end voice session on logout", zap.String("userID", user.ID), zap.Error(err))
		}
		h.attempts.DropUser(user.ID)
	}

	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := session.Save(); err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to logout.", Retryable: true})
		return
	}
	c.Status(http.StatusNoContent)
}

// Me returns the signed-in user with their profile document.
func (h *AuthHandler) Me(c *gin.Context) {
	user := currentUser(c)
	profile, err := h.repo.GetProfile(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if strings.TrimSpace(profile.DisplayName) == "" {
		profile.DisplayName = user.Name()
	}
	if profile.Email == "" {
		profile.Email = user.Email
	}
	c.JSON(http.StatusOK, gin.H{"id": user.ID, "profile": profile})
}
