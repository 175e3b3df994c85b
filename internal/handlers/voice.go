package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Asgar77/goodminds-app/internal/repository"
	"github.com/Asgar77/goodminds-app/internal/speech"
	"github.com/Asgar77/goodminds-app/internal/store"
	"github.com/Asgar77/goodminds-app/internal/voice"
)

type VoiceHandler struct {
	log     *zap.Logger
	repo    *repository.Repository
	manager *voice.Manager
}

func NewVoiceHandler(log *zap.Logger, repo *repository.Repository, manager *voice.Manager) *VoiceHandler {
	return &VoiceHandler{log: log, repo: repo, manager: manager}
}

func (h *VoiceHandler) controller(c *gin.Context) *voice.Controller {
	return h.manager.For(currentUser(c).ID)
}

func (h *VoiceHandler) Start(c *gin.Context) {
	var req struct {
		Topic string `json:"topic" form:"topic"`
	}
	// The topic is optional; an empty body starts a general check-in.
	_ = c.ShouldBind(&req)

	user := currentUser(c)
	ctrl := h.controller(c)
	err := ctrl.StartSession(c.Request.Context(), &voice.User{ID: user.ID, DisplayName: user.Name(), Email: user.Email}, req.Topic)
	var we *store.WriteError
	if err != nil && !errors.As(err, &we) {
		respondError(c, h.log, err)
		return
	}
	// An unsaved start record keeps the call going; the snapshot carries the notice.
	c.JSON(http.StatusOK, ctrl.Snapshot())
}

func (h *VoiceHandler) State(c *gin.Context) {
	c.JSON(http.StatusOK, h.controller(c).Snapshot())
}

// Utterance accepts typed text as JSON or a recorded clip as the multipart
// field "audio".
func (h *VoiceHandler) Utterance(c *gin.Context) {
	ctrl := h.controller(c)
	var (
		turn voice.Turn
		err  error
	)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		file, header, ferr := c.Request.FormFile("audio")
		if ferr != nil {
			badRequest(c, "An audio recording is required.")
			return
		}
		defer file.Close()
		turn, err = ctrl.SubmitAudio(c.Request.Context(), file, header.Filename)
	} else {
		var req struct {
			Text string `json:"text" form:"text"`
		}
		if berr := c.ShouldBind(&req); berr != nil {
			badRequest(c, "Invalid utterance.")
			return
		}
		turn, err = ctrl.SubmitUtterance(c.Request.Context(), req.Text)
	}
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"turn": turn, "session": ctrl.Snapshot()})
}

// CaptureFailure records a microphone failure the browser detected.
func (h *VoiceHandler) CaptureFailure(c *gin.Context) {
	var req struct {
		Kind string `json:"kind" form:"kind"`
	}
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "Invalid capture report.")
		return
	}
	kind, err := speech.ParseCaptureKind(req.Kind)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	ctrl := h.controller(c)
	err = ctrl.ReportCaptureFailure(kind)
	var ce *speech.CaptureError
	if !errors.As(err, &ce) {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, ctrl.Snapshot())
}

func (h *VoiceHandler) Mute(c *gin.Context) {
	var req struct {
		Muted *bool `json:"muted"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Muted == nil {
		badRequest(c, "muted is required.")
		return
	}
	ctrl := h.controller(c)
	if err := ctrl.SetMuted(*req.Muted); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, ctrl.Snapshot())
}

func (h *VoiceHandler) End(c *gin.Context) {
	ctrl := h.controller(c)
	if err := ctrl.EndSession(c.Request.Context()); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, ctrl.Snapshot())
}

func (h *VoiceHandler) Clip(c *gin.Context) {
	ctrl, ok := h.manager.Lookup(currentUser(c).ID)
	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, ErrorResponse{Error: "Audio not found."})
		return
	}
	clip, ok := ctrl.Clip(c.Param("id"))
	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, ErrorResponse{Error: "Audio not found."})
		return
	}
	c.Data(http.StatusOK, clip.ContentType, clip.Data)
}

func (h *VoiceHandler) Sessions(c *gin.Context) {
	sessions, err := h.repo.ListSessions(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, sessions)
}
