package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Asgar77/goodminds-app/internal/repository"
)

// MoodHandler serves the mood tracker and the journal.
type MoodHandler struct {
	log  *zap.Logger
	repo *repository.Repository
}

func NewMoodHandler(log *zap.Logger, repo *repository.Repository) *MoodHandler {
	return &MoodHandler{log: log, repo: repo}
}

func (h *MoodHandler) Options(c *gin.Context) {
	c.JSON(http.StatusOK, repository.MoodOptions)
}

func (h *MoodHandler) ListMoods(c *gin.Context) {
	moods, err := h.repo.ListMoods(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"entries":      moods,
		"insight":      repository.MoodInsight(moods),
		"distribution": repository.MoodDistribution(moods),
	})
}

func (h *MoodHandler) AddMood(c *gin.Context) {
	var req struct {
		Mood string `json:"mood" form:"mood"`
	}
	if err := c.ShouldBind(&req); err != nil || req.Mood == "" {
		badRequest(c, "Please choose a mood.")
		return
	}
	entry, err := h.repo.AddMood(c.Request.Context(), currentUser(c).ID, req.Mood)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (h *MoodHandler) DeleteMood(c *gin.Context) {
	if err := h.repo.DeleteMood(c.Request.Context(), currentUser(c).ID, c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *MoodHandler) ListJournal(c *gin.Context) {
	entries, err := h.repo.ListJournal(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (h *MoodHandler) AddJournalEntry(c *gin.Context) {
	var req struct {
		Text string `json:"text" form:"text"`
	}
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "Invalid journal entry.")
		return
	}
	entry, err := h.repo.AddJournalEntry(c.Request.Context(), currentUser(c).ID, req.Text)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (h *MoodHandler) DeleteJournalEntry(c *gin.Context) {
	if err := h.repo.DeleteJournalEntry(c.Request.Context(), currentUser(c).ID, c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
