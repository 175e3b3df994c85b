package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Asgar77/goodminds-app/internal/agent"
	"github.com/Asgar77/goodminds-app/internal/assessment"
	"github.com/Asgar77/goodminds-app/internal/models"
	"github.com/Asgar77/goodminds-app/internal/repository"
	"github.com/Asgar77/goodminds-app/internal/speech"
	"github.com/Asgar77/goodminds-app/internal/store"
	"github.com/Asgar77/goodminds-app/internal/voice"
)

// ErrorResponse is the notification body of every failed request.
type ErrorResponse struct {
	Error      string `json:"error"`
	Retryable  bool   `json:"retryable"`
	Unanswered []int  `json:"unanswered,omitempty"`
}

// respondError maps err onto a status and a user-facing notification.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	status, body := classify(err)
	if status >= http.StatusInternalServerError {
		log.Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
	} else {
		log.Debug("Request rejected", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.AbortWithStatusJSON(status, body)
}

func classify(err error) (int, ErrorResponse) {
	var (
		pre *assessment.PreconditionError
		ae  *agent.Error
		ce  *speech.CaptureError
		we  *store.WriteError
		re  *store.ReadError
	)
	switch {
	case errors.As(err, &pre):
		return http.StatusUnprocessableEntity, ErrorResponse{
			Error:      "Please answer every question before continuing.",
			Unanswered: pre.Unanswered,
		}
	case errors.As(err, &ae):
		return http.StatusBadGateway, ErrorResponse{Error: ae.UserMessage(), Retryable: ae.Retryable()}
	case errors.As(err, &ce):
		return http.StatusUnprocessableEntity, ErrorResponse{Error: ce.UserMessage(), Retryable: true}
	case errors.Is(err, store.ErrInvalidPath):
		return http.StatusBadRequest, ErrorResponse{Error: "Invalid document path."}
	case errors.As(err, &we):
		return http.StatusServiceUnavailable, ErrorResponse{Error: "We couldn't save your changes. Please try again.", Retryable: true}
	case errors.As(err, &re):
		return http.StatusServiceUnavailable, ErrorResponse{Error: "We couldn't load your data. Please try again.", Retryable: true}
	case errors.Is(err, voice.ErrAuthRequired):
		return http.StatusUnauthorized, ErrorResponse{Error: "Please sign in to start a session."}
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, ErrorResponse{Error: "Not found."}
	case errors.Is(err, repository.ErrEmailTaken):
		return http.StatusConflict, ErrorResponse{Error: "An account with this email already exists."}
	case errors.Is(err, voice.ErrInvalidState),
		errors.Is(err, voice.ErrBusy),
		errors.Is(err, voice.ErrMuted),
		errors.Is(err, assessment.ErrAlreadySaved):
		return http.StatusConflict, ErrorResponse{Error: err.Error()}
	case errors.Is(err, voice.ErrEmptyUtterance),
		errors.Is(err, assessment.ErrQuestionOutOfRange),
		errors.Is(err, assessment.ErrInvalidOption),
		errors.Is(err, repository.ErrUnknownMood),
		errors.Is(err, repository.ErrEmptyJournalEntry):
		return http.StatusBadRequest, ErrorResponse{Error: err.Error()}
	default:
		return http.StatusInternalServerError, ErrorResponse{Error: "Something went wrong. Please try again.", Retryable: true}
	}
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

// currentUser returns the user loaded by the session middleware.
func currentUser(c *gin.Context) *models.User {
	user, _ := c.Get("user")
	u, _ := user.(*models.User)
	return u
}
