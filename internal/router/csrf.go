package router

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Asgar77/goodminds-app/internal/handlers"
	"github.com/Asgar77/goodminds-app/internal/utils"
)

const (
	csrfTokenSessionKey = "csrf_token"
	csrfTokenHeaderKey  = "X-CSRF-Token"
)

// CSRFProtection issues a per-session token in the X-CSRF-Token response
// header and requires it back on every state-changing request.
func CSRFProtection(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)

		token, _ := session.Get(csrfTokenSessionKey).(string)
		if token == "" {
			newToken, err := utils.NewToken(32)
			if err != nil {
				log.Error("Failed to generate CSRF token", zap.Error(err))
				c.AbortWithStatusJSON(http.StatusInternalServerError, handlers.ErrorResponse{Error: "Please try again.", Retryable: true})
				return
			}
			token = newToken
			session.Set(csrfTokenSessionKey, token)
			if err := session.Save(); err != nil {
				log.Error("Failed to save session", zap.Error(err))
				c.AbortWithStatusJSON(http.StatusInternalServerError, handlers.ErrorResponse{Error: "Please try again.", Retryable: true})
				return
			}
		}
		c.Header(csrfTokenHeaderKey, token)

		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
			if submitted := c.GetHeader(csrfTokenHeaderKey); submitted == "" || submitted != token {
				c.AbortWithStatusJSON(http.StatusForbidden, handlers.ErrorResponse{Error: "Invalid or missing CSRF token. Reload and try again."})
				return
			}
		}
		c.Next()
	}
}
