package router

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Asgar77/goodminds-app/internal/handlers"
	"github.com/Asgar77/goodminds-app/internal/repository"
)

// UserLoaderMiddleware loads the user named by the session into the context.
// Sessions of users that no longer exist are cleared.
func UserLoaderMiddleware(log *zap.Logger, repo *repository.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID, ok := session.Get(handlers.SessionUserKey).(string)
		if !ok || userID == "" {
			c.Next()
			return
		}

		user, err := repo.GetUserByID(c.Request.Context(), userID)
		if err != nil {
			log.Debug("Dropping session of unknown user", zap.String("userID", userID), zap.Error(err))
			session.Clear()
			session.Options(sessions.Options{Path: "/", MaxAge: -1})
			_ = session.Save()
			c.Next()
			return
		}

		c.Set("user", user)
		c.Next()
	}
}

// AuthRequired rejects requests without a signed-in user.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get("user"); !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, handlers.ErrorResponse{Error: "Please sign in."})
			return
		}
		c.Next()
	}
}
