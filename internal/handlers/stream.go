package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Asgar77/goodminds-app/internal/store"
)

// StreamHandler forwards live store snapshots as Server-Sent Events.
type StreamHandler struct {
	log   *zap.Logger
	store *store.Store
}

func NewStreamHandler(log *zap.Logger, st *store.Store) *StreamHandler {
	return &StreamHandler{log: log, store: st}
}

// Stream subscribes to the document or collection named by the wildcard path.
// Users may only watch paths under their own namespace.
func (h *StreamHandler) Stream(c *gin.Context) {
	p, err := store.ParsePath(c.Param("path"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	user := currentUser(c)
	if p.UserID() != user.ID {
		c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Error: "You can only watch your own data."})
		return
	}

	// Snapshots are complete, so only the newest undelivered one matters.
	snapshots := make(chan store.Snapshot, 1)
	ctx := c.Request.Context()
	unsubscribe, err := h.store.Subscribe(ctx, p.String(), func(s store.Snapshot) {
		select {
		case <-snapshots:
		default:
		}
		snapshots <- s
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	defer unsubscribe()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case s := <-snapshots:
			c.SSEvent("snapshot", s)
			return true
		}
	})
}
