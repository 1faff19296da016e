package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/krtchnt/zenki/core/activity"
	mw "github.com/krtchnt/zenki/middleware"
	"go.uber.org/zap"
)

// ActivityHandler handles play session endpoints.
type ActivityHandler struct {
	tracker *activity.Tracker
	logger  *zap.Logger
}

// NewActivityHandler creates a new ActivityHandler.
func NewActivityHandler(tracker *activity.Tracker, logger *zap.Logger) *ActivityHandler {
	return &ActivityHandler{tracker: tracker, logger: logger}
}

// Start handles POST /api/games/:gid/play.
func (h *ActivityHandler) Start(c *gin.Context) {
	gid, ok := paramID(c, "gid")
	if !ok {
		return
	}
	if err := h.tracker.StartPlaying(c.Request.Context(), mw.GetUserID(c), gid); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"playing": true})
}

// Stop handles DELETE /api/games/:gid/play.
func (h *ActivityHandler) Stop(c *gin.Context) {
	gid, ok := paramID(c, "gid")
	if !ok {
		return
	}
	if err := h.tracker.StopPlaying(c.Request.Context(), mw.GetUserID(c), gid); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"playing": false})
}

// IsPlaying handles GET /api/games/:gid/play.
func (h *ActivityHandler) IsPlaying(c *gin.Context) {
	gid, ok := paramID(c, "gid")
	if !ok {
		return
	}
	playing, err := h.tracker.IsPlaying(c.Request.Context(), mw.GetUserID(c), gid)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"playing": playing})
}

// Activity handles GET /api/users/:uid/activity.
func (h *ActivityHandler) Activity(c *gin.Context) {
	uid, ok := paramID(c, "uid")
	if !ok {
		return
	}
	list, err := h.tracker.Activity(c.Request.Context(), uid)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"activity": list})
}
