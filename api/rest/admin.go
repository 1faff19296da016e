package rest

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/krtchnt/zenki/core/activity"
	"github.com/krtchnt/zenki/scheduler"
	"go.uber.org/zap"
)

// AdminHandler handles admin-only REST endpoints.
// Routes should be protected by AdminAuth middleware.
type AdminHandler struct {
	tracker  *activity.Tracker
	sched    *scheduler.Scheduler
	staleAge time.Duration
	logger   *zap.Logger
}

// NewAdminHandler creates an AdminHandler. staleAge is the default cutoff for
// a manual session sweep.
func NewAdminHandler(tracker *activity.Tracker, sched *scheduler.Scheduler, staleAge time.Duration, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{tracker: tracker, sched: sched, staleAge: staleAge, logger: logger}
}

// ListSchedulerTasks returns all registered ticker tasks with their last run.
// GET /api/admin/scheduler
func (h *AdminHandler) ListSchedulerTasks(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tasks": h.sched.Tasks()})
}

// RunSchedulerTask runs a ticker task immediately.
// POST /api/admin/scheduler/:name/run
func (h *AdminHandler) RunSchedulerTask(c *gin.Context) {
	name := c.Param("name")
	err := h.sched.RunNow(name)
	switch {
	case errors.Is(err, scheduler.ErrUnknownTask):
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown task"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusOK, gin.H{"message": "ran " + name})
	}
}

// SweepSessions closes play sessions open longer than max_age (a Go duration
// string, default from config).
// POST /api/admin/sessions/sweep?max_age=6h
func (h *AdminHandler) SweepSessions(c *gin.Context) {
	maxAge := h.staleAge
	if s := c.Query("max_age"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil || d <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid max_age"})
			return
		}
		maxAge = d
	}
	n, err := h.tracker.SweepStale(c.Request.Context(), maxAge)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.logger.Info("admin session sweep", zap.Int("closed", n), zap.Duration("max_age", maxAge))
	c.JSON(http.StatusOK, gin.H{"closed": n, "max_age": maxAge.String()})
}

// AdminAuth returns a middleware that checks the X-Admin-Key header.
// If adminKey is empty all admin endpoints answer 503, so a server deployed
// without a key never exposes them.
func AdminAuth(adminKey string) gin.HandlerFunc {
	want := []byte(adminKey)
	return func(c *gin.Context) {
		if adminKey == "" {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable,
				gin.H{"error": "admin endpoints disabled: set server.admin_key in config"})
			return
		}
		if subtle.ConstantTimeCompare([]byte(c.GetHeader("X-Admin-Key")), want) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}
