package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/krtchnt/zenki/cache"
	"github.com/krtchnt/zenki/config"
	"github.com/krtchnt/zenki/events"
	mw "github.com/krtchnt/zenki/middleware"
	"go.uber.org/zap"
)

// Handler handles the SSE endpoint.
type Handler struct {
	events    *events.Publisher
	c         cache.Cache
	sec       config.SecurityConfig
	logger    *zap.Logger
	keepalive time.Duration
}

// NewHandler creates a new SSE Handler.
func NewHandler(pub *events.Publisher, c cache.Cache, sec config.SecurityConfig, logger *zap.Logger) *Handler {
	return &Handler{events: pub, c: c, sec: sec, logger: logger, keepalive: 30 * time.Second}
}

// ServeSSE handles GET /sse?token=<jwt>.
// It streams the caller's friendship, play and purchase events.
func (h *Handler) ServeSSE(c *gin.Context) {
	tokenStr := c.Query("token")
	if tokenStr == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}
	uid, err := mw.Authenticate(c.Request.Context(), h.c, tokenStr, h.sec.JWTSecret)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	evCh, unsub, err := h.events.Subscribe(ctx, uid)
	if err != nil {
		h.logger.Error("sse subscribe failed", zap.Int64("uid", uid), zap.Error(err))
		c.Status(http.StatusInternalServerError)
		return
	}
	defer unsub()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	fmt.Fprintf(c.Writer, "event: connected\ndata: {\"uid\":%d}\n\n", uid)
	c.Writer.Flush()

	ticker := time.NewTicker(h.keepalive)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-evCh:
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", ev.Type, data)
			c.Writer.Flush()

		case <-ticker.C:
			// Keepalive comment to prevent proxy timeouts.
			fmt.Fprintf(c.Writer, ": keepalive\n\n")
			c.Writer.Flush()

		case <-ctx.Done():
			return
		}
	}
}
