package rest

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/krtchnt/zenki/core/coreerr"
	mw "github.com/krtchnt/zenki/middleware"
	"go.uber.org/zap"
)

// busyRetryAfter is the Retry-After hint, in seconds, sent with a busy answer.
const busyRetryAfter = "1"

// respondError maps a core error kind to a status code. Storage failures are
// logged with their cause and reported to the client as a generic failure.
//
// Both a busy pair lock and a violated precondition answer 409. Only the busy
// one is retryable: it carries Retry-After and "retryable": true, and the
// same request is expected to succeed once the concurrent call on that
// (user, friend) or (user, game) pair has finished. The server never waits
// or retries on the client's behalf.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, coreerr.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, coreerr.ErrInvalidPaymentMethod):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment method"})
	case errors.Is(err, coreerr.ErrBusy):
		c.Header("Retry-After", busyRetryAfter)
		c.JSON(http.StatusConflict, gin.H{"error": "busy, please retry", "retryable": true})
	case errors.Is(err, coreerr.ErrPreconditionViolation):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "retryable": false})
	default:
		logger.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.String("trace_id", mw.GetTraceID(c)),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "operation failed"})
	}
}

// paramID parses a positive int64 path parameter, answering 400 on failure.
func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}
