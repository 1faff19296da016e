package rest

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/krtchnt/zenki/core/friendship"
	mw "github.com/krtchnt/zenki/middleware"
	"go.uber.org/zap"
)

// FriendshipHandler handles friend status, request and list endpoints.
type FriendshipHandler struct {
	ledger *friendship.Ledger
	logger *zap.Logger
}

// NewFriendshipHandler creates a new FriendshipHandler.
func NewFriendshipHandler(ledger *friendship.Ledger, logger *zap.Logger) *FriendshipHandler {
	return &FriendshipHandler{ledger: ledger, logger: logger}
}

// Status handles GET /api/friends/:fid/status.
func (h *FriendshipHandler) Status(c *gin.Context) {
	fid, ok := paramID(c, "fid")
	if !ok {
		return
	}
	st, err := h.ledger.Status(c.Request.Context(), mw.GetUserID(c), fid)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"fid": fid, "status": st})
}

// SendRequest handles POST /api/friends/:fid/request.
func (h *FriendshipHandler) SendRequest(c *gin.Context) {
	h.mutate(c, h.ledger.SendRequest, http.StatusCreated, "request sent")
}

// CancelRequest handles DELETE /api/friends/:fid/request.
func (h *FriendshipHandler) CancelRequest(c *gin.Context) {
	h.mutate(c, h.ledger.CancelRequest, http.StatusOK, "request cancelled")
}

// AcceptRequest handles POST /api/friends/:fid/accept.
func (h *FriendshipHandler) AcceptRequest(c *gin.Context) {
	h.mutate(c, h.ledger.AcceptRequest, http.StatusOK, "request accepted")
}

// DeclineRequest handles POST /api/friends/:fid/decline.
func (h *FriendshipHandler) DeclineRequest(c *gin.Context) {
	h.mutate(c, h.ledger.DeclineRequest, http.StatusOK, "request declined")
}

// RemoveFriend handles DELETE /api/friends/:fid.
func (h *FriendshipHandler) RemoveFriend(c *gin.Context) {
	h.mutate(c, h.ledger.RemoveFriend, http.StatusOK, "friend removed")
}

func (h *FriendshipHandler) mutate(c *gin.Context, op func(ctx context.Context, uid, fid int64) error, status int, msg string) {
	fid, ok := paramID(c, "fid")
	if !ok {
		return
	}
	if err := op(c.Request.Context(), mw.GetUserID(c), fid); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(status, gin.H{"message": msg})
}

// ListFriends handles GET /api/users/:uid/friends.
func (h *FriendshipHandler) ListFriends(c *gin.Context) {
	uid, ok := paramID(c, "uid")
	if !ok {
		return
	}
	friends, err := h.ledger.Friends(c.Request.Context(), uid)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"friends": friends})
}

// IncomingRequests handles GET /api/friends/requests/incoming.
func (h *FriendshipHandler) IncomingRequests(c *gin.Context) {
	list, err := h.ledger.IncomingRequests(c.Request.Context(), mw.GetUserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": list})
}

// OutgoingRequests handles GET /api/friends/requests/outgoing.
func (h *FriendshipHandler) OutgoingRequests(c *gin.Context) {
	list, err := h.ledger.OutgoingRequests(c.Request.Context(), mw.GetUserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": list})
}
