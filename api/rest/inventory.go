package rest

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/krtchnt/zenki/core/inventory"
	mw "github.com/krtchnt/zenki/middleware"
	"go.uber.org/zap"
)

// InventoryHandler handles wishlist and library endpoints.
type InventoryHandler struct {
	svc    *inventory.Service
	logger *zap.Logger
}

// NewInventoryHandler creates a new InventoryHandler.
func NewInventoryHandler(svc *inventory.Service, logger *zap.Logger) *InventoryHandler {
	return &InventoryHandler{svc: svc, logger: logger}
}

// Wishlist handles GET /api/users/:uid/wishlist.
func (h *InventoryHandler) Wishlist(c *gin.Context) {
	h.list(c, "wishlist", h.svc.Wishlist)
}

// Library handles GET /api/users/:uid/library.
func (h *InventoryHandler) Library(c *gin.Context) {
	h.list(c, "library", h.svc.Library)
}

func (h *InventoryHandler) list(c *gin.Context, key string, fn func(context.Context, int64) ([]inventory.GameRef, error)) {
	uid, ok := paramID(c, "uid")
	if !ok {
		return
	}
	games, err := fn(c.Request.Context(), uid)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{key: games})
}

// AddToWishlist handles POST /api/games/:gid/wishlist.
func (h *InventoryHandler) AddToWishlist(c *gin.Context) {
	h.mutate(c, h.svc.AddToWishlist)
}

// RemoveFromWishlist handles DELETE /api/games/:gid/wishlist.
func (h *InventoryHandler) RemoveFromWishlist(c *gin.Context) {
	h.mutate(c, h.svc.RemoveFromWishlist)
}

func (h *InventoryHandler) mutate(c *gin.Context, fn func(context.Context, int64, int64) error) {
	gid, ok := paramID(c, "gid")
	if !ok {
		return
	}
	uid := mw.GetUserID(c)
	if err := fn(c.Request.Context(), uid, gid); err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.respondStatus(c, uid, gid)
}

// Status handles GET /api/games/:gid/wishlist.
func (h *InventoryHandler) Status(c *gin.Context) {
	gid, ok := paramID(c, "gid")
	if !ok {
		return
	}
	h.respondStatus(c, mw.GetUserID(c), gid)
}

func (h *InventoryHandler) respondStatus(c *gin.Context, uid, gid int64) {
	st, err := h.svc.WishlistStatus(c.Request.Context(), uid, gid)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"gid": gid, "status": st})
}
