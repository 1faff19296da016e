package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/krtchnt/zenki/core/transaction"
	mw "github.com/krtchnt/zenki/middleware"
	"go.uber.org/zap"
)

// TransactionHandler handles transaction and purchase endpoints.
type TransactionHandler struct {
	engine *transaction.Engine
	logger *zap.Logger
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(engine *transaction.Engine, logger *zap.Logger) *TransactionHandler {
	return &TransactionHandler{engine: engine, logger: logger}
}

// Create handles POST /api/transactions. The caller pays; the receiver
// defaults to the caller.
func (h *TransactionHandler) Create(c *gin.Context) {
	var req struct {
		PurchaseID    int64  `json:"purchase_id" binding:"required,gt=0"`
		ReceiverID    int64  `json:"receiver_id" binding:"gte=0"`
		PaymentMethod string `json:"payment_method" binding:"required"`
		Amount        *int64 `json:"amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	method, err := transaction.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	payer := mw.GetUserID(c)
	receiver := req.ReceiverID
	if receiver == 0 {
		receiver = payer
	}

	tid, err := h.engine.CreateTransaction(c.Request.Context(), transaction.Request{
		PayerID:       payer,
		PurchaseID:    req.PurchaseID,
		ReceiverID:    receiver,
		PaymentMethod: method,
		Amount:        *req.Amount,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"tid": tid})
}

// Get handles GET /api/transactions/:tid. Only the payer and the receiver
// can see a transaction; anyone else gets 404.
func (h *TransactionHandler) Get(c *gin.Context) {
	tid, ok := paramID(c, "tid")
	if !ok {
		return
	}
	d, err := h.engine.Transaction(c.Request.Context(), tid)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	uid := mw.GetUserID(c)
	if d.UID != uid && d.ReceiverUID != uid {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"transaction":         d,
		"payment_method_name": d.PaymentMethod.String(),
	})
}

// History handles GET /api/users/:uid/transactions. Users only see their own.
func (h *TransactionHandler) History(c *gin.Context) {
	uid, ok := paramID(c, "uid")
	if !ok {
		return
	}
	if uid != mw.GetUserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	list, err := h.engine.History(c.Request.Context(), uid)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": list})
}

// Purchase handles GET /api/purchases/:pid.
func (h *TransactionHandler) Purchase(c *gin.Context) {
	pid, ok := paramID(c, "pid")
	if !ok {
		return
	}
	p, found, err := h.engine.Purchase(c.Request.Context(), pid)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "purchase not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"purchase":  p,
		"type_name": transaction.PurchaseTypeName(p.PurchaseType),
	})
}

// Purchases handles GET /api/games/:gid/purchases.
func (h *TransactionHandler) Purchases(c *gin.Context) {
	gid, ok := paramID(c, "gid")
	if !ok {
		return
	}
	list, err := h.engine.Purchases(c.Request.Context(), gid)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"purchases": list})
}
