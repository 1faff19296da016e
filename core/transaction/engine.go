// Package transaction records purchases. Completing a game purchase moves the
// game from the receiver's wishlist into their library in the same database
// transaction that appends the ledger row.
package transaction

import (
	"context"
	"time"

	"github.com/krtchnt/zenki/core"
	"github.com/krtchnt/zenki/core/coreerr"
	"github.com/krtchnt/zenki/core/inventory"
	"github.com/krtchnt/zenki/events"
	"github.com/krtchnt/zenki/model"
	"gorm.io/gorm"
)

// Request describes a purchase to record.
type Request struct {
	PayerID       int64         `json:"payer_id"`
	PurchaseID    int64         `json:"purchase_id"`
	ReceiverID    int64         `json:"receiver_id"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	Amount        int64         `json:"amount"`
}

// Detail is a transaction with payer, receiver and purchase display data.
type Detail struct {
	TID           int64         `gorm:"column:tid" json:"tid"`
	UID           int64         `gorm:"column:uid" json:"uid"`
	ReceiverUID   int64         `gorm:"column:receiver_uid" json:"receiver_uid"`
	PID           int64         `gorm:"column:pid" json:"pid"`
	PaymentMethod PaymentMethod `gorm:"column:payment_method" json:"payment_method"`
	Amount        int64         `gorm:"column:amount" json:"amount"`
	BoughtAt      time.Time     `gorm:"column:bought_at" json:"bought_at"`
	Status        *string       `gorm:"column:status" json:"status,omitempty"`
	SenderName    *string       `gorm:"column:s_uname" json:"s_uname"`
	ReceiverName  *string       `gorm:"column:r_uname" json:"r_uname"`
	PurchaseDescr *string       `gorm:"column:p_descr" json:"p_descr,omitempty"`
}

// HistoryEntry is one row of a payer's transaction history.
type HistoryEntry struct {
	TID           int64     `gorm:"column:tid" json:"tid"`
	GID           int64     `gorm:"column:gid" json:"gid"`
	GameName      string    `gorm:"column:gname" json:"gname"`
	PID           int64     `gorm:"column:pid" json:"pid"`
	PurchaseDescr *string   `gorm:"column:p_descr" json:"p_descr,omitempty"`
	BoughtAt      time.Time `gorm:"column:bought_at" json:"bought_at"`
}

// Engine creates and reads transactions.
type Engine struct {
	deps core.Deps
	inv  *inventory.Store
}

// New returns an Engine.
func New(deps core.Deps) *Engine {
	return &Engine{deps: deps, inv: inventory.New(deps.DB)}
}

// CreateTransaction records req and returns the new transaction id. For a
// game purchase the receiver owns the game afterwards, whether or not it was
// wishlisted. Either every write commits or none does.
func (e *Engine) CreateTransaction(ctx context.Context, req Request) (tid int64, err error) {
	started := time.Now()
	var gid int64
	var kind model.PurchaseType
	defer func() {
		e.deps.Finish(ctx, req.PayerID, "transaction.create", req, err, started)
		if err == nil {
			e.deps.Publish(ctx, events.Event{
				Type: events.PurchaseCompleted,
				UID:  req.PayerID,
				Data: map[string]any{
					"tid":           tid,
					"pid":           req.PurchaseID,
					"gid":           gid,
					"purchase_type": kind,
					"receiver_uid":  req.ReceiverID,
				},
			}, uniq(req.PayerID, req.ReceiverID)...)
		}
	}()

	if _, err := ParsePaymentMethod(string(req.PaymentMethod)); err != nil {
		return 0, err
	}
	if req.Amount < 0 {
		return 0, coreerr.Precondition("amount %d is negative", req.Amount)
	}

	err = e.deps.Tx(ctx, "transaction.create", func(tx *gorm.DB) error {
		p, err := expectPurchase(tx, req.PurchaseID)
		if err != nil {
			return err
		}
		gid, kind = p.GID, p.PurchaseType

		if p.PurchaseType == model.PurchaseGame {
			inv := e.inv.WithTx(tx)
			if err := inv.RemoveFromWishlist(ctx, req.ReceiverID, p.GID); err != nil {
				return err
			}
			if err := inv.AddToLibrary(ctx, req.ReceiverID, p.GID); err != nil {
				return err
			}
		}

		row := &model.Transaction{
			UID:           req.PayerID,
			ReceiverUID:   req.ReceiverID,
			PID:           p.PID,
			PaymentMethod: string(req.PaymentMethod),
			Amount:        req.Amount,
			BoughtAt:      e.deps.Clock(),
		}
		if err := tx.Create(row).Error; err != nil {
			return err
		}
		tid = row.TID
		return nil
	})
	if err != nil {
		return 0, err
	}
	return tid, nil
}

func uniq(a, b int64) []int64 {
	if a == b {
		return []int64{a}
	}
	return []int64{a, b}
}

// expectPurchase loads a purchase that must exist.
func expectPurchase(db *gorm.DB, pid int64) (*model.Purchase, error) {
	var rows []model.Purchase
	if err := db.Where("pid = ?", pid).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, coreerr.NotFound("purchase", pid)
	}
	return &rows[0], nil
}

// Transaction returns transaction tid with display data, or ErrNotFound.
func (e *Engine) Transaction(ctx context.Context, tid int64) (*Detail, error) {
	var rows []Detail
	err := e.deps.DB.WithContext(ctx).
		Table("transactions AS t").
		Select(`t.tid AS tid, t.uid AS uid, t.receiver_uid AS receiver_uid, t.pid AS pid,
			t.payment_method AS payment_method, t.amount AS amount, t.bought_at AS bought_at,
			t.status AS status, p.descr AS p_descr, s.uname AS s_uname, r.uname AS r_uname`).
		Joins("LEFT JOIN purchases AS p ON p.pid = t.pid").
		Joins("LEFT JOIN users AS s ON s.uid = t.uid").
		Joins("LEFT JOIN users AS r ON r.uid = t.receiver_uid").
		Where("t.tid = ?", tid).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return nil, coreerr.Storage("transaction.get", err)
	}
	if len(rows) == 0 {
		return nil, coreerr.NotFound("transaction", tid)
	}
	return &rows[0], nil
}

// History lists the transactions uid paid for, most recent first.
func (e *Engine) History(ctx context.Context, uid int64) ([]HistoryEntry, error) {
	out := make([]HistoryEntry, 0)
	err := e.deps.DB.WithContext(ctx).
		Table("transactions AS t").
		Select("t.tid AS tid, g.gid AS gid, g.gname AS gname, p.pid AS pid, p.descr AS p_descr, t.bought_at AS bought_at").
		Joins("JOIN purchases AS p ON p.pid = t.pid").
		Joins("JOIN games AS g ON g.gid = p.gid").
		Where("t.uid = ?", uid).
		Order("t.bought_at DESC").
		Order("t.tid DESC").
		Scan(&out).Error
	if err != nil {
		return nil, coreerr.Storage("transaction.history", err)
	}
	return out, nil
}

// Purchase returns purchase pid. The bool is false when it does not exist.
func (e *Engine) Purchase(ctx context.Context, pid int64) (*model.Purchase, bool, error) {
	p, err := expectPurchase(e.deps.DB.WithContext(ctx), pid)
	if err != nil {
		if coreerr.IsKind(err) {
			return nil, false, nil
		}
		return nil, false, coreerr.Storage("purchase.get", err)
	}
	return p, true, nil
}

// Purchases lists the purchases offered for game gid, cheapest first.
func (e *Engine) Purchases(ctx context.Context, gid int64) ([]model.Purchase, error) {
	out := make([]model.Purchase, 0)
	err := e.deps.DB.WithContext(ctx).
		Where("gid = ?", gid).
		Order("price ASC, pid ASC").
		Find(&out).Error
	if err != nil {
		return nil, coreerr.Storage("purchase.list", err)
	}
	return out, nil
}
