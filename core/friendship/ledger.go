// Package friendship maintains the friend graph. A relationship between two
// users is stored as at most two directed rows in the friends table: one
// pending row while a request is open, two accepted rows once it is accepted.
package friendship

import (
	"context"
	"time"

	"github.com/krtchnt/zenki/cache"
	"github.com/krtchnt/zenki/core"
	"github.com/krtchnt/zenki/core/coreerr"
	"github.com/krtchnt/zenki/events"
	"github.com/krtchnt/zenki/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRef identifies a user in friend and request lists.
type UserRef struct {
	UID     int64     `gorm:"column:uid" json:"uid"`
	Name    string    `gorm:"column:name" json:"uname"`
	AddedAt time.Time `gorm:"column:added_at" json:"added_at"`
}

// Ledger reads and mutates friendships.
type Ledger struct {
	deps core.Deps
}

// New returns a Ledger.
func New(deps core.Deps) *Ledger {
	return &Ledger{deps: deps}
}

func pairEdges(db *gorm.DB, uid, fid int64) *gorm.DB {
	return db.Where("((uid = ? AND fid = ?) OR (uid = ? AND fid = ?))", uid, fid, fid, uid)
}

// Status returns the relationship of uid to fid.
func (l *Ledger) Status(ctx context.Context, uid, fid int64) (Status, error) {
	var edges []model.Friendship
	if err := pairEdges(l.deps.DB.WithContext(ctx), uid, fid).Find(&edges).Error; err != nil {
		return NotFriends, coreerr.Storage("friendship.status", err)
	}
	return classify(edges, uid, fid), nil
}

// SendRequest opens a friend request from uid to fid. The pair must not be
// related in either direction.
func (l *Ledger) SendRequest(ctx context.Context, uid, fid int64) error {
	return l.mutate(ctx, ActionSend, uid, fid, events.FriendRequestSent)
}

// AcceptRequest accepts the pending request fid sent to uid.
func (l *Ledger) AcceptRequest(ctx context.Context, uid, fid int64) error {
	return l.mutate(ctx, ActionAccept, uid, fid, events.FriendRequestAccepted)
}

// DeclineRequest drops the pending request fid sent to uid. No-op if there is none.
func (l *Ledger) DeclineRequest(ctx context.Context, uid, fid int64) error {
	return l.mutate(ctx, ActionDecline, uid, fid, events.FriendRequestDeclined)
}

// CancelRequest withdraws the pending request uid sent to fid. No-op if there is none.
func (l *Ledger) CancelRequest(ctx context.Context, uid, fid int64) error {
	return l.mutate(ctx, ActionCancel, uid, fid, events.FriendRequestCancelled)
}

// RemoveFriend ends the friendship between uid and fid. No-op unless they are friends.
func (l *Ledger) RemoveFriend(ctx context.Context, uid, fid int64) error {
	return l.mutate(ctx, ActionRemove, uid, fid, events.FriendRemoved)
}

func (l *Ledger) mutate(ctx context.Context, action Action, uid, fid int64, evType events.Type) (err error) {
	started := time.Now()
	op := "friendship." + string(action)
	req := map[string]int64{"uid": uid, "fid": fid}
	changed := false
	defer func() {
		l.deps.Finish(ctx, uid, op, req, err, started)
		if err == nil && changed {
			l.deps.Publish(ctx, events.Event{
				Type: evType,
				UID:  uid,
				Data: map[string]any{"fid": fid},
			}, uid, fid)
		}
	}()

	if uid == fid {
		return coreerr.Precondition("%s: user %d cannot befriend themselves", op, uid)
	}

	release, err := l.deps.Lock(ctx, cache.PairKey("friendship", uid, fid))
	if err != nil {
		return err
	}
	defer release()

	return l.deps.Tx(ctx, op, func(tx *gorm.DB) error {
		var edges []model.Friendship
		if err := pairEdges(tx.Clauses(clause.Locking{Strength: "UPDATE"}), uid, fid).
			Find(&edges).Error; err != nil {
			return err
		}
		from := classify(edges, uid, fid)
		t := lookup(from, action)
		switch t.verdict {
		case reject:
			return coreerr.Precondition("%s not allowed from %s", action, from)
		case noop:
			return nil
		}
		if err := l.apply(tx, action, uid, fid); err != nil {
			return err
		}
		changed = true
		return nil
	})
}

func (l *Ledger) apply(tx *gorm.DB, action Action, uid, fid int64) error {
	now := l.deps.Clock()
	switch action {
	case ActionSend:
		return tx.Create(&model.Friendship{UID: uid, FID: fid, Pending: true, AddedAt: now}).Error

	case ActionAccept:
		res := tx.Model(&model.Friendship{}).
			Where("uid = ? AND fid = ? AND pending = ?", fid, uid, true).
			Updates(map[string]interface{}{"pending": false, "added_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return coreerr.Precondition("request from %d to %d is no longer pending", fid, uid)
		}
		return tx.Create(&model.Friendship{UID: uid, FID: fid, Pending: false, AddedAt: now}).Error

	case ActionDecline:
		return tx.Where("uid = ? AND fid = ? AND pending = ?", fid, uid, true).
			Delete(&model.Friendship{}).Error

	case ActionCancel:
		return tx.Where("uid = ? AND fid = ? AND pending = ?", uid, fid, true).
			Delete(&model.Friendship{}).Error

	case ActionRemove:
		return pairEdges(tx, uid, fid).Where("pending = ?", false).
			Delete(&model.Friendship{}).Error
	}
	return coreerr.Precondition("unknown action %q", action)
}

// Friends lists users uid has an accepted friendship with.
func (l *Ledger) Friends(ctx context.Context, uid int64) ([]UserRef, error) {
	return l.list(ctx, "friendship.friends", "f.fid", "f.uid = ? AND f.pending = ?", uid, false)
}

// IncomingRequests lists users with a pending request to uid.
func (l *Ledger) IncomingRequests(ctx context.Context, uid int64) ([]UserRef, error) {
	return l.list(ctx, "friendship.incoming", "f.uid", "f.fid = ? AND f.pending = ?", uid, true)
}

// OutgoingRequests lists users uid has a pending request to.
func (l *Ledger) OutgoingRequests(ctx context.Context, uid int64) ([]UserRef, error) {
	return l.list(ctx, "friendship.outgoing", "f.fid", "f.uid = ? AND f.pending = ?", uid, true)
}

func (l *Ledger) list(ctx context.Context, op, other, where string, uid int64, pending bool) ([]UserRef, error) {
	refs := make([]UserRef, 0)
	err := l.deps.DB.WithContext(ctx).
		Table("friends AS f").
		Select("u.uid AS uid, u.uname AS name, f.added_at AS added_at").
		Joins("JOIN users AS u ON u.uid = "+other).
		Where(where, uid, pending).
		Order("u.uname ASC, u.uid ASC").
		Scan(&refs).Error
	if err != nil {
		return nil, coreerr.Storage(op, err)
	}
	return refs, nil
}
