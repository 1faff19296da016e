// Package activity tracks play sessions. A session is a game_interaction row
// whose duration stays NULL until the player stops; at most one session per
// (user, game) is open at a time.
package activity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/krtchnt/zenki/core"
	"github.com/krtchnt/zenki/core/coreerr"
	"github.com/krtchnt/zenki/events"
	"github.com/krtchnt/zenki/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Session is one play session with display names, as shown in activity history.
type Session struct {
	ID          int64         `gorm:"column:id" json:"id"`
	UID         int64         `gorm:"column:uid" json:"uid"`
	UserName    string        `gorm:"column:uname" json:"uname"`
	GID         int64         `gorm:"column:gid" json:"gid"`
	GameName    string        `gorm:"column:gname" json:"gname"`
	StartplayAt time.Time     `gorm:"column:startplay_at" json:"startplay_at"`
	DurationUs  *int64        `gorm:"column:duration" json:"duration_us"`
	Playing     bool          `gorm:"-" json:"playing"`
	Duration    time.Duration `gorm:"-" json:"-"`
}

// Tracker opens and closes play sessions.
type Tracker struct {
	deps core.Deps
}

// New returns a Tracker.
func New(deps core.Deps) *Tracker {
	return &Tracker{deps: deps}
}

func lockKey(uid, gid int64) string {
	return fmt.Sprintf("lock:play:%d_%d", uid, gid)
}

// latest orders sessions newest first. Sessions started in the same
// microsecond fall back to insertion order.
func latest(db *gorm.DB) *gorm.DB {
	return db.Order("startplay_at DESC").Order("id DESC")
}

// StartPlaying opens a session for (uid, gid). If one is already open the
// call does nothing.
func (t *Tracker) StartPlaying(ctx context.Context, uid, gid int64) (err error) {
	started := time.Now()
	// Set inside the transaction; only trusted once it has committed.
	opened := false
	defer func() {
		t.deps.Finish(ctx, uid, "play.start", map[string]int64{"gid": gid}, err, started)
		if err == nil && opened {
			t.deps.Publish(ctx, events.Event{Type: events.PlayStarted, UID: uid, Data: map[string]any{"gid": gid}}, uid)
		}
	}()

	release, err := t.deps.Lock(ctx, lockKey(uid, gid))
	if err != nil {
		return err
	}
	defer release()

	slot := model.OpenSlotKey(uid, gid)
	err = t.deps.Tx(ctx, "play.start", func(tx *gorm.DB) error {
		var open int64
		if err := tx.Model(&model.GameInteraction{}).
			Where("uid = ? AND gid = ? AND duration IS NULL", uid, gid).
			Count(&open).Error; err != nil {
			return err
		}
		if open > 0 {
			return nil
		}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&model.GameInteraction{
			UID:         uid,
			GID:         gid,
			StartplayAt: t.deps.Clock(),
			OpenSlot:    &slot,
		})
		if res.Error != nil {
			return res.Error
		}
		// Zero rows means another writer holds the open slot.
		opened = res.RowsAffected == 1
		return nil
	})
	return err
}

// StopPlaying closes the most recent open session for (uid, gid), setting its
// duration to the elapsed time. Without an open session it does nothing.
func (t *Tracker) StopPlaying(ctx context.Context, uid, gid int64) (err error) {
	started := time.Now()
	var closed *model.GameInteraction
	defer func() {
		t.deps.Finish(ctx, uid, "play.stop", map[string]int64{"gid": gid}, err, started)
		if err == nil && closed != nil {
			t.deps.Publish(ctx, events.Event{
				Type: events.PlayStopped,
				UID:  uid,
				Data: map[string]any{"gid": gid, "duration_us": *closed.DurationUs},
			}, uid)
		}
	}()

	release, err := t.deps.Lock(ctx, lockKey(uid, gid))
	if err != nil {
		return err
	}
	defer release()

	return t.deps.Tx(ctx, "play.stop", func(tx *gorm.DB) error {
		var rows []model.GameInteraction
		if err := latest(tx.Clauses(clause.Locking{Strength: "UPDATE"})).
			Where("uid = ? AND gid = ? AND duration IS NULL", uid, gid).
			Limit(1).
			Find(&rows).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		s := rows[0]
		ok, err := closeSession(tx, &s, t.deps.Clock())
		if err != nil {
			return err
		}
		if ok {
			closed = &s
		}
		return nil
	})
}

// closeSession sets the duration of s if it is still open. The update is
// keyed on both id and the NULL duration so a row closed by someone else in
// the meantime is left alone.
func closeSession(tx *gorm.DB, s *model.GameInteraction, now time.Time) (bool, error) {
	us := now.Sub(s.StartplayAt).Microseconds()
	if us < 0 {
		us = 0
	}
	res := tx.Model(&model.GameInteraction{}).
		Where("id = ? AND duration IS NULL", s.ID).
		Updates(map[string]interface{}{"duration": us, "open_slot": nil})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	s.DurationUs = &us
	s.OpenSlot = nil
	return true, nil
}

// IsPlaying reports whether the most recent session for (uid, gid) is open.
func (t *Tracker) IsPlaying(ctx context.Context, uid, gid int64) (bool, error) {
	var rows []model.GameInteraction
	err := latest(t.deps.DB.WithContext(ctx)).
		Where("uid = ? AND gid = ?", uid, gid).
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return false, coreerr.Storage("play.is_playing", err)
	}
	return len(rows) == 1 && rows[0].Open(), nil
}

// Activity lists every session of uid, newest first, with user and game names.
func (t *Tracker) Activity(ctx context.Context, uid int64) ([]Session, error) {
	out := make([]Session, 0)
	err := t.deps.DB.WithContext(ctx).
		Table("game_interaction AS gi").
		Select("gi.id AS id, gi.uid AS uid, u.uname AS uname, gi.gid AS gid, g.gname AS gname, gi.startplay_at AS startplay_at, gi.duration AS duration").
		Joins("JOIN users AS u ON u.uid = gi.uid").
		Joins("JOIN games AS g ON g.gid = gi.gid").
		Where("gi.uid = ?", uid).
		Order("gi.startplay_at DESC").
		Order("gi.id DESC").
		Scan(&out).Error
	if err != nil {
		return nil, coreerr.Storage("play.activity", err)
	}
	for i := range out {
		s := &out[i]
		s.Playing = s.DurationUs == nil
		if s.DurationUs != nil {
			s.Duration = time.Duration(*s.DurationUs) * time.Microsecond
		}
	}
	return out, nil
}

// SweepStale closes sessions left open for longer than maxAge, for clients
// that vanished without stopping. It returns how many sessions were closed.
// Sessions whose pair lock is held are skipped until the next sweep.
func (t *Tracker) SweepStale(ctx context.Context, maxAge time.Duration) (int, error) {
	cutoff := t.deps.Clock().Add(-maxAge)
	var stale []model.GameInteraction
	if err := t.deps.DB.WithContext(ctx).
		Where("duration IS NULL AND startplay_at < ?", cutoff).
		Order("id").
		Find(&stale).Error; err != nil {
		return 0, coreerr.Storage("play.sweep", err)
	}

	n := 0
	for i := range stale {
		s := stale[i]
		ok, err := t.sweepOne(ctx, &s)
		if errors.Is(err, coreerr.ErrBusy) {
			continue
		}
		if err != nil {
			return n, err
		}
		if ok {
			n++
			t.deps.Publish(ctx, events.Event{
				Type: events.PlayStopped,
				UID:  s.UID,
				Data: map[string]any{"gid": s.GID, "duration_us": *s.DurationUs, "swept": true},
			}, s.UID)
		}
	}
	if n > 0 {
		t.deps.Logger.Info("closed stale play sessions", zap.Int("count", n), zap.Duration("max_age", maxAge))
	}
	return n, nil
}

func (t *Tracker) sweepOne(ctx context.Context, s *model.GameInteraction) (bool, error) {
	release, err := t.deps.Lock(ctx, lockKey(s.UID, s.GID))
	if err != nil {
		return false, err
	}
	defer release()

	var ok bool
	err = t.deps.Tx(ctx, "play.sweep", func(tx *gorm.DB) error {
		var cerr error
		ok, cerr = closeSession(tx, s, t.deps.Clock())
		return cerr
	})
	return ok, err
}
