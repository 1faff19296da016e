// Package events publishes friendship, play and purchase events to per-user
// pub/sub channels. The SSE endpoint relays them to connected clients.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/krtchnt/zenki/cache"
	"go.uber.org/zap"
)

// Type names an event.
type Type string

const (
	FriendRequestSent      Type = "friend.request_sent"
	FriendRequestAccepted  Type = "friend.request_accepted"
	FriendRequestDeclined  Type = "friend.request_declined"
	FriendRequestCancelled Type = "friend.request_cancelled"
	FriendRemoved          Type = "friend.removed"
	PlayStarted            Type = "play.started"
	PlayStopped            Type = "play.stopped"
	PurchaseCompleted      Type = "purchase.completed"
	WishlistAdded          Type = "wishlist.added"
	WishlistRemoved        Type = "wishlist.removed"
)

// Event is the JSON payload published on a user channel.
type Event struct {
	Type Type           `json:"type"`
	UID  int64          `json:"uid"`
	Data map[string]any `json:"data,omitempty"`
	At   time.Time      `json:"at"`
}

// Channel returns the pub/sub channel for a user.
func Channel(uid int64) string {
	return "user:" + strconv.FormatInt(uid, 10)
}

// Publisher fans events out to user channels. A nil *Publisher is valid:
// Publish discards everything and Subscribe returns ErrDisabled.
type Publisher struct {
	ps     cache.PubSub
	logger *zap.Logger
}

// NewPublisher creates a Publisher on top of ps.
func NewPublisher(ps cache.PubSub, logger *zap.Logger) *Publisher {
	return &Publisher{ps: ps, logger: logger}
}

// Publish sends ev to each recipient's channel. Delivery is best effort:
// failures are logged and never returned, since the state change that
// produced the event has already committed.
func (p *Publisher) Publish(ctx context.Context, ev Event, recipients ...int64) {
	if p == nil || p.ps == nil {
		return
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		p.logger.Error("event marshal failed", zap.String("type", string(ev.Type)), zap.Error(err))
		return
	}
	for _, uid := range recipients {
		if err := p.ps.Publish(ctx, Channel(uid), string(payload)); err != nil {
			p.logger.Warn("event publish failed",
				zap.String("type", string(ev.Type)),
				zap.Int64("uid", uid),
				zap.Error(err))
		}
	}
}

// ErrDisabled is returned by Subscribe on a Publisher without a pub/sub backend.
var ErrDisabled = errors.New("events: publisher disabled")

// Subscribe returns the decoded event stream for uid. Malformed payloads are
// skipped.
func (p *Publisher) Subscribe(ctx context.Context, uid int64) (<-chan Event, func(), error) {
	if p == nil || p.ps == nil {
		return nil, nil, ErrDisabled
	}
	msgs, cancel, err := p.ps.Subscribe(ctx, Channel(uid))
	if err != nil {
		return nil, nil, err
	}
	out := make(chan Event, 64)
	go func() {
		defer close(out)
		for msg := range msgs {
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				p.logger.Debug("skipping malformed event", zap.String("channel", msg.Channel))
				continue
			}
			select {
			case out <- ev:
			case <-ctx.Done():
			}
		}
	}()
	return out, cancel, nil
}
