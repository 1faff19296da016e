package local

import (
	"context"
	"sync"
)

// LocalMessage is an in-process pub/sub message.
type LocalMessage struct {
	Channel string
	Payload string
}

type subscription struct {
	ch     chan *LocalMessage
	closed bool
}

// LocalPubSub is an in-process fan-out pub/sub implementation. Slow
// subscribers lose messages instead of blocking publishers.
type LocalPubSub struct {
	mu      sync.RWMutex
	subs    map[string][]*subscription
	bufSize int
}

// NewPubSub creates a new LocalPubSub with the given per-subscriber buffer size.
func NewPubSub(bufSize int) *LocalPubSub {
	if bufSize <= 0 {
		bufSize = 256
	}
	return &LocalPubSub{
		subs:    make(map[string][]*subscription),
		bufSize: bufSize,
	}
}

// Publish sends a message to all subscribers of the given channel.
func (ps *LocalPubSub) Publish(_ context.Context, channel, message string) error {
	msg := &LocalMessage{Channel: channel, Payload: message}
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	for _, s := range ps.subs[channel] {
		if s.closed {
			continue
		}
		select {
		case s.ch <- msg:
		default:
		}
	}
	return nil
}

// Subscribe returns a channel of messages for the given channels and a cancel
// function that unsubscribes and closes the channel.
func (ps *LocalPubSub) Subscribe(_ context.Context, channels ...string) (<-chan *LocalMessage, func(), error) {
	s := &subscription{ch: make(chan *LocalMessage, ps.bufSize)}

	ps.mu.Lock()
	for _, c := range channels {
		ps.subs[c] = append(ps.subs[c], s)
	}
	ps.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			ps.mu.Lock()
			defer ps.mu.Unlock()
			for _, c := range channels {
				list := ps.subs[c]
				for j, sub := range list {
					if sub == s {
						list = append(list[:j], list[j+1:]...)
						break
					}
				}
				if len(list) == 0 {
					delete(ps.subs, c)
				} else {
					ps.subs[c] = list
				}
			}
			s.closed = true
			close(s.ch)
		})
	}
	return s.ch, cancel, nil
}
