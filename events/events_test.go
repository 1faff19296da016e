package events

import (
	"context"
	"testing"
	"time"

	"github.com/krtchnt/zenki/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishSubscribe(t *testing.T) {
	_, ps := testutil.SetupTestCache(t)
	pub := NewPublisher(ps, testutil.Logger(t))
	ctx := context.Background()

	ch, cancel, err := pub.Subscribe(ctx, 2)
	require.NoError(t, err)
	defer cancel()

	pub.Publish(ctx, Event{Type: FriendRequestSent, UID: 1, Data: map[string]any{"fid": 2}}, 2, 3)

	select {
	case ev := <-ch:
		assert.Equal(t, FriendRequestSent, ev.Type)
		assert.Equal(t, int64(1), ev.UID)
		assert.Equal(t, float64(2), ev.Data["fid"])
		assert.False(t, ev.At.IsZero())
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestPublish_NilPublisher(t *testing.T) {
	var pub *Publisher
	pub.Publish(context.Background(), Event{Type: PlayStarted}, 1)
}

func TestSubscribe_NilPublisher(t *testing.T) {
	var pub *Publisher
	ch, cancel, err := pub.Subscribe(context.Background(), 1)
	assert.ErrorIs(t, err, ErrDisabled)
	assert.Nil(t, ch)
	assert.Nil(t, cancel)

	_, _, err = NewPublisher(nil, testutil.Logger(t)).Subscribe(context.Background(), 1)
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestSubscribe_SkipsMalformed(t *testing.T) {
	_, ps := testutil.SetupTestCache(t)
	pub := NewPublisher(ps, testutil.Logger(t))
	ctx := context.Background()

	ch, cancel, err := pub.Subscribe(ctx, 5)
	require.NoError(t, err)
	defer cancel()

	require.NoError(t, ps.Publish(ctx, Channel(5), "not json"))
	pub.Publish(ctx, Event{Type: PlayStopped, UID: 5}, 5)

	select {
	case ev := <-ch:
		assert.Equal(t, PlayStopped, ev.Type)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestChannel(t *testing.T) {
	assert.Equal(t, "user:42", Channel(42))
}
