package hub_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfrund/remora/internal/hub"
)

func TestHubBroadcast(t *testing.T) {
	h := hub.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	first := &hub.Subscriber{Send: make(chan []byte, 4)}
	second := &hub.Subscriber{Send: make(chan []byte, 4)}
	h.Register <- first
	h.Register <- second

	h.Broadcast <- []byte("hello")

	for _, sub := range []*hub.Subscriber{first, second} {
		select {
		case msg := <-sub.Send:
			assert.Equal(t, []byte("hello"), msg)
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for broadcast")
		}
	}
}

func TestHubUnregister(t *testing.T) {
	h := hub.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	sub := &hub.Subscriber{Send: make(chan []byte, 1)}
	h.Register <- sub
	h.Unregister <- sub

	select {
	case _, open := <-sub.Send:
		assert.False(t, open, "unregistering must close the subscriber channel")
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for channel close")
	}
}

func TestHubShutdownClosesSubscribers(t *testing.T) {
	h := hub.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)

	sub := &hub.Subscriber{Send: make(chan []byte, 1)}
	h.Register <- sub

	cancel()

	select {
	case _, open := <-sub.Send:
		require.False(t, open, "shutdown must close subscriber channels")
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for shutdown")
	}
}
