package hub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	h := New("test")
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-h.Done()
	})
	return h, cancel
}

// attach registers a connectionless client so tests can read its queue.
func attach(h *Hub, buffer int) *Client {
	c := &Client{hub: h, send: make(chan Message, buffer)}
	h.register <- c
	return c
}

func receive(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case msg := <-c.send:
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message delivered")
		return Message{}
	}
}

func TestBroadcastReachesAllClients(t *testing.T) {
	h, _ := startHub(t)
	a := attach(h, 4)
	b := attach(h, 4)
	require.Eventually(t, func() bool { return h.ClientCount() == 2 }, time.Second, time.Millisecond)

	h.BroadcastFrame([]byte{1, 2, 3})

	for _, c := range []*Client{a, b} {
		msg := receive(t, c)
		assert.True(t, msg.Binary)
		assert.Equal(t, []byte{1, 2, 3}, msg.Data)
	}
}

func TestBroadcastText(t *testing.T) {
	h, _ := startHub(t)
	c := attach(h, 4)

	h.Broadcast(Text([]byte(`{"frame":3}`)))
	msg := receive(t, c)
	assert.False(t, msg.Binary)
	assert.JSONEq(t, `{"frame":3}`, string(msg.Data))
}

func TestSlowClientIsDropped(t *testing.T) {
	h, _ := startHub(t)
	slow := attach(h, 1)
	fast := attach(h, 8)

	h.BroadcastFrame([]byte{1})
	h.BroadcastFrame([]byte{2})

	assert.Equal(t, []byte{1}, receive(t, fast).Data)
	assert.Equal(t, []byte{2}, receive(t, fast).Data)
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, time.Millisecond)

	// the slow client keeps what was queued, then sees its channel closed
	assert.Equal(t, []byte{1}, receive(t, slow).Data)
	_, ok := <-slow.send
	assert.False(t, ok)
}

func TestSendToTargetsOneClient(t *testing.T) {
	h, _ := startHub(t)
	a := attach(h, 4)
	b := attach(h, 4)

	a.Reply(Text([]byte(`{"type":"pong"}`)))

	assert.Equal(t, `{"type":"pong"}`, string(receive(t, a).Data))
	select {
	case msg := <-b.send:
		t.Fatalf("unexpected message %q", msg.Data)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestUnregister(t *testing.T) {
	h, _ := startHub(t)
	c := attach(h, 4)

	c.leave()
	_, ok := <-c.send
	assert.False(t, ok)
	assert.Equal(t, 0, h.ClientCount())
}

func TestStopReleasesClients(t *testing.T) {
	h := New("stop")
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)
	c := attach(h, 4)

	cancel()
	<-h.Done()

	_, ok := <-c.send
	assert.False(t, ok)
	assert.Nil(t, NewClient(h, nil))

	// leaving after shutdown must not block
	c.leave()
}
