package dashboard

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-metrics-board/pkg/log"
)

func TestBroadcastHookDelivers(t *testing.T) {
	hook := NewBroadcastHook(log.Discard())
	a, cancelA := hook.Subscribe()
	defer cancelA()
	b, cancelB := hook.Subscribe()
	defer cancelB()
	require.Equal(t, 2, hook.Subscribers())

	require.NoError(t, hook.SnapshotRendered(context.Background(), RenderEvent{Sequence: 5}))

	assert.Equal(t, uint64(5), (<-a).Sequence)
	assert.Equal(t, uint64(5), (<-b).Sequence)
}

func TestBroadcastHookCancel(t *testing.T) {
	hook := NewBroadcastHook(log.Discard())
	events, cancel := hook.Subscribe()

	cancel()
	cancel()

	_, ok := <-events
	assert.False(t, ok)
	assert.Zero(t, hook.Subscribers())
	assert.NoError(t, hook.SnapshotRendered(context.Background(), RenderEvent{Sequence: 1}))
}

func TestBroadcastHookLaggingSubscriberDoesNotBlock(t *testing.T) {
	hook := NewBroadcastHook(log.Discard())
	events, cancel := hook.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 1; i <= subscriberBuffer*2; i++ {
			_ = hook.SnapshotRendered(context.Background(), RenderEvent{Sequence: uint64(i)})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked on a full subscriber")
	}
	assert.Len(t, events, subscriberBuffer)
	assert.Equal(t, uint64(1), (<-events).Sequence)
}

func TestWriteSSE(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSSE(&buf, RenderEvent{Sequence: 2}))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "data: {"))
	assert.True(t, strings.HasSuffix(out, "}\n\n"))
	assert.Contains(t, out, `"sequence":2`)
}

func TestServeSSEStreamsEvents(t *testing.T) {
	hook := NewBroadcastHook(log.Discard())
	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/dashboard/events", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		hook.ServeSSE(rec, req)
		close(done)
	}()

	require.Eventually(t, func() bool { return hook.Subscribers() == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, hook.SnapshotRendered(context.Background(), RenderEvent{Sequence: 9}))
	require.Eventually(t, func() bool { return sseWritten(hook) }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sse handler did not return")
	}

	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `"sequence":9`)
	assert.Zero(t, hook.Subscribers())
}

// sseWritten reports whether every subscriber drained its queue.
func sseWritten(h *BroadcastHook) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs {
		if len(ch) > 0 {
			return false
		}
	}
	return true
}

func TestServeWebSocketStreamsEvents(t *testing.T) {
	hook := NewBroadcastHook(log.Discard())
	srv := httptest.NewServer(http.HandlerFunc(hook.ServeWebSocket))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hook.Subscribers() == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, hook.SnapshotRendered(context.Background(), RenderEvent{Sequence: 11}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var event RenderEvent
	require.NoError(t, json.Unmarshal(payload, &event))
	assert.Equal(t, uint64(11), event.Sequence)
}

func TestCloseEndsSSEStream(t *testing.T) {
	hook := NewBroadcastHook(log.Discard())
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/dashboard/events", nil)

	done := make(chan struct{})
	go func() {
		hook.ServeSSE(rec, req)
		close(done)
	}()
	require.Eventually(t, func() bool { return hook.Subscribers() == 1 }, time.Second, 5*time.Millisecond)

	hook.Close()
	hook.Close()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sse handler ignored close")
	}
	assert.Zero(t, hook.Subscribers())

	events, cancel := hook.Subscribe()
	defer cancel()
	_, ok := <-events
	assert.False(t, ok)
	assert.NoError(t, hook.SnapshotRendered(context.Background(), RenderEvent{Sequence: 1}))
}

func TestServeWebSocketDetachesClosedClient(t *testing.T) {
	hook := NewBroadcastHook(log.Discard())
	srv := httptest.NewServer(http.HandlerFunc(hook.ServeWebSocket))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return hook.Subscribers() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, conn.Close())

	assert.Eventually(t, func() bool { return hook.Subscribers() == 0 }, time.Second, 5*time.Millisecond)
}
