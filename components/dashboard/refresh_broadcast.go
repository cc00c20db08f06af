package dashboard

import (
	"context"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/goliatone/go-metrics-board/pkg/log"
)

const subscriberBuffer = 8

// BroadcastHook fans out render events to in-process subscribers. Slow
// subscribers miss events instead of blocking the render pass.
type BroadcastHook struct {
	mu     sync.RWMutex
	subs   map[string]chan RenderEvent
	closed bool
	logger log.Logger
}

// NewBroadcastHook creates a broadcast hook.
func NewBroadcastHook(logger log.Logger) *BroadcastHook {
	return &BroadcastHook{
		subs:   make(map[string]chan RenderEvent),
		logger: log.OrDefault(logger),
	}
}

// SnapshotRendered satisfies RefreshHook and broadcasts the event.
func (h *BroadcastHook) SnapshotRendered(ctx context.Context, event RenderEvent) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, ch := range h.subs {
		select {
		case ch <- event:
		default:
			h.logger.WithContext(ctx).WithField("subscriber", id).Debug("subscriber lagging, event dropped")
		}
	}
	return nil
}

// Subscribe returns a channel of render events and a cancel func.
func (h *BroadcastHook) Subscribe() (<-chan RenderEvent, func()) {
	id, err := gonanoid.New()
	if err != nil {
		id = log.NewCorrelationID()
	}
	ch := make(chan RenderEvent, subscriberBuffer)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	h.subs[id] = ch
	h.mu.Unlock()
	h.logger.WithField("subscriber", id).Debug("subscriber attached")

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if sub, ok := h.subs[id]; ok {
				delete(h.subs, id)
				close(sub)
			}
			h.logger.WithField("subscriber", id).Debug("subscriber detached")
		})
	}
	return ch, cancel
}

// Close ends every live stream by closing subscriber channels. Later
// subscriptions receive a closed channel. It is safe to call more than once.
func (h *BroadcastHook) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.subs {
		close(ch)
		delete(h.subs, id)
	}
	h.logger.Debug("broadcast closed")
}

// Subscribers reports the number of attached subscribers.
func (h *BroadcastHook) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket upgrades the request and streams render events as JSON.
func (h *BroadcastHook) ServeWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	events, cancel := h.Subscribe()
	defer cancel()

	ctx, stop := context.WithCancel(r.Context())
	defer stop()
	go readPump(conn, stop)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			payload, err := json.Marshal(event)
			if err != nil {
				h.logger.WithError(err).Error("encode render event")
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		}
	}
}

// readPump drains client frames; a read error means the client is gone.
func readPump(conn *websocket.Conn, stop context.CancelFunc) {
	defer stop()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// ServeSSE provides a Server-Sent Events endpoint for render events.
func (h *BroadcastHook) ServeSSE(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	events, cancel := h.Subscribe()
	defer cancel()

	flusher, _ := w.(http.Flusher)
	if flusher != nil {
		flusher.Flush()
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := WriteSSE(w, event); err != nil {
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
	}
}

// WriteSSE writes event as a single "data:" frame.
func WriteSSE(w interface{ Write([]byte) (int, error) }, event RenderEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	frame := make([]byte, 0, len(payload)+8)
	frame = append(frame, "data: "...)
	frame = append(frame, payload...)
	frame = append(frame, '\n', '\n')
	_, err = w.Write(frame)
	return err
}
