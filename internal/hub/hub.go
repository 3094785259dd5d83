// Package hub streams collection events to Server-Sent Events subscribers.
package hub

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

const (
	queueSize      = 256
	subscriberSize = 64
)

// named events get an "event:" line so browsers can addEventListener by type
type named interface {
	EventName() string
}

type subscriber struct {
	id     uint64
	frames chan []byte
}

// Hub fans published events out to every open event stream.
// The zero value is not usable; call New.
type Hub struct {
	logger    *zap.Logger
	keepalive time.Duration
	queue     chan interface{}
	nextID    atomic.Uint64

	mu     sync.Mutex
	subs   map[*subscriber]struct{}
	closed bool
}

// New creates a Hub. Run must be started before events are delivered.
func New(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		logger:    logger,
		keepalive: 30 * time.Second,
		queue:     make(chan interface{}, queueSize),
		subs:      make(map[*subscriber]struct{}),
	}
}

// Run delivers queued events until done is closed, then ends every stream
func (h *Hub) Run(done <-chan struct{}) {
	for {
		select {
		case <-done:
			h.shutdown()
			return
		case event := <-h.queue:
			h.deliver(event)
		}
	}
}

// Broadcast queues an event for delivery. A full queue drops the event.
func (h *Hub) Broadcast(event interface{}) {
	select {
	case h.queue <- event:
	default:
		h.logger.Warn("event queue full, dropping event")
	}
}

// Subscribers returns the number of open event streams
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *Hub) deliver(event interface{}) {
	frame, err := encodeFrame(event)
	if err != nil {
		h.logger.Warn("failed to encode event", zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for s := range h.subs {
		select {
		case s.frames <- frame:
		default:
			h.logger.Debug("event stream lagging, frame dropped", zap.Uint64("subscriber", s.id))
		}
	}
}

func (h *Hub) subscribe() (*subscriber, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, false
	}
	s := &subscriber{id: h.nextID.Add(1), frames: make(chan []byte, subscriberSize)}
	h.subs[s] = struct{}{}
	h.logger.Debug("event stream opened", zap.Uint64("subscriber", s.id), zap.Int("total", len(h.subs)))
	return s, true
}

func (h *Hub) unsubscribe(s *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[s]; !ok {
		return
	}
	delete(h.subs, s)
	close(s.frames)
	h.logger.Debug("event stream closed", zap.Uint64("subscriber", s.id), zap.Int("total", len(h.subs)))
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for s := range h.subs {
		delete(h.subs, s)
		close(s.frames)
	}
}

func encodeFrame(event interface{}) ([]byte, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if n, ok := event.(named); ok && n.EventName() != "" {
		fmt.Fprintf(&buf, "event: %s\n", n.EventName())
	}
	fmt.Fprintf(&buf, "data: %s\n\n", data)
	return buf.Bytes(), nil
}

// ServeHTTP streams events to one client until it disconnects or the hub stops
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	s, ok := h.subscribe()
	if !ok {
		http.Error(w, "event stream closed", http.StatusServiceUnavailable)
		return
	}
	defer h.unsubscribe(s)

	header := w.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")

	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	ticker := time.NewTicker(h.keepalive)
	defer ticker.Stop()

	for {
		select {
		case frame, open := <-s.frames:
			if !open {
				return
			}
			if _, err := w.Write(frame); err != nil {
				return
			}
			flusher.Flush()
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}
