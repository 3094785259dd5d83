package hub

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type runEvent struct {
	Type string `json:"type"`
}

func (e runEvent) EventName() string { return e.Type }

func openStream(t *testing.T, url string) (*bufio.Reader, func()) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, ": connected\n", line)

	return reader, func() {
		resp.Body.Close()
		cancel()
	}
}

func nextFrame(t *testing.T, r *bufio.Reader) []string {
	t.Helper()
	var lines []string
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimSuffix(line, "\n")
		if line == "" {
			if len(lines) > 0 {
				return lines
			}
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}
		lines = append(lines, line)
	}
}

func TestHub_BroadcastToSubscriber(t *testing.T) {
	h := New(nil)
	done := make(chan struct{})
	defer close(done)
	go h.Run(done)

	srv := httptest.NewServer(h)
	defer srv.Close()

	reader, closeStream := openStream(t, srv.URL)
	defer closeStream()
	require.Eventually(t, func() bool { return h.Subscribers() == 1 }, time.Second, 5*time.Millisecond)

	h.Broadcast(map[string]int{"devices": 3})
	assert.Equal(t, []string{`data: {"devices":3}`}, nextFrame(t, reader))

	h.Broadcast(runEvent{Type: "snapshot_taken"})
	assert.Equal(t, []string{
		"event: snapshot_taken",
		`data: {"type":"snapshot_taken"}`,
	}, nextFrame(t, reader))
}

func TestHub_StopEndsStreams(t *testing.T) {
	h := New(nil)
	done := make(chan struct{})
	go h.Run(done)

	srv := httptest.NewServer(h)
	defer srv.Close()

	reader, closeStream := openStream(t, srv.URL)
	defer closeStream()
	require.Eventually(t, func() bool { return h.Subscribers() == 1 }, time.Second, 5*time.Millisecond)
	close(done)

	_, err := reader.ReadString(0)
	assert.Error(t, err)
	assert.Zero(t, h.Subscribers())

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestHub_DisconnectUnsubscribes(t *testing.T) {
	h := New(nil)
	done := make(chan struct{})
	defer close(done)
	go h.Run(done)

	srv := httptest.NewServer(h)
	defer srv.Close()

	_, closeStream := openStream(t, srv.URL)
	require.Eventually(t, func() bool { return h.Subscribers() == 1 }, time.Second, 5*time.Millisecond)
	closeStream()
	assert.Eventually(t, func() bool { return h.Subscribers() == 0 }, time.Second, 5*time.Millisecond)
}

func TestHub_QueueFullDropsEvents(t *testing.T) {
	h := New(nil)
	for i := 0; i < queueSize+50; i++ {
		h.Broadcast(i)
	}
	assert.Len(t, h.queue, queueSize)
}

func TestEncodeFrame(t *testing.T) {
	frame, err := encodeFrame(runEvent{})
	require.NoError(t, err)
	assert.Equal(t, "data: {\"type\":\"\"}\n\n", string(frame))

	_, err = encodeFrame(make(chan int))
	assert.Error(t, err)
}
