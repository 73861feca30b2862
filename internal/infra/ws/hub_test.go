//go:build !integration

// File: internal/infra/ws/hub_test.go
package ws

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

func testLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

func newTestClient(userID string) *Client {
	return &Client{userID: userID, send: make(chan Event, sendBuffer)}
}

func TestHub_RegisterPushUnregister(t *testing.T) {
	hub := NewHub(testLogger())

	c1 := newTestClient("user-1")
	c2 := newTestClient("user-1")
	other := newTestClient("user-2")
	hub.register(c1)
	hub.register(c2)
	hub.register(other)

	if got := hub.OpenChannels("user-1"); got != 2 {
		t.Fatalf("expected 2 channels for user-1, got %d", got)
	}

	hub.Push("user-1", "notification", map[string]string{"id": "n-1"})

	for i, c := range []*Client{c1, c2} {
		select {
		case ev := <-c.send:
			if ev.Event != "notification" {
				t.Errorf("client %d: expected event 'notification', got %q", i, ev.Event)
			}
		default:
			t.Errorf("client %d: expected a delivered event", i)
		}
	}
	select {
	case ev := <-other.send:
		t.Errorf("user-2 must not receive user-1 events, got %+v", ev)
	default:
	}

	hub.unregister(c1)
	if got := hub.OpenChannels("user-1"); got != 1 {
		t.Fatalf("expected 1 channel after unregister, got %d", got)
	}
	// Unregistering twice is a harmless no-op.
	hub.unregister(c1)

	hub.unregister(c2)
	hub.unregister(other)
	if got := hub.OpenChannels("user-1"); got != 0 {
		t.Fatalf("expected 0 channels, got %d", got)
	}
}

func TestHub_DropsSlowClient(t *testing.T) {
	hub := NewHub(testLogger())
	c := newTestClient("user-1")
	hub.register(c)

	// Fill the buffer without draining; the next push must evict the client.
	for i := 0; i < sendBuffer; i++ {
		hub.Push("user-1", "notification", i)
	}
	hub.Push("user-1", "notification", "overflow")

	if got := hub.OpenChannels("user-1"); got != 0 {
		t.Fatalf("expected the saturated client to be dropped, got %d channels", got)
	}
	// The send channel is closed as part of eviction.
	drained := 0
	for range c.send {
		drained++
	}
	if drained != sendBuffer {
		t.Errorf("expected %d buffered events, got %d", sendBuffer, drained)
	}
}

func TestServe_EndToEnd(t *testing.T) {
	hub := NewHub(testLogger())
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		Serve(hub, testLogger(), w, r, "user-1")
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	waitChannels(t, hub, "user-1", 1)

	hub.Push("user-1", "notification", map[string]string{"id": "n-1"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var ev struct {
		Event   string            `json:"event"`
		Payload map[string]string `json:"payload"`
	}
	if err := json.Unmarshal(msg, &ev); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if ev.Event != "notification" || ev.Payload["id"] != "n-1" {
		t.Errorf("unexpected frame %s", msg)
	}

	conn.Close()
	waitChannels(t, hub, "user-1", 0)
}

func waitChannels(t *testing.T, hub *Hub, userID string, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.OpenChannels(userID) == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expected %d open channels for %s, got %d", want, userID, hub.OpenChannels(userID))
}
