package telemetry

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"block-party/server/logging"
)

func TestHubBroadcastsEventsToClients(t *testing.T) {
	t.Parallel()

	hub := NewHub(nil)
	server := httptest.NewServer(hub)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	event := logging.Event{
		Type:     "powerups.collected",
		Tick:     7,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryPowerUps,
	}
	if err := hub.Write(event); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	var received logging.Event
	if err := json.Unmarshal(data, &received); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if received.Type != event.Type || received.Tick != event.Tick {
		t.Fatalf("unexpected event on the wire: %+v", received)
	}
}

func TestHubDropsDisconnectedClients(t *testing.T) {
	t.Parallel()

	hub := NewHub(nil)
	server := httptest.NewServer(hub)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	conn.Close()

	deadline = time.Now().Add(2 * time.Second)
	for hub.ClientCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("disconnected client never dropped")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHubWriteWithNoClientsIsANoOp(t *testing.T) {
	t.Parallel()

	hub := NewHub(nil)
	if err := hub.Write(logging.Event{Type: "powerups.applied"}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}
