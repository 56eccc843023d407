package websocket

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

func startHub(t *testing.T, cfg *HubConfig) (*Hub, *httptest.Server) {
	t.Helper()

	hub := NewHub(cfg, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWebSocket))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, user, pass string) *websocket.Conn {
	t.Helper()

	header := http.Header{}
	if user != "" {
		creds := base64.StdEncoding.EncodeToString([]byte(user + ":" + pass))
		header.Set("Authorization", "Basic "+creds)
	}

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForClients(t *testing.T, hub *Hub, n int64) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.GetStats().ActiveConnections == n {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("Expected %d active clients, got %d", n, hub.GetStats().ActiveConnections)
}

func TestHandleWebSocketAuth(t *testing.T) {
	_, srv := startHub(t, &HubConfig{Username: "admin", Password: "secret"})
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	t.Run("MissingCredentials", func(t *testing.T) {
		_, resp, err := websocket.DefaultDialer.Dial(url, nil)
		if err == nil {
			t.Fatal("Expected handshake failure")
		}
		if resp == nil || resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %v", resp)
		}
	})

	t.Run("WrongPassword", func(t *testing.T) {
		header := http.Header{}
		header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte("admin:nope")))
		_, resp, err := websocket.DefaultDialer.Dial(url, header)
		if err == nil {
			t.Fatal("Expected handshake failure")
		}
		if resp == nil || resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %v", resp)
		}
	})

	t.Run("Valid", func(t *testing.T) {
		dial(t, srv, "admin", "secret")
	})
}

func TestBroadcastCorrection(t *testing.T) {
	hub, srv := startHub(t, &HubConfig{BroadcastCorrections: true, Username: "u", Password: "p"})
	conn := dial(t, srv, "u", "p")
	waitForClients(t, hub, 1)

	hub.BroadcastCorrection(CorrectionEvent{
		RequestID:       "req-1",
		InputLength:     13,
		SpellingChanges: 1,
		GrammarChanges:  2,
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var event struct {
		Type      EventType       `json:"type"`
		RequestID string          `json:"request_id"`
		Data      CorrectionEvent `json:"data"`
	}
	if err := conn.ReadJSON(&event); err != nil {
		t.Fatalf("ReadJSON failed: %v", err)
	}

	if event.Type != EventTypeCorrection || event.RequestID != "req-1" {
		t.Errorf("Unexpected event: %+v", event)
	}
	if event.Data.GrammarChanges != 2 || event.Data.InputLength != 13 {
		t.Errorf("Unexpected payload: %+v", event.Data)
	}
}

func TestBroadcastGating(t *testing.T) {
	hub := NewHub(&HubConfig{BroadcastCorrections: true}, zap.NewNop())

	hub.BroadcastRequest(RequestLogEvent{Path: "/api/correct"})
	if len(hub.broadcast) != 0 {
		t.Error("Request events are disabled and must not be queued")
	}

	hub.BroadcastCorrection(CorrectionEvent{})
	if len(hub.broadcast) != 1 {
		t.Error("Correction events should be queued")
	}

	if NewHub(nil, nil).shouldBroadcastEvent(EventTypeCorrection) {
		t.Error("Hub without config broadcasts nothing")
	}
}

func TestApplyEventFilter(t *testing.T) {
	tests := []struct {
		name   string
		filter EventFilter
		event  Event
		want   bool
	}{
		{"HealthExcluded", EventFilter{ExcludeHealth: true}, Event{Data: RequestLogEvent{Path: "/health"}}, false},
		{"APIKept", EventFilter{ExcludeHealth: true}, Event{Data: RequestLogEvent{Path: "/api/correct"}}, true},
		{"PrefixMiss", EventFilter{PathPrefixes: []string{"/api/"}}, Event{Data: RequestLogEvent{Path: "/info"}}, false},
		{"PrefixHit", EventFilter{PathPrefixes: []string{"/api/"}}, Event{Data: RequestLogEvent{Path: "/api/diff"}}, true},
		{"UnchangedDropped", EventFilter{OnlyChanged: true}, Event{Data: CorrectionEvent{}}, false},
		{"ChangedKept", EventFilter{OnlyChanged: true}, Event{Data: CorrectionEvent{SpellingChanges: 1}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter := tt.filter
			if got := applyEventFilter(&filter, tt.event); got != tt.want {
				t.Errorf("applyEventFilter() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestShouldSendToClient(t *testing.T) {
	client := &Client{Subscription: &SubscriptionRequest{Events: []EventType{EventTypeCorrection}}}

	if shouldSendToClient(client, Event{Type: EventTypeRequestLog}) {
		t.Error("Unsubscribed event type should be skipped")
	}
	if !shouldSendToClient(client, Event{Type: EventTypeCorrection, Data: CorrectionEvent{}}) {
		t.Error("Subscribed event type should be sent")
	}
	if !shouldSendToClient(&Client{}, Event{Type: EventTypeConnection}) {
		t.Error("Clients without subscription receive everything")
	}
}

func TestGetClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/ws", nil)
	r.RemoteAddr = "192.0.2.1:5555"
	if got := getClientIP(r); got != "192.0.2.1" {
		t.Errorf("Expected host from RemoteAddr, got %s", got)
	}

	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	if got := getClientIP(r); got != "203.0.113.7" {
		t.Errorf("Expected first forwarded address, got %s", got)
	}
}
