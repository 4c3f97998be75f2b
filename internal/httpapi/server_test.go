package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/lbianchi/adpilot/internal/config"
	"github.com/lbianchi/adpilot/internal/memory"
	"github.com/lbianchi/adpilot/internal/observability"
	"github.com/lbianchi/adpilot/internal/transport"
)

type echoHandler struct{}

func (echoHandler) HandleMessage(_ context.Context, userID, text string) []transport.Content {
	return []transport.Content{transport.Text("echo:" + userID + ":" + text)}
}

func newTestServer(t *testing.T) (*httptest.Server, *memory.InMemoryStore) {
	t.Helper()
	hub := transport.NewHub()
	archive := memory.NewInMemoryStore()
	metrics := observability.NewMetrics("test", prometheus.NewRegistry())
	srv := New(config.Config{}, echoHandler{}, archive, hub, metrics)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts, archive
}

func TestHandleMessageWebhook(t *testing.T) {
	ts, _ := newTestServer(t)

	body, _ := json.Marshal(map[string]string{"user_id": "u1", "text": "hello"})
	resp, err := http.Post(ts.URL+"/v1/messages", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST /v1/messages: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var out messageResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(out.Replies) != 1 || out.Replies[0].Text != "echo:u1:hello" {
		t.Fatalf("replies = %+v, want echoed text", out.Replies)
	}
}

func TestHandleMessageRejectsMissingUserID(t *testing.T) {
	ts, _ := newTestServer(t)

	body, _ := json.Marshal(map[string]string{"text": "hello"})
	resp, err := http.Post(ts.URL+"/v1/messages", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST /v1/messages: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestHealthAndReady(t *testing.T) {
	ts, _ := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("GET %s status = %d, want 200", path, resp.StatusCode)
		}
	}
}

func TestHistoryEndpoint(t *testing.T) {
	ts, archive := newTestServer(t)
	ctx := context.Background()

	for _, turn := range []memory.Turn{
		{UserID: "u1", Role: "user", Text: "hello"},
		{UserID: "u1", Role: "assistant", Text: "hi there"},
		{UserID: "u2", Role: "user", Text: "other user"},
	} {
		if err := archive.SaveTurn(ctx, turn); err != nil {
			t.Fatalf("SaveTurn: %v", err)
		}
	}

	resp, err := http.Get(ts.URL + "/v1/history?user_id=u1")
	if err != nil {
		t.Fatalf("GET /v1/history: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var out struct {
		Turns []memory.Turn `json:"turns"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(out.Turns) != 2 {
		t.Fatalf("turns = %d, want only u1's two turns", len(out.Turns))
	}
	if out.Turns[0].Text != "hello" || out.Turns[1].Text != "hi there" {
		t.Fatalf("turns = %+v, want chronological order", out.Turns)
	}
}

func TestHistoryRejectsBadRequests(t *testing.T) {
	ts, _ := newTestServer(t)

	for _, path := range []string{"/v1/history", "/v1/history?user_id=u1&limit=zero"} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("GET %s status = %d, want 400", path, resp.StatusCode)
		}
	}
}

func TestChatWSRoundTrip(t *testing.T) {
	ts, _ := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/v1/chat/ws?user_id=u1"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial ws: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(map[string]string{"text": "hi"}); err != nil {
		t.Fatalf("write: %v", err)
	}

	var got struct {
		UserID  string            `json:"user_id"`
		Content transport.Content `json:"content"`
	}
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.UserID != "u1" || got.Content.Text != "echo:u1:hi" {
		t.Fatalf("ws reply = %+v, want echoed text", got)
	}
}

func TestChatWSRequiresUserID(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/v1/chat/ws")
	if err != nil {
		t.Fatalf("GET /v1/chat/ws: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}
