// NMF Dashboard - Personalized New Music Friday Predictions
// Copyright 2026 Mike Strusz (MikeStrusz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MikeStrusz/nmf-dashboard

package websocket

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/MikeStrusz/nmf-dashboard/internal/logging"
)

//nolint:gochecknoinits // init ensures consistent logging for tests
func init() {
	logging.Init(logging.Config{
		Level:  "info",
		Format: "console",
		Output: io.Discard,
	})
}

// setupHub starts a hub under a cancelable context and stops it on cleanup
func setupHub(t *testing.T) *Hub {
	t.Helper()

	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = hub.RunWithContext(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Error("hub did not stop within timeout")
		}
	})

	time.Sleep(10 * time.Millisecond)
	return hub
}

// createTestClient creates a client without a real websocket connection.
// Hub-level tests only exercise the send channel.
func createTestClient(hub *Hub) *Client {
	return NewClient(hub, nil)
}

// registerClient registers a client and waits for registration to complete
func registerClient(hub *Hub, client *Client) {
	hub.Register <- client
	time.Sleep(20 * time.Millisecond)
}

func TestNewHub(t *testing.T) {
	hub := NewHub()

	if hub == nil {
		t.Fatal("NewHub returned nil")
	}

	checks := []struct {
		name   string
		check  bool
		errMsg string
	}{
		{"clients map", hub.clients != nil, "clients map not initialized"},
		{"broadcast channel", hub.broadcast != nil, "broadcast channel not initialized"},
		{"Register channel", hub.Register != nil, "Register channel not initialized"},
		{"Unregister channel", hub.Unregister != nil, "Unregister channel not initialized"},
		{"empty clients", len(hub.clients) == 0, "clients map should be empty"},
	}

	for _, c := range checks {
		if !c.check {
			t.Error(c.errMsg)
		}
	}
}

func TestHub_RegisterUnregister(t *testing.T) {
	hub := setupHub(t)

	client := createTestClient(hub)
	registerClient(hub, client)

	if got := hub.GetClientCount(); got != 1 {
		t.Fatalf("expected 1 client after register, got %d", got)
	}

	hub.Unregister <- client
	time.Sleep(20 * time.Millisecond)

	if got := hub.GetClientCount(); got != 0 {
		t.Fatalf("expected 0 clients after unregister, got %d", got)
	}

	// Unregistering the hub must close the client's send channel
	select {
	case _, ok := <-client.send:
		if ok {
			t.Error("expected send channel to be closed, got a message")
		}
	case <-time.After(time.Second):
		t.Error("send channel was not closed")
	}
}

func TestHub_BroadcastJSONDeliversToAllClients(t *testing.T) {
	hub := setupHub(t)

	clients := []*Client{createTestClient(hub), createTestClient(hub), createTestClient(hub)}
	for _, c := range clients {
		registerClient(hub, c)
	}

	hub.BroadcastJSON("predictions.imported", map[string]interface{}{"week_of": "2026-08-21"})
	time.Sleep(20 * time.Millisecond)

	for i, c := range clients {
		select {
		case msg := <-c.send:
			if msg.Type != "predictions.imported" {
				t.Errorf("client %d: expected type predictions.imported, got %q", i, msg.Type)
			}
		case <-time.After(time.Second):
			t.Errorf("client %d did not receive broadcast", i)
		}
	}
}

func TestHub_BroadcastParsesEnvelope(t *testing.T) {
	hub := setupHub(t)

	client := createTestClient(hub)
	registerClient(hub, client)

	payload := map[string]string{"artist": "Lucy Dacus", "album": "Forever Is A Feeling", "verdict": "like"}
	raw, err := json.Marshal(map[string]interface{}{"topic": "feedback.saved", "payload": payload})
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}

	hub.Broadcast(raw)

	select {
	case msg := <-client.send:
		if msg.Type != "feedback.saved" {
			t.Errorf("expected type feedback.saved, got %q", msg.Type)
		}
		rawPayload, ok := msg.Data.(json.RawMessage)
		if !ok {
			t.Fatalf("expected payload to be json.RawMessage, got %T", msg.Data)
		}
		var decoded map[string]string
		if err := json.Unmarshal(rawPayload, &decoded); err != nil {
			t.Fatalf("unmarshal payload: %v", err)
		}
		if decoded["artist"] != "Lucy Dacus" {
			t.Errorf("expected artist Lucy Dacus, got %q", decoded["artist"])
		}
	case <-time.After(time.Second):
		t.Fatal("client did not receive event broadcast")
	}
}

func TestHub_BroadcastIgnoresMalformedEnvelope(t *testing.T) {
	hub := setupHub(t)

	client := createTestClient(hub)
	registerClient(hub, client)

	hub.Broadcast([]byte("{not json"))
	time.Sleep(20 * time.Millisecond)

	select {
	case msg := <-client.send:
		t.Fatalf("expected no message for malformed envelope, got %+v", msg)
	default:
	}
}

func TestHub_SlowClientIsDropped(t *testing.T) {
	hub := setupHub(t)

	// Slow client has no send buffer, so delivery immediately fails
	slow := &Client{id: clientIDCounter.Add(1), hub: hub, send: make(chan Message)}
	healthy := createTestClient(hub)
	registerClient(hub, slow)
	registerClient(hub, healthy)

	hub.BroadcastJSON("album.nuked", map[string]string{"album": "Live at Red Rocks (Deluxe)"})
	time.Sleep(20 * time.Millisecond)

	if got := hub.GetClientCount(); got != 1 {
		t.Fatalf("expected slow client to be dropped, got %d clients", got)
	}

	select {
	case msg := <-healthy.send:
		if msg.Type != "album.nuked" {
			t.Errorf("expected type album.nuked, got %q", msg.Type)
		}
	case <-time.After(time.Second):
		t.Error("healthy client did not receive broadcast")
	}
}

func TestHub_RunWithContextShutdownClosesClients(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- hub.RunWithContext(ctx)
	}()
	time.Sleep(10 * time.Millisecond)

	client := createTestClient(hub)
	registerClient(hub, client)

	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("hub did not stop after context cancellation")
	}

	if got := hub.GetClientCount(); got != 0 {
		t.Errorf("expected all clients closed at shutdown, got %d", got)
	}

	select {
	case _, ok := <-client.send:
		if ok {
			t.Error("expected send channel closed at shutdown")
		}
	case <-time.After(time.Second):
		t.Error("send channel was not closed at shutdown")
	}
}

func TestGetShutdownReason(t *testing.T) {
	tests := []struct {
		name string
		ctx  func() context.Context
		want ShutdownReason
	}{
		{
			name: "canceled",
			ctx: func() context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			},
			want: ShutdownReasonContextCanceled,
		},
		{
			name: "deadline exceeded",
			ctx: func() context.Context {
				ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
				defer cancel()
				return ctx
			},
			want: ShutdownReasonContextDeadline,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := getShutdownReason(tt.ctx()); got != tt.want {
				t.Errorf("getShutdownReason() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMarshalMessage(t *testing.T) {
	msg := Message{Type: "cover.updated", Data: map[string]string{"artist": "Wednesday"}}

	raw, err := MarshalMessage(msg)
	if err != nil {
		t.Fatalf("MarshalMessage: %v", err)
	}

	var decoded Message
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Type != "cover.updated" {
		t.Errorf("expected type cover.updated, got %q", decoded.Type)
	}
}
