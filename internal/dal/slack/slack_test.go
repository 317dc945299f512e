package slack

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestPostMessage(t *testing.T) {
	var gotAuth, gotPath string
	var gotReq postMessageRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("Failed to decode request body: %v", err)
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	client := NewClient("xoxb-test", WithBaseURL(server.URL))

	blocks := []Block{
		NewHeaderBlock("Monthly Invoice"),
		NewDividerBlock(),
	}
	if err := client.PostMessage(context.Background(), "U123", blocks); err != nil {
		t.Fatalf("PostMessage() error = %v", err)
	}

	if gotAuth != "Bearer xoxb-test" {
		t.Errorf("Authorization header = %q, want %q", gotAuth, "Bearer xoxb-test")
	}
	if gotPath != "/chat.postMessage" {
		t.Errorf("Request path = %q, want %q", gotPath, "/chat.postMessage")
	}
	if gotReq.Channel != "U123" {
		t.Errorf("Channel = %q, want %q", gotReq.Channel, "U123")
	}
	if len(gotReq.Blocks) != 2 {
		t.Fatalf("Blocks = %d, want 2", len(gotReq.Blocks))
	}
	if gotReq.Blocks[0].Type != "header" || gotReq.Blocks[1].Type != "divider" {
		t.Errorf("Block types = %q, %q, want header, divider", gotReq.Blocks[0].Type, gotReq.Blocks[1].Type)
	}
}

func TestPostMessageStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient("xoxb-test", WithBaseURL(server.URL))

	err := client.PostMessage(context.Background(), "U123", nil)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("PostMessage() error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d, want %d", apiErr.StatusCode, http.StatusInternalServerError)
	}
}

func TestPostMessageNotOK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":false,"error":"channel_not_found"}`))
	}))
	defer server.Close()

	client := NewClient("xoxb-test", WithBaseURL(server.URL))

	err := client.PostMessage(context.Background(), "U123", nil)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("PostMessage() error = %v, want *APIError", err)
	}
	if apiErr.Reason != "channel_not_found" {
		t.Errorf("Reason = %q, want %q", apiErr.Reason, "channel_not_found")
	}
}

func TestEnabled(t *testing.T) {
	if NewClient("").Enabled() {
		t.Error("Enabled() = true for empty token, want false")
	}
	if !NewClient("xoxb-test").Enabled() {
		t.Error("Enabled() = false for set token, want true")
	}
}
