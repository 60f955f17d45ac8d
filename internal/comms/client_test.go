package comms

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSendMessage(t *testing.T) {
	var got messageRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/subagents/message" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if err := client.SendMessage(context.Background(), "pixel", "found the bug"); err != nil {
		t.Fatalf("send message: %v", err)
	}
	if got.Sender != "pixel" {
		t.Errorf("expected sender pixel, got %q", got.Sender)
	}
	if got.Message != "found the bug" {
		t.Errorf("expected plain string message, got %v", got.Message)
	}
}

func TestSendStructuredMessage(t *testing.T) {
	var raw map[string]json.RawMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	msg := StructuredMessage{Type: "status", Content: "halfway done"}
	if err := client.SendMessage(context.Background(), "pixel", msg); err != nil {
		t.Fatalf("send message: %v", err)
	}

	var sent StructuredMessage
	if err := json.Unmarshal(raw["message"], &sent); err != nil {
		t.Fatalf("unmarshal message: %v", err)
	}
	if sent.Type != "status" || sent.Content != "halfway done" {
		t.Errorf("unexpected structured message: %+v", sent)
	}
}

func TestUnread(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/subagents/unread" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var req unreadRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if req.SubagentName != "pixel" {
			t.Errorf("expected subagent_name pixel, got %q", req.SubagentName)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"messages": []map[string]any{
				{"sender": "nova", "message": "ping", "created_at": "2026-02-11T10:00:00Z"},
				{"sender": "rex", "message": map[string]any{"type": "status", "content": "done"}, "created_at": "2026-02-11T10:01:00Z"},
			},
		})
	}))
	defer server.Close()

	client, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	messages, err := client.Unread(context.Background(), "pixel")
	if err != nil {
		t.Fatalf("unread: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	if messages[0].Sender != "nova" {
		t.Errorf("expected first sender nova, got %q", messages[0].Sender)
	}

	var plain string
	if err := json.Unmarshal(messages[0].Message, &plain); err != nil {
		t.Fatalf("first message should be a string: %v", err)
	}
	if plain != "ping" {
		t.Errorf("expected ping, got %q", plain)
	}

	var structured StructuredMessage
	if err := json.Unmarshal(messages[1].Message, &structured); err != nil {
		t.Fatalf("second message should be structured: %v", err)
	}
	if structured.Type != "status" || structured.Content != "done" {
		t.Errorf("unexpected structured message: %+v", structured)
	}
}

func TestRegisterAndInitialPrompt(t *testing.T) {
	mux := http.NewServeMux()
	var registered registerRequest
	var prompt initialPromptRequest
	mux.HandleFunc("/subagents/register", func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&registered); err != nil {
			t.Errorf("decode register: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/subagents/sess-1/pixel", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("expected PATCH, got %s", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&prompt); err != nil {
			t.Errorf("decode prompt: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if err := client.Register(context.Background(), "sess-1", "pixel", "general-purpose"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if registered.SessionID != "sess-1" || registered.Name != "pixel" || registered.SubagentType != "general-purpose" {
		t.Errorf("unexpected register payload: %+v", registered)
	}

	if err := client.SetInitialPrompt(context.Background(), "sess-1", "pixel", "review the parser"); err != nil {
		t.Fatalf("set initial prompt: %v", err)
	}
	if prompt.InitialPrompt != "review the parser" {
		t.Errorf("unexpected prompt payload: %+v", prompt)
	}
}

func TestUpdateCompletionFillsDefaults(t *testing.T) {
	var raw map[string]json.RawMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/subagents/update-completion" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	err = client.UpdateCompletion(context.Background(), CompletionUpdate{
		SessionID: "sess-1",
		Name:      "pixel",
		Status:    "completed",
	})
	if err != nil {
		t.Fatalf("update completion: %v", err)
	}

	if string(raw["completed_at"]) != "null" {
		t.Errorf("expected completed_at null, got %s", raw["completed_at"])
	}
	if string(raw["completion_metadata"]) != "{}" {
		t.Errorf("expected empty metadata object, got %s", raw["completion_metadata"])
	}
	if string(raw["tool_calls"]) != "[]" {
		t.Errorf("expected empty tool_calls array, got %s", raw["tool_calls"])
	}
	if string(raw["final_response"]) != `""` {
		t.Errorf("expected empty final_response, got %s", raw["final_response"])
	}
}

func TestUpdateCompletionNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "not_found", "message": "no such subagent"})
	}))
	defer server.Close()

	client, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	err = client.UpdateCompletion(context.Background(), CompletionUpdate{SessionID: "sess-x", Name: "ghost", Status: "completed"})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusNotFound {
		t.Errorf("expected 404, got %d", apiErr.Status)
	}
	if apiErr.Code != "not_found" || apiErr.Message != "no such subagent" {
		t.Errorf("unexpected error detail: %+v", apiErr)
	}
}

func TestAPIErrorPlainBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("something broke\n"))
	}))
	defer server.Close()

	client, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	err = client.SendMessage(context.Background(), "pixel", "hello")

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", apiErr.Status)
	}
	if apiErr.Message != "something broke" {
		t.Errorf("expected trimmed body as message, got %q", apiErr.Message)
	}
}

func TestNormalizeBaseURL(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "plain", input: "http://localhost:4000", want: "http://localhost:4000"},
		{name: "trailing slash", input: "http://localhost:4000/", want: "http://localhost:4000"},
		{name: "whitespace", input: "  https://comms.example.com  ", want: "https://comms.example.com"},
		{name: "empty", input: "", wantErr: true},
		{name: "missing scheme", input: "localhost:4000", wantErr: true},
		{name: "bare path", input: "/subagents", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizeBaseURL(tc.input)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tc.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("normalize %q: %v", tc.input, err)
			}
			if got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}
