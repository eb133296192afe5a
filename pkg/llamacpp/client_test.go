package llamacpp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestServer(t *testing.T, reply string, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != chatCompletionsPath {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if req.Model != "test-model" || len(req.Messages) != 1 {
			t.Errorf("unexpected request %+v", req)
		}
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(ChatCompletionResponse{
			Choices: []Choice{{Message: Message{Role: "assistant", Content: reply}}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestAnalyzeImage(t *testing.T) {
	reply := "```json\n{\"mouth\":{\"found\":true,\"confidence\":0.9,\"box\":{\"x\":0.4,\"y\":0.6,\"w\":0.2,\"h\":0.1}}}\n```"
	srv := newTestServer(t, reply, http.StatusOK)

	c, err := NewClient(srv.URL + "/")
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	result, err := c.AnalyzeImage(context.Background(), "test-model", "find the mouth", "aGVsbG8=")
	if err != nil {
		t.Fatalf("AnalyzeImage failed: %v", err)
	}
	if !result.Mouth.Found || result.Mouth.Box.X != 0.4 {
		t.Errorf("unexpected result %+v", result.Mouth)
	}
}

func TestSimpleQuery(t *testing.T) {
	srv := newTestServer(t, "a person smiling", http.StatusOK)
	c, _ := NewClient(srv.URL)

	text, err := c.SimpleQuery(context.Background(), "test-model", "describe", "")
	if err != nil {
		t.Fatalf("SimpleQuery failed: %v", err)
	}
	if text != "a person smiling" {
		t.Errorf("Expected reply text, got %q", text)
	}
}

func TestServerError(t *testing.T) {
	srv := newTestServer(t, "", http.StatusInternalServerError)
	c, _ := NewClient(srv.URL)

	_, err := c.AnalyzeImage(context.Background(), "test-model", "find the mouth", "")
	if err == nil || !strings.Contains(err.Error(), "status 500") {
		t.Errorf("Expected status error, got %v", err)
	}
}

func TestMessageText(t *testing.T) {
	parts := []interface{}{
		map[string]interface{}{"type": "text", "text": ""},
		map[string]interface{}{"type": "text", "text": "second"},
	}
	if got := messageText(parts); got != "second" {
		t.Errorf("Expected first non-empty text part, got %q", got)
	}
	if got := messageText(42); got != "" {
		t.Errorf("Expected empty text for unknown content, got %q", got)
	}
}
