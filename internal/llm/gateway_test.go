package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

func testOptions(baseURL string) Options {
	return Options{
		APIKey:      "test-key",
		BaseURL:     baseURL,
		Model:       "test-model",
		MaxTokens:   256,
		TokenBudget: 3000,
		Timeout:     5 * time.Second,
	}
}

func testFallback(message string) string {
	return "fallback for: " + message
}

func TestGateway_NoAPIKey(t *testing.T) {
	opts := testOptions("http://localhost:0")
	opts.APIKey = ""
	g := NewGateway(opts, testFallback, zap.NewNop())

	result := g.Complete(context.Background(), "search TIC 123456", nil)

	if result.Source != SourceFallback {
		t.Errorf("Expected fallback source, got %q", result.Source)
	}
	if !strings.Contains(result.Reason, "no completion API key") {
		t.Errorf("Expected missing-key reason, got %q", result.Reason)
	}
	if result.Text != "fallback for: search TIC 123456" {
		t.Errorf("Expected fallback text, got %q", result.Text)
	}
}

func TestGateway_RemoteSuccess(t *testing.T) {
	var gotReq ChatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(ChatResponse{
			ID: "cmpl-1",
			Choices: []Choice{
				{Message: &Message{Role: "assistant", Content: "remote answer"}},
			},
		})
	}))
	defer server.Close()

	g := NewGateway(testOptions(server.URL), testFallback, zap.NewNop())

	history := []Message{
		{Role: "user", Content: "earlier question"},
		{Role: "assistant", Content: "earlier answer"},
	}
	result := g.Complete(context.Background(), "next question", history)

	if result.Source != SourceRemote {
		t.Fatalf("Expected remote source, got %q (reason: %s)", result.Source, result.Reason)
	}
	if result.Text != "remote answer" {
		t.Errorf("Expected remote text, got %q", result.Text)
	}
	if result.Reason != "" {
		t.Errorf("Expected empty reason on success, got %q", result.Reason)
	}

	// System instruction first, user message last, history in between
	if len(gotReq.Messages) != 4 {
		t.Fatalf("Expected 4 messages on the wire, got %d", len(gotReq.Messages))
	}
	if gotReq.Messages[0].Role != "system" {
		t.Error("Expected the system instruction first")
	}
	if last := gotReq.Messages[len(gotReq.Messages)-1]; last.Role != "user" || last.Content != "next question" {
		t.Error("Expected the new user message last")
	}
	if gotReq.Model != "test-model" {
		t.Errorf("Expected configured model, got %q", gotReq.Model)
	}
}

func TestGateway_RemoteFailures(t *testing.T) {
	tests := []struct {
		name       string
		handler    http.HandlerFunc
		wantReason string
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, `{"error":"overloaded"}`, http.StatusInternalServerError)
			},
			wantReason: "status 500",
		},
		{
			name: "malformed payload",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("not json at all"))
			},
			wantReason: "malformed provider response",
		},
		{
			name: "empty choices",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(ChatResponse{ID: "cmpl-2"})
			},
			wantReason: "no completion content",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			g := NewGateway(testOptions(server.URL), testFallback, zap.NewNop())
			result := g.Complete(context.Background(), "question", nil)

			if result.Source != SourceFallback {
				t.Errorf("Expected fallback source, got %q", result.Source)
			}
			if !strings.Contains(result.Reason, tt.wantReason) {
				t.Errorf("Expected reason containing %q, got %q", tt.wantReason, result.Reason)
			}
			if result.Text != "fallback for: question" {
				t.Errorf("Expected fallback text, got %q", result.Text)
			}
		})
	}
}

func TestGateway_NetworkError(t *testing.T) {
	// Closed server: connection refused
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	g := NewGateway(testOptions(server.URL), testFallback, zap.NewNop())
	result := g.Complete(context.Background(), "question", nil)

	if result.Source != SourceFallback {
		t.Errorf("Expected fallback source on network error, got %q", result.Source)
	}
}

func TestGateway_TrimToBudget(t *testing.T) {
	opts := testOptions("http://localhost:0")
	opts.TokenBudget = 30
	g := NewGateway(opts, testFallback, zap.NewNop())
	if g.codec == nil {
		t.Skip("tokenizer unavailable")
	}

	long := strings.Repeat("periodogram analysis of stellar photometry ", 20)
	history := []Message{
		{Role: "user", Content: long},
		{Role: "assistant", Content: long},
		{Role: "user", Content: "recent short question"},
	}

	trimmed := g.trimToBudget(history)
	if len(trimmed) == len(history) {
		t.Error("Expected oldest turns to be dropped")
	}
	if len(trimmed) == 0 {
		t.Fatal("Expected the most recent turn to survive")
	}
	if trimmed[len(trimmed)-1].Content != "recent short question" {
		t.Error("Expected the newest message to be kept")
	}
}
