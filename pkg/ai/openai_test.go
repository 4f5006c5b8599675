package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lemur-ai/meeting-brain/pkg/config"
)

func TestChatCompletion_Success(t *testing.T) {
	// Mock OpenAI server
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("expected POST got %s", r.Method)
		}
		if r.URL.Path != "/v1/chat/completions" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		var payload ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("invalid payload: %v", err)
		}
		if len(payload.Messages) != 2 || payload.Messages[0].Role != "system" {
			t.Fatalf("expected system+user messages, got %+v", payload.Messages)
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "Generated summary."}},
			},
			"usage": map[string]int{"total_tokens": 42},
		})
	}))
	defer ts.Close()

	client := NewOpenAIClient(&config.OpenAIConfig{APIKey: "test-key", BaseURL: ts.URL})

	out, err := client.ChatCompletion(context.Background(), "You summarize meetings.", "Summarize this.", 1500, 0.7)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if out.Content != "Generated summary." {
		t.Fatalf("unexpected content %q", out.Content)
	}
	if out.TokensUsed != 42 {
		t.Fatalf("unexpected token count %d", out.TokensUsed)
	}
}

func TestChatCompletion_ServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	client := NewOpenAIClient(&config.OpenAIConfig{APIKey: "test-key", BaseURL: ts.URL})

	if _, err := client.ChatCompletion(context.Background(), "sys", "user", 100, 0.7); err == nil {
		t.Fatal("expected error on 500 response")
	}
}

func TestCreateEmbeddings_PreservesInputOrder(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/embeddings" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		var payload EmbeddingRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("invalid payload: %v", err)
		}
		// Return vectors out of order to exercise index-based reassembly
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]interface{}{
				{"index": 1, "embedding": []float32{0.2, 0.2}},
				{"index": 0, "embedding": []float32{0.1, 0.1}},
			},
		})
	}))
	defer ts.Close()

	client := NewOpenAIClient(&config.OpenAIConfig{APIKey: "test-key", BaseURL: ts.URL})

	vectors, err := client.CreateEmbeddings(context.Background(), []string{"first", "second"})
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if len(vectors) != 2 {
		t.Fatalf("expected 2 vectors, got %d", len(vectors))
	}
	if vectors[0][0] != 0.1 || vectors[1][0] != 0.2 {
		t.Fatalf("vectors not in input order: %v", vectors)
	}
}

func TestCreateEmbeddings_EmptyInput(t *testing.T) {
	client := NewOpenAIClient(&config.OpenAIConfig{APIKey: "test-key"})

	vectors, err := client.CreateEmbeddings(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vectors != nil {
		t.Fatalf("expected nil vectors, got %v", vectors)
	}
}
