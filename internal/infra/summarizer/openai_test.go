package summarizer

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

func newTestOpenAI(t *testing.T, handler http.HandlerFunc) *OpenAI {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	config := openai.DefaultConfig("test-key")
	config.BaseURL = server.URL + "/v1"

	return &OpenAI{
		client: openai.NewClientWithConfig(config),
		now:    func() time.Time { return time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC) },
	}
}

func completionResponse(content string) string {
	body, _ := json.Marshal(map[string]any{
		"id":     "chatcmpl-test",
		"object": "chat.completion",
		"model":  "gpt-3.5-turbo",
		"choices": []map[string]any{
			{
				"index":         0,
				"finish_reason": "stop",
				"message": map[string]any{
					"role":    "assistant",
					"content": content,
				},
			},
		},
	})
	return string(body)
}

func TestOpenAI_Summarize(t *testing.T) {
	items := sampleItems()

	t.Run("returns the completion content", func(t *testing.T) {
		var gotRequest struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
			MaxTokens int `json:"max_tokens"`
		}
		s := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(body, &gotRequest)
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, completionResponse("Daily summary text"))
		})

		summary, err := s.Summarize(context.Background(), items)
		if err != nil {
			t.Fatalf("Summarize() error = %v", err)
		}
		if summary != "Daily summary text" {
			t.Errorf("summary = %q, want completion content", summary)
		}

		if gotRequest.Model != "gpt-3.5-turbo" {
			t.Errorf("model = %q, want gpt-3.5-turbo", gotRequest.Model)
		}
		if gotRequest.MaxTokens != 1000 {
			t.Errorf("max_tokens = %d, want 1000", gotRequest.MaxTokens)
		}
		if len(gotRequest.Messages) != 2 {
			t.Fatalf("got %d messages, want system plus user", len(gotRequest.Messages))
		}
		if gotRequest.Messages[0].Role != "system" || gotRequest.Messages[0].Content != systemInstruction {
			t.Errorf("first message is not the curator instruction")
		}
		if gotRequest.Messages[1].Role != "user" {
			t.Errorf("second message role = %q, want user", gotRequest.Messages[1].Role)
		}
	})

	t.Run("returns NoNewsMessage for an empty batch without calling the API", func(t *testing.T) {
		s := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("empty batch must not reach the completion API")
		})

		summary, err := s.Summarize(context.Background(), nil)
		if err != nil {
			t.Fatalf("Summarize() error = %v", err)
		}
		if summary != NoNewsMessage {
			t.Errorf("summary = %q, want %q", summary, NoNewsMessage)
		}
	})

	t.Run("surfaces API failures as errors", func(t *testing.T) {
		s := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		if _, err := s.Summarize(context.Background(), items); err == nil {
			t.Error("expected an error when the completion API fails")
		}
	})

	t.Run("rejects responses without choices", func(t *testing.T) {
		s := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `{"id":"chatcmpl-test","object":"chat.completion","choices":[]}`)
		})

		if _, err := s.Summarize(context.Background(), items); err == nil {
			t.Error("expected an error for an empty choices array")
		}
	})
}
