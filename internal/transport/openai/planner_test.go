package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/nearby/internal/domain"
)

func chatServer(t *testing.T, message map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if tools, _ := req["tools"].([]any); len(tools) != 1 {
			t.Errorf("expected one tool, got %v", req["tools"])
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"model":   "test-model",
			"choices": []any{map[string]any{"index": 0, "message": message, "finish_reason": "tool_calls"}},
			"usage":   map[string]any{"prompt_tokens": 30, "completion_tokens": 10, "total_tokens": 40},
		})
	}))
}

func toolCallMessage(args string) map[string]any {
	return map[string]any{
		"role": "assistant",
		"tool_calls": []any{map[string]any{
			"id":       "call_1",
			"type":     "function",
			"function": map[string]any{"name": emitQueriesTool, "arguments": args},
		}},
	}
}

func newTestPlanner(url string) *Planner {
	return NewPlanner(&PlannerConfig{APIKey: "k", BaseURL: url, Model: "test-model", Logger: zap.NewNop()})
}

func TestPlanner_Plan(t *testing.T) {
	srv := chatServer(t, toolCallMessage(`{"queries":["vegan cafe","  brunch   spot ","Vegan Cafe","juice bar"]}`))
	defer srv.Close()

	got, err := newTestPlanner(srv.URL).Plan(context.Background(), "vegan breakfast", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0] != "vegan cafe" || got[1] != "brunch spot" {
		t.Errorf("unexpected phrases %v", got)
	}
}

func TestPlanner_ContentFallback(t *testing.T) {
	srv := chatServer(t, map[string]any{"role": "assistant", "content": `{"queries":["bakery"]}`})
	defer srv.Close()

	got, err := newTestPlanner(srv.URL).Plan(context.Background(), "bread", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0] != "bakery" {
		t.Errorf("unexpected phrases %v", got)
	}
}

func TestPlanner_UnparsableOutput(t *testing.T) {
	srv := chatServer(t, toolCallMessage(`not json`))
	defer srv.Close()

	_, err := newTestPlanner(srv.URL).Plan(context.Background(), "q", 3)
	if !errors.Is(err, domain.ErrPlannerOutput) {
		t.Errorf("expected ErrPlannerOutput, got %v", err)
	}
}

func TestPlanner_ZeroRequested(t *testing.T) {
	got, err := newTestPlanner("http://unused").Plan(context.Background(), "q", 0)
	if err != nil || got != nil {
		t.Errorf("expected no call and no phrases, got %v, %v", got, err)
	}
}

func TestParsePhrases(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		n       int
		want    int
		wantErr bool
	}{
		{"caps at n", `{"queries":["a","b","c"]}`, 2, 2, false},
		{"empty list", `{"queries":[]}`, 3, 0, true},
		{"blank entries", `{"queries":["  ",""]}`, 3, 0, true},
		{"wrong shape", `{"phrases":["a"]}`, 3, 0, true},
		{"not an object", `["a"]`, 3, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parsePhrases(tt.raw, tt.n)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parsePhrases() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, domain.ErrPlannerOutput) {
				t.Errorf("expected ErrPlannerOutput, got %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("got %d phrases, want %d", len(got), tt.want)
			}
		})
	}
}
