package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/Anajrajeev/AutoScrum/pkg/domain"
	"github.com/Anajrajeev/AutoScrum/pkg/domain/ai"
)

func TestNewProvider(t *testing.T) {
	tests := []struct {
		provider string
		wantID   string
		wantErr  bool
	}{
		{"ollama", "ollama:llama3", false},
		{"", "ollama:llama3", false},
		{"mock", "mock:", false},
		{"openai", "openai:gpt-4o", false},
		{"anthropic", "anthropic:claude-sonnet-4-20250514", false},
		{"unknown", "", true},
	}

	for _, tt := range tests {
		p, err := NewProvider(tt.provider, "")
		if tt.wantErr {
			if err == nil {
				t.Errorf("NewProvider(%q) should fail", tt.provider)
			}
			continue
		}
		if err != nil {
			t.Errorf("NewProvider(%q) failed: %v", tt.provider, err)
			continue
		}
		if p.ID() != tt.wantID {
			t.Errorf("NewProvider(%q).ID() = %q, want %q", tt.provider, p.ID(), tt.wantID)
		}
	}
}

func TestGetDefaultProvider_EnvOverride(t *testing.T) {
	t.Setenv("AUTOSCRUM_AI_PROVIDER", "mock")
	t.Setenv("AUTOSCRUM_AI_MODEL", "fast")

	p, err := GetDefaultProvider("ollama", "llama3")
	if err != nil {
		t.Fatalf("GetDefaultProvider failed: %v", err)
	}
	if p.ID() != "mock:fast" {
		t.Fatalf("env override not applied, got %s", p.ID())
	}
}

func TestStatusError_Classification(t *testing.T) {
	tests := []struct {
		code      int
		transient bool
	}{
		{http.StatusTooManyRequests, true},
		{http.StatusServiceUnavailable, true},
		{http.StatusInternalServerError, true},
		{http.StatusUnauthorized, false},
		{http.StatusBadRequest, false},
	}
	for _, tt := range tests {
		err := statusError("test", tt.code)
		if domain.IsTransient(err) != tt.transient {
			t.Errorf("status %d transient = %v, want %v", tt.code, !tt.transient, tt.transient)
		}
	}
}

func TestMockProvider_Shapes(t *testing.T) {
	p := &MockProvider{}

	clarify, err := p.Complete(context.Background(), ai.CompletionRequest{System: "You are a product analyst refining a feature request."})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	var clarifyOut struct {
		IsComplete bool `json:"is_complete"`
	}
	if err := json.Unmarshal([]byte(clarify.Text), &clarifyOut); err != nil {
		t.Fatalf("clarify output is not JSON: %v", err)
	}

	stories, err := p.Complete(context.Background(), ai.CompletionRequest{System: "You are an experienced scrum master."})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	var storiesOut struct {
		Stories []json.RawMessage `json:"stories"`
	}
	if err := json.Unmarshal([]byte(stories.Text), &storiesOut); err != nil {
		t.Fatalf("stories output is not JSON: %v", err)
	}
	if len(storiesOut.Stories) == 0 {
		t.Fatal("mock stories output should contain stories")
	}
}
