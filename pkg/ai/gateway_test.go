package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Anajrajeev/AutoScrum/pkg/domain"
	"github.com/Anajrajeev/AutoScrum/pkg/domain/ai"
)

type scriptedProvider struct {
	responses []string
	errs      []error
	calls     int
}

func (p *scriptedProvider) ID() string { return "scripted" }

func (p *scriptedProvider) Complete(ctx context.Context, req ai.CompletionRequest) (*ai.CompletionResponse, error) {
	i := p.calls
	p.calls++
	if i < len(p.errs) && p.errs[i] != nil {
		return nil, p.errs[i]
	}
	text := ""
	if i < len(p.responses) {
		text = p.responses[i]
	}
	return &ai.CompletionResponse{Text: text, Model: "test"}, nil
}

const storiesSchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "required": ["title"],
    "properties": {
      "title": {"type": "string"}
    }
  }
}`

func TestGateway_Complete_ValidPayload(t *testing.T) {
	p := &scriptedProvider{responses: []string{"```json\n[{\"title\": \"Login form\"}]\n```"}}
	g := NewGateway(p, nil)

	raw, err := g.Complete(context.Background(), "stories", StructuredRequest{
		Prompt: "generate",
		Schema: storiesSchema,
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if string(raw) != `[{"title": "Login form"}]` {
		t.Fatalf("unexpected payload: %s", raw)
	}
}

func TestGateway_Complete_SchemaViolation(t *testing.T) {
	p := &scriptedProvider{responses: []string{`[{"name": "wrong field"}]`}}
	g := NewGateway(p, nil)

	_, err := g.Complete(context.Background(), "stories", StructuredRequest{Schema: storiesSchema})
	if !domain.IsMalformedOutput(err) {
		t.Fatalf("expected MalformedOutputError, got %v", err)
	}
}

func TestGateway_Complete_ProseOnly(t *testing.T) {
	p := &scriptedProvider{responses: []string{"Sorry, I cannot help with that."}}
	g := NewGateway(p, nil)

	_, err := g.Complete(context.Background(), "stories", StructuredRequest{Schema: storiesSchema})
	if !domain.IsMalformedOutput(err) {
		t.Fatalf("expected MalformedOutputError, got %v", err)
	}
}

func TestGateway_Complete_WrapsUnknownErrors(t *testing.T) {
	p := &scriptedProvider{errs: []error{errors.New("connection reset")}}
	g := NewGateway(p, nil)

	_, err := g.Complete(context.Background(), "stories", StructuredRequest{Schema: storiesSchema})
	if !domain.IsGatewayError(err) {
		t.Fatalf("expected GatewayError, got %v", err)
	}
	if !domain.IsTransient(err) {
		t.Fatal("unclassified transport errors should be treated as transient")
	}
}

func TestGateway_CompleteText(t *testing.T) {
	p := &scriptedProvider{responses: []string{"  What platforms must be supported?  "}}
	g := NewGateway(p, nil)

	text, err := g.CompleteText(context.Background(), "clarify", StructuredRequest{Prompt: "ask"})
	if err != nil {
		t.Fatalf("CompleteText failed: %v", err)
	}
	if text != "What platforms must be supported?" {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestResilientProvider_RetriesTransient(t *testing.T) {
	p := &scriptedProvider{
		errs:      []error{domain.NewGatewayError("complete", true, errors.New("503")), nil},
		responses: []string{"", "ok"},
	}
	r := NewResilientProvider(p, 5*time.Second)

	resp, err := r.Complete(context.Background(), ai.CompletionRequest{Prompt: "x"})
	if err != nil {
		t.Fatalf("expected recovery after retry, got %v", err)
	}
	if resp.Text != "ok" {
		t.Fatalf("unexpected response: %q", resp.Text)
	}
	if p.calls != 2 {
		t.Fatalf("expected 2 attempts, got %d", p.calls)
	}
}

func TestResilientProvider_DoesNotRetryPermanent(t *testing.T) {
	p := &scriptedProvider{
		errs: []error{domain.NewGatewayError("complete", false, errors.New("401 unauthorized"))},
	}
	r := NewResilientProvider(p, 5*time.Second)

	_, err := r.Complete(context.Background(), ai.CompletionRequest{Prompt: "x"})
	if err == nil {
		t.Fatal("expected error")
	}
	if domain.IsTransient(err) {
		t.Fatal("permanent error must not be reported transient")
	}
	if p.calls != 1 {
		t.Fatalf("permanent failure should not be retried, got %d attempts", p.calls)
	}
}

func TestExtractJSONPayload(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"fenced", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"bare fence", "```\n[1, 2]\n```", `[1, 2]`},
		{"surrounding prose", "Here you go:\n[{\"a\": 1}]\nHope that helps!", `[{"a": 1}]`},
		{"plain object", `{"a": 1}`, `{"a": 1}`},
		{"no json", "nothing here", "nothing here"},
		{"empty", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractJSONPayload(tt.in); got != tt.want {
				t.Errorf("ExtractJSONPayload(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
