package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/Anajrajeev/AutoScrum/pkg/domain"
	"github.com/Anajrajeev/AutoScrum/pkg/domain/ai"
)

// StructuredRequest asks the model for JSON that conforms to Schema.
type StructuredRequest struct {
	System      string
	Prompt      string
	Schema      string
	Temperature float32
	MaxTokens   int
}

// Gateway turns free-form completions into validated JSON payloads.
// Schema mismatches are never retried; they surface as non-transient
// gateway errors so callers can fail the run with a useful message.
type Gateway struct {
	provider ai.Provider
	audit    domain.AuditLogger
}

func NewGateway(provider ai.Provider, audit domain.AuditLogger) *Gateway {
	return &Gateway{provider: provider, audit: audit}
}

func (g *Gateway) ProviderID() string {
	return g.provider.ID()
}

// Complete runs the prompt and returns the extracted, schema-validated JSON.
func (g *Gateway) Complete(ctx context.Context, op string, req StructuredRequest) (json.RawMessage, error) {
	resp, err := g.provider.Complete(ctx, ai.CompletionRequest{
		Prompt:      req.Prompt,
		System:      req.System,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		if domain.IsGatewayError(err) {
			return nil, err
		}
		return nil, domain.NewGatewayError(op, true, err)
	}

	cleanJSON := ExtractJSONPayload(resp.Text)

	if os.Getenv("AUTOSCRUM_AI_DEBUG") != "" {
		fmt.Fprintf(os.Stderr, "AI raw response: %s\n", resp.Text)
		fmt.Fprintf(os.Stderr, "AI extracted JSON: %s\n", cleanJSON)
	}

	if cleanJSON == "" {
		return nil, &domain.MalformedOutputError{Op: op, Reason: "empty completion"}
	}

	if req.Schema != "" {
		schemaLoader := gojsonschema.NewStringLoader(req.Schema)
		documentLoader := gojsonschema.NewStringLoader(cleanJSON)
		result, verr := gojsonschema.Validate(schemaLoader, documentLoader)
		if verr != nil {
			return nil, &domain.MalformedOutputError{Op: op, Reason: fmt.Sprintf("not valid JSON: %v", verr)}
		}
		if !result.Valid() {
			reasons := make([]string, 0, len(result.Errors()))
			for _, desc := range result.Errors() {
				reasons = append(reasons, desc.String())
			}
			return nil, &domain.MalformedOutputError{Op: op, Reason: "schema violation: " + strings.Join(reasons, "; ")}
		}
	} else if !json.Valid([]byte(cleanJSON)) {
		return nil, &domain.MalformedOutputError{Op: op, Reason: "not valid JSON"}
	}

	if g.audit != nil {
		_ = g.audit.Log("ai."+op, "gateway", map[string]interface{}{
			"provider":      g.provider.ID(),
			"model":         resp.Model,
			"input_tokens":  resp.Usage.InputTokens,
			"output_tokens": resp.Usage.OutputTokens,
		})
	}

	return json.RawMessage(cleanJSON), nil
}

// CompleteText runs the prompt and returns the trimmed plain-text answer,
// for dialogue turns where no structure is expected.
func (g *Gateway) CompleteText(ctx context.Context, op string, req StructuredRequest) (string, error) {
	resp, err := g.provider.Complete(ctx, ai.CompletionRequest{
		Prompt:      req.Prompt,
		System:      req.System,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		if domain.IsGatewayError(err) {
			return "", err
		}
		return "", domain.NewGatewayError(op, true, err)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", &domain.MalformedOutputError{Op: op, Reason: "empty completion"}
	}

	if g.audit != nil {
		_ = g.audit.Log("ai."+op, "gateway", map[string]interface{}{
			"provider":      g.provider.ID(),
			"model":         resp.Model,
			"input_tokens":  resp.Usage.InputTokens,
			"output_tokens": resp.Usage.OutputTokens,
		})
	}

	return text, nil
}

// ExtractJSONPayload strips markdown fences and surrounding prose so the
// first JSON array or object in the completion survives.
func ExtractJSONPayload(text string) string {
	clean := strings.TrimSpace(text)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	clean = strings.TrimSpace(clean)

	if clean == "" {
		return clean
	}

	// If the response includes extra text, attempt to extract the first JSON array/object.
	startArray := strings.Index(clean, "[")
	startObject := strings.Index(clean, "{")
	start := -1
	if startArray == -1 {
		start = startObject
	} else if startObject == -1 || startArray < startObject {
		start = startArray
	} else {
		start = startObject
	}
	if start == -1 {
		return clean
	}

	endArray := strings.LastIndex(clean, "]")
	endObject := strings.LastIndex(clean, "}")
	end := -1
	if endArray == -1 {
		end = endObject
	} else if endObject == -1 || endArray > endObject {
		end = endArray
	} else {
		end = endObject
	}
	if end == -1 || end <= start {
		return clean
	}

	return strings.TrimSpace(clean[start : end+1])
}
