// Package llm provides the model gateway client, prompt builder and
// response normalizer for email analysis.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"

	"mailmaestro/pkg/logger"
)

// ResponseMode selects how the provider shapes the analysis response.
type ResponseMode string

const (
	// ModeJSON asks for a free-text completion in JSON object mode; the
	// caller must extract JSON from the text (fences possible).
	ModeJSON ResponseMode = "json"
	// ModeTools uses function calling; the provider validates against the
	// declared schema and returns pre-shaped arguments.
	ModeTools ResponseMode = "tools"
)

const DefaultModel = "gpt-4o-mini"

var ErrAPIKeyMissing = errors.New("llm: API key not configured")

// ClientConfig holds gateway client configuration.
type ClientConfig struct {
	APIKey      string
	Model       string
	Mode        ResponseMode
	MaxTokens   int
	Temperature float64
}

// Client implements out.ModelGateway against the OpenAI chat completion API.
// One client is constructed per invocation scope and passed to the
// orchestrator; there is no process-wide instance.
type Client struct {
	client      *openai.Client
	model       string
	mode        ResponseMode
	maxTokens   int
	temperature float32
	cb          *gobreaker.CircuitBreaker
}

// NewClient creates a gateway client. A missing API key is a configuration
// error raised here, before any request is attempted.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrAPIKeyMissing
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	mode := cfg.Mode
	if mode == "" {
		mode = ModeJSON
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 2048
	}
	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.3
	}

	cbSettings := gobreaker.Settings{
		Name:        "model-gateway",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.ConsecutiveFailures > 5 ||
				(counts.Requests >= 10 && failureRatio >= 0.6)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(map[string]any{
				"breaker": name, "from": from.String(), "to": to.String(),
			}).Warn("circuit breaker state changed")
		},
	}

	return &Client{
		client:      openai.NewClient(cfg.APIKey),
		model:       model,
		mode:        mode,
		maxTokens:   maxTokens,
		temperature: float32(temperature),
		cb:          gobreaker.NewCircuitBreaker(cbSettings),
	}, nil
}

// Structured reports whether responses are pre-shaped function arguments.
func (c *Client) Structured() bool {
	return c.mode == ModeTools
}

// Analyze sends the analysis prompt for a single email. No retry; a non-2xx
// provider status (or an open breaker) surfaces as an error for the caller
// to absorb into the failure-default record.
func (c *Client) Analyze(ctx context.Context, prompt string) (string, error) {
	raw, err := c.cb.Execute(func() (interface{}, error) {
		if c.mode == ModeTools {
			return c.analyzeWithTools(ctx, prompt)
		}
		return c.analyzeJSON(ctx, prompt)
	})
	if err != nil {
		return "", err
	}
	return raw.(string), nil
}

func (c *Client) analyzeJSON(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: analysisSystemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from model")
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *Client) analyzeWithTools(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: analysisSystemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Tools: []openai.Tool{
			{
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionDefinition{
					Name:        "record_email_analysis",
					Description: "Record the structured analysis of an email",
					Parameters:  json.RawMessage(analysisToolSchema),
				},
			},
		},
		ToolChoice: openai.ToolChoice{
			Type:     openai.ToolTypeFunction,
			Function: openai.ToolFunction{Name: "record_email_analysis"},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from model")
	}

	choice := resp.Choices[0]
	if len(choice.Message.ToolCalls) == 0 {
		// Model answered in text despite the forced tool; hand the content
		// to the normalizer as-is.
		return choice.Message.Content, nil
	}
	return choice.Message.ToolCalls[0].Function.Arguments, nil
}

// analysisToolSchema is the JSON-schema declaration for the function-calling
// variant. It mirrors the output format described in the prompt.
const analysisToolSchema = `{
  "type": "object",
  "properties": {
    "summary": {"type": "string", "description": "2-3 sentence summary"},
    "category": {"type": "string", "enum": ["work", "personal", "finance", "shopping", "travel", "social", "promotions", "newsletters", "uncategorized"]},
    "priority": {"type": "string", "enum": ["urgent", "high", "medium", "low", "lowest"]},
    "sentiment": {"type": "string", "enum": ["positive", "neutral", "negative"]},
    "action_required": {"type": "boolean"},
    "confidence": {"type": "number", "minimum": 0, "maximum": 1},
    "key_points": {"type": "array", "items": {"type": "string"}},
    "tasks": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "title": {"type": "string"},
          "description": {"type": "string"},
          "due_date": {"type": "string"},
          "assignee": {"type": "string"},
          "urgency": {"type": "string", "enum": ["low", "medium", "high", "urgent"]}
        },
        "required": ["title"]
      }
    },
    "meeting": {
      "type": "object",
      "properties": {
        "title": {"type": "string"},
        "start_time": {"type": "string"},
        "end_time": {"type": "string"},
        "location": {"type": "string"},
        "attendees": {"type": "array", "items": {"type": "string"}}
      },
      "required": ["title"]
    }
  },
  "required": ["summary", "category", "priority", "sentiment", "action_required", "confidence"]
}`
