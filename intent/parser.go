// Package intent turns free text into a structured command intent using an
// OpenAI-compatible chat completion API.
package intent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/bluefunda/backlogr/types"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"go.uber.org/zap"
)

const (
	DefaultModel = "gpt-4o-mini"
	temperature  = 0.3
)

var (
	ErrNotConfigured   = errors.New("OpenAI is not configured")
	ErrNotUnderstood   = errors.New("could not understand the command")
	ErrEmptyCompletion = errors.New("empty response from OpenAI")
)

// Parser converts user text to an intent
type Parser interface {
	Parse(ctx context.Context, text string) (types.Intent, error)
}

// Config holds the chat completion settings
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
}

// OpenAIParser asks a chat model to classify the text against the command catalog
type OpenAIParser struct {
	client       openai.Client
	model        string
	configured   bool
	systemPrompt string
	logger       *zap.Logger
}

// NewOpenAIParser builds a parser. Extra request options are applied after the
// ones derived from config.
func NewOpenAIParser(config Config, logger *zap.Logger, opts ...option.RequestOption) *OpenAIParser {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.Model == "" {
		config.Model = DefaultModel
	}

	requestOpts := []option.RequestOption{option.WithAPIKey(config.APIKey)}
	if config.BaseURL != "" {
		requestOpts = append(requestOpts, option.WithBaseURL(config.BaseURL))
	}
	requestOpts = append(requestOpts, opts...)

	return &OpenAIParser{
		client:       openai.NewClient(requestOpts...),
		model:        config.Model,
		configured:   strings.TrimSpace(config.APIKey) != "",
		systemPrompt: SystemPrompt(types.Commands),
		logger:       logger.With(zap.String("component", "intent_parser")),
	}
}

// IsConfigured reports whether an API key was supplied
func (p *OpenAIParser) IsConfigured() bool {
	return p.configured
}

type completion struct {
	Type   types.EntityType       `json:"type"`
	Action types.Action           `json:"action"`
	Params map[string]interface{} `json:"params"`
	Error  string                 `json:"error"`
}

// Parse sends text to the model and decodes its JSON answer
func (p *OpenAIParser) Parse(ctx context.Context, text string) (types.Intent, error) {
	if !p.configured {
		return types.Intent{}, ErrNotConfigured
	}

	text = strings.TrimSpace(text)
	p.logger.Debug("Parsing command", zap.String("model", p.model), zap.Int("text_length", len(text)))

	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(p.systemPrompt),
			openai.UserMessage(text),
		},
		Temperature: openai.Float(temperature),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	})
	if err != nil {
		return types.Intent{}, fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return types.Intent{}, ErrEmptyCompletion
	}

	return decodeCompletion(resp.Choices[0].Message.Content, text)
}

func decodeCompletion(content, text string) (types.Intent, error) {
	var c completion
	if err := json.Unmarshal([]byte(content), &c); err != nil {
		return types.Intent{}, fmt.Errorf("failed to decode completion: %w", err)
	}
	if c.Error != "" {
		return types.Intent{}, fmt.Errorf("%w: %s", ErrNotUnderstood, c.Error)
	}
	if c.Type == "" || c.Action == "" {
		return types.Intent{}, ErrNotUnderstood
	}
	if c.Params == nil {
		c.Params = map[string]interface{}{}
	}

	return types.Intent{
		Type:    c.Type,
		Action:  c.Action,
		Params:  c.Params,
		RawText: text,
	}, nil
}

// SystemPrompt describes every command in commands to the model
func SystemPrompt(commands []types.CommandSpec) string {
	var b strings.Builder

	b.WriteString("You are an assistant that helps users interact with the Backlog API.\n")
	b.WriteString("Extract a structured command from the user's message and respond with a JSON object.\n\n")
	b.WriteString("Available commands (type:action):\n")

	var current types.EntityType
	for _, c := range commands {
		if c.Type != current {
			current = c.Type
			fmt.Fprintf(&b, "\n%s\n", current)
		}
		fmt.Fprintf(&b, "  - %s:%s - %s", c.Type, c.Action, c.Description)
		if len(c.Required) > 0 {
			fmt.Fprintf(&b, " (requires %s)", strings.Join(c.Required, ", "))
		}
		if len(c.Optional) > 0 {
			fmt.Fprintf(&b, " (optional: %s)", strings.Join(c.Optional, ", "))
		}
		b.WriteString("\n")
	}

	b.WriteString(`
Examples:
"show me all projects" -> {"type": "projects", "action": "list", "params": {}}
"show project ABC" -> {"type": "projects", "action": "get", "params": {"projectIdOrKey": "ABC"}}
"create issue in project DEF with title 'Fix login bug'" -> {"type": "issues", "action": "create", "params": {"projectIdOrKey": "DEF", "summary": "Fix login bug"}}
"show wiki page with ID 123" -> {"type": "wikis", "action": "get", "params": {"wikiId": "123"}}

If you cannot extract a valid command, respond with {"error": "Could not understand the command"}.
Extract every relevant parameter from the user's message.
`)

	return b.String()
}
