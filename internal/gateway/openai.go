package gateway

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/petrel-ai/attendant/internal/thread"
)

// OpenAI is a CompletionGateway speaking the OpenAI chat completions API.
// It works against any OpenAI-compatible endpoint via a custom base URL.
type OpenAI struct {
	client      openai.Client
	model       string
	temperature float64
}

// OpenAIConfig holds the adapter settings.
type OpenAIConfig struct {
	APIKey      string
	APIBase     string // optional OpenAI-compatible endpoint
	Model       string
	Temperature float64
}

// NewOpenAI creates the adapter.
func NewOpenAI(cfg OpenAIConfig) *OpenAI {
	var opts []option.RequestOption
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.APIBase != "" {
		opts = append(opts, option.WithBaseURL(cfg.APIBase))
	}

	model := cfg.Model
	if model == "" {
		model = openai.ChatModelGPT4oMini
	}

	return &OpenAI{
		client:      openai.NewClient(opts...),
		model:       model,
		temperature: cfg.Temperature,
	}
}

// GetCompletion sends the context list and returns the assistant reply.
func (o *OpenAI) GetCompletion(ctx context.Context, messages []thread.Message) (*Completion, error) {
	params := openai.ChatCompletionNewParams{
		Model:       o.model,
		Messages:    buildMessages(messages),
		Temperature: openai.Float(o.temperature),
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion: no choices returned")
	}
	return &Completion{Content: resp.Choices[0].Message.Content}, nil
}

func buildMessages(messages []thread.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case thread.RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case thread.RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}
