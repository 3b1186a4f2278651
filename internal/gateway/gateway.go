// Package gateway defines the completion gateway boundary and its
// OpenAI-compatible implementation. The orchestrator only sees the
// CompletionGateway interface.
package gateway

import (
	"context"

	"github.com/petrel-ai/attendant/internal/thread"
)

// Completion is a model-generated reply.
type Completion struct {
	Content string
}

// CompletionGateway produces a completion from an ordered context list. A
// nil completion or an error both signal gateway failure; the orchestrator
// substitutes a textual error reply and never propagates the failure.
type CompletionGateway interface {
	GetCompletion(ctx context.Context, messages []thread.Message) (*Completion, error)
}
