// Package extension defines the capability contracts that pluggable
// extensions implement, the registry the orchestrator reads them from, and
// the platform filter. Each extension implements exactly one capability.
package extension

import (
	"context"

	"github.com/petrel-ai/attendant/internal/thread"
)

// Reply is a single structured reply fragment returned to a platform
// adapter. Most replies are plain text; adapters that can render richer
// content can interpret other types.
type Reply struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// TextReply builds a plain text reply.
func TextReply(content string) Reply {
	return Reply{Type: "text", Content: content}
}

// Extension is the common contract: an extension declares the platforms it
// applies to. An empty set means the extension applies to every platform.
type Extension interface {
	Platforms() []string
}

// CommandProcessor intercepts chat messages that exactly match one of its
// commands, short-circuiting the rest of the pipeline.
type CommandProcessor interface {
	Extension
	Commands() []string
	Process(ctx context.Context, message, roomID, userID string) ([]Reply, error)
}

// ConversationalTrigger reacts to assistant responses out of band. Its
// context entries are included in the completion primer so the model knows
// about the trigger phrases.
type ConversationalTrigger interface {
	Extension
	Triggers() []string
	GetContext(userID string) []thread.Message
	Process(ctx context.Context, message, role, roomID, userID string) error
}

// Context contributes system-role primer entries to every completion.
type Context interface {
	Extension
	GetContext(userID string) []thread.Message
}

// MessageHandler processes inbound events of a declared message type
// (text, audio, image, ...) on behalf of platform adapters.
type MessageHandler interface {
	Extension
	MessageTypes() []string
	Handle(ctx context.Context, platform, roomID, sender, message string, msgContext []string) ([]Reply, error)
}

// RetrievalAugmentation enriches a user message with retrieved context
// fragments. Fragments may be cached under CacheKey between turns.
type RetrievalAugmentation interface {
	Extension
	CacheKey() string
	Retrieve(ctx context.Context, sender, message string, t *thread.Thread) (fragments []string, sideEffects []Reply, err error)
}

// ResponsePreprocessor rewrites the assistant response after it has been
// persisted. Preprocessors run in registration order, each reading the
// thread state left by the previous one, and must be idempotent with
// respect to persisted state.
type ResponsePreprocessor interface {
	Extension
	Preprocess(ctx context.Context, roomID, userID string) (string, error)
}

// InterProcessCommand handles control-plane commands arriving over the
// command bus. A handler must resolve the payload's reply channel exactly
// once, directly or by delegating.
type InterProcessCommand interface {
	Extension
	Commands() []string
	Handle(ctx context.Context, p Payload) error
}

// PlatformSupported reports whether an extension declaring the given
// platform set applies to platform. An empty set applies to all platforms.
func PlatformSupported(platforms []string, platform string) bool {
	if len(platforms) == 0 {
		return true
	}
	for _, p := range platforms {
		if p == platform {
			return true
		}
	}
	return false
}

// Applies is a convenience wrapper over PlatformSupported.
func Applies(ext Extension, platform string) bool {
	return PlatformSupported(ext.Platforms(), platform)
}
