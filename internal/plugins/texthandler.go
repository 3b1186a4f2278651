package plugins

import (
	"context"

	"github.com/petrel-ai/attendant/internal/extension"
	"github.com/petrel-ai/attendant/internal/orchestrator"
)

// TextHandler routes "text" events from platform adapters into the
// messaging pipeline.
type TextHandler struct {
	orch      *orchestrator.Orchestrator
	platforms []string
}

func NewTextHandler(orch *orchestrator.Orchestrator, platforms ...string) *TextHandler {
	return &TextHandler{orch: orch, platforms: platforms}
}

func (t *TextHandler) Platforms() []string { return t.platforms }

func (t *TextHandler) MessageTypes() []string { return []string{"text"} }

func (t *TextHandler) Handle(ctx context.Context, platform, roomID, sender, message string, msgContext []string) ([]extension.Reply, error) {
	return t.orch.HandleTextMessage(ctx, platform, roomID, sender, message, msgContext)
}
