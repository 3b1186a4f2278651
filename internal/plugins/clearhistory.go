// Package plugins contains the built-in extensions: history clearing,
// persona priming, task lifecycle markers, note recall, text handling, and
// the control-plane status and chat event commands.
package plugins

import (
	"context"
	"log"

	"github.com/petrel-ai/attendant/internal/extension"
	"github.com/petrel-ai/attendant/internal/orchestrator"
)

// ClearHistory is a command processor that empties a room's conversation
// thread and retrieval caches when the user sends the clear command.
type ClearHistory struct {
	orch      *orchestrator.Orchestrator
	command   string
	platforms []string
}

// NewClearHistory builds the clear-history command processor. command is the
// exact chat message that triggers it.
func NewClearHistory(orch *orchestrator.Orchestrator, command string, platforms ...string) *ClearHistory {
	return &ClearHistory{orch: orch, command: command, platforms: platforms}
}

func (c *ClearHistory) Platforms() []string { return c.platforms }

func (c *ClearHistory) Commands() []string { return []string{c.command} }

func (c *ClearHistory) Process(ctx context.Context, message, roomID, userID string) ([]extension.Reply, error) {
	if err := c.orch.ClearHistory(roomID); err != nil {
		return nil, err
	}
	log.Printf("[ClearHistory] cleared thread for %s", roomID)
	return []extension.Reply{extension.TextReply("Context cleared.")}, nil
}
