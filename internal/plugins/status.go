package plugins

import (
	"context"

	"github.com/petrel-ai/attendant/internal/extension"
)

// Status answers liveness probes on the command bus. It serves the generic
// get_status command plus a platform-scoped variant per declared platform.
type Status struct {
	platforms []string
}

func NewStatus(platforms ...string) *Status {
	return &Status{platforms: platforms}
}

func (s *Status) Platforms() []string { return s.platforms }

func (s *Status) Commands() []string {
	commands := []string{"get_status"}
	for _, p := range s.platforms {
		commands = append(commands, p+"_get_status")
	}
	return commands
}

func (s *Status) Handle(ctx context.Context, p extension.Payload) error {
	p.Reply(extension.Response{Body: "OK"})
	return nil
}
