package plugins

import (
	"github.com/petrel-ai/attendant/internal/thread"
)

// Persona primes every completion with the configured assistant persona.
type Persona struct {
	text      string
	platforms []string
}

// NewPersona builds the persona context extension. An empty persona text
// contributes nothing.
func NewPersona(text string, platforms ...string) *Persona {
	return &Persona{text: text, platforms: platforms}
}

func (p *Persona) Platforms() []string { return p.platforms }

func (p *Persona) GetContext(userID string) []thread.Message {
	if p.text == "" {
		return nil
	}
	return []thread.Message{{Role: thread.RoleSystem, Content: p.text}}
}
