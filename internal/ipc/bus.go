// Package ipc implements the command bus: one shared inbound queue with a
// single consumer, correlated to callers through per-call single-slot reply
// channels. This is how synchronous-looking request/response semantics are
// built on top of an asynchronous pipe.
package ipc

import (
	"context"
	"log"

	"github.com/petrel-ai/attendant/internal/extension"
)

// NotFoundBody is the sentinel body written when no extension matched.
const NotFoundBody = "Not Found"

// Bus routes control-plane commands to matching InterProcessCommand
// extensions.
type Bus struct {
	reg     *extension.Registry
	inbound chan extension.Payload
}

// NewBus creates a command bus reading extensions from reg.
func NewBus(reg *extension.Registry) *Bus {
	return &Bus{
		reg:     reg,
		inbound: make(chan extension.Payload, 64),
	}
}

// Submit enqueues a payload on the shared inbound queue. The caller keeps
// the payload's reply channel and awaits it privately.
func (b *Bus) Submit(p extension.Payload) {
	b.inbound <- p
}

// Call submits a command and awaits its response. Callers bound the wait
// through ctx; a handler that never resolves the reply channel otherwise
// stalls the call indefinitely.
func (b *Bus) Call(ctx context.Context, command, platform string, data map[string]any) (extension.Response, error) {
	p := extension.NewPayload(command, platform, data)

	select {
	case b.inbound <- p:
	case <-ctx.Done():
		return extension.Response{}, ctx.Err()
	}

	select {
	case r := <-p.ReplyTo:
		return r, nil
	case <-ctx.Done():
		return extension.Response{}, ctx.Err()
	}
}

// Run consumes the shared queue until ctx is cancelled. It is the single
// logical consumer of the bus.
func (b *Bus) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case p := <-b.inbound:
			b.dispatch(ctx, p)
		}
	}
}

// dispatch routes one payload through every matching extension in
// registration order. No short-circuit: several extensions may listen for
// the same command on different platforms, and the caller only ever reads
// from its own reply channel.
func (b *Bus) dispatch(ctx context.Context, p extension.Payload) {
	hits := 0
	for _, ext := range b.reg.IPCCommands() {
		if !extension.Applies(ext, p.Platform) {
			continue
		}
		if !hasCommand(ext.Commands(), p.Command) {
			continue
		}
		hits++
		if err := ext.Handle(ctx, p); err != nil {
			log.Printf("[Bus] handler error for %s: %v", p.Command, err)
		}
	}

	if hits == 0 {
		log.Printf("[Bus] no handlers found for command %s", p.Command)
		p.Reply(extension.Response{Body: NotFoundBody, NotFound: true})
	}
}

func hasCommand(commands []string, command string) bool {
	for _, c := range commands {
		if c == command {
			return true
		}
	}
	return false
}
