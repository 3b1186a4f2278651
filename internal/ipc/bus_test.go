package ipc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petrel-ai/attendant/internal/extension"
)

type fakeIPC struct {
	platforms []string
	commands  []string
	handled   []string
	reply     any
	silent    bool // matches but never resolves the reply channel
}

func (f *fakeIPC) Platforms() []string { return f.platforms }
func (f *fakeIPC) Commands() []string  { return f.commands }

func (f *fakeIPC) Handle(ctx context.Context, p extension.Payload) error {
	f.handled = append(f.handled, p.Command)
	if !f.silent {
		p.Reply(extension.Response{Body: f.reply})
	}
	return nil
}

func runBus(t *testing.T, b *Bus) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go b.Run(ctx) //nolint:errcheck
}

func TestBus_CallRoutesToMatchingExtension(t *testing.T) {
	reg := extension.NewRegistry()
	ext := &fakeIPC{commands: []string{"chat_get_status"}, reply: "OK"}
	reg.RegisterIPCCommand(ext)

	b := NewBus(reg)
	runBus(t, b)

	resp, err := b.Call(context.Background(), "chat_get_status", "chat", nil)
	require.NoError(t, err)
	assert.Equal(t, "OK", resp.Body)
	assert.False(t, resp.NotFound)
	assert.Equal(t, []string{"chat_get_status"}, ext.handled)
}

func TestBus_NotFoundResolvedExactlyOnce(t *testing.T) {
	b := NewBus(extension.NewRegistry())
	runBus(t, b)

	p := extension.NewPayload("missing_command", "chat", nil)
	b.Submit(p)

	resp := <-p.ReplyTo
	assert.True(t, resp.NotFound)
	assert.Equal(t, NotFoundBody, resp.Body)

	// The slot must hold exactly one value.
	select {
	case extra := <-p.ReplyTo:
		t.Fatalf("unexpected second response: %v", extra)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestBus_PlatformFilteredExtensionIsSkipped(t *testing.T) {
	reg := extension.NewRegistry()
	chatOnly := &fakeIPC{platforms: []string{"chat"}, commands: []string{"ping"}, reply: "chat pong"}
	reg.RegisterIPCCommand(chatOnly)

	b := NewBus(reg)
	runBus(t, b)

	resp, err := b.Call(context.Background(), "ping", "webhook", nil)
	require.NoError(t, err)
	assert.True(t, resp.NotFound)
	assert.Empty(t, chatOnly.handled)
}

func TestBus_MultipleMatchesAllInvoked(t *testing.T) {
	reg := extension.NewRegistry()
	first := &fakeIPC{commands: []string{"ping"}, reply: "first"}
	second := &fakeIPC{commands: []string{"ping"}, silent: true}
	reg.RegisterIPCCommand(first)
	reg.RegisterIPCCommand(second)

	b := NewBus(reg)
	runBus(t, b)

	resp, err := b.Call(context.Background(), "ping", "chat", nil)
	require.NoError(t, err)
	assert.Equal(t, "first", resp.Body)

	// Both handlers ran even though the first already resolved the reply.
	assert.Equal(t, []string{"ping"}, first.handled)
	assert.Equal(t, []string{"ping"}, second.handled)
}

func TestBus_CallHonorsContextCancellation(t *testing.T) {
	reg := extension.NewRegistry()
	reg.RegisterIPCCommand(&fakeIPC{commands: []string{"stall"}, silent: true})

	b := NewBus(reg)
	runBus(t, b)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := b.Call(ctx, "stall", "chat", nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
