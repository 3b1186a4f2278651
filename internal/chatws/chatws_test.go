package chatws

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petrel-ai/attendant/internal/extension"
	"github.com/petrel-ai/attendant/internal/ipc"
)

// chatEventExt emulates the chat_event handler: it records the payload and
// answers with canned replies.
type chatEventExt struct {
	payload extension.Payload
	replies []extension.Reply
}

func (c *chatEventExt) Platforms() []string { return []string{Platform} }
func (c *chatEventExt) Commands() []string  { return []string{"chat_event"} }
func (c *chatEventExt) Handle(ctx context.Context, p extension.Payload) error {
	c.payload = p
	p.Reply(extension.Response{Body: c.replies})
	return nil
}

func newTestClient(t *testing.T, ext extension.InterProcessCommand) (*Client, *[][]byte) {
	t.Helper()

	reg := extension.NewRegistry()
	if ext != nil {
		reg.RegisterIPCCommand(ext)
	}
	bus := ipc.NewBus(reg)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go bus.Run(ctx)

	c := NewClient("ws://example.invalid/ws", "", bus)
	var sent [][]byte
	c.sendFn = func(payload []byte) error {
		sent = append(sent, payload)
		return nil
	}
	return c, &sent
}

func TestProcessEvent_MessageRoundTrip(t *testing.T) {
	ext := &chatEventExt{replies: []extension.Reply{extension.TextReply("hello alice")}}
	c, sent := newTestClient(t, ext)

	c.ProcessEvent(context.Background(), []byte(`{
		"type": "message",
		"sender": "alice",
		"sender_name": "Alice",
		"room_id": "room1",
		"message_type": "text",
		"body": "hello"
	}`))

	assert.Equal(t, "chat_event", ext.payload.Command)
	assert.Equal(t, Platform, ext.payload.Platform)
	assert.Equal(t, "alice", ext.payload.Data["sender"])
	assert.Equal(t, "room1", ext.payload.Data["room_id"])
	assert.Equal(t, "hello", ext.payload.Data["body"])

	require.Len(t, *sent, 1)
	var frame map[string]any
	require.NoError(t, json.Unmarshal((*sent)[0], &frame))
	assert.Equal(t, "send", frame["type"])
	assert.Equal(t, "room1", frame["room_id"])
	assert.Equal(t, "hello alice", frame["text"])
}

func TestProcessEvent_RoomDefaultsToSender(t *testing.T) {
	ext := &chatEventExt{}
	c, _ := newTestClient(t, ext)

	c.ProcessEvent(context.Background(), []byte(`{"type":"message","sender":"bob","body":"hi"}`))

	assert.Equal(t, "bob", ext.payload.Data["room_id"])
}

func TestProcessEvent_EmptyRepliesSendNothing(t *testing.T) {
	c, sent := newTestClient(t, &chatEventExt{})

	c.ProcessEvent(context.Background(), []byte(`{"type":"message","sender":"bob","body":"hi"}`))

	assert.Empty(t, *sent)
}

func TestProcessEvent_IgnoresNonMessageEvents(t *testing.T) {
	ext := &chatEventExt{}
	c, sent := newTestClient(t, ext)

	c.ProcessEvent(context.Background(), []byte(`{"type":"status","status":"connected"}`))
	c.ProcessEvent(context.Background(), []byte(`{"type":"error","error":"boom"}`))
	c.ProcessEvent(context.Background(), []byte(`not json`))

	assert.Empty(t, ext.payload.Command)
	assert.Empty(t, *sent)
}

func TestStart_RequiresGatewayURL(t *testing.T) {
	c := NewClient("", "", ipc.NewBus(extension.NewRegistry()))
	assert.Error(t, c.Start(context.Background()))
}
