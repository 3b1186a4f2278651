package plugins

import (
	"context"
	"log"

	"github.com/petrel-ai/attendant/internal/extension"
	"github.com/petrel-ai/attendant/internal/users"
)

// ChatEvent handles chat_event commands arriving from platform adapters
// over the command bus. It records unknown senders in the known users list,
// routes the event to the message handler declaring its type, and resolves
// the reply channel with the handler's replies.
type ChatEvent struct {
	reg       *extension.Registry
	users     *users.Service
	platforms []string
}

func NewChatEvent(reg *extension.Registry, userSvc *users.Service, platforms ...string) *ChatEvent {
	return &ChatEvent{reg: reg, users: userSvc, platforms: platforms}
}

func (c *ChatEvent) Platforms() []string { return c.platforms }

func (c *ChatEvent) Commands() []string { return []string{"chat_event"} }

func (c *ChatEvent) Handle(ctx context.Context, p extension.Payload) error {
	sender, _ := p.Data["sender"].(string)
	senderName, _ := p.Data["sender_name"].(string)
	roomID, _ := p.Data["room_id"].(string)
	if roomID == "" {
		roomID = sender
	}
	msgType, _ := p.Data["type"].(string)
	if msgType == "" {
		msgType = "text"
	}
	body, _ := p.Data["body"].(string)

	if sender != "" && !c.users.IsKnown(sender) {
		log.Printf("[ChatEvent] new %s contact: %s", p.Platform, sender)
		if err := c.users.Add(sender, senderName, roomID); err != nil {
			log.Printf("[ChatEvent] record known user %s: %v", sender, err)
		}
	}

	mh := c.reg.MessageHandlerFor(p.Platform, msgType)
	if mh == nil {
		log.Printf("[ChatEvent] unsupported message type: %s", msgType)
		p.Reply(extension.Response{Body: []extension.Reply{extension.TextReply("Unsupported message type.")}})
		return nil
	}

	replies, err := mh.Handle(ctx, p.Platform, roomID, sender, body, nil)
	if err != nil {
		p.Reply(extension.Response{Body: []extension.Reply{}})
		return err
	}
	p.Reply(extension.Response{Body: replies})
	return nil
}
