// Package chatws maintains the websocket connection to the chat gateway.
// Inbound events become chat_event commands on the command bus; the bus
// reply carries the assistant's messages back over the same socket.
package chatws

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/petrel-ai/attendant/internal/extension"
	"github.com/petrel-ai/attendant/internal/ipc"
)

// Platform is the platform identifier for gateway traffic.
const Platform = "chat"

const (
	callTimeout    = 60 * time.Second
	reconnectDelay = 5 * time.Second
)

// Client is the chat gateway client.
type Client struct {
	gatewayURL string
	token      string
	bus        *ipc.Bus

	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool

	// sendFn is an injectable raw sender so event processing can be tested
	// without a live socket.
	sendFn func(payload []byte) error
}

// NewClient creates a gateway client submitting events to bus.
func NewClient(gatewayURL, token string, bus *ipc.Bus) *Client {
	return &Client{gatewayURL: gatewayURL, token: token, bus: bus}
}

// Start dials the gateway and processes events until ctx is cancelled,
// reconnecting after connection loss.
func (c *Client) Start(ctx context.Context) error {
	if c.gatewayURL == "" {
		return fmt.Errorf("chatws: gateway URL not configured")
	}

	for {
		if err := c.runConn(ctx); err != nil {
			log.Printf("[ChatWS] connection lost: %v", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(reconnectDelay):
		}
	}
}

func (c *Client) runConn(ctx context.Context) error {
	header := http.Header{}
	if c.token != "" {
		header.Set("Authorization", "Bearer "+c.token)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.gatewayURL, header)
	if err != nil {
		return fmt.Errorf("dial %s: %w", c.gatewayURL, err)
	}
	log.Printf("[ChatWS] connected to %s", c.gatewayURL)

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.connected = false
		c.conn = nil
		c.mu.Unlock()
		conn.Close()
	}()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		c.ProcessEvent(ctx, raw)
	}
}

// Connected reports whether the gateway socket is up.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// ProcessEvent handles one raw gateway event. Exported so event handling
// can be driven directly in tests.
func (c *Client) ProcessEvent(ctx context.Context, raw []byte) {
	var event map[string]any
	if err := json.Unmarshal(raw, &event); err != nil {
		log.Printf("[ChatWS] undecodable event: %v", err)
		return
	}

	eventType, _ := event["type"].(string)
	switch eventType {
	case "message":
		c.handleMessage(ctx, event)
	case "status":
		status, _ := event["status"].(string)
		log.Printf("[ChatWS] gateway status: %s", status)
	case "error":
		errMsg, _ := event["error"].(string)
		log.Printf("[ChatWS] gateway error: %s", errMsg)
	default:
		log.Printf("[ChatWS] ignoring event type %q", eventType)
	}
}

func (c *Client) handleMessage(ctx context.Context, event map[string]any) {
	sender, _ := event["sender"].(string)
	roomID, _ := event["room_id"].(string)
	if roomID == "" {
		roomID = sender
	}

	data := map[string]any{
		"sender":      sender,
		"sender_name": event["sender_name"],
		"room_id":     roomID,
		"type":        event["message_type"],
		"body":        event["body"],
	}

	callCtx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	resp, err := c.bus.Call(callCtx, "chat_event", Platform, data)
	if err != nil {
		log.Printf("[ChatWS] chat_event call failed for %s: %v", roomID, err)
		return
	}
	replies, _ := resp.Body.([]extension.Reply)
	for _, r := range replies {
		if r.Type != "text" || r.Content == "" {
			continue
		}
		if err := c.send(map[string]any{
			"type":    "send",
			"room_id": roomID,
			"text":    r.Content,
		}); err != nil {
			log.Printf("[ChatWS] send to %s failed: %v", roomID, err)
		}
	}
}

// send writes one outbound frame. gorilla/websocket does not support
// concurrent writes, so the write path is serialized.
func (c *Client) send(v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if c.sendFn != nil {
		return c.sendFn(payload)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return fmt.Errorf("chatws: not connected")
	}
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}
