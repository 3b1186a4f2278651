// Package thread implements durable per-room conversation history with
// schema versioning. Threads are stored as JSON under chat_history:{room_id}.
package thread

import "time"

// SchemaVersion is the current thread schema version. Threads loaded with an
// older (or missing) version are migrated in place on load.
const SchemaVersion = 1

// Role constants for thread messages.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is a single conversation turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Thread is the ordered conversation history for one room.
type Thread struct {
	SchemaVersion int       `json:"schema_version"`
	Created       time.Time `json:"created_at"`
	LastSaved     time.Time `json:"last_saved_at"`
	Messages      []Message `json:"messages"`
}

// Append adds a turn to the thread.
func (t *Thread) Append(role, content string) {
	t.Messages = append(t.Messages, Message{Role: role, Content: content})
}

// LastContent returns the content of the most recent message, or "".
func (t *Thread) LastContent() string {
	if len(t.Messages) == 0 {
		return ""
	}
	return t.Messages[len(t.Messages)-1].Content
}
