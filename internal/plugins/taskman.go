package plugins

import (
	"context"
	"log"
	"strings"

	"github.com/petrel-ai/attendant/internal/extension"
	"github.com/petrel-ai/attendant/internal/gateway"
	"github.com/petrel-ai/attendant/internal/thread"
)

const (
	taskMarker    = "[task]"
	endTaskMarker = "[end-task]"
)

// taskmanInstructions teaches the model to mark task boundaries so the
// preprocessor can manage the attention thread.
const taskmanInstructions = "You must track the tasks the user gives you." +
	" Do not consider messages containing only a simple greeting, like" +
	" \"hello,\" or only a stop-word, such as \"ok,\" an indicator of a new" +
	" task, unless these types of messages are repeated multiple times" +
	" consecutively. When you detect a new task, prefix your message with" +
	" [task], skip a line, then add your response. The square brackets are" +
	" important. Never use anything other than square brackets! Once you" +
	" detect that a task has ended, respond with a message summarizing or" +
	" confirming the completion of the task, skip a line, then append" +
	" [end-task]. Never respond with [end-task] alone; always provide a" +
	" meaningful message before it."

// TaskmanContext contributes the task-marker instructions to the completion
// primer. It pairs with Taskman, which consumes the markers.
type TaskmanContext struct {
	platforms []string
}

func NewTaskmanContext(platforms ...string) *TaskmanContext {
	return &TaskmanContext{platforms: platforms}
}

func (t *TaskmanContext) Platforms() []string { return t.platforms }

func (t *TaskmanContext) GetContext(userID string) []thread.Message {
	return []thread.Message{{Role: thread.RoleSystem, Content: taskmanInstructions}}
}

// Taskman is a response preprocessor that consumes [task] and [end-task]
// markers in the assistant response. A task start collapses the thread to
// an ongoing-task note plus the response; a task end drops everything but
// the final exchange, unless the response carries a conversational trigger
// phrase that still needs its context.
type Taskman struct {
	threads    *thread.Store
	completion gateway.CompletionGateway
	reg        *extension.Registry
	// EmptyResponseText replaces a response that was nothing but the
	// end-task marker. When empty, a wrap-up completion is generated
	// instead.
	emptyResponseText string
	platforms         []string
}

func NewTaskman(threads *thread.Store, completion gateway.CompletionGateway, reg *extension.Registry, emptyResponseText string, platforms ...string) *Taskman {
	return &Taskman{
		threads:           threads,
		completion:        completion,
		reg:               reg,
		emptyResponseText: emptyResponseText,
		platforms:         platforms,
	}
}

func (t *Taskman) Platforms() []string { return t.platforms }

func (t *Taskman) Preprocess(ctx context.Context, roomID, userID string) (string, error) {
	th, err := t.threads.Load(roomID)
	if err != nil {
		return "", err
	}
	if len(th.Messages) == 0 {
		return "", nil
	}

	last := len(th.Messages) - 1
	response := th.Messages[last].Content

	task := strings.Contains(response, taskMarker)
	if task {
		log.Printf("[Taskman] task marker detected in %s", roomID)
		response = strings.TrimSpace(strings.ReplaceAll(response, taskMarker, ""))
	}

	endTask := strings.Contains(response, endTaskMarker)
	if endTask {
		log.Printf("[Taskman] end-task marker detected in %s", roomID)
		response = strings.TrimSpace(strings.ReplaceAll(response, endTaskMarker, ""))

		if response == "" {
			response = t.wrapUp(ctx, th)
			th.Messages[last].Content = response
		}
	}

	switch {
	case task:
		th.Messages[last] = thread.Message{Role: thread.RoleSystem, Content: "A task is ongoing."}
		th.Messages = append(th.Messages, thread.Message{Role: thread.RoleAssistant, Content: response})
		if len(th.Messages) > 3 {
			th.Messages = append([]thread.Message(nil), th.Messages[len(th.Messages)-3:]...)
		}
	case endTask:
		th.Messages[last].Content = response
		if !t.triggerInResponse(response) && len(th.Messages) > 2 {
			th.Messages = append([]thread.Message(nil), th.Messages[len(th.Messages)-2:]...)
		}
	}

	if err := t.threads.Save(roomID, th); err != nil {
		return "", err
	}
	return response, nil
}

// wrapUp produces a closing message when the model responded with nothing
// but the end-task marker.
func (t *Taskman) wrapUp(ctx context.Context, th *thread.Thread) string {
	if t.emptyResponseText != "" {
		return t.emptyResponseText
	}

	req := append([]thread.Message(nil), th.Messages[:len(th.Messages)-1]...)
	req = append(req, thread.Message{
		Role: thread.RoleSystem,
		Content: "Your conversation with the user has ended. Let them know" +
			" this and that they can reach out to you if they need assistance" +
			" with anything else. They do not have to respond to your message.",
	})

	comp, err := t.completion.GetCompletion(ctx, req)
	if err != nil || comp == nil {
		log.Printf("[Taskman] wrap-up completion failed: %v", err)
		return ""
	}
	return comp.Content
}

func (t *Taskman) triggerInResponse(response string) bool {
	for _, ct := range t.reg.Triggers() {
		for _, phrase := range ct.Triggers() {
			if strings.Contains(response, phrase) {
				return true
			}
		}
	}
	return false
}
