// Package orchestrator implements the messaging pipeline: command
// interception, context assembly, history, retrieval augmentation,
// completion, response preprocessing, and trigger dispatch, in strict stage
// order.
package orchestrator

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/petrel-ai/attendant/internal/extension"
	"github.com/petrel-ai/attendant/internal/gateway"
	"github.com/petrel-ai/attendant/internal/kv"
	"github.com/petrel-ai/attendant/internal/thread"
)

// gatewayFailureText is returned to the user when the completion gateway
// fails; the pipeline never surfaces gateway failure as an error.
const gatewayFailureText = "Error"

// Config holds orchestrator policy knobs.
type Config struct {
	// ClearRetrievalCacheAfterUse controls whether retrieval caches are
	// dropped once their fragments have been fed into a completion, or kept
	// for later turns.
	ClearRetrievalCacheAfterUse bool
}

// Orchestrator turns an inbound chat message into a reply.
type Orchestrator struct {
	reg        *extension.Registry
	threads    *thread.Store
	completion gateway.CompletionGateway
	kv         kv.Store
	tasks      *TaskGroup
	cfg        Config
}

// New wires an orchestrator. The registry is expected to be fully populated
// before the first message arrives and read-only afterwards.
func New(reg *extension.Registry, threads *thread.Store, completion gateway.CompletionGateway, backend kv.Store, cfg Config) *Orchestrator {
	return &Orchestrator{
		reg:        reg,
		threads:    threads,
		completion: completion,
		kv:         backend,
		tasks:      NewTaskGroup(),
		cfg:        cfg,
	}
}

// Tasks exposes the background task group so callers can drain it on
// shutdown.
func (o *Orchestrator) Tasks() *TaskGroup { return o.tasks }

// HandleTextMessage runs the full pipeline for one user message and returns
// the replies for the calling adapter. msgContext carries caller-supplied
// context fragments such as media captions.
//
// Extension errors propagate to the caller; only gateway failure has a
// built-in fallback.
func (o *Orchestrator) HandleTextMessage(ctx context.Context, platform, roomID, sender, content string, msgContext []string) ([]extension.Reply, error) {
	// Stage 1: command interception. A match short-circuits the pipeline.
	trimmed := strings.TrimSpace(content)
	matched := false
	var commandReplies []extension.Reply
	for _, cp := range o.reg.CommandProcessors() {
		if !extension.Applies(cp, platform) {
			continue
		}
		if !containsString(cp.Commands(), trimmed) {
			continue
		}
		matched = true
		replies, err := cp.Process(ctx, content, roomID, sender)
		if err != nil {
			return nil, fmt.Errorf("command processor: %w", err)
		}
		commandReplies = append(commandReplies, replies...)
	}
	if matched {
		return commandReplies, nil
	}

	// Stage 2: context assembly. Trigger extensions contribute primer
	// entries too, so the model knows their trigger phrases.
	var primer []thread.Message
	for _, cx := range o.reg.Contexts() {
		if !extension.Applies(cx, platform) {
			continue
		}
		primer = append(primer, cx.GetContext(sender)...)
	}
	for _, ct := range o.reg.Triggers() {
		if !extension.Applies(ct, platform) {
			continue
		}
		primer = append(primer, ct.GetContext(sender)...)
	}

	// Stage 3: history load.
	t, err := o.threads.Load(roomID)
	if err != nil {
		return nil, err
	}

	// Stage 4: append the user turn.
	t.Append(thread.RoleUser, content)

	// Stage 5: retrieval augmentation.
	var fragments []string
	var sideEffects []extension.Reply
	for _, rag := range o.reg.Retrievers() {
		if !extension.Applies(rag, platform) {
			continue
		}
		frags, effects, err := rag.Retrieve(ctx, sender, content, t)
		if err != nil {
			return nil, fmt.Errorf("retrieval augmentation: %w", err)
		}
		fragments = append(fragments, frags...)
		sideEffects = append(sideEffects, effects...)
	}

	// Build the completion request. The envelope rewrite only touches the
	// in-memory request, never the persisted thread.
	completionCtx := make([]thread.Message, 0, len(primer)+len(t.Messages))
	completionCtx = append(completionCtx, primer...)
	completionCtx = append(completionCtx, t.Messages...)

	augmentation := append(append([]string(nil), msgContext...), fragments...)
	if len(augmentation) > 0 {
		last := &completionCtx[len(completionCtx)-1]
		last.Content = envelope(augmentation, last.Content)
	}

	// Stage 6: completion. Failure becomes a textual reply, never an error.
	response := gatewayFailureText
	comp, err := o.completion.GetCompletion(ctx, completionCtx)
	if err != nil || comp == nil {
		log.Printf("[Orchestrator] completion failed for %s: %v", roomID, err)
	} else {
		response = comp.Content
	}

	// Stage 7: persist the true exchange before post-processing runs.
	t.Append(thread.RoleAssistant, response)
	if err := o.threads.Save(roomID, t); err != nil {
		return nil, err
	}

	// Used retrieval context is dropped or kept per policy.
	if o.cfg.ClearRetrievalCacheAfterUse && len(fragments) > 0 {
		o.clearRetrievalCaches(platform)
	}

	// Stage 8: response preprocessing, each extension seeing the thread
	// state its predecessors left behind.
	for _, rpp := range o.reg.Preprocessors() {
		if !extension.Applies(rpp, platform) {
			continue
		}
		response, err = rpp.Preprocess(ctx, roomID, sender)
		if err != nil {
			return nil, fmt.Errorf("response preprocessor: %w", err)
		}
	}

	// An empty response is an explicit no-reply; the turn stays persisted.
	if response == "" {
		return sideEffects, nil
	}

	// Stage 9: fire-and-forget trigger dispatch.
	final := response
	for _, ct := range o.reg.Triggers() {
		if !extension.Applies(ct, platform) {
			continue
		}
		ext := ct
		o.tasks.Go("trigger", func(ctx context.Context) error {
			return ext.Process(ctx, final, thread.RoleAssistant, roomID, sender)
		})
	}

	// Stage 10: final text plus any retrieval side effects.
	return append([]extension.Reply{extension.TextReply(final)}, sideEffects...), nil
}

// ClearHistory empties a room's thread and drops every retrieval cache,
// whatever platform its extension declares.
func (o *Orchestrator) ClearHistory(roomID string) error {
	if err := o.threads.Clear(roomID, 0); err != nil {
		return err
	}
	for _, rag := range o.reg.Retrievers() {
		o.removeCache(rag.CacheKey())
	}
	return nil
}

// clearRetrievalCaches drops the caches of retrievers applicable to the
// platform; used by the post-use cache policy.
func (o *Orchestrator) clearRetrievalCaches(platform string) {
	for _, rag := range o.reg.Retrievers() {
		if !extension.Applies(rag, platform) {
			continue
		}
		o.removeCache(rag.CacheKey())
	}
}

func (o *Orchestrator) removeCache(key string) {
	if !o.kv.Has(key) {
		return
	}
	if err := o.kv.Remove(key); err != nil {
		log.Printf("[Orchestrator] clear cache %s: %v", key, err)
	}
}

// envelope wraps a user message in delimited blocks: numbered context
// fragments first, the original message after.
func envelope(fragments []string, message string) string {
	var b strings.Builder
	b.WriteString("[CONTEXT]\n")
	for i, f := range fragments {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "%d. %s", i+1, f)
	}
	b.WriteString("\n[/CONTEXT]\n\n[USER_MESSAGE]\n")
	b.WriteString(message)
	b.WriteString("\n[/USER_MESSAGE]")
	return b.String()
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
