package plugins

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/petrel-ai/attendant/internal/extension"
	"github.com/petrel-ai/attendant/internal/kv"
	"github.com/petrel-ai/attendant/internal/thread"
)

const (
	recallNotesKey = "recall_notes"
	recallCacheKey = "recall_context"
)

// Recall is a retrieval-augmentation extension that matches keywords in the
// user message against notes stored in the key-value backend. Matched notes
// accumulate in a cache under CacheKey so follow-up turns keep the context
// until the cache is cleared.
type Recall struct {
	kv        kv.Store
	platforms []string
}

func NewRecall(backend kv.Store, platforms ...string) *Recall {
	return &Recall{kv: backend, platforms: platforms}
}

func (r *Recall) Platforms() []string { return r.platforms }

func (r *Recall) CacheKey() string { return recallCacheKey }

// SetNote stores a note under a keyword, replacing any previous note for
// that keyword.
func (r *Recall) SetNote(keyword, note string) error {
	notes, err := r.notes()
	if err != nil {
		return err
	}
	notes[strings.ToLower(keyword)] = note
	data, err := json.Marshal(notes)
	if err != nil {
		return fmt.Errorf("encode recall notes: %w", err)
	}
	return r.kv.Put(recallNotesKey, data)
}

func (r *Recall) Retrieve(ctx context.Context, sender, message string, t *thread.Thread) ([]string, []extension.Reply, error) {
	notes, err := r.notes()
	if err != nil {
		return nil, nil, err
	}

	fragments := r.cached()
	lower := strings.ToLower(message)
	for keyword, note := range notes {
		if !strings.Contains(lower, keyword) {
			continue
		}
		if containsFragment(fragments, note) {
			continue
		}
		log.Printf("[Recall] keyword hit %q for %s", keyword, sender)
		fragments = append(fragments, note)
	}

	if len(fragments) > 0 {
		data, err := json.Marshal(fragments)
		if err != nil {
			return nil, nil, fmt.Errorf("encode recall cache: %w", err)
		}
		if err := r.kv.Put(recallCacheKey, data); err != nil {
			return nil, nil, err
		}
	}
	return fragments, nil, nil
}

func (r *Recall) notes() (map[string]string, error) {
	if !r.kv.Has(recallNotesKey) {
		return map[string]string{}, nil
	}
	data, err := r.kv.Get(recallNotesKey)
	if err != nil {
		return nil, err
	}
	notes := map[string]string{}
	if err := json.Unmarshal(data, &notes); err != nil {
		return nil, fmt.Errorf("decode recall notes: %w", err)
	}
	return notes, nil
}

func (r *Recall) cached() []string {
	if !r.kv.Has(recallCacheKey) {
		return nil
	}
	data, err := r.kv.Get(recallCacheKey)
	if err != nil {
		return nil
	}
	var fragments []string
	if err := json.Unmarshal(data, &fragments); err != nil {
		return nil
	}
	return fragments
}

func containsFragment(fragments []string, s string) bool {
	for _, f := range fragments {
		if f == s {
			return true
		}
	}
	return false
}
