package thread

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/petrel-ai/attendant/internal/kv"
)

// Store loads and saves threads through an opaque key-value backend.
type Store struct {
	kv kv.Store
}

// NewStore creates a thread store on top of the given key-value backend.
func NewStore(backend kv.Store) *Store {
	return &Store{kv: backend}
}

// HistoryKey returns the storage key for a room's thread.
func HistoryKey(roomID string) string {
	return "chat_history:" + roomID
}

// Load returns the thread for roomID, creating a fresh one if none is
// stored. Threads persisted under an older schema version are migrated in
// place before being returned.
func (s *Store) Load(roomID string) (*Thread, error) {
	key := HistoryKey(roomID)
	if !s.kv.Has(key) {
		return &Thread{SchemaVersion: SchemaVersion, Created: time.Now()}, nil
	}

	data, err := s.kv.Get(key)
	if err != nil {
		return nil, fmt.Errorf("load thread %s: %w", roomID, err)
	}

	var t Thread
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decode thread %s: %w", roomID, err)
	}
	migrate(&t)
	return &t, nil
}

// Save stamps the thread's last-saved time and persists it.
func (s *Store) Save(roomID string, t *Thread) error {
	t.LastSaved = time.Now()

	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encode thread %s: %w", roomID, err)
	}
	if err := s.kv.Put(HistoryKey(roomID), data); err != nil {
		return fmt.Errorf("save thread %s: %w", roomID, err)
	}
	return nil
}

// Clear truncates the thread to its last keep messages (0 empties it) and
// persists the result.
func (s *Store) Clear(roomID string, keep int) error {
	t, err := s.Load(roomID)
	if err != nil {
		return err
	}
	if keep <= 0 {
		t.Messages = nil
	} else if len(t.Messages) > keep {
		t.Messages = append([]Message(nil), t.Messages[len(t.Messages)-keep:]...)
	}
	return s.Save(roomID, t)
}

// migrations maps a stored schema version to the step that lifts a thread to
// the next version. Applied repeatedly until the thread is current.
var migrations = map[int]func(*Thread){
	// Pre-versioning threads carry no schema_version field; stamp them.
	0: func(t *Thread) {
		t.SchemaVersion = 1
		if t.Created.IsZero() {
			t.Created = time.Now()
		}
	},
}

func migrate(t *Thread) {
	for t.SchemaVersion < SchemaVersion {
		step, ok := migrations[t.SchemaVersion]
		if !ok {
			// No path forward; stamp current and stop.
			t.SchemaVersion = SchemaVersion
			return
		}
		step(t)
	}
}
