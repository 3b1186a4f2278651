// Package lane provides per-room serialization for the messaging pipeline.
//
// The orchestrator itself does not serialize concurrent messages for the
// same room: two interleaved invocations can load the same thread snapshot
// and persist divergent histories. A lane Manager closes that gap: each
// room gets a worker that processes its messages strictly in FIFO order,
// while different rooms proceed independently.
package lane

import (
	"context"
	"sync"
	"time"

	"github.com/petrel-ai/attendant/internal/extension"
)

// Request is one inbound chat message bound for the pipeline.
type Request struct {
	Platform string
	RoomID   string
	Sender   string
	Content  string
	Context  []string
}

// Handler processes a single request; typically the orchestrator's
// HandleTextMessage.
type Handler func(ctx context.Context, req Request) ([]extension.Reply, error)

type result struct {
	replies []extension.Reply
	err     error
}

type item struct {
	request Request
	done    chan result
}

type roomLane struct {
	roomID string
	queue  chan item
	// closed is set under the manager lock when the worker evicts itself;
	// an enqueue observing it retries with a fresh lane.
	closed bool
}

// Manager owns one lane per room.
type Manager struct {
	mu      sync.Mutex
	lanes   map[string]*roomLane
	handler Handler

	idleTimeout time.Duration
	stopCh      chan struct{}
	stopOnce    sync.Once
}

// NewManager creates a lane manager delegating to handler.
func NewManager(handler Handler) *Manager {
	return &Manager{
		lanes:       make(map[string]*roomLane),
		handler:     handler,
		idleTimeout: 5 * time.Minute,
		stopCh:      make(chan struct{}),
	}
}

// Submit routes a request through its room's lane and waits for the result.
// Requests for the same room are processed one at a time in arrival order;
// requests for different rooms interleave freely.
func (m *Manager) Submit(ctx context.Context, req Request) ([]extension.Reply, error) {
	it := item{request: req, done: make(chan result, 1)}

	for {
		l := m.getOrCreateLane(req.RoomID)
		ok, err := m.enqueue(ctx, l, it)
		if err != nil {
			return nil, err
		}
		if ok {
			break
		}
		// The lane idled out between lookup and enqueue; take a fresh one.
	}

	select {
	case r := <-it.done:
		return r.replies, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// enqueue places it on l's queue unless the lane's worker has already
// evicted itself. The closed check and the send share the manager lock with
// the eviction path, so an item can never land on a lane with no worker.
func (m *Manager) enqueue(ctx context.Context, l *roomLane, it item) (bool, error) {
	m.mu.Lock()
	if l.closed {
		m.mu.Unlock()
		return false, nil
	}
	select {
	case l.queue <- it:
		m.mu.Unlock()
		return true, nil
	default:
	}
	m.mu.Unlock()

	// Queue full means the worker is busy, so the lane cannot idle out
	// before a slot frees.
	select {
	case l.queue <- it:
		return true, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// Stop shuts down all lane workers.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

func (m *Manager) getOrCreateLane(roomID string) *roomLane {
	m.mu.Lock()
	defer m.mu.Unlock()

	if l, ok := m.lanes[roomID]; ok {
		return l
	}
	l := &roomLane{roomID: roomID, queue: make(chan item, 100)}
	m.lanes[roomID] = l
	go m.runWorker(l)
	return l
}

func (m *Manager) runWorker(l *roomLane) {
	idle := time.NewTimer(m.idleTimeout)
	defer idle.Stop()

	for {
		select {
		case it := <-l.queue:
			replies, err := m.handler(context.Background(), it.request)
			it.done <- result{replies: replies, err: err}

			if !idle.Stop() {
				<-idle.C
			}
			idle.Reset(m.idleTimeout)

		case <-idle.C:
			m.mu.Lock()
			if len(l.queue) > 0 {
				// A submit landed just before the timer fired; keep going.
				m.mu.Unlock()
				idle.Reset(m.idleTimeout)
				continue
			}
			l.closed = true
			delete(m.lanes, l.roomID)
			m.mu.Unlock()
			return

		case <-m.stopCh:
			return
		}
	}
}
