package orchestrator

import (
	"context"
	"log"
	"sync"
)

// TaskGroup runs fire-and-forget background work with supervision: panics
// are recovered and errors logged instead of silently dropped. Wait is for
// shutdown and tests; the orchestrator itself never waits on the group.
type TaskGroup struct {
	wg sync.WaitGroup
}

// NewTaskGroup creates an empty task group.
func NewTaskGroup() *TaskGroup {
	return &TaskGroup{}
}

// Go schedules fn on its own goroutine.
func (g *TaskGroup) Go(name string, fn func(ctx context.Context) error) {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[Tasks] %s panicked: %v", name, r)
			}
		}()
		if err := fn(context.Background()); err != nil {
			log.Printf("[Tasks] %s failed: %v", name, err)
		}
	}()
}

// Wait blocks until all scheduled tasks finish.
func (g *TaskGroup) Wait() {
	g.wg.Wait()
}
