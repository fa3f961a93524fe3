// Package task implements the weighted-priority worker pool that executes
// the server's deferred work: chat commands, transport requests, diagnostics.
package task

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Priority selects which queue a task lands in.
type Priority int

const (
	High Priority = iota
	Standard
	Low
)

func (p Priority) String() string {
	switch p {
	case High:
		return "high"
	case Standard:
		return "standard"
	case Low:
		return "low"
	default:
		return "unknown"
	}
}

// Task is a unit of deferred work. Process must not hold locks across its
// return; side effects flow through whatever context the task carries.
type Task interface {
	Process(ctx context.Context, workerID int)
}

const (
	highAttempts     = 5
	standardAttempts = 3
	lowAttempts      = 1
	idleSleep        = 10 * time.Millisecond
)

// queue is a mutex-guarded FIFO. Each queue has its own lock; workers never
// hold two at once.
type queue struct {
	mu    sync.Mutex
	tasks []Task
}

func (q *queue) push(t Task) {
	q.mu.Lock()
	q.tasks = append(q.tasks, t)
	q.mu.Unlock()
}

func (q *queue) tryPop() (Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.tasks) == 0 {
		return nil, false
	}
	t := q.tasks[0]
	q.tasks = q.tasks[1:]
	return t, true
}

// Manager owns the three priority queues and the worker pool.
//
// Each worker cycles a 5:3:1 weighted draw: up to five pop attempts on the
// high queue, then three on standard, then one on low. The first successful
// pop executes and restarts the cycle, so the weights bound how long a
// lower class can wait but never let the high queue starve the others.
type Manager struct {
	queues  [3]queue
	workers int
	done    atomic.Bool
	wg      sync.WaitGroup
	log     *zap.Logger
}

// NewManager builds a pool with the given worker count.
func NewManager(workers int, log *zap.Logger) *Manager {
	if workers < 1 {
		workers = 1
	}
	return &Manager{workers: workers, log: log}
}

// Start launches the workers. They run until Shutdown.
func (m *Manager) Start(ctx context.Context) {
	for i := 0; i < m.workers; i++ {
		m.wg.Add(1)
		go m.runWorker(ctx, i)
	}
	m.log.Info("task manager started", zap.Int("workers", m.workers))
}

// Submit enqueues the task at the given priority. It never blocks beyond
// the queue mutex and is safe from any goroutine, including after Shutdown
// (the task is then silently dropped at drain).
func (m *Manager) Submit(t Task, p Priority) {
	m.queues[p].push(t)
}

// Shutdown flips the done flag and waits for the workers to exit. In-flight
// tasks finish; queued tasks are dropped without execution.
func (m *Manager) Shutdown() {
	m.done.Store(true)
	m.wg.Wait()
	m.log.Info("task manager stopped")
}

func (m *Manager) runWorker(ctx context.Context, id int) {
	defer m.wg.Done()
	for !m.done.Load() {
		if t, ok := m.tryPopWeighted(); ok {
			m.execute(ctx, id, t)
			continue
		}
		time.Sleep(idleSleep)
	}
}

// tryPopWeighted performs the 5:3:1 draw. A success returns immediately;
// the remaining attempts of that class are not spent on further tasks.
func (m *Manager) tryPopWeighted() (Task, bool) {
	for i := 0; i < highAttempts; i++ {
		if t, ok := m.queues[High].tryPop(); ok {
			return t, true
		}
	}
	for i := 0; i < standardAttempts; i++ {
		if t, ok := m.queues[Standard].tryPop(); ok {
			return t, true
		}
	}
	for i := 0; i < lowAttempts; i++ {
		if t, ok := m.queues[Low].tryPop(); ok {
			return t, true
		}
	}
	return nil, false
}

func (m *Manager) execute(ctx context.Context, workerID int, t Task) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Error("task panicked", zap.Int("worker", workerID), zap.Any("panic", r))
		}
	}()
	t.Process(ctx, workerID)
}
