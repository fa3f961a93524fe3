package task

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// recordTask appends its label to a shared log when processed.
type recordTask struct {
	label string
	mu    *sync.Mutex
	out   *[]string
	done  chan struct{}
}

func (t *recordTask) Process(_ context.Context, _ int) {
	t.mu.Lock()
	*t.out = append(*t.out, t.label)
	t.mu.Unlock()
	if t.done != nil {
		close(t.done)
	}
}

type recorder struct {
	mu  sync.Mutex
	out []string
}

func (r *recorder) task(label string) *recordTask {
	return &recordTask{label: label, mu: &r.mu, out: &r.out}
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.out...)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestPreseededQueuesDrainByPriority(t *testing.T) {
	m := NewManager(1, zap.NewNop())
	rec := &recorder{}

	// Seeded before any worker runs, one task per class.
	m.Submit(rec.task("low"), Low)
	m.Submit(rec.task("standard"), Standard)
	m.Submit(rec.task("high"), High)

	m.Start(context.Background())
	defer m.Shutdown()

	waitFor(t, func() bool { return len(rec.snapshot()) == 3 })
	assert.Equal(t, []string{"high", "standard", "low"}, rec.snapshot())
}

func TestFIFOWithinPriorityClass(t *testing.T) {
	m := NewManager(1, zap.NewNop())
	rec := &recorder{}

	for _, label := range []string{"a", "b", "c", "d", "e"} {
		m.Submit(rec.task(label), Standard)
	}

	m.Start(context.Background())
	defer m.Shutdown()

	waitFor(t, func() bool { return len(rec.snapshot()) == 5 })
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, rec.snapshot())
}

func TestFullQueuesExecuteAllClasses(t *testing.T) {
	m := NewManager(1, zap.NewNop())
	rec := &recorder{}

	const n = 100
	for i := 0; i < n; i++ {
		m.Submit(rec.task("high"), High)
		m.Submit(rec.task("standard"), Standard)
		m.Submit(rec.task("low"), Low)
	}

	m.Start(context.Background())
	defer m.Shutdown()

	waitFor(t, func() bool { return len(rec.snapshot()) == 3*n })

	// A strict 5:3:1 poll with everything pre-seeded drains the classes in
	// order, and nothing is lost.
	out := rec.snapshot()
	for i, label := range out {
		switch {
		case i < n:
			assert.Equal(t, "high", label, "position %d", i)
		case i < 2*n:
			assert.Equal(t, "standard", label, "position %d", i)
		default:
			assert.Equal(t, "low", label, "position %d", i)
		}
	}
}

func TestStandardRunsAfterHighDrains(t *testing.T) {
	m := NewManager(1, zap.NewNop())
	rec := &recorder{}

	for i := 0; i < 50; i++ {
		m.Submit(rec.task("high"), High)
	}
	m.Submit(rec.task("standard"), Standard)

	m.Start(context.Background())
	defer m.Shutdown()

	waitFor(t, func() bool { return len(rec.snapshot()) == 51 })
	out := rec.snapshot()
	assert.Equal(t, "standard", out[50], "standard executes once high is exhausted")
}

func TestSubmitDoesNotBlock(t *testing.T) {
	m := NewManager(1, zap.NewNop())
	rec := &recorder{}

	// No workers running: submission must still return immediately.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 10000; i++ {
			m.Submit(rec.task("x"), Low)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("submit blocked")
	}
}

func TestShutdownDropsQueuedTasks(t *testing.T) {
	m := NewManager(1, zap.NewNop())
	rec := &recorder{}

	m.Start(context.Background())

	started := make(chan struct{})
	release := make(chan struct{})
	m.Submit(&blockingTask{started: started, release: release}, High)
	<-started

	// Queued behind the blocker; shutdown must drop it.
	m.Submit(rec.task("never"), High)

	go func() {
		time.Sleep(50 * time.Millisecond)
		close(release)
	}()
	m.Shutdown()

	assert.Empty(t, rec.snapshot())
}

type blockingTask struct {
	started chan struct{}
	release chan struct{}
}

func (t *blockingTask) Process(_ context.Context, _ int) {
	close(t.started)
	<-t.release
}

func TestWorkersShareTheLoad(t *testing.T) {
	m := NewManager(4, zap.NewNop())
	rec := &recorder{}

	const n = 200
	for i := 0; i < n; i++ {
		m.Submit(rec.task("t"), Standard)
	}

	m.Start(context.Background())
	defer m.Shutdown()

	waitFor(t, func() bool { return len(rec.snapshot()) == n })
	require.Len(t, rec.snapshot(), n)
}

func TestPriorityString(t *testing.T) {
	assert.Equal(t, "high", High.String())
	assert.Equal(t, "standard", Standard.String())
	assert.Equal(t, "low", Low.String())
}
