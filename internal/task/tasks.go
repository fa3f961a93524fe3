package task

import (
	"context"

	"go.uber.org/zap"
)

// MessageTask is a diagnostic echo: it logs its text together with the
// worker that picked it up.
type MessageTask struct {
	Text string
	Log  *zap.Logger
}

func (t *MessageTask) Process(_ context.Context, workerID int) {
	t.Log.Info("message task", zap.Int("worker", workerID), zap.String("text", t.Text))
}

// WebRequestTask defers an HTTP-surface side effect into the pool. The
// handler responds immediately; Run carries the rest.
type WebRequestTask struct {
	Run func(ctx context.Context)
}

func (t *WebRequestTask) Process(ctx context.Context, _ int) {
	if t.Run != nil {
		t.Run(ctx)
	}
}
