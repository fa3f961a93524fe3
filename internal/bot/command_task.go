package bot

import (
	"context"

	"go.uber.org/zap"

	"github.com/hakari-tcg/hakari/internal/data"
)

// CommandTask carries one inbound slash command through the worker pool.
// Everything a handler needs travels in the task; handlers touch no globals.
type CommandTask struct {
	CommandName      string
	Params           map[string]interface{}
	UserID           int64
	InteractionToken string

	Cluster  Cluster
	Registry *Registry
	Data     *data.Service
	Log      *zap.Logger

	ctx context.Context
}

// Context returns the context the task is executing under.
func (t *CommandTask) Context() context.Context {
	if t.ctx != nil {
		return t.ctx
	}
	return context.Background()
}

func (t *CommandTask) Process(ctx context.Context, workerID int) {
	t.ctx = ctx

	if t.Registry == nil || t.Data == nil {
		t.Log.Error("command task missing required services",
			zap.String("command", t.CommandName), zap.Int("worker", workerID))
		if t.Cluster != nil && t.InteractionToken != "" {
			t.Cluster.InteractionResponseEdit(t.InteractionToken,
				Message{Content: "An internal error has occurred. Please try again later."})
		}
		return
	}

	handler, ok := t.Registry.GetHandler(t.CommandName)
	if !ok {
		t.Cluster.InteractionResponseEdit(t.InteractionToken,
			Message{Content: "This command is not yet implemented!"})
		return
	}
	handler(t)
}
