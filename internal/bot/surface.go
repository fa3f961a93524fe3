package bot

import (
	"go.uber.org/zap"

	"github.com/hakari-tcg/hakari/internal/data"
	"github.com/hakari-tcg/hakari/internal/task"
)

// SlashCommand is one inbound slash-command event from the gateway.
type SlashCommand struct {
	Name             string
	Params           map[string]interface{}
	UserID           int64
	InteractionToken string
}

// Surface receives slash commands and defers them onto the worker pool at
// high priority. The gateway thread only enqueues; all game logic runs on
// workers.
type Surface struct {
	cluster  Cluster
	registry *Registry
	data     *data.Service
	tasks    *task.Manager
	log      *zap.Logger
}

// NewSurface wires the surface and registers the built-in commands.
func NewSurface(cluster Cluster, svc *data.Service, tasks *task.Manager, imageBaseURL string, log *zap.Logger) *Surface {
	registry := NewRegistry()
	registry.RegisterCommand("drop", DropHandler(imageBaseURL))
	registry.RegisterCommand("ping", PingHandler)
	registry.RegisterCommand("collection", CollectionHandler)

	return &Surface{
		cluster:  cluster,
		registry: registry,
		data:     svc,
		tasks:    tasks,
		log:      log,
	}
}

// Registry exposes the command registry for additional registrations.
func (s *Surface) Registry() *Registry {
	return s.registry
}

// HandleSlashCommand enqueues cmd for execution. The caller is expected to
// have already acknowledged the interaction ("thinking") at the gateway.
func (s *Surface) HandleSlashCommand(cmd SlashCommand) {
	s.log.Debug("slash command received",
		zap.String("command", cmd.Name), zap.Int64("userId", cmd.UserID))

	s.tasks.Submit(&CommandTask{
		CommandName:      cmd.Name,
		Params:           cmd.Params,
		UserID:           cmd.UserID,
		InteractionToken: cmd.InteractionToken,
		Cluster:          s.cluster,
		Registry:         s.registry,
		Data:             s.data,
		Log:              s.log,
	}, task.High)
}
