package bot

import "sync"

// Handler executes one slash command with its task context.
type Handler func(t *CommandTask)

// Registry maps slash-command names to handlers. Registration happens at
// startup; lookups happen concurrently from the worker pool.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// RegisterCommand binds name to handler, replacing any previous binding.
func (r *Registry) RegisterCommand(name string, handler Handler) {
	r.mu.Lock()
	r.handlers[name] = handler
	r.mu.Unlock()
}

// GetHandler returns the handler for name, if one is registered.
func (r *Registry) GetHandler(name string) (Handler, bool) {
	r.mu.RLock()
	h, ok := r.handlers[name]
	r.mu.RUnlock()
	return h, ok
}
