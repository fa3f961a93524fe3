// Package bot is the chat-command surface: a handler registry, the task
// that executes a slash command on the worker pool, and the built-in
// command handlers.
package bot

// Embed is a rich block inside a chat message.
type Embed struct {
	Title       string
	Description string
	Color       int
	Image       string
}

// Message is an outbound chat message.
type Message struct {
	Content string
	Embeds  []Embed
}

// Cluster is the handle into the chat gateway. The production implementation
// wraps the gateway client; tests substitute a recorder.
type Cluster interface {
	// InteractionResponseEdit replaces the deferred "thinking" response
	// identified by interactionToken with msg.
	InteractionResponseEdit(interactionToken string, msg Message)
}
