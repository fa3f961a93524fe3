package transport

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHubStop(t *testing.T) {
	hub := NewHub(nil, nil, nil, nil, zap.NewNop())

	stopped := make(chan struct{})
	go func() {
		hub.Run()
		close(stopped)
	}()

	client := &Client{hub: hub, send: make(chan []byte, sendBuffer)}
	hub.register <- client
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 5*time.Second, 5*time.Millisecond)

	hub.Stop()

	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("lifecycle loop did not exit")
	}

	assert.Equal(t, 0, hub.ClientCount())

	// The client's send channel is drained and closed so its write pump
	// can exit.
	for {
		if _, ok := <-client.send; !ok {
			break
		}
	}
}
