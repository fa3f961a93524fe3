package transport

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hakari-tcg/hakari/internal/auth"
	"github.com/hakari-tcg/hakari/internal/data"
	"github.com/hakari-tcg/hakari/internal/game"
	"github.com/hakari-tcg/hakari/internal/model"
	"github.com/hakari-tcg/hakari/internal/store"
	"github.com/hakari-tcg/hakari/internal/task"
)

// newLoopbackClient builds a client whose outbound frames land in its send
// buffer instead of a socket.
func newLoopbackClient() *Client {
	hub := &Hub{log: zap.NewNop()}
	return &Client{hub: hub, send: make(chan []byte, sendBuffer)}
}

func nextFrame(t *testing.T, c *Client) (MessageType, []byte) {
	t.Helper()
	select {
	case frame := <-c.send:
		typ, payload, err := DecodeFrame(frame)
		require.NoError(t, err)
		return typ, payload
	default:
		t.Fatal("no frame queued")
		return TypeInvalid, nil
	}
}

type fixture struct {
	svc    *data.Service
	authn  *auth.Authenticator
	client *Client
	token  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	svc := data.NewService(store.NewMemoryDatabase())
	authn := auth.NewAuthenticator("test-secret")

	result, err := game.RegisterUser(ctx, svc, "a@b.c", "pass1234", "Alice")
	require.NoError(t, err)
	require.True(t, result.Success)
	login, err := game.LoginUser(ctx, svc, authn, "a@b.c", "pass1234")
	require.NoError(t, err)
	require.True(t, login.Success)

	return &fixture{
		svc:    svc,
		authn:  authn,
		client: newLoopbackClient(),
		token:  login.Token,
	}
}

func (f *fixture) run(t *testing.T, typ MessageType, payload interface{}) {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	tk := &RequestTask{
		Type:    typ,
		Payload: raw,
		Client:  f.client,
		Data:    f.svc,
		Authn:   f.authn,
		Log:     zap.NewNop(),
	}
	tk.Process(context.Background(), 0)
}

func TestInventoryRequest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CardReferences.InsertOne(ctx, model.CardReference{Name: "Luffy"})
	require.NoError(t, err)

	player, err := f.svc.FindPlayerByEmail(ctx, "a@b.c")
	require.NoError(t, err)
	opened, err := game.OpenPackForPlayer(ctx, f.svc, player, game.PackSize)
	require.NoError(t, err)
	require.True(t, opened.Success)

	f.run(t, TypeRequestInventory, authedRequest{Token: f.token})

	typ, payload := nextFrame(t, f.client)
	assert.Equal(t, TypeResponseInventory, typ)

	var resp inventoryResponse
	require.NoError(t, json.Unmarshal(payload, &resp))
	require.True(t, resp.Success)
	require.Len(t, resp.Inventory, 1)
	assert.Equal(t, "Luffy", resp.Inventory[0].Name)
	assert.Equal(t, int32(1), resp.Inventory[0].Number)
}

func TestOpenPackRequest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CardReferences.InsertOne(ctx, model.CardReference{Name: "Zoro"})
	require.NoError(t, err)

	f.run(t, TypeRequestOpenPack, authedRequest{Token: f.token})

	typ, payload := nextFrame(t, f.client)
	assert.Equal(t, TypeResponseOpenPack, typ)

	var resp openPackResponse
	require.NoError(t, json.Unmarshal(payload, &resp))
	require.True(t, resp.Success)
	require.Len(t, resp.Cards, 1)
	assert.Equal(t, "Zoro", resp.Cards[0].Name)

	player, err := f.svc.FindPlayerByEmail(ctx, "a@b.c")
	require.NoError(t, err)
	assert.Len(t, player.Cards, 1)
}

func TestRequestWithBadToken(t *testing.T) {
	f := newFixture(t)

	f.run(t, TypeRequestInventory, authedRequest{Token: "garbage"})

	typ, payload := nextFrame(t, f.client)
	assert.Equal(t, TypeResponseInventory, typ)

	var resp inventoryResponse
	require.NoError(t, json.Unmarshal(payload, &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "Unauthorized: Invalid or expired token.", resp.Message)
}

func TestRequestWithMalformedPayload(t *testing.T) {
	f := newFixture(t)

	tk := &RequestTask{
		Type:    TypeRequestOpenPack,
		Payload: []byte("{nope"),
		Client:  f.client,
		Data:    f.svc,
		Authn:   f.authn,
		Log:     zap.NewNop(),
	}
	tk.Process(context.Background(), 0)

	typ, payload := nextFrame(t, f.client)
	assert.Equal(t, TypeResponseOpenPack, typ)

	var resp openPackResponse
	require.NoError(t, json.Unmarshal(payload, &resp))
	assert.False(t, resp.Success)
}

func TestDeferredFrameDispatchesToPool(t *testing.T) {
	f := newFixture(t)

	tasks := task.NewManager(1, zap.NewNop())
	hub := NewHub(f.svc, f.authn, tasks, nil, zap.NewNop())
	f.client.hub = hub

	frame := EncodeFrame(TypeRequestInventory, mustJSON(t, authedRequest{Token: f.token}))
	hub.dispatch(f.client, frame)

	tasks.Start(context.Background())
	defer tasks.Shutdown()

	require.Eventually(t, func() bool { return len(f.client.send) > 0 }, 5*time.Second, 5*time.Millisecond)
	typ, _ := nextFrame(t, f.client)
	assert.Equal(t, TypeResponseInventory, typ)
}

func TestFastPathFrameStaysOffPool(t *testing.T) {
	f := newFixture(t)

	var gotType MessageType
	var gotPayload []byte
	fast := func(c *Client, typ MessageType, payload []byte) {
		gotType = typ
		gotPayload = payload
	}

	tasks := task.NewManager(1, zap.NewNop())
	hub := NewHub(f.svc, f.authn, tasks, fast, zap.NewNop())

	hub.dispatch(f.client, EncodeFrame(TypePlayerInput, []byte{1, 2, 3}))

	assert.Equal(t, TypePlayerInput, gotType)
	assert.Equal(t, []byte{1, 2, 3}, gotPayload)
	assert.Empty(t, f.client.send, "fast path frames never round-trip through the pool")
}

func mustJSON(t *testing.T, v interface{}) []byte {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return raw
}
