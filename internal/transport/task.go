package transport

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/hakari-tcg/hakari/internal/auth"
	"github.com/hakari-tcg/hakari/internal/data"
	"github.com/hakari-tcg/hakari/internal/game"
	"github.com/hakari-tcg/hakari/internal/model"
	"github.com/hakari-tcg/hakari/internal/store"
)

// RequestTask executes one deferred transport frame on the worker pool.
// Responses go back over the same connection.
type RequestTask struct {
	Type    MessageType
	Payload []byte
	Client  *Client
	Data    *data.Service
	Authn   *auth.Authenticator
	Log     *zap.Logger
}

// authedRequest is the common payload prefix of authenticated requests.
type authedRequest struct {
	Token string `json:"token"`
}

type inventoryEntry struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Number int32  `json:"number"`
}

type inventoryResponse struct {
	Success   bool             `json:"success"`
	Message   string           `json:"message,omitempty"`
	Inventory []inventoryEntry `json:"inventory,omitempty"`
}

type openPackResponse struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Cards   []inventoryEntry `json:"cards,omitempty"`
}

func (t *RequestTask) Process(ctx context.Context, _ int) {
	switch t.Type {
	case TypeRequestInventory:
		t.processInventory(ctx)
	case TypeRequestOpenPack:
		t.processOpenPack(ctx)
	default:
		t.Log.Debug("unhandled deferred frame", zap.Uint8("type", uint8(t.Type)))
	}
}

// authenticate resolves the request token to a player. On failure it has
// already sent the error response of type responseType.
func (t *RequestTask) authenticate(ctx context.Context, responseType MessageType) *model.Player {
	var req authedRequest
	if err := json.Unmarshal(t.Payload, &req); err != nil {
		t.Client.SendJSON(responseType, inventoryResponse{Message: "Malformed request."})
		return nil
	}

	playerID, _, err := t.Authn.VerifyToken(req.Token)
	if err != nil {
		t.Client.SendJSON(responseType, inventoryResponse{Message: "Unauthorized: Invalid or expired token."})
		return nil
	}

	player, err := t.Data.FindPlayerByID(ctx, playerID)
	if err != nil {
		t.Log.Error("transport: loading player", zap.Error(err))
		t.Client.SendJSON(responseType, inventoryResponse{Message: "An internal server error occurred."})
		return nil
	}
	if player == nil {
		t.Client.SendJSON(responseType, inventoryResponse{Message: "Player not found."})
		return nil
	}
	return player
}

func (t *RequestTask) processInventory(ctx context.Context) {
	player := t.authenticate(ctx, TypeResponseInventory)
	if player == nil {
		return
	}

	objects, err := t.Data.CardObjects.Find(ctx, store.NewQuery().In("_id", player.Cards))
	if err != nil {
		t.Log.Error("transport: loading inventory", zap.Error(err))
		t.Client.SendJSON(TypeResponseInventory, inventoryResponse{Message: "An internal server error occurred."})
		return
	}

	entries := make([]inventoryEntry, 0, len(objects))
	for _, obj := range objects {
		ref, err := t.Data.CardReferences.FindOne(ctx, store.ByID(obj.CardReferenceID))
		if err != nil || ref == nil {
			continue
		}
		entries = append(entries, inventoryEntry{
			ID:     obj.ID.Hex(),
			Name:   ref.Name,
			Number: obj.Number,
		})
	}
	t.Client.SendJSON(TypeResponseInventory, inventoryResponse{Success: true, Inventory: entries})
}

func (t *RequestTask) processOpenPack(ctx context.Context) {
	player := t.authenticate(ctx, TypeResponseOpenPack)
	if player == nil {
		return
	}

	result, err := game.OpenPackForPlayer(ctx, t.Data, player, game.PackSize)
	if err != nil {
		t.Log.Error("transport: opening pack", zap.Error(err))
		t.Client.SendJSON(TypeResponseOpenPack, openPackResponse{Message: "An internal server error occurred."})
		return
	}

	resp := openPackResponse{Success: result.Success, Message: result.Message}
	for i, ref := range result.OpenedReferences {
		resp.Cards = append(resp.Cards, inventoryEntry{
			ID:     result.OpenedObjects[i].ID.Hex(),
			Name:   ref.Name,
			Number: result.OpenedObjects[i].Number,
		})
	}
	t.Client.SendJSON(TypeResponseOpenPack, resp)
}
