package web

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/hakari-tcg/hakari/internal/auth"
	"github.com/hakari-tcg/hakari/internal/game"
	"github.com/hakari-tcg/hakari/internal/model"
	"github.com/hakari-tcg/hakari/internal/store"
)

func (s *Server) handleOpenPack(w http.ResponseWriter, r *http.Request, callerID primitive.ObjectID, _ *auth.Claims) {
	ctx := r.Context()

	player, err := s.data.FindPlayerByID(ctx, callerID)
	if err != nil {
		s.log.Error("open pack: loading player", zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, false, "An internal server error occurred.")
		return
	}
	if player == nil {
		writeMessage(w, http.StatusNotFound, false, "Player not found.")
		return
	}

	result, err := game.OpenPackForPlayer(ctx, s.data, player, game.PackSize)
	if err != nil {
		s.log.Error("open pack failed", zap.Error(err), zap.String("playerId", callerID.Hex()))
		writeMessage(w, http.StatusInternalServerError, false, "An internal server error occurred.")
		return
	}
	if !result.Success {
		writeMessage(w, http.StatusBadRequest, false, result.Message)
		return
	}

	cards := make([]map[string]interface{}, 0, len(result.OpenedReferences))
	for i, ref := range result.OpenedReferences {
		cards = append(cards, map[string]interface{}{
			"name":   ref.Name,
			"number": result.OpenedObjects[i].Number,
			"image":  s.cardImageURL(ref.CharacterID.Hex()),
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": result.Message,
		"cards":   cards,
	})
}

// handleCollection returns the inventory of the addressed player. The
// pseudo-id "@me" binds to the caller; decks are included only when the
// addressed player is the caller, and the owner's deck list is repaired up
// to three decks as a side effect of the read.
func (s *Server) handleCollection(w http.ResponseWriter, r *http.Request, callerID primitive.ObjectID, _ *auth.Claims) {
	ctx := r.Context()

	targetID := callerID
	if raw := mux.Vars(r)["userId"]; raw != "@me" {
		parsed, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, false, "Invalid user id.")
			return
		}
		targetID = parsed
	}
	isOwner := targetID == callerID

	player, err := s.data.FindPlayerByID(ctx, targetID)
	if err != nil {
		s.log.Error("collection: loading player", zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, false, "An internal server error occurred while fetching collection.")
		return
	}
	if player == nil {
		writeMessage(w, http.StatusNotFound, false, "Player not found.")
		return
	}

	// One push per missing deck: a single update cannot carry the same
	// field twice.
	for isOwner && len(player.Decks) < model.DeckCount {
		err := s.data.Players.UpdateOne(ctx, store.ByID(player.ID),
			store.NewUpdate().Push("decks", []primitive.ObjectID{}))
		if err != nil {
			s.log.Error("collection: repairing decks", zap.Error(err))
			writeMessage(w, http.StatusInternalServerError, false, "An internal server error occurred while fetching collection.")
			return
		}
		player.Decks = append(player.Decks, []primitive.ObjectID{})
	}

	objects, err := s.data.CardObjects.Find(ctx, store.NewQuery().In("_id", player.Cards))
	if err != nil {
		s.log.Error("collection: loading cards", zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, false, "An internal server error occurred while fetching collection.")
		return
	}

	inventory := make([]map[string]interface{}, 0, len(objects))
	for _, obj := range objects {
		ref, err := s.data.CardReferences.FindOne(ctx, store.ByID(obj.CardReferenceID))
		if err != nil {
			s.log.Error("collection: loading reference", zap.Error(err))
			writeMessage(w, http.StatusInternalServerError, false, "An internal server error occurred while fetching collection.")
			return
		}
		if ref == nil {
			continue
		}
		inventory = append(inventory, map[string]interface{}{
			"id":     obj.ID.Hex(),
			"name":   ref.Name,
			"number": obj.Number,
			"image":  s.cardImageURL(ref.CharacterID.Hex()),
		})
	}

	body := map[string]interface{}{
		"success":   true,
		"inventory": inventory,
	}
	if isOwner {
		decks := make([][]string, 0, len(player.Decks))
		for _, deck := range player.Decks {
			ids := make([]string, 0, len(deck))
			for _, id := range deck {
				ids = append(ids, id.Hex())
			}
			decks = append(decks, ids)
		}
		body["decks"] = decks
	}
	writeJSON(w, http.StatusOK, body)
}

type saveDeckRequest struct {
	DeckIndex *int     `json:"deckIndex"`
	Cards     []string `json:"cards"`
}

// handleSaveDeck replaces one deck. When the submitted set of cards equals
// the stored set, the write is skipped entirely.
func (s *Server) handleSaveDeck(w http.ResponseWriter, r *http.Request, callerID primitive.ObjectID, _ *auth.Claims) {
	ctx := r.Context()

	var req saveDeckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, false, "Invalid JSON format: "+err.Error())
		return
	}
	if req.DeckIndex == nil {
		writeMessage(w, http.StatusBadRequest, false, "Request body must include 'deckIndex'.")
		return
	}
	deckIndex := *req.DeckIndex

	newDeck := make([]primitive.ObjectID, 0, len(req.Cards))
	for _, raw := range req.Cards {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, false, "Could not save deck. Invalid card id.")
			return
		}
		newDeck = append(newDeck, id)
	}

	player, err := s.data.FindPlayerByID(ctx, callerID)
	if err != nil {
		s.log.Error("save deck: loading player", zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, false, "Server error while saving deck.")
		return
	}
	if player == nil {
		writeMessage(w, http.StatusNotFound, false, "Could not save deck. Player not found.")
		return
	}
	if deckIndex < 0 || deckIndex >= len(player.Decks) {
		writeMessage(w, http.StatusBadRequest, false, "Could not save deck. Invalid deck index.")
		return
	}

	if sameIDSet(player.Decks[deckIndex], newDeck) {
		writeMessage(w, http.StatusOK, true, "Deck saved successfully (no changes detected).")
		return
	}

	field := "decks." + strconv.Itoa(deckIndex)
	if err := s.data.Players.UpdateOne(ctx, store.ByID(callerID), store.NewUpdate().Set(field, newDeck)); err != nil {
		s.log.Error("save deck: writing deck", zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, false, "Server error while saving deck.")
		return
	}
	writeMessage(w, http.StatusOK, true, "Deck saved successfully.")
}

// sameIDSet compares two id lists order-insensitively, with multiplicity.
func sameIDSet(a, b []primitive.ObjectID) bool {
	if len(a) != len(b) {
		return false
	}
	counts := make(map[primitive.ObjectID]int, len(a))
	for _, id := range a {
		counts[id]++
	}
	for _, id := range b {
		counts[id]--
		if counts[id] < 0 {
			return false
		}
	}
	return true
}
