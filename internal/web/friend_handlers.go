package web

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strings"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/hakari-tcg/hakari/internal/auth"
	"github.com/hakari-tcg/hakari/internal/model"
	"github.com/hakari-tcg/hakari/internal/store"
)

// Friend-graph statuses as the clients consume them.
const (
	statusFriend   = "friend"
	statusPending  = "pending"
	statusIncoming = "incoming"
	statusNone     = "none"
)

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

// friendStatus computes the caller's relation to other from the caller's
// own lists.
func friendStatus(caller *model.Player, other primitive.ObjectID) string {
	switch {
	case containsID(caller.Friends, other):
		return statusFriend
	case containsID(caller.FriendRequestsSent, other):
		return statusPending
	case containsID(caller.FriendRequestsReceived, other):
		return statusIncoming
	default:
		return statusNone
	}
}

// handleUserSearch matches display names case-insensitively, excluding the
// caller, and annotates each hit with the caller's friend-graph status.
func (s *Server) handleUserSearch(w http.ResponseWriter, r *http.Request, callerID primitive.ObjectID, _ *auth.Claims) {
	ctx := r.Context()

	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		writeMessage(w, http.StatusBadRequest, false, "Query parameter 'name' is required.")
		return
	}

	caller, err := s.data.FindPlayerByID(ctx, callerID)
	if err != nil {
		s.log.Error("user search: loading caller", zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, false, "An internal server error occurred.")
		return
	}
	if caller == nil {
		writeMessage(w, http.StatusNotFound, false, "Player not found.")
		return
	}

	query := store.NewQuery().
		Regex("displayName", regexp.QuoteMeta(name), "i").
		Ne("_id", callerID)
	matches, err := s.data.Players.Find(ctx, query)
	if err != nil {
		s.log.Error("user search: querying players", zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, false, "An internal server error occurred.")
		return
	}

	users := make([]map[string]interface{}, 0, len(matches))
	for _, match := range matches {
		users = append(users, map[string]interface{}{
			"_id":         match.ID.Hex(),
			"displayName": match.DisplayName,
			"status":      friendStatus(caller, match.ID),
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"users":   users,
	})
}

// summarize resolves a list of player ids into display entries, skipping
// ids that no longer resolve.
func (s *Server) summarize(r *http.Request, ids []primitive.ObjectID) ([]map[string]interface{}, error) {
	out := make([]map[string]interface{}, 0, len(ids))
	for _, id := range ids {
		player, err := s.data.FindPlayerByID(r.Context(), id)
		if err != nil {
			return nil, err
		}
		if player == nil {
			continue
		}
		out = append(out, map[string]interface{}{
			"_id":         player.ID.Hex(),
			"displayName": player.DisplayName,
		})
	}
	return out, nil
}

func (s *Server) handleFriendsList(w http.ResponseWriter, r *http.Request, callerID primitive.ObjectID, _ *auth.Claims) {
	caller, err := s.data.FindPlayerByID(r.Context(), callerID)
	if err != nil {
		s.log.Error("friends: loading caller", zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, false, "An internal server error occurred.")
		return
	}
	if caller == nil {
		writeMessage(w, http.StatusNotFound, false, "Player not found.")
		return
	}

	friends, err := s.summarize(r, caller.Friends)
	if err != nil {
		s.log.Error("friends: resolving friends", zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, false, "An internal server error occurred.")
		return
	}
	incoming, err := s.summarize(r, caller.FriendRequestsReceived)
	if err != nil {
		s.log.Error("friends: resolving incoming requests", zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, false, "An internal server error occurred.")
		return
	}
	outgoing, err := s.summarize(r, caller.FriendRequestsSent)
	if err != nil {
		s.log.Error("friends: resolving outgoing requests", zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, false, "An internal server error occurred.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":          true,
		"friends":          friends,
		"incomingRequests": incoming,
		"outgoingRequests": outgoing,
	})
}

type friendRequestBody struct {
	RecipientID string `json:"recipientId"`
}

func (s *Server) handleFriendRequest(w http.ResponseWriter, r *http.Request, callerID primitive.ObjectID, _ *auth.Claims) {
	ctx := r.Context()

	var req friendRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, false, "Invalid JSON format: "+err.Error())
		return
	}
	recipientID, err := primitive.ObjectIDFromHex(req.RecipientID)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, false, "Invalid recipient id.")
		return
	}
	if recipientID == callerID {
		writeMessage(w, http.StatusBadRequest, false, "You cannot send a friend request to yourself.")
		return
	}

	caller, err := s.data.FindPlayerByID(ctx, callerID)
	if err != nil {
		s.log.Error("friend request: loading caller", zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, false, "An internal server error occurred.")
		return
	}
	if caller == nil {
		writeMessage(w, http.StatusNotFound, false, "Player not found.")
		return
	}
	recipient, err := s.data.FindPlayerByID(ctx, recipientID)
	if err != nil {
		s.log.Error("friend request: loading recipient", zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, false, "An internal server error occurred.")
		return
	}
	if recipient == nil {
		writeMessage(w, http.StatusNotFound, false, "Player not found.")
		return
	}

	switch friendStatus(caller, recipientID) {
	case statusFriend:
		writeMessage(w, http.StatusBadRequest, false, "You are already friends with this user.")
		return
	case statusPending, statusIncoming:
		writeMessage(w, http.StatusBadRequest, false, "A friend request between you already exists.")
		return
	}

	err = s.data.Players.UpdateOne(ctx, store.ByID(callerID),
		store.NewUpdate().AddToSet("friendRequestsSent", recipientID))
	if err == nil {
		err = s.data.Players.UpdateOne(ctx, store.ByID(recipientID),
			store.NewUpdate().AddToSet("friendRequestsReceived", callerID))
	}
	if err != nil {
		s.log.Error("friend request: writing", zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, false, "An internal server error occurred.")
		return
	}
	writeMessage(w, http.StatusOK, true, "Friend request sent.")
}

type friendResponseBody struct {
	OtherUserID string `json:"otherUserId"`
	Action      string `json:"action"`
}

// handleFriendResponse resolves a pending request. Accept requires an
// incoming request from the other player and links both sides; accept,
// decline and cancel all clear every request entry in both directions on
// both sides, which deliberately over-deletes so stale one-sided residues
// cannot survive.
func (s *Server) handleFriendResponse(w http.ResponseWriter, r *http.Request, callerID primitive.ObjectID, _ *auth.Claims) {
	ctx := r.Context()

	var req friendResponseBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, false, "Invalid JSON format: "+err.Error())
		return
	}
	otherID, err := primitive.ObjectIDFromHex(req.OtherUserID)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, false, "Invalid user id.")
		return
	}

	switch req.Action {
	case "accept", "decline", "cancel":
	default:
		writeMessage(w, http.StatusBadRequest, false, "Action must be 'accept', 'decline' or 'cancel'.")
		return
	}

	if req.Action == "accept" {
		// Only the recipient of a pending request may accept it.
		caller, err := s.data.FindPlayerByID(ctx, callerID)
		if err != nil {
			s.log.Error("friend response: loading caller", zap.Error(err))
			writeMessage(w, http.StatusInternalServerError, false, "An internal server error occurred.")
			return
		}
		if caller == nil {
			writeMessage(w, http.StatusNotFound, false, "Player not found.")
			return
		}
		if !containsID(caller.FriendRequestsReceived, otherID) {
			writeMessage(w, http.StatusBadRequest, false, "No pending friend request from this user.")
			return
		}

		err = s.data.Players.UpdateOne(ctx, store.ByID(callerID),
			store.NewUpdate().AddToSet("friends", otherID))
		if err == nil {
			err = s.data.Players.UpdateOne(ctx, store.ByID(otherID),
				store.NewUpdate().AddToSet("friends", callerID))
		}
		if err != nil {
			s.log.Error("friend response: linking", zap.Error(err))
			writeMessage(w, http.StatusInternalServerError, false, "An internal server error occurred.")
			return
		}
	}

	err = s.clearRequestsBetween(r, callerID, otherID)
	if err != nil {
		s.log.Error("friend response: clearing requests", zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, false, "An internal server error occurred.")
		return
	}

	switch req.Action {
	case "accept":
		writeMessage(w, http.StatusOK, true, "Friend request accepted.")
	case "decline":
		writeMessage(w, http.StatusOK, true, "Friend request declined.")
	default:
		writeMessage(w, http.StatusOK, true, "Friend request cancelled.")
	}
}

// clearRequestsBetween pulls every request entry between a and b from both
// players in both directions.
func (s *Server) clearRequestsBetween(r *http.Request, a, b primitive.ObjectID) error {
	ctx := r.Context()
	if err := s.data.Players.UpdateOne(ctx, store.ByID(a), store.NewUpdate().
		Pull("friendRequestsSent", b).
		Pull("friendRequestsReceived", b)); err != nil {
		return err
	}
	return s.data.Players.UpdateOne(ctx, store.ByID(b), store.NewUpdate().
		Pull("friendRequestsSent", a).
		Pull("friendRequestsReceived", a))
}

func (s *Server) handleFriendRemove(w http.ResponseWriter, r *http.Request, callerID primitive.ObjectID, _ *auth.Claims) {
	ctx := r.Context()

	friendID, err := primitive.ObjectIDFromHex(mux.Vars(r)["friendId"])
	if err != nil {
		writeMessage(w, http.StatusBadRequest, false, "Invalid friend id.")
		return
	}

	err = s.data.Players.UpdateOne(ctx, store.ByID(callerID),
		store.NewUpdate().Pull("friends", friendID))
	if err == nil {
		err = s.data.Players.UpdateOne(ctx, store.ByID(friendID),
			store.NewUpdate().Pull("friends", callerID))
	}
	if err != nil {
		s.log.Error("friend remove: writing", zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, false, "An internal server error occurred.")
		return
	}
	writeMessage(w, http.StatusOK, true, "Friend removed.")
}
