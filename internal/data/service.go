// Package data centralizes the game's collections and the canned queries
// the surfaces share. A single Service is constructed at startup and passed
// into every component that touches the store; there is no global handle.
package data

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/hakari-tcg/hakari/internal/model"
	"github.com/hakari-tcg/hakari/internal/store"
)

// Service exposes the typed collection handles and helper lookups.
type Service struct {
	Players             store.Typed[model.Player]
	CardReferences      store.Typed[model.CardReference]
	CardObjects         store.Typed[model.CardObject]
	AbilityReferences   store.Typed[model.AbilityReference]
	CharacterReferences store.Typed[model.CharacterReference]
}

// NewService builds the collection handles over db.
func NewService(db store.Database) *Service {
	return &Service{
		Players:             store.NewTyped[model.Player](db.Collection(model.CollectionPlayers)),
		CardReferences:      store.NewTyped[model.CardReference](db.Collection(model.CollectionCardReferences)),
		CardObjects:         store.NewTyped[model.CardObject](db.Collection(model.CollectionCardObjects)),
		AbilityReferences:   store.NewTyped[model.AbilityReference](db.Collection(model.CollectionAbilityReferences)),
		CharacterReferences: store.NewTyped[model.CharacterReference](db.Collection(model.CollectionCharacterReferences)),
	}
}

// FindOrCreatePlayerByDiscordID returns the player owning the Discord
// snowflake, provisioning a fresh account on first contact.
func (s *Service) FindOrCreatePlayerByDiscordID(ctx context.Context, discordID int64) (*model.Player, error) {
	player, err := s.Players.FindOne(ctx, store.NewQuery().Eq("discordId", discordID))
	if err != nil {
		return nil, err
	}
	if player != nil {
		return player, nil
	}

	fresh := model.NewPlayer()
	fresh.DiscordID = discordID
	fresh.UUID = uuid.NewString()

	id, err := s.Players.InsertOne(ctx, fresh)
	if err != nil {
		return nil, errors.Wrap(err, "provisioning player")
	}
	fresh.ID = id
	return &fresh, nil
}

// FindPlayerByEmail returns nil when no player has the email.
func (s *Service) FindPlayerByEmail(ctx context.Context, email string) (*model.Player, error) {
	return s.Players.FindOne(ctx, store.NewQuery().Eq("email", email))
}

// FindPlayerByDisplayName returns nil when no player has the name.
func (s *Service) FindPlayerByDisplayName(ctx context.Context, name string) (*model.Player, error) {
	return s.Players.FindOne(ctx, store.NewQuery().Eq("displayName", name))
}

// FindPlayerByID returns nil when the id is unknown.
func (s *Service) FindPlayerByID(ctx context.Context, id primitive.ObjectID) (*model.Player, error) {
	return s.Players.FindOne(ctx, store.ByID(id))
}
