// Package model defines the persisted entities of the Hakari card game.
//
// Field names here are the canonical document-store field names; the bson
// tags are the single source of truth for the persisted layout.
package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Collection names inside the game database. The ability collection keeps
// its historical hyphenated name.
const (
	CollectionPlayers             = "players"
	CollectionCardReferences      = "card_references"
	CollectionCardObjects         = "card_objects"
	CollectionAbilityReferences   = "card-abilities"
	CollectionCharacterReferences = "character_references"
)

// DeckCount is the number of decks every player owns. Players created
// before the deck system are repaired up to this count on first read.
const DeckCount = 3

// Player is the account and game-state root. Created on first authenticated
// access, never deleted.
type Player struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UUID         string             `bson:"uuid,omitempty" json:"uuid,omitempty"`
	DiscordID    int64              `bson:"discordId,omitempty" json:"discordId,omitempty"`
	DisplayName  string             `bson:"displayName,omitempty" json:"displayName"`
	Email        string             `bson:"email,omitempty" json:"email"`
	PasswordHash string             `bson:"passwordHash,omitempty" json:"-"`

	Cards []primitive.ObjectID   `bson:"cards" json:"cards"`
	Decks [][]primitive.ObjectID `bson:"decks" json:"decks"`
	Items []primitive.ObjectID   `bson:"items" json:"items"`

	PityScore          int32     `bson:"pityScore" json:"pityScore"`
	Essence            int64     `bson:"essence" json:"essence"`
	DailyBattleTimer   time.Time `bson:"dailyBattleTimer,omitempty" json:"dailyBattleTimer,omitempty"`
	DailyFreePackTimer time.Time `bson:"dailyFreePackTimer,omitempty" json:"dailyFreePackTimer,omitempty"`

	Friends                []primitive.ObjectID `bson:"friends" json:"friends"`
	FriendRequestsSent     []primitive.ObjectID `bson:"friendRequestsSent" json:"friendRequestsSent"`
	FriendRequestsReceived []primitive.ObjectID `bson:"friendRequestsReceived" json:"friendRequestsReceived"`
}

// NewPlayer returns a Player with all list fields initialized so inserted
// documents carry empty arrays rather than nulls.
func NewPlayer() Player {
	return Player{
		Cards:                  []primitive.ObjectID{},
		Decks:                  [][]primitive.ObjectID{},
		Items:                  []primitive.ObjectID{},
		Friends:                []primitive.ObjectID{},
		FriendRequestsSent:     []primitive.ObjectID{},
		FriendRequestsReceived: []primitive.ObjectID{},
	}
}

// CardReference is a catalog entry, shared across the fleet. NumAcquired is
// monotonic and only ever moves through the pack-open increment.
type CardReference struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UUID          string             `bson:"uuid,omitempty" json:"uuid,omitempty"`
	Name          string             `bson:"name" json:"name"`
	CharacterID   primitive.ObjectID `bson:"characterId,omitempty" json:"characterId"`
	SetID         primitive.ObjectID `bson:"setId,omitempty" json:"setId"`
	Tier          Tier               `bson:"tier" json:"tier"`
	Image         string             `bson:"image,omitempty" json:"image,omitempty"`
	AbilityID     primitive.ObjectID `bson:"abilityId,omitempty" json:"abilityId,omitempty"`
	NumAcquired   int32              `bson:"numAcquired" json:"numAcquired"`
	LastSalePrice int32              `bson:"lastSalePrice" json:"lastSalePrice"`
}

// CardObject is a single owned instance of a CardReference. Number is the
// issue number: the value of the reference's NumAcquired immediately after
// this card was minted, so (cardReferenceId, number) is unique.
type CardObject struct {
	ID                  primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	UUID                string               `bson:"uuid,omitempty" json:"uuid,omitempty"`
	CardReferenceID     primitive.ObjectID   `bson:"cardReferenceId" json:"cardReferenceId"`
	OwnerID             primitive.ObjectID   `bson:"ownerId" json:"ownerId"`
	Number              int32                `bson:"number" json:"number"`
	AttackPoints        int32                `bson:"attackPoints" json:"attackPoints"`
	HealthPoints        int32                `bson:"healthPoints" json:"healthPoints"`
	CustomBorder        string               `bson:"customBorder,omitempty" json:"customBorder,omitempty"`
	OwnerHistory        []primitive.ObjectID `bson:"ownerHistory" json:"ownerHistory"`
	LastAcquisitionDate time.Time            `bson:"lastAcquisitionDate" json:"lastAcquisitionDate"`
}

// AbilityReference describes a card ability. Read-only from the server core.
type AbilityReference struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UUID        string             `bson:"uuid,omitempty" json:"uuid,omitempty"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
}

// CharacterReference is the source-material character a card depicts.
// Read-only from the server core.
type CharacterReference struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	UUID      string               `bson:"uuid,omitempty" json:"uuid,omitempty"`
	MalID     int32                `bson:"mal_id,omitempty" json:"mal_id,omitempty"`
	Name      string               `bson:"name" json:"name"`
	NameKanji string               `bson:"name_kanji,omitempty" json:"name_kanji,omitempty"`
	Favorites int32                `bson:"favorites,omitempty" json:"favorites,omitempty"`
	About     string               `bson:"about,omitempty" json:"about,omitempty"`
	Image     string               `bson:"image,omitempty" json:"image,omitempty"`
	Nicknames []string             `bson:"nicknames,omitempty" json:"nicknames,omitempty"`
	AnimeRefs []primitive.ObjectID `bson:"anime_refs,omitempty" json:"anime_refs,omitempty"`
	MangaRefs []primitive.ObjectID `bson:"manga_refs,omitempty" json:"manga_refs,omitempty"`
}

// AnimeReference is a source-material series entry.
type AnimeReference struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UUID     string             `bson:"uuid,omitempty" json:"uuid,omitempty"`
	MalID    int32              `bson:"mal_id,omitempty" json:"mal_id,omitempty"`
	URL      string             `bson:"url,omitempty" json:"url,omitempty"`
	Title    string             `bson:"title" json:"title"`
	Episodes int32              `bson:"episodes,omitempty" json:"episodes,omitempty"`
	Status   string             `bson:"status,omitempty" json:"status,omitempty"`
	Score    float64            `bson:"score,omitempty" json:"score,omitempty"`
	Synopsis string             `bson:"synopsis,omitempty" json:"synopsis,omitempty"`
}

// MangaReference is a source-material manga entry.
type MangaReference struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UUID     string             `bson:"uuid,omitempty" json:"uuid,omitempty"`
	MalID    int32              `bson:"mal_id,omitempty" json:"mal_id,omitempty"`
	URL      string             `bson:"url,omitempty" json:"url,omitempty"`
	Title    string             `bson:"title" json:"title"`
	Chapters int32              `bson:"chapters,omitempty" json:"chapters,omitempty"`
	Volumes  int32              `bson:"volumes,omitempty" json:"volumes,omitempty"`
	Status   string             `bson:"status,omitempty" json:"status,omitempty"`
	Score    float64            `bson:"score,omitempty" json:"score,omitempty"`
	Synopsis string             `bson:"synopsis,omitempty" json:"synopsis,omitempty"`
}
