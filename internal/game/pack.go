// Package game holds the card-game rules that sit between the surfaces and
// the store: pack opening and account registration/login.
package game

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/hakari-tcg/hakari/internal/data"
	"github.com/hakari-tcg/hakari/internal/model"
	"github.com/hakari-tcg/hakari/internal/store"
)

// PackSize is how many references a single pack draws.
const PackSize = 1

// PackOpeningResult reports one pack open. OpenedReferences and
// OpenedObjects are parallel: OpenedObjects[i] was minted from
// OpenedReferences[i].
type PackOpeningResult struct {
	Success          bool
	Message          string
	OpenedReferences []model.CardReference
	OpenedObjects    []model.CardObject
}

// OpenPackForPlayer draws count distinct random references from the catalog
// and mints one owned card per reference. Surfaces pass PackSize.
//
// The issue number comes from an atomic increment of the reference's
// numAcquired, taken before the object insert. If a later step fails the
// counter has advanced without a matching object, which wastes an issue
// number but never duplicates one.
func OpenPackForPlayer(ctx context.Context, svc *data.Service, player *model.Player, count int) (PackOpeningResult, error) {
	refs, err := svc.CardReferences.FindRandom(ctx, store.NewQuery(), count, false)
	if err != nil {
		return PackOpeningResult{}, errors.Wrap(err, "drawing card references")
	}
	if len(refs) < count {
		return PackOpeningResult{
			Message: "Not enough unique cards in the game to open a pack!",
		}, nil
	}

	result := PackOpeningResult{
		Success: true,
		Message: "Pack opened successfully!",
	}
	for _, ref := range refs {
		updated, err := svc.CardReferences.FindOneAndUpdate(ctx,
			store.ByID(ref.ID), store.NewUpdate().Inc("numAcquired", 1))
		if err != nil {
			return PackOpeningResult{}, errors.Wrap(err, "incrementing acquisition counter")
		}

		obj := model.CardObject{
			CardReferenceID:     ref.ID,
			OwnerID:             player.ID,
			Number:              updated.NumAcquired,
			AttackPoints:        0,
			HealthPoints:        0,
			OwnerHistory:        []primitive.ObjectID{player.ID},
			LastAcquisitionDate: time.Now(),
		}
		objID, err := svc.CardObjects.InsertOne(ctx, obj)
		if err != nil {
			return PackOpeningResult{}, errors.Wrap(err, "inserting card object")
		}
		obj.ID = objID

		err = svc.Players.UpdateOne(ctx, store.ByID(player.ID),
			store.NewUpdate().Push("cards", objID))
		if err != nil {
			return PackOpeningResult{}, errors.Wrap(err, "appending to inventory")
		}

		result.OpenedReferences = append(result.OpenedReferences, *updated)
		result.OpenedObjects = append(result.OpenedObjects, obj)
	}
	return result, nil
}
