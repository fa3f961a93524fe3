package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type creature struct {
	ID    primitive.ObjectID   `bson:"_id,omitempty"`
	Name  string               `bson:"name"`
	Tier  int32                `bson:"tier"`
	Tags  []string             `bson:"tags"`
	Owner primitive.ObjectID   `bson:"owner,omitempty"`
	Seen  []primitive.ObjectID `bson:"seen"`
}

func newCreatureCollection(t *testing.T) Typed[creature] {
	t.Helper()
	db := NewMemoryDatabase()
	return NewTyped[creature](db.Collection("creatures"))
}

func seedCreatures(t *testing.T, coll Typed[creature], creatures ...creature) []primitive.ObjectID {
	t.Helper()
	ids := make([]primitive.ObjectID, 0, len(creatures))
	for _, c := range creatures {
		id, err := coll.InsertOne(context.Background(), c)
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return ids
}

func TestMemoryInsertAndFindOne(t *testing.T) {
	coll := newCreatureCollection(t)
	ctx := context.Background()

	ids := seedCreatures(t, coll, creature{Name: "Luffy", Tier: 3, Tags: []string{"pirate"}})

	found, err := coll.FindOne(ctx, ByID(ids[0]))
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Luffy", found.Name)
	assert.Equal(t, int32(3), found.Tier)
	assert.Equal(t, ids[0], found.ID)

	missing, err := coll.FindOne(ctx, ByID(primitive.NewObjectID()))
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMemoryFilterOperators(t *testing.T) {
	coll := newCreatureCollection(t)
	ctx := context.Background()

	seedCreatures(t, coll,
		creature{Name: "Luffy", Tier: 3, Tags: []string{"pirate", "captain"}},
		creature{Name: "Zoro", Tier: 2, Tags: []string{"pirate"}},
		creature{Name: "Nami", Tier: 1},
	)

	byTier, err := coll.Find(ctx, NewQuery().Gte("tier", 2))
	require.NoError(t, err)
	assert.Len(t, byTier, 2)

	notLuffy, err := coll.Find(ctx, NewQuery().Ne("name", "Luffy"))
	require.NoError(t, err)
	assert.Len(t, notLuffy, 2)

	named, err := coll.Find(ctx, NewQuery().In("name", []string{"Zoro", "Nami"}))
	require.NoError(t, err)
	assert.Len(t, named, 2)

	// Array field matches a scalar when any element equals it.
	captains, err := coll.Find(ctx, NewQuery().Eq("tags", "captain"))
	require.NoError(t, err)
	require.Len(t, captains, 1)
	assert.Equal(t, "Luffy", captains[0].Name)

	insensitive, err := coll.Find(ctx, NewQuery().Regex("name", "luf", "i"))
	require.NoError(t, err)
	require.Len(t, insensitive, 1)
	assert.Equal(t, "Luffy", insensitive[0].Name)

	either, err := coll.Find(ctx, NewQuery().Or(
		NewQuery().Eq("name", "Nami"),
		NewQuery().Eq("name", "Zoro"),
	))
	require.NoError(t, err)
	assert.Len(t, either, 2)
}

func TestMemorySetAndInc(t *testing.T) {
	coll := newCreatureCollection(t)
	ctx := context.Background()

	ids := seedCreatures(t, coll, creature{Name: "Luffy", Tier: 1})

	require.NoError(t, coll.UpdateOne(ctx, ByID(ids[0]), NewUpdate().Set("name", "Monkey D. Luffy")))
	require.NoError(t, coll.UpdateOne(ctx, ByID(ids[0]), NewUpdate().Inc("tier", 2)))

	found, err := coll.FindOne(ctx, ByID(ids[0]))
	require.NoError(t, err)
	assert.Equal(t, "Monkey D. Luffy", found.Name)
	assert.Equal(t, int32(3), found.Tier)
}

func TestMemoryArrayOperators(t *testing.T) {
	coll := newCreatureCollection(t)
	ctx := context.Background()

	ids := seedCreatures(t, coll, creature{Name: "Luffy"})
	other := primitive.NewObjectID()

	require.NoError(t, coll.UpdateOne(ctx, ByID(ids[0]), NewUpdate().Push("seen", other)))
	require.NoError(t, coll.UpdateOne(ctx, ByID(ids[0]), NewUpdate().Push("seen", other)))

	found, err := coll.FindOne(ctx, ByID(ids[0]))
	require.NoError(t, err)
	assert.Len(t, found.Seen, 2)

	// addToSet is idempotent where push is not.
	require.NoError(t, coll.UpdateOne(ctx, ByID(ids[0]), NewUpdate().AddToSet("seen", other)))
	found, err = coll.FindOne(ctx, ByID(ids[0]))
	require.NoError(t, err)
	assert.Len(t, found.Seen, 2)

	// pull removes every occurrence.
	require.NoError(t, coll.UpdateOne(ctx, ByID(ids[0]), NewUpdate().Pull("seen", other)))
	found, err = coll.FindOne(ctx, ByID(ids[0]))
	require.NoError(t, err)
	assert.Empty(t, found.Seen)

	// pulling again is a no-op.
	require.NoError(t, coll.UpdateOne(ctx, ByID(ids[0]), NewUpdate().Pull("seen", other)))
}

func TestMemoryDottedPathSet(t *testing.T) {
	db := NewMemoryDatabase()
	type holder struct {
		ID    primitive.ObjectID `bson:"_id,omitempty"`
		Decks [][]string         `bson:"decks"`
	}
	coll := NewTyped[holder](db.Collection("holders"))
	ctx := context.Background()

	id, err := coll.InsertOne(ctx, holder{Decks: [][]string{{}, {}, {}}})
	require.NoError(t, err)

	require.NoError(t, coll.UpdateOne(ctx, ByID(id), NewUpdate().Set("decks.1", []string{"a", "b"})))

	found, err := coll.FindOne(ctx, ByID(id))
	require.NoError(t, err)
	assert.Empty(t, found.Decks[0])
	assert.Equal(t, []string{"a", "b"}, found.Decks[1])
	assert.Empty(t, found.Decks[2])
}

func TestMemoryFindOneAndUpdate(t *testing.T) {
	coll := newCreatureCollection(t)
	ctx := context.Background()

	ids := seedCreatures(t, coll, creature{Name: "Luffy", Tier: 0})

	// Post-image semantics: the returned document reflects the update.
	updated, err := coll.FindOneAndUpdate(ctx, ByID(ids[0]), NewUpdate().Inc("tier", 1))
	require.NoError(t, err)
	assert.Equal(t, int32(1), updated.Tier)

	updated, err = coll.FindOneAndUpdate(ctx, ByID(ids[0]), NewUpdate().Inc("tier", 1))
	require.NoError(t, err)
	assert.Equal(t, int32(2), updated.Tier)

	_, err = coll.FindOneAndUpdate(ctx, ByID(primitive.NewObjectID()), NewUpdate().Inc("tier", 1))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryReplaceOne(t *testing.T) {
	coll := newCreatureCollection(t)
	ctx := context.Background()

	ids := seedCreatures(t, coll, creature{Name: "Luffy", Tier: 1})

	require.NoError(t, coll.ReplaceOne(ctx, ByID(ids[0]), creature{Name: "Zoro", Tier: 2}))

	found, err := coll.FindOne(ctx, ByID(ids[0]))
	require.NoError(t, err)
	assert.Equal(t, "Zoro", found.Name)
	assert.Equal(t, ids[0], found.ID, "replacement keeps the original id")
}

func TestMemoryFindRandom(t *testing.T) {
	coll := newCreatureCollection(t)
	ctx := context.Background()

	seedCreatures(t, coll,
		creature{Name: "Luffy"},
		creature{Name: "Zoro"},
		creature{Name: "Nami"},
	)

	// Without duplicates a draw never repeats a document.
	drawn, err := coll.FindRandom(ctx, NewQuery(), 3, false)
	require.NoError(t, err)
	require.Len(t, drawn, 3)
	names := map[string]bool{}
	for _, c := range drawn {
		names[c.Name] = true
	}
	assert.Len(t, names, 3)

	// Asking for more than exist yields what exists.
	drawn, err = coll.FindRandom(ctx, NewQuery(), 10, false)
	require.NoError(t, err)
	assert.Len(t, drawn, 3)

	// With duplicates the draw always fills the requested count.
	drawn, err = coll.FindRandom(ctx, NewQuery(), 10, true)
	require.NoError(t, err)
	assert.Len(t, drawn, 10)

	// An empty match yields an empty draw.
	drawn, err = coll.FindRandom(ctx, NewQuery().Eq("name", "Chopper"), 1, false)
	require.NoError(t, err)
	assert.Empty(t, drawn)
}
