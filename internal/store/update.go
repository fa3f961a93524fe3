package store

import (
	"go.mongodb.org/mongo-driver/bson"
)

// Update is a composable document mutation. All operators it exposes are
// single-document atomic in the backing store.
type Update struct {
	ops bson.D
}

// NewUpdate returns an empty update.
func NewUpdate() Update {
	return Update{}
}

func (u Update) with(op, field string, value interface{}) Update {
	d := make(bson.D, len(u.ops), len(u.ops)+1)
	copy(d, u.ops)

	for i, e := range d {
		if e.Key == op {
			fields := make(bson.D, len(e.Value.(bson.D)), len(e.Value.(bson.D))+1)
			copy(fields, e.Value.(bson.D))
			d[i].Value = append(fields, bson.E{Key: field, Value: value})
			u.ops = d
			return u
		}
	}

	u.ops = append(d, bson.E{Key: op, Value: bson.D{{Key: field, Value: value}}})
	return u
}

// Set assigns field to value. Dotted paths address nested array positions
// ("decks.0").
func (u Update) Set(field string, value interface{}) Update {
	return u.with("$set", field, value)
}

// Inc atomically adds delta to a numeric field.
func (u Update) Inc(field string, delta int64) Update {
	return u.with("$inc", field, delta)
}

// Push appends value to an array field.
func (u Update) Push(field string, value interface{}) Update {
	return u.with("$push", field, value)
}

// Pull removes every occurrence of value from an array field.
func (u Update) Pull(field string, value interface{}) Update {
	return u.with("$pull", field, value)
}

// AddToSet appends value to an array field unless it is already present.
func (u Update) AddToSet(field string, value interface{}) Update {
	return u.with("$addToSet", field, value)
}

// Empty reports whether the update carries no operations.
func (u Update) Empty() bool {
	return len(u.ops) == 0
}

// Document returns the update as a driver update document.
func (u Update) Document() bson.D {
	return u.ops
}
