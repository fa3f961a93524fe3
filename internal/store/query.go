package store

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Query is a composable document filter. The zero value matches everything.
// Builder methods return a copy, so partial queries can be reused safely.
type Query struct {
	filter bson.D
}

// NewQuery returns an empty query.
func NewQuery() Query {
	return Query{}
}

// ByID matches a document by its object id.
func ByID(id primitive.ObjectID) Query {
	return NewQuery().Eq("_id", id)
}

func (q Query) with(e bson.E) Query {
	d := make(bson.D, len(q.filter), len(q.filter)+1)
	copy(d, q.filter)
	q.filter = append(d, e)
	return q
}

// Eq matches documents whose field equals value.
func (q Query) Eq(field string, value interface{}) Query {
	return q.with(bson.E{Key: field, Value: value})
}

// Ne matches documents whose field does not equal value.
func (q Query) Ne(field string, value interface{}) Query {
	return q.with(bson.E{Key: field, Value: bson.M{"$ne": value}})
}

// In matches documents whose field is any of values.
func (q Query) In(field string, values interface{}) Query {
	return q.with(bson.E{Key: field, Value: bson.M{"$in": values}})
}

// Nin matches documents whose field is none of values.
func (q Query) Nin(field string, values interface{}) Query {
	return q.with(bson.E{Key: field, Value: bson.M{"$nin": values}})
}

// Gt matches field > value.
func (q Query) Gt(field string, value interface{}) Query {
	return q.with(bson.E{Key: field, Value: bson.M{"$gt": value}})
}

// Gte matches field >= value.
func (q Query) Gte(field string, value interface{}) Query {
	return q.with(bson.E{Key: field, Value: bson.M{"$gte": value}})
}

// Lt matches field < value.
func (q Query) Lt(field string, value interface{}) Query {
	return q.with(bson.E{Key: field, Value: bson.M{"$lt": value}})
}

// Lte matches field <= value.
func (q Query) Lte(field string, value interface{}) Query {
	return q.with(bson.E{Key: field, Value: bson.M{"$lte": value}})
}

// Exists matches documents where the field is present (or absent).
func (q Query) Exists(field string, exists bool) Query {
	return q.with(bson.E{Key: field, Value: bson.M{"$exists": exists}})
}

// Regex matches the field against a regular expression. Flags follow the
// document store's convention ("i" for case-insensitive).
func (q Query) Regex(field, pattern, flags string) Query {
	return q.with(bson.E{Key: field, Value: primitive.Regex{Pattern: pattern, Options: flags}})
}

// Or matches documents satisfying any of the subqueries.
func (q Query) Or(subqueries ...Query) Query {
	filters := make(bson.A, 0, len(subqueries))
	for _, sub := range subqueries {
		filters = append(filters, sub.Filter())
	}
	return q.with(bson.E{Key: "$or", Value: filters})
}

// Filter returns the query as a driver filter document.
func (q Query) Filter() bson.D {
	if q.filter == nil {
		return bson.D{}
	}
	return q.filter
}
