package store

import (
	"reflect"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
)

// decodeDocs unmarshals a batch of raw documents into out, which must be a
// pointer to a slice.
func decodeDocs(docs []bson.Raw, out interface{}) error {
	outv := reflect.ValueOf(out)
	if outv.Kind() != reflect.Ptr || outv.Elem().Kind() != reflect.Slice {
		return errors.Errorf("out must be a pointer to a slice, got %T", out)
	}

	slicev := outv.Elem()
	elemt := slicev.Type().Elem()
	result := reflect.MakeSlice(slicev.Type(), 0, len(docs))
	for _, doc := range docs {
		elem := reflect.New(elemt)
		if err := bson.Unmarshal(doc, elem.Interface()); err != nil {
			return err
		}
		result = reflect.Append(result, elem.Elem())
	}
	slicev.Set(result)
	return nil
}

// toDocument converts an arbitrary value to its document representation via
// a bson round trip, which also deep-copies it.
func toDocument(v interface{}) (bson.M, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// normalizeValue runs a single value through the bson codec so literals
// compare like stored values (time.Time becomes DateTime, ints settle into
// their wire widths, structs become bson.M).
func normalizeValue(v interface{}) interface{} {
	raw, err := bson.Marshal(bson.M{"v": v})
	if err != nil {
		return v
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return v
	}
	return m["v"]
}
