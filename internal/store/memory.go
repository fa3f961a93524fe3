package store

import (
	"bytes"
	"context"
	"math/rand/v2"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryDatabase is an in-process Database backend. It evaluates the same
// operator set the mongo backend sends over the wire, against bson.M
// documents, and is used by tests and by `store.driver=memory` local runs.
type MemoryDatabase struct {
	mu          sync.Mutex
	collections map[string]*memoryCollection
}

// NewMemoryDatabase returns an empty in-memory database.
func NewMemoryDatabase() *MemoryDatabase {
	return &MemoryDatabase{collections: make(map[string]*memoryCollection)}
}

func (m *MemoryDatabase) Collection(name string) Collection {
	m.mu.Lock()
	defer m.mu.Unlock()
	coll, ok := m.collections[name]
	if !ok {
		coll = &memoryCollection{}
		m.collections[name] = coll
	}
	return coll
}

func (m *MemoryDatabase) Close(ctx context.Context) error {
	return nil
}

type memoryCollection struct {
	mu   sync.Mutex
	docs []bson.M
}

func (c *memoryCollection) InsertOne(ctx context.Context, doc interface{}) (primitive.ObjectID, error) {
	m, err := toDocument(doc)
	if err != nil {
		return primitive.NilObjectID, errors.Wrap(err, "encoding document")
	}

	id, ok := m["_id"].(primitive.ObjectID)
	if !ok || id.IsZero() {
		id = primitive.NewObjectID()
		m["_id"] = id
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.docs = append(c.docs, m)
	return id, nil
}

func (c *memoryCollection) FindOne(ctx context.Context, q Query, out interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, doc := range c.docs {
		if matchFilter(doc, q.Filter()) {
			return decodeDoc(doc, out)
		}
	}
	return ErrNotFound
}

func (c *memoryCollection) Find(ctx context.Context, q Query, out interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	raws, err := c.matchingRaw(q)
	if err != nil {
		return err
	}
	return decodeDocs(raws, out)
}

func (c *memoryCollection) FindRandom(ctx context.Context, q Query, count int, allowDuplicates bool, out interface{}) error {
	if count <= 0 {
		return errors.Errorf("invalid sample size %d", count)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	matched, err := c.matchingRaw(q)
	if err != nil {
		return err
	}

	var sample []bson.Raw
	if allowDuplicates {
		if len(matched) > 0 {
			sample = make([]bson.Raw, 0, count)
			for i := 0; i < count; i++ {
				sample = append(sample, matched[rand.IntN(len(matched))])
			}
		}
	} else {
		rand.Shuffle(len(matched), func(i, j int) {
			matched[i], matched[j] = matched[j], matched[i]
		})
		if len(matched) > count {
			matched = matched[:count]
		}
		sample = matched
	}
	return decodeDocs(sample, out)
}

func (c *memoryCollection) UpdateOne(ctx context.Context, q Query, u Update) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, doc := range c.docs {
		if matchFilter(doc, q.Filter()) {
			return applyUpdate(doc, u)
		}
	}
	return nil
}

func (c *memoryCollection) FindOneAndUpdate(ctx context.Context, q Query, u Update, out interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, doc := range c.docs {
		if matchFilter(doc, q.Filter()) {
			if err := applyUpdate(doc, u); err != nil {
				return err
			}
			return decodeDoc(doc, out)
		}
	}
	return ErrNotFound
}

func (c *memoryCollection) ReplaceOne(ctx context.Context, q Query, doc interface{}) error {
	replacement, err := toDocument(doc)
	if err != nil {
		return errors.Wrap(err, "encoding replacement")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for i, existing := range c.docs {
		if matchFilter(existing, q.Filter()) {
			replacement["_id"] = existing["_id"]
			c.docs[i] = replacement
			return nil
		}
	}
	return nil
}

func (c *memoryCollection) matchingRaw(q Query) ([]bson.Raw, error) {
	var raws []bson.Raw
	for _, doc := range c.docs {
		if matchFilter(doc, q.Filter()) {
			raw, err := bson.Marshal(doc)
			if err != nil {
				return nil, errors.Wrap(err, "encoding document")
			}
			raws = append(raws, raw)
		}
	}
	return raws, nil
}

func decodeDoc(doc bson.M, out interface{}) error {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "encoding document")
	}
	return errors.Wrap(bson.Unmarshal(raw, out), "decoding document")
}

// --- filter evaluation ---

func matchFilter(doc bson.M, filter bson.D) bool {
	for _, cond := range filter {
		if cond.Key == "$or" {
			if !matchOr(doc, cond.Value) {
				return false
			}
			continue
		}

		value, present := lookupPath(doc, cond.Key)
		if !matchCondition(value, present, cond.Value) {
			return false
		}
	}
	return true
}

func matchOr(doc bson.M, alternatives interface{}) bool {
	alts, ok := alternatives.(bson.A)
	if !ok {
		return false
	}
	for _, alt := range alts {
		switch sub := alt.(type) {
		case bson.D:
			if matchFilter(doc, sub) {
				return true
			}
		case bson.M:
			if matchFilter(doc, mapToD(sub)) {
				return true
			}
		}
	}
	return false
}

func matchCondition(value interface{}, present bool, cond interface{}) bool {
	switch expr := cond.(type) {
	case primitive.Regex:
		return matchRegex(value, expr)
	case bson.M:
		if isOperatorDoc(mapToD(expr)) {
			return matchOperators(value, present, mapToD(expr))
		}
	case bson.D:
		if isOperatorDoc(expr) {
			return matchOperators(value, present, expr)
		}
	}
	return valuesEqual(value, cond)
}

func isOperatorDoc(d bson.D) bool {
	return len(d) > 0 && strings.HasPrefix(d[0].Key, "$")
}

func matchOperators(value interface{}, present bool, ops bson.D) bool {
	for _, op := range ops {
		switch op.Key {
		case "$ne":
			if valuesEqual(value, op.Value) {
				return false
			}
		case "$in":
			if !containsValue(op.Value, value) {
				return false
			}
		case "$nin":
			if containsValue(op.Value, value) {
				return false
			}
		case "$gt":
			if cmp, ok := compareValues(value, op.Value); !ok || cmp <= 0 {
				return false
			}
		case "$gte":
			if cmp, ok := compareValues(value, op.Value); !ok || cmp < 0 {
				return false
			}
		case "$lt":
			if cmp, ok := compareValues(value, op.Value); !ok || cmp >= 0 {
				return false
			}
		case "$lte":
			if cmp, ok := compareValues(value, op.Value); !ok || cmp > 0 {
				return false
			}
		case "$exists":
			want, _ := op.Value.(bool)
			if present != want {
				return false
			}
		case "$regex":
			re, ok := op.Value.(primitive.Regex)
			if !ok {
				return false
			}
			if !matchRegex(value, re) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func matchRegex(value interface{}, re primitive.Regex) bool {
	s, ok := value.(string)
	if !ok {
		return false
	}
	pattern := re.Pattern
	if strings.Contains(re.Options, "i") {
		pattern = "(?i)" + pattern
	}
	compiled, err := regexp.Compile(pattern)
	if err != nil {
		return false
	}
	return compiled.MatchString(s)
}

func containsValue(list interface{}, value interface{}) bool {
	items, ok := normalizeValue(list).(bson.A)
	if !ok {
		return false
	}
	for _, item := range items {
		if valuesEqual(value, item) {
			return true
		}
	}
	return false
}

// valuesEqual applies document-store equality: numeric types compare by
// value, and an array field equals a scalar if any element does.
func valuesEqual(value, literal interface{}) bool {
	literal = normalizeValue(literal)

	if arr, ok := value.(bson.A); ok {
		if _, literalIsArray := literal.(bson.A); !literalIsArray {
			for _, item := range arr {
				if valuesEqual(item, literal) {
					return true
				}
			}
			return false
		}
	}

	if cmp, ok := compareValues(value, literal); ok {
		return cmp == 0
	}

	ra, erra := bson.Marshal(bson.M{"v": value})
	rb, errb := bson.Marshal(bson.M{"v": literal})
	return erra == nil && errb == nil && bytes.Equal(ra, rb)
}

// compareValues orders two values when they share a comparable kind.
func compareValues(a, b interface{}) (int, bool) {
	a, b = normalizeValue(a), normalizeValue(b)

	if na, ok := asFloat(a); ok {
		if nb, ok := asFloat(b); ok {
			switch {
			case na < nb:
				return -1, true
			case na > nb:
				return 1, true
			}
			return 0, true
		}
		return 0, false
	}

	switch va := a.(type) {
	case string:
		if vb, ok := b.(string); ok {
			return strings.Compare(va, vb), true
		}
	case primitive.ObjectID:
		if vb, ok := b.(primitive.ObjectID); ok {
			return bytes.Compare(va[:], vb[:]), true
		}
	case primitive.DateTime:
		if vb, ok := b.(primitive.DateTime); ok {
			switch {
			case va < vb:
				return -1, true
			case va > vb:
				return 1, true
			}
			return 0, true
		}
	case bool:
		if vb, ok := b.(bool); ok {
			if va == vb {
				return 0, true
			}
			if !va {
				return -1, true
			}
			return 1, true
		}
	}
	return 0, false
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}

// --- path navigation ---

func lookupPath(doc bson.M, path string) (interface{}, bool) {
	segments := strings.Split(path, ".")
	var current interface{} = doc
	for _, seg := range segments {
		switch node := current.(type) {
		case bson.M:
			next, ok := node[seg]
			if !ok {
				return nil, false
			}
			current = next
		case bson.A:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			current = node[idx]
		default:
			return nil, false
		}
	}
	return current, true
}

func setPath(doc bson.M, path string, value interface{}) error {
	segments := strings.Split(path, ".")
	var current interface{} = doc
	for i, seg := range segments {
		last := i == len(segments)-1
		switch node := current.(type) {
		case bson.M:
			if last {
				node[seg] = value
				return nil
			}
			next, ok := node[seg]
			if !ok {
				child := bson.M{}
				node[seg] = child
				next = child
			}
			current = next
		case bson.A:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(node) {
				return errors.Errorf("invalid array position %q in %q", seg, path)
			}
			if last {
				node[idx] = value
				return nil
			}
			current = node[idx]
		default:
			return errors.Errorf("cannot descend into %q at %q", path, seg)
		}
	}
	return nil
}

// --- update evaluation ---

func applyUpdate(doc bson.M, u Update) error {
	for _, op := range u.Document() {
		fields, ok := op.Value.(bson.D)
		if !ok {
			return errors.Errorf("malformed update operator %s", op.Key)
		}
		for _, field := range fields {
			if err := applyOperator(doc, op.Key, field.Key, field.Value); err != nil {
				return err
			}
		}
	}
	return nil
}

func applyOperator(doc bson.M, op, path string, value interface{}) error {
	switch op {
	case "$set":
		return setPath(doc, path, normalizeValue(value))

	case "$inc":
		delta, ok := asFloat(normalizeValue(value))
		if !ok {
			return errors.Errorf("$inc delta %v is not numeric", value)
		}
		current, _ := lookupPath(doc, path)
		base, _ := asFloat(current)
		return setPath(doc, path, int64(base+delta))

	case "$push":
		arr := pathArray(doc, path)
		return setPath(doc, path, append(arr, normalizeValue(value)))

	case "$pull":
		arr := pathArray(doc, path)
		kept := make(bson.A, 0, len(arr))
		for _, item := range arr {
			if !valuesEqual(item, value) {
				kept = append(kept, item)
			}
		}
		return setPath(doc, path, kept)

	case "$addToSet":
		arr := pathArray(doc, path)
		for _, item := range arr {
			if valuesEqual(item, value) {
				return nil
			}
		}
		return setPath(doc, path, append(arr, normalizeValue(value)))
	}
	return errors.Errorf("unsupported update operator %s", op)
}

func pathArray(doc bson.M, path string) bson.A {
	current, ok := lookupPath(doc, path)
	if !ok {
		return bson.A{}
	}
	arr, ok := current.(bson.A)
	if !ok {
		return bson.A{}
	}
	return arr
}

func mapToD(m bson.M) bson.D {
	d := make(bson.D, 0, len(m))
	for k, v := range m {
		d = append(d, bson.E{Key: k, Value: v})
	}
	return d
}
