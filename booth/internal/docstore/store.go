// Package docstore is the document-database collaborator the booking core
// talks to: flat named collections of JSON documents, equality queries,
// atomic batches, serializable transactions and live query subscriptions.
package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"reflect"
	"time"

	"github.com/pkg/errors"

	"github.com/Astemirdum/booth-service/booth/internal/errs"
)

// Collection names.
const (
	Reservations = "reservations"
	Courses      = "courses"
	Logs         = "reservation_logs"
)

// MaxBatchWrites bounds the writes of one Batch commit or transaction.
const MaxBatchWrites = 500

type Document struct {
	ID        string
	Data      []byte
	CreatedAt time.Time
}

func (d Document) Decode(v any) error {
	return json.Unmarshal(d.Data, v)
}

// Predicate is a field equality test. Values compare as JSON values, so
// 3 and 3.0 match but 3 and "3" do not.
type Predicate struct {
	Field string
	Value any
}

func Eq(field string, value any) Predicate {
	return Predicate{Field: field, Value: value}
}

type Query struct {
	Collection string
	Where      []Predicate
	// NewestFirst orders by document creation time, newest first.
	NewestFirst bool
	Limit       int
}

func NewQuery(collection string, where ...Predicate) Query {
	return Query{Collection: collection, Where: where}
}

type Reader interface {
	Find(ctx context.Context, q Query) ([]Document, error)
	Get(ctx context.Context, collection, id string) (Document, error)
}

// Tx is the view a transaction function gets. Reads see the transaction's
// own writes.
type Tx interface {
	Reader
	Set(collection, id string, data []byte) error
	Delete(collection, id string) error
}

type Batch interface {
	Set(collection, id string, data []byte)
	Delete(collection, id string)
	Len() int
	// Commit applies all operations atomically.
	Commit(ctx context.Context) error
}

type Store interface {
	Reader
	Create(ctx context.Context, collection string, data []byte) (string, error)
	Set(ctx context.Context, collection, id string, data []byte) error
	Delete(ctx context.Context, collection, id string) error
	Batch() Batch
	RunTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// Subscribe calls fn with the current result of q and again after every
	// change to q's collection. No call happens after unsubscribe returns;
	// unsubscribe must not be called from inside fn.
	Subscribe(ctx context.Context, q Query, fn func([]Document)) (unsubscribe func(), err error)
	Close() error
}

type op struct {
	collection string
	id         string
	data       []byte // nil deletes
}

func checkBatchSize(n int) error {
	if n > MaxBatchWrites {
		return errors.Wrapf(errs.ErrBatchTooLarge, "%d writes, limit %d", n, MaxBatchWrites)
	}
	return nil
}

// matches evaluates q's predicates against a decoded document.
func matches(fields map[string]any, where []normalized) bool {
	for _, p := range where {
		v, ok := fields[p.field]
		if !ok || !reflect.DeepEqual(v, p.value) {
			return false
		}
	}
	return true
}

type normalized struct {
	field string
	value any
}

// normalize round-trips predicate values through JSON so they compare with
// decoded document fields.
func normalize(where []Predicate) ([]normalized, error) {
	out := make([]normalized, 0, len(where))
	for _, p := range where {
		b, err := json.Marshal(p.Value)
		if err != nil {
			return nil, errors.Wrapf(err, "predicate %s", p.Field)
		}
		var v any
		dec := json.NewDecoder(bytes.NewReader(b))
		if err := dec.Decode(&v); err != nil {
			return nil, errors.Wrapf(err, "predicate %s", p.Field)
		}
		out = append(out, normalized{field: p.Field, value: v})
	}
	return out, nil
}

func validJSONObject(data []byte) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return errors.Wrap(err, "document must be a JSON object")
	}
	return nil
}
