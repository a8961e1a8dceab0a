package docstore

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/booth-service/booth/internal/errs"
)

var _ Store = (*Memory)(nil)

type entry struct {
	data    []byte
	created time.Time
	seq     uint64
}

// Memory is an in-process Store. A transaction holds the write lock for its
// whole run, which makes transactions serializable.
type Memory struct {
	mu   sync.RWMutex
	cols map[string]map[string]entry
	seq  uint64
	hub  *hub
	now  func() time.Time
}

func NewMemory(log *zap.Logger) *Memory {
	m := &Memory{
		cols: make(map[string]map[string]entry),
		now:  time.Now,
	}
	m.hub = newHub(log.Named("memstore"))
	return m
}

func (m *Memory) Find(ctx context.Context, q Query) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return collect(m.cols[q.Collection], q)
}

func (m *Memory) Get(ctx context.Context, collection, id string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.cols[collection][id]
	if !ok {
		return Document{}, errors.Wrapf(errs.ErrNotFound, "%s/%s", collection, id)
	}
	return Document{ID: id, Data: e.data, CreatedAt: e.created}, nil
}

func (m *Memory) Create(ctx context.Context, collection string, data []byte) (string, error) {
	id := uuid.NewString()
	if err := m.Set(ctx, collection, id, data); err != nil {
		return "", err
	}
	return id, nil
}

func (m *Memory) Set(ctx context.Context, collection, id string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validJSONObject(data); err != nil {
		return err
	}
	m.mu.Lock()
	m.put(collection, id, data)
	m.mu.Unlock()
	m.hub.notify(collection)
	return nil
}

func (m *Memory) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	delete(m.cols[collection], id)
	m.mu.Unlock()
	m.hub.notify(collection)
	return nil
}

func (m *Memory) Batch() Batch {
	return &memBatch{m: m}
}

func (m *Memory) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	tx := &memTx{m: m, overlay: make(map[string]map[string]*op)}
	if err := fn(ctx, tx); err != nil {
		m.mu.Unlock()
		return err
	}
	if err := checkBatchSize(len(tx.ops)); err != nil {
		m.mu.Unlock()
		return err
	}
	if err := ctx.Err(); err != nil {
		m.mu.Unlock()
		return err
	}
	collections := m.apply(tx.ops)
	m.mu.Unlock()
	m.hub.notify(collections...)
	return nil
}

func (m *Memory) Subscribe(ctx context.Context, q Query, fn func([]Document)) (func(), error) {
	if q.Collection == "" {
		return nil, errors.New("subscribe: empty collection")
	}
	return m.hub.add(ctx, q, m.Find, fn), nil
}

func (m *Memory) Close() error {
	m.hub.closeAll()
	return nil
}

// put must be called with mu held.
func (m *Memory) put(collection, id string, data []byte) {
	col, ok := m.cols[collection]
	if !ok {
		col = make(map[string]entry)
		m.cols[collection] = col
	}
	if e, ok := col[id]; ok {
		e.data = data
		col[id] = e
		return
	}
	m.seq++
	col[id] = entry{data: data, created: m.now(), seq: m.seq}
}

// apply must be called with mu held.
func (m *Memory) apply(ops []op) []string {
	for _, o := range ops {
		if o.data == nil {
			delete(m.cols[o.collection], o.id)
		} else {
			m.put(o.collection, o.id, o.data)
		}
	}
	return touched(ops)
}

type memBatch struct {
	m   *Memory
	ops []op
}

func (b *memBatch) Set(collection, id string, data []byte) {
	b.ops = append(b.ops, op{collection: collection, id: id, data: data})
}

func (b *memBatch) Delete(collection, id string) {
	b.ops = append(b.ops, op{collection: collection, id: id})
}

func (b *memBatch) Len() int { return len(b.ops) }

func (b *memBatch) Commit(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkBatchSize(len(b.ops)); err != nil {
		return err
	}
	for _, o := range b.ops {
		if o.data != nil {
			if err := validJSONObject(o.data); err != nil {
				return err
			}
		}
	}
	b.m.mu.Lock()
	collections := b.m.apply(b.ops)
	b.m.mu.Unlock()
	b.m.hub.notify(collections...)
	return nil
}

// memTx runs with the store's write lock held by RunTransaction.
type memTx struct {
	m       *Memory
	ops     []op
	overlay map[string]map[string]*op
}

func (tx *memTx) view(collection string) map[string]entry {
	base := tx.m.cols[collection]
	over := tx.overlay[collection]
	if len(over) == 0 {
		return base
	}
	merged := make(map[string]entry, len(base)+len(over))
	for id, e := range base {
		merged[id] = e
	}
	next := tx.m.seq
	for id, o := range over {
		if o.data == nil {
			delete(merged, id)
			continue
		}
		if e, ok := merged[id]; ok {
			e.data = o.data
			merged[id] = e
			continue
		}
		next++
		merged[id] = entry{data: o.data, created: tx.m.now(), seq: next}
	}
	return merged
}

func (tx *memTx) Find(ctx context.Context, q Query) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return collect(tx.view(q.Collection), q)
}

func (tx *memTx) Get(ctx context.Context, collection, id string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	e, ok := tx.view(collection)[id]
	if !ok {
		return Document{}, errors.Wrapf(errs.ErrNotFound, "%s/%s", collection, id)
	}
	return Document{ID: id, Data: e.data, CreatedAt: e.created}, nil
}

func (tx *memTx) Set(collection, id string, data []byte) error {
	if err := validJSONObject(data); err != nil {
		return err
	}
	tx.record(op{collection: collection, id: id, data: data})
	return nil
}

func (tx *memTx) Delete(collection, id string) error {
	tx.record(op{collection: collection, id: id})
	return nil
}

func (tx *memTx) record(o op) {
	tx.ops = append(tx.ops, o)
	over, ok := tx.overlay[o.collection]
	if !ok {
		over = make(map[string]*op)
		tx.overlay[o.collection] = over
	}
	over[o.id] = &o
}

func collect(col map[string]entry, q Query) ([]Document, error) {
	where, err := normalize(q.Where)
	if err != nil {
		return nil, err
	}
	type hit struct {
		doc Document
		seq uint64
	}
	hits := make([]hit, 0)
	for id, e := range col {
		var fields map[string]any
		if err := json.Unmarshal(e.data, &fields); err != nil {
			return nil, errors.Wrapf(err, "decode %s/%s", q.Collection, id)
		}
		if !matches(fields, where) {
			continue
		}
		hits = append(hits, hit{doc: Document{ID: id, Data: e.data, CreatedAt: e.created}, seq: e.seq})
	}
	sort.Slice(hits, func(i, j int) bool {
		if q.NewestFirst {
			return hits[i].seq > hits[j].seq
		}
		return hits[i].seq < hits[j].seq
	})
	if q.Limit > 0 && len(hits) > q.Limit {
		hits = hits[:q.Limit]
	}
	docs := make([]Document, len(hits))
	for i, h := range hits {
		docs[i] = h.doc
	}
	return docs, nil
}
