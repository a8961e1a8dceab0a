package docstore

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

type fetchFunc func(ctx context.Context, q Query) ([]Document, error)

// hub fans collection change notifications out to live queries. Each
// subscription re-runs its query on its own goroutine; bursts of changes
// coalesce into one snapshot.
type hub struct {
	mu   sync.Mutex
	next uint64
	subs map[uint64]*subscription
	log  *zap.Logger
}

func newHub(log *zap.Logger) *hub {
	return &hub{subs: make(map[uint64]*subscription), log: log}
}

type subscription struct {
	q     Query
	fetch fetchFunc
	fn    func([]Document)
	dirty chan struct{}

	mu     sync.Mutex
	closed bool
	cancel context.CancelFunc
}

func (h *hub) add(ctx context.Context, q Query, fetch fetchFunc, fn func([]Document)) func() {
	ctx, cancel := context.WithCancel(ctx)
	sub := &subscription{
		q:      q,
		fetch:  fetch,
		fn:     fn,
		dirty:  make(chan struct{}, 1),
		cancel: cancel,
	}
	sub.dirty <- struct{}{}

	h.mu.Lock()
	h.next++
	id := h.next
	h.subs[id] = sub
	h.mu.Unlock()

	go sub.run(ctx, h.log)

	var once sync.Once
	return func() {
		once.Do(func() {
			sub.mu.Lock()
			sub.closed = true
			sub.mu.Unlock()
			cancel()
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
		})
	}
}

func (h *hub) notify(collections ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, sub := range h.subs {
		for _, c := range collections {
			if sub.q.Collection == c {
				select {
				case sub.dirty <- struct{}{}:
				default:
				}
				break
			}
		}
	}
}

func (h *hub) closeAll() {
	h.mu.Lock()
	subs := h.subs
	h.subs = make(map[uint64]*subscription)
	h.mu.Unlock()
	for _, sub := range subs {
		sub.mu.Lock()
		sub.closed = true
		sub.mu.Unlock()
		sub.cancel()
	}
}

func (s *subscription) run(ctx context.Context, log *zap.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.dirty:
		}
		docs, err := s.fetch(ctx, s.q)
		if err != nil {
			if ctx.Err() == nil {
				log.Warn("subscription refresh", zap.String("collection", s.q.Collection), zap.Error(err))
			}
			continue
		}
		s.mu.Lock()
		if !s.closed {
			s.fn(docs)
		}
		s.mu.Unlock()
	}
}
