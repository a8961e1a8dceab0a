package service

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/Astemirdum/booth-service/booth/internal/docstore"
	"github.com/Astemirdum/booth-service/booth/internal/errs"
	"github.com/Astemirdum/booth-service/booth/internal/model"
	"github.com/Astemirdum/booth-service/booth/internal/repository"
)

type Snapshot struct {
	Date         model.Date          `json:"date"`
	Floor        model.Floor         `json:"floor"`
	Generation   uint64              `json:"generation"`
	Reservations []model.Reservation `json:"reservations"`
}

// Feed holds one live subscription for a viewing session. Switch replaces
// it; once Switch or Close returns no callback of an earlier subscription runs.
type Feed struct {
	store docstore.Store
	log   *zap.Logger

	gen         atomic.Uint64
	mu          sync.Mutex
	unsubscribe func()
}

func NewFeed(store docstore.Store, log *zap.Logger) *Feed {
	return &Feed{store: store, log: log.Named("feed")}
}

func (f *Feed) Switch(ctx context.Context, date model.Date, floor model.Floor, fn func(Snapshot)) error {
	if !floor.Valid() {
		return errs.NewValidation(errs.CodeInvalidFloor, "unknown floor %q", floor)
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	gen := f.gen.Add(1)
	f.stop()

	q := docstore.NewQuery(docstore.Reservations,
		docstore.Eq("date", date.String()),
		docstore.Eq("floor", string(floor)),
	)
	unsubscribe, err := f.store.Subscribe(ctx, q, func(docs []docstore.Document) {
		if f.gen.Load() != gen {
			return
		}
		rs := make([]model.Reservation, 0, len(docs))
		for _, doc := range docs {
			r, err := repository.DecodeReservation(doc)
			if err != nil {
				f.log.Warn("skip malformed reservation", zap.String("id", doc.ID), zap.Error(err))
				continue
			}
			rs = append(rs, r)
		}
		SortReservations(rs)
		fn(Snapshot{Date: date, Floor: floor, Generation: gen, Reservations: rs})
	})
	if err != nil {
		return err
	}
	f.unsubscribe = unsubscribe
	return nil
}

func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gen.Add(1)
	f.stop()
}

func (f *Feed) stop() {
	if f.unsubscribe != nil {
		f.unsubscribe()
		f.unsubscribe = nil
	}
}

// SortReservations orders by seat, then start time.
func SortReservations(rs []model.Reservation) {
	sort.SliceStable(rs, func(i, j int) bool {
		if rs[i].SeatNo != rs[j].SeatNo {
			return rs[i].SeatNo < rs[j].SeatNo
		}
		return rs[i].StartMin < rs[j].StartMin
	})
}
