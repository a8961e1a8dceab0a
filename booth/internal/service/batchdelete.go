package service

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/booth-service/booth/internal/docstore"
	"github.com/Astemirdum/booth-service/booth/internal/events"
	"github.com/Astemirdum/booth-service/booth/internal/model"
	"github.com/Astemirdum/booth-service/booth/internal/repository"
)

// BatchDeleter removes every reservation of a batch, in atomic chunks.
type BatchDeleter struct {
	repo      repository.Repository
	policy    TimeoutPolicy
	publisher events.Publisher
	log       *zap.Logger
}

func NewBatchDeleter(repo repository.Repository, policy TimeoutPolicy, publisher events.Publisher, log *zap.Logger) *BatchDeleter {
	return &BatchDeleter{
		repo:      repo,
		policy:    policy,
		publisher: publisher,
		log:       log.Named("batchdelete"),
	}
}

func (d *BatchDeleter) DeleteBatch(ctx context.Context, batchID string) (int, error) {
	if batchID == "" {
		return 0, errors.New("delete batch: empty batch id")
	}
	return d.DeleteByRef(ctx, model.ByID{BatchID: batchID})
}

// DeleteByRef deletes the reservations ref resolves to. ByShape exists for
// logs written before reservations carried a batch id.
func (d *BatchDeleter) DeleteByRef(ctx context.Context, ref model.BatchRef) (int, error) {
	members, err := d.resolve(ctx, ref)
	if err != nil {
		return 0, err
	}
	n, err := d.deleteIDs(ctx, ids(members))
	batchID := ""
	if byID, ok := ref.(model.ByID); ok {
		batchID = byID.BatchID
	}
	d.log.Info("batch deleted", zap.String("batchId", batchID), zap.Int("deleted", n), zap.Error(err))
	if n > 0 {
		if perr := d.publisher.Publish(ctx, events.Event{
			Kind:    events.BatchDeleted,
			BatchID: batchID,
			Deleted: n,
			At:      time.Now(),
		}); perr != nil {
			d.log.Warn("publish event", zap.Error(perr))
		}
	}
	return n, err
}

func (d *BatchDeleter) resolve(ctx context.Context, ref model.BatchRef) ([]model.Reservation, error) {
	var members []model.Reservation
	err := d.policy.Do(ctx, OpRead, func(ctx context.Context) error {
		var err error
		switch r := ref.(type) {
		case model.ByID:
			members, err = d.repo.ReservationsInBatch(ctx, d.repo.Store(), r.BatchID)
		case model.ByShape:
			members, err = d.repo.ReservationsByShape(ctx, d.repo.Store(), r)
		default:
			err = errors.Errorf("unknown batch ref %T", ref)
		}
		return err
	})
	return members, err
}

// deleteIDs returns how many deletions were confirmed before the first
// failing chunk. Deletes are idempotent, so the whole call can be retried.
func (d *BatchDeleter) deleteIDs(ctx context.Context, ids []string) (int, error) {
	deleted := 0
	for _, chunk := range chunks(ids, docstore.MaxBatchWrites) {
		err := d.policy.Do(ctx, OpWrite, func(ctx context.Context) error {
			return d.repo.DeleteReservations(ctx, chunk)
		})
		if err != nil {
			return deleted, errors.Wrapf(err, "delete %d reservations", len(chunk))
		}
		deleted += len(chunk)
		reservationsDeleted.Add(float64(len(chunk)))
	}
	return deleted, nil
}
