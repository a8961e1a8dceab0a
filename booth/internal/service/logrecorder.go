package service

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/booth-service/booth/internal/events"
	"github.com/Astemirdum/booth-service/booth/internal/model"
	"github.com/Astemirdum/booth-service/booth/internal/repository"
)

// LogRecorder keeps one log per batch. The log id is the batch id, so a
// retried Record rewrites the same document.
type LogRecorder struct {
	repo      repository.Repository
	policy    TimeoutPolicy
	publisher events.Publisher
	now       func() time.Time
	log       *zap.Logger
}

func NewLogRecorder(repo repository.Repository, policy TimeoutPolicy, publisher events.Publisher, log *zap.Logger) *LogRecorder {
	return &LogRecorder{
		repo:      repo,
		policy:    policy,
		publisher: publisher,
		now:       time.Now,
		log:       log.Named("logrecorder"),
	}
}

func (l *LogRecorder) Record(ctx context.Context, batchID string, typ model.LogType, summary model.Summary, params model.BatchRequest) (string, error) {
	if batchID == "" {
		return "", errors.New("record log: empty batch id")
	}
	now := l.now()
	entry := model.ReservationLog{
		ID:        batchID,
		BatchID:   batchID,
		Type:      typ,
		CreatedAt: now,
		UpdatedAt: now,
		Summary:   summary,
		Params:    params,
	}
	if err := l.policy.Do(ctx, OpLog, func(ctx context.Context) error {
		return l.repo.SaveLog(ctx, entry)
	}); err != nil {
		return "", errors.Wrapf(err, "record log %s", batchID)
	}
	l.publish(ctx, events.Event{
		Kind:    events.BatchCommitted,
		BatchID: batchID,
		LogID:   entry.ID,
		Type:    typ,
		Summary: summary,
		At:      now,
	})
	return entry.ID, nil
}

// Update rewrites an existing log after its batch was edited.
func (l *LogRecorder) Update(ctx context.Context, entry model.ReservationLog) error {
	entry.UpdatedAt = l.now()
	if err := l.policy.Do(ctx, OpLog, func(ctx context.Context) error {
		return l.repo.SaveLog(ctx, entry)
	}); err != nil {
		return errors.Wrapf(err, "update log %s", entry.ID)
	}
	l.publish(ctx, events.Event{
		Kind:    events.BatchEdited,
		BatchID: entry.BatchID,
		LogID:   entry.ID,
		Type:    entry.Type,
		Summary: entry.Summary,
		At:      entry.UpdatedAt,
	})
	return nil
}

// publish is best effort; the log is the durable record.
func (l *LogRecorder) publish(ctx context.Context, e events.Event) {
	if err := l.publisher.Publish(ctx, e); err != nil {
		l.log.Warn("publish event", zap.String("kind", string(e.Kind)), zap.Error(err))
	}
}
