package repository

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/booth-service/booth/internal/docstore"
	"github.com/Astemirdum/booth-service/booth/internal/model"
)

func decodeLog(doc docstore.Document) (model.ReservationLog, error) {
	var l model.ReservationLog
	if err := doc.Decode(&l); err != nil {
		return model.ReservationLog{}, errors.Wrapf(err, "decode log %s", doc.ID)
	}
	l.ID = doc.ID
	if l.CreatedAt.IsZero() {
		l.CreatedAt = doc.CreatedAt
	}
	return l, nil
}

func encodeLog(l model.ReservationLog) ([]byte, error) {
	l.ID = ""
	return json.Marshal(l)
}

// Logs returns the newest logs first.
func (r *repository) Logs(ctx context.Context, limit int) ([]model.ReservationLog, error) {
	docs, err := r.store.Find(ctx, docstore.Query{
		Collection:  docstore.Logs,
		NewestFirst: true,
		Limit:       limit,
	})
	if err != nil {
		return nil, err
	}
	logs := make([]model.ReservationLog, 0, len(docs))
	for _, doc := range docs {
		l, err := decodeLog(doc)
		if err != nil {
			r.log.Warn("skip malformed log", zap.String("id", doc.ID), zap.Error(err))
			continue
		}
		logs = append(logs, l)
	}
	return logs, nil
}

func (r *repository) Log(ctx context.Context, rd docstore.Reader, id string) (model.ReservationLog, error) {
	doc, err := rd.Get(ctx, docstore.Logs, id)
	if err != nil {
		return model.ReservationLog{}, err
	}
	return decodeLog(doc)
}

func (r *repository) SaveLog(ctx context.Context, l model.ReservationLog) error {
	data, err := encodeLog(l)
	if err != nil {
		return err
	}
	return r.store.Set(ctx, docstore.Logs, l.ID, data)
}

func (r *repository) PutLog(tx docstore.Tx, l model.ReservationLog) error {
	data, err := encodeLog(l)
	if err != nil {
		return err
	}
	return tx.Set(docstore.Logs, l.ID, data)
}

func (r *repository) DeleteLog(ctx context.Context, id string) error {
	if _, err := r.store.Get(ctx, docstore.Logs, id); err != nil {
		return err
	}
	return r.store.Delete(ctx, docstore.Logs, id)
}
