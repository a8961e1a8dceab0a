package repository

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/booth-service/booth/internal/docstore"
	"github.com/Astemirdum/booth-service/booth/internal/errs"
	"github.com/Astemirdum/booth-service/booth/internal/model"
)

// reservationDoc reads seatNo written either as a number or as a numeric
// string; older clients stored both.
type reservationDoc struct {
	model.Reservation
	SeatNo json.RawMessage `json:"seatNo"`
}

func parseSeatNo(raw json.RawMessage) (int, error) {
	return parseInt("seatNo", raw)
}

func parseInt(field string, raw json.RawMessage) (int, error) {
	if len(raw) == 0 {
		return 0, errors.Errorf("%s is missing", field)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return strconv.Atoi(n.String())
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, errors.Errorf("%s %s is neither number nor string", field, raw)
	}
	return strconv.Atoi(strings.TrimSpace(s))
}

// DecodeReservation turns a stored document into a validated record.
func DecodeReservation(doc docstore.Document) (model.Reservation, error) {
	var d reservationDoc
	if err := doc.Decode(&d); err != nil {
		return model.Reservation{}, errors.Wrapf(err, "decode reservation %s", doc.ID)
	}
	seat, err := parseSeatNo(d.SeatNo)
	if err != nil {
		return model.Reservation{}, errors.Wrapf(err, "reservation %s", doc.ID)
	}
	res := d.Reservation
	res.ID = doc.ID
	res.SeatNo = seat
	if res.PurposeType == "" {
		res.PurposeType = model.PurposeSelfStudy
	}
	if res.CreatedAt.IsZero() {
		res.CreatedAt = doc.CreatedAt
	}
	if err := res.Validate(); err != nil {
		return model.Reservation{}, errors.Wrapf(err, "reservation %s", doc.ID)
	}
	return res, nil
}

// Slot is the part of a stored reservation the overlap check needs. Err is
// set when the seat or the interval cannot be read; SeatNo is 0 when the
// seat itself is unknown.
type Slot struct {
	ID     string
	SeatNo int
	Range  model.TimeRange
	Err    error
}

// DecodeSlot reads only seatNo, startMin and endMin, so records that fail
// full validation still take part in conflict checks.
func DecodeSlot(doc docstore.Document) Slot {
	slot := Slot{ID: doc.ID}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(doc.Data, &fields); err != nil {
		slot.Err = errors.Wrapf(errs.ErrUnreadable, "reservation %s: %v", doc.ID, err)
		return slot
	}
	seat, err := parseSeatNo(fields["seatNo"])
	if err != nil {
		slot.Err = errors.Wrapf(errs.ErrUnreadable, "reservation %s: %v", doc.ID, err)
		return slot
	}
	slot.SeatNo = seat
	start, err := parseInt("startMin", fields["startMin"])
	if err != nil {
		slot.Err = errors.Wrapf(errs.ErrUnreadable, "reservation %s: %v", doc.ID, err)
		return slot
	}
	end, err := parseInt("endMin", fields["endMin"])
	if err != nil {
		slot.Err = errors.Wrapf(errs.ErrUnreadable, "reservation %s: %v", doc.ID, err)
		return slot
	}
	slot.Range = model.NewTimeRange(start, end)
	if start >= end {
		slot.Err = errors.Wrapf(errs.ErrUnreadable, "reservation %s: inverted range %d-%d", doc.ID, start, end)
	}
	return slot
}

func EncodeReservation(res model.Reservation) ([]byte, error) {
	if err := res.Validate(); err != nil {
		return nil, err
	}
	res.ID = ""
	return json.Marshal(res)
}

// decodeAll skips records that fail validation; they are logged, not fatal.
func (r *repository) decodeAll(docs []docstore.Document) []model.Reservation {
	out := make([]model.Reservation, 0, len(docs))
	for _, doc := range docs {
		res, err := DecodeReservation(doc)
		if err != nil {
			r.log.Warn("skip malformed reservation", zap.String("id", doc.ID), zap.Error(err))
			continue
		}
		out = append(out, res)
	}
	return out
}

// ReservationsOn queries by date and floor only; seat filtering happens after
// decoding so string-typed legacy seat numbers still match.
func (r *repository) ReservationsOn(ctx context.Context, rd docstore.Reader, date model.Date, floor model.Floor) ([]model.Reservation, error) {
	docs, err := rd.Find(ctx, docstore.NewQuery(docstore.Reservations,
		docstore.Eq("date", date.String()),
		docstore.Eq("floor", string(floor)),
	))
	if err != nil {
		return nil, err
	}
	return r.decodeAll(docs), nil
}

// SlotsOn returns every record on date and floor, valid or not, for
// conflict checks.
func (r *repository) SlotsOn(ctx context.Context, rd docstore.Reader, date model.Date, floor model.Floor) ([]Slot, error) {
	docs, err := rd.Find(ctx, docstore.NewQuery(docstore.Reservations,
		docstore.Eq("date", date.String()),
		docstore.Eq("floor", string(floor)),
	))
	if err != nil {
		return nil, err
	}
	slots := make([]Slot, len(docs))
	for i, doc := range docs {
		slots[i] = DecodeSlot(doc)
	}
	return slots, nil
}

func (r *repository) ReservationsInBatch(ctx context.Context, rd docstore.Reader, batchID string) ([]model.Reservation, error) {
	if batchID == "" {
		return nil, errors.New("empty batch id")
	}
	docs, err := rd.Find(ctx, docstore.NewQuery(docstore.Reservations, docstore.Eq("batchId", batchID)))
	if err != nil {
		return nil, err
	}
	return r.decodeAll(docs), nil
}

func (r *repository) ReservationsByShape(ctx context.Context, rd docstore.Reader, shape model.ByShape) ([]model.Reservation, error) {
	all, err := r.ReservationsOn(ctx, rd, shape.Date, shape.Floor)
	if err != nil {
		return nil, err
	}
	out := make([]model.Reservation, 0, len(shape.Seats))
	for _, res := range all {
		if shape.Matches(res) {
			out = append(out, res)
		}
	}
	return out, nil
}

func (r *repository) Reservation(ctx context.Context, rd docstore.Reader, id string) (model.Reservation, error) {
	doc, err := rd.Get(ctx, docstore.Reservations, id)
	if err != nil {
		return model.Reservation{}, err
	}
	return DecodeReservation(doc)
}

func (r *repository) PutReservation(tx docstore.Tx, res model.Reservation) error {
	if res.ID == "" {
		return errors.New("reservation without id")
	}
	data, err := EncodeReservation(res)
	if err != nil {
		return err
	}
	return tx.Set(docstore.Reservations, res.ID, data)
}

func (r *repository) DeleteReservation(ctx context.Context, id string) error {
	if _, err := r.store.Get(ctx, docstore.Reservations, id); err != nil {
		return err
	}
	return r.store.Delete(ctx, docstore.Reservations, id)
}

// DeleteReservations removes ids in one atomic batch; callers chunk.
func (r *repository) DeleteReservations(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if len(ids) > docstore.MaxBatchWrites {
		return errors.Wrapf(errs.ErrBatchTooLarge, "%d deletes", len(ids))
	}
	b := r.store.Batch()
	for _, id := range ids {
		b.Delete(docstore.Reservations, id)
	}
	return b.Commit(ctx)
}
