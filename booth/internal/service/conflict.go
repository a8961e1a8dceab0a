package service

import (
	"context"

	"github.com/Astemirdum/booth-service/booth/internal/docstore"
	"github.com/Astemirdum/booth-service/booth/internal/model"
	"github.com/Astemirdum/booth-service/booth/internal/repository"
)

// ConflictChecker finds reservations overlapping a candidate interval on one seat.
type ConflictChecker struct {
	repo repository.Repository
}

func NewConflictChecker(repo repository.Repository) *ConflictChecker {
	return &ConflictChecker{repo: repo}
}

// FindOverlaps reads through the store outside any transaction.
func (c *ConflictChecker) FindOverlaps(ctx context.Context, date model.Date, floor model.Floor, seatNo int, tr model.TimeRange, exclude ...string) ([]model.Reservation, error) {
	return c.find(ctx, c.repo.Store(), date, floor, seatNo, tr, exclude)
}

// FindOverlapsTx sees the transaction's own pending writes.
func (c *ConflictChecker) FindOverlapsTx(ctx context.Context, tx docstore.Tx, date model.Date, floor model.Floor, seatNo int, tr model.TimeRange, exclude ...string) ([]model.Reservation, error) {
	return c.find(ctx, tx, date, floor, seatNo, tr, exclude)
}

// find reads every record on date and floor leniently. A record that fails
// full validation still blocks its interval; one whose seat or interval is
// unreadable fails the check for any seat it may occupy.
func (c *ConflictChecker) find(ctx context.Context, rd docstore.Reader, date model.Date, floor model.Floor, seatNo int, tr model.TimeRange, exclude []string) ([]model.Reservation, error) {
	slots, err := c.repo.SlotsOn(ctx, rd, date, floor)
	if err != nil {
		return nil, err
	}
	out := make([]model.Reservation, 0)
	for _, s := range slots {
		if excluded(s.ID, exclude) {
			continue
		}
		if s.Err != nil {
			if s.SeatNo == 0 || s.SeatNo == seatNo {
				return nil, s.Err
			}
			continue
		}
		if s.SeatNo == seatNo && s.Range.Overlaps(tr) {
			out = append(out, model.Reservation{
				ID:       s.ID,
				Date:     date,
				Floor:    floor,
				SeatNo:   s.SeatNo,
				StartMin: s.Range.StartMin,
				EndMin:   s.Range.EndMin,
			})
		}
	}
	return out, nil
}

func excluded(id string, exclude []string) bool {
	for _, e := range exclude {
		if e == id {
			return true
		}
	}
	return false
}
