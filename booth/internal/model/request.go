package model

import (
	"sort"
	"strings"
	"time"

	"github.com/Astemirdum/booth-service/booth/internal/errs"
)

// BatchRequest is a bulk (Date set) or recurring (StartDate, EndDate and
// Weekdays set) reservation request over one or more seats. It is stored
// verbatim as the params of the batch's log.
type BatchRequest struct {
	Date        *Date          `json:"date,omitempty"`
	StartDate   *Date          `json:"startDate,omitempty"`
	EndDate     *Date          `json:"endDate,omitempty"`
	Weekdays    []time.Weekday `json:"weekdays,omitempty"`
	Floor       Floor          `json:"floor"`
	Seats       []int          `json:"seats"`
	StartMin    int            `json:"startMin"`
	EndMin      int            `json:"endMin"`
	Name        string         `json:"name"`
	Course      string         `json:"course"`
	PurposeType PurposeType    `json:"purposeType"`
	Note        string         `json:"note"`
}

func (r BatchRequest) IsRecurring() bool {
	return r.StartDate != nil || r.EndDate != nil || len(r.Weekdays) > 0
}

func (r BatchRequest) Type() LogType {
	if r.IsRecurring() {
		return LogTypeRecurring
	}
	return LogTypeBulk
}

func (r BatchRequest) Range() TimeRange {
	return TimeRange{StartMin: r.StartMin, EndMin: r.EndMin}
}

// Normalize trims text, drops duplicate seats keeping first occurrence and
// clears the note when the purpose does not use one.
func (r BatchRequest) Normalize() BatchRequest {
	r.Name = strings.TrimSpace(r.Name)
	r.Course = strings.TrimSpace(r.Course)
	r.Note = strings.TrimSpace(r.Note)
	if r.PurposeType == "" {
		r.PurposeType = PurposeSelfStudy
	}
	if !r.PurposeType.HasNote() {
		r.Note = ""
	}
	seen := make(map[int]bool, len(r.Seats))
	seats := make([]int, 0, len(r.Seats))
	for _, s := range r.Seats {
		if !seen[s] {
			seen[s] = true
			seats = append(seats, s)
		}
	}
	r.Seats = seats
	if len(r.Weekdays) > 0 {
		wd := append([]time.Weekday(nil), r.Weekdays...)
		sort.Slice(wd, func(i, j int) bool { return wd[i] < wd[j] })
		r.Weekdays = wd
	}
	return r
}

// Validate rejects a request that cannot produce any reservation. It does no I/O.
func (r BatchRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return errs.NewValidation(errs.CodeEmptyName, "name is required")
	}
	if err := r.Range().Validate(); err != nil {
		return err
	}
	if r.IsRecurring() {
		if r.StartDate == nil || r.EndDate == nil {
			return errs.NewValidation(errs.CodeInvalidDate, "recurring request needs startDate and endDate")
		}
		if len(r.Weekdays) == 0 {
			return errs.NewValidation(errs.CodeEmptySchedule, "select at least one weekday")
		}
		for _, w := range r.Weekdays {
			if w < time.Sunday || w > time.Saturday {
				return errs.NewValidation(errs.CodeEmptySchedule, "bad weekday %d", w)
			}
		}
	} else if r.Date == nil || r.Date.IsZero() {
		return errs.NewValidation(errs.CodeInvalidDate, "date is required")
	}
	if len(r.Seats) == 0 {
		return errs.NewValidation(errs.CodeEmptySelection, "select at least one seat")
	}
	if !r.Floor.Valid() {
		return errs.NewValidation(errs.CodeInvalidFloor, "unknown floor %q", r.Floor)
	}
	for _, s := range r.Seats {
		if !r.Floor.ValidSeat(s) {
			return errs.NewValidation(errs.CodeInvalidSeat, "seat %d does not exist on %s", s, r.Floor)
		}
	}
	if !r.PurposeType.Valid() {
		return errs.NewValidation(errs.CodeInvalidPurpose, "unknown purpose %q", r.PurposeType)
	}
	if len(r.Dates()) == 0 {
		return errs.NewValidation(errs.CodeEmptySchedule, "no date in %s..%s falls on the selected weekdays", r.StartDate, r.EndDate)
	}
	return nil
}

// Dates are the calendar days the request covers, ascending.
func (r BatchRequest) Dates() []Date {
	if !r.IsRecurring() {
		if r.Date == nil {
			return nil
		}
		return []Date{*r.Date}
	}
	if r.StartDate == nil || r.EndDate == nil {
		return nil
	}
	return ExpandDates(*r.StartDate, *r.EndDate, r.Weekdays)
}

// Reservation builds the batch member for one (date, seat) pair.
func (r BatchRequest) Reservation(batchID string, date Date, seatNo int, now time.Time) Reservation {
	res := Reservation{
		Date:        date,
		Floor:       r.Floor,
		SeatNo:      seatNo,
		StartMin:    r.StartMin,
		EndMin:      r.EndMin,
		Name:        r.Name,
		Course:      r.Course,
		PurposeType: r.PurposeType,
		Note:        r.Note,
		BatchID:     batchID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	res.ID = ReservationID(batchID, res.Slot())
	return res
}

// SingleRequest is a one-seat, one-day submission.
type SingleRequest struct {
	Date        Date        `json:"date"`
	Floor       Floor       `json:"floor"`
	SeatNo      int         `json:"seatNo"`
	StartMin    int         `json:"startMin"`
	EndMin      int         `json:"endMin"`
	Name        string      `json:"name"`
	Course      string      `json:"course"`
	PurposeType PurposeType `json:"purposeType"`
	Note        string      `json:"note"`
}

func (s SingleRequest) Batch() BatchRequest {
	d := s.Date
	return BatchRequest{
		Date:        &d,
		Floor:       s.Floor,
		Seats:       []int{s.SeatNo},
		StartMin:    s.StartMin,
		EndMin:      s.EndMin,
		Name:        s.Name,
		Course:      s.Course,
		PurposeType: s.PurposeType,
		Note:        s.Note,
	}
}

// ReservationPatch is a direct edit of one reservation; the seat may move
// within the same date and floor.
type ReservationPatch struct {
	SeatNo      int         `json:"seatNo"`
	StartMin    int         `json:"startMin"`
	EndMin      int         `json:"endMin"`
	Name        string      `json:"name"`
	Course      string      `json:"course"`
	PurposeType PurposeType `json:"purposeType"`
	Note        string      `json:"note"`
}

func (p ReservationPatch) Apply(r Reservation, now time.Time) Reservation {
	r.SeatNo = p.SeatNo
	r.StartMin = p.StartMin
	r.EndMin = p.EndMin
	r.Name = strings.TrimSpace(p.Name)
	r.Course = strings.TrimSpace(p.Course)
	r.PurposeType = p.PurposeType
	if r.PurposeType == "" {
		r.PurposeType = PurposeSelfStudy
	}
	r.Note = ""
	if r.PurposeType.HasNote() {
		r.Note = strings.TrimSpace(p.Note)
	}
	r.UpdatedAt = now
	return r
}
