package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Astemirdum/booth-service/booth/internal/errs"
)

type PurposeType string

const (
	PurposeSelfStudy PurposeType = "self-study"
	PurposeMakeup    PurposeType = "makeup"
	PurposeOther     PurposeType = "other"
)

func (p PurposeType) Valid() bool {
	switch p {
	case PurposeSelfStudy, PurposeMakeup, PurposeOther:
		return true
	}
	return false
}

// HasNote reports whether a free-text note is meaningful for the purpose.
func (p PurposeType) HasNote() bool {
	return p == PurposeMakeup || p == PurposeOther
}

type Reservation struct {
	ID          string      `json:"id,omitempty"`
	Date        Date        `json:"date"`
	Floor       Floor       `json:"floor"`
	SeatNo      int         `json:"seatNo"`
	StartMin    int         `json:"startMin"`
	EndMin      int         `json:"endMin"`
	Name        string      `json:"name"`
	Course      string      `json:"course"`
	PurposeType PurposeType `json:"purposeType"`
	Note        string      `json:"note"`
	BatchID     string      `json:"batchId,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

func (r Reservation) Range() TimeRange {
	return TimeRange{StartMin: r.StartMin, EndMin: r.EndMin}
}

func (r Reservation) Slot() SlotKey {
	return SlotKey{Date: r.Date, Floor: r.Floor, SeatNo: r.SeatNo}
}

// Validate checks the record invariants before it is written.
func (r Reservation) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return errs.NewValidation(errs.CodeEmptyName, "name is required")
	}
	if r.Date.IsZero() {
		return errs.NewValidation(errs.CodeInvalidDate, "date is required")
	}
	if !r.Floor.Valid() {
		return errs.NewValidation(errs.CodeInvalidFloor, "unknown floor %q", r.Floor)
	}
	if !r.Floor.ValidSeat(r.SeatNo) {
		return errs.NewValidation(errs.CodeInvalidSeat, "seat %d does not exist on %s", r.SeatNo, r.Floor)
	}
	if !r.PurposeType.Valid() {
		return errs.NewValidation(errs.CodeInvalidPurpose, "unknown purpose %q", r.PurposeType)
	}
	return r.Range().Validate()
}

// SlotKey identifies one seat on one day; the no-overlap invariant holds per key.
type SlotKey struct {
	Date   Date
	Floor  Floor
	SeatNo int
}

func (k SlotKey) String() string {
	return fmt.Sprintf("%s/%s/%d", k.Date, k.Floor, k.SeatNo)
}

var reservationNamespace = uuid.MustParse("6f1c3a52-8d0e-4a7b-9c61-2f4e5d7a9b10")

// ReservationID derives the document id of a batch member, so writing the
// same member twice targets the same document.
func ReservationID(batchID string, k SlotKey) string {
	return uuid.NewSHA1(reservationNamespace, []byte(batchID+"|"+k.String())).String()
}

func NewBatchID() string {
	return uuid.NewString()
}
