package model

import (
	"github.com/Astemirdum/booth-service/booth/internal/errs"
)

type Floor string

const (
	Floor6F Floor = "6F"
	Floor7F Floor = "7F"
)

var Floors = []Floor{Floor6F, Floor7F}

// SeatCount is the number of seats on the floor; seats are numbered 1..SeatCount.
func (f Floor) SeatCount() int {
	switch f {
	case Floor6F:
		return 30
	case Floor7F:
		return 19
	default:
		return 0
	}
}

func (f Floor) Valid() bool {
	return f.SeatCount() > 0
}

func ParseFloor(s string) (Floor, error) {
	f := Floor(s)
	if !f.Valid() {
		return "", errs.NewValidation(errs.CodeInvalidFloor, "unknown floor %q", s)
	}
	return f, nil
}

func (f Floor) ValidSeat(seatNo int) bool {
	return seatNo >= 1 && seatNo <= f.SeatCount()
}
