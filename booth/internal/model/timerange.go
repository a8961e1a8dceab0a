package model

import (
	"fmt"

	"github.com/Astemirdum/booth-service/booth/internal/errs"
)

// Opening hours in minutes since midnight.
const (
	DayStartMin = 9 * 60
	DayEndMin   = 21 * 60
)

// TimeRange is the half-open interval [StartMin, EndMin).
type TimeRange struct {
	StartMin int `json:"startMin"`
	EndMin   int `json:"endMin"`
}

func NewTimeRange(startMin, endMin int) TimeRange {
	return TimeRange{StartMin: startMin, EndMin: endMin}
}

func (r TimeRange) Validate() error {
	if r.StartMin >= r.EndMin {
		return errs.NewValidation(errs.CodeInvalidRange,
			"end %s must be after start %s", FormatMinutes(r.EndMin), FormatMinutes(r.StartMin))
	}
	if r.StartMin < DayStartMin || r.EndMin > DayEndMin {
		return errs.NewValidation(errs.CodeInvalidRange,
			"%s is outside opening hours %s-%s", r, FormatMinutes(DayStartMin), FormatMinutes(DayEndMin))
	}
	return nil
}

// Overlaps is symmetric; touching intervals do not overlap.
func (r TimeRange) Overlaps(o TimeRange) bool {
	return Overlap(r.StartMin, r.EndMin, o.StartMin, o.EndMin)
}

func Overlap(aStart, aEnd, bStart, bEnd int) bool {
	return !(aEnd <= bStart || aStart >= bEnd)
}

func (r TimeRange) Minutes() int {
	return r.EndMin - r.StartMin
}

func (r TimeRange) String() string {
	return FormatMinutes(r.StartMin) + "-" + FormatMinutes(r.EndMin)
}

// FormatMinutes renders minutes since midnight as HH:MM.
func FormatMinutes(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}
