package service

import (
	"sort"

	"github.com/Astemirdum/booth-service/booth/internal/model"
)

const SlotMinutes = 30

type PreviewCell struct {
	StartMin int `json:"startMin"`
	// Span is how many slots the cell covers; empty cells span one.
	Span          int    `json:"span"`
	ReservationID string `json:"reservationId,omitempty"`
	Name          string `json:"name,omitempty"`
	Course        string `json:"course,omitempty"`
	PurposeType   string `json:"purposeType,omitempty"`
	Note          string `json:"note,omitempty"`
	Color         string `json:"color,omitempty"`
}

type PreviewRow struct {
	SeatNo int           `json:"seatNo"`
	Cells  []PreviewCell `json:"cells"`
}

// Preview is a read-only timetable of one floor and day.
type Preview struct {
	Date  model.Date   `json:"date"`
	Floor model.Floor  `json:"floor"`
	Slots []string     `json:"slots"`
	Rows  []PreviewRow `json:"rows"`
}

func slotCount() int {
	return (model.DayEndMin - model.DayStartMin) / SlotMinutes
}

// BuildPreview lays reservations onto 30 minute slots, one row per seat.
// Consecutive slots held by one reservation merge into a single cell.
func BuildPreview(date model.Date, floor model.Floor, rs []model.Reservation, courses []model.Course) Preview {
	n := slotCount()
	p := Preview{
		Date:  date,
		Floor: floor,
		Slots: make([]string, n),
		Rows:  make([]PreviewRow, 0, floor.SeatCount()),
	}
	for i := 0; i < n; i++ {
		p.Slots[i] = model.FormatMinutes(model.DayStartMin + i*SlotMinutes)
	}

	bySeat := make(map[int][]model.Reservation)
	for _, r := range rs {
		if r.Floor != floor || !r.Date.Equal(date) {
			continue
		}
		bySeat[r.SeatNo] = append(bySeat[r.SeatNo], r)
	}
	for seat := range bySeat {
		seatRs := bySeat[seat]
		sort.Slice(seatRs, func(i, j int) bool { return seatRs[i].StartMin < seatRs[j].StartMin })
	}

	for seat := 1; seat <= floor.SeatCount(); seat++ {
		row := PreviewRow{SeatNo: seat, Cells: make([]PreviewCell, 0, n)}
		seatRs := bySeat[seat]
		for slot := 0; slot < n; {
			start := model.DayStartMin + slot*SlotMinutes
			r, ok := covering(seatRs, start, start+SlotMinutes)
			if !ok {
				row.Cells = append(row.Cells, PreviewCell{StartMin: start, Span: 1})
				slot++
				continue
			}
			endSlot := (r.EndMin - model.DayStartMin + SlotMinutes - 1) / SlotMinutes
			if endSlot > n {
				endSlot = n
			}
			span := endSlot - slot
			if span < 1 {
				span = 1
			}
			row.Cells = append(row.Cells, PreviewCell{
				StartMin:      start,
				Span:          span,
				ReservationID: r.ID,
				Name:          r.Name,
				Course:        r.Course,
				PurposeType:   string(r.PurposeType),
				Note:          r.Note,
				Color:         model.CourseColor(courses, r.Course),
			})
			slot += span
		}
		p.Rows = append(p.Rows, row)
	}
	return p
}

func covering(rs []model.Reservation, start, end int) (model.Reservation, bool) {
	for _, r := range rs {
		if model.Overlap(r.StartMin, r.EndMin, start, end) {
			return r, true
		}
	}
	return model.Reservation{}, false
}
