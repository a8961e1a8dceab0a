package model

import (
	"time"
)

type LogType string

const (
	LogTypeSingle    LogType = "single"
	LogTypeBulk      LogType = "bulk"
	LogTypeRecurring LogType = "recurring"
)

type Summary struct {
	SuccessCount int `json:"successCount"`
	FailCount    int `json:"failCount"`
	// UncertainCount counts failed writes whose outcome could not be confirmed.
	UncertainCount int `json:"uncertainCount,omitempty"`
}

// ReservationLog is the audit record of one batch operation.
type ReservationLog struct {
	ID        string       `json:"id,omitempty"`
	BatchID   string       `json:"batchId,omitempty"`
	Type      LogType      `json:"type"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
	Summary   Summary      `json:"summary"`
	Params    BatchRequest `json:"params"`
}

// Ref tells how to find the log's reservations. Logs written before batch
// tagging only carry their shape.
func (l ReservationLog) Ref() (BatchRef, bool) {
	if l.BatchID != "" {
		return ByID{BatchID: l.BatchID}, true
	}
	p := l.Params
	if p.Date == nil || !p.Floor.Valid() || len(p.Seats) == 0 {
		return nil, false
	}
	return ByShape{
		Date:  *p.Date,
		Floor: p.Floor,
		Seats: append([]int(nil), p.Seats...),
		Range: p.Range(),
	}, true
}

// BatchRef is ByID or ByShape.
type BatchRef interface {
	batchRef()
}

type ByID struct {
	BatchID string
}

// ByShape matches reservations by date, floor, time range and seat set.
type ByShape struct {
	Date  Date
	Floor Floor
	Seats []int
	Range TimeRange
}

func (ByID) batchRef()    {}
func (ByShape) batchRef() {}

func (s ByShape) Matches(r Reservation) bool {
	if !r.Date.Equal(s.Date) || r.Floor != s.Floor || r.Range() != s.Range {
		return false
	}
	for _, seat := range s.Seats {
		if seat == r.SeatNo {
			return true
		}
	}
	return false
}
