package model

import (
	"strings"
	"time"

	"github.com/Astemirdum/booth-service/booth/internal/errs"
)

// Date is a calendar day. The wrapped time is always midnight UTC and is used
// for calendar arithmetic only, so no zone conversion can shift the day.
type Date struct {
	time.Time `json:",inline"`
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return Date{}, errs.NewValidation(errs.CodeInvalidDate, "bad date %q, want YYYY-MM-DD", s)
	}
	return Date{Time: t}, nil
}

func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// DateOf takes the calendar day of t as seen in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// Today is the current calendar day in loc.
func Today(loc *time.Location) Date {
	return DateOf(time.Now().In(loc))
}

func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

func (d Date) Before(o Date) bool { return d.Time.Before(o.Time) }
func (d Date) After(o Date) bool  { return d.Time.After(o.Time) }
func (d Date) Equal(o Date) bool  { return d.Time.Equal(o.Time) }

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(time.DateOnly)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) (err error) {
	s := strings.Trim(string(b), "\"")
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	date, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = date
	return
}

// UnmarshalParam lets echo bind query parameters into a Date.
func (d *Date) UnmarshalParam(param string) error {
	return d.UnmarshalJSON([]byte(param))
}

var weekdayNames = [...]string{"日", "月", "火", "水", "木", "金", "土"}

// WeekdayLabel is the short Japanese weekday label shown next to dates.
func (d Date) WeekdayLabel() string {
	return weekdayNames[d.Weekday()]
}

// ExpandDates lists every date in [start, end] whose weekday is in weekdays,
// ascending. Weekdays follow time.Weekday (0 = Sunday).
func ExpandDates(start, end Date, weekdays []time.Weekday) []Date {
	want := make(map[time.Weekday]bool, len(weekdays))
	for _, w := range weekdays {
		want[w] = true
	}
	var dates []Date
	for d := start; !d.After(end); d = d.AddDays(1) {
		if want[d.Weekday()] {
			dates = append(dates, d)
		}
	}
	return dates
}
