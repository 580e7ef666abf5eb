package daterange

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Layout is the ISO calendar date format used on every boundary.
const Layout = "2006-01-02"

var (
	ErrInvalidDay   = errors.New("daterange: invalid calendar day")
	ErrInvalidRange = errors.New("daterange: last day must not be before first day")
)

// Day is a calendar date without a time of day. The zero value means "no day".
type Day struct {
	year  int
	month time.Month
	day   int
}

func NewDay(year int, month time.Month, day int) Day {
	return FromTime(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// FromTime keeps the calendar date of t as observed in t's own location.
func FromTime(t time.Time) Day {
	if t.IsZero() {
		return Day{}
	}
	y, m, d := t.Date()
	return Day{year: y, month: m, day: d}
}

func Parse(raw string) (Day, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Day{}, ErrInvalidDay
	}
	t, err := time.Parse(Layout, raw)
	if err != nil {
		return Day{}, fmt.Errorf("%w: %q", ErrInvalidDay, raw)
	}
	return FromTime(t), nil
}

// MustParse panics on malformed input; meant for fixtures and tests.
func MustParse(raw string) Day {
	d, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Day) IsZero() bool { return d.year == 0 && d.month == 0 && d.day == 0 }

func (d Day) Year() int             { return d.year }
func (d Day) Month() time.Month     { return d.month }
func (d Day) DayOfMonth() int       { return d.day }
func (d Day) Weekday() time.Weekday { return d.Time().Weekday() }

// Time returns midnight UTC of the day.
func (d Day) Time() time.Time {
	if d.IsZero() {
		return time.Time{}
	}
	return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, time.UTC)
}

func (d Day) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Time().Format(Layout)
}

func (d Day) AddDays(n int) Day {
	return FromTime(d.Time().AddDate(0, 0, n))
}

func (d Day) Compare(other Day) int {
	switch {
	case d.year != other.year:
		return cmpInt(d.year, other.year)
	case d.month != other.month:
		return cmpInt(int(d.month), int(other.month))
	default:
		return cmpInt(d.day, other.day)
	}
}

func (d Day) Before(other Day) bool { return d.Compare(other) < 0 }
func (d Day) After(other Day) bool  { return d.Compare(other) > 0 }
func (d Day) Equal(other Day) bool  { return d == other }

// DaysUntil counts whole days from d to other; negative when other is earlier.
func (d Day) DaysUntil(other Day) int {
	return int(other.Time().Sub(d.Time()) / (24 * time.Hour))
}

func (d Day) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Day) UnmarshalText(data []byte) error {
	if len(strings.TrimSpace(string(data))) == 0 {
		*d = Day{}
		return nil
	}
	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Span is the closed interval [First, Last]; both ends are occupied days.
type Span struct {
	First Day
	Last  Day
}

func NewSpan(first, last Day) (Span, error) {
	s := Span{First: first, Last: last}
	if err := s.Validate(); err != nil {
		return Span{}, err
	}
	return s, nil
}

func (s Span) Validate() error {
	if s.First.IsZero() || s.Last.IsZero() {
		return ErrInvalidRange
	}
	if s.Last.Before(s.First) {
		return fmt.Errorf("%w: %s..%s", ErrInvalidRange, s.First, s.Last)
	}
	return nil
}

// Days is the inclusive count of days in the span.
func (s Span) Days() int {
	return s.First.DaysUntil(s.Last) + 1
}

// Nights counts the day boundaries crossed, i.e. Last minus First.
func (s Span) Nights() int {
	return s.First.DaysUntil(s.Last)
}

func (s Span) Contains(d Day) bool {
	return !d.Before(s.First) && !d.After(s.Last)
}

func (s Span) Overlaps(other Span) bool {
	return !s.Last.Before(other.First) && !other.Last.Before(s.First)
}

// Each visits every day in order until fn returns false.
func (s Span) Each(fn func(Day) bool) {
	for d := s.First; !d.After(s.Last); d = d.AddDays(1) {
		if !fn(d) {
			return
		}
	}
}

func (s Span) List() []Day {
	out := make([]Day, 0, s.Days())
	s.Each(func(d Day) bool {
		out = append(out, d)
		return true
	})
	return out
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
