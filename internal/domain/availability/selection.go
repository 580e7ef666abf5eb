package availability

import (
	"errors"
	"fmt"

	"tripdesk/internal/domain/shared/daterange"
)

var (
	ErrDayNotSelectable    = errors.New("availability: day is not selectable")
	ErrRangeIncludesBooked = errors.New("availability: selected range includes a booked day")
	ErrSelectionEmpty      = errors.New("availability: no date selected")
	ErrSelectionIncomplete = errors.New("availability: check-out date is required")
	ErrRangeNotSupported   = errors.New("availability: listing is booked by single date")
)

// Selection is the in-progress choice of a visitor: a single day, or a start
// with an optional end for multi-night stays.
type Selection struct {
	Start daterange.Day
	End   daterange.Day
}

func SingleDate(d daterange.Day) Selection { return Selection{Start: d} }

func Range(start, end daterange.Day) Selection { return Selection{Start: start, End: end} }

func (s Selection) IsEmpty() bool { return s.Start.IsZero() }
func (s Selection) HasEnd() bool  { return !s.End.IsZero() }

// Nights is the whole-day difference between end and start, or 0 without an end.
func (s Selection) Nights() int {
	if s.IsEmpty() || !s.HasEnd() {
		return 0
	}
	return s.Start.DaysUntil(s.End)
}

type SelectionState string

const (
	StateEmpty     SelectionState = "empty"
	StateStartOnly SelectionState = "start_only"
	StateComplete  SelectionState = "complete"
)

// RangeSelector drives the two-click check-in/check-out gesture.
type RangeSelector struct {
	cal *Calendar
	sel Selection
}

func NewRangeSelector(cal *Calendar) *RangeSelector {
	return &RangeSelector{cal: cal}
}

func (r *RangeSelector) Selection() Selection { return r.sel }

func (r *RangeSelector) State() SelectionState {
	switch {
	case r.sel.IsEmpty():
		return StateEmpty
	case !r.sel.HasEnd():
		return StateStartOnly
	default:
		return StateComplete
	}
}

func (r *RangeSelector) Reset() { r.sel = Selection{} }

// Click applies one click. A non-selectable day leaves the state untouched. A
// range crossing a booked day is rejected and selection restarts at day.
func (r *RangeSelector) Click(day daterange.Day) error {
	if !r.cal.Selectable(day) {
		return fmt.Errorf("%w: %s", ErrDayNotSelectable, day)
	}
	if r.State() != StateStartOnly || !day.After(r.sel.Start) {
		r.sel = Selection{Start: day}
		return nil
	}
	span := daterange.Span{First: r.sel.Start, Last: day}
	if hit, found := r.cal.Booked().FirstIn(span); found {
		r.sel = Selection{Start: day}
		return fmt.Errorf("%w: %s", ErrRangeIncludesBooked, hit)
	}
	r.sel.End = day
	return nil
}

// SingleSelector replaces the chosen day on every accepted click.
type SingleSelector struct {
	cal *Calendar
	sel Selection
}

func NewSingleSelector(cal *Calendar) *SingleSelector {
	return &SingleSelector{cal: cal}
}

func (s *SingleSelector) Selection() Selection { return s.sel }

func (s *SingleSelector) Click(day daterange.Day) error {
	if !s.cal.Selectable(day) {
		return fmt.Errorf("%w: %s", ErrDayNotSelectable, day)
	}
	s.sel = SingleDate(day)
	return nil
}

// CheckSelection replays sel through the matching selector so a submitted
// selection is held to the same rules as the interactive gesture.
func CheckSelection(cal *Calendar, sel Selection, rangeMode bool) error {
	if sel.IsEmpty() {
		return ErrSelectionEmpty
	}
	if !rangeMode {
		if sel.HasEnd() {
			return ErrRangeNotSupported
		}
		return NewSingleSelector(cal).Click(sel.Start)
	}
	if !sel.HasEnd() {
		return ErrSelectionIncomplete
	}
	if !sel.End.After(sel.Start) {
		return fmt.Errorf("%w: %s..%s", daterange.ErrInvalidRange, sel.Start, sel.End)
	}
	selector := NewRangeSelector(cal)
	if err := selector.Click(sel.Start); err != nil {
		return err
	}
	return selector.Click(sel.End)
}
