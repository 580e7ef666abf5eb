package availability

import (
	"time"

	"tripdesk/internal/domain/shared/daterange"
)

// Cell is one slot of a month grid. Padding cells before the first of the
// month carry a zero Day.
type Cell struct {
	Day   daterange.Day
	Class DayClass
}

func (c Cell) IsPadding() bool { return c.Day.IsZero() }

// Month lays out year/month Sunday-first, classifying every day against sel.
func (c *Calendar) Month(year int, month time.Month, sel Selection) []Cell {
	first := daterange.NewDay(year, month, 1)
	last := first.AddDays(32)
	last = daterange.NewDay(last.Year(), last.Month(), 1).AddDays(-1)

	offset := int(first.Weekday())
	cells := make([]Cell, 0, offset+last.DayOfMonth())
	for i := 0; i < offset; i++ {
		cells = append(cells, Cell{})
	}
	daterange.Span{First: first, Last: last}.Each(func(d daterange.Day) bool {
		cells = append(cells, Cell{Day: d, Class: c.Classify(d, sel)})
		return true
	})
	return cells
}
