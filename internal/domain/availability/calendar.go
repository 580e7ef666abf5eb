package availability

import (
	"tripdesk/internal/domain/shared/daterange"
)

// DayClass is the set of tags attached to one calendar day.
type DayClass uint8

const (
	ClassPast DayClass = 1 << iota
	ClassUnavailable
	ClassBooked
	ClassAvailable
	ClassSelected
	ClassInRange
	ClassToday
)

var classNames = []struct {
	class DayClass
	name  string
}{
	{ClassPast, "past"},
	{ClassUnavailable, "unavailable"},
	{ClassBooked, "booked"},
	{ClassAvailable, "available"},
	{ClassSelected, "selected"},
	{ClassInRange, "in-range"},
	{ClassToday, "today"},
}

func (c DayClass) Has(flag DayClass) bool { return c&flag != 0 }

func (c DayClass) Tags() []string {
	tags := make([]string, 0, 3)
	for _, cn := range classNames {
		if c.Has(cn.class) {
			tags = append(tags, cn.name)
		}
	}
	return tags
}

// Calendar classifies days of one listing. Today is supplied by the caller so
// classification never reads the system clock.
type Calendar struct {
	today     daterange.Day
	available map[daterange.Day]struct{}
	booked    BookedDateSet
}

// NewCalendar builds a calendar. An empty availability list opens every
// non-past, non-booked day.
func NewCalendar(today daterange.Day, availability []daterange.Day, booked BookedDateSet) *Calendar {
	cal := &Calendar{today: today, booked: booked}
	if len(availability) > 0 {
		cal.available = make(map[daterange.Day]struct{}, len(availability))
		for _, d := range availability {
			cal.available[d] = struct{}{}
		}
	}
	if cal.booked == nil {
		cal.booked = BookedDateSet{}
	}
	return cal
}

func (c *Calendar) Today() daterange.Day  { return c.today }
func (c *Calendar) Booked() BookedDateSet { return c.booked }

// Classify tags day. Past wins over everything, then booked over unavailable.
func (c *Calendar) Classify(day daterange.Day, sel Selection) DayClass {
	var class DayClass
	if day == c.today {
		class |= ClassToday
	}
	if day.Before(c.today) {
		return class | ClassPast
	}
	switch {
	case c.booked.Has(day):
		class |= ClassBooked
	case c.available != nil && !c.hasAvailable(day):
		class |= ClassUnavailable
	default:
		class |= ClassAvailable
	}
	if day == sel.Start || (sel.HasEnd() && day == sel.End) {
		class |= ClassSelected
	} else if sel.HasEnd() && day.After(sel.Start) && day.Before(sel.End) {
		class |= ClassInRange
	}
	return class
}

// Selectable reports whether a click on day may be accepted.
func (c *Calendar) Selectable(day daterange.Day) bool {
	if day.IsZero() {
		return false
	}
	return c.Classify(day, Selection{}).Has(ClassAvailable)
}

func (c *Calendar) hasAvailable(day daterange.Day) bool {
	_, ok := c.available[day]
	return ok
}
