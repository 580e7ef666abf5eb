package availability

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tripdesk/internal/domain/shared/daterange"
)

func bookedSet(days ...string) BookedDateSet {
	set := BookedDateSet{}
	for _, d := range days {
		set[day(d)] = struct{}{}
	}
	return set
}

func TestClassifyPrecedence(t *testing.T) {
	today := day("2025-03-10")
	cal := NewCalendar(today,
		[]daterange.Day{day("2025-03-09"), day("2025-03-10"), day("2025-03-12"), day("2025-03-13")},
		bookedSet("2025-03-09", "2025-03-12", "2025-03-14"),
	)

	cases := []struct {
		day  string
		want DayClass
	}{
		{"2025-03-09", ClassPast},
		{"2025-03-01", ClassPast},
		{"2025-03-10", ClassAvailable | ClassToday},
		{"2025-03-11", ClassUnavailable},
		{"2025-03-12", ClassBooked},
		{"2025-03-13", ClassAvailable},
		{"2025-03-14", ClassBooked},
	}
	for _, tc := range cases {
		t.Run(tc.day, func(t *testing.T) {
			assert.Equal(t, tc.want, cal.Classify(day(tc.day), Selection{}))
		})
	}
}

func TestClassifyWithoutAvailabilityListOpensEverything(t *testing.T) {
	cal := NewCalendar(day("2025-03-10"), nil, bookedSet("2025-03-12"))
	assert.Equal(t, ClassAvailable, cal.Classify(day("2025-06-01"), Selection{}))
	assert.Equal(t, ClassBooked, cal.Classify(day("2025-03-12"), Selection{}))
	assert.Equal(t, ClassPast, cal.Classify(day("2025-03-09"), Selection{}))
}

func TestAvailableIffProperty(t *testing.T) {
	today := day("2025-03-10")
	whitelist := []daterange.Day{day("2025-03-08"), day("2025-03-11"), day("2025-03-15"), day("2025-03-20")}
	booked := bookedSet("2025-03-15", "2025-03-16")

	inList := func(d daterange.Day) bool {
		for _, w := range whitelist {
			if w == d {
				return true
			}
		}
		return false
	}

	withList := NewCalendar(today, whitelist, booked)
	withoutList := NewCalendar(today, nil, booked)
	span := daterange.Span{First: day("2025-03-01"), Last: day("2025-03-31")}
	span.Each(func(d daterange.Day) bool {
		future := !d.Before(today)
		free := !booked.Has(d)
		assert.Equal(t, future && inList(d) && free, withList.Classify(d, Selection{}).Has(ClassAvailable), d.String())
		assert.Equal(t, future && free, withoutList.Classify(d, Selection{}).Has(ClassAvailable), d.String())
		assert.Equal(t, future && free, withoutList.Selectable(d), d.String())
		return true
	})
}

func TestClassifySelectionTags(t *testing.T) {
	cal := NewCalendar(day("2025-03-01"), nil, nil)
	sel := Range(day("2025-03-02"), day("2025-03-05"))

	assert.Equal(t, ClassAvailable|ClassSelected, cal.Classify(day("2025-03-02"), sel))
	assert.Equal(t, ClassAvailable|ClassInRange, cal.Classify(day("2025-03-03"), sel))
	assert.Equal(t, ClassAvailable|ClassSelected, cal.Classify(day("2025-03-05"), sel))
	assert.Equal(t, ClassAvailable, cal.Classify(day("2025-03-06"), sel))
	assert.Equal(t, []string{"available", "selected"}, cal.Classify(day("2025-03-02"), sel).Tags())
	assert.Equal(t, []string{"available", "today"}, cal.Classify(day("2025-03-01"), Selection{}).Tags())
}

func TestSelectableRejectsZeroDay(t *testing.T) {
	cal := NewCalendar(day("2025-03-01"), nil, nil)
	assert.False(t, cal.Selectable(daterange.Day{}))
}
