package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthGrid(t *testing.T) {
	cal := NewCalendar(day("2025-03-10"), nil, bookedSet("2025-03-12"))
	cells := cal.Month(2025, time.March, Selection{})

	// 1 March 2025 is a Saturday: six padding cells precede it.
	require.Len(t, cells, 6+31)
	for i := 0; i < 6; i++ {
		assert.True(t, cells[i].IsPadding())
	}
	assert.Equal(t, day("2025-03-01"), cells[6].Day)
	assert.Equal(t, day("2025-03-31"), cells[len(cells)-1].Day)
	assert.True(t, cells[6+9].Class.Has(ClassToday))
	assert.True(t, cells[6+11].Class.Has(ClassBooked))
	assert.True(t, cells[6].Class.Has(ClassPast))
}

func TestMonthGridLeapFebruary(t *testing.T) {
	cal := NewCalendar(day("2024-01-01"), nil, nil)
	cells := cal.Month(2024, time.February, Selection{})
	// 1 February 2024 is a Thursday.
	assert.Len(t, cells, 4+29)
}
