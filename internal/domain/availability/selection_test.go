package availability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRangeSelectorHappyPath(t *testing.T) {
	cal := NewCalendar(day("2025-02-20"), nil, nil)
	r := NewRangeSelector(cal)
	assert.Equal(t, StateEmpty, r.State())

	require.NoError(t, r.Click(day("2025-03-01")))
	assert.Equal(t, StateStartOnly, r.State())
	require.NoError(t, r.Click(day("2025-03-05")))
	assert.Equal(t, StateComplete, r.State())
	assert.Equal(t, Range(day("2025-03-01"), day("2025-03-05")), r.Selection())
	assert.Equal(t, 4, r.Selection().Nights())
}

func TestRangeSelectorEarlierClickRestarts(t *testing.T) {
	r := NewRangeSelector(NewCalendar(day("2025-02-20"), nil, nil))
	require.NoError(t, r.Click(day("2025-03-05")))
	require.NoError(t, r.Click(day("2025-03-01")))
	assert.Equal(t, StateStartOnly, r.State())
	assert.Equal(t, day("2025-03-01"), r.Selection().Start)

	require.NoError(t, r.Click(day("2025-03-01")))
	assert.Equal(t, StateStartOnly, r.State())
}

func TestRangeSelectorClickOnCompleteStartsOver(t *testing.T) {
	r := NewRangeSelector(NewCalendar(day("2025-02-20"), nil, nil))
	require.NoError(t, r.Click(day("2025-03-01")))
	require.NoError(t, r.Click(day("2025-03-05")))
	require.NoError(t, r.Click(day("2025-03-10")))
	assert.Equal(t, StateStartOnly, r.State())
	assert.Equal(t, SingleDate(day("2025-03-10")), r.Selection())
}

func TestRangeSelectorRejectsRangeOverBookedDay(t *testing.T) {
	cal := NewCalendar(day("2025-02-20"), nil, bookedSet("2025-03-03"))
	r := NewRangeSelector(cal)
	require.NoError(t, r.Click(day("2025-03-01")))

	err := r.Click(day("2025-03-05"))
	require.ErrorIs(t, err, ErrRangeIncludesBooked)
	assert.Contains(t, err.Error(), "2025-03-03")
	assert.Equal(t, StateStartOnly, r.State())
	assert.Equal(t, day("2025-03-05"), r.Selection().Start)
	assert.True(t, r.Selection().End.IsZero())
}

func TestRangeSelectorIgnoresNonSelectableDays(t *testing.T) {
	cal := NewCalendar(day("2025-03-10"), nil, bookedSet("2025-03-12"))
	r := NewRangeSelector(cal)

	assert.ErrorIs(t, r.Click(day("2025-03-09")), ErrDayNotSelectable)
	assert.Equal(t, StateEmpty, r.State())

	require.NoError(t, r.Click(day("2025-03-15")))
	require.NoError(t, r.Click(day("2025-03-18")))
	before := r.Selection()
	assert.ErrorIs(t, r.Click(day("2025-03-01")), ErrDayNotSelectable)
	assert.ErrorIs(t, r.Click(day("2025-03-12")), ErrDayNotSelectable)
	assert.Equal(t, before, r.Selection())
	assert.Equal(t, StateComplete, r.State())

	r.Reset()
	assert.Equal(t, StateEmpty, r.State())
}

func TestSingleSelector(t *testing.T) {
	cal := NewCalendar(day("2025-03-10"), nil, bookedSet("2025-03-12"))
	s := NewSingleSelector(cal)
	require.NoError(t, s.Click(day("2025-03-11")))
	require.NoError(t, s.Click(day("2025-03-14")))
	assert.Equal(t, SingleDate(day("2025-03-14")), s.Selection())
	assert.ErrorIs(t, s.Click(day("2025-03-12")), ErrDayNotSelectable)
	assert.Equal(t, SingleDate(day("2025-03-14")), s.Selection())
}

func TestCheckSelection(t *testing.T) {
	cal := NewCalendar(day("2025-03-01"), nil, bookedSet("2025-03-03"))

	assert.NoError(t, CheckSelection(cal, Range(day("2025-03-04"), day("2025-03-08")), true))
	assert.NoError(t, CheckSelection(cal, SingleDate(day("2025-03-02")), false))

	assert.ErrorIs(t, CheckSelection(cal, Selection{}, true), ErrSelectionEmpty)
	assert.ErrorIs(t, CheckSelection(cal, SingleDate(day("2025-03-04")), true), ErrSelectionIncomplete)
	assert.ErrorIs(t, CheckSelection(cal, Range(day("2025-03-04"), day("2025-03-08")), false), ErrRangeNotSupported)
	assert.ErrorIs(t, CheckSelection(cal, Range(day("2025-03-02"), day("2025-03-05")), true), ErrRangeIncludesBooked)
	assert.ErrorIs(t, CheckSelection(cal, SingleDate(day("2025-03-03")), false), ErrDayNotSelectable)
	assert.ErrorIs(t, CheckSelection(cal, Range(day("2025-02-27"), day("2025-03-02")), true), ErrDayNotSelectable)
	assert.Error(t, CheckSelection(cal, Range(day("2025-03-05"), day("2025-03-05")), true))
}
