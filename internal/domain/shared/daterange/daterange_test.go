package daterange

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAndFormat(t *testing.T) {
	d, err := Parse("2025-02-10")
	require.NoError(t, err)
	assert.Equal(t, 2025, d.Year())
	assert.Equal(t, time.February, d.Month())
	assert.Equal(t, 10, d.DayOfMonth())
	assert.Equal(t, "2025-02-10", d.String())

	_, err = Parse("10/02/2025")
	assert.ErrorIs(t, err, ErrInvalidDay)
	_, err = Parse("  ")
	assert.ErrorIs(t, err, ErrInvalidDay)
}

func TestFromTimeKeepsLocalCalendarDate(t *testing.T) {
	loc := time.FixedZone("EAT", 3*60*60)
	late := time.Date(2025, 3, 1, 1, 30, 0, 0, loc) // still Feb 28 in UTC
	assert.Equal(t, MustParse("2025-03-01"), FromTime(late))
}

func TestArithmeticAcrossMonthAndYear(t *testing.T) {
	assert.Equal(t, MustParse("2025-03-01"), MustParse("2025-02-28").AddDays(1))
	assert.Equal(t, MustParse("2024-02-29"), MustParse("2024-02-28").AddDays(1))
	assert.Equal(t, MustParse("2024-12-31"), MustParse("2025-01-01").AddDays(-1))
	assert.Equal(t, 3, MustParse("2025-03-01").DaysUntil(MustParse("2025-03-04")))
	assert.Equal(t, -3, MustParse("2025-03-04").DaysUntil(MustParse("2025-03-01")))
}

func TestCompare(t *testing.T) {
	a := MustParse("2025-03-01")
	b := MustParse("2025-03-02")
	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.False(t, a.After(a))
	assert.True(t, a.Equal(MustParse("2025-03-01")))
	assert.True(t, MustParse("2024-12-31").Before(a))
}

func TestSpanIsInclusive(t *testing.T) {
	span, err := NewSpan(MustParse("2025-02-10"), MustParse("2025-02-13"))
	require.NoError(t, err)
	assert.Equal(t, 4, span.Days())
	assert.Equal(t, 3, span.Nights())
	assert.True(t, span.Contains(MustParse("2025-02-10")))
	assert.True(t, span.Contains(MustParse("2025-02-13")))
	assert.False(t, span.Contains(MustParse("2025-02-14")))
	assert.Equal(t, []Day{
		MustParse("2025-02-10"),
		MustParse("2025-02-11"),
		MustParse("2025-02-12"),
		MustParse("2025-02-13"),
	}, span.List())
}

func TestSpanRejectsInvertedRange(t *testing.T) {
	_, err := NewSpan(MustParse("2025-02-13"), MustParse("2025-02-10"))
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = NewSpan(Day{}, MustParse("2025-02-10"))
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestSpanOverlapsSharesBoundaryDay(t *testing.T) {
	a := Span{First: MustParse("2025-03-01"), Last: MustParse("2025-03-05")}
	b := Span{First: MustParse("2025-03-05"), Last: MustParse("2025-03-07")}
	c := Span{First: MustParse("2025-03-06"), Last: MustParse("2025-03-07")}
	assert.True(t, a.Overlaps(b))
	assert.False(t, a.Overlaps(c))
}

func TestDayJSON(t *testing.T) {
	type payload struct {
		Start Day `json:"start"`
		End   Day `json:"end"`
	}
	var p payload
	require.NoError(t, json.Unmarshal([]byte(`{"start":"2025-03-01","end":""}`), &p))
	assert.Equal(t, MustParse("2025-03-01"), p.Start)
	assert.True(t, p.End.IsZero())

	out, err := json.Marshal(payload{Start: MustParse("2025-03-01")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"start":"2025-03-01","end":""}`, string(out))
}
