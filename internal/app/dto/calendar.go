package dto

import (
	"tripdesk/internal/domain/availability"
	"tripdesk/internal/domain/shared/daterange"
)

// CalendarDay is one grid cell. Padding cells have an empty Date.
type CalendarDay struct {
	Date       string   `json:"date,omitempty"`
	Tags       []string `json:"tags"`
	Selectable bool     `json:"selectable"`
}

type CalendarSelection struct {
	Start  string `json:"start,omitempty"`
	End    string `json:"end,omitempty"`
	State  string `json:"state"`
	Nights int    `json:"nights"`
}

type Calendar struct {
	ListingID  string            `json:"listing_id"`
	Category   string            `json:"category"`
	RangeMode  bool              `json:"range_mode"`
	Month      string            `json:"month"`
	Today      string            `json:"today"`
	Days       []CalendarDay     `json:"days"`
	BookedDays []string          `json:"booked_days"`
	Selection  CalendarSelection `json:"selection"`
	// SelectionError explains why the requested selection was not accepted.
	SelectionError string `json:"selection_error,omitempty"`
}

func MapCalendarCells(cells []availability.Cell) []CalendarDay {
	out := make([]CalendarDay, 0, len(cells))
	for _, cell := range cells {
		if cell.IsPadding() {
			out = append(out, CalendarDay{Tags: []string{}})
			continue
		}
		out = append(out, CalendarDay{
			Date:       cell.Day.String(),
			Tags:       cell.Class.Tags(),
			Selectable: cell.Class.Has(availability.ClassAvailable),
		})
	}
	return out
}

func MapSelection(sel availability.Selection, state availability.SelectionState) CalendarSelection {
	return CalendarSelection{
		Start:  dayString(sel.Start),
		End:    dayString(sel.End),
		State:  string(state),
		Nights: sel.Nights(),
	}
}

func dayString(d daterange.Day) string {
	if d.IsZero() {
		return ""
	}
	return d.String()
}
