package listings

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"tripdesk/internal/domain/shared/daterange"
	"tripdesk/internal/domain/shared/events"
	"tripdesk/internal/domain/shared/money"
)

var (
	ErrTitleRequired    = errors.New("listings: title is required")
	ErrInvalidCategory  = errors.New("listings: category must be tour, stay or volunteer")
	ErrNegativePrice    = errors.New("listings: price must be non-negative")
	ErrInvalidState     = errors.New("listings: invalid state transition")
	ErrPastDate         = errors.New("listings: cannot change availability of a past day")
	ErrListingNotFound  = errors.New("listings: not found")
	ErrListingNotPublic = errors.New("listings: listing is not published")
)

type ListingID string

type Category string

const (
	CategoryTour      Category = "tour"
	CategoryStay      Category = "stay"
	CategoryVolunteer Category = "volunteer"
)

func ParseCategory(raw string) (Category, error) {
	switch c := Category(strings.ToLower(strings.TrimSpace(raw))); c {
	case CategoryTour, CategoryStay, CategoryVolunteer:
		return c, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidCategory, raw)
	}
}

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

type Listing struct {
	ID          ListingID
	Title       string
	Description string
	Location    string
	Category    Category
	Price       money.Money
	// Availability is an optional whitelist of bookable days. Empty means every
	// future day is open.
	Availability []daterange.Day
	Status       Status
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Version      int64
	events.EventRecorder
}

type Filter struct {
	Category      Category
	PublishedOnly bool
}

func (f Filter) Match(l *Listing) bool {
	if f.Category != "" && l.Category != f.Category {
		return false
	}
	if f.PublishedOnly && l.Status != StatusPublished {
		return false
	}
	return true
}

type Repository interface {
	ByID(ctx context.Context, id ListingID) (*Listing, error)
	Save(ctx context.Context, listing *Listing) error
	List(ctx context.Context, filter Filter) ([]*Listing, error)
}

type CreateParams struct {
	ID           ListingID
	Title        string
	Description  string
	Location     string
	Category     Category
	Price        money.Money
	Availability []daterange.Day
	Now          time.Time
}

func NewListing(params CreateParams) (*Listing, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, errors.New("listings: id is required")
	}
	if strings.TrimSpace(params.Title) == "" {
		return nil, ErrTitleRequired
	}
	category, err := ParseCategory(string(params.Category))
	if err != nil {
		return nil, err
	}
	if params.Price.Amount < 0 {
		return nil, ErrNegativePrice
	}
	if params.Price.Currency == "" {
		params.Price.Currency = money.BaseCurrency
	}
	now := params.Now.UTC()
	l := &Listing{
		ID:           params.ID,
		Title:        strings.TrimSpace(params.Title),
		Description:  strings.TrimSpace(params.Description),
		Location:     strings.TrimSpace(params.Location),
		Category:     category,
		Price:        params.Price,
		Availability: normalizeDays(params.Availability),
		Status:       StatusDraft,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	l.Record(ListingCreated{ListingID: l.ID, Category: l.Category, At: now})
	return l, nil
}

// UsesRangeSelection reports whether bookings pick a check-in/check-out pair.
func (l *Listing) UsesRangeSelection() bool {
	return l.Category == CategoryStay
}

func (l *Listing) IsPublished() bool {
	return l.Status == StatusPublished
}

func (l *Listing) Publish(now time.Time) error {
	if l.Status == StatusPublished {
		return nil
	}
	if strings.TrimSpace(l.Title) == "" {
		return ErrTitleRequired
	}
	l.Status = StatusPublished
	l.UpdatedAt = now.UTC()
	l.Record(ListingPublished{ListingID: l.ID, At: l.UpdatedAt})
	return nil
}

func (l *Listing) Unpublish(now time.Time) error {
	if l.Status != StatusPublished {
		return ErrInvalidState
	}
	l.Status = StatusDraft
	l.UpdatedAt = now.UTC()
	l.Record(ListingUnpublished{ListingID: l.ID, At: l.UpdatedAt})
	return nil
}

func (l *Listing) SetAvailability(days []daterange.Day, now time.Time) {
	l.Availability = normalizeDays(days)
	l.UpdatedAt = now.UTC()
	l.Record(AvailabilityChanged{ListingID: l.ID, Days: len(l.Availability), At: l.UpdatedAt})
}

// ToggleAvailableDate adds day to the whitelist, or removes it when already
// present. It reports whether the day is open after the toggle.
func (l *Listing) ToggleAvailableDate(day daterange.Day, today daterange.Day) (bool, error) {
	if day.IsZero() {
		return false, daterange.ErrInvalidDay
	}
	if day.Before(today) {
		return false, fmt.Errorf("%w: %s", ErrPastDate, day)
	}
	next := make([]daterange.Day, 0, len(l.Availability)+1)
	removed := false
	for _, d := range l.Availability {
		if d == day {
			removed = true
			continue
		}
		next = append(next, d)
	}
	if !removed {
		next = append(next, day)
	}
	l.SetAvailability(next, today.Time())
	return !removed, nil
}

func normalizeDays(days []daterange.Day) []daterange.Day {
	if len(days) == 0 {
		return nil
	}
	seen := make(map[daterange.Day]struct{}, len(days))
	out := make([]daterange.Day, 0, len(days))
	for _, d := range days {
		if d.IsZero() {
			continue
		}
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}
