package dto

import (
	"time"

	domainlistings "tripdesk/internal/domain/listings"
)

type Listing struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	Location     string    `json:"location,omitempty"`
	Category     string    `json:"category"`
	Price        MoneyDTO  `json:"price"`
	RangeMode    bool      `json:"range_mode"`
	Availability []string  `json:"availability"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type ListingCollection struct {
	Items []Listing `json:"items"`
	Total int       `json:"total"`
}

func MapListing(l *domainlistings.Listing) Listing {
	if l == nil {
		return Listing{}
	}
	days := make([]string, 0, len(l.Availability))
	for _, d := range l.Availability {
		days = append(days, d.String())
	}
	return Listing{
		ID:           string(l.ID),
		Title:        l.Title,
		Description:  l.Description,
		Location:     l.Location,
		Category:     string(l.Category),
		Price:        MapMoney(l.Price),
		RangeMode:    l.UsesRangeSelection(),
		Availability: days,
		Status:       string(l.Status),
		CreatedAt:    l.CreatedAt,
		UpdatedAt:    l.UpdatedAt,
	}
}

func MapListings(items []*domainlistings.Listing) ListingCollection {
	out := make([]Listing, 0, len(items))
	for _, l := range items {
		out = append(out, MapListing(l))
	}
	return ListingCollection{Items: out, Total: len(out)}
}

type AvailabilityToggle struct {
	ListingID    string   `json:"listing_id"`
	Date         string   `json:"date"`
	Available    bool     `json:"available"`
	Availability []string `json:"availability"`
}
