package listings

import "time"

type ListingCreated struct {
	ListingID ListingID
	Category  Category
	At        time.Time
}

func (e ListingCreated) EventName() string     { return "listing.created" }
func (e ListingCreated) AggregateID() string   { return string(e.ListingID) }
func (e ListingCreated) OccurredAt() time.Time { return e.At }

type ListingPublished struct {
	ListingID ListingID
	At        time.Time
}

func (e ListingPublished) EventName() string     { return "listing.published" }
func (e ListingPublished) AggregateID() string   { return string(e.ListingID) }
func (e ListingPublished) OccurredAt() time.Time { return e.At }

type ListingUnpublished struct {
	ListingID ListingID
	At        time.Time
}

func (e ListingUnpublished) EventName() string     { return "listing.unpublished" }
func (e ListingUnpublished) AggregateID() string   { return string(e.ListingID) }
func (e ListingUnpublished) OccurredAt() time.Time { return e.At }

type AvailabilityChanged struct {
	ListingID ListingID
	Days      int
	At        time.Time
}

func (e AvailabilityChanged) EventName() string     { return "listing.availability_changed" }
func (e AvailabilityChanged) AggregateID() string   { return string(e.ListingID) }
func (e AvailabilityChanged) OccurredAt() time.Time { return e.At }
