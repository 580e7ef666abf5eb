package reviews

import (
	"time"

	"tripdesk/internal/domain/listings"
)

type ReviewSubmitted struct {
	ReviewID  ReviewID
	ListingID listings.ListingID
	UserID    string
	Rating    int
	At        time.Time
}

func (e ReviewSubmitted) EventName() string     { return "review.submitted" }
func (e ReviewSubmitted) AggregateID() string   { return string(e.ReviewID) }
func (e ReviewSubmitted) OccurredAt() time.Time { return e.At }

type ReviewStatusChanged struct {
	ReviewID  ReviewID
	ListingID listings.ListingID
	From      Status
	To        Status
	At        time.Time
}

func (e ReviewStatusChanged) EventName() string     { return "review.status_changed" }
func (e ReviewStatusChanged) AggregateID() string   { return string(e.ReviewID) }
func (e ReviewStatusChanged) OccurredAt() time.Time { return e.At }

type ReviewDeleted struct {
	ReviewID  ReviewID
	ListingID listings.ListingID
	At        time.Time
}

func (e ReviewDeleted) EventName() string     { return "review.deleted" }
func (e ReviewDeleted) AggregateID() string   { return string(e.ReviewID) }
func (e ReviewDeleted) OccurredAt() time.Time { return e.At }
