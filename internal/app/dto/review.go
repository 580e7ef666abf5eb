package dto

import (
	"time"

	domainlistings "tripdesk/internal/domain/listings"
	domainreviews "tripdesk/internal/domain/reviews"
)

// Review is the storefront card. AuthorName falls back to "Anonymous".
type Review struct {
	ID           string    `json:"id"`
	ListingID    string    `json:"listing_id"`
	ListingTitle string    `json:"listing_title,omitempty"`
	UserID       string    `json:"user_id,omitempty"`
	AuthorName   string    `json:"author_name"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment,omitempty"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type ReviewCollection struct {
	Items         []Review `json:"items"`
	Count         int      `json:"count"`
	AverageRating float64  `json:"average_rating"`
}

type ReviewRemoval struct {
	ReviewID string `json:"review_id"`
}

const anonymousAuthor = "Anonymous"

// MapReview hides the author's user id unless withUser is set; the public
// listing page never shows it.
func MapReview(r *domainreviews.Review, listing *domainlistings.Listing, withUser bool) Review {
	out := Review{
		ID:         string(r.ID),
		ListingID:  string(r.ListingID),
		AuthorName: r.AuthorName,
		Rating:     r.Rating,
		Comment:    r.Comment,
		Status:     string(r.Status),
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
	if out.AuthorName == "" {
		out.AuthorName = anonymousAuthor
	}
	if withUser {
		out.UserID = r.UserID
	}
	if listing != nil {
		out.ListingTitle = listing.Title
	}
	return out
}
