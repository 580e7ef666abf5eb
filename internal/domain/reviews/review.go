package reviews

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"tripdesk/internal/domain/listings"
	"tripdesk/internal/domain/shared/events"
)

const MaxCommentLength = 2000

var (
	ErrInvalidRating   = errors.New("reviews: rating must be between 1 and 5")
	ErrCommentTooLong  = errors.New("reviews: comment is too long")
	ErrUserRequired    = errors.New("reviews: user id is required")
	ErrListingRequired = errors.New("reviews: listing id is required")
	ErrInvalidStatus   = errors.New("reviews: unknown status")
	ErrReviewNotFound  = errors.New("reviews: not found")
)

type ReviewID string

// Status is the moderation state. Only approved reviews reach the storefront.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
)

func ParseStatus(raw string) (Status, error) {
	switch s := Status(strings.ToLower(strings.TrimSpace(raw))); s {
	case StatusPending, StatusApproved:
		return s, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
}

type Review struct {
	ID        ReviewID
	ListingID listings.ListingID
	UserID    string
	// AuthorName is the display name captured at submission; empty renders
	// as anonymous.
	AuthorName string
	Rating     int
	Comment    string
	Status     Status
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Version    int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id ReviewID) (*Review, error)
	Save(ctx context.Context, review *Review) error
	Delete(ctx context.Context, review *Review) error
	ListByListing(ctx context.Context, listingID listings.ListingID) ([]*Review, error)
	List(ctx context.Context) ([]*Review, error)
}

type SubmitParams struct {
	ID         ReviewID
	ListingID  listings.ListingID
	UserID     string
	AuthorName string
	Rating     int
	Comment    string
	CreatedAt  time.Time
}

func ValidateRating(rating int) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("%w: %d", ErrInvalidRating, rating)
	}
	return nil
}

// Submit creates a review awaiting moderation.
func Submit(params SubmitParams) (*Review, error) {
	if err := ValidateRating(params.Rating); err != nil {
		return nil, err
	}
	if strings.TrimSpace(params.UserID) == "" {
		return nil, ErrUserRequired
	}
	if strings.TrimSpace(string(params.ListingID)) == "" {
		return nil, ErrListingRequired
	}
	comment := strings.TrimSpace(params.Comment)
	if utf8.RuneCountInString(comment) > MaxCommentLength {
		return nil, ErrCommentTooLong
	}
	now := params.CreatedAt.UTC()
	review := &Review{
		ID:         params.ID,
		ListingID:  params.ListingID,
		UserID:     params.UserID,
		AuthorName: strings.TrimSpace(params.AuthorName),
		Rating:     params.Rating,
		Comment:    comment,
		Status:     StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	review.Record(ReviewSubmitted{
		ReviewID:  review.ID,
		ListingID: review.ListingID,
		UserID:    review.UserID,
		Rating:    review.Rating,
		At:        now,
	})
	return review, nil
}

func (r *Review) IsApproved() bool {
	return r.Status == StatusApproved
}

// SetStatus moves the review between pending and approved. It reports
// whether anything changed.
func (r *Review) SetStatus(next Status, now time.Time) (bool, error) {
	if next != StatusPending && next != StatusApproved {
		return false, fmt.Errorf("%w: %q", ErrInvalidStatus, next)
	}
	if r.Status == next {
		return false, nil
	}
	prev := r.Status
	r.Status = next
	r.UpdatedAt = now.UTC()
	r.Record(ReviewStatusChanged{ReviewID: r.ID, ListingID: r.ListingID, From: prev, To: next, At: r.UpdatedAt})
	return true, nil
}

// Remove records the deletion; the repository drops the document.
func (r *Review) Remove(now time.Time) {
	r.UpdatedAt = now.UTC()
	r.Record(ReviewDeleted{ReviewID: r.ID, ListingID: r.ListingID, At: r.UpdatedAt})
}

// Summary is the storefront rating line for a listing.
type Summary struct {
	Count   int
	Average float64
}

// Summarize averages the approved reviews, rounded to one decimal.
func Summarize(items []*Review) Summary {
	var total, count int
	for _, r := range items {
		if !r.IsApproved() {
			continue
		}
		total += r.Rating
		count++
	}
	if count == 0 {
		return Summary{}
	}
	tenths := (total*10 + count/2) / count
	return Summary{Count: count, Average: float64(tenths) / 10}
}
