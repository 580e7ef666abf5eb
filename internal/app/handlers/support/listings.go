package support

import (
	"context"

	domainlistings "tripdesk/internal/domain/listings"
)

// ListingCache memoises listing lookups while one request assembles a
// collection of bookings.
type ListingCache struct {
	repo  domainlistings.Repository
	items map[domainlistings.ListingID]*domainlistings.Listing
}

func NewListingCache(repo domainlistings.Repository) *ListingCache {
	return &ListingCache{repo: repo, items: make(map[domainlistings.ListingID]*domainlistings.Listing)}
}

func (c *ListingCache) Get(ctx context.Context, id domainlistings.ListingID) (*domainlistings.Listing, error) {
	if listing, ok := c.items[id]; ok {
		return listing, nil
	}
	listing, err := c.repo.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.items[id] = listing
	return listing, nil
}
