package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"tripdesk/internal/app/handlers/support"
	"tripdesk/internal/app/uow"
	"tripdesk/internal/domain/listings"
	"tripdesk/internal/domain/shared/daterange"
	"tripdesk/internal/domain/shared/money"
)

type listingFixture struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Location     string          `json:"location"`
	Category     string          `json:"category"`
	PriceCents   int64           `json:"price_cents"`
	Availability []daterange.Day `json:"availability"`
	Published    bool            `json:"published"`
}

// loadListingFixtures imports demo listings that are not stored yet. Bad
// entries are logged and skipped.
func loadListingFixtures(ctx context.Context, factory uow.UoWFactory, path, currency string, logger *slog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("listing fixtures file not found, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("read fixtures: %w", err)
	}
	if len(data) == 0 {
		logger.Warn("listing fixtures file empty", "path", path)
		return nil
	}
	var fixtures []listingFixture
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return fmt.Errorf("decode fixtures: %w", err)
	}
	if currency == "" {
		currency = money.BaseCurrency
	}

	now := time.Now()
	imported := 0
	for _, fx := range fixtures {
		listing, err := fx.toListing(currency, now)
		if err != nil {
			logger.Error("fixture invalid", "listing_id", fx.ID, "error", err)
			continue
		}
		err = support.WithinUnit(ctx, factory, func(ctx context.Context, unit uow.UnitOfWork) error {
			if _, err := unit.Listings().ByID(ctx, listing.ID); err == nil {
				return errFixtureExists
			} else if !errors.Is(err, listings.ErrListingNotFound) {
				return err
			}
			return unit.Listings().Save(ctx, listing)
		})
		switch {
		case errors.Is(err, errFixtureExists):
			logger.Debug("listing fixture already stored", "listing_id", fx.ID)
		case err != nil:
			logger.Error("cannot store fixture listing", "listing_id", fx.ID, "error", err)
		default:
			imported++
		}
	}
	logger.Info("listing fixtures imported", "count", imported, "path", path)
	return nil
}

var errFixtureExists = errors.New("fixture already stored")

func (fx listingFixture) toListing(currency string, now time.Time) (*listings.Listing, error) {
	category, err := listings.ParseCategory(fx.Category)
	if err != nil {
		return nil, err
	}
	listing, err := listings.NewListing(listings.CreateParams{
		ID:           listings.ListingID(fx.ID),
		Title:        fx.Title,
		Description:  fx.Description,
		Location:     fx.Location,
		Category:     category,
		Price:        money.Money{Amount: fx.PriceCents, Currency: currency},
		Availability: fx.Availability,
		Now:          now,
	})
	if err != nil {
		return nil, err
	}
	if fx.Published {
		if err := listing.Publish(now); err != nil {
			return nil, err
		}
	}
	listing.ClearEvents()
	return listing, nil
}

func defaultListingFixturesPath() string {
	candidates := []string{
		filepath.Join("data", "listings.json"),
		filepath.Join("..", "data", "listings.json"),
	}
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return candidates[0]
}
