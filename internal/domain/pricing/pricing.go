package pricing

import (
	"errors"
	"fmt"

	"tripdesk/internal/domain/availability"
	"tripdesk/internal/domain/listings"
	"tripdesk/internal/domain/shared/money"
)

var (
	ErrListingRequired = errors.New("pricing: listing is required")
	ErrInvalidGuests   = errors.New("pricing: guests must be at least 1")
	ErrTooManyGuests   = errors.New("pricing: too many guests")
	ErrCurrencyUnset   = errors.New("pricing: currency must be defined")
)

// MaxGuests is the largest party a single booking or quote may cover.
const MaxGuests = 8

type Unit string

const (
	UnitNight  Unit = "night"
	UnitPerson Unit = "person"
)

// PriceBreakdown explains how a total was reached. Nights is zero for flat
// per-person pricing.
type PriceBreakdown struct {
	Unit      Unit
	UnitPrice money.Money
	Nights    int
	Guests    int
	Total     money.Money
}

// Quote prices a selection in the listing's base currency. Stays with a
// complete range pay price x nights x guests, with nights floored at 1;
// everything else pays price x guests. Totals that do not fit int64 fail
// with money.ErrAmountOverflow.
func Quote(listing *listings.Listing, sel availability.Selection, guests int) (PriceBreakdown, error) {
	if listing == nil {
		return PriceBreakdown{}, ErrListingRequired
	}
	if guests < 1 {
		return PriceBreakdown{}, ErrInvalidGuests
	}
	if guests > MaxGuests {
		return PriceBreakdown{}, fmt.Errorf("%w: %d > %d", ErrTooManyGuests, guests, MaxGuests)
	}
	if listing.Price.Currency == "" {
		return PriceBreakdown{}, ErrCurrencyUnset
	}

	breakdown := PriceBreakdown{
		Unit:      UnitPerson,
		UnitPrice: listing.Price,
		Guests:    guests,
	}
	if listing.Category == listings.CategoryStay && sel.HasEnd() {
		nights := sel.Nights()
		if nights < 1 {
			nights = 1
		}
		breakdown.Unit = UnitNight
		breakdown.Nights = nights
		perGuest, err := listing.Price.MultiplyChecked(int64(nights))
		if err != nil {
			return PriceBreakdown{}, err
		}
		if breakdown.Total, err = perGuest.MultiplyChecked(int64(guests)); err != nil {
			return PriceBreakdown{}, err
		}
		return breakdown, nil
	}
	total, err := listing.Price.MultiplyChecked(int64(guests))
	if err != nil {
		return PriceBreakdown{}, err
	}
	breakdown.Total = total
	return breakdown, nil
}

// ComputeTotal returns only the payable amount of Quote.
func ComputeTotal(listing *listings.Listing, sel availability.Selection, guests int) (money.Money, error) {
	breakdown, err := Quote(listing, sel, guests)
	if err != nil {
		return money.Money{}, err
	}
	return breakdown.Total, nil
}
