package dto

import (
	"tripdesk/internal/domain/pricing"
	"tripdesk/internal/domain/shared/money"
)

type MoneyDTO struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Display  string `json:"display"`
}

func MapMoney(value money.Money) MoneyDTO {
	return MoneyDTO{
		Amount:   value.Amount,
		Currency: value.Currency,
		Display:  value.Decimal(),
	}
}

type Quote struct {
	ListingID string   `json:"listing_id"`
	Start     string   `json:"start"`
	End       string   `json:"end,omitempty"`
	Unit      string   `json:"unit"`
	UnitPrice MoneyDTO `json:"unit_price"`
	Nights    int      `json:"nights"`
	Guests    int      `json:"guests"`
	Total     MoneyDTO `json:"total"`
}

func MapQuote(listingID, start, end string, b pricing.PriceBreakdown) Quote {
	return Quote{
		ListingID: listingID,
		Start:     start,
		End:       end,
		Unit:      string(b.Unit),
		UnitPrice: MapMoney(b.UnitPrice),
		Nights:    b.Nights,
		Guests:    b.Guests,
		Total:     MapMoney(b.Total),
	}
}
