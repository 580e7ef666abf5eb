package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "tripdesk/internal/domain/booking"
	domainlistings "tripdesk/internal/domain/listings"
	"tripdesk/internal/domain/shared/daterange"
	"tripdesk/internal/domain/shared/money"
)

var ErrConcurrentUpdate = errors.New("mongo: concurrent update detected")

type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	return &BookingRepository{col: db.Collection("agg_booking")}
}

func (r *BookingRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "listing_id", Value: 1}, {Key: "start", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	return err
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", domainbooking.ErrBookingNotFound, id)
		}
		return nil, err
	}
	return doc.toAggregate()
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	doc := newBookingDocument(b)
	filter := bson.M{"_id": doc.ID, "version": b.Version}
	doc.Version = b.Version + 1
	update := bson.M{"$set": doc}
	res, err := r.col.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return ErrConcurrentUpdate
	}
	b.Version = doc.Version
	return nil
}

func (r *BookingRepository) ListByListing(ctx context.Context, listingID domainlistings.ListingID) ([]*domainbooking.Booking, error) {
	return r.find(ctx, bson.M{"listing_id": string(listingID)})
}

func (r *BookingRepository) ListByUser(ctx context.Context, userID string) ([]*domainbooking.Booking, error) {
	return r.find(ctx, bson.M{"user_id": userID})
}

func (r *BookingRepository) List(ctx context.Context) ([]*domainbooking.Booking, error) {
	return r.find(ctx, bson.M{})
}

func (r *BookingRepository) find(ctx context.Context, filter bson.M) ([]*domainbooking.Booking, error) {
	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*domainbooking.Booking
	for cur.Next(ctx) {
		var doc bookingDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		b, err := doc.toAggregate()
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, cur.Err()
}

type bookingDocument struct {
	ID                  string `bson:"_id"`
	ListingID           string `bson:"listing_id"`
	UserID              string `bson:"user_id"`
	Start               string `bson:"start"`
	End                 string `bson:"end,omitempty"`
	Guests              int    `bson:"guests"`
	PaymentStatus       string `bson:"payment_status"`
	PaymentPlan         string `bson:"payment_plan"`
	TotalAmount         int64  `bson:"total_amount"`
	TotalCurrency       string `bson:"total_currency"`
	VolunteerMotivation string `bson:"volunteer_motivation,omitempty"`
	VolunteerDuration   string `bson:"volunteer_duration,omitempty"`
	CreatedAt           int64  `bson:"created_at"`
	UpdatedAt           int64  `bson:"updated_at"`
	Version             int64  `bson:"version"`
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	doc := bookingDocument{
		ID:                  string(b.ID),
		ListingID:           string(b.ListingID),
		UserID:              b.UserID,
		Start:               b.Start.String(),
		Guests:              b.Guests,
		PaymentStatus:       string(b.PaymentStatus),
		PaymentPlan:         string(b.PaymentPlan),
		TotalAmount:         b.Total.Amount,
		TotalCurrency:       b.Total.Currency,
		VolunteerMotivation: b.VolunteerMotivation,
		VolunteerDuration:   b.VolunteerDuration,
		CreatedAt:           b.CreatedAt.UnixMilli(),
		UpdatedAt:           b.UpdatedAt.UnixMilli(),
		Version:             b.Version,
	}
	if !b.End.IsZero() {
		doc.End = b.End.String()
	}
	return doc
}

// toAggregate does not validate the date order: an inverted range must reach
// the calendar builder, which reports it as a data integrity error.
func (d bookingDocument) toAggregate() (*domainbooking.Booking, error) {
	start, err := daterange.Parse(d.Start)
	if err != nil {
		return nil, fmt.Errorf("booking %s: %w", d.ID, err)
	}
	var end daterange.Day
	if d.End != "" {
		if end, err = daterange.Parse(d.End); err != nil {
			return nil, fmt.Errorf("booking %s: %w", d.ID, err)
		}
	}
	return &domainbooking.Booking{
		ID:                  domainbooking.BookingID(d.ID),
		ListingID:           domainlistings.ListingID(d.ListingID),
		UserID:              d.UserID,
		Start:               start,
		End:                 end,
		Guests:              d.Guests,
		PaymentStatus:       domainbooking.PaymentStatus(d.PaymentStatus),
		PaymentPlan:         domainbooking.PaymentPlan(d.PaymentPlan),
		Total:               money.Money{Amount: d.TotalAmount, Currency: d.TotalCurrency},
		VolunteerMotivation: d.VolunteerMotivation,
		VolunteerDuration:   d.VolunteerDuration,
		CreatedAt:           timestampToTime(d.CreatedAt),
		UpdatedAt:           timestampToTime(d.UpdatedAt),
		Version:             d.Version,
	}, nil
}
