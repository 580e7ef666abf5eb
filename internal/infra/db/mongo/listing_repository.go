package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainlistings "tripdesk/internal/domain/listings"
	"tripdesk/internal/domain/shared/daterange"
	"tripdesk/internal/domain/shared/money"
)

type ListingRepository struct {
	col *mongo.Collection
}

func NewListingRepository(db *mongo.Database) *ListingRepository {
	return &ListingRepository{col: db.Collection("agg_listing")}
}

func (r *ListingRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "status", Value: 1}, {Key: "category", Value: 1}},
	})
	return err
}

func (r *ListingRepository) ByID(ctx context.Context, id domainlistings.ListingID) (*domainlistings.Listing, error) {
	var doc listingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", domainlistings.ErrListingNotFound, id)
		}
		return nil, err
	}
	return doc.toAggregate()
}

func (r *ListingRepository) Save(ctx context.Context, l *domainlistings.Listing) error {
	doc := newListingDocument(l)
	filter := bson.M{"_id": doc.ID, "version": l.Version}
	doc.Version = l.Version + 1
	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": doc}, options.Update().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return ErrConcurrentUpdate
	}
	l.Version = doc.Version
	return nil
}

func (r *ListingRepository) List(ctx context.Context, filter domainlistings.Filter) ([]*domainlistings.Listing, error) {
	query := bson.M{}
	if filter.Category != "" {
		query["category"] = string(filter.Category)
	}
	if filter.PublishedOnly {
		query["status"] = string(domainlistings.StatusPublished)
	}
	cur, err := r.col.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*domainlistings.Listing
	for cur.Next(ctx) {
		var doc listingDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		l, err := doc.toAggregate()
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, cur.Err()
}

type listingDocument struct {
	ID            string   `bson:"_id"`
	Title         string   `bson:"title"`
	Description   string   `bson:"description"`
	Location      string   `bson:"location"`
	Category      string   `bson:"category"`
	PriceAmount   int64    `bson:"price_amount"`
	PriceCurrency string   `bson:"price_currency"`
	Availability  []string `bson:"availability"`
	Status        string   `bson:"status"`
	CreatedAt     int64    `bson:"created_at"`
	UpdatedAt     int64    `bson:"updated_at"`
	Version       int64    `bson:"version"`
}

func newListingDocument(l *domainlistings.Listing) listingDocument {
	days := make([]string, 0, len(l.Availability))
	for _, d := range l.Availability {
		days = append(days, d.String())
	}
	return listingDocument{
		ID:            string(l.ID),
		Title:         l.Title,
		Description:   l.Description,
		Location:      l.Location,
		Category:      string(l.Category),
		PriceAmount:   l.Price.Amount,
		PriceCurrency: l.Price.Currency,
		Availability:  days,
		Status:        string(l.Status),
		CreatedAt:     l.CreatedAt.UnixMilli(),
		UpdatedAt:     l.UpdatedAt.UnixMilli(),
		Version:       l.Version,
	}
}

func (d listingDocument) toAggregate() (*domainlistings.Listing, error) {
	days, err := parseDays(d.Availability)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", d.ID, err)
	}
	return &domainlistings.Listing{
		ID:           domainlistings.ListingID(d.ID),
		Title:        d.Title,
		Description:  d.Description,
		Location:     d.Location,
		Category:     domainlistings.Category(d.Category),
		Price:        money.Money{Amount: d.PriceAmount, Currency: d.PriceCurrency},
		Availability: days,
		Status:       domainlistings.Status(d.Status),
		CreatedAt:    timestampToTime(d.CreatedAt),
		UpdatedAt:    timestampToTime(d.UpdatedAt),
		Version:      d.Version,
	}, nil
}

func parseDays(raw []string) ([]daterange.Day, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make([]daterange.Day, 0, len(raw))
	for _, s := range raw {
		d, err := daterange.Parse(s)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
