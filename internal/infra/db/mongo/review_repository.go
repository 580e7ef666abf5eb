package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainlistings "tripdesk/internal/domain/listings"
	domainreviews "tripdesk/internal/domain/reviews"
)

type ReviewRepository struct {
	col *mongo.Collection
}

func NewReviewRepository(db *mongo.Database) *ReviewRepository {
	return &ReviewRepository{col: db.Collection("agg_review")}
}

func (r *ReviewRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "listing_id", Value: 1}, {Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	return err
}

func (r *ReviewRepository) ByID(ctx context.Context, id domainreviews.ReviewID) (*domainreviews.Review, error) {
	var doc reviewDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", domainreviews.ErrReviewNotFound, id)
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *ReviewRepository) Save(ctx context.Context, review *domainreviews.Review) error {
	doc := newReviewDocument(review)
	filter := bson.M{"_id": doc.ID, "version": review.Version}
	doc.Version = review.Version + 1
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
	review.Version = doc.Version
	return nil
}

// Delete removes the review only at the version it was loaded with.
func (r *ReviewRepository) Delete(ctx context.Context, review *domainreviews.Review) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": string(review.ID), "version": review.Version})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrConcurrentUpdate
	}
	return nil
}

func (r *ReviewRepository) ListByListing(ctx context.Context, listingID domainlistings.ListingID) ([]*domainreviews.Review, error) {
	return r.find(ctx, bson.M{"listing_id": string(listingID)})
}

func (r *ReviewRepository) List(ctx context.Context) ([]*domainreviews.Review, error) {
	return r.find(ctx, bson.M{})
}

func (r *ReviewRepository) find(ctx context.Context, filter bson.M) ([]*domainreviews.Review, error) {
	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*domainreviews.Review
	for cur.Next(ctx) {
		var doc reviewDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cur.Err()
}

type reviewDocument struct {
	ID         string `bson:"_id"`
	ListingID  string `bson:"listing_id"`
	UserID     string `bson:"user_id"`
	AuthorName string `bson:"author_name,omitempty"`
	Rating     int    `bson:"rating"`
	Comment    string `bson:"comment,omitempty"`
	Status     string `bson:"status"`
	CreatedAt  int64  `bson:"created_at"`
	UpdatedAt  int64  `bson:"updated_at"`
	Version    int64  `bson:"version"`
}

func newReviewDocument(r *domainreviews.Review) reviewDocument {
	return reviewDocument{
		ID:         string(r.ID),
		ListingID:  string(r.ListingID),
		UserID:     r.UserID,
		AuthorName: r.AuthorName,
		Rating:     r.Rating,
		Comment:    r.Comment,
		Status:     string(r.Status),
		CreatedAt:  r.CreatedAt.UnixMilli(),
		UpdatedAt:  r.UpdatedAt.UnixMilli(),
		Version:    r.Version,
	}
}

// toAggregate treats a missing status as pending so imported rows stay
// hidden until moderated.
func (d reviewDocument) toAggregate() *domainreviews.Review {
	status := domainreviews.Status(d.Status)
	if status == "" {
		status = domainreviews.StatusPending
	}
	return &domainreviews.Review{
		ID:         domainreviews.ReviewID(d.ID),
		ListingID:  domainlistings.ListingID(d.ListingID),
		UserID:     d.UserID,
		AuthorName: d.AuthorName,
		Rating:     d.Rating,
		Comment:    d.Comment,
		Status:     status,
		CreatedAt:  timestampToTime(d.CreatedAt),
		UpdatedAt:  timestampToTime(d.UpdatedAt),
		Version:    d.Version,
	}
}
